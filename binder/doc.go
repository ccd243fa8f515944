// Package binder populates request structs for handler.Wrap.
//
// BindJSON decodes strict JSON bodies, Path reads router parameters through
// an extractor such as chi.URLParam, and BindQuery reads URL query values.
// Each binder touches only the fields it owns, so several can be combined on
// one request type. Failures wrap ErrInvalidJSON, ErrInvalidPath,
// ErrInvalidQuery or ErrUnsupportedMediaType so callers can map them to 4xx
// responses.
package binder
