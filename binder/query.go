package binder

import "net/http"

// BindQuery binds struct fields tagged `query:"name"` from the URL query.
// Slices accept repeated or comma-separated values; pointers mark optional
// parameters.
//
//	type HistoryRequest struct {
//		UserID string `path:"userId"`
//		Limit  int    `query:"limit"`
//		Offset int    `query:"offset"`
//	}
func BindQuery() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
