package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/notifyhub/binder"
	"github.com/dmitrymomot/notifyhub/pkg/validator"
)

// JSONResponse is the standard JSON envelope.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to response
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON wraps v in the data envelope with status 200.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}
	r.body.Data = v

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err in the error envelope. err may be an error or an
// *ErrorDetail; the status is derived from the error unless overridden.
func JSONError(err any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusInternalServerError}

	switch e := err.(type) {
	case *ErrorDetail:
		r.body.Error = e
	case error:
		r.body.Error, r.status = ErrorDetailFor(e)
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ErrorDetailFor classifies err into an ErrorDetail and HTTP status.
// Validation and binding failures map to 400 (415 for a wrong media type),
// HTTPError to its own code, anything else to a 500 that hides the cause.
func ErrorDetailFor(err error) (*ErrorDetail, int) {
	if errs := validator.ExtractValidationErrors(err); errs != nil {
		detail := &ErrorDetail{
			Code:    "validation_error",
			Message: err.Error(),
			Details: make(map[string][]string),
		}
		for _, field := range errs.Fields() {
			detail.Details[field] = errs.Get(field)
		}
		return detail, http.StatusBadRequest
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return &ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}, httpErr.Code
	}

	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return &ErrorDetail{Code: ErrUnsupportedMediaType.Key, Message: err.Error()}, http.StatusUnsupportedMediaType
	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrInvalidPath), errors.Is(err, binder.ErrInvalidQuery):
		return &ErrorDetail{Code: ErrBadRequest.Key, Message: err.Error()}, http.StatusBadRequest
	}

	return &ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: "An error occurred processing your request",
	}, http.StatusInternalServerError
}
