package validator

import "errors"

// ErrValidationFailed is returned when validation fails but no field-level detail is available.
var ErrValidationFailed = errors.New("validation failed")
