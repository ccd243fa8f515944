package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path binds struct fields tagged `path:"name"` using extractor, typically
// chi.URLParam. `path:"-"` skips a field; untagged fields use the lowercased
// field name. Empty values leave the field untouched.
//
//	type RecordOutcomeRequest struct {
//		ID     string `path:"id" json:"-"`
//		Status string `json:"status"`
//	}
//
//	r.Post("/notifications/{id}/outcome", handler.Wrap(h,
//		handler.WithBinders[handler.Context, RecordOutcomeRequest](
//			binder.Path(chi.URLParam),
//			binder.BindJSON(),
//		),
//	))
func Path(extractor func(r *http.Request, fieldName string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrInvalidPath)
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return fmt.Errorf("%w: target must be a non-nil pointer", ErrInvalidPath)
		}

		rv = rv.Elem()
		if rv.Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidPath)
		}

		rt := rv.Type()

		for i := range rv.NumField() {
			field := rv.Field(i)
			fieldType := rt.Field(i)

			if !field.CanSet() {
				continue
			}

			paramName, skip := parseFieldTag(fieldType, "path")
			if skip {
				continue
			}

			value := extractor(r, paramName)
			if value == "" {
				continue
			}

			if err := setFieldValue(field, fieldType.Type, []string{value}); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidPath, fieldType.Name, err)
			}
		}

		return nil
	}
}
