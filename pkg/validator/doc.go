// Package validator provides small declarative validation rules.
//
// Every rule constructor returns a Rule pairing a Check function with
// translation-friendly error metadata. Apply evaluates rules and aggregates the
// failures into ValidationErrors, which implements error and can be recovered
// from a wrapped chain with ExtractValidationErrors.
//
//	err := validator.Apply(
//	    validator.RequiredString("userId", in.UserID),
//	    validator.MaxLenString("userId", in.UserID, 128),
//	    validator.EachInList("channels", in.Channels, notifications.AllChannels()),
//	)
//	if validator.IsValidationError(err) {
//	    // respond with 400 and validator.ExtractValidationErrors(err)
//	}
package validator
