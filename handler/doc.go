// Package handler provides type-safe HTTP request handling.
//
// A HandlerFunc receives a Context and a request value already populated by
// the configured binders, and returns a Response:
//
//	type GetSubscriptionRequest struct {
//		UserID string `path:"userId"`
//	}
//
//	func getSubscription(ctx handler.Context, req GetSubscriptionRequest) handler.Response {
//		sub, err := manager.Get(ctx, req.UserID)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(sub)
//	}
//
//	r.Get("/subscriptions/{userId}", handler.Wrap(getSubscription,
//		handler.WithBinders[handler.Context, GetSubscriptionRequest](binder.Path(chi.URLParam)),
//	))
//
// Responses use a single JSON envelope: {"data": ...} on success and
// {"error": {"code", "message", "details"}} on failure. ErrorDetailFor maps
// validator.ValidationErrors, binder errors and HTTPError values to status
// codes; unknown errors become an opaque 500.
//
// Binding and rendering failures go to the ErrorHandler; NewErrorHandler logs
// them with the request id before writing the error envelope.
package handler
