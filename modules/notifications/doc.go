// Package notifications mounts the HTTP surface of the service: subscription
// management under /subscriptions and dispatch, history and outcome reporting
// under /notifications.
//
//	r := chi.NewRouter()
//	r.Use(middleware.Recoverer, requestid.Middleware)
//	r.Mount("/api", notifications.Router(notifications.RouterOptions{
//		Subscriptions: notifications.NewSubscriptionService(manager),
//		Notifications: notifications.NewNotificationService(dispatcher),
//	}))
//
// Domain errors map to the JSON error envelope: rejected dispatches return 400
// with the rejection reason as the error code, unknown records 404, repeated
// outcomes 409 and storage failures an opaque 500.
package notifications
