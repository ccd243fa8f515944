package notifications

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount in the notifications module.
// Each service is optional and will only be mounted if provided.
type RouterOptions struct {
	Subscriptions Mountable
	Notifications Mountable
}

// Router creates the notifications module router.
//
// Example:
//
//	subs := notifications.NewSubscriptionService(manager)
//	notifs := notifications.NewNotificationService(dispatcher)
//
//	r := chi.NewRouter()
//	r.Mount("/api", notifications.Router(notifications.RouterOptions{
//	    Subscriptions: subs,
//	    Notifications: notifs,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Subscriptions != nil {
		r.Mount("/subscriptions", opts.Subscriptions.Handle())
	}
	if opts.Notifications != nil {
		r.Mount("/notifications", opts.Notifications.Handle())
	}

	return r
}
