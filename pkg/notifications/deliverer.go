package notifications

import "context"

// Deliverer accepts a freshly stored pending notification for delivery.
// Returning nil means the notification was handed off, not that it arrived;
// the outcome is reported later through Dispatcher.RecordOutcome.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, n Notification) error

func (f DelivererFunc) Deliver(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// NoOpDeliverer accepts every notification and does nothing, leaving records
// pending until an outcome is recorded externally.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(context.Context, Notification) error { return nil }
