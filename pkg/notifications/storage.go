package notifications

import (
	"context"
	"time"
)

// SubscriptionStore persists subscriptions keyed by user id.
type SubscriptionStore interface {
	// Upsert merges in into the stored subscription, creating it when absent,
	// and returns the result. Implementations must apply the merge atomically.
	Upsert(ctx context.Context, in SubscriptionInput, now time.Time) (*Subscription, error)

	// Get returns ErrSubscriptionNotFound when the user has no subscription.
	Get(ctx context.Context, userID string) (*Subscription, error)
}

// Storage persists notification records.
type Storage interface {
	Create(ctx context.Context, n Notification) error

	// Get returns ErrNotificationNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Notification, error)

	// UpdateStatus moves a record from `from` to `to` only if it is still in
	// `from`. It returns ErrNotificationNotFound for unknown ids and
	// ErrInvalidTransition when the stored status differs from `from`.
	UpdateStatus(ctx context.Context, id string, from, to Status, sentAt *time.Time, now time.Time) (*Notification, error)

	// Delete removes a record. It returns ErrNotificationNotFound for unknown ids.
	Delete(ctx context.Context, id string) error

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)
}

// ListOptions paginates history queries. A zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}
