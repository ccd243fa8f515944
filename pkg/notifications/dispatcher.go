package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/validator"
)

// Dispatcher gates notifications on subscription preferences, records the
// ones that pass and hands them to a Deliverer.
type Dispatcher struct {
	subscriptions SubscriptionReader
	storage       Storage
	deliverer     Deliverer
	metrics       *Metrics
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatcherMetrics records dispatch results in m.
func WithDispatcherMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithDispatcherClock overrides the time source used for record timestamps.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator overrides notification id generation.
func WithIDGenerator(fn func() string) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// SubscriptionReader loads a user's subscription. *SubscriptionManager
// implements it and is what NewDispatcher is normally given.
type SubscriptionReader interface {
	Get(ctx context.Context, userID string) (*Subscription, error)
}

// NewDispatcher creates a dispatcher. A nil deliverer is replaced by NoOpDeliverer.
// Notification ids are time-ordered UUIDv7 strings unless WithIDGenerator is set.
func NewDispatcher(subscriptions SubscriptionReader, storage Storage, deliverer Deliverer, opts ...DispatcherOption) *Dispatcher {
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}

	d := &Dispatcher{
		subscriptions: subscriptions,
		storage:       storage,
		deliverer:     deliverer,
		logger:        slog.Default(),
		now:           time.Now,
		newID:         func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch evaluates req against the user's subscription. Allowed requests are
// stored as pending and handed to the deliverer; rejected requests return a
// *RejectedError and leave no record.
//
// A user without a subscription is treated as subscribed to nothing. Storing
// and handing off succeed together: if the hand-off fails the stored record is
// deleted and an error wrapping ErrPersistence and ErrDeliveryHandoff is
// returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*Notification, error) {
	if err := validator.Apply(
		validator.RequiredString("userId", req.UserID),
		validator.MaxLenString("userId", req.UserID, MaxUserIDLength),
		validator.RequiredString("type", req.Type),
		validator.InList("channel", req.Channel, AllChannels()),
		validator.RequiredMap("content", req.Content),
	); err != nil {
		return nil, err
	}

	sub, err := d.subscriptions.Get(ctx, req.UserID)
	switch {
	case errors.Is(err, ErrSubscriptionNotFound):
		empty := emptySubscription(req.UserID)
		sub = &empty
	case err != nil:
		d.logger.LogAttrs(ctx, slog.LevelError, "failed to load subscription",
			logger.UserID(req.UserID),
			logger.Error(err),
		)
		if !errors.Is(err, ErrPersistence) {
			err = persistenceError(err)
		}
		return nil, err
	}

	if decision := Evaluate(req, *sub); !decision.Allowed {
		d.logger.LogAttrs(ctx, slog.LevelInfo, "notification rejected",
			logger.UserID(req.UserID),
			logger.Channel(req.Channel.String()),
			logger.NotificationType(req.Type),
			logger.Reason(string(decision.Reason)),
		)
		d.metrics.observeDispatch(req.Channel, string(decision.Reason))
		return nil, &RejectedError{Reason: decision.Reason}
	}

	now := d.now().UTC()
	notif := Notification{
		ID:        d.newID(),
		UserID:    req.UserID,
		Type:      req.Type,
		Channel:   req.Channel,
		Content:   req.Content,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := d.storage.Create(ctx, notif); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "failed to store notification",
			logger.NotificationID(notif.ID),
			logger.UserID(notif.UserID),
			logger.Error(err),
		)
		return nil, persistenceError(err)
	}

	if err := d.deliverer.Deliver(ctx, notif); err != nil {
		handoffErr := errors.Join(ErrDeliveryHandoff, err)
		d.logger.LogAttrs(ctx, slog.LevelError, "failed to hand off notification, discarding record",
			logger.NotificationID(notif.ID),
			logger.UserID(notif.UserID),
			logger.Channel(notif.Channel.String()),
			logger.Error(handoffErr),
		)
		if derr := d.storage.Delete(ctx, notif.ID); derr != nil {
			d.logger.LogAttrs(ctx, slog.LevelError, "failed to discard undelivered notification",
				logger.NotificationID(notif.ID),
				logger.Error(derr),
			)
			handoffErr = errors.Join(handoffErr, derr)
		}
		d.metrics.observeDispatch(req.Channel, resultHandoffFailed)
		return nil, persistenceError(handoffErr)
	}
	d.metrics.observeDispatch(req.Channel, resultAllowed)

	return &notif, nil
}

// RecordOutcome moves a pending notification to sent or failed. sentAt is
// required for sent and ignored for failed. Any second call for the same
// notification returns ErrInvalidTransition.
func (d *Dispatcher) RecordOutcome(ctx context.Context, id string, outcome Status, sentAt *time.Time) (*Notification, error) {
	if err := validator.Apply(validator.RequiredString("id", id)); err != nil {
		return nil, err
	}

	current, err := d.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkTransition(ctx, current.Status, outcome, sentAt); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			d.logger.LogAttrs(ctx, slog.LevelWarn, "rejected status change on resolved notification",
				logger.NotificationID(id),
				logger.Status(string(current.Status)),
				slog.String("outcome", string(outcome)),
			)
		}
		return nil, err
	}

	if outcome != StatusSent {
		sentAt = nil
	} else {
		at := sentAt.UTC()
		sentAt = &at
	}

	updated, err := d.storage.UpdateStatus(ctx, id, StatusPending, outcome, sentAt, d.now().UTC())
	switch {
	case err == nil:
		d.logger.LogAttrs(ctx, slog.LevelDebug, "notification outcome recorded",
			logger.NotificationID(id),
			logger.Status(string(outcome)),
		)
		return updated, nil
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotificationNotFound):
		return nil, err
	default:
		return nil, persistenceError(err)
	}
}

// Get returns a single notification.
func (d *Dispatcher) Get(ctx context.Context, id string) (*Notification, error) {
	n, err := d.storage.Get(ctx, id)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, ErrNotificationNotFound):
		return nil, ErrNotificationNotFound
	default:
		return nil, persistenceError(err)
	}
}

// History returns the user's notifications, most recent first.
func (d *Dispatcher) History(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	if err := validator.Apply(validator.RequiredString("userId", userID)); err != nil {
		return nil, err
	}

	list, err := d.storage.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, persistenceError(err)
	}
	if list == nil {
		list = []Notification{}
	}
	return list, nil
}
