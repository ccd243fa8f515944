package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/validator"
)

// MaxUserIDLength bounds user identifiers accepted by the service.
const MaxUserIDLength = 128

// SubscriptionManager validates and persists subscription changes.
type SubscriptionManager struct {
	store  SubscriptionStore
	logger *slog.Logger
	now    func() time.Time
}

// SubscriptionManagerOption configures a SubscriptionManager.
type SubscriptionManagerOption func(*SubscriptionManager)

func WithSubscriptionLogger(l *slog.Logger) SubscriptionManagerOption {
	return func(m *SubscriptionManager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithSubscriptionClock(now func() time.Time) SubscriptionManagerOption {
	return func(m *SubscriptionManager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewSubscriptionManager(store SubscriptionStore, opts ...SubscriptionManagerOption) *SubscriptionManager {
	m := &SubscriptionManager{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateOrUpdate upserts the user's subscription with merge semantics and
// returns the stored result. Repeating the same input is idempotent.
func (m *SubscriptionManager) CreateOrUpdate(ctx context.Context, in SubscriptionInput) (*Subscription, error) {
	if err := validator.Apply(
		validator.RequiredString("userId", in.UserID),
		validator.MaxLenString("userId", in.UserID, MaxUserIDLength),
		validator.EachInList("channels", in.Channels, AllChannels()),
	); err != nil {
		return nil, err
	}

	in.Channels = uniqueChannels(in.Channels)

	sub, err := m.store.Upsert(ctx, in, m.now().UTC())
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "failed to upsert subscription",
			logger.UserID(in.UserID),
			logger.Error(err),
		)
		return nil, persistenceError(err)
	}

	m.logger.LogAttrs(ctx, slog.LevelDebug, "subscription saved",
		logger.UserID(sub.UserID),
		slog.Any("channels", sub.Channels),
	)
	return sub, nil
}

// Get returns ErrSubscriptionNotFound when the user never subscribed.
func (m *SubscriptionManager) Get(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := m.store.Get(ctx, userID)
	switch {
	case err == nil:
		return sub, nil
	case errors.Is(err, ErrSubscriptionNotFound):
		return nil, ErrSubscriptionNotFound
	default:
		return nil, persistenceError(err)
	}
}
