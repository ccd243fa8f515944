package notifications_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/notifyhub/pkg/notifications"
)

type mockSubscriptionStore struct {
	mock.Mock
}

func (m *mockSubscriptionStore) Upsert(ctx context.Context, in notifications.SubscriptionInput, now time.Time) (*notifications.Subscription, error) {
	args := m.Called(ctx, in, now)
	sub, _ := args.Get(0).(*notifications.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionStore) Get(ctx context.Context, userID string) (*notifications.Subscription, error) {
	args := m.Called(ctx, userID)
	sub, _ := args.Get(0).(*notifications.Subscription)
	return sub, args.Error(1)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Create(ctx context.Context, n notifications.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockStorage) Get(ctx context.Context, id string) (*notifications.Notification, error) {
	args := m.Called(ctx, id)
	n, _ := args.Get(0).(*notifications.Notification)
	return n, args.Error(1)
}

func (m *mockStorage) UpdateStatus(ctx context.Context, id string, from, to notifications.Status, sentAt *time.Time, now time.Time) (*notifications.Notification, error) {
	args := m.Called(ctx, id, from, to, sentAt, now)
	n, _ := args.Get(0).(*notifications.Notification)
	return n, args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStorage) ListByUser(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.Notification, error) {
	args := m.Called(ctx, userID, opts)
	list, _ := args.Get(0).([]notifications.Notification)
	return list, args.Error(1)
}

type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) Deliver(ctx context.Context, n notifications.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, n notifications.Notification) error {
	return m.Called(ctx, n).Error(0)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func boolPtr(b bool) *bool { return &b }
