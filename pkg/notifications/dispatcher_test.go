package notifications_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/notifications"
	"github.com/dmitrymomot/notifyhub/pkg/validator"
)

type dispatchFixture struct {
	subs       *notifications.SubscriptionManager
	storage    *notifications.MemoryStorage
	dispatcher *notifications.Dispatcher
}

func newDispatchFixture(t *testing.T, deliverer notifications.Deliverer) dispatchFixture {
	t.Helper()

	subs := notifications.NewSubscriptionManager(notifications.NewMemorySubscriptionStore(),
		notifications.WithSubscriptionClock(fixedClock))
	storage := notifications.NewMemoryStorage()
	return dispatchFixture{
		subs:    subs,
		storage: storage,
		dispatcher: notifications.NewDispatcher(subs, storage, deliverer,
			notifications.WithDispatcherClock(fixedClock)),
	}
}

// subscribeU1 stores channels=[email,push], promotions=false.
func (f dispatchFixture) subscribeU1(t *testing.T) {
	t.Helper()
	_, err := f.subs.CreateOrUpdate(context.Background(), notifications.SubscriptionInput{
		UserID:   "u1",
		Channels: []notifications.Channel{notifications.ChannelEmail, notifications.ChannelPush},
		Preferences: &notifications.PreferencesPatch{
			OrderUpdates: boolPtr(true),
			Promotions:   boolPtr(false),
		},
	})
	require.NoError(t, err)
}

func (f dispatchFixture) history(t *testing.T, userID string) []notifications.Notification {
	t.Helper()
	list, err := f.dispatcher.History(context.Background(), userID, notifications.ListOptions{})
	require.NoError(t, err)
	return list
}

func TestDispatcher_Scenarios(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	content := map[string]any{"orderId": "o-1"}

	t.Run("allowed request is stored pending and handed off", func(t *testing.T) {
		t.Parallel()
		deliverer := &mockDeliverer{}
		deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(n notifications.Notification) bool {
			return n.UserID == "u1" && n.Status == notifications.StatusPending
		})).Return(nil).Once()

		f := newDispatchFixture(t, deliverer)
		f.subscribeU1(t)

		n, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: notifications.TypeOrderUpdates, Channel: notifications.ChannelEmail, Content: content,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, notifications.StatusPending, n.Status)
		assert.Nil(t, n.SentAt)
		assert.Equal(t, fixedNow, n.CreatedAt)
		assert.Equal(t, content, n.Content)

		stored, err := f.dispatcher.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, n, stored)
		deliverer.AssertExpectations(t)
	})

	t.Run("unsubscribed channel is rejected without a record", func(t *testing.T) {
		t.Parallel()
		deliverer := &mockDeliverer{}
		f := newDispatchFixture(t, deliverer)
		f.subscribeU1(t)

		n, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: notifications.TypeOrderUpdates, Channel: notifications.ChannelSMS, Content: content,
		})
		require.Error(t, err)
		assert.Nil(t, n)

		reason, ok := notifications.RejectionReason(err)
		require.True(t, ok)
		assert.Equal(t, notifications.ReasonChannelNotSubscribed, reason)
		assert.Empty(t, f.history(t, "u1"))
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("opted out type is rejected without a record", func(t *testing.T) {
		t.Parallel()
		f := newDispatchFixture(t, &mockDeliverer{})
		f.subscribeU1(t)

		_, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: notifications.TypePromotions, Channel: notifications.ChannelEmail, Content: content,
		})
		reason, ok := notifications.RejectionReason(err)
		require.True(t, ok)
		assert.Equal(t, notifications.ReasonTypeOptedOut, reason)
		assert.Empty(t, f.history(t, "u1"))
	})

	t.Run("user without subscription is rejected on every channel", func(t *testing.T) {
		t.Parallel()
		f := newDispatchFixture(t, &mockDeliverer{})

		for _, ch := range notifications.AllChannels() {
			_, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
				UserID: "ghost", Type: notifications.TypeAccount, Channel: ch, Content: content,
			})
			reason, ok := notifications.RejectionReason(err)
			require.True(t, ok, ch)
			assert.Equal(t, notifications.ReasonChannelNotSubscribed, reason, ch)
		}
		assert.Empty(t, f.history(t, "ghost"))
	})

	t.Run("outcome is recorded exactly once", func(t *testing.T) {
		t.Parallel()
		f := newDispatchFixture(t, notifications.NoOpDeliverer{})
		f.subscribeU1(t)

		n, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: notifications.TypeOrderUpdates, Channel: notifications.ChannelPush, Content: content,
		})
		require.NoError(t, err)

		sentAt := time.Date(2024, 5, 1, 12, 0, 5, 0, time.UTC)
		updated, err := f.dispatcher.RecordOutcome(ctx, n.ID, notifications.StatusSent, &sentAt)
		require.NoError(t, err)
		assert.Equal(t, notifications.StatusSent, updated.Status)
		require.NotNil(t, updated.SentAt)
		assert.True(t, sentAt.Equal(*updated.SentAt))

		_, err = f.dispatcher.RecordOutcome(ctx, n.ID, notifications.StatusSent, &sentAt)
		assert.ErrorIs(t, err, notifications.ErrInvalidTransition)
		_, err = f.dispatcher.RecordOutcome(ctx, n.ID, notifications.StatusFailed, nil)
		assert.ErrorIs(t, err, notifications.ErrInvalidTransition)

		stored, err := f.dispatcher.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, notifications.StatusSent, stored.Status)
	})
}

func TestDispatcher_Dispatch_Validation(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t, &mockDeliverer{})
	tests := []struct {
		name  string
		req   notifications.DispatchRequest
		field string
	}{
		{"missing user", notifications.DispatchRequest{Type: "x", Channel: notifications.ChannelEmail, Content: map[string]any{}}, "userId"},
		{"missing type", notifications.DispatchRequest{UserID: "u1", Channel: notifications.ChannelEmail, Content: map[string]any{}}, "type"},
		{"unknown channel", notifications.DispatchRequest{UserID: "u1", Type: "x", Channel: "fax", Content: map[string]any{}}, "channel"},
		{"nil content", notifications.DispatchRequest{UserID: "u1", Type: "x", Channel: notifications.ChannelEmail}, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.dispatcher.Dispatch(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, validator.ExtractValidationErrors(err).Has(tt.field))
		})
	}
}

func TestDispatcher_Dispatch_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sub := &notifications.Subscription{
		UserID:      "u1",
		Channels:    []notifications.Channel{notifications.ChannelEmail},
		Preferences: notifications.DefaultPreferences(),
	}
	req := notifications.DispatchRequest{UserID: "u1", Type: notifications.TypeAccount, Channel: notifications.ChannelEmail, Content: map[string]any{}}
	newID := notifications.WithIDGenerator(func() string { return "n-1" })

	t.Run("subscription lookup failure", func(t *testing.T) {
		t.Parallel()
		subs := &mockSubscriptionStore{}
		subs.On("Get", mock.Anything, "u1").Return(nil, errors.New("timeout"))
		storage := &mockStorage{}

		d := notifications.NewDispatcher(subs, storage, &mockDeliverer{})
		_, err := d.Dispatch(ctx, req)
		assert.ErrorIs(t, err, notifications.ErrPersistence)
		storage.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("create failure skips hand-off", func(t *testing.T) {
		t.Parallel()
		subs := &mockSubscriptionStore{}
		subs.On("Get", mock.Anything, "u1").Return(sub, nil)
		storage := &mockStorage{}
		storage.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		deliverer := &mockDeliverer{}

		d := notifications.NewDispatcher(subs, storage, deliverer)
		n, err := d.Dispatch(ctx, req)
		assert.Nil(t, n)
		assert.ErrorIs(t, err, notifications.ErrPersistence)
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("hand-off failure discards the record", func(t *testing.T) {
		t.Parallel()
		subs := &mockSubscriptionStore{}
		subs.On("Get", mock.Anything, "u1").Return(sub, nil)
		storage := &mockStorage{}
		storage.On("Create", mock.Anything, mock.Anything).Return(nil)
		storage.On("Delete", mock.Anything, "n-1").Return(nil).Once()
		deliverer := &mockDeliverer{}
		deliverer.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("queue unavailable"))

		d := notifications.NewDispatcher(subs, storage, deliverer, newID, notifications.WithDispatcherClock(fixedClock))
		n, err := d.Dispatch(ctx, req)
		assert.Nil(t, n)
		assert.ErrorIs(t, err, notifications.ErrPersistence)
		assert.ErrorIs(t, err, notifications.ErrDeliveryHandoff)
		storage.AssertExpectations(t)
		storage.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed discard is reported", func(t *testing.T) {
		t.Parallel()
		subs := &mockSubscriptionStore{}
		subs.On("Get", mock.Anything, "u1").Return(sub, nil)
		storage := &mockStorage{}
		storage.On("Create", mock.Anything, mock.Anything).Return(nil)
		storage.On("Delete", mock.Anything, "n-1").Return(errors.New("connection reset")).Once()
		deliverer := &mockDeliverer{}
		deliverer.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("queue unavailable"))

		d := notifications.NewDispatcher(subs, storage, deliverer, newID)
		n, err := d.Dispatch(ctx, req)
		assert.Nil(t, n)
		assert.ErrorIs(t, err, notifications.ErrDeliveryHandoff)
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("persistence errors from the reader are not wrapped twice", func(t *testing.T) {
		t.Parallel()
		subs := &mockSubscriptionStore{}
		subs.On("Get", mock.Anything, "u1").Return(nil, errors.Join(notifications.ErrPersistence, errors.New("timeout")))

		d := notifications.NewDispatcher(subs, &mockStorage{}, &mockDeliverer{})
		_, err := d.Dispatch(ctx, req)
		require.ErrorIs(t, err, notifications.ErrPersistence)
		assert.Equal(t, 1, strings.Count(err.Error(), notifications.ErrPersistence.Error()))
	})
}

func TestDispatcher_Dispatch_HandoffFailureLeavesNoHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newDispatchFixture(t, notifications.DelivererFunc(func(context.Context, notifications.Notification) error {
		return errors.New("queue down")
	}))
	f.subscribeU1(t)

	n, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
		UserID: "u1", Type: notifications.TypeOrderUpdates, Channel: notifications.ChannelEmail, Content: map[string]any{},
	})
	require.ErrorIs(t, err, notifications.ErrDeliveryHandoff)
	assert.Nil(t, n)
	assert.Empty(t, f.history(t, "u1"))
}

func TestDispatcher_Dispatch_DefaultIDsAreTimeOrdered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	subs := notifications.NewSubscriptionManager(notifications.NewMemorySubscriptionStore())
	_, err := subs.CreateOrUpdate(ctx, notifications.SubscriptionInput{
		UserID:   "u1",
		Channels: []notifications.Channel{notifications.ChannelEmail},
	})
	require.NoError(t, err)
	d := notifications.NewDispatcher(subs, notifications.NewMemoryStorage(), nil, notifications.WithDispatcherClock(fixedClock))

	ids := make([]string, 0, 5)
	for range 5 {
		n, err := d.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: notifications.TypeAccount, Channel: notifications.ChannelEmail, Content: map[string]any{},
		})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	// Records sharing a createdAt list newest first by id.
	list, err := d.History(ctx, "u1", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, ids[4], list[0].ID)
	assert.Equal(t, ids[0], list[4].ID)
}

func TestDispatcher_RecordOutcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pending := func(t *testing.T) (dispatchFixture, string) {
		t.Helper()
		f := newDispatchFixture(t, notifications.NoOpDeliverer{})
		f.subscribeU1(t)
		n, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: "newsletter", Channel: notifications.ChannelEmail, Content: map[string]any{},
		})
		require.NoError(t, err)
		return f, n.ID
	}

	t.Run("sent requires timestamp", func(t *testing.T) {
		t.Parallel()
		f, id := pending(t)
		_, err := f.dispatcher.RecordOutcome(ctx, id, notifications.StatusSent, nil)
		assert.True(t, validator.ExtractValidationErrors(err).Has("sentAt"))

		stored, err := f.dispatcher.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, notifications.StatusPending, stored.Status)
	})

	t.Run("failed ignores timestamp", func(t *testing.T) {
		t.Parallel()
		f, id := pending(t)
		at := fixedNow
		n, err := f.dispatcher.RecordOutcome(ctx, id, notifications.StatusFailed, &at)
		require.NoError(t, err)
		assert.Equal(t, notifications.StatusFailed, n.Status)
		assert.Nil(t, n.SentAt)
	})

	t.Run("pending is not an outcome", func(t *testing.T) {
		t.Parallel()
		f, id := pending(t)
		_, err := f.dispatcher.RecordOutcome(ctx, id, notifications.StatusPending, nil)
		assert.True(t, validator.ExtractValidationErrors(err).Has("status"))
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		f, _ := pending(t)
		_, err := f.dispatcher.RecordOutcome(ctx, "missing", notifications.StatusFailed, nil)
		assert.ErrorIs(t, err, notifications.ErrNotificationNotFound)
	})

	t.Run("history lists newest first", func(t *testing.T) {
		t.Parallel()
		f, first := pending(t)
		second, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: notifications.TypeAccount, Channel: notifications.ChannelPush, Content: map[string]any{},
		})
		require.NoError(t, err)

		list := f.history(t, "u1")
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first, list[1].ID)

		page, err := f.dispatcher.History(ctx, "u1", notifications.ListOptions{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, first, page[0].ID)
	})
}
