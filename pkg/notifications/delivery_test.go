package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/email"
	"github.com/dmitrymomot/notifyhub/pkg/notifications"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/webhook"
)

func taskPayload(t *testing.T, id string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(notifications.DeliveryTask{NotificationID: id})
	require.NoError(t, err)
	return data
}

func TestDeliveryHandler(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	setup := func(t *testing.T, sender notifications.Sender) (dispatchFixture, queue.Handler, string) {
		t.Helper()
		f := newDispatchFixture(t, notifications.NoOpDeliverer{})
		f.subscribeU1(t)
		n, err := f.dispatcher.Dispatch(ctx, notifications.DispatchRequest{
			UserID: "u1", Type: notifications.TypeOrderUpdates, Channel: notifications.ChannelEmail,
			Content: map[string]any{"to": "u1@example.com"},
		})
		require.NoError(t, err)
		h := notifications.NewDeliveryHandler(f.dispatcher, sender, notifications.WithDeliveryClock(fixedClock))
		return f, h, n.ID
	}

	t.Run("name matches enqueued task", func(t *testing.T) {
		t.Parallel()
		store := queue.NewMemoryStorage()
		enq, err := queue.NewEnqueuer(store)
		require.NoError(t, err)
		require.NoError(t, notifications.NewQueueDeliverer(enq).Deliver(ctx, notifications.Notification{ID: "n-1"}))

		task, err := store.ClaimTask(ctx, uuid.New(), []string{notifications.DeliveryQueue}, time.Minute)
		require.NoError(t, err)

		_, h, _ := setup(t, &mockSender{})
		assert.Equal(t, h.Name(), task.TaskName)
		assert.JSONEq(t, `{"notification_id":"n-1"}`, string(task.Payload))
	})

	t.Run("successful send records sent", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}
		sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
		f, h, id := setup(t, sender)

		require.NoError(t, h.Handle(ctx, taskPayload(t, id)))

		n, err := f.dispatcher.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, notifications.StatusSent, n.Status)
		require.NotNil(t, n.SentAt)
		assert.Equal(t, fixedNow, *n.SentAt)
	})

	t.Run("failed send records failed", func(t *testing.T) {
		t.Parallel()
		sendErr := errors.New("provider down")
		sender := &mockSender{}
		sender.On("Send", mock.Anything, mock.Anything).Return(sendErr).Once()
		f, h, id := setup(t, sender)

		assert.ErrorIs(t, h.Handle(ctx, taskPayload(t, id)), sendErr)

		n, err := f.dispatcher.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, notifications.StatusFailed, n.Status)
		assert.Nil(t, n.SentAt)
	})

	t.Run("resolved and unknown notifications are skipped", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}
		f, h, id := setup(t, sender)
		_, err := f.dispatcher.RecordOutcome(ctx, id, notifications.StatusFailed, nil)
		require.NoError(t, err)

		assert.NoError(t, h.Handle(ctx, taskPayload(t, id)))
		assert.NoError(t, h.Handle(ctx, taskPayload(t, "missing")))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestChannelRouter(t *testing.T) {
	t.Parallel()

	email := &mockSender{}
	email.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	router := notifications.ChannelRouter{notifications.ChannelEmail: email}

	assert.NoError(t, router.Send(context.Background(), notifications.Notification{Channel: notifications.ChannelEmail}))
	assert.ErrorIs(t, router.Send(context.Background(), notifications.Notification{Channel: notifications.ChannelSMS}), notifications.ErrNoSender)
	email.AssertExpectations(t)
}

type recordingMailer struct {
	sent []email.SendEmailParams
}

func (m *recordingMailer) SendEmail(_ context.Context, p email.SendEmailParams) error {
	m.sent = append(m.sent, p)
	return p.Validate()
}

func TestEmailSender(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		content map[string]any
		want    email.SendEmailParams
		wantErr error
	}{
		{
			name:    "explicit fields",
			content: map[string]any{"to": "a@example.com", "subject": "Shipped", "body": "Your order shipped", "html": "<p>Shipped</p>"},
			want:    email.SendEmailParams{SendTo: "a@example.com", Subject: "Shipped", BodyText: "Your order shipped", BodyHTML: "<p>Shipped</p>", Tag: "orderUpdates"},
		},
		{
			name:    "email key and default subject",
			content: map[string]any{"email": "b@example.com", "body": "hi"},
			want:    email.SendEmailParams{SendTo: "b@example.com", Subject: "New orderUpdates notification", BodyText: "hi", Tag: "orderUpdates"},
		},
		{
			name:    "no recipient",
			content: map[string]any{"body": "hi"},
			wantErr: notifications.ErrMissingRecipient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mailer := &recordingMailer{}
			err := notifications.NewEmailSender(mailer).Send(ctx, notifications.Notification{
				Type: notifications.TypeOrderUpdates, Channel: notifications.ChannelEmail, Content: tt.content,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, mailer.sent)
				return
			}
			require.NoError(t, err)
			require.Len(t, mailer.sent, 1)
			assert.Equal(t, tt.want, mailer.sent[0])
		})
	}
}

func TestGatewaySender(t *testing.T) {
	t.Parallel()

	type request struct {
		body    []byte
		headers http.Header
	}
	received := make(chan request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- request{body: body, headers: r.Header.Clone()}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := notifications.NewGatewaySender(webhook.NewSender(), srv.URL, "gateway-secret", time.Second)
	err := sender.Send(context.Background(), notifications.Notification{
		ID: "n-1", UserID: "u1", Type: notifications.TypeAccount, Channel: notifications.ChannelSMS,
		Content: map[string]any{"phone": "+15550100"},
	})
	require.NoError(t, err)

	got := <-received
	gotBody, gotHeaders := got.body, got.headers
	assert.JSONEq(t, `{"id":"n-1","userId":"u1","type":"account","channel":"sms","content":{"phone":"+15550100"}}`, string(gotBody))
	assert.Equal(t, "sms", gotHeaders.Get("X-Notification-Channel"))

	sig, err := webhook.ExtractSignatureHeaders(gotHeaders)
	require.NoError(t, err)
	assert.NoError(t, webhook.VerifySignature("gateway-secret", gotBody, sig, time.Minute))

	t.Run("gateway error", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer failing.Close()

		err := notifications.NewGatewaySender(nil, failing.URL, "", 0).Send(context.Background(), notifications.Notification{
			ID: "n-2", Channel: notifications.ChannelPush, Content: map[string]any{},
		})
		assert.Error(t, err)
	})
}
