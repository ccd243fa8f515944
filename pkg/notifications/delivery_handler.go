package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
)

// DeliveryHandlerOption configures the handler built by NewDeliveryHandler.
type DeliveryHandlerOption func(*deliveryHandler)

func WithDeliveryLogger(l *slog.Logger) DeliveryHandlerOption {
	return func(h *deliveryHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithDeliveryMetrics(m *Metrics) DeliveryHandlerOption {
	return func(h *deliveryHandler) {
		h.metrics = m
	}
}

func WithDeliveryClock(now func() time.Time) DeliveryHandlerOption {
	return func(h *deliveryHandler) {
		if now != nil {
			h.now = now
		}
	}
}

type deliveryHandler struct {
	dispatcher *Dispatcher
	sender     Sender
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewDeliveryHandler returns the queue handler for DeliveryTask. It sends
// pending notifications through sender and records the outcome; records that
// are gone or already resolved are skipped.
func NewDeliveryHandler(d *Dispatcher, sender Sender, opts ...DeliveryHandlerOption) queue.Handler {
	h := &deliveryHandler{
		dispatcher: d,
		sender:     sender,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return queue.NewTaskHandler(h.handle)
}

func (h *deliveryHandler) handle(ctx context.Context, task DeliveryTask) error {
	n, err := h.dispatcher.Get(ctx, task.NotificationID)
	if errors.Is(err, ErrNotificationNotFound) {
		h.logger.LogAttrs(ctx, slog.LevelWarn, "delivery task for unknown notification",
			logger.NotificationID(task.NotificationID))
		return nil
	}
	if err != nil {
		return err
	}
	if n.Status.Terminal() {
		return nil
	}

	started := h.now()
	sendErr := h.sender.Send(ctx, *n)
	took := h.now().Sub(started)
	if sendErr != nil {
		h.metrics.observeDelivery(n.Channel, StatusFailed, took)
		h.logger.LogAttrs(ctx, slog.LevelWarn, "notification delivery failed",
			logger.NotificationID(n.ID),
			logger.Channel(n.Channel.String()),
			logger.Error(sendErr),
		)
		_, err = h.dispatcher.RecordOutcome(ctx, n.ID, StatusFailed, nil)
	} else {
		h.metrics.observeDelivery(n.Channel, StatusSent, took)
		sentAt := h.now()
		_, err = h.dispatcher.RecordOutcome(ctx, n.ID, StatusSent, &sentAt)
	}

	if errors.Is(err, ErrInvalidTransition) {
		h.logger.LogAttrs(ctx, slog.LevelInfo, "notification resolved concurrently",
			logger.NotificationID(n.ID))
		err = nil
	}
	return errors.Join(sendErr, err)
}
