package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyhub/pkg/queue"
)

// DeliveryQueue is the queue carrying DeliveryTask payloads.
const DeliveryQueue = "notifications"

// DeliveryTask asks a worker to deliver one stored notification.
type DeliveryTask struct {
	NotificationID string `json:"notification_id"`
}

type enqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) (uuid.UUID, error)
}

// QueueDeliverer hands notifications off by enqueuing a DeliveryTask.
type QueueDeliverer struct {
	enqueuer enqueuer
}

func NewQueueDeliverer(e enqueuer) *QueueDeliverer {
	return &QueueDeliverer{enqueuer: e}
}

func (d *QueueDeliverer) Deliver(ctx context.Context, n Notification) error {
	_, err := d.enqueuer.Enqueue(ctx, DeliveryTask{NotificationID: n.ID}, queue.WithQueue(DeliveryQueue))
	return err
}
