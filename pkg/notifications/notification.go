package notifications

import "time"

// Status is the delivery state of a Notification.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Notification records one dispatch attempt. It exists only for requests
// that passed eligibility, and leaves pending at most once.
type Notification struct {
	ID        string         `json:"id" bson:"_id"`
	UserID    string         `json:"userId" bson:"userId"`
	Type      string         `json:"type" bson:"type"`
	Channel   Channel        `json:"channel" bson:"channel"`
	Content   map[string]any `json:"content" bson:"content"`
	Status    Status         `json:"status" bson:"status"`
	SentAt    *time.Time     `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// DispatchRequest asks for content of a given type to be sent over a channel.
type DispatchRequest struct {
	UserID  string         `json:"userId"`
	Type    string         `json:"type"`
	Channel Channel        `json:"channel"`
	Content map[string]any `json:"content"`
}
