package notifications

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/webhook"
)

// GatewaySender posts notifications to an HTTP gateway, e.g. an SMS or push
// provider bridge. Requests are HMAC-signed when a secret is configured.
type GatewaySender struct {
	client  *webhook.Sender
	url     string
	secret  string
	timeout time.Duration
}

// GatewayPayload is the JSON body posted to the gateway.
type GatewayPayload struct {
	ID      string         `json:"id"`
	UserID  string         `json:"userId"`
	Type    string         `json:"type"`
	Channel Channel        `json:"channel"`
	Content map[string]any `json:"content"`
}

func NewGatewaySender(client *webhook.Sender, url, secret string, timeout time.Duration) *GatewaySender {
	if client == nil {
		client = webhook.NewSender()
	}
	return &GatewaySender{client: client, url: url, secret: secret, timeout: timeout}
}

func (s *GatewaySender) Send(ctx context.Context, n Notification) error {
	opts := []webhook.SendOption{webhook.WithHeader("X-Notification-Channel", n.Channel.String())}
	if s.secret != "" {
		opts = append(opts, webhook.WithSignature(s.secret))
	}
	if s.timeout > 0 {
		opts = append(opts, webhook.WithTimeout(s.timeout))
	}

	return s.client.Send(ctx, s.url, GatewayPayload{
		ID:      n.ID,
		UserID:  n.UserID,
		Type:    n.Type,
		Channel: n.Channel,
		Content: n.Content,
	}, opts...)
}
