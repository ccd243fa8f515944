package notifications

import (
	"context"
	"fmt"
)

// Sender pushes a notification to an external provider.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n Notification) error

func (f SenderFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// ChannelRouter dispatches to the Sender registered for the notification's channel.
type ChannelRouter map[Channel]Sender

func (r ChannelRouter) Send(ctx context.Context, n Notification) error {
	s, ok := r[n.Channel]
	if !ok || s == nil {
		return fmt.Errorf("%w: %s", ErrNoSender, n.Channel)
	}
	return s.Send(ctx, n)
}
