package notifications

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/statemachine"
	"github.com/dmitrymomot/notifyhub/pkg/validator"
)

var (
	eventSent   = statemachine.StringEvent("mark_sent")
	eventFailed = statemachine.StringEvent("mark_failed")
)

func sentAtProvided(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	sentAt, _ := data.(*time.Time)
	return sentAt != nil && !sentAt.IsZero()
}

// statusTransitions is the delivery lifecycle: pending moves to sent (with a
// timestamp) or failed; both are terminal.
var statusTransitions = []statemachine.Transition{
	{
		From:   statemachine.StringState(StatusPending),
		To:     statemachine.StringState(StatusSent),
		Event:  eventSent,
		Guards: []statemachine.Guard{sentAtProvided},
	},
	{
		From:  statemachine.StringState(StatusPending),
		To:    statemachine.StringState(StatusFailed),
		Event: eventFailed,
	},
}

// checkTransition validates moving a notification from current to outcome.
// It returns ErrInvalidTransition when current is terminal and a validation
// error when a sent outcome lacks its timestamp.
func checkTransition(ctx context.Context, current, outcome Status, sentAt *time.Time) error {
	var event statemachine.Event
	switch outcome {
	case StatusSent:
		event = eventSent
	case StatusFailed:
		event = eventFailed
	default:
		return validator.Apply(validator.InList("status", outcome, []Status{StatusSent, StatusFailed}))
	}

	sm := statemachine.MustNew(statemachine.StringState(current), statemachine.WithTransitions(statusTransitions))
	err := sm.Fire(ctx, event, sentAt)
	switch {
	case err == nil:
		return nil
	case statemachine.IsTransitionRejectedError(err):
		return validator.ValidationErrors{{
			Field:          "sentAt",
			Message:        "is required when status is sent",
			TranslationKey: "validation.required",
			TranslationValues: map[string]any{
				"field": "sentAt",
			},
		}}
	default:
		return ErrInvalidTransition
	}
}
