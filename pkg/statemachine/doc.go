// Package statemachine implements a small finite state machine used to
// validate lifecycle transitions such as notification delivery status.
//
// A machine is built with New (or MustNew) positioned at an initial state and
// configured with WithTransition / WithTransitions. Fire moves the machine to
// the target state of the first transition whose guards all pass; CanFire
// reports the same decision without mutating state.
//
//	const (
//	    Pending = statemachine.StringState("pending")
//	    Sent    = statemachine.StringState("sent")
//	    MarkSent = statemachine.StringEvent("mark_sent")
//	)
//
//	sm := statemachine.MustNew(Pending,
//	    statemachine.WithTransition(Pending, Sent, MarkSent),
//	)
//	if err := sm.Fire(ctx, MarkSent, nil); err != nil {
//	    // statemachine.IsNoTransitionAvailableError(err)
//	}
//
// Errors returned by Fire are typed so callers can tell an undefined
// transition (ErrNoTransitionAvailable) from one blocked by a guard
// (ErrTransitionRejected).
package statemachine
