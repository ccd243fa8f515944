package statemachine

import (
	"context"
	"sync"
)

// SimpleStateMachine is a thread-safe in-memory state machine.
// Transitions are indexed as [fromState][event][]Transition.
type SimpleStateMachine struct {
	currentState State
	transitions  map[string]map[string][]Transition
	mu           sync.RWMutex
}

func newSimpleStateMachine(initialState State) *SimpleStateMachine {
	return &SimpleStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string][]Transition),
	}
}

func (sm *SimpleStateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *SimpleStateMachine) AddTransition(from, to State, event Event, guards ...Guard) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.transitions[from.Name()]; !ok {
		sm.transitions[from.Name()] = make(map[string][]Transition)
	}

	sm.transitions[from.Name()][event.Name()] = append(sm.transitions[from.Name()][event.Name()], Transition{
		From:   from,
		To:     to,
		Event:  event,
		Guards: guards,
	})
	return nil
}

func (sm *SimpleStateMachine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	from := sm.currentState.Name()
	transitions := sm.transitions[from][event.Name()]
	if len(transitions) == 0 {
		return NewErrNoTransitionAvailable(from, event.Name())
	}

	// First transition with passing guards wins.
	for _, t := range transitions {
		if sm.guardsPass(ctx, t, event, data) {
			sm.currentState = t.To
			return nil
		}
	}

	return NewErrTransitionRejected(from, event.Name())
}

func (sm *SimpleStateMachine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, t := range sm.transitions[sm.currentState.Name()][event.Name()] {
		if sm.guardsPass(ctx, t, event, data) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the current state.
func (sm *SimpleStateMachine) IsTerminal() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.transitions[sm.currentState.Name()]) == 0
}

func (sm *SimpleStateMachine) guardsPass(ctx context.Context, t Transition, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, sm.currentState, event, data) {
			return false
		}
	}
	return true
}
