package statemachine

import "fmt"

// Option configures a state machine during construction.
type Option func(*SimpleStateMachine) error

// New creates a state machine positioned at initialState.
func New(initialState State, opts ...Option) (StateMachine, error) {
	if initialState == nil {
		return nil, ErrInvalidState
	}

	sm := newSimpleStateMachine(initialState)
	for _, opt := range opts {
		if err := opt(sm); err != nil {
			return nil, err
		}
	}

	return sm, nil
}

// MustNew is like New but panics on configuration errors.
func MustNew(initialState State, opts ...Option) StateMachine {
	sm, err := New(initialState, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return sm
}

// WithTransition adds a single guarded transition.
func WithTransition(from, to State, event Event, guards ...Guard) Option {
	return func(sm *SimpleStateMachine) error {
		return sm.AddTransition(from, to, event, guards...)
	}
}

// WithTransitions adds every transition of a pre-built table.
func WithTransitions(transitions []Transition) Option {
	return func(sm *SimpleStateMachine) error {
		for i, t := range transitions {
			if err := sm.AddTransition(t.From, t.To, t.Event, t.Guards...); err != nil {
				return fmt.Errorf("failed to add transition[%d]: %w", i, err)
			}
		}
		return nil
	}
}
