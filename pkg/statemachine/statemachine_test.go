package statemachine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/statemachine"
)

const (
	Pending = statemachine.StringState("pending")
	Sent    = statemachine.StringState("sent")
	Failed  = statemachine.StringState("failed")

	MarkSent   = statemachine.StringEvent("mark_sent")
	MarkFailed = statemachine.StringEvent("mark_failed")
)

func deliveryMachine(initial statemachine.State, guards ...statemachine.Guard) statemachine.StateMachine {
	return statemachine.MustNew(initial,
		statemachine.WithTransition(Pending, Sent, MarkSent, guards...),
		statemachine.WithTransition(Pending, Failed, MarkFailed),
	)
}

func TestStateMachine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fires defined transition", func(t *testing.T) {
		t.Parallel()
		sm := deliveryMachine(Pending)

		assert.True(t, sm.CanFire(ctx, MarkSent, nil))
		require.NoError(t, sm.Fire(ctx, MarkSent, nil))
		assert.Equal(t, Sent, sm.Current())
		assert.True(t, sm.IsTerminal())
	})

	t.Run("terminal state rejects further events", func(t *testing.T) {
		t.Parallel()
		sm := deliveryMachine(Failed)

		assert.False(t, sm.CanFire(ctx, MarkSent, nil))
		err := sm.Fire(ctx, MarkSent, nil)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.Equal(t, Failed, sm.Current())
	})

	t.Run("guard blocks transition", func(t *testing.T) {
		t.Parallel()
		hasTimestamp := func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
			return data != nil
		}
		sm := deliveryMachine(Pending, hasTimestamp)

		err := sm.Fire(ctx, MarkSent, nil)
		require.Error(t, err)
		assert.True(t, statemachine.IsTransitionRejectedError(err))
		assert.Equal(t, Pending, sm.Current())

		require.NoError(t, sm.Fire(ctx, MarkSent, "2024-01-01T00:00:00Z"))
		assert.Equal(t, Sent, sm.Current())
	})

	t.Run("nil event", func(t *testing.T) {
		t.Parallel()
		sm := deliveryMachine(Pending)
		assert.ErrorIs(t, sm.Fire(ctx, nil, nil), statemachine.ErrInvalidEvent)
		assert.False(t, sm.CanFire(ctx, nil, nil))
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil initial state", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(nil)
		assert.ErrorIs(t, err, statemachine.ErrInvalidState)
	})

	t.Run("invalid transition table", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(Pending, statemachine.WithTransitions([]statemachine.Transition{
			{From: Pending, To: nil, Event: MarkSent},
		}))
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("must new panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { statemachine.MustNew(nil) })
	})
}

func TestConcurrentFire(t *testing.T) {
	t.Parallel()
	sm := deliveryMachine(Pending)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sm.Fire(context.Background(), MarkFailed, nil); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, Failed, sm.Current())
}
