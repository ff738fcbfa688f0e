package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/testutil"
)

func newTestBus(maxListeners int) *Bus {
	return NewBus("sess-1", maxListeners, testutil.NopLogger())
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := newTestBus(0)

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		_, err := bus.Subscribe(model.EventUsersChanged, func() {
			got = append(got, i)
		})
		require.NoError(t, err)
	}

	bus.Publish(model.EventUsersChanged)
	assert.Len(t, got, 3)
}

func TestPublishIsScopedToEventKind(t *testing.T) {
	bus := newTestBus(0)

	var users, duels int
	_, _ = bus.Subscribe(model.EventUsersChanged, func() { users++ })
	_, _ = bus.Subscribe(model.EventDuelStarted, func() { duels++ })

	bus.Publish(model.EventDuelStarted)
	assert.Zero(t, users)
	assert.Equal(t, 1, duels)
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	bus := newTestBus(0)

	bus.Publish(model.EventUsersChanged)

	var calls int
	_, _ = bus.Subscribe(model.EventUsersChanged, func() { calls++ })
	assert.Zero(t, calls)

	bus.Publish(model.EventUsersChanged)
	assert.Equal(t, 1, calls)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := newTestBus(0)

	var calls int
	unsubscribe, err := bus.Subscribe(model.EventUsersChanged, func() { calls++ })
	require.NoError(t, err)

	bus.Publish(model.EventUsersChanged)
	unsubscribe()
	unsubscribe() // idempotent
	bus.Publish(model.EventUsersChanged)

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.ListenerCount())
}

func TestUnsubscribeInsideCallbackIsSafe(t *testing.T) {
	bus := newTestBus(0)

	var unsubscribe func()
	var calls int
	unsubscribe, _ = bus.Subscribe(model.EventSessionDeleted, func() {
		calls++
		unsubscribe()
	})

	bus.Publish(model.EventSessionDeleted)
	bus.Publish(model.EventSessionDeleted)
	assert.Equal(t, 1, calls)
}

func TestListenerCeilingIsEnforced(t *testing.T) {
	bus := newTestBus(2)

	_, err := bus.Subscribe(model.EventUsersChanged, func() {})
	require.NoError(t, err)
	_, err = bus.Subscribe(model.EventDuelStarted, func() {})
	require.NoError(t, err)

	_, err = bus.Subscribe(model.EventUsersChanged, func() {})
	assert.ErrorIs(t, err, ErrTooManyListeners)
}

func TestCeilingFreedByUnsubscribe(t *testing.T) {
	bus := newTestBus(1)

	unsubscribe, err := bus.Subscribe(model.EventUsersChanged, func() {})
	require.NoError(t, err)
	unsubscribe()

	_, err = bus.Subscribe(model.EventUsersChanged, func() {})
	assert.NoError(t, err)
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := newTestBus(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsubscribe, _ := bus.Subscribe(model.EventUsersChanged, func() {})
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(model.EventUsersChanged)
		}()
	}
	wg.Wait()
	assert.Zero(t, bus.ListenerCount())
}

func TestManagerLifecycle(t *testing.T) {
	mgr := NewManager(0, testutil.NopLogger())

	bus := mgr.GetOrCreate("sess-1")
	assert.Same(t, bus, mgr.GetOrCreate("sess-1"))
	assert.Same(t, bus, mgr.Get("sess-1"))
	assert.Nil(t, mgr.Get("sess-2"))

	var calls int
	_, _ = bus.Subscribe(model.EventSessionDeleted, func() { calls++ })

	// Teardown order: publish first, then remove
	mgr.Publish("sess-1", model.EventSessionDeleted)
	mgr.Remove("sess-1")

	assert.Equal(t, 1, calls)
	assert.Nil(t, mgr.Get("sess-1"))

	// Publishing to a removed session is a no-op
	mgr.Publish("sess-1", model.EventUsersChanged)
}
