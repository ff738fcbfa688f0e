package events

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/duelcast/duelcast/internal/model"
)

// ErrTooManyListeners is returned when a bus hits its configured ceiling
var ErrTooManyListeners = errors.New("listener ceiling reached")

// DefaultMaxListeners is the default listener ceiling per session bus.
// Audiences can run into the thousands, so the ceiling is high.
const DefaultMaxListeners = 100000

// Bus is the event fan-out for one session.
//
// Publish delivers synchronously to every listener subscribed at call time.
// There is no backlog or replay: a listener subscribed after Publish runs
// never sees that occurrence.
type Bus struct {
	sessionID    model.SessionID
	maxListeners int
	logger       *slog.Logger

	mu        sync.RWMutex
	nextID    int
	count     int
	listeners map[model.EventType]map[int]func()
}

// NewBus creates an event bus for a session
func NewBus(sessionID model.SessionID, maxListeners int, logger *slog.Logger) *Bus {
	if maxListeners <= 0 {
		maxListeners = DefaultMaxListeners
	}
	return &Bus{
		sessionID:    sessionID,
		maxListeners: maxListeners,
		logger:       logger.With(slog.String("session_id", string(sessionID))),
		listeners:    make(map[model.EventType]map[int]func()),
	}
}

// Subscribe registers a listener for one event kind and returns a function
// that removes it again
func (b *Bus) Subscribe(kind model.EventType, fn func()) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.maxListeners {
		b.logger.Warn("listener ceiling reached",
			slog.String("event", string(kind)),
			slog.Int("max_listeners", b.maxListeners))
		return nil, ErrTooManyListeners
	}

	if b.listeners[kind] == nil {
		b.listeners[kind] = make(map[int]func())
	}
	id := b.nextID
	b.nextID++
	b.listeners[kind][id] = fn
	b.count++

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.listeners[kind][id]; ok {
				delete(b.listeners[kind], id)
				b.count--
			}
		})
	}, nil
}

// Publish delivers the event kind to every currently subscribed listener.
// The listener set is snapshotted at call time, so a callback unsubscribing
// itself (or others) mid-delivery is safe.
func (b *Bus) Publish(kind model.EventType) {
	b.mu.RLock()
	snapshot := make([]func(), 0, len(b.listeners[kind]))
	for _, fn := range b.listeners[kind] {
		snapshot = append(snapshot, fn)
	}
	b.mu.RUnlock()

	for _, fn := range snapshot {
		fn()
	}
}

// ListenerCount returns the number of registered listeners across all kinds
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}
