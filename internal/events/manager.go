package events

import (
	"log/slog"
	"sync"

	"github.com/duelcast/duelcast/internal/model"
)

// Manager holds the event bus for every live session
type Manager struct {
	maxListeners int
	logger       *slog.Logger

	mu    sync.RWMutex
	buses map[model.SessionID]*Bus
}

// NewManager creates a bus manager. maxListeners is the per-session listener
// ceiling; zero selects DefaultMaxListeners.
func NewManager(maxListeners int, logger *slog.Logger) *Manager {
	return &Manager{
		maxListeners: maxListeners,
		logger:       logger.With(slog.String("component", "events")),
		buses:        make(map[model.SessionID]*Bus),
	}
}

// GetOrCreate returns the bus for a session, creating one if needed
func (m *Manager) GetOrCreate(sessionID model.SessionID) *Bus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bus, ok := m.buses[sessionID]; ok {
		return bus
	}
	bus := NewBus(sessionID, m.maxListeners, m.logger)
	m.buses[sessionID] = bus
	return bus
}

// Get returns the bus for a session, or nil if none exists
func (m *Manager) Get(sessionID model.SessionID) *Bus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buses[sessionID]
}

// Publish delivers an event on a session's bus if one exists
func (m *Manager) Publish(sessionID model.SessionID, kind model.EventType) {
	if bus := m.Get(sessionID); bus != nil {
		bus.Publish(kind)
	}
}

// Remove discards a session's bus. Callers must publish SessionDeleted
// before removing so every subscriber sees the teardown.
func (m *Manager) Remove(sessionID model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buses[sessionID]; ok {
		delete(m.buses, sessionID)
		m.logger.Info("event bus removed", slog.String("session_id", string(sessionID)))
	}
}
