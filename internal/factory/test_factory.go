package factory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/duelcast/duelcast/internal/dependencies/mocks"
	"github.com/duelcast/duelcast/internal/events"
	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/services/auth"
	"github.com/duelcast/duelcast/internal/services/duel"
	"github.com/duelcast/duelcast/internal/services/session"
	"github.com/duelcast/duelcast/internal/storage/memory"
)

// StubCatalog is a catalog source serving queued card URLs for testing
type StubCatalog struct {
	mu   sync.Mutex
	urls []string
	next int
}

// NewStubCatalog creates a stub catalog with the given card URLs
func NewStubCatalog(urls ...string) *StubCatalog {
	return &StubCatalog{urls: urls}
}

// RandomCard returns the next queued URL, cycling when exhausted
func (c *StubCatalog) RandomCard(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.urls) == 0 {
		return "https://cards.example.com/default.jpg", nil
	}
	url := c.urls[c.next%len(c.urls)]
	c.next++
	return url, nil
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	StubCatalog *StubCatalog
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	stubCatalog := NewStubCatalog()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	signingKey := []byte("0123456789abcdef0123456789abcdef")

	authService := auth.New(signingKey, mockClock, logger)
	registry := session.NewRegistry(store, mockClock, mockRandom, logger)
	engine := duel.NewEngine(registry, stubCatalog, mockRandom, logger)
	buses := events.NewManager(events.DefaultMaxListeners, logger)

	app := &App{
		Storage:     store,
		Clock:       mockClock,
		Random:      mockRandom,
		AuthService: authService,
		Registry:    registry,
		Engine:      engine,
		Buses:       buses,
	}

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		StubCatalog: stubCatalog,
	}
}

// QueueCards loads card URLs into the stub catalog
func (t *TestApp) QueueCards(urls ...string) {
	t.StubCatalog.mu.Lock()
	defer t.StubCatalog.mu.Unlock()
	t.StubCatalog.urls = append(t.StubCatalog.urls, urls...)
}

// CreateSessionWithPlayers is a shortcut that creates a session and binds
// the given nicknames as players, returning the session and player IDs
func (t *TestApp) CreateSessionWithPlayers(ctx context.Context, name, password, code string, nicknames ...string) (*model.Session, []model.UserID, error) {
	t.MockRandom.QueueCode(code)
	sess, err := t.Registry.CreateSession(ctx, name, password)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]model.UserID, 0, len(nicknames))
	for _, nick := range nicknames {
		id, err := t.Registry.AddPlayer(ctx, sess.ID, nick)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
	}

	sess, err = t.Registry.GetSession(ctx, sess.ID)
	if err != nil {
		return nil, nil, err
	}
	return sess, ids, nil
}
