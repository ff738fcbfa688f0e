package duel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/duelcast/duelcast/internal/catalog"
	"github.com/duelcast/duelcast/internal/dependencies/random"
	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/services/session"
)

// Engine draws duel pairs: two random card artifacts assigned to two
// distinct players from the session roster.
type Engine struct {
	registry *session.Registry
	source   catalog.Source
	random   random.Random
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[model.SessionID]struct{}
}

// NewEngine creates a duel engine
func NewEngine(registry *session.Registry, source catalog.Source, rnd random.Random, logger *slog.Logger) *Engine {
	return &Engine{
		registry: registry,
		source:   source,
		random:   rnd,
		logger:   logger.With(slog.String("component", "duel")),
		inFlight: make(map[model.SessionID]struct{}),
	}
}

// begin marks a session's duel draw as in flight, rejecting overlap
func (e *Engine) begin(id model.SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[id]; busy {
		return model.ErrDuelInProgress
	}
	e.inFlight[id] = struct{}{}
	return nil
}

func (e *Engine) end(id model.SessionID) {
	e.mu.Lock()
	delete(e.inFlight, id)
	e.mu.Unlock()
}

// Run draws a new duel for the session and installs it atomically.
//
// The roster is read before the external fetch and the session re-validated
// when the pair is installed; the session lock is never held across the
// fetch. On any failure the prior duel state is left untouched. Concurrent
// draws for the same session are rejected with ErrDuelInProgress.
func (e *Engine) Run(ctx context.Context, id model.SessionID) (*model.DuelPair, error) {
	if err := e.begin(id); err != nil {
		return nil, err
	}
	defer e.end(id)

	players, err := e.registry.Players(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(players) < 2 {
		return nil, model.ErrInsufficientPlayers
	}

	url1, url2, err := e.fetchPair(ctx)
	if err != nil {
		return nil, err
	}

	// Two distinct players, uniformly without replacement
	first := e.random.Intn(len(players))
	player1 := players[first]
	players = append(players[:first], players[first+1:]...)
	player2 := players[e.random.Intn(len(players))]

	pair := model.DuelPair{
		Card1: model.Card{URL: url1, Owner: player1},
		Card2: model.Card{URL: url2, Owner: player2},
	}

	if err := e.registry.InstallDuel(ctx, id, pair); err != nil {
		return nil, err
	}

	e.logger.Info("duel started",
		slog.String("session_id", string(id)),
		slog.String("player1", string(player1.ID)),
		slog.String("player2", string(player2.ID)))

	return &pair, nil
}

// fetchPair issues the two artifact fetches concurrently
func (e *Engine) fetchPair(ctx context.Context) (string, string, error) {
	type result struct {
		url string
		err error
	}

	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			url, err := e.source.RandomCard(ctx)
			results <- result{url: url, err: err}
		}()
	}

	urls := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			return "", "", r.err
		}
		urls = append(urls, r.url)
	}
	return urls[0], urls[1], nil
}
