package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/duelcast/duelcast/internal/dependencies/clock"
	"github.com/duelcast/duelcast/internal/dependencies/random"
	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/storage"
)

const (
	// JoinCodeLength is the length of generated join codes
	JoinCodeLength = 4
	// JoinCodeAlphabet is the characters used in join codes.
	// 32 symbols; visually ambiguous I, L, O and 0 are excluded.
	JoinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ123456789"
)

// Registry owns all session entities and the join-code index.
//
// Every mutation of a single session runs under that session's lock, so
// concurrent joins, votes and deletes on one session are mutually exclusive
// while operations on different sessions proceed in parallel.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.SessionID]*sync.Mutex
}

// NewRegistry creates a new session registry
func NewRegistry(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		storage: store,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "session")),
		locks:   make(map[model.SessionID]*sync.Mutex),
	}
}

// lockFor returns the exclusive-access lock for a session id
func (r *Registry) lockFor(id model.SessionID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}

// forget drops a session's lock entry. Only called once the session is
// known to be absent; ids are uuids and never reused, so a racing holder of
// the old mutex cannot collide with a future session.
func (r *Registry) forget(id model.SessionID) {
	r.mu.Lock()
	delete(r.locks, id)
	r.mu.Unlock()
}

// update runs fn against the stored session under the session's lock and
// persists the result. fn never suspends on I/O.
func (r *Registry) update(ctx context.Context, id model.SessionID, fn func(*model.Session) error) error {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := r.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			r.forget(id)
		}
		return err
	}
	if err := fn(session); err != nil {
		return err
	}
	session.UpdatedAt = r.clock.Now()
	return r.storage.SaveSession(ctx, session)
}

// CreateSession creates a new session with a fresh id and join code.
// Code generation retries until it finds a code no live session holds.
func (r *Registry) CreateSession(ctx context.Context, name, password string) (*model.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var code model.JoinCode
	for {
		code = model.JoinCode(r.random.Code(JoinCodeLength, JoinCodeAlphabet))
		exists, err := r.storage.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	now := r.clock.Now()
	session := &model.Session{
		ID:           model.SessionID(uuid.NewString()),
		Name:         name,
		Code:         code,
		PasswordHash: string(hash),
		Players:      []model.Player{},
		Audience:     []model.AudienceMember{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	r.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("code", string(session.Code)))

	return session, nil
}

// GetSession retrieves a session by id
func (r *Registry) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return r.storage.GetSession(ctx, id)
}

// ResolveCode resolves a join code to a session id
func (r *Registry) ResolveCode(ctx context.Context, code model.JoinCode) (model.SessionID, error) {
	return r.storage.GetSessionIDByCode(ctx, code)
}

// Authenticate resolves a code and checks the session password, returning
// ErrInvalidCode or ErrInvalidPassword as structured control-plane errors
func (r *Registry) Authenticate(ctx context.Context, code model.JoinCode, password string) (*model.Session, error) {
	id, err := r.ResolveCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrInvalidCode
		}
		return nil, err
	}

	session, err := r.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrInvalidCode
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(session.PasswordHash), []byte(password)) != nil {
		return nil, model.ErrInvalidPassword
	}

	return session, nil
}

// AddPlayer appends a new player to the session roster and returns its id
func (r *Registry) AddPlayer(ctx context.Context, id model.SessionID, nickname string) (model.UserID, error) {
	userID := model.UserID(uuid.NewString())
	err := r.update(ctx, id, func(s *model.Session) error {
		s.Players = append(s.Players, model.Player{
			ID:   userID,
			Name: nickname,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// AddAudience appends a new audience member to the session and returns its id
func (r *Registry) AddAudience(ctx context.Context, id model.SessionID) (model.UserID, error) {
	userID := model.UserID(uuid.NewString())
	err := r.update(ctx, id, func(s *model.Session) error {
		s.Audience = append(s.Audience, model.AudienceMember{ID: userID})
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// RemovePlayer removes a player from the roster by id. Removing an id that
// is not in the roster is a no-op.
func (r *Registry) RemovePlayer(ctx context.Context, id model.SessionID, userID model.UserID) error {
	return r.update(ctx, id, func(s *model.Session) error {
		for i, p := range s.Players {
			if p.ID == userID {
				s.Players = append(s.Players[:i], s.Players[i+1:]...)
				break
			}
		}
		return nil
	})
}

// Players returns a snapshot of the session's current player roster
func (r *Registry) Players(ctx context.Context, id model.SessionID) ([]model.Player, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := r.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			r.forget(id)
		}
		return nil, err
	}
	players := make([]model.Player, len(session.Players))
	copy(players, session.Players)
	return players, nil
}

// CurrentDuel returns a snapshot of the active duel, taken under the
// session lock so readers never observe a vote counter mid-update.
// Returns ErrNoActiveDuel when no duel is running.
func (r *Registry) CurrentDuel(ctx context.Context, id model.SessionID) (*model.DuelPair, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := r.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			r.forget(id)
		}
		return nil, err
	}
	if session.CurrentDuel == nil {
		return nil, model.ErrNoActiveDuel
	}
	pair := *session.CurrentDuel
	return &pair, nil
}

// CastVote increments one counter on the active duel's selected card:
// the player counter when the voter holds the player role, the audience
// counter otherwise
func (r *Registry) CastVote(ctx context.Context, id model.SessionID, slot int, asPlayer bool) error {
	if slot != 1 && slot != 2 {
		return model.ErrInvalidSlot
	}
	return r.update(ctx, id, func(s *model.Session) error {
		if s.CurrentDuel == nil {
			return model.ErrNoActiveDuel
		}
		card := &s.CurrentDuel.Card1
		if slot == 2 {
			card = &s.CurrentDuel.Card2
		}
		if asPlayer {
			card.Votes++
		} else {
			card.AudienceVotes++
		}
		return nil
	})
}

// InstallDuel atomically replaces the session's active duel pair, discarding
// any prior vote tallies. The session is re-validated to still exist.
func (r *Registry) InstallDuel(ctx context.Context, id model.SessionID, pair model.DuelPair) error {
	return r.update(ctx, id, func(s *model.Session) error {
		s.CurrentDuel = &pair
		return nil
	})
}

// DeleteSession removes the session and its code mapping. The caller is
// responsible for publishing SessionDeleted to subscribers first.
func (r *Registry) DeleteSession(ctx context.Context, id model.SessionID) error {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := r.storage.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			r.forget(id)
		}
		return err
	}

	r.forget(id)

	r.logger.Info("session deleted", slog.String("session_id", string(id)))
	return nil
}
