package memory

import (
	"context"
	"sync"

	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// This is the default backend; session state lives only as long as the
// process does.
type Storage struct {
	mu sync.RWMutex

	sessions  map[model.SessionID]*model.Session
	codeIndex map[model.JoinCode]model.SessionID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:  make(map[model.SessionID]*model.Session),
		codeIndex: make(map[model.JoinCode]model.SessionID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.codeIndex[session.Code] = session.ID
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	delete(s.codeIndex, session.Code)
	delete(s.sessions, id)
	return nil
}

func (s *Storage) GetSessionIDByCode(ctx context.Context, code model.JoinCode) (model.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[code]
	if !ok {
		return "", model.ErrSessionNotFound
	}
	return id, nil
}

func (s *Storage) CodeExists(ctx context.Context, code model.JoinCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codeIndex[code]
	return ok, nil
}

// Close is a no-op for the in-memory backend
func (s *Storage) Close() error {
	return nil
}
