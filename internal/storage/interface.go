package storage

import (
	"context"

	"github.com/duelcast/duelcast/internal/model"
)

// Storage defines the interface for session persistence.
//
// Implementations store whole sessions keyed by id plus a join-code index
// that always resolves to at most one live session. Callers are expected to
// serialize read-modify-write cycles per session; storage only guarantees
// that individual operations are safe to call concurrently.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	// DeleteSession returns ErrSessionNotFound when the id is not stored,
	// so callers can distinguish the first teardown from replays
	DeleteSession(ctx context.Context, id model.SessionID) error

	// Join-code index operations
	GetSessionIDByCode(ctx context.Context, code model.JoinCode) (model.SessionID, error)
	CodeExists(ctx context.Context, code model.JoinCode) (bool, error)

	// Close releases any underlying resources
	Close() error
}
