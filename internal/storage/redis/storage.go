package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Sessions are stored as JSON values with no TTL: sessions never expire and
// are only removed by an explicit admin delete.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Pipeline keeps the session and its code index in step
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, 0)
	pipe.Set(ctx, codeIndexKey(session.Code), string(session.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, codeIndexKey(session.Code))
	pipe.Del(ctx, sessionKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSessionIDByCode(ctx context.Context, code model.JoinCode) (model.SessionID, error) {
	id, err := s.client.Get(ctx, codeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrSessionNotFound
		}
		return "", err
	}
	return model.SessionID(id), nil
}

func (s *Storage) CodeExists(ctx context.Context, code model.JoinCode) (bool, error) {
	n, err := s.client.Exists(ctx, codeIndexKey(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
