package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/duelcast/duelcast/internal/catalog"
	"github.com/duelcast/duelcast/internal/dependencies/clock"
	"github.com/duelcast/duelcast/internal/dependencies/random"
	"github.com/duelcast/duelcast/internal/events"
	"github.com/duelcast/duelcast/internal/services/auth"
	"github.com/duelcast/duelcast/internal/services/duel"
	"github.com/duelcast/duelcast/internal/services/session"
	"github.com/duelcast/duelcast/internal/storage"
	"github.com/duelcast/duelcast/internal/storage/memory"
	redisstorage "github.com/duelcast/duelcast/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService *auth.Service
	Registry    *session.Registry
	Catalog     *catalog.Client
	Engine      *duel.Engine
	Buses       *events.Manager
}

// Config holds configuration for the application factory
type Config struct {
	// SigningKey is the token signing key. Required.
	SigningKey []byte
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// CatalogConfig holds card catalog client settings (optional)
	// If zero value, defaults to catalog.DefaultConfig()
	CatalogConfig catalog.Config
	// MaxListeners caps subscribers per session event bus (optional)
	// If zero, defaults to events.DefaultMaxListeners
	MaxListeners int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("SigningKey is required")
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default catalog config if not provided
	catalogCfg := cfg.CatalogConfig
	if catalogCfg.URL == "" {
		catalogCfg = catalog.DefaultConfig()
	}

	maxListeners := cfg.MaxListeners
	if maxListeners == 0 {
		maxListeners = events.DefaultMaxListeners
	}

	return newWithDependencies(store, clk, rnd, cfg.SigningKey, catalogCfg, maxListeners, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	signingKey []byte,
	catalogCfg catalog.Config,
	maxListeners int,
	logger *slog.Logger,
) *App {
	authService := auth.New(signingKey, clk, logger)
	registry := session.NewRegistry(store, clk, rnd, logger)
	catalogClient := catalog.NewClient(catalogCfg, logger)
	engine := duel.NewEngine(registry, catalogClient, rnd, logger)
	buses := events.NewManager(maxListeners, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		AuthService: authService,
		Registry:    registry,
		Catalog:     catalogClient,
		Engine:      engine,
		Buses:       buses,
	}
}
