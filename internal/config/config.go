// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all server settings, populated from environment variables.
type Config struct {
	Host string `env:"HOST" envDefault:""`
	Port int    `env:"PORT" envDefault:"8080"`

	// StorageType selects the persistence backend, "memory" or "redis".
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	// SecretFile is where the token signing key is persisted.
	SecretFile string `env:"SECRET_FILE" envDefault:"data/secret.key"`

	// CardAPIURL overrides the card catalog endpoint.
	CardAPIURL     string        `env:"CARD_API_URL"`
	CardAPITimeout time.Duration `env:"CARD_API_TIMEOUT" envDefault:"5s"`

	// MaxListeners caps subscribers per session event bus.
	MaxListeners int `env:"MAX_LISTENERS" envDefault:"100000"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.StorageType == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
	}
	return cfg, nil
}
