package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/duelcast/duelcast/internal/api"
	"github.com/duelcast/duelcast/internal/catalog"
	"github.com/duelcast/duelcast/internal/config"
	"github.com/duelcast/duelcast/internal/factory"
	"github.com/duelcast/duelcast/internal/services/auth"
	redisstorage "github.com/duelcast/duelcast/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Load or create the token signing key
	signingKey, err := auth.LoadOrCreateKey(cfg.SecretFile)
	if err != nil {
		logger.Error("failed to load signing key", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Build factory config from environment
	factoryCfg := factory.Config{
		SigningKey:   signingKey,
		Logger:       logger,
		StorageType:  cfg.StorageType,
		MaxListeners: cfg.MaxListeners,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Configure the card catalog client
	catalogCfg := catalog.DefaultConfig()
	if cfg.CardAPIURL != "" {
		catalogCfg.URL = cfg.CardAPIURL
	}
	if cfg.CardAPITimeout > 0 {
		catalogCfg.RequestTimeout = cfg.CardAPITimeout
	}
	factoryCfg.CatalogConfig = catalogCfg

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Storage.Close() }()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		Registry:    app.Registry,
		Engine:      app.Engine,
		Buses:       app.Buses,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
