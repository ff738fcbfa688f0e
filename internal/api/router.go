package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelcast/duelcast/internal/api/handler"
	apimiddleware "github.com/duelcast/duelcast/internal/api/middleware"
	"github.com/duelcast/duelcast/internal/events"
	"github.com/duelcast/duelcast/internal/middleware"
	"github.com/duelcast/duelcast/internal/services/auth"
	"github.com/duelcast/duelcast/internal/services/duel"
	"github.com/duelcast/duelcast/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Registry    *session.Registry
	Engine      *duel.Engine
	Buses       *events.Manager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	controlHandler := handler.NewControlHandler(cfg.Registry, cfg.AuthService, cfg.Logger)
	playHandler := handler.NewPlayHandler(cfg.Registry, cfg.Engine, cfg.Buses, cfg.Logger)
	streamHandler := handler.NewStreamHandler(cfg.Registry, cfg.AuthService, cfg.Buses, cfg.Logger)

	// Create middleware
	accessMiddleware := apimiddleware.Access(cfg.AuthService, cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Control plane (no auth; issues pre-auth tokens)
	api.HandleFunc("/sessions", controlHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/join", controlHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/sessions/spectate", controlHandler.Spectate).Methods(http.MethodPost)

	// bind-events carries a pre-auth token; registered before the access
	// subrouter so it is not shadowed by the /session prefix
	api.HandleFunc("/session/stream", streamHandler.Bind).Methods(http.MethodGet)

	// Connection surface (access token re-verified per operation)
	play := api.PathPrefix("/session").Subrouter()
	play.Use(accessMiddleware)
	play.HandleFunc("/admin", playHandler.Admin).Methods(http.MethodGet)
	play.HandleFunc("/code", playHandler.Code).Methods(http.MethodGet)
	play.HandleFunc("/users", playHandler.Users).Methods(http.MethodGet)
	play.HandleFunc("/vote", playHandler.Vote).Methods(http.MethodPost)
	play.HandleFunc("/duel", playHandler.Duel).Methods(http.MethodPost)
	play.HandleFunc("/leave", playHandler.Leave).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
