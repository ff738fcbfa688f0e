package handler

import (
	"log/slog"
	"net/http"

	"github.com/duelcast/duelcast/internal/api/middleware"
	"github.com/duelcast/duelcast/internal/api/response"
	"github.com/duelcast/duelcast/internal/events"
	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/services/auth"
	"github.com/duelcast/duelcast/internal/services/session"
)

// StreamHandler serves bind-events: one persistent connection per verified
// identity. The pre-auth token is exchanged for a bound identity and an
// access token, the identity is registered into the roster, and the
// connection subscribes to the session's event bus.
type StreamHandler struct {
	registry *session.Registry
	auth     *auth.Service
	buses    *events.Manager
	logger   *slog.Logger
}

// NewStreamHandler creates a bind-events handler
func NewStreamHandler(registry *session.Registry, authService *auth.Service, buses *events.Manager, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		registry: registry,
		auth:     authService,
		buses:    buses,
		logger:   logger.With(slog.String("component", "stream")),
	}
}

// Bind handles GET /api/v1/session/stream?token=<pre-auth>
func (h *StreamHandler) Bind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := h.auth.VerifyPreAuth(middleware.ExtractToken(r))
	if err != nil {
		h.deny(w, err)
		return
	}

	sessionID := model.SessionID(claims.SessionID)

	// Bind a fresh identity into the roster. A token whose session
	// reference never resolved (or whose session has been deleted since)
	// fails here with session-not-found.
	var userID model.UserID
	if claims.Player {
		userID, err = h.registry.AddPlayer(ctx, sessionID, claims.Nickname)
	} else {
		userID, err = h.registry.AddAudience(ctx, sessionID)
	}
	if err != nil {
		h.deny(w, err)
		return
	}

	accessToken, err := h.auth.IssueAccess(sessionID, userID, claims.Admin, claims.Player)
	if err != nil {
		h.deny(w, err)
		return
	}

	stream := events.NewStream(h.logger)
	bus := h.buses.GetOrCreate(sessionID)

	unsubUsers, err := bus.Subscribe(model.EventUsersChanged, func() {
		players, err := h.registry.Players(ctx, sessionID)
		if err != nil {
			return
		}
		stream.Send("users", response.PlayersFromModel(players))
	})
	if err != nil {
		h.deny(w, err)
		return
	}
	defer unsubUsers()

	unsubDuel, err := bus.Subscribe(model.EventDuelStarted, func() {
		pair, err := h.registry.CurrentDuel(ctx, sessionID)
		if err != nil {
			return
		}
		stream.Send("duel", response.DuelFromModel(*pair))
	})
	if err != nil {
		unsubUsers()
		h.deny(w, err)
		return
	}
	defer unsubDuel()

	unsubDeleted, err := bus.Subscribe(model.EventSessionDeleted, func() {
		stream.Send("leave", nil)
		stream.Close()
	})
	if err != nil {
		unsubUsers()
		unsubDuel()
		h.deny(w, err)
		return
	}
	defer unsubDeleted()

	h.logger.Info("connection bound",
		slog.String("session_id", string(sessionID)),
		slog.String("user_id", string(userID)),
		slog.Bool("player", claims.Player))

	// The access token is the first push; the caller presents it on every
	// later operation. Then let everyone, including this connection, see
	// the roster change.
	stream.Send("token", response.TokenResponse{Token: accessToken})
	bus.Publish(model.EventUsersChanged)

	stream.Serve(w, r)
}

// deny logs the cause and answers with the generic terminal leave event only
func (h *StreamHandler) deny(w http.ResponseWriter, err error) {
	h.logger.Warn("bind-events rejected", slog.String("error", err.Error()))
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte("event: leave\ndata: \n\n"))
}
