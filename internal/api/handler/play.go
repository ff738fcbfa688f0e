package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/duelcast/duelcast/internal/api/middleware"
	"github.com/duelcast/duelcast/internal/api/request"
	"github.com/duelcast/duelcast/internal/api/response"
	"github.com/duelcast/duelcast/internal/events"
	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/services/duel"
	"github.com/duelcast/duelcast/internal/services/session"
)

// PlayHandler serves the connection surface: operations a bound participant
// performs against its session. Every operation runs behind the access-token
// middleware, and any failure is logged and answered only with the generic
// terminal leave signal.
type PlayHandler struct {
	registry *session.Registry
	engine   *duel.Engine
	buses    *events.Manager
	logger   *slog.Logger
}

// NewPlayHandler creates a connection-surface handler
func NewPlayHandler(registry *session.Registry, engine *duel.Engine, buses *events.Manager, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{
		registry: registry,
		engine:   engine,
		buses:    buses,
		logger:   logger.With(slog.String("component", "play")),
	}
}

// fail logs the cause and sends the generic terminal signal to this caller
// alone. Other connections are unaffected.
func (h *PlayHandler) fail(w http.ResponseWriter, identity *middleware.Identity, op string, err error) {
	h.logger.Warn("operation failed",
		slog.String("op", op),
		slog.String("session_id", string(identity.SessionID)),
		slog.String("user_id", string(identity.UserID)),
		slog.String("error", err.Error()))
	response.Leave(w)
}

// Admin handles GET /api/v1/session/admin
func (h *PlayHandler) Admin(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, response.AdminResponse{Admin: identity.Admin})
}

// Code handles GET /api/v1/session/code
func (h *PlayHandler) Code(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	sess, err := h.registry.GetSession(r.Context(), identity.SessionID)
	if err != nil {
		h.fail(w, identity, "get-code", err)
		return
	}

	response.JSON(w, http.StatusOK, response.CodeResponse{Code: string(sess.Code)})
}

// Users handles GET /api/v1/session/users
func (h *PlayHandler) Users(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	players, err := h.registry.Players(r.Context(), identity.SessionID)
	if err != nil {
		h.fail(w, identity, "get-users", err)
		return
	}

	response.JSON(w, http.StatusOK, response.UsersResponse{Users: response.PlayersFromModel(players)})
}

// Vote handles POST /api/v1/session/vote.
// Players increment the player counter on the chosen card; everyone else
// increments the audience counter.
func (h *PlayHandler) Vote(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, identity, "vote", err)
		return
	}

	if err := h.registry.CastVote(r.Context(), identity.SessionID, req.Slot, identity.Player); err != nil {
		h.fail(w, identity, "vote", err)
		return
	}

	response.NoContent(w)
}

// Duel handles POST /api/v1/session/duel: draws a new pair and notifies
// every subscribed connection
func (h *PlayHandler) Duel(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	if _, err := h.engine.Run(r.Context(), identity.SessionID); err != nil {
		h.fail(w, identity, "request-duel", err)
		return
	}

	h.buses.Publish(identity.SessionID, model.EventDuelStarted)
	response.NoContent(w)
}

// Leave handles POST /api/v1/session/leave.
// An admin deletes the whole session; subscribers receive SessionDeleted
// before the bus is discarded. Anyone else removes only their own roster
// entry.
func (h *PlayHandler) Leave(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	if identity.Admin {
		if err := h.registry.DeleteSession(r.Context(), identity.SessionID); err != nil {
			h.fail(w, identity, "leaving", err)
			return
		}
		h.buses.Publish(identity.SessionID, model.EventSessionDeleted)
		h.buses.Remove(identity.SessionID)
		response.NoContent(w)
		return
	}

	if err := h.registry.RemovePlayer(r.Context(), identity.SessionID, identity.UserID); err != nil {
		h.fail(w, identity, "leaving", err)
		return
	}

	h.buses.Publish(identity.SessionID, model.EventUsersChanged)
	response.NoContent(w)
}
