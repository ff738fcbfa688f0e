package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/duelcast/duelcast/internal/api/apierr"
	"github.com/duelcast/duelcast/internal/api/request"
	"github.com/duelcast/duelcast/internal/api/response"
	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/services/auth"
	"github.com/duelcast/duelcast/internal/services/session"
)

// ControlHandler serves the control-plane surface: creating sessions and
// authorizing entry into them. Errors here are structured payloads.
type ControlHandler struct {
	registry *session.Registry
	auth     *auth.Service
	logger   *slog.Logger
}

// NewControlHandler creates a control-plane handler
func NewControlHandler(registry *session.Registry, authService *auth.Service, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{
		registry: registry,
		auth:     authService,
		logger:   logger.With(slog.String("component", "control")),
	}
}

// Create handles POST /api/v1/sessions.
// The caller receives an admin+player pre-auth token for the new session.
func (h *ControlHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" || req.Nickname == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name and nickname are required"))
		return
	}

	sess, err := h.registry.CreateSession(r.Context(), req.Name, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	token, err := h.auth.IssuePreAuth(sess.ID, true, true, req.Nickname)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.TokenResponse{Token: token})
}

// Join handles POST /api/v1/sessions/join.
// The caller receives a player pre-auth token, or a structured
// invalid-code / invalid-password error.
func (h *ControlHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	sess, err := h.registry.Authenticate(r.Context(), normalizeCode(req.Code), req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	token, err := h.auth.IssuePreAuth(sess.ID, false, true, req.Nickname)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TokenResponse{Token: token})
}

// Spectate handles POST /api/v1/sessions/spectate.
// A spectator token is issued even when the code does not resolve; the
// session reference is then empty and a later bind fails with
// session-not-found rather than here.
func (h *ControlHandler) Spectate(w http.ResponseWriter, r *http.Request) {
	var req request.SpectateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	sessionID, err := h.registry.ResolveCode(r.Context(), normalizeCode(req.Code))
	if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		apierr.WriteError(w, err)
		return
	}

	token, err := h.auth.IssuePreAuth(sessionID, false, false, "")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TokenResponse{Token: token})
}

// normalizeCode uppercases a join code as entered by a human
func normalizeCode(code string) model.JoinCode {
	return model.JoinCode(strings.ToUpper(strings.TrimSpace(code)))
}
