package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/duelcast/duelcast/internal/model"
	"github.com/duelcast/duelcast/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidCode         = "INVALID_CODE"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNoActiveDuel        = "NO_ACTIVE_DUEL"
	CodeInvalidSlot         = "INVALID_SLOT"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeDuelInProgress      = "DUEL_IN_PROGRESS"
	CodeExternalFetch       = "EXTERNAL_FETCH_FAILURE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes a structured control-plane error response
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidCode):
		return &httpError{http.StatusNotFound, APIError{CodeInvalidCode, "invalid code"}}
	case errors.Is(err, model.ErrInvalidPassword):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidPassword, "invalid password"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrNoActiveDuel):
		return &httpError{http.StatusConflict, APIError{CodeNoActiveDuel, "No duel is active"}}
	case errors.Is(err, model.ErrInvalidSlot):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSlot, "Card slot must be 1 or 2"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "At least two players required"}}
	case errors.Is(err, model.ErrDuelInProgress):
		return &httpError{http.StatusConflict, APIError{CodeDuelInProgress, "A duel draw is already in progress"}}
	case errors.Is(err, model.ErrExternalFetch):
		return &httpError{http.StatusBadGateway, APIError{CodeExternalFetch, "Card catalog unavailable"}}

	case errors.Is(err, auth.ErrInvalidSignature), errors.Is(err, auth.ErrMalformedToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidToken, "Invalid token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
