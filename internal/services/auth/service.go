package auth

import (
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duelcast/duelcast/internal/dependencies/clock"
	"github.com/duelcast/duelcast/internal/model"
)

// Errors
var (
	// ErrInvalidSignature means the token was signed with a different key or
	// the signature was corrupted in transit
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformedToken means the token could not be decoded at all
	ErrMalformedToken = errors.New("malformed token")
)

// PreAuthClaims is the claim set issued by the control plane before identity
// binding. It carries role flags and, for players, the requested nickname.
type PreAuthClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	Admin     bool   `json:"admin"`
	Player    bool   `json:"player"`
	Nickname  string `json:"nickname,omitempty"`
}

// AccessClaims is the claim set issued after a successful bind. The bound
// user id replaces the nickname-only pre-auth shape.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Admin     bool   `json:"admin"`
	Player    bool   `json:"player"`
}

// Service signs and verifies capability tokens (HS256).
//
// Tokens carry no expiry: they remain valid for the lifetime of the signing
// key, and rotating the key invalidates every outstanding token globally.
type Service struct {
	key    []byte
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a token service around the given signing key
func New(key []byte, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		key:    key,
		clock:  clk,
		logger: logger.With(slog.String("component", "auth")),
	}
}

// IssuePreAuth signs a pre-auth token for the given session and role flags.
// The session reference may be empty when the join code did not resolve; a
// later bind with such a token fails with ErrSessionNotFound.
func (s *Service) IssuePreAuth(sessionID model.SessionID, admin, player bool, nickname string) (string, error) {
	claims := PreAuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.clock.Now()),
		},
		SessionID: string(sessionID),
		Admin:     admin,
		Player:    player,
		Nickname:  nickname,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// IssueAccess signs an access token binding a user id to the session
func (s *Service) IssueAccess(sessionID model.SessionID, userID model.UserID, admin, player bool) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.clock.Now()),
		},
		SessionID: string(sessionID),
		UserID:    string(userID),
		Admin:     admin,
		Player:    player,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// VerifyPreAuth verifies a pre-auth token and returns its claims
func (s *Service) VerifyPreAuth(token string) (*PreAuthClaims, error) {
	var claims PreAuthClaims
	if err := s.verify(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// VerifyAccess verifies an access token and returns its claims
func (s *Service) VerifyAccess(token string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.verify(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (s *Service) verify(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return ErrInvalidSignature
		}
		return ErrMalformedToken
	}
	return nil
}
