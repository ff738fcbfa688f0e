package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidCode     = errors.New("invalid join code")
	ErrInvalidPassword = errors.New("invalid password")

	// Roster errors
	ErrPlayerNotFound = errors.New("player not found in session")

	// Duel errors
	ErrNoActiveDuel        = errors.New("no duel is active")
	ErrInvalidSlot         = errors.New("card slot must be 1 or 2")
	ErrInsufficientPlayers = errors.New("at least two players required for a duel")
	ErrDuelInProgress      = errors.New("a duel draw is already in progress")

	// External collaborator errors
	ErrExternalFetch = errors.New("card catalog fetch failed")
)
