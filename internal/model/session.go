package model

import "time"

// SessionID uniquely identifies a session across the system
type SessionID string

// UserID uniquely identifies a participant within a session
type UserID string

// JoinCode is the short human-shareable code for joining sessions
type JoinCode string

// Player represents an active participant who can hold duel cards and vote
type Player struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// AudienceMember represents a passive spectator
type AudienceMember struct {
	ID UserID `json:"id"`
}

// Card is one side of an active duel: a drawn artifact assigned to a player,
// accumulating votes while the duel is live
type Card struct {
	URL           string `json:"url"`
	Owner         Player `json:"owner"`
	Votes         int    `json:"votes"`
	AudienceVotes int    `json:"audience_votes"`
}

// DuelPair is the session's active duel. Both cards are always installed
// together; a session never holds a half-built pair.
type DuelPair struct {
	Card1 Card `json:"card1"`
	Card2 Card `json:"card2"`
}

// Session represents one game room with its roster, code and duel state
type Session struct {
	ID           SessionID
	Name         string
	Code         JoinCode
	PasswordHash string
	Players      []Player
	Audience     []AudienceMember
	CurrentDuel  *DuelPair
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GetPlayer returns the player with the given id, or nil if not in the roster
func (s *Session) GetPlayer(id UserID) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}
