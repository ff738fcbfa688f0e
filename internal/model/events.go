package model

// EventType identifies the kind of a session event
type EventType string

const (
	// EventUsersChanged fires when the player roster changes
	EventUsersChanged EventType = "users_changed"
	// EventDuelStarted fires when a new duel pair has been installed
	EventDuelStarted EventType = "duel_started"
	// EventSessionDeleted fires once when the session is torn down. It is the
	// last event a subscriber ever receives for that session.
	EventSessionDeleted EventType = "session_deleted"
)
