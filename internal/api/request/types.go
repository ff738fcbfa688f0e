package request

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// JoinRequest is the request body for joining a session by code
type JoinRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// SpectateRequest is the request body for spectating a session by code
type SpectateRequest struct {
	Code string `json:"code"`
}

// VoteRequest is the request body for casting a vote
type VoteRequest struct {
	Slot int `json:"slot"`
}
