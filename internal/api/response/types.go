package response

import (
	"github.com/duelcast/duelcast/internal/model"
)

// TokenResponse carries an issued capability token
type TokenResponse struct {
	Token string `json:"token"`
}

// Player represents a roster entry in API responses
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:    string(p.ID),
		Name:  p.Name,
		Score: p.Score,
	}
}

// PlayersFromModel converts a roster slice
func PlayersFromModel(players []model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// UsersResponse is the roster query response and the `users` push payload
type UsersResponse struct {
	Users []Player `json:"users"`
}

// Card represents one side of a duel in API responses
type Card struct {
	URL           string `json:"url"`
	Owner         Player `json:"owner"`
	Votes         int    `json:"votes"`
	AudienceVotes int    `json:"audience_votes"`
}

// CardFromModel converts a model.Card
func CardFromModel(c model.Card) Card {
	return Card{
		URL:           c.URL,
		Owner:         PlayerFromModel(c.Owner),
		Votes:         c.Votes,
		AudienceVotes: c.AudienceVotes,
	}
}

// DuelResponse is the `duel` push payload
type DuelResponse struct {
	Card1 Card `json:"card1"`
	Card2 Card `json:"card2"`
}

// DuelFromModel converts a model.DuelPair
func DuelFromModel(pair model.DuelPair) DuelResponse {
	return DuelResponse{
		Card1: CardFromModel(pair.Card1),
		Card2: CardFromModel(pair.Card2),
	}
}

// AdminResponse answers the admin-check operation
type AdminResponse struct {
	Admin bool `json:"admin"`
}

// CodeResponse answers the get-code operation
type CodeResponse struct {
	Code string `json:"code"`
}
