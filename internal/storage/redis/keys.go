package redis

import (
	"fmt"

	"github.com/duelcast/duelcast/internal/model"
)

// Key prefix for all session data
const keyPrefix = "duelcast"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// codeIndexKey returns the Redis key for the join-code -> session-id index
func codeIndexKey(code model.JoinCode) string {
	return fmt.Sprintf("%s:idx:code:%s", keyPrefix, code)
}
