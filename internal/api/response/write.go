package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Leave writes the generic terminal signal used on the connection surface.
// The specific cause is never disclosed to the caller.
func Leave(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]string{"event": "leave"})
}
