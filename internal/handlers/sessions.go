// internal/handlers/sessions.go
package handlers

import (
	"encoding/json"
	"net/http"
)

// ListSessionsHandler returns the in-memory session store as JSON. Primarily
// a debugging aid; the authoritative view clients hold comes from broadcasts.
func ListSessionsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.Store.All())
	}
}
