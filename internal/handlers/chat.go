// internal/handlers/chat.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mvankampen/fraghub/internal/database"
)

// defaultHistoryLimit caps how many messages /chat/history returns when the
// caller does not ask for a specific count.
const defaultHistoryLimit = 50

// ChatHistoryHandler serves GET /chat/history?limit=N: the most recent N
// messages in ascending chronological order. Returns 503 when no history
// store is configured; the lobby itself works fine without one.
func ChatHistoryHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if database.DB == nil {
			http.Error(w, "chat history store not configured", http.StatusServiceUnavailable)
			return
		}

		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		msgs, err := database.RecentMessages(r.Context(), limit)
		if err != nil {
			logger.Warnf("failed to fetch chat history: %v", err)
			http.Error(w, "failed to fetch chat history", http.StatusInternalServerError)
			return
		}
		if msgs == nil {
			msgs = []database.Message{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msgs)
	}
}
