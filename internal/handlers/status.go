// internal/handlers/status.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mvankampen/fraghub/internal/query"
)

// Querier issues one status probe per call. Satisfied by *query.Client;
// substituted by a fake in tests.
type Querier interface {
	Query(ctx context.Context, host string, port int) (*query.Result, error)
}

// errorResponse is the JSON body returned when the probe fails. Failures stay
// HTTP 200 so clients can render offline servers from the same code path.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// StatusHandler serves GET /status?host=H&port=P by probing the target game
// server once. Lobby state is never touched here; failures come back as a
// structured body, not an HTTP error, so clients can render offline servers.
func StatusHandler(logger *logrus.Logger, q Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host := r.URL.Query().Get("host")
		if host == "" {
			http.Error(w, "missing host", http.StatusBadRequest)
			return
		}
		port, err := strconv.Atoi(r.URL.Query().Get("port"))
		if err != nil || port < 1 || port > 65535 {
			http.Error(w, "port must be an integer in 1..65535", http.StatusBadRequest)
			return
		}

		res, err := q.Query(r.Context(), host, port)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case err == nil:
			json.NewEncoder(w).Encode(res)
		case errors.Is(err, query.ErrTimeout):
			logger.Infof("status query %s:%d timed out", host, port)
			json.NewEncoder(w).Encode(errorResponse{Status: "offline", Error: "timeout"})
		default:
			logger.Warnf("status query %s:%d failed: %v", host, port, err)
			json.NewEncoder(w).Encode(errorResponse{Status: "error", Error: err.Error()})
		}
	}
}
