// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mvankampen/fraghub/internal/broadcast"
	"github.com/mvankampen/fraghub/internal/identity"
	"github.com/mvankampen/fraghub/internal/journal"
	"github.com/mvankampen/fraghub/internal/session"
)

// Server is the high-level struct tying the hub, registry, store, and
// coordinator together for the HTTP and WebSocket handlers.
type Server struct {
	Log         *logrus.Logger
	Hub         *broadcast.Hub
	Registry    *identity.Registry
	Store       *session.Store
	Coordinator *session.Coordinator

	// Broadcast is what out-of-coordinator publishers (chat) use. It is the
	// hub, optionally wrapped with the event journal.
	Broadcast broadcast.Broadcaster
}

// NewServer builds the full in-memory lobby stack. A non-nil journal tees
// every broadcast onto the Redis event queue.
func NewServer(logger *logrus.Logger, jnl *journal.Journal) *Server {
	hub := broadcast.NewHub(logger)
	registry := identity.NewRegistry()
	store := session.NewStore()

	var bc broadcast.Broadcaster = hub
	if jnl != nil {
		bc = journal.TeeBroadcaster{Next: hub, Journal: jnl}
	}

	return &Server{
		Log:         logger,
		Hub:         hub,
		Registry:    registry,
		Store:       store,
		Coordinator: session.NewCoordinator(store, registry, bc, logger),
		Broadcast:   bc,
	}
}

// PingHandler responds to health checks.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
