// internal/identity/registry.go
package identity

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrMissingUserID is returned when a handshake arrives without a user id.
// The caller must terminate the connection.
var ErrMissingUserID = errors.New("identity: missing user id")

// Identity is the lightweight user record attached to a live connection.
// Every field is caller-supplied and trusted as-is; there is no server-side
// validation beyond requiring a non-empty UserID.
type Identity struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Registry maps an active connection ID to its Identity. Entries live exactly
// as long as the connection: created on successful handshake, removed on
// disconnect, never persisted.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]Identity
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[uuid.UUID]Identity),
	}
}

// Register records the identity for a connection. Fails with ErrMissingUserID
// if the identity has no user id; registrations are otherwise independent and
// the same user may hold several connections.
func (r *Registry) Register(connID uuid.UUID, id Identity) error {
	if id.UserID == "" {
		return ErrMissingUserID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = id
	return nil
}

// Unregister removes and returns the identity for a connection.
func (r *Registry) Unregister(connID uuid.UUID) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
	}
	return id, ok
}

// Lookup returns the identity for a connection without removing it.
func (r *Registry) Lookup(connID uuid.UUID) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.conns[connID]
	return id, ok
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
