// internal/session/store.go
package session

import "sync"

// Store manages active ephemeral sessions in memory.
// It provides thread-safe access to add, retrieve, and list sessions.
// Nothing here survives a process restart.
type Store struct {
	mu       sync.Mutex          // Protects access to the sessions map.
	sessions map[string]*Session // Map of session ID to Session pointer.
}

// NewStore initializes and returns an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Put inserts a session under its ID. If a session with the same ID already
// exists it is replaced. The reference client reuses IDs this way, so the
// overwrite is load-bearing; callers that care can check Get first.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get retrieves a session by ID.
// Returns the session pointer and a boolean indicating if it was found.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session by ID if present.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// All returns a snapshot slice of every stored session. Used for the debug
// listing endpoint; returning a copy keeps callers from iterating the live map
// while another goroutine mutates the store.
func (s *Store) All() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
