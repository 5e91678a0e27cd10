// internal/session/session.go
package session

// Status is the lifecycle state of a session. Only two states exist: a session
// is either waiting in the lobby or playing. Finished sessions are never
// removed from the store; see the coordinator docs.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
)

// Participant is a user's membership record within a session. All display
// fields are caller-supplied and not validated server-side.
type Participant struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	IsReady     bool   `json:"isReady"`
}

// Session is an ephemeral in-memory game lobby. The ID is caller-supplied at
// creation; uniqueness is assumed, not enforced. Participants are kept in join
// order, and nothing prevents the same uid from appearing twice.
type Session struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Status       Status        `json:"status"`
	Participants []Participant `json:"participants"`
}

// Clone returns a copy that is safe to hand to other goroutines. The
// participant slice is copied; everything else is plain value data.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Participants = append([]Participant(nil), s.Participants...)
	return &cp
}

// HasParticipant reports whether any participant record carries the given uid.
func (s *Session) HasParticipant(uid string) bool {
	for _, p := range s.Participants {
		if p.UID == uid {
			return true
		}
	}
	return false
}

// AllReady reports whether every participant has flagged ready. An empty
// participant list is vacuously ready; callers that need at least one player
// (the in_progress transition) must check that separately.
func (s *Session) AllReady() bool {
	for _, p := range s.Participants {
		if !p.IsReady {
			return false
		}
	}
	return true
}
