// internal/session/coordinator.go
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mvankampen/fraghub/internal/broadcast"
	"github.com/mvankampen/fraghub/internal/identity"
)

// Coordinator is the lobby state machine. Every inbound event maps to one
// operation here; each operation validates against the Store, mutates it, and
// produces zero or one broadcast. Unknown-session events are soft failures:
// logged, no broadcast, nothing surfaced to the remote caller. Feedback always
// arrives via the next broadcast, never an operation-level error channel.
//
// A single mutex serializes every read-modify-write sequence. The reference
// behavior processes events on one logical thread, and the all-ready check in
// UpdateStatus must observe a stable participant list, so global exclusion is
// the contract rather than an implementation detail.
type Coordinator struct {
	mu       sync.Mutex
	store    *Store
	registry *identity.Registry
	bc       broadcast.Broadcaster
	log      *logrus.Logger
}

// NewCoordinator wires a Coordinator to its store, registry, and fanout.
func NewCoordinator(store *Store, registry *identity.Registry, bc broadcast.Broadcaster, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		registry: registry,
		bc:       bc,
		log:      logger,
	}
}

// CreateSession inserts the session as supplied and broadcasts "gameCreated".
// The session shape is not validated, and an existing session under the same
// ID is silently replaced; clients reuse IDs this way on purpose.
func (c *Coordinator) CreateSession(sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess.Status == "" {
		sess.Status = StatusOpen
	}
	if sess.Participants == nil {
		sess.Participants = []Participant{}
	}
	if _, exists := c.store.Get(sess.ID); exists {
		c.log.Warnf("session %s: createGame replacing existing session", sess.ID)
	}
	c.store.Put(sess)
	c.log.Infof("session %s: created (status=%s, participants=%d)", sess.ID, sess.Status, len(sess.Participants))

	// Broadcast a snapshot, not the live pointer: the write pumps marshal
	// the payload outside c.mu, concurrently with later mutations.
	c.bc.Publish("gameCreated", map[string]interface{}{
		"game": sess.Clone(),
	})
}

// JoinSession appends the participant to the session in join order, forcing
// IsReady to false, and broadcasts "playerJoined". Duplicate joins by the same
// uid are not prevented. Unknown session: logged, no broadcast, no side effect.
func (c *Coordinator) JoinSession(sessionID string, p Participant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.store.Get(sessionID)
	if !ok {
		c.log.Warnf("session %s: joinGame for unknown session (uid=%s)", sessionID, p.UID)
		return
	}

	p.IsReady = false
	sess.Participants = append(sess.Participants, p)
	c.log.Infof("session %s: %s joined (%d participants)", sessionID, p.UID, len(sess.Participants))

	c.bc.Publish("playerJoined", map[string]interface{}{
		"sessionId": sessionID,
		"player":    p,
	})
}

// LeaveSession removes every participant record matching uid and broadcasts
// "playerLeft". No-op if the session is unknown.
func (c *Coordinator) LeaveSession(sessionID, uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveSessionLocked(sessionID, uid)
}

// leaveSessionLocked is the body of LeaveSession. Assumes c.mu is held.
func (c *Coordinator) leaveSessionLocked(sessionID, uid string) {
	sess, ok := c.store.Get(sessionID)
	if !ok {
		c.log.Warnf("session %s: leaveGame for unknown session (uid=%s)", sessionID, uid)
		return
	}

	kept := sess.Participants[:0]
	for _, p := range sess.Participants {
		if p.UID != uid {
			kept = append(kept, p)
		}
	}
	sess.Participants = kept
	c.log.Infof("session %s: %s left (%d participants)", sessionID, uid, len(sess.Participants))

	c.bc.Publish("playerLeft", map[string]interface{}{
		"sessionId": sessionID,
		"userId":    uid,
	})
}

// SetReady sets the ready flag on the participant(s) matching uid and
// broadcasts "playerReadyChanged". If afterwards every participant is ready,
// one additional "allPlayersReady" broadcast fires. That second broadcast is a
// notification only; the session status does not change here. An empty
// participant list counts as vacuously all-ready.
func (c *Coordinator) SetReady(sessionID, uid string, ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.store.Get(sessionID)
	if !ok {
		c.log.Warnf("session %s: toggleReady for unknown session (uid=%s)", sessionID, uid)
		return
	}

	for i := range sess.Participants {
		if sess.Participants[i].UID == uid {
			sess.Participants[i].IsReady = ready
		}
	}
	c.log.Infof("session %s: %s ready=%v", sessionID, uid, ready)

	c.bc.Publish("playerReadyChanged", map[string]interface{}{
		"sessionId": sessionID,
		"userId":    uid,
		"isReady":   ready,
	})

	if sess.AllReady() {
		c.bc.Publish("allPlayersReady", map[string]interface{}{
			"sessionId": sessionID,
		})
	}
}

// UpdateStatus sets the session status and broadcasts "gameUpdated" with the
// full session snapshot. A transition to in_progress is rejected unless the
// session has at least one participant and every participant is ready; on
// rejection the session is left unchanged and nothing is broadcast.
func (c *Coordinator) UpdateStatus(sessionID string, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.store.Get(sessionID)
	if !ok {
		c.log.Warnf("session %s: updateGame for unknown session", sessionID)
		return
	}

	if status == StatusInProgress && (len(sess.Participants) == 0 || !sess.AllReady()) {
		c.log.Warnf("session %s: rejected transition to %s, not all players ready", sessionID, status)
		return
	}

	sess.Status = status
	c.log.Infof("session %s: status=%s", sessionID, status)

	c.bc.Publish("gameUpdated", map[string]interface{}{
		"game": sess.Clone(),
	})
}

// OnDisconnect handles the implicit leave when a connection drops. It resolves
// the connection's identity, removes that user from every session containing
// them, broadcasting "playerLeft" per session, and forgets the connection.
// The scan is O(sessions x participants), fine at lobby scale.
func (c *Coordinator) OnDisconnect(connID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.registry.Unregister(connID)
	if !ok {
		c.log.Warnf("disconnect for unknown connection %s", connID)
		return
	}
	c.log.Infof("connection %s (uid=%s) disconnected", connID, id.UserID)

	for _, sess := range c.store.All() {
		if sess.HasParticipant(id.UserID) {
			c.leaveSessionLocked(sess.ID, id.UserID)
		}
	}
}
