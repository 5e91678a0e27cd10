// internal/session/store_test.go
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGetDelete(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("g1")
	assert.False(t, ok)

	s.Put(&Session{ID: "g1", Status: StatusOpen})
	sess, ok := s.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "g1", sess.ID)
	assert.Equal(t, 1, s.Len())

	s.Delete("g1")
	_, ok = s.Get("g1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStorePutReplacesExisting(t *testing.T) {
	s := NewStore()
	s.Put(&Session{ID: "g1", Name: "old"})
	s.Put(&Session{ID: "g1", Name: "new"})

	sess, ok := s.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "new", sess.Name)
	assert.Equal(t, 1, s.Len())
}

func TestStoreAllReturnsSnapshot(t *testing.T) {
	s := NewStore()
	s.Put(&Session{ID: "g1"})
	s.Put(&Session{ID: "g2"})

	all := s.All()
	assert.Len(t, all, 2)

	// Mutating the snapshot must not affect the store.
	all = all[:0]
	assert.Equal(t, 2, s.Len())
}

func TestAllReadyVacuousOnEmpty(t *testing.T) {
	sess := &Session{ID: "g1"}
	assert.True(t, sess.AllReady(), "empty participant list is vacuously ready")

	sess.Participants = append(sess.Participants, Participant{UID: "u1"})
	assert.False(t, sess.AllReady())

	sess.Participants[0].IsReady = true
	assert.True(t, sess.AllReady())
}
