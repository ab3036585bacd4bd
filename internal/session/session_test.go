// internal/session/session_test.go
package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	id := uuid.New()
	store.Add(&Session{ID: id, Name: "Guest"})

	sess, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Guest", sess.Name)
	assert.Equal(t, uuid.Nil, sess.RoomID)

	store.SetName(id, "Ann")
	roomID := uuid.New()
	store.SetRoom(id, roomID)

	sess, _ = store.Get(id)
	assert.Equal(t, "Ann", sess.Name)
	assert.Equal(t, roomID, sess.RoomID)

	store.SetRoom(id, uuid.Nil)
	sess, _ = store.Get(id)
	assert.Equal(t, uuid.Nil, sess.RoomID)

	store.Remove(id)
	_, ok = store.Get(id)
	assert.False(t, ok)

	// Updates on missing sessions are no-ops.
	store.SetName(uuid.New(), "ghost")
	store.SetRoom(uuid.New(), roomID)
}
