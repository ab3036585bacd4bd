// internal/session/session.go
//
// The session directory maps a connection identity to a display name and the
// room it currently occupies. The Room Controller depends on it to resolve
// "who is acting"; beyond that it holds no game logic.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Session is one connection's identity.
type Session struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	RoomID uuid.UUID `json:"roomId,omitempty"`
}

// SessionStore is a mutex-guarded registry of live sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Add registers a session, created when a connection is accepted.
func (s *SessionStore) Add(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get looks a session up by connection identity.
func (s *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SetName updates the display name for a session.
func (s *SessionStore) SetName(id uuid.UUID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.Name = name
	}
}

// SetRoom updates which room the session occupies; uuid.Nil clears it.
func (s *SessionStore) SetRoom(id, roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.RoomID = roomID
	}
}

// Remove drops a session on disconnect.
func (s *SessionStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
