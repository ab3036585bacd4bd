// internal/handlers/server.go
package handlers

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deckduel/server/internal/game"
	"github.com/deckduel/server/internal/session"
)

// defaultStartDelay is the grace period between the second player joining
// and the game starting, giving clients time to attach listeners.
const defaultStartDelay = 3 * time.Second

// Server owns the room registry, the session directory and the live
// connection set, and wires room broadcasts onto client connections.
type Server struct {
	Rooms    *game.RoomStore
	Sessions *session.SessionStore

	clients   map[uuid.UUID]*client
	clientsMu sync.RWMutex

	startDelay time.Duration
}

// NewServer builds a server with empty registries. START_DELAY overrides the
// pre-game grace period (a Go duration, e.g. "500ms").
func NewServer() *Server {
	delay := defaultStartDelay
	if v := os.Getenv("START_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			delay = d
		}
	}
	return &Server{
		Rooms:      game.NewRoomStore(),
		Sessions:   session.NewSessionStore(),
		clients:    make(map[uuid.UUID]*client),
		startDelay: delay,
	}
}

// registerClient tracks a live connection by session id.
func (s *Server) registerClient(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.sessionID] = c
}

// unregisterClient drops a connection; only removes the mapping if it still
// points at this client, so a replacement connection is not clobbered.
func (s *Server) unregisterClient(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if cur, ok := s.clients[c.sessionID]; ok && cur == c {
		delete(s.clients, c.sessionID)
	}
}

// sendToSession enqueues an event for one session's connection, if any.
func (s *Server) sendToSession(sessionID uuid.UUID, ev interface{}) {
	s.clientsMu.RLock()
	c, ok := s.clients[sessionID]
	s.clientsMu.RUnlock()
	if ok {
		c.send(ev)
	}
}

// broadcastAll sends an event to every connected client; used for the
// lobby-wide roomsUpdated notifications.
func (s *Server) broadcastAll(ev interface{}) {
	s.clientsMu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.clientsMu.RUnlock()
	for _, c := range targets {
		c.send(ev)
	}
}

// bindRoom installs broadcast functions that route room events to the room's
// seated players. Both functions are invoked while the room lock is held;
// sends only enqueue onto per-client buffers, so they never block the engine.
func (s *Server) bindRoom(r *game.Room) {
	r.BroadcastFn = func(ev game.RoomEvent) {
		for _, p := range r.Players {
			s.sendToSession(p.ID, ev)
		}
	}
	r.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.RoomEvent) {
		s.sendToSession(playerID, ev)
	}
}

// notifyRoomsUpdated pushes the fresh room listing to everyone.
func (s *Server) notifyRoomsUpdated() {
	s.broadcastAll(game.RoomEvent{
		Type:  game.EventRoomsUpdated,
		Rooms: s.Rooms.ListRooms(),
	})
}
