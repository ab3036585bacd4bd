// internal/handlers/client.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// outBufferSize bounds the per-connection outbound queue. A single writer
// goroutine drains it, which keeps broadcast delivery in the order the
// corresponding actions were applied.
const outBufferSize = 64

// client is one live WebSocket connection bound to a session.
type client struct {
	sessionID uuid.UUID
	conn      *websocket.Conn
	out       chan []byte
	cancel    func()
}

func newClient(sessionID uuid.UUID, conn *websocket.Conn, cancel func()) *client {
	return &client{
		sessionID: sessionID,
		conn:      conn,
		out:       make(chan []byte, outBufferSize),
		cancel:    cancel,
	}
}

// send marshals and enqueues an event non-blockingly. A full queue means the
// client has stopped draining; the message is dropped and logged rather than
// stalling the room that produced it.
func (c *client) send(ev interface{}) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("client %s: failed to marshal outbound event: %v", c.sessionID, err)
		return
	}
	select {
	case c.out <- data:
	default:
		log.Printf("client %s: outbound queue full, dropping message.", c.sessionID)
	}
}

// writePump drains the outbound queue onto the wire until the context is
// cancelled or the queue is closed. Each write carries its own timeout.
func (c *client) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.out:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Printf("client %s: write failed: %v", c.sessionID, err)
				return
			}
		}
	}
}
