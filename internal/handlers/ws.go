// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/deckduel/server/internal/auth"
	"github.com/deckduel/server/internal/game"
	"github.com/deckduel/server/internal/middleware"
	"github.com/deckduel/server/internal/models"
	"github.com/deckduel/server/internal/session"
)

// WSHandler upgrades the connection, establishes (or restores) the guest
// session, and runs the read loop that routes inbound actions into the
// engine. All game events flow back over the same connection.
func WSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := ensureGuestSession(w, r, srv)

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"deckduel"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "deckduel" {
			logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'deckduel' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, sess.ID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		cl := newClient(sess.ID, c, cancel)
		srv.Sessions.Add(sess)
		srv.registerClient(cl)
		go cl.writePump(ctx)

		readMessages(ctx, c, srv, cl, sess, logger)

		// Disconnect carries leaveRoom semantics: the other player is
		// notified, and an emptied room is destroyed.
		roomID := sess.RoomID
		srv.handleLeaveRoom(sess)
		srv.unregisterClient(cl)
		srv.Sessions.Remove(sess.ID)
		middleware.LogWebSocketDisconnect(logger, sess.ID, roomID, nil)
	}
}

// ensureGuestSession restores identity from the deckduel_token cookie when
// present and valid, otherwise mints a fresh guest session and sets the
// cookie. Only the display name survives reconnection; game state does not.
func ensureGuestSession(w http.ResponseWriter, r *http.Request, srv *Server) *session.Session {
	if cookie, err := r.Cookie("deckduel_token"); err == nil {
		if idStr, name, err := auth.AuthenticateToken(cookie.Value); err == nil {
			if id, err := uuid.Parse(idStr); err == nil {
				return &session.Session{ID: id, Name: name}
			}
		}
	}

	sess := &session.Session{ID: uuid.New(), Name: "Guest"}
	if token, err := auth.CreateToken(sess.ID.String(), sess.Name); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     "deckduel_token",
			Value:    token,
			HttpOnly: true,
			Path:     "/",
		})
	}
	return sess
}

// readMessages reads and dispatches client messages until the connection
// closes or the context is cancelled.
func readMessages(ctx context.Context, c *websocket.Conn, srv *Server, cl *client, sess *session.Session, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for session %s.", sess.ID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for session %s.", sess.ID)
			} else {
				logger.Warnf("Error reading from WebSocket for session %s: %v", sess.ID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message from session %s. Ignoring.", sess.ID)
			continue
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from session %s: %v", sess.ID, err)
			cl.send(game.RoomEvent{Type: game.EventError, Message: "invalid message format"})
			continue
		}

		logger.Debugf("Action '%s' from session %s.", msg.Type, sess.ID)
		srv.dispatch(cl, sess, msg)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// dispatch routes one validated inbound message. Lobby-level structural
// failures answer with an error event; in-room precondition violations are
// handled (and mostly silently dropped) by the engine itself.
func (s *Server) dispatch(cl *client, sess *session.Session, msg models.ClientMessage) {
	switch msg.Type {
	case models.ActionSetPlayerName:
		s.handleSetPlayerName(cl, sess, msg.Name)
	case models.ActionGetRooms:
		cl.send(game.RoomEvent{Type: game.EventRoomsList, Rooms: s.Rooms.ListRooms()})
	case models.ActionCreateRoom:
		s.handleCreateRoom(cl, sess, msg)
	case models.ActionJoinRoom:
		s.handleJoinRoom(cl, sess, msg.RoomID)
	case models.ActionLeaveRoom:
		s.handleLeaveRoom(sess)
	case models.ActionSelectCard:
		if room, cardID, ok := s.resolveCardAction(sess, msg); ok {
			room.SelectCard(sess.ID, cardID)
		}
	case models.ActionMarkForDiscard:
		if room, cardID, ok := s.resolveCardAction(sess, msg); ok {
			room.MarkForDiscard(sess.ID, cardID)
		}
	case models.ActionDiscardCards:
		if room, ok := s.resolveRoom(sess, msg.RoomID); ok {
			room.DiscardCards(sess.ID)
		}
	case models.ActionPlayHand:
		if room, ok := s.resolveRoom(sess, msg.RoomID); ok {
			room.PlayHand(sess.ID)
		}
	case models.ActionBuildArmor:
		if room, ok := s.resolveRoom(sess, msg.RoomID); ok {
			room.BuildArmor(sess.ID)
		}
	case models.ActionMakePrediction:
		if room, ok := s.resolveRoom(sess, msg.RoomID); ok {
			room.MakePrediction(sess.ID, msg.Category)
		}
	case models.ActionRequestRematch:
		if room, ok := s.resolveRoom(sess, msg.RoomID); ok {
			room.RequestRematch(sess.ID)
		}
	case models.ActionAcceptRematch:
		if room, ok := s.resolveRoom(sess, msg.RoomID); ok {
			room.AcceptRematch(sess.ID)
		}
	case models.ActionDeclineRematch:
		if room, ok := s.resolveRoom(sess, msg.RoomID); ok {
			room.DeclineRematch(sess.ID)
		}
	default:
		cl.send(game.RoomEvent{Type: game.EventError, Message: "unknown action type: " + msg.Type})
	}
}

func (s *Server) handleSetPlayerName(cl *client, sess *session.Session, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		cl.send(game.RoomEvent{Type: game.EventError, Message: "name cannot be empty"})
		return
	}
	sess.Name = name
	s.Sessions.SetName(sess.ID, name)

	// Renaming while seated must reach the room, or broadcasts would keep
	// carrying the join-time name.
	if sess.RoomID != uuid.Nil {
		if room, ok := s.Rooms.GetRoom(sess.RoomID); ok {
			room.RenamePlayer(sess.ID, name)
		}
	}

	payload := map[string]interface{}{
		"id":   sess.ID,
		"name": sess.Name,
	}
	// Refresh the identity token so the chosen name survives reconnects.
	if token, err := auth.CreateToken(sess.ID.String(), sess.Name); err == nil {
		payload["token"] = token
	}
	cl.send(game.RoomEvent{Type: game.EventPlayerSet, Payload: payload})
}

func (s *Server) handleCreateRoom(cl *client, sess *session.Session, msg models.ClientMessage) {
	if sess.RoomID != uuid.Nil {
		cl.send(game.RoomEvent{Type: game.EventError, Message: "you are already in a room"})
		return
	}
	name := strings.TrimSpace(msg.RoomName)
	if name == "" {
		name = sess.Name + "'s room"
	}
	mode, _ := game.ParseMode(msg.GameMode)

	room := game.NewRoom(name, mode, s.startDelay)
	s.bindRoom(room)
	s.Rooms.AddRoom(room)

	if err := room.AddPlayer(sess.ID, sess.Name); err != nil {
		s.Rooms.DeleteRoom(room.ID)
		cl.send(game.RoomEvent{Type: game.EventError, Message: err.Error()})
		return
	}
	sess.RoomID = room.ID
	s.Sessions.SetRoom(sess.ID, room.ID)

	summary := room.Summary()
	cl.send(game.RoomEvent{Type: game.EventRoomCreated, Rooms: []game.RoomSummary{summary}})
	s.notifyRoomsUpdated()
}

func (s *Server) handleJoinRoom(cl *client, sess *session.Session, roomIDStr string) {
	if sess.RoomID != uuid.Nil {
		cl.send(game.RoomEvent{Type: game.EventError, Message: "you are already in a room"})
		return
	}
	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		cl.send(game.RoomEvent{Type: game.EventError, Message: "invalid room id"})
		return
	}
	room, ok := s.Rooms.GetRoom(roomID)
	if !ok {
		cl.send(game.RoomEvent{Type: game.EventError, Message: "room not found"})
		return
	}
	if err := room.AddPlayer(sess.ID, sess.Name); err != nil {
		cl.send(game.RoomEvent{Type: game.EventError, Message: err.Error()})
		return
	}
	sess.RoomID = room.ID
	s.Sessions.SetRoom(sess.ID, room.ID)
	s.notifyRoomsUpdated()
}

// handleLeaveRoom removes the session's player from its room, destroying the
// room when it empties. Safe to call for sessions not in any room.
func (s *Server) handleLeaveRoom(sess *session.Session) {
	if sess.RoomID == uuid.Nil {
		return
	}
	roomID := sess.RoomID
	sess.RoomID = uuid.Nil
	s.Sessions.SetRoom(sess.ID, uuid.Nil)

	room, ok := s.Rooms.GetRoom(roomID)
	if !ok {
		return
	}
	if remaining := room.RemovePlayer(sess.ID); remaining == 0 {
		s.Rooms.DeleteRoom(roomID)
	}
	s.notifyRoomsUpdated()
}

// resolveRoom maps an addressed action onto the session's current room. The
// room id in the message must match the room the session actually occupies;
// a mismatch is dropped as desync noise.
func (s *Server) resolveRoom(sess *session.Session, roomIDStr string) (*game.Room, bool) {
	if sess.RoomID == uuid.Nil {
		return nil, false
	}
	if roomIDStr != "" {
		roomID, err := uuid.Parse(roomIDStr)
		if err != nil || roomID != sess.RoomID {
			return nil, false
		}
	}
	room, ok := s.Rooms.GetRoom(sess.RoomID)
	return room, ok
}

// resolveCardAction additionally parses the card id for selection actions.
func (s *Server) resolveCardAction(sess *session.Session, msg models.ClientMessage) (*game.Room, uuid.UUID, bool) {
	room, ok := s.resolveRoom(sess, msg.RoomID)
	if !ok {
		return nil, uuid.Nil, false
	}
	cardID, err := uuid.Parse(msg.CardID)
	if err != nil {
		return nil, uuid.Nil, false
	}
	return room, cardID, true
}
