// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/deckduel/server/internal/models"
)

// EventType names an outbound broadcast.
type EventType string

// Outbound event types. gameStarted carries both players' full hands
// (trusted-client model); gameStateUpdate carries public summaries with the
// full hand attached only for the player the event is addressed to.
const (
	EventPlayerSet            EventType = "playerSet"
	EventRoomsList            EventType = "roomsList"
	EventRoomCreated          EventType = "roomCreated"
	EventRoomsUpdated         EventType = "roomsUpdated"
	EventPlayerJoined         EventType = "playerJoined"
	EventGameStarted          EventType = "gameStarted"
	EventCardSelected         EventType = "cardSelected"
	EventCardMarkedForDiscard EventType = "cardMarkedForDiscard"
	EventGameStateUpdate      EventType = "gameStateUpdate"
	EventHandPlayed           EventType = "handPlayed"
	EventArmorBuilt           EventType = "armorBuilt"
	EventPredictionMade       EventType = "predictionMade"
	EventGameEnded            EventType = "gameEnded"
	EventInvalidHand          EventType = "invalidHand"
	EventPlayerLeft           EventType = "playerLeft"
	EventRematchRequested     EventType = "rematchRequested"
	EventRematchAccepted      EventType = "rematchAccepted"
	EventRematchDeclined      EventType = "rematchDeclined"
	EventError                EventType = "error"
)

// RoomEvent is the single outbound envelope. Only the fields relevant to the
// event type are populated; everything marshals with omitempty so payloads
// stay minimal on the wire.
type RoomEvent struct {
	Type EventType `json:"type"`

	Room    *RoomSnapshot  `json:"room,omitempty"`
	Rooms   []RoomSummary  `json:"rooms,omitempty"`
	Player  *PlayerSummary `json:"player,omitempty"`
	Card    *models.Card   `json:"card,omitempty"`
	Result  *HandResult    `json:"result,omitempty"`
	Message string         `json:"message,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

// RoomSummary is the flat open-rooms listing entry.
type RoomSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	GameMode    Mode      `json:"gameMode"`
	State       State     `json:"state"`
	PlayerCount int       `json:"playerCount"`
}

// PlayerSummary is a player's public view: no hand contents, only its size.
type PlayerSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Health          int       `json:"health"`
	MaxHealth       int       `json:"maxHealth"`
	HandSize        int       `json:"handSize"`
	DeckSize        int       `json:"deckSize"`
	DiscardPileSize int       `json:"discardPileSize"`
	DiscardsUsed    int       `json:"discardsUsed"`
	MaxDiscards     int       `json:"maxDiscards"`
	DiscardCooldown int       `json:"discardCooldown"`
	Armor           int       `json:"armor"`
	HasPrediction   bool      `json:"hasPrediction"`

	// Hand is attached only where revealing it is intended: both players in
	// gameStarted, the acting player's copy of gameStateUpdate.
	Hand []*models.Card `json:"hand,omitempty"`
}

// RoomSnapshot is the room-level state carried by gameStarted,
// gameStateUpdate and the end-of-game events.
type RoomSnapshot struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	GameMode           Mode            `json:"gameMode"`
	State              State           `json:"state"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	TurnCounter        int             `json:"turnCounter"`
	Players            []PlayerSummary `json:"players"`
	LastPlayedHand     *HandResult     `json:"lastPlayedHand,omitempty"`
}

// summarizePlayer builds the public view of a player.
func summarizePlayer(p *models.Player) PlayerSummary {
	return PlayerSummary{
		ID:              p.ID,
		Name:            p.Name,
		Health:          p.Health,
		MaxHealth:       p.MaxHealth,
		HandSize:        len(p.Hand),
		DeckSize:        len(p.Deck),
		DiscardPileSize: len(p.DiscardPile),
		DiscardsUsed:    p.DiscardsUsed,
		MaxDiscards:     p.MaxDiscards,
		DiscardCooldown: p.DiscardCooldown,
		Armor:           p.Armor,
		HasPrediction:   p.Prediction != "",
	}
}

// snapshot builds the room view. revealHandsFor lists player ids whose full
// hands are included; uuid.Nil entries are ignored.
// Assumes the room lock is held.
func (r *Room) snapshot(revealHandsFor ...uuid.UUID) *RoomSnapshot {
	reveal := make(map[uuid.UUID]bool, len(revealHandsFor))
	for _, id := range revealHandsFor {
		if id != uuid.Nil {
			reveal[id] = true
		}
	}
	snap := &RoomSnapshot{
		ID:                 r.ID,
		Name:               r.Name,
		GameMode:           r.Mode,
		State:              r.State,
		CurrentPlayerIndex: r.CurrentPlayerIndex,
		TurnCounter:        r.TurnCounter,
		LastPlayedHand:     r.LastPlayedHandResult,
	}
	for _, p := range r.Players {
		ps := summarizePlayer(p)
		if reveal[p.ID] {
			ps.Hand = p.Hand
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}

// Summary builds the open-rooms listing entry for this room.
func (r *Room) Summary() RoomSummary {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		GameMode:    r.Mode,
		State:       r.State,
		PlayerCount: len(r.Players),
	}
}
