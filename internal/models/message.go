// internal/models/message.go
package models

// ClientMessage is the closed schema for every inbound WebSocket action.
// Field relevance depends on Type; the gateway validates the required fields
// for each action before dispatching into the engine.
type ClientMessage struct {
	Type string `json:"type"`

	// Name is used by setPlayerName.
	Name string `json:"name,omitempty"`

	// RoomName and GameMode are used by createRoom.
	RoomName string `json:"roomName,omitempty"`
	GameMode string `json:"gameMode,omitempty"`

	// RoomID addresses an existing room (joinRoom and all in-match actions).
	RoomID string `json:"roomId,omitempty"`

	// CardID is used by selectCard and markForDiscard.
	CardID string `json:"cardId,omitempty"`

	// Category is used by makePrediction.
	Category string `json:"category,omitempty"`
}

// Inbound action type names. These form the complete inbound surface; the
// gateway rejects anything else with a generic error event.
const (
	ActionSetPlayerName  = "setPlayerName"
	ActionGetRooms       = "getRooms"
	ActionCreateRoom     = "createRoom"
	ActionJoinRoom       = "joinRoom"
	ActionSelectCard     = "selectCard"
	ActionMarkForDiscard = "markForDiscard"
	ActionDiscardCards   = "discardCards"
	ActionPlayHand       = "playHand"
	ActionBuildArmor     = "buildArmor"
	ActionMakePrediction = "makePrediction"
	ActionRequestRematch = "requestRematch"
	ActionAcceptRematch  = "acceptRematch"
	ActionDeclineRematch = "declineRematch"
	ActionLeaveRoom      = "leaveRoom"
)
