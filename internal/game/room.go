// internal/game/room.go
//
// Room owns the whole match: two player states, the shared turn pointer and
// the waiting -> playing -> ended state machine. Every inbound action runs
// under the room mutex, so actions on one room are atomic with respect to
// each other, and broadcasts fire in the order actions were applied.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deckduel/server/internal/cache"
	"github.com/deckduel/server/internal/models"
)

// State is the room lifecycle phase.
type State string

const (
	StateWaiting State = "waiting"
	StatePlaying State = "playing"
	StateEnded   State = "ended"
)

// MaxPlayers is fixed: this is strictly a two-player duel.
const MaxPlayers = 2

// Structural errors surfaced to the acting client via the error event.
var (
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("you are already in this room")
	ErrGameStarted   = errors.New("game has already started")
)

// Room is a single match instance held entirely in memory.
type Room struct {
	ID   uuid.UUID
	Name string
	Mode Mode

	Players            []*models.Player
	State              State
	CurrentPlayerIndex int
	TurnCounter        int

	LastPlayedHandResult *HandResult

	// rematchRequestedBy is the player waiting on an answer, or uuid.Nil.
	rematchRequestedBy uuid.UUID

	// startTimer defers game start after the second join so clients can
	// attach listeners. Its callback re-checks room state before acting.
	startTimer *time.Timer
	startDelay time.Duration

	actionIndex int

	Mu sync.Mutex

	// BroadcastFn sends an event to every connection in the room.
	BroadcastFn func(ev RoomEvent)
	// BroadcastToPlayerFn sends an event to a single player's connection.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev RoomEvent)
}

// NewRoom creates an empty room in the waiting state.
func NewRoom(name string, mode Mode, startDelay time.Duration) *Room {
	return &Room{
		ID:         uuid.New(),
		Name:       name,
		Mode:       mode,
		State:      StateWaiting,
		startDelay: startDelay,
	}
}

// AddPlayer seats a player. When the second player joins, the game start is
// scheduled after the grace delay; the deferred callback is a no-op if the
// room changed underneath it (player left, room destroyed).
func (r *Room) AddPlayer(playerID uuid.UUID, name string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateWaiting {
		return ErrGameStarted
	}
	for _, p := range r.Players {
		if p.ID == playerID {
			return ErrAlreadyInRoom
		}
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}

	p := &models.Player{ID: playerID, Name: name}
	r.Players = append(r.Players, p)
	log.Printf("Room %s: player %s (%s) joined (%d/%d).", r.ID, playerID, name, len(r.Players), MaxPlayers)
	r.logAction(playerID, "player_joined", map[string]interface{}{"name": name})

	r.fireEvent(RoomEvent{
		Type:   EventPlayerJoined,
		Player: ptrSummary(summarizePlayer(p)),
		Room:   r.snapshot(),
	})

	if len(r.Players) == MaxPlayers {
		r.scheduleStart()
	}
	return nil
}

// scheduleStart arms the deferred game start. Assumes lock is held.
func (r *Room) scheduleStart() {
	if r.startTimer != nil {
		r.startTimer.Stop()
	}
	r.startTimer = time.AfterFunc(r.startDelay, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		// The room may have been emptied or destroyed before the timer
		// fired; start only from a full waiting room.
		if r.State != StateWaiting || len(r.Players) != MaxPlayers {
			log.Printf("Room %s: deferred start skipped (state: %s, players: %d).", r.ID, r.State, len(r.Players))
			return
		}
		r.startGame()
	})
}

// startGame initializes a fresh match: full health, fresh decks, opening
// hands of eight, reset budgets, and an unbiased coin flip for first player.
// Used both for the initial start and for rematches. Assumes lock is held.
func (r *Room) startGame() {
	cfg := r.Mode.Config()
	for _, p := range r.Players {
		p.Health = cfg.StartingHealth
		p.MaxHealth = cfg.StartingHealth
		p.Deck = NewShuffledDeck()
		p.Hand = nil
		p.DiscardPile = nil
		p.Hand = append(p.Hand, DrawCards(p, HandSize)...)
		p.DiscardsUsed = 0
		p.MaxDiscards = cfg.MaxDiscards
		p.MaxCardsPerDiscard = cfg.MaxCardsPerDiscard
		p.DiscardCooldown = 0
		p.Armor = 0
		p.Prediction = ""
	}
	r.CurrentPlayerIndex = rand.Intn(MaxPlayers)
	r.TurnCounter = 1
	r.LastPlayedHandResult = nil
	r.rematchRequestedBy = uuid.Nil
	r.State = StatePlaying

	log.Printf("Room %s: game started (mode: %s, first player: %s).", r.ID, r.Mode, r.Players[r.CurrentPlayerIndex].ID)
	r.logAction(uuid.Nil, "game_started", map[string]interface{}{
		"mode":        string(r.Mode),
		"firstPlayer": r.Players[r.CurrentPlayerIndex].ID,
	})

	// Both full hands go out here; clients are trusted with the snapshot.
	r.fireEvent(RoomEvent{
		Type: EventGameStarted,
		Room: r.snapshot(r.Players[0].ID, r.Players[1].ID),
	})
}

// actingPlayer resolves playerID to the current player, or nil when the
// action must be silently dropped: wrong state, unknown player, or out of
// turn. Dropped actions produce no broadcast at all; they are client
// desynchronization noise, not reportable faults. Assumes lock is held.
func (r *Room) actingPlayer(playerID uuid.UUID) *models.Player {
	if r.State != StatePlaying {
		return nil
	}
	if r.CurrentPlayerIndex < 0 || r.CurrentPlayerIndex >= len(r.Players) {
		return nil
	}
	current := r.Players[r.CurrentPlayerIndex]
	if current.ID != playerID {
		return nil
	}
	return current
}

// playerByID finds a seated player regardless of turn. Assumes lock is held.
func (r *Room) playerByID(playerID uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// opponentOf returns the other seated player. Assumes lock is held.
func (r *Room) opponentOf(playerID uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.ID != playerID {
			return p
		}
	}
	return nil
}

// RenamePlayer updates a seated player's display name so subsequent
// broadcasts carry it. Legal in any room state; unknown players are ignored.
func (r *Room) RenamePlayer(playerID uuid.UUID, name string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil || p.Name == name {
		return
	}
	p.Name = name
	r.logAction(playerID, "player_renamed", map[string]interface{}{"name": name})
}

// SelectCard toggles the selected flag on a hand card and broadcasts the new
// selection. Nonexistent cards are ignored silently.
func (r *Room) SelectCard(playerID, cardID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.actingPlayer(playerID)
	if p == nil {
		return
	}
	card := p.CardInHand(cardID)
	if card == nil {
		return
	}
	card.Selected = !card.Selected
	r.logAction(playerID, "card_selected", map[string]interface{}{"cardId": cardID, "selected": card.Selected})
	r.fireEvent(RoomEvent{
		Type:   EventCardSelected,
		Player: ptrSummary(summarizePlayer(p)),
		Card:   card,
		Payload: map[string]interface{}{
			"selectedCount": len(p.SelectedCards()),
		},
	})
}

// MarkForDiscard toggles the markedForDiscard flag on a hand card; used by
// the mark-then-confirm discard flow.
func (r *Room) MarkForDiscard(playerID, cardID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.actingPlayer(playerID)
	if p == nil {
		return
	}
	card := p.CardInHand(cardID)
	if card == nil {
		return
	}
	card.MarkedForDiscard = !card.MarkedForDiscard
	r.logAction(playerID, "card_marked_for_discard", map[string]interface{}{"cardId": cardID, "marked": card.MarkedForDiscard})
	r.fireEvent(RoomEvent{
		Type:   EventCardMarkedForDiscard,
		Player: ptrSummary(summarizePlayer(p)),
		Card:   card,
		Payload: map[string]interface{}{
			"markedCount": len(p.MarkedCards()),
		},
	})
}

// DiscardCards moves the flagged cards to the discard pile and draws
// replacements. Rule violations are answered with an error event to the
// actor; the discard budget and the recycling cooldown gate the action.
func (r *Room) DiscardCards(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.actingPlayer(playerID)
	if p == nil {
		return
	}

	flagged := p.MarkedCards()
	if len(flagged) == 0 {
		flagged = p.SelectedCards()
	}
	switch {
	case len(flagged) == 0:
		r.fireError(playerID, "no cards marked for discard")
		return
	case len(flagged) > p.MaxCardsPerDiscard:
		r.fireError(playerID, fmt.Sprintf("cannot discard more than %d cards at once", p.MaxCardsPerDiscard))
		return
	case p.DiscardCooldown > 0:
		r.fireError(playerID, fmt.Sprintf("discards recharge in %d turns", p.DiscardCooldown))
		return
	case p.DiscardsUsed >= p.MaxDiscards:
		r.fireError(playerID, "no discards remaining")
		return
	}

	need := len(flagged)
	removeFromHand(p, flagged)
	MoveToDiscard(p, flagged)

	// EnsureDrawable can legitimately come up short; draw what exists
	// rather than failing the whole action.
	if !EnsureDrawable(p, need) {
		log.Printf("Room %s: player %s drawing fewer than %d replacement cards (pool exhausted).", r.ID, playerID, need)
	}
	p.Hand = append(p.Hand, DrawCards(p, need)...)

	p.DiscardsUsed++
	cfg := r.Mode.Config()
	if p.DiscardsUsed >= p.MaxDiscards && cfg.DiscardCooldownTurns > 0 {
		p.DiscardCooldown = cfg.DiscardCooldownTurns
	}

	r.logAction(playerID, "cards_discarded", map[string]interface{}{
		"count":        need,
		"discardsUsed": p.DiscardsUsed,
	})
	r.broadcastState(playerID)
}

// PlayHand evaluates the selected cards and applies damage to the opponent.
// Invalid selections cost nothing and are answered with invalidHand; a
// successful play may end the game without advancing the turn.
func (r *Room) PlayHand(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.actingPlayer(playerID)
	if p == nil {
		return
	}

	selected := p.SelectedCards()
	if err := ValidateSelection(selected); err != nil {
		r.fireEventToPlayer(playerID, RoomEvent{Type: EventInvalidHand, Message: err.Error()})
		return
	}

	result := EvaluateHand(selected)
	opponent := r.opponentOf(playerID)
	damage := r.applyCombatModifiers(&result, opponent)

	opponent.Health -= damage
	if opponent.Health < 0 {
		opponent.Health = 0
	}
	r.LastPlayedHandResult = &result

	removeFromHand(p, selected)
	MoveToDiscard(p, selected)
	r.replenishHand(p, len(selected))

	r.logAction(playerID, "hand_played", map[string]interface{}{
		"category": result.Category,
		"damage":   result.Damage,
	})

	if opponent.Health == 0 {
		r.State = StateEnded
		log.Printf("Room %s: game over, %s wins.", r.ID, playerID)
		r.logAction(playerID, "game_ended", map[string]interface{}{"winner": playerID})
		r.fireEvent(RoomEvent{
			Type:   EventGameEnded,
			Room:   r.snapshot(),
			Result: &result,
			Payload: map[string]interface{}{
				"winnerId":   playerID,
				"winnerName": p.Name,
			},
		})
		return
	}

	r.fireEvent(RoomEvent{
		Type:   EventHandPlayed,
		Player: ptrSummary(summarizePlayer(p)),
		Room:   r.snapshot(),
		Result: &result,
	})
	r.advanceTurn()
	r.broadcastState(playerID)
}

// applyCombatModifiers adjusts raw damage for the tactical sub-mechanics, in
// order: prediction multiplier first, then armor absorption. The adjusted
// damage is written back into the result so the broadcast matches what was
// actually dealt. Assumes lock is held.
func (r *Room) applyCombatModifiers(result *HandResult, defender *models.Player) int {
	cfg := r.Mode.Config()
	damage := result.Damage

	if cfg.AllowPrediction && defender.Prediction != "" {
		if defender.Prediction == result.Category {
			damage = damage * 25 / 100
			result.Description += " (prediction correct: damage reduced)"
		} else {
			damage = damage * 125 / 100
			result.Description += " (prediction wrong: damage increased)"
		}
		defender.Prediction = "" // consumed either way
	}

	if cfg.AllowArmor && defender.Armor > 0 && damage > 0 {
		absorbed := defender.Armor
		if absorbed > damage {
			absorbed = damage
		}
		defender.Armor -= absorbed
		damage -= absorbed
	}

	result.Damage = damage
	return damage
}

// replenishHand applies the mode's post-play draw policy: classic replaces
// exactly the cards played, the other modes top the hand back up to eight.
// Assumes lock is held.
func (r *Room) replenishHand(p *models.Player, played int) {
	need := played
	if r.Mode.Config().RefillFullHand {
		need = HandSize - len(p.Hand)
	}
	if need <= 0 {
		return
	}
	if !EnsureDrawable(p, need) {
		log.Printf("Room %s: player %s replenishing fewer than %d cards (pool exhausted).", r.ID, p.ID, need)
	}
	p.Hand = append(p.Hand, DrawCards(p, need)...)
}

// BuildArmor converts the selected hand into armor instead of damage.
// Tactical mode only; elsewhere the action is dropped as desync noise. The
// whole hand is always replaced afterwards and the turn advances as if a
// hand had been played.
func (r *Room) BuildArmor(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.Mode.Config().AllowArmor {
		return
	}
	p := r.actingPlayer(playerID)
	if p == nil {
		return
	}

	selected := p.SelectedCards()
	if err := ValidateSelection(selected); err != nil {
		r.fireEventToPlayer(playerID, RoomEvent{Type: EventInvalidHand, Message: err.Error()})
		return
	}

	result := EvaluateHand(selected)
	gained := ArmorGain(result.Category)
	if p.Armor+gained > MaxArmor {
		gained = MaxArmor - p.Armor
	}
	p.Armor += gained

	// Building armor always burns the full hand for eight fresh cards.
	MoveToDiscard(p, p.Hand)
	p.Hand = nil
	if !EnsureDrawable(p, HandSize) {
		log.Printf("Room %s: player %s redrawing fewer than %d cards after armor build.", r.ID, p.ID, HandSize)
	}
	p.Hand = append(p.Hand, DrawCards(p, HandSize)...)

	r.logAction(playerID, "armor_built", map[string]interface{}{
		"category": result.Category,
		"gained":   gained,
		"armor":    p.Armor,
	})
	r.fireEvent(RoomEvent{
		Type:   EventArmorBuilt,
		Player: ptrSummary(summarizePlayer(p)),
		Room:   r.snapshot(),
		Result: &result,
		Payload: map[string]interface{}{
			"armorGained": gained,
		},
	})
	r.advanceTurn()
	r.broadcastState(playerID)
}

// MakePrediction records the non-active player's guess about the upcoming
// play. Tactical mode only; legal only while a prediction is not already
// pending; does not consume a turn. The guess itself is echoed privately,
// the room only learns that a prediction exists.
func (r *Room) MakePrediction(playerID uuid.UUID, category string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.Mode.Config().AllowPrediction || r.State != StatePlaying {
		return
	}
	p := r.playerByID(playerID)
	if p == nil {
		return
	}
	if r.Players[r.CurrentPlayerIndex].ID == playerID {
		return // the active player cannot predict their own hand
	}
	if p.Prediction != "" {
		return
	}
	if !KnownCategory(category) {
		return
	}

	p.Prediction = category
	r.logAction(playerID, "prediction_made", map[string]interface{}{"category": category})
	r.fireEvent(RoomEvent{
		Type:   EventPredictionMade,
		Player: ptrSummary(summarizePlayer(p)),
	})
	r.fireEventToPlayer(playerID, RoomEvent{
		Type:    EventPredictionMade,
		Payload: map[string]interface{}{"category": category},
	})
}

// advanceTurn flips the turn pointer, bumps the counter, and ticks discard
// cooldowns for both players. Assumes lock is held.
func (r *Room) advanceTurn() {
	r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % MaxPlayers
	r.TurnCounter++

	if r.Mode.Config().DiscardCooldownTurns > 0 {
		for _, p := range r.Players {
			if p.DiscardCooldown > 0 {
				p.DiscardCooldown--
				if p.DiscardCooldown == 0 {
					p.DiscardsUsed = 0
				}
			}
		}
	}
}

// RequestRematch asks the other player for a fresh game; legal only once the
// room has ended.
func (r *Room) RequestRematch(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateEnded {
		return
	}
	p := r.playerByID(playerID)
	if p == nil || r.rematchRequestedBy != uuid.Nil {
		return
	}
	r.rematchRequestedBy = playerID
	r.logAction(playerID, "rematch_requested", nil)
	r.fireEvent(RoomEvent{
		Type:   EventRematchRequested,
		Player: ptrSummary(summarizePlayer(p)),
	})
}

// AcceptRematch re-runs the same initialization as the original start:
// fresh decks, full health, random first player.
func (r *Room) AcceptRematch(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateEnded || r.rematchRequestedBy == uuid.Nil || r.rematchRequestedBy == playerID {
		return
	}
	if r.playerByID(playerID) == nil || len(r.Players) != MaxPlayers {
		return
	}
	r.logAction(playerID, "rematch_accepted", nil)
	r.fireEvent(RoomEvent{Type: EventRematchAccepted})
	r.startGame()
}

// DeclineRematch notifies the requester and leaves the room ended.
func (r *Room) DeclineRematch(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateEnded || r.rematchRequestedBy == uuid.Nil || r.rematchRequestedBy == playerID {
		return
	}
	requester := r.rematchRequestedBy
	r.rematchRequestedBy = uuid.Nil
	r.logAction(playerID, "rematch_declined", nil)
	r.fireEventToPlayer(requester, RoomEvent{Type: EventRematchDeclined})
}

// RemovePlayer unseats a player on leave or disconnect, cancels any pending
// deferred start, and ends a running match. Returns the number of players
// left so the caller can destroy the room once it is empty.
func (r *Room) RemovePlayer(playerID uuid.UUID) int {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return len(r.Players)
	}
	leaving := r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if r.startTimer != nil {
		r.startTimer.Stop()
		r.startTimer = nil
	}
	if r.State == StatePlaying {
		r.State = StateEnded
	}
	r.rematchRequestedBy = uuid.Nil

	log.Printf("Room %s: player %s left (%d remaining).", r.ID, playerID, len(r.Players))
	r.logAction(playerID, "player_left", nil)
	if len(r.Players) > 0 {
		r.fireEvent(RoomEvent{
			Type:   EventPlayerLeft,
			Player: ptrSummary(summarizePlayer(leaving)),
			Room:   r.snapshot(),
		})
	}
	return len(r.Players)
}

// broadcastState sends gameStateUpdate to every seated player: public
// summaries for everyone, with the full hand attached only on the copy
// addressed to the acting player. Assumes lock is held.
func (r *Room) broadcastState(actorID uuid.UUID) {
	for _, p := range r.Players {
		var snap *RoomSnapshot
		if p.ID == actorID {
			snap = r.snapshot(actorID)
		} else {
			snap = r.snapshot()
		}
		r.fireEventToPlayer(p.ID, RoomEvent{Type: EventGameStateUpdate, Room: snap})
	}
}

// fireEvent broadcasts to the whole room. Assumes lock is held.
func (r *Room) fireEvent(ev RoomEvent) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends to one player only. Assumes lock is held.
func (r *Room) fireEventToPlayer(playerID uuid.UUID, ev RoomEvent) {
	if r.BroadcastToPlayerFn != nil {
		r.BroadcastToPlayerFn(playerID, ev)
	}
}

// fireError sends a structural-error event to one player. Assumes lock held.
func (r *Room) fireError(playerID uuid.UUID, message string) {
	r.fireEventToPlayer(playerID, RoomEvent{Type: EventError, Message: message})
}

// publishAction is the historian sink; swappable so tests can capture
// records without a live Redis.
var publishAction = func(ctx context.Context, rec cache.MatchActionRecord) error {
	if cache.Rdb == nil {
		return nil // Redis is optional; no historian configured
	}
	return cache.PublishMatchAction(ctx, rec)
}

// logAction pushes an action record onto the historian queue, best effort.
// Assumes lock is held for the index increment; the push itself is async, so
// consumers order records by ActionIndex, not by queue position.
func (r *Room) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if payload == nil {
		payload = map[string]interface{}{}
	}
	record := cache.MatchActionRecord{
		RoomID:      r.ID,
		ActionIndex: r.actionIndex,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func(rec cache.MatchActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := publishAction(ctx, rec); err != nil {
			log.Printf("Room %s: failed to publish action %d to historian: %v", rec.RoomID, rec.ActionIndex, err)
		}
	}(record)
}

func ptrSummary(s PlayerSummary) *PlayerSummary {
	return &s
}
