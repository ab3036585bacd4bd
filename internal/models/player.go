// internal/models/player.go
package models

import "github.com/google/uuid"

// Player holds the per-player mutable match state. A Player is owned by
// exactly one Room for the Room's lifetime; the room's mutex guards all
// access. Armor and Prediction are only meaningful under the tactical mode.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`

	Hand        []*Card `json:"hand"`
	Deck        []*Card `json:"-"`
	DiscardPile []*Card `json:"-"`

	DiscardsUsed       int `json:"discardsUsed"`
	MaxDiscards        int `json:"maxDiscards"`
	MaxCardsPerDiscard int `json:"maxCardsPerDiscard"`
	DiscardCooldown    int `json:"discardCooldown"`

	Armor      int    `json:"armor"`
	Prediction string `json:"prediction,omitempty"`
}

// SelectedCards returns the hand cards currently flagged as selected,
// preserving hand order.
func (p *Player) SelectedCards() []*Card {
	var out []*Card
	for _, c := range p.Hand {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}

// MarkedCards returns the hand cards currently flagged for discard,
// preserving hand order.
func (p *Player) MarkedCards() []*Card {
	var out []*Card
	for _, c := range p.Hand {
		if c.MarkedForDiscard {
			out = append(out, c)
		}
	}
	return out
}

// CardInHand finds a hand card by id, or nil if the player does not hold it.
func (p *Player) CardInHand(cardID uuid.UUID) *Card {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}
