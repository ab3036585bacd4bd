// internal/models/card.go
package models

import "github.com/google/uuid"

// Suit names.
const (
	SuitHearts   = "hearts"
	SuitDiamonds = "diamonds"
	SuitClubs    = "clubs"
	SuitSpades   = "spades"
)

// Suits lists the four suits in deck-construction order.
var Suits = []string{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Rank bounds. Ranks are 1 (ace) through 13 (king); the ace is stored low
// and treated as high where scoring and straights call for it.
const (
	RankAce = 1
	RankMin = 1
	RankMax = 13
)

// Card is a single card instance. The uuid identity distinguishes the two
// copies of the same suit/rank living in the two players' pools, and is what
// clients reference in card actions. Selected and MarkedForDiscard are
// transient UI flags, cleared whenever the card changes zones.
type Card struct {
	ID   uuid.UUID `json:"id"`
	Suit string    `json:"suit"`
	Rank int       `json:"rank"`

	Selected         bool `json:"selected"`
	MarkedForDiscard bool `json:"markedForDiscard"`
}

// FaceValue is the card's damage contribution: aces count 14, everything
// else counts its rank.
func (c *Card) FaceValue() int {
	if c.Rank == RankAce {
		return 14
	}
	return c.Rank
}

// ClearFlags resets the transient selection flags.
func (c *Card) ClearFlags() {
	c.Selected = false
	c.MarkedForDiscard = false
}
