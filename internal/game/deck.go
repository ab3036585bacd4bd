// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/deckduel/server/internal/models"
)

// HandSize is the number of cards a player holds at the start of a turn.
const HandSize = 8

// DeckSize is the full per-player pool; the conservation invariant
// |hand| + |deck| + |discardPile| == DeckSize holds after dealing.
const DeckSize = 52

// NewShuffledDeck builds the 52-card product of 4 suits x 13 ranks and
// applies an unbiased Fisher-Yates permutation from the last index down to 1.
// Every call produces an independent deck; each player owns a separate one.
func NewShuffledDeck() []*models.Card {
	deck := make([]*models.Card, 0, DeckSize)
	for _, suit := range models.Suits {
		for rank := models.RankMin; rank <= models.RankMax; rank++ {
			deck = append(deck, &models.Card{
				ID:   uuid.New(),
				Suit: suit,
				Rank: rank,
			})
		}
	}
	shuffleCards(deck)
	return deck
}

func shuffleCards(cards []*models.Card) {
	for i := len(cards) - 1; i >= 1; i-- {
		j := rand.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// EnsureDrawable guarantees, where possible, that the player's deck holds at
// least need cards. If the deck is short, the discard pile is shuffled and
// appended to the deck, then cleared; this is the only path for cards to
// re-enter a deck. Returns false when even the combined pool is insufficient,
// which callers must treat as "draw fewer", not as a fault.
func EnsureDrawable(p *models.Player, need int) bool {
	if len(p.Deck) >= need {
		return true
	}
	if len(p.DiscardPile) > 0 {
		shuffleCards(p.DiscardPile)
		p.Deck = append(p.Deck, p.DiscardPile...)
		p.DiscardPile = p.DiscardPile[:0]
	}
	return len(p.Deck) >= need
}

// DrawCards removes and returns the first n cards of the player's deck,
// possibly fewer if the deck runs out. Transient flags are cleared on draw.
func DrawCards(p *models.Player, n int) []*models.Card {
	if n > len(p.Deck) {
		n = len(p.Deck)
	}
	drawn := p.Deck[:n]
	p.Deck = p.Deck[n:]
	for _, c := range drawn {
		c.ClearFlags()
	}
	return drawn
}

// MoveToDiscard appends cards to the player's discard pile with transient
// flags cleared.
func MoveToDiscard(p *models.Player, cards []*models.Card) {
	for _, c := range cards {
		c.ClearFlags()
		p.DiscardPile = append(p.DiscardPile, c)
	}
}

// removeFromHand deletes the given cards from the player's hand, preserving
// the order of the remainder.
func removeFromHand(p *models.Player, cards []*models.Card) {
	drop := make(map[uuid.UUID]bool, len(cards))
	for _, c := range cards {
		drop[c.ID] = true
	}
	kept := p.Hand[:0]
	for _, c := range p.Hand {
		if !drop[c.ID] {
			kept = append(kept, c)
		}
	}
	p.Hand = kept
}
