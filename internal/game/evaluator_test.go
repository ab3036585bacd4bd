// internal/game/evaluator_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckduel/server/internal/models"
)

// cards builds a selection from (suit, rank) pairs.
func cards(pairs ...interface{}) []*models.Card {
	if len(pairs)%2 != 0 {
		panic("cards: need suit/rank pairs")
	}
	var out []*models.Card
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, &models.Card{
			ID:   uuid.New(),
			Suit: pairs[i].(string),
			Rank: pairs[i+1].(int),
		})
	}
	return out
}

func TestValidateSelection(t *testing.T) {
	h, d, c, s := models.SuitHearts, models.SuitDiamonds, models.SuitClubs, models.SuitSpades

	tests := []struct {
		name  string
		cards []*models.Card
		valid bool
	}{
		{"no cards", nil, false},
		{"single card", cards(h, 7), true},
		{"pair", cards(h, 7, d, 7), true},
		{"two unrelated cards", cards(h, 7, d, 8), false},
		{"trips", cards(h, 7, d, 7, c, 7), true},
		{"three unrelated", cards(h, 7, d, 7, c, 8), false},
		{"four of a kind", cards(h, 7, d, 7, c, 7, s, 7), true},
		{"two pair", cards(h, 7, d, 7, c, 9, s, 9), true},
		{"four cards one pair", cards(h, 7, d, 7, c, 9, s, 10), false},
		{"four cards trips plus kicker", cards(h, 7, d, 7, c, 7, s, 10), false},
		{"regular straight", cards(h, 4, d, 5, c, 6, s, 7, h, 8), true},
		{"low straight", cards(h, 1, d, 2, c, 3, s, 4, h, 5), true},
		{"broadway straight", cards(h, 1, d, 10, c, 11, s, 12, h, 13), true},
		{"broadway in any order", cards(h, 13, d, 11, c, 12, s, 1, h, 10), true},
		{"ace with partial run", cards(h, 1, d, 11, c, 12, s, 13, h, 9), false},
		{"wraparound is not a straight", cards(h, 12, d, 13, c, 1, s, 2, h, 3), false},
		{"flush", cards(h, 2, h, 5, h, 8, h, 11, h, 13), true},
		{"full house", cards(h, 4, d, 4, c, 4, s, 9, h, 9), true},
		{"five-card quads plus kicker", cards(h, 4, d, 4, c, 4, s, 4, h, 9), false},
		{"five-card plain two pair", cards(h, 4, d, 4, c, 9, s, 9, h, 12), false},
		{"five-card plain trips", cards(h, 4, d, 4, c, 4, s, 9, h, 12), false},
		{"five unrelated", cards(h, 2, d, 5, c, 8, s, 11, h, 13), false},
		{"six cards", cards(h, 2, d, 2, c, 2, s, 2, h, 3, d, 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelection(tt.cards)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEvaluateInvalidIffValidateFails(t *testing.T) {
	h, d := models.SuitHearts, models.SuitDiamonds

	selections := [][]*models.Card{
		nil,
		cards(h, 7),
		cards(h, 7, d, 8),
		cards(h, 4, d, 4, models.SuitClubs, 9, models.SuitSpades, 9, h, 12),
	}

	for _, sel := range selections {
		result := EvaluateHand(sel)
		if ValidateSelection(sel) != nil {
			assert.Equal(t, CategoryInvalid, result.Category)
			assert.Zero(t, result.Damage)
			assert.NotEmpty(t, result.Description)
		} else {
			assert.NotEqual(t, CategoryInvalid, result.Category)
		}
	}
}

func TestClassification(t *testing.T) {
	h, d, c, s := models.SuitHearts, models.SuitDiamonds, models.SuitClubs, models.SuitSpades

	tests := []struct {
		name     string
		cards    []*models.Card
		category string
	}{
		{"high card", cards(h, 9), CategoryHighCard},
		{"one pair", cards(h, 9, d, 9), CategoryOnePair},
		{"three of a kind", cards(h, 9, d, 9, c, 9), CategoryThreeOfAKind},
		{"two pair", cards(h, 9, d, 9, c, 4, s, 4), CategoryTwoPair},
		{"four of a kind", cards(h, 9, d, 9, c, 9, s, 9), CategoryFourOfAKind},
		{"regular straight", cards(h, 5, d, 6, c, 7, s, 8, h, 9), CategoryStraight},
		{"low straight mixed suits", cards(h, 1, d, 2, c, 3, s, 4, h, 5), CategoryStraight},
		{"broadway mixed suits", cards(h, 1, d, 10, c, 11, s, 12, h, 13), CategoryStraight},
		{"flush", cards(h, 2, h, 6, h, 9, h, 11, h, 13), CategoryFlush},
		{"full house", cards(h, 6, d, 6, c, 6, s, 10, h, 10), CategoryFullHouse},
		{"straight flush", cards(h, 5, h, 6, h, 7, h, 8, h, 9), CategoryStraightFlush},
		{"low straight flush", cards(c, 1, c, 2, c, 3, c, 4, c, 5), CategoryStraightFlush},
		{"royal flush", cards(s, 1, s, 10, s, 11, s, 12, s, 13), CategoryRoyalFlush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateHand(tt.cards)
			assert.Equal(t, tt.category, result.Category)
		})
	}
}

func TestRoyalFlushOutranksStraightFlush(t *testing.T) {
	s := models.SuitSpades
	royal := cards(s, 1, s, 10, s, 11, s, 12, s, 13)

	result := EvaluateHand(royal)
	require.Equal(t, CategoryRoyalFlush, result.Category)
	assert.Greater(t, BaseDamage(CategoryRoyalFlush), BaseDamage(CategoryStraightFlush))
}

func TestDamageMath(t *testing.T) {
	h, d := models.SuitHearts, models.SuitDiamonds

	// Pair of 9s: base 10 + 9 + 9.
	result := EvaluateHand(cards(h, 9, d, 9))
	assert.Equal(t, 28, result.Damage)

	// Aces count 14: pair of aces is base 10 + 14 + 14.
	result = EvaluateHand(cards(h, 1, d, 1))
	assert.Equal(t, 38, result.Damage)

	// Face cards carry 11/12/13.
	result = EvaluateHand(cards(h, 13))
	assert.Equal(t, BaseDamage(CategoryHighCard)+13, result.Damage)
}

func TestDamageMonotonicWithinCategory(t *testing.T) {
	h, d := models.SuitHearts, models.SuitDiamonds

	// Fixed category (One Pair), increasing face-value sums.
	prev := -1
	for rank := 2; rank <= 10; rank++ {
		result := EvaluateHand(cards(h, rank, d, rank))
		require.Equal(t, CategoryOnePair, result.Category)
		assert.Greater(t, result.Damage, prev, "damage must increase with face value (rank %d)", rank)
		prev = result.Damage
	}
}

func TestArmorGainTable(t *testing.T) {
	assert.Equal(t, 2, ArmorGain(CategoryHighCard))
	assert.Equal(t, 35, ArmorGain(CategoryRoyalFlush))
	assert.Zero(t, ArmorGain(CategoryInvalid))
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, KnownCategory(CategoryFlush))
	assert.False(t, KnownCategory(CategoryInvalid))
	assert.False(t, KnownCategory("Nonsense"))
}
