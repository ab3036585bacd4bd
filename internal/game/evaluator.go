// internal/game/evaluator.go
//
// Pure poker-hand classification and damage pricing. Nothing in this file
// touches room or player state; Validate/Evaluate operate only on the
// candidate selection passed in, so the gateway's client-side preview can
// reproduce server results exactly from the same tables.
package game

import (
	"errors"
	"sort"

	"github.com/deckduel/server/internal/models"
)

// Hand categories, highest precedence first. A royal flush is a strict
// subset pattern of a straight flush and must be checked before it.
const (
	CategoryRoyalFlush    = "Royal Flush"
	CategoryStraightFlush = "Straight Flush"
	CategoryFourOfAKind   = "Four of a Kind"
	CategoryFullHouse     = "Full House"
	CategoryFlush         = "Flush"
	CategoryStraight      = "Straight"
	CategoryThreeOfAKind  = "Three of a Kind"
	CategoryTwoPair       = "Two Pair"
	CategoryOnePair       = "One Pair"
	CategoryHighCard      = "High Card"
	CategoryInvalid       = "Invalid Hand"
)

// HandResult is the evaluator's output. It is never stored except as a
// room's lastPlayedHandResult for spectating.
type HandResult struct {
	Category    string `json:"category"`
	Damage      int    `json:"damage"`
	Description string `json:"description"`
}

// baseDamage is the escalated damage scale used by the multi-mode ruleset.
// Client preview math must match these values exactly.
var baseDamage = map[string]int{
	CategoryHighCard:      5,
	CategoryOnePair:       10,
	CategoryTwoPair:       20,
	CategoryThreeOfAKind:  30,
	CategoryStraight:      40,
	CategoryFlush:         50,
	CategoryFullHouse:     60,
	CategoryFourOfAKind:   80,
	CategoryStraightFlush: 100,
	CategoryRoyalFlush:    120,
}

var categoryDescriptions = map[string]string{
	CategoryHighCard:      "High Card",
	CategoryOnePair:       "One Pair - two cards of the same rank",
	CategoryTwoPair:       "Two Pair - two different pairs",
	CategoryThreeOfAKind:  "Three of a Kind - three cards of the same rank",
	CategoryStraight:      "Straight - five cards in sequence",
	CategoryFlush:         "Flush - five cards of the same suit",
	CategoryFullHouse:     "Full House - three of a kind plus a pair",
	CategoryFourOfAKind:   "Four of a Kind - four cards of the same rank",
	CategoryStraightFlush: "Straight Flush - a straight, all one suit",
	CategoryRoyalFlush:    "Royal Flush - ten to ace, all one suit",
}

// armorGain is the tactical-mode category -> armor conversion table.
var armorGain = map[string]int{
	CategoryHighCard:      2,
	CategoryOnePair:       4,
	CategoryTwoPair:       6,
	CategoryThreeOfAKind:  9,
	CategoryStraight:      12,
	CategoryFlush:         15,
	CategoryFullHouse:     18,
	CategoryFourOfAKind:   24,
	CategoryStraightFlush: 30,
	CategoryRoyalFlush:    35,
}

// MaxArmor caps a tactical player's total armor.
const MaxArmor = 50

// BaseDamage exposes the damage scale for a category (0 for unknown), so
// clients rendering a damage preview use the same numbers the server does.
func BaseDamage(category string) int {
	return baseDamage[category]
}

// ArmorGain returns the armor awarded for building with the given category.
func ArmorGain(category string) int {
	return armorGain[category]
}

// KnownCategory reports whether s names one of the ten playable categories.
// Used to validate prediction payloads at the boundary.
func KnownCategory(s string) bool {
	_, ok := baseDamage[s]
	return ok
}

// Selection legality errors surfaced through the invalidHand event.
var (
	errNoCards       = errors.New("no cards selected")
	errNotPair       = errors.New("two cards must share the same rank")
	errNotTrips      = errors.New("three cards must all share the same rank")
	errBadFourCards  = errors.New("four cards must form four of a kind or two pair")
	errBadFiveCards  = errors.New("five cards must form a straight, flush, full house, straight flush or royal flush")
	errTooManyCards  = errors.New("cannot play more than five cards")
)

// ValidateSelection reports whether 1-5 selected cards form a playable
// combination. nil means playable. Five-card plays are restricted to genuine
// 5-card poker categories; a plain two pair or trips spread over five cards
// is illegal.
func ValidateSelection(cards []*models.Card) error {
	switch len(cards) {
	case 0:
		return errNoCards
	case 1:
		return nil
	case 2:
		if cards[0].Rank != cards[1].Rank {
			return errNotPair
		}
		return nil
	case 3:
		if cards[0].Rank != cards[1].Rank || cards[1].Rank != cards[2].Rank {
			return errNotTrips
		}
		return nil
	case 4:
		counts := rankCounts(cards)
		if len(counts) == 1 {
			return nil // four of a kind
		}
		if len(counts) == 2 {
			for _, n := range counts {
				if n != 2 {
					return errBadFourCards
				}
			}
			return nil // two pair
		}
		return errBadFourCards
	case 5:
		counts := rankCounts(cards)
		if len(counts) == 2 { // 3+2 is a full house; 4+1 is not a legal 5-card play
			for _, n := range counts {
				if n == 3 {
					return nil
				}
			}
			return errBadFiveCards
		}
		if len(counts) == 5 {
			if isStraight(cards) || isFlush(cards) {
				return nil
			}
		}
		return errBadFiveCards
	default:
		return errTooManyCards
	}
}

// EvaluateHand validates and classifies a selection, returning its damage.
// Damage = baseDamage(category) + sum of face values. Invalid selections
// yield a zero-damage result carrying the validation reason.
func EvaluateHand(cards []*models.Card) HandResult {
	if err := ValidateSelection(cards); err != nil {
		return HandResult{Category: CategoryInvalid, Damage: 0, Description: err.Error()}
	}
	category := classify(cards)
	return HandResult{
		Category:    category,
		Damage:      baseDamage[category] + faceValueSum(cards),
		Description: categoryDescriptions[category],
	}
}

// classify assumes the selection already passed ValidateSelection.
func classify(cards []*models.Card) string {
	switch len(cards) {
	case 1:
		return CategoryHighCard
	case 2:
		return CategoryOnePair
	case 3:
		return CategoryThreeOfAKind
	case 4:
		if len(rankCounts(cards)) == 1 {
			return CategoryFourOfAKind
		}
		return CategoryTwoPair
	default:
		straight := isStraight(cards)
		flush := isFlush(cards)
		switch {
		case straight && flush && isBroadway(cards):
			return CategoryRoyalFlush
		case straight && flush:
			return CategoryStraightFlush
		case len(rankCounts(cards)) == 2:
			return CategoryFullHouse
		case flush:
			return CategoryFlush
		default:
			return CategoryStraight
		}
	}
}

func faceValueSum(cards []*models.Card) int {
	total := 0
	for _, c := range cards {
		total += c.FaceValue()
	}
	return total
}

func rankCounts(cards []*models.Card) map[int]int {
	counts := make(map[int]int, len(cards))
	for _, c := range cards {
		counts[c.Rank]++
	}
	return counts
}

func sortedRanks(cards []*models.Card) []int {
	ranks := make([]int, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	sort.Ints(ranks)
	return ranks
}

func ranksEqual(ranks []int, want ...int) bool {
	for i := range want {
		if ranks[i] != want[i] {
			return false
		}
	}
	return true
}

// isStraight detects a 5-card run over 5 distinct ranks. The Ace counts low
// in the A-2-3-4-5 straight and high only in the exact broadway pattern
// 10-J-Q-K-A; no other ace-high run is legal.
func isStraight(cards []*models.Card) bool {
	if len(cards) != 5 || len(rankCounts(cards)) != 5 {
		return false
	}
	ranks := sortedRanks(cards)
	if ranksEqual(ranks, 1, 2, 3, 4, 5) { // low straight
		return true
	}
	if isBroadway(cards) { // ace-high straight
		return true
	}
	if ranks[0] == models.RankAce {
		return false // any other ace-led sequence is not a run
	}
	return ranks[4]-ranks[0] == 4
}

// isBroadway reports the exact 10-J-Q-K-A rank pattern.
func isBroadway(cards []*models.Card) bool {
	if len(cards) != 5 || len(rankCounts(cards)) != 5 {
		return false
	}
	return ranksEqual(sortedRanks(cards), 1, 10, 11, 12, 13)
}

func isFlush(cards []*models.Card) bool {
	if len(cards) != 5 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}
