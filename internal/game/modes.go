// internal/game/modes.go
package game

// Mode selects one of the three rule variants. Variants diverge in starting
// health, discard budgets, post-play replenishment and the extra tactical
// mechanics (armor, prediction).
type Mode string

const (
	ModeClassic   Mode = "classic"
	ModeTactical  Mode = "tactical"
	ModeRecycling Mode = "recycling"
)

// ModeConfig parameterizes a rule variant.
type ModeConfig struct {
	StartingHealth     int
	MaxDiscards        int
	MaxCardsPerDiscard int

	// RefillFullHand: after a successful play the hand is topped back up to
	// HandSize regardless of how many cards were played. Classic instead
	// replaces exactly the cards played.
	RefillFullHand bool

	// AllowArmor and AllowPrediction enable the tactical sub-mechanics.
	AllowArmor      bool
	AllowPrediction bool

	// DiscardCooldownTurns is set on a player when their discard budget is
	// spent; it ticks down once per elapsed turn and resets the budget at 0.
	// Zero disables the cooldown mechanic.
	DiscardCooldownTurns int
}

var modeConfigs = map[Mode]ModeConfig{
	ModeClassic: {
		StartingHealth:     100,
		MaxDiscards:        3,
		MaxCardsPerDiscard: 5,
	},
	ModeTactical: {
		StartingHealth:     150,
		MaxDiscards:        3,
		MaxCardsPerDiscard: 5,
		RefillFullHand:     true,
		AllowArmor:         true,
		AllowPrediction:    true,
	},
	ModeRecycling: {
		StartingHealth:       100,
		MaxDiscards:          2,
		MaxCardsPerDiscard:   5,
		RefillFullHand:       true,
		DiscardCooldownTurns: 5,
	},
}

// ParseMode validates a client-supplied mode string. Unknown strings fall
// back to classic so a stale client can still create a playable room.
func ParseMode(s string) (Mode, bool) {
	m := Mode(s)
	_, ok := modeConfigs[m]
	if !ok {
		return ModeClassic, false
	}
	return m, true
}

// Config returns the parameter set for a mode.
func (m Mode) Config() ModeConfig {
	return modeConfigs[m]
}
