// Package dice implements the over/under game on a 0..99 outcome
// space. The multiplier follows the probability of the chosen range
// with a fixed 1% house edge.
package dice

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/wager"
)

const (
	outcomeSpace = 100

	// fairPool is 99% of the fair odds pool in hundredths; dividing
	// it by the winning-outcome count yields the multiplier.
	fairPool = 9900
)

// Game resolves over/under dice rounds.
type Game struct{}

// New creates the dice game.
func New() *Game {
	return &Game{}
}

func (g *Game) Code() string      { return "dice" }
func (g *Game) OutcomeSpace() int { return outcomeSpace }

// MaxMultiplier is the single-outcome payout, 99x.
func (g *Game) MaxMultiplier() int64 { return fairPool }

func (g *Game) EdgeFraction() decimal.Decimal {
	return decimal.NewFromInt(5).Div(decimal.NewFromInt(fairPool))
}

// ValidateChoice requires at least one winning outcome and at least
// one losing outcome in the chosen range.
func (g *Game) ValidateChoice(choice wager.Choice) error {
	if winCount(choice) < 1 {
		return apperrors.New(apperrors.ErrInvalidChoice, "chosen range has no winning outcome")
	}
	if winCount(choice) >= outcomeSpace {
		return apperrors.New(apperrors.ErrInvalidChoice, "chosen range covers every outcome")
	}
	return nil
}

// winCount returns how many of the 100 outcomes win for the choice.
func winCount(choice wager.Choice) int {
	if choice.Threshold < 0 || choice.Threshold >= outcomeSpace {
		return 0
	}
	if choice.Over {
		return outcomeSpace - 1 - choice.Threshold
	}
	return choice.Threshold
}

// Play wins when the outcome falls strictly on the chosen side of the
// threshold; the multiplier scales inversely with the winning range.
func (g *Game) Play(choice wager.Choice, draw uint64) (int, int64) {
	outcome := int(draw % outcomeSpace)

	won := false
	if choice.Over {
		won = outcome > choice.Threshold
	} else {
		won = outcome < choice.Threshold
	}
	if !won {
		return outcome, 0
	}
	return outcome, fairPool / int64(winCount(choice))
}
