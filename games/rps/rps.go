// Package rps implements rock-paper-scissors against the house with
// cyclic dominance and a partial refund on draws. Settled plays also
// accrue loyalty rewards.
package rps

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/wager"
)

const (
	Rock     = 0
	Paper    = 1
	Scissors = 2

	winMultiplier  = 198
	drawMultiplier = 99
	outcomeSpace   = 3
)

// rewardRate is the fraction of total payout accrued as loyalty
// rewards on settlement.
var rewardRate = decimal.NewFromFloat(0.01)

// Game resolves rock-paper-scissors rounds.
type Game struct{}

// New creates the rock-paper-scissors game.
func New() *Game {
	return &Game{}
}

func (g *Game) Code() string         { return "rps" }
func (g *Game) OutcomeSpace() int    { return outcomeSpace }
func (g *Game) MaxMultiplier() int64 { return winMultiplier }

func (g *Game) EdgeFraction() decimal.Decimal {
	return decimal.NewFromInt(5).Div(decimal.NewFromInt(winMultiplier))
}

func (g *Game) ValidateChoice(choice wager.Choice) error {
	if choice.Pick < Rock || choice.Pick > Scissors {
		return apperrors.New(apperrors.ErrInvalidChoice, "choice must be rock (0), paper (1) or scissors (2)")
	}
	return nil
}

// Play compares the draw against the player pick. Rock beats
// scissors, scissors beats paper, paper beats rock. A matching pick
// refunds most of the stake at 0.99x.
func (g *Game) Play(choice wager.Choice, draw uint64) (int, int64) {
	outcome := int(draw % outcomeSpace)
	switch {
	case outcome == choice.Pick:
		return outcome, drawMultiplier
	case (outcome+1)%outcomeSpace == choice.Pick:
		return outcome, winMultiplier
	default:
		return outcome, 0
	}
}

// RewardFor accrues a fixed fraction of the total payout.
func (g *Game) RewardFor(settlement *wager.Settlement) decimal.Decimal {
	if !settlement.TotalPayout.IsPositive() {
		return decimal.Zero
	}
	return settlement.TotalPayout.Mul(rewardRate)
}
