// Package coinflip implements the heads/tails game: one draw per
// round, even money less the house edge.
package coinflip

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/wager"
)

const (
	Heads = 0
	Tails = 1

	winMultiplier = 198
	outcomeSpace  = 2
)

// Game resolves coin flip rounds.
type Game struct{}

// New creates the coin flip game.
func New() *Game {
	return &Game{}
}

func (g *Game) Code() string         { return "coinflip" }
func (g *Game) OutcomeSpace() int    { return outcomeSpace }
func (g *Game) MaxMultiplier() int64 { return winMultiplier }

// EdgeFraction caps a round's wager so the maximum payout stays
// within 5% of bankroll liquidity.
func (g *Game) EdgeFraction() decimal.Decimal {
	return decimal.NewFromInt(5).Div(decimal.NewFromInt(winMultiplier))
}

func (g *Game) ValidateChoice(choice wager.Choice) error {
	if choice.Pick != Heads && choice.Pick != Tails {
		return apperrors.New(apperrors.ErrInvalidChoice, "coin flip choice must be heads (0) or tails (1)")
	}
	return nil
}

// Play pays 1.98x when the draw matches the chosen side, zero
// otherwise.
func (g *Game) Play(choice wager.Choice, draw uint64) (int, int64) {
	outcome := int(draw % outcomeSpace)
	if outcome == choice.Pick {
		return outcome, winMultiplier
	}
	return outcome, 0
}
