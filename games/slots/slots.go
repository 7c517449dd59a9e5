// Package slots implements the slot machine game. The
// outcome→multiplier table is configured once at startup and is
// immutable afterwards.
package slots

import (
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/wager"
)

// Game resolves slot rounds against a configured paytable.
type Game struct {
	table *wager.Paytable
}

// New creates the slot game from a validated paytable.
func New(table *wager.Paytable) *Game {
	return &Game{table: table}
}

func (g *Game) Code() string      { return "slots" }
func (g *Game) OutcomeSpace() int { return g.table.OutcomeSpace }

func (g *Game) MaxMultiplier() int64 { return g.table.MaxMultiplier() }

func (g *Game) EdgeFraction() decimal.Decimal {
	max := g.table.MaxMultiplier()
	if max < 100 {
		max = 100
	}
	return decimal.NewFromInt(5).Div(decimal.NewFromInt(max))
}

// ValidateChoice accepts anything; the slot machine takes no player
// decision.
func (g *Game) ValidateChoice(choice wager.Choice) error {
	return nil
}

// Play looks the outcome up in the paytable; outcomes not listed pay
// zero.
func (g *Game) Play(choice wager.Choice, draw uint64) (int, int64) {
	outcome := int(draw % uint64(g.table.OutcomeSpace))
	return outcome, g.table.MultiplierFor(outcome)
}

// PayoutTable exposes the configured outcome→multiplier mapping.
func (g *Game) PayoutTable() map[int]int64 {
	table := make(map[int]int64, len(g.table.Multipliers))
	for outcome, multiplier := range g.table.Multipliers {
		table[outcome] = multiplier
	}
	return table
}
