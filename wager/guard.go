package wager

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/pkg/providers"
)

// SizingGuard caps a single round's wager as a fraction of bankroll
// liquidity so that the game's maximum payout stays within acceptable
// bankroll risk. Liquidity is read freshly on every check.
type SizingGuard struct {
	bankroll providers.BankrollProvider
}

// NewSizingGuard creates a guard backed by the given bankroll.
func NewSizingGuard(bankroll providers.BankrollProvider) *SizingGuard {
	return &SizingGuard{bankroll: bankroll}
}

// CapCheck rejects wagers above liquidity * edgeFraction for the
// game. The check applies to the per-round wager, not the gross
// multi-round stake.
func (g *SizingGuard) CapCheck(ctx context.Context, game Game, wagerPerRound decimal.Decimal, asset string) error {
	liquidity, err := g.bankroll.LiquidityOf(ctx, asset)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrTransferFailed, "failed to read bankroll liquidity")
	}

	maxWager := liquidity.Mul(game.EdgeFraction())
	if wagerPerRound.GreaterThan(maxWager) {
		return apperrors.NewWithDebug(
			apperrors.ErrWagerAboveLimit,
			"wager exceeds bankroll cap",
			fmt.Sprintf("wager=%s max=%s asset=%s", wagerPerRound, maxWager, asset),
		)
	}
	return nil
}
