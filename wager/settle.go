package wager

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// settle runs the deterministic multi-round settlement over the
// delivered draws. Stop thresholds are inclusive and evaluated before
// each round; rounds skipped by an early stop are refunded at stake
// since their randomness was never consumed.
func settle(game Game, pending *PendingGame, draws []uint64) *Settlement {
	runningProfit := decimal.Zero
	totalPayout := decimal.Zero
	rounds := make([]RoundResult, 0, pending.RoundCount)

	for i := 0; i < pending.RoundCount; i++ {
		if runningProfit.GreaterThanOrEqual(pending.StopGain) {
			break
		}
		if runningProfit.LessThanOrEqual(pending.StopLoss.Neg()) {
			break
		}

		outcome, multiplier := game.Play(pending.Choice, draws[i])
		roundPayout := pending.WagerPerRound.Mul(decimal.NewFromInt(multiplier)).Div(hundred)

		totalPayout = totalPayout.Add(roundPayout)
		runningProfit = runningProfit.Add(roundPayout).Sub(pending.WagerPerRound)
		rounds = append(rounds, RoundResult{
			Outcome:    outcome,
			Multiplier: multiplier,
			Payout:     roundPayout,
		})
	}

	roundsPlayed := len(rounds)
	unplayed := int64(pending.RoundCount - roundsPlayed)
	totalPayout = totalPayout.Add(pending.WagerPerRound.Mul(decimal.NewFromInt(unplayed)))

	return &Settlement{
		Rounds:       rounds,
		RoundsPlayed: roundsPlayed,
		TotalPayout:  totalPayout,
		Profit:       totalPayout.Sub(pending.GrossStake()),
	}
}
