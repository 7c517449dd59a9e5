package wager

import (
	"time"

	"github.com/shopspring/decimal"
)

// Choice carries the immutable player decision for games that need one.
// Pick is used by coinflip (0/1) and rock-paper-scissors (0/1/2);
// Threshold and Over are used by the dice over/under game.
type Choice struct {
	Pick      int  `json:"pick"`
	Threshold int  `json:"threshold,omitempty"`
	Over      bool `json:"over,omitempty"`
}

// PendingGame is the single outstanding wager a player may hold.
// It is created at admission and destroyed exactly once, by either
// fulfillment or refund.
type PendingGame struct {
	PlayerID        string          `json:"player_id"`
	GameCode        string          `json:"game_code"`
	WagerPerRound   decimal.Decimal `json:"wager_per_round"`
	RoundCount      int             `json:"round_count"`
	StopGain        decimal.Decimal `json:"stop_gain"`
	StopLoss        decimal.Decimal `json:"stop_loss"`
	RequestHandle   string          `json:"request_handle"`
	SettlementAsset string          `json:"settlement_asset"`
	AdmittedAtBlock uint64          `json:"admitted_at_block"`
	Choice          Choice          `json:"choice"`
	OracleFee       decimal.Decimal `json:"oracle_fee"`
	CreatedAt       time.Time       `json:"created_at"`
}

// GrossStake returns the total stake collected at admission.
func (g *PendingGame) GrossStake() decimal.Decimal {
	return g.WagerPerRound.Mul(decimal.NewFromInt(int64(g.RoundCount)))
}

// RoundResult records one settled round.
type RoundResult struct {
	Outcome    int             `json:"outcome"`
	Multiplier int64           `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
}

// Settlement is the full result of settling a pending game against
// the delivered random values.
type Settlement struct {
	Rounds       []RoundResult   `json:"rounds"`
	RoundsPlayed int             `json:"rounds_played"`
	TotalPayout  decimal.Decimal `json:"total_payout"`
	Profit       decimal.Decimal `json:"profit"`
}
