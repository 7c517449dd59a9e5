package wager

import (
	"testing"

	"github.com/shopspring/decimal"
)

func pendingFor(wagerPerRound int64, rounds int, stopGain, stopLoss int64, pick int) *PendingGame {
	return &PendingGame{
		PlayerID:      testPlayer,
		GameCode:      "testgame",
		WagerPerRound: decimal.NewFromInt(wagerPerRound),
		RoundCount:    rounds,
		StopGain:      decimal.NewFromInt(stopGain),
		StopLoss:      decimal.NewFromInt(stopLoss),
		Choice:        Choice{Pick: pick},
	}
}

func TestSettleAllRounds(t *testing.T) {
	tests := []struct {
		name        string
		draws       []uint64
		wantPayout  int64
		wantProfit  int64
		wantPlayed  int
		wagerPerRnd int64
	}{
		{
			name:        "all wins",
			draws:       []uint64{1, 1, 1},
			wantPayout:  594,
			wantProfit:  294,
			wantPlayed:  3,
			wagerPerRnd: 100,
		},
		{
			name:        "all losses",
			draws:       []uint64{0, 0, 0},
			wantPayout:  0,
			wantProfit:  -300,
			wantPlayed:  3,
			wagerPerRnd: 100,
		},
		{
			name:        "mixed",
			draws:       []uint64{1, 0, 1},
			wantPayout:  396,
			wantProfit:  96,
			wantPlayed:  3,
			wagerPerRnd: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := pendingFor(tt.wagerPerRnd, len(tt.draws), 1_000_000, 1_000_000, 1)
			s := settle(testGame{}, pending, tt.draws)

			if s.RoundsPlayed != tt.wantPlayed {
				t.Errorf("rounds played: want %d, got %d", tt.wantPlayed, s.RoundsPlayed)
			}
			if !s.TotalPayout.Equal(decimal.NewFromInt(tt.wantPayout)) {
				t.Errorf("total payout: want %d, got %s", tt.wantPayout, s.TotalPayout)
			}
			if !s.Profit.Equal(decimal.NewFromInt(tt.wantProfit)) {
				t.Errorf("profit: want %d, got %s", tt.wantProfit, s.Profit)
			}
		})
	}
}

func TestSettleStopGainInclusive(t *testing.T) {
	// A win nets +98; a stop gain of exactly 98 halts before round 2.
	pending := pendingFor(100, 4, 98, 1_000_000, 1)
	s := settle(testGame{}, pending, []uint64{1, 1, 1, 1})

	if s.RoundsPlayed != 1 {
		t.Fatalf("expected 1 round played, got %d", s.RoundsPlayed)
	}
	// 198 won plus three unplayed stakes refunded.
	if !s.TotalPayout.Equal(decimal.NewFromInt(498)) {
		t.Errorf("expected total payout 498, got %s", s.TotalPayout)
	}
}

func TestSettleStopGainJustAbove(t *testing.T) {
	// A stop gain of 99 is not met by a +98 round, so play continues.
	pending := pendingFor(100, 2, 99, 1_000_000, 1)
	s := settle(testGame{}, pending, []uint64{1, 1})

	if s.RoundsPlayed != 2 {
		t.Fatalf("expected 2 rounds played, got %d", s.RoundsPlayed)
	}
}

func TestSettleStopLossInclusive(t *testing.T) {
	// A loss nets -100; a stop loss of 100 halts before round 2.
	pending := pendingFor(100, 3, 1_000_000, 100, 1)
	s := settle(testGame{}, pending, []uint64{0, 1, 1})

	if s.RoundsPlayed != 1 {
		t.Fatalf("expected 1 round played, got %d", s.RoundsPlayed)
	}
	if !s.TotalPayout.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected two unplayed stakes refunded, got %s", s.TotalPayout)
	}
}

func TestSettleConservation(t *testing.T) {
	// Round payouts plus unplayed-stake refunds always equal the
	// total payout, and profit is total payout minus gross stake.
	draws := [][]uint64{
		{1, 1, 1, 1, 1},
		{0, 0, 0, 0, 0},
		{1, 0, 1, 0, 1},
		{0, 1, 1, 1, 0},
	}

	for _, d := range draws {
		pending := pendingFor(75, len(d), 120, 150, 1)
		s := settle(testGame{}, pending, d)

		sum := decimal.Zero
		for _, round := range s.Rounds {
			sum = sum.Add(round.Payout)
		}
		unplayed := decimal.NewFromInt(int64(pending.RoundCount - s.RoundsPlayed)).Mul(pending.WagerPerRound)
		if !s.TotalPayout.Equal(sum.Add(unplayed)) {
			t.Errorf("draws %v: payout %s != round sum %s + refund %s", d, s.TotalPayout, sum, unplayed)
		}
		if !s.Profit.Equal(s.TotalPayout.Sub(pending.GrossStake())) {
			t.Errorf("draws %v: profit %s inconsistent with payout %s", d, s.Profit, s.TotalPayout)
		}
	}
}
