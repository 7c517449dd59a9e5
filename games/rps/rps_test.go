package rps

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/wager"
)

func TestValidateChoice(t *testing.T) {
	g := New()

	for _, pick := range []int{Rock, Paper, Scissors} {
		if err := g.ValidateChoice(wager.Choice{Pick: pick}); err != nil {
			t.Errorf("pick %d must be valid: %v", pick, err)
		}
	}
	for _, pick := range []int{-1, 3} {
		if err := g.ValidateChoice(wager.Choice{Pick: pick}); err == nil {
			t.Errorf("pick %d must be rejected", pick)
		}
	}
}

func TestPlay(t *testing.T) {
	g := New()

	tests := []struct {
		name           string
		pick           int
		draw           uint64
		wantOutcome    int
		wantMultiplier int64
	}{
		{"rock beats scissors", Rock, 2, Scissors, 198},
		{"rock draws rock", Rock, 0, Rock, 99},
		{"rock loses to paper", Rock, 1, Paper, 0},
		{"paper beats rock", Paper, 0, Rock, 198},
		{"paper draws paper", Paper, 1, Paper, 99},
		{"paper loses to scissors", Paper, 2, Scissors, 0},
		{"scissors beats paper", Scissors, 1, Paper, 198},
		{"scissors draws scissors", Scissors, 2, Scissors, 99},
		{"scissors loses to rock", Scissors, 0, Rock, 0},
		{"draw wraps the outcome space", Rock, 3, Rock, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, multiplier := g.Play(wager.Choice{Pick: tt.pick}, tt.draw)
			if outcome != tt.wantOutcome {
				t.Errorf("outcome: want %d, got %d", tt.wantOutcome, outcome)
			}
			if multiplier != tt.wantMultiplier {
				t.Errorf("multiplier: want %d, got %d", tt.wantMultiplier, multiplier)
			}
		})
	}
}

func TestRewardFor(t *testing.T) {
	g := New()

	settlement := &wager.Settlement{TotalPayout: decimal.NewFromInt(500)}
	if got := g.RewardFor(settlement); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected reward 5 on a 500 payout, got %s", got)
	}

	zero := &wager.Settlement{TotalPayout: decimal.Zero}
	if got := g.RewardFor(zero); !got.IsZero() {
		t.Errorf("expected no reward on a zero payout, got %s", got)
	}
}
