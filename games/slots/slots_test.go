package slots

import (
	"testing"

	"github.com/oddsforge/wager-engine/wager"
)

func testTable() *wager.Paytable {
	return &wager.Paytable{
		OutcomeSpace: 16,
		Multipliers: map[int]int64{
			0: 5000,
			1: 1000,
			2: 500,
			3: 200,
		},
	}
}

func TestPlay(t *testing.T) {
	g := New(testTable())

	tests := []struct {
		name           string
		draw           uint64
		wantOutcome    int
		wantMultiplier int64
	}{
		{"top outcome", 0, 0, 5000},
		{"listed outcome", 3, 3, 200},
		{"unlisted outcome pays zero", 9, 9, 0},
		{"draw wraps the outcome space", 17, 1, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, multiplier := g.Play(wager.Choice{}, tt.draw)
			if outcome != tt.wantOutcome {
				t.Errorf("outcome: want %d, got %d", tt.wantOutcome, outcome)
			}
			if multiplier != tt.wantMultiplier {
				t.Errorf("multiplier: want %d, got %d", tt.wantMultiplier, multiplier)
			}
		})
	}
}

func TestValidateChoiceAcceptsAnything(t *testing.T) {
	g := New(testTable())
	if err := g.ValidateChoice(wager.Choice{Pick: 42, Threshold: -5}); err != nil {
		t.Errorf("slots takes no choice, got %v", err)
	}
}

func TestMaxMultiplier(t *testing.T) {
	g := New(testTable())
	if got := g.MaxMultiplier(); got != 5000 {
		t.Errorf("expected 5000, got %d", got)
	}
}

func TestPayoutTableIsACopy(t *testing.T) {
	g := New(testTable())

	table := g.PayoutTable()
	table[0] = 1

	if g.MaxMultiplier() != 5000 {
		t.Error("mutating the exposed table must not affect the game")
	}
	if _, multiplier := g.Play(wager.Choice{}, 0); multiplier != 5000 {
		t.Error("mutating the exposed table must not affect payouts")
	}
}
