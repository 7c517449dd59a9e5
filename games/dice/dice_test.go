package dice

import (
	"testing"

	"github.com/oddsforge/wager-engine/wager"
)

func TestValidateChoice(t *testing.T) {
	tests := []struct {
		name    string
		choice  wager.Choice
		wantErr bool
	}{
		{"under 50", wager.Choice{Threshold: 50}, false},
		{"under 1 single outcome", wager.Choice{Threshold: 1}, false},
		{"under 99 widest range", wager.Choice{Threshold: 99}, false},
		{"under 0 no winning outcome", wager.Choice{Threshold: 0}, true},
		{"over 98 single outcome", wager.Choice{Threshold: 98, Over: true}, false},
		{"over 0 widest range", wager.Choice{Threshold: 0, Over: true}, false},
		{"over 99 no winning outcome", wager.Choice{Threshold: 99, Over: true}, true},
		{"negative threshold", wager.Choice{Threshold: -1}, true},
		{"threshold past outcome space", wager.Choice{Threshold: 100}, true},
	}

	g := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateChoice(tt.choice)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChoice(%+v) error = %v, wantErr %v", tt.choice, err, tt.wantErr)
			}
		})
	}
}

func TestPlay(t *testing.T) {
	g := New()

	tests := []struct {
		name           string
		choice         wager.Choice
		draw           uint64
		wantOutcome    int
		wantMultiplier int64
	}{
		{"under 50 wins below threshold", wager.Choice{Threshold: 50}, 49, 49, 198},
		{"under 50 loses at threshold", wager.Choice{Threshold: 50}, 50, 50, 0},
		{"under 50 loses above threshold", wager.Choice{Threshold: 50}, 99, 99, 0},
		{"over 50 wins above threshold", wager.Choice{Threshold: 50, Over: true}, 51, 51, 202},
		{"over 50 loses at threshold", wager.Choice{Threshold: 50, Over: true}, 50, 50, 0},
		{"under 1 pays near max", wager.Choice{Threshold: 1}, 0, 0, 9900},
		{"over 98 pays near max", wager.Choice{Threshold: 98, Over: true}, 99, 99, 9900},
		{"under 99 pays just above even", wager.Choice{Threshold: 99}, 42, 42, 100},
		{"draw wraps the outcome space", wager.Choice{Threshold: 50}, 103, 3, 198},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, multiplier := g.Play(tt.choice, tt.draw)
			if outcome != tt.wantOutcome {
				t.Errorf("outcome: want %d, got %d", tt.wantOutcome, outcome)
			}
			if multiplier != tt.wantMultiplier {
				t.Errorf("multiplier: want %d, got %d", tt.wantMultiplier, multiplier)
			}
		})
	}
}

func TestMultiplierScalesWithRange(t *testing.T) {
	g := New()

	// Narrower winning ranges must never pay less than wider ones.
	var prev int64
	for threshold := 99; threshold >= 1; threshold-- {
		_, multiplier := g.Play(wager.Choice{Threshold: threshold}, 0)
		if multiplier == 0 {
			t.Fatalf("threshold %d: outcome 0 must win an under bet", threshold)
		}
		if multiplier < prev {
			t.Fatalf("threshold %d: multiplier %d below wider range's %d", threshold, multiplier, prev)
		}
		prev = multiplier
	}
}
