package wager

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/oddsforge/wager-engine/errors"
)

func TestPaytableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Paytable
		wantErr bool
	}{
		{
			name: "valid",
			table: Paytable{
				OutcomeSpace: 64,
				Multipliers:  map[int]int64{0: 5000, 1: 1000, 63: 100},
			},
		},
		{
			name:    "outcome space too small",
			table:   Paytable{OutcomeSpace: 1},
			wantErr: true,
		},
		{
			name: "outcome out of range",
			table: Paytable{
				OutcomeSpace: 10,
				Multipliers:  map[int]int64{10: 100},
			},
			wantErr: true,
		},
		{
			name: "negative multiplier",
			table: Paytable{
				OutcomeSpace: 10,
				Multipliers:  map[int]int64{3: -1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaytableMaxMultiplier(t *testing.T) {
	table := Paytable{
		OutcomeSpace: 8,
		Multipliers:  map[int]int64{0: 100, 1: 9500, 2: 250},
	}
	if got := table.MaxMultiplier(); got != 9500 {
		t.Errorf("expected max 9500, got %d", got)
	}

	empty := Paytable{OutcomeSpace: 8}
	if got := empty.MaxMultiplier(); got != 0 {
		t.Errorf("expected 0 for empty table, got %d", got)
	}
}

func TestPaytableMultiplierFor(t *testing.T) {
	table := Paytable{
		OutcomeSpace: 8,
		Multipliers:  map[int]int64{2: 250},
	}
	if got := table.MultiplierFor(2); got != 250 {
		t.Errorf("expected 250, got %d", got)
	}
	if got := table.MultiplierFor(5); got != 0 {
		t.Errorf("unlisted outcome must pay zero, got %d", got)
	}
}

func TestLoadPaytable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paytable.yaml")
	content := []byte(`outcome_space: 16
multipliers:
  0: 5000
  1: 1000
  2: 500
  3: 200
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	table, err := LoadPaytable(path)
	if err != nil {
		t.Fatalf("LoadPaytable failed: %v", err)
	}
	if table.OutcomeSpace != 16 {
		t.Errorf("expected outcome space 16, got %d", table.OutcomeSpace)
	}
	if table.MultiplierFor(0) != 5000 {
		t.Errorf("expected multiplier 5000 for outcome 0, got %d", table.MultiplierFor(0))
	}
}

func TestLoadPaytableInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paytable.yaml")
	content := []byte(`outcome_space: 4
multipliers:
  9: 100
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadPaytable(path)
	if apperrors.GetCode(err) != apperrors.ErrConfigError {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadPaytableMissingFile(t *testing.T) {
	_, err := LoadPaytable(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
