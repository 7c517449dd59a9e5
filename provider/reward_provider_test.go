package provider

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddBalanceExactArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		current string
		amount  string
		want    string
	}{
		{"empty balance", "", "1.23", "1.23"},
		{"integer add", "100", "25", "125"},
		// 0.1 + 0.2 drifts to 0.30000000000000004 in binary floats.
		{"fractional add stays exact", "0.1", "0.2", "0.3"},
		{"small accrual on large balance", "1000000000000.01", "0.01", "1000000000000.02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("bad amount: %v", err)
			}
			got, err := addBalance(tt.current, amount)
			if err != nil {
				t.Fatalf("addBalance failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("addBalance(%q, %s) = %q, want %q", tt.current, tt.amount, got, tt.want)
			}
		})
	}
}

func TestAddBalanceRepeatedAccruals(t *testing.T) {
	// A hundred 0.01 accruals must sum to exactly 1.
	balance := ""
	cent := decimal.NewFromFloat(0.01)
	for i := 0; i < 100; i++ {
		next, err := addBalance(balance, cent)
		if err != nil {
			t.Fatalf("accrual %d failed: %v", i, err)
		}
		balance = next
	}
	if balance != "1" {
		t.Errorf("expected balance 1, got %q", balance)
	}
}

func TestAddBalanceRejectsCorruptValue(t *testing.T) {
	if _, err := addBalance("not-a-number", decimal.NewFromInt(1)); err == nil {
		t.Fatal("expected error for corrupt stored balance")
	}
}
