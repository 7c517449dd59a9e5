package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrOracleError, "randomness request failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error must expose its cause")
	}
	if GetCode(err) != ErrOracleError {
		t.Errorf("expected code %d, got %d", ErrOracleError, GetCode(err))
	}
}

func TestIs(t *testing.T) {
	err := New(ErrAlreadyPending, "player already has a pending game")

	if !Is(err, ErrAlreadyPending) {
		t.Error("Is must match the error's own code")
	}
	if Is(err, ErrNoPendingGame) {
		t.Error("Is must not match a different code")
	}
	if Is(stderrors.New("plain"), ErrAlreadyPending) {
		t.Error("Is must not match a non-AppError")
	}
	if Is(nil, ErrAlreadyPending) {
		t.Error("Is must not match nil")
	}
}

func TestGetCodeFallback(t *testing.T) {
	if GetCode(stderrors.New("plain")) != ErrInternalServerError {
		t.Error("non-AppError must map to internal server error")
	}
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{ErrAlreadyPending, http.StatusConflict},
		{ErrStaleCallback, http.StatusConflict},
		{ErrRefundWindowNotElapsed, http.StatusConflict},
		{ErrInvalidRoundCount, http.StatusBadRequest},
		{ErrInvalidStopThreshold, http.StatusBadRequest},
		{ErrWagerAboveLimit, http.StatusBadRequest},
		{ErrRandomCountMismatch, http.StatusBadRequest},
		{ErrInvalidChoice, http.StatusBadRequest},
		{ErrUnauthorizedCallback, http.StatusForbidden},
		{ErrUnknownRequestHandle, http.StatusNotFound},
		{ErrNoPendingGame, http.StatusNotFound},
		{ErrGameNotFound, http.StatusNotFound},
		{ErrTransferFailed, http.StatusBadGateway},
		{ErrOracleError, http.StatusBadGateway},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrInternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatusFromCode(tt.code); got != tt.want {
			t.Errorf("code %d: expected status %d, got %d", tt.code, tt.want, got)
		}
	}
}

func TestErrorStringIncludesDebug(t *testing.T) {
	err := NewWithDebug(ErrWagerAboveLimit, "wager exceeds bankroll cap", "wager=100 max=50")
	if err.Error() == "" {
		t.Fatal("expected non-empty error string")
	}
	if err.DebugMessage != "wager=100 max=50" {
		t.Errorf("debug message not preserved: %q", err.DebugMessage)
	}
}
