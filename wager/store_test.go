package wager

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "github.com/oddsforge/wager-engine/errors"
)

func storedGame(playerID, handle string) *PendingGame {
	return &PendingGame{
		PlayerID:      playerID,
		GameCode:      "testgame",
		WagerPerRound: decimal.NewFromInt(10),
		RoundCount:    2,
		RequestHandle: handle,
	}
}

func TestMemoryStorePutAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, storedGame("p1", "h1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	byPlayer, err := store.GetByPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByPlayer failed: %v", err)
	}
	if byPlayer == nil || byPlayer.RequestHandle != "h1" {
		t.Errorf("expected game with handle h1, got %+v", byPlayer)
	}

	byHandle, err := store.GetByHandle(ctx, "h1")
	if err != nil {
		t.Fatalf("GetByHandle failed: %v", err)
	}
	if byHandle == nil || byHandle.PlayerID != "p1" {
		t.Errorf("expected game for p1, got %+v", byHandle)
	}
}

func TestMemoryStoreMissingIsNil(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	game, err := store.GetByPlayer(ctx, "nobody")
	if err != nil || game != nil {
		t.Errorf("expected nil, nil for unknown player, got %+v, %v", game, err)
	}

	game, err = store.GetByHandle(ctx, "no-handle")
	if err != nil || game != nil {
		t.Errorf("expected nil, nil for unknown handle, got %+v, %v", game, err)
	}
}

func TestMemoryStoreRejectsDuplicatePlayer(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, storedGame("p1", "h1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	err := store.Put(ctx, storedGame("p1", "h2"))
	if apperrors.GetCode(err) != apperrors.ErrAlreadyPending {
		t.Fatalf("expected AlreadyPending, got %v", err)
	}
}

func TestMemoryStoreDeleteClearsBothKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, storedGame("p1", "h1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "p1", "h1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if game, _ := store.GetByPlayer(ctx, "p1"); game != nil {
		t.Error("player key not cleared")
	}
	if game, _ := store.GetByHandle(ctx, "h1"); game != nil {
		t.Error("handle key not cleared")
	}

	// Cleared slot accepts a new game.
	if err := store.Put(ctx, storedGame("p1", "h2")); err != nil {
		t.Errorf("Put after delete failed: %v", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, storedGame("p1", "h1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _ := store.GetByPlayer(ctx, "p1")
	got.RoundCount = 99

	again, _ := store.GetByPlayer(ctx, "p1")
	if again.RoundCount != 2 {
		t.Error("mutating a returned game must not affect the store")
	}
}
