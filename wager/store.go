package wager

import (
	"context"
	"sync"

	apperrors "github.com/oddsforge/wager-engine/errors"
)

// PendingStore persists pending games under two keys: the owning
// player and the randomness request handle. Put and Delete keep both
// keys consistent; a record is never visible under only one of them.
type PendingStore interface {
	// Put stores the game under both keys. Fails if the player
	// already has a pending game.
	Put(ctx context.Context, game *PendingGame) error

	// GetByPlayer returns the player's pending game, or nil when
	// none exists.
	GetByPlayer(ctx context.Context, playerID string) (*PendingGame, error)

	// GetByHandle resolves a request handle to its pending game, or
	// nil when the handle is unknown.
	GetByHandle(ctx context.Context, handle string) (*PendingGame, error)

	// Delete removes the game under both keys atomically.
	Delete(ctx context.Context, playerID, handle string) error
}

// MemoryStore is the in-process PendingStore used by tests and
// single-node deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	byPlayer map[string]*PendingGame
	byHandle map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byPlayer: make(map[string]*PendingGame),
		byHandle: make(map[string]string),
	}
}

// Put stores the game under both keys.
func (s *MemoryStore) Put(ctx context.Context, game *PendingGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byPlayer[game.PlayerID]; exists {
		return apperrors.New(apperrors.ErrAlreadyPending, "player already has a pending game")
	}
	copied := *game
	s.byPlayer[game.PlayerID] = &copied
	s.byHandle[game.RequestHandle] = game.PlayerID
	return nil
}

// GetByPlayer returns the player's pending game, or nil.
func (s *MemoryStore) GetByPlayer(ctx context.Context, playerID string) (*PendingGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.byPlayer[playerID]
	if !ok {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

// GetByHandle resolves a handle to its pending game, or nil.
func (s *MemoryStore) GetByHandle(ctx context.Context, handle string) (*PendingGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.byHandle[handle]
	if !ok {
		return nil, nil
	}
	game, ok := s.byPlayer[playerID]
	if !ok {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

// Delete removes the game under both keys.
func (s *MemoryStore) Delete(ctx context.Context, playerID, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byPlayer, playerID)
	delete(s.byHandle, handle)
	return nil
}
