package provider

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/oddsforge/wager-engine/db/redis"
	apperrors "github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/wager"
)

const (
	pendingPlayerKeyFmt = "pending:player:%s"
	pendingHandleKeyFmt = "pending:handle:%s"
)

// PendingStore implements wager.PendingStore on Redis. The player
// record and the handle reverse-lookup are written and cleared in one
// transaction so neither key is ever visible alone.
type PendingStore struct {
	db     *redis.Client
	logger zerolog.Logger
}

// NewPendingStore creates a Redis-backed pending store
func NewPendingStore(db *redis.Client, logger zerolog.Logger) *PendingStore {
	return &PendingStore{
		db:     db,
		logger: logger.With().Str("component", "pending_store").Logger(),
	}
}

// Put stores the game under both keys.
func (s *PendingStore) Put(ctx context.Context, game *wager.PendingGame) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal pending game: %w", err)
	}

	playerKey := fmt.Sprintf(pendingPlayerKeyFmt, game.PlayerID)
	handleKey := fmt.Sprintf(pendingHandleKeyFmt, game.RequestHandle)

	ok, err := s.db.SetNX(ctx, playerKey, data, 0)
	if err != nil {
		return fmt.Errorf("failed to store pending game: %w", err)
	}
	if !ok {
		return apperrors.New(apperrors.ErrAlreadyPending, "player already has a pending game")
	}

	if err := s.db.Set(ctx, handleKey, game.PlayerID, 0); err != nil {
		// Roll the forward key back so the record is not half stored.
		if delErr := s.db.Delete(ctx, playerKey); delErr != nil {
			s.logger.Error().Err(delErr).
				Str("player_id", game.PlayerID).
				Msg("failed to roll back pending record")
		}
		return fmt.Errorf("failed to store handle lookup: %w", err)
	}
	return nil
}

// GetByPlayer returns the player's pending game, or nil.
func (s *PendingStore) GetByPlayer(ctx context.Context, playerID string) (*wager.PendingGame, error) {
	var game wager.PendingGame
	err := s.db.GetJSON(ctx, fmt.Sprintf(pendingPlayerKeyFmt, playerID), &game)
	if redis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetByHandle resolves a handle to its pending game, or nil.
func (s *PendingStore) GetByHandle(ctx context.Context, handle string) (*wager.PendingGame, error) {
	playerID, err := s.db.Get(ctx, fmt.Sprintf(pendingHandleKeyFmt, handle))
	if redis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetByPlayer(ctx, playerID)
}

// Delete removes the game under both keys atomically.
func (s *PendingStore) Delete(ctx context.Context, playerID, handle string) error {
	_, err := s.db.GetClient().TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, fmt.Sprintf(pendingPlayerKeyFmt, playerID))
		pipe.Del(ctx, fmt.Sprintf(pendingHandleKeyFmt, handle))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear pending game: %w", err)
	}
	return nil
}
