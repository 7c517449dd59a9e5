package provider

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/db/redis"
	"github.com/oddsforge/wager-engine/pkg/providers"
)

const (
	accruedKey     = "rewards:accrued"
	referrerKeyFmt = "rewards:referrer:%s"
	leaderboardKey = "rewards:leaderboard"
)

// referrerShare is the fraction of each accrual credited to the
// player's referrer, when one is assigned.
var referrerShare = decimal.NewFromFloat(0.1)

// RewardProvider implements providers.RewardProvider on Redis.
// Accrual is additive, referral assignment is one-time, and the
// leaderboard is an unordered membership list.
type RewardProvider struct {
	db     *redis.Client
	logger zerolog.Logger
}

// NewRewardProvider creates a new reward provider
func NewRewardProvider(db *redis.Client, logger zerolog.Logger) *RewardProvider {
	return &RewardProvider{
		db:     db,
		logger: logger.With().Str("component", "reward_provider").Logger(),
	}
}

// Accrue credits the reward to the player, splitting a fixed share to
// the referrer when one is assigned.
func (p *RewardProvider) Accrue(ctx context.Context, req *providers.AccrueRequest) error {
	amount := req.Amount
	referrer, err := p.referrerOf(ctx, req.PlayerID)
	if err != nil {
		return err
	}
	if referrer != "" {
		cut := req.Amount.Mul(referrerShare)
		amount = req.Amount.Sub(cut)
		if err := p.credit(ctx, referrer, cut); err != nil {
			return err
		}
	}
	if err := p.credit(ctx, req.PlayerID, amount); err != nil {
		return err
	}

	p.logger.Debug().
		Str("player_id", req.PlayerID).
		Str("game_code", req.GameCode).
		Str("request_handle", req.Handle).
		Str("amount", req.Amount.String()).
		Msg("reward accrued")

	return nil
}

// credit adds to a player's accrued balance and records leaderboard
// membership on first accrual. Balances are stored as decimal strings
// so accrual arithmetic stays exact; the Watch guards against a
// concurrent accrual landing between read and write.
func (p *RewardProvider) credit(ctx context.Context, playerID string, amount decimal.Decimal) error {
	err := p.db.GetClient().Watch(ctx, func(tx *goredis.Tx) error {
		current := ""
		first := false
		val, err := tx.HGet(ctx, accruedKey, playerID).Result()
		switch {
		case err == goredis.Nil:
			first = true
		case err != nil:
			return err
		default:
			current = val
		}

		next, err := addBalance(current, amount)
		if err != nil {
			return fmt.Errorf("corrupt accrued balance for %s: %w", playerID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, accruedKey, playerID, next)
			if first {
				pipe.LPush(ctx, leaderboardKey, playerID)
			}
			return nil
		})
		return err
	}, accruedKey)
	if err != nil {
		return fmt.Errorf("failed to credit reward: %w", err)
	}
	return nil
}

// addBalance adds amount to a stored balance string. An empty string
// is a zero balance.
func addBalance(current string, amount decimal.Decimal) (string, error) {
	if current == "" {
		return amount.String(), nil
	}
	balance, err := decimal.NewFromString(current)
	if err != nil {
		return "", err
	}
	return balance.Add(amount).String(), nil
}

// Claim drains the player's accrued balance into a claim record.
func (p *RewardProvider) Claim(ctx context.Context, playerID string) (*providers.RewardClaim, error) {
	var amount decimal.Decimal

	// Watch guards against an accrual landing between read and reset.
	err := p.db.GetClient().Watch(ctx, func(tx *goredis.Tx) error {
		val, err := tx.HGet(ctx, accruedKey, playerID).Result()
		if err == goredis.Nil {
			amount = decimal.Zero
			return nil
		}
		if err != nil {
			return err
		}
		amount, err = decimal.NewFromString(val)
		if err != nil {
			return fmt.Errorf("corrupt accrued balance for %s: %w", playerID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, accruedKey, playerID, "0")
			return nil
		})
		return err
	}, accruedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to claim rewards: %w", err)
	}

	return &providers.RewardClaim{
		ClaimID:   uuid.NewString(),
		PlayerID:  playerID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetReferrer assigns a referrer once; later assignments are
// rejected.
func (p *RewardProvider) SetReferrer(ctx context.Context, playerID, referrerID string) error {
	if playerID == referrerID {
		return fmt.Errorf("player cannot refer themselves")
	}
	ok, err := p.db.SetNX(ctx, fmt.Sprintf(referrerKeyFmt, playerID), referrerID, 0)
	if err != nil {
		return fmt.Errorf("failed to set referrer: %w", err)
	}
	if !ok {
		return fmt.Errorf("referrer already assigned for %s", playerID)
	}
	return nil
}

func (p *RewardProvider) referrerOf(ctx context.Context, playerID string) (string, error) {
	val, err := p.db.Get(ctx, fmt.Sprintf(referrerKeyFmt, playerID))
	if redis.IsNil(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read referrer: %w", err)
	}
	return val, nil
}

// Balance returns the player's current accrued balance.
func (p *RewardProvider) Balance(ctx context.Context, playerID string) (decimal.Decimal, error) {
	val, err := p.db.HGet(ctx, accruedKey, playerID)
	if redis.IsNil(err) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read accrued balance: %w", err)
	}
	return decimal.NewFromString(val)
}

// Leaderboard returns up to limit players with their accrued totals.
// Entries carry no ordering guarantee.
func (p *RewardProvider) Leaderboard(ctx context.Context, limit int) ([]providers.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	playerIDs, err := p.db.LRange(ctx, leaderboardKey, 0, int64(limit)-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]providers.LeaderboardEntry, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		accrued, err := p.Balance(ctx, playerID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, providers.LeaderboardEntry{
			PlayerID: playerID,
			Accrued:  accrued,
		})
	}
	return entries, nil
}
