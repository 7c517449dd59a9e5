package providers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WalletProvider interface for player wallet operations
type WalletProvider interface {
	GetBalance(ctx context.Context, playerID, asset string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, playerID, asset string, amount decimal.Decimal) error
	Deposit(ctx context.Context, playerID, asset string, amount decimal.Decimal) error
}

// BankrollProvider interface for the house bankroll that backs wagers.
// AcceptSettlement and PayOut take the request handle so the bankroll
// can deduplicate on redelivery.
type BankrollProvider interface {
	LiquidityOf(ctx context.Context, asset string) (decimal.Decimal, error)
	AcceptSettlement(ctx context.Context, asset string, amount decimal.Decimal, handle string) error
	PayOut(ctx context.Context, playerID, asset string, amount decimal.Decimal, handle string) error
}

// OracleProvider interface for the randomness coordinator
type OracleProvider interface {
	// RequestValues asks the coordinator for count random values and
	// returns the request handle that identifies the later callback.
	RequestValues(ctx context.Context, count int) (string, error)
	// RequestFee returns the fee for a request, denominated in the
	// native asset.
	RequestFee(ctx context.Context, count int) (decimal.Decimal, error)
}

// BlockSource interface for reading the current block height
type BlockSource interface {
	CurrentBlock(ctx context.Context) (uint64, error)
}

// PriceFeedProvider interface for asset pricing
type PriceFeedProvider interface {
	// NativePrice returns the price of one unit of the native asset
	// denominated in the given asset.
	NativePrice(ctx context.Context, asset string) (decimal.Decimal, error)
}

// AccrueRequest represents a reward accrual for a settled play
type AccrueRequest struct {
	PlayerID string          // Player who placed the wager
	GameCode string          // Game code
	Amount   decimal.Decimal // Accrual amount in reward units
	Handle   string          // Request handle of the settled play
}

// RewardProvider interface for player reward operations
type RewardProvider interface {
	Accrue(ctx context.Context, req *AccrueRequest) error
	Claim(ctx context.Context, playerID string) (*RewardClaim, error)
	SetReferrer(ctx context.Context, playerID, referrerID string) error
	Balance(ctx context.Context, playerID string) (decimal.Decimal, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// RewardClaim represents a reward claim response
type RewardClaim struct {
	ClaimID   string          `json:"claim_id"`
	PlayerID  string          `json:"player_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// LeaderboardEntry represents one player on the reward leaderboard.
// Entries carry no ordering guarantee.
type LeaderboardEntry struct {
	PlayerID string          `json:"player_id"`
	Accrued  decimal.Decimal `json:"accrued"`
}

// EventSink interface for publishing wager lifecycle events
type EventSink interface {
	PlayStarted(ctx context.Context, event *PlayStartedEvent) error
	OutcomeSettled(ctx context.Context, event *OutcomeSettledEvent) error
	RefundIssued(ctx context.Context, event *RefundIssuedEvent) error
}

// PlayStartedEvent is emitted when a wager is admitted
type PlayStartedEvent struct {
	PlayerID      string          `json:"player_id"`
	GameCode      string          `json:"game_code"`
	Asset         string          `json:"asset"`
	Wager         decimal.Decimal `json:"wager"`
	Rounds        int             `json:"rounds"`
	StopGain      decimal.Decimal `json:"stop_gain"`
	StopLoss      decimal.Decimal `json:"stop_loss"`
	OracleFee     decimal.Decimal `json:"oracle_fee"`
	RequestHandle string          `json:"request_handle"`
	AdmittedAt    uint64          `json:"admitted_at"`
	Timestamp     time.Time       `json:"timestamp"`
}

// OutcomeSettledEvent is emitted when a pending wager settles
type OutcomeSettledEvent struct {
	PlayerID      string            `json:"player_id"`
	GameCode      string            `json:"game_code"`
	Asset         string            `json:"asset"`
	Wager         decimal.Decimal   `json:"wager"`
	TotalPayout   decimal.Decimal   `json:"total_payout"`
	RoundsPlayed  int               `json:"rounds_played"`
	Outcomes      []int             `json:"outcomes"`
	Multipliers   []int64           `json:"multipliers"`
	Payouts       []decimal.Decimal `json:"payouts"`
	RequestHandle string            `json:"request_handle"`
	Timestamp     time.Time         `json:"timestamp"`
}

// RefundIssuedEvent is emitted when a pending wager is refunded
type RefundIssuedEvent struct {
	PlayerID      string          `json:"player_id"`
	GameCode      string          `json:"game_code"`
	Asset         string          `json:"asset"`
	Amount        decimal.Decimal `json:"amount"`
	RequestHandle string          `json:"request_handle"`
	Timestamp     time.Time       `json:"timestamp"`
}
