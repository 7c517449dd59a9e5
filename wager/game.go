package wager

import (
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	apperrors "github.com/oddsforge/wager-engine/errors"
)

// Game maps one random draw (plus the player choice, where the game
// needs one) to an outcome and its payout multiplier. Implementations
// must be pure: same inputs, same outputs, no side effects.
type Game interface {
	// Code returns the short identifier used in routes and events.
	Code() string

	// OutcomeSpace returns the modulus applied to each raw draw.
	OutcomeSpace() int

	// MaxMultiplier returns the largest multiplier the game can pay,
	// in hundredths (198 means 1.98x). Used by the sizing guard.
	MaxMultiplier() int64

	// EdgeFraction returns the fraction of bankroll liquidity a
	// single round's wager may not exceed.
	EdgeFraction() decimal.Decimal

	// ValidateChoice rejects choices the game cannot play.
	ValidateChoice(choice Choice) error

	// Play resolves one round: outcome is draw modulo OutcomeSpace,
	// multiplier is in hundredths.
	Play(choice Choice, draw uint64) (outcome int, multiplier int64)
}

// RewardAccruer is implemented by games that mint secondary rewards
// on settlement. The returned amount is in reward units; zero means
// nothing accrues for this settlement.
type RewardAccruer interface {
	RewardFor(settlement *Settlement) decimal.Decimal
}

// PayoutTabler is implemented by games whose outcome→multiplier
// mapping is configured data rather than a formula.
type PayoutTabler interface {
	PayoutTable() map[int]int64
}

// Registry holds the installed games keyed by code.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

// NewRegistry creates an empty game registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Game)}
}

// Register installs a game. Registering the same code twice replaces
// the earlier entry.
func (r *Registry) Register(game Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.Code()] = game
}

// Get returns the game for code or a GameNotFound error.
func (r *Registry) Get(code string) (Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[code]
	if !ok {
		return nil, apperrors.New(apperrors.ErrGameNotFound, "unknown game code: "+code)
	}
	return game, nil
}

// Codes returns the registered game codes.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.games)
}
