package wager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	apperrors "github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/pkg/providers"
)

// Options configures the settlement engine.
type Options struct {
	// MaxRounds bounds the number of rounds a single wager may span.
	MaxRounds int
	// RefundWindowBlocks is the number of blocks a callback may lag
	// admission before it is rejected as stale.
	RefundWindowBlocks uint64
	// GraceBlocks is the margin past the refund window before the
	// player may reclaim the stake.
	GraceBlocks uint64
	// NativeAsset is the asset the oracle fee is charged in.
	NativeAsset string
	// CoordinatorID is the only identity allowed to deliver
	// fulfillment callbacks.
	CoordinatorID string
}

// Engine drives the wager lifecycle: admission, deferred settlement
// against oracle randomness, and the refund safety net. StartGame and
// Fulfill are independent entry points correlated only by the
// persisted request handle.
type Engine struct {
	opts     Options
	registry *Registry
	store    PendingStore
	guard    *SizingGuard
	wallet   providers.WalletProvider
	bankroll providers.BankrollProvider
	oracle   providers.OracleProvider
	blocks   providers.BlockSource
	prices   providers.PriceFeedProvider
	rewards  providers.RewardProvider
	events   providers.EventSink
	logger   zerolog.Logger

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewEngine creates a settlement engine. rewards and events may be
// nil; reward accrual and event emission are then skipped.
func NewEngine(
	opts Options,
	registry *Registry,
	store PendingStore,
	guard *SizingGuard,
	wallet providers.WalletProvider,
	bankroll providers.BankrollProvider,
	oracle providers.OracleProvider,
	blocks providers.BlockSource,
	prices providers.PriceFeedProvider,
	rewards providers.RewardProvider,
	events providers.EventSink,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		opts:     opts,
		registry: registry,
		store:    store,
		guard:    guard,
		wallet:   wallet,
		bankroll: bankroll,
		oracle:   oracle,
		blocks:   blocks,
		prices:   prices,
		rewards:  rewards,
		events:   events,
		logger:   logger.With().Str("component", "wager-engine").Logger(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockPlayer serializes state-changing calls for a single player.
// Calls for different players proceed concurrently.
func (e *Engine) lockPlayer(playerID string) func() {
	e.lockMu.Lock()
	mu, ok := e.locks[playerID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[playerID] = mu
	}
	e.lockMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// StartGameParams carries the admission request.
type StartGameParams struct {
	PlayerID      string
	GameCode      string
	WagerPerRound decimal.Decimal
	RoundCount    int
	StopGain      decimal.Decimal
	StopLoss      decimal.Decimal
	Asset         string
	Choice        Choice
}

// StartGame admits a wager: validates parameters and sizing, collects
// the gross stake and the oracle fee, requests randomness, and
// persists the pending game. All admission failures are atomic; on
// any downstream failure the collected funds are returned.
func (e *Engine) StartGame(ctx context.Context, params StartGameParams) (*PendingGame, error) {
	game, err := e.registry.Get(params.GameCode)
	if err != nil {
		return nil, err
	}

	if params.RoundCount < 1 || params.RoundCount > e.opts.MaxRounds {
		return nil, apperrors.NewWithDebug(apperrors.ErrInvalidRoundCount,
			"round count out of bounds",
			fmt.Sprintf("rounds=%d max=%d", params.RoundCount, e.opts.MaxRounds))
	}
	if !params.WagerPerRound.IsPositive() {
		return nil, apperrors.New(apperrors.ErrInvalidRequest, "wager must be positive")
	}
	// Thresholds are inclusive stop conditions checked before each
	// round, so a zero threshold would stop settlement before round
	// one ever plays.
	if !params.StopGain.IsPositive() || !params.StopLoss.IsPositive() {
		return nil, apperrors.New(apperrors.ErrInvalidStopThreshold, "stop thresholds must be positive")
	}
	if err := game.ValidateChoice(params.Choice); err != nil {
		return nil, err
	}

	unlock := e.lockPlayer(params.PlayerID)
	defer unlock()

	existing, err := e.store.GetByPlayer(ctx, params.PlayerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to read pending state")
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.ErrAlreadyPending, "player already has a pending game")
	}

	if err := e.guard.CapCheck(ctx, game, params.WagerPerRound, params.Asset); err != nil {
		return nil, err
	}

	gross := params.WagerPerRound.Mul(decimal.NewFromInt(int64(params.RoundCount)))
	if err := e.wallet.Withdraw(ctx, params.PlayerID, params.Asset, gross); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInsufficientBalance, "failed to collect stake")
	}

	fee, err := e.chargeOracleFee(ctx, params.PlayerID, params.RoundCount)
	if err != nil {
		e.compensate(ctx, params.PlayerID, params.Asset, gross, decimal.Zero)
		return nil, err
	}

	handle, err := e.oracle.RequestValues(ctx, params.RoundCount)
	if err != nil {
		e.compensate(ctx, params.PlayerID, params.Asset, gross, fee)
		return nil, apperrors.Wrap(err, apperrors.ErrOracleError, "randomness request failed")
	}

	block, err := e.blocks.CurrentBlock(ctx)
	if err != nil {
		e.compensate(ctx, params.PlayerID, params.Asset, gross, fee)
		return nil, apperrors.Wrap(err, apperrors.ErrOracleError, "failed to read current block")
	}

	pending := &PendingGame{
		PlayerID:        params.PlayerID,
		GameCode:        params.GameCode,
		WagerPerRound:   params.WagerPerRound,
		RoundCount:      params.RoundCount,
		StopGain:        params.StopGain,
		StopLoss:        params.StopLoss,
		RequestHandle:   handle,
		SettlementAsset: params.Asset,
		AdmittedAtBlock: block,
		Choice:          params.Choice,
		OracleFee:       fee,
		CreatedAt:       time.Now().UTC(),
	}

	if err := e.store.Put(ctx, pending); err != nil {
		e.compensate(ctx, params.PlayerID, params.Asset, gross, fee)
		if apperrors.Is(err, apperrors.ErrAlreadyPending) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to persist pending game")
	}

	e.emitPlayStarted(ctx, pending)

	e.logger.Info().
		Str("player_id", pending.PlayerID).
		Str("game_code", pending.GameCode).
		Str("request_handle", pending.RequestHandle).
		Str("wager", pending.WagerPerRound.String()).
		Int("rounds", pending.RoundCount).
		Uint64("admitted_at", pending.AdmittedAtBlock).
		Msg("wager admitted")

	return pending, nil
}

// chargeOracleFee withdraws the randomness fee in the native asset.
// The fee quote is converted through the price feed.
func (e *Engine) chargeOracleFee(ctx context.Context, playerID string, count int) (decimal.Decimal, error) {
	fee, err := e.oracle.RequestFee(ctx, count)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(err, apperrors.ErrOracleError, "failed to quote oracle fee")
	}
	if fee.IsZero() {
		return decimal.Zero, nil
	}

	price, err := e.prices.NativePrice(ctx, "USD")
	if err != nil {
		return decimal.Zero, apperrors.Wrap(err, apperrors.ErrOracleError, "failed to read native price")
	}
	if !price.IsPositive() {
		return decimal.Zero, apperrors.New(apperrors.ErrOracleError, "non-positive native price")
	}

	nativeFee := fee.Div(price)
	if err := e.wallet.Withdraw(ctx, playerID, e.opts.NativeAsset, nativeFee); err != nil {
		return decimal.Zero, apperrors.Wrap(err, apperrors.ErrInsufficientBalance, "failed to collect oracle fee")
	}
	return nativeFee, nil
}

// compensate returns collected funds after a failed admission step.
// Failures here are logged, not surfaced; the admission error wins.
func (e *Engine) compensate(ctx context.Context, playerID, asset string, gross, fee decimal.Decimal) {
	if gross.IsPositive() {
		if err := e.wallet.Deposit(ctx, playerID, asset, gross); err != nil {
			e.logger.Error().Err(err).
				Str("player_id", playerID).
				Str("amount", gross.String()).
				Msg("failed to return stake after aborted admission")
		}
	}
	if fee.IsPositive() {
		if err := e.wallet.Deposit(ctx, playerID, e.opts.NativeAsset, fee); err != nil {
			e.logger.Error().Err(err).
				Str("player_id", playerID).
				Str("amount", fee.String()).
				Msg("failed to return oracle fee after aborted admission")
		}
	}
}

// Fulfill settles the pending game identified by handle against the
// delivered random values. Only the configured oracle coordinator may
// call it. Any transfer failure leaves the pending game intact so the
// callback can be redelivered or the refund path can take over.
func (e *Engine) Fulfill(ctx context.Context, callerID, handle string, values []uint64) (*Settlement, error) {
	if callerID != e.opts.CoordinatorID {
		return nil, apperrors.New(apperrors.ErrUnauthorizedCallback, "caller is not the oracle coordinator")
	}

	probe, err := e.store.GetByHandle(ctx, handle)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to resolve request handle")
	}
	if probe == nil {
		return nil, apperrors.New(apperrors.ErrUnknownRequestHandle, "no pending game for request handle")
	}

	unlock := e.lockPlayer(probe.PlayerID)
	defer unlock()

	// Re-read under the player lock; the probe may have settled or
	// refunded while we waited.
	pending, err := e.store.GetByHandle(ctx, handle)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to resolve request handle")
	}
	if pending == nil {
		return nil, apperrors.New(apperrors.ErrUnknownRequestHandle, "no pending game for request handle")
	}

	if len(values) != pending.RoundCount {
		return nil, apperrors.NewWithDebug(apperrors.ErrRandomCountMismatch,
			"random value count does not match round count",
			fmt.Sprintf("got=%d want=%d", len(values), pending.RoundCount))
	}

	block, err := e.blocks.CurrentBlock(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrOracleError, "failed to read current block")
	}
	if block > pending.AdmittedAtBlock+e.opts.RefundWindowBlocks {
		return nil, apperrors.NewWithDebug(apperrors.ErrStaleCallback,
			"callback arrived after the refund window",
			fmt.Sprintf("current=%d admitted=%d window=%d", block, pending.AdmittedAtBlock, e.opts.RefundWindowBlocks))
	}

	game, err := e.registry.Get(pending.GameCode)
	if err != nil {
		return nil, err
	}

	settlement := settle(game, pending, values)
	gross := pending.GrossStake()

	if err := e.bankroll.AcceptSettlement(ctx, pending.SettlementAsset, gross, handle); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransferFailed, "failed to forward stake to bankroll")
	}
	if settlement.TotalPayout.IsPositive() {
		if err := e.bankroll.PayOut(ctx, pending.PlayerID, pending.SettlementAsset, settlement.TotalPayout, handle); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrTransferFailed, "failed to pay out settlement")
		}
	}

	e.accrueReward(ctx, game, pending, settlement)

	if err := e.store.Delete(ctx, pending.PlayerID, handle); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to clear pending game")
	}

	e.emitOutcomeSettled(ctx, pending, settlement)

	e.logger.Info().
		Str("player_id", pending.PlayerID).
		Str("game_code", pending.GameCode).
		Str("request_handle", handle).
		Int("rounds_played", settlement.RoundsPlayed).
		Str("total_payout", settlement.TotalPayout.String()).
		Msg("wager settled")

	return settlement, nil
}

// accrueReward credits secondary rewards for games that mint them.
// Accrual failures never block settlement.
func (e *Engine) accrueReward(ctx context.Context, game Game, pending *PendingGame, settlement *Settlement) {
	if e.rewards == nil {
		return
	}
	accruer, ok := game.(RewardAccruer)
	if !ok {
		return
	}
	amount := accruer.RewardFor(settlement)
	if !amount.IsPositive() {
		return
	}

	err := e.rewards.Accrue(ctx, &providers.AccrueRequest{
		PlayerID: pending.PlayerID,
		GameCode: pending.GameCode,
		Amount:   amount,
		Handle:   pending.RequestHandle,
	})
	if err != nil {
		e.logger.Error().Err(err).
			Str("player_id", pending.PlayerID).
			Str("request_handle", pending.RequestHandle).
			Msg("reward accrual failed")
	}
}

// Refund returns the full gross stake of a pending game whose
// callback never arrived. Only available once the refund window plus
// the grace margin has elapsed since admission.
func (e *Engine) Refund(ctx context.Context, playerID string) (*PendingGame, error) {
	unlock := e.lockPlayer(playerID)
	defer unlock()

	pending, err := e.store.GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to read pending state")
	}
	if pending == nil {
		return nil, apperrors.New(apperrors.ErrNoPendingGame, "no pending game to refund")
	}

	block, err := e.blocks.CurrentBlock(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrOracleError, "failed to read current block")
	}
	deadline := pending.AdmittedAtBlock + e.opts.RefundWindowBlocks + e.opts.GraceBlocks
	if block <= deadline {
		return nil, apperrors.NewWithDebug(apperrors.ErrRefundWindowNotElapsed,
			"refund window has not elapsed",
			fmt.Sprintf("current=%d eligible_after=%d", block, deadline))
	}

	gross := pending.GrossStake()
	if err := e.wallet.Deposit(ctx, playerID, pending.SettlementAsset, gross); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransferFailed, "failed to return stake")
	}

	if err := e.store.Delete(ctx, playerID, pending.RequestHandle); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to clear pending game")
	}

	e.emitRefundIssued(ctx, pending, gross)

	e.logger.Info().
		Str("player_id", playerID).
		Str("request_handle", pending.RequestHandle).
		Str("amount", gross.String()).
		Msg("wager refunded")

	return pending, nil
}

// GetState returns the player's pending game, or nil when the slot is
// empty.
func (e *Engine) GetState(ctx context.Context, playerID string) (*PendingGame, error) {
	pending, err := e.store.GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateStoreError, "failed to read pending state")
	}
	return pending, nil
}

func (e *Engine) emitPlayStarted(ctx context.Context, pending *PendingGame) {
	if e.events == nil {
		return
	}
	err := e.events.PlayStarted(ctx, &providers.PlayStartedEvent{
		PlayerID:      pending.PlayerID,
		GameCode:      pending.GameCode,
		Asset:         pending.SettlementAsset,
		Wager:         pending.WagerPerRound,
		Rounds:        pending.RoundCount,
		StopGain:      pending.StopGain,
		StopLoss:      pending.StopLoss,
		OracleFee:     pending.OracleFee,
		RequestHandle: pending.RequestHandle,
		AdmittedAt:    pending.AdmittedAtBlock,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to emit play-started event")
	}
}

func (e *Engine) emitOutcomeSettled(ctx context.Context, pending *PendingGame, settlement *Settlement) {
	if e.events == nil {
		return
	}
	outcomes := make([]int, len(settlement.Rounds))
	multipliers := make([]int64, len(settlement.Rounds))
	payouts := make([]decimal.Decimal, len(settlement.Rounds))
	for i, round := range settlement.Rounds {
		outcomes[i] = round.Outcome
		multipliers[i] = round.Multiplier
		payouts[i] = round.Payout
	}

	err := e.events.OutcomeSettled(ctx, &providers.OutcomeSettledEvent{
		PlayerID:      pending.PlayerID,
		GameCode:      pending.GameCode,
		Asset:         pending.SettlementAsset,
		Wager:         pending.WagerPerRound,
		TotalPayout:   settlement.TotalPayout,
		RoundsPlayed:  settlement.RoundsPlayed,
		Outcomes:      outcomes,
		Multipliers:   multipliers,
		Payouts:       payouts,
		RequestHandle: pending.RequestHandle,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to emit outcome-settled event")
	}
}

func (e *Engine) emitRefundIssued(ctx context.Context, pending *PendingGame, amount decimal.Decimal) {
	if e.events == nil {
		return
	}
	err := e.events.RefundIssued(ctx, &providers.RefundIssuedEvent{
		PlayerID:      pending.PlayerID,
		GameCode:      pending.GameCode,
		Asset:         pending.SettlementAsset,
		Amount:        amount,
		RequestHandle: pending.RequestHandle,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to emit refund-issued event")
	}
}
