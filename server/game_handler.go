package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/auth"
	"github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/wager"
)

// GameHandler handles the wager lifecycle HTTP requests
//
// Flow: HTTP Request -> gameRoutes -> GameHandler -> wager.Engine -> Game
//
// Responsibilities:
// - Extract player info from JWT token
// - Validate and bind request parameters
// - Call the settlement engine for business logic
// - Format and return HTTP responses
//
// Game-specific outcome logic lives in the Game implementations, not here.
type GameHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(app *App) *GameHandler {
	return &GameHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "game").Logger(),
	}
}

// extractPlayerID extracts the player ID from gin context
func (h *GameHandler) extractPlayerID(c *gin.Context) (string, error) {
	playerID, ok := auth.GetPlayerID(c)
	if !ok {
		return "", errors.New(errors.ErrUnauthorized, "player_id not found in context")
	}
	return playerID, nil
}

// extractAsset extracts the settlement asset from gin context
func (h *GameHandler) extractAsset(c *gin.Context) string {
	asset, ok := auth.GetAsset(c)
	if !ok {
		return "gold"
	}
	return asset
}

// StartGameRequest is the admission request body
type StartGameRequest struct {
	WagerPerRound decimal.Decimal `json:"wager_per_round" binding:"required"`
	RoundCount    int             `json:"round_count" binding:"required"`
	StopGain      decimal.Decimal `json:"stop_gain" binding:"required"`
	StopLoss      decimal.Decimal `json:"stop_loss" binding:"required"`
	Pick          int             `json:"pick"`
	Threshold     int             `json:"threshold"`
	Over          bool            `json:"over"`
}

// StartGameResponse describes an admitted wager
type StartGameResponse struct {
	GameCode        string          `json:"game_code"`
	RequestHandle   string          `json:"request_handle"`
	WagerPerRound   decimal.Decimal `json:"wager_per_round"`
	RoundCount      int             `json:"round_count"`
	GrossStake      decimal.Decimal `json:"gross_stake"`
	OracleFee       decimal.Decimal `json:"oracle_fee"`
	Asset           string          `json:"asset"`
	AdmittedAtBlock uint64          `json:"admitted_at_block"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StateResponse describes the player's pending game, if any
type StateResponse struct {
	HasPending bool               `json:"has_pending"`
	Pending    *StartGameResponse `json:"pending,omitempty"`
}

func pendingToResponse(pending *wager.PendingGame) *StartGameResponse {
	return &StartGameResponse{
		GameCode:        pending.GameCode,
		RequestHandle:   pending.RequestHandle,
		WagerPerRound:   pending.WagerPerRound,
		RoundCount:      pending.RoundCount,
		GrossStake:      pending.GrossStake(),
		OracleFee:       pending.OracleFee,
		Asset:           pending.SettlementAsset,
		AdmittedAtBlock: pending.AdmittedAtBlock,
		CreatedAt:       pending.CreatedAt,
	}
}

// Start godoc
// @Summary      Start a game
// @Description  Admits a multi-round wager: collects the stake and oracle fee and requests randomness
// @Tags         game
// @Accept       json
// @Produce      json
// @Param        game_code  path      string            true  "Game code"
// @Param        request    body      StartGameRequest  true  "Wager parameters"
// @Success      200  {object}  BaseResponse{data=StartGameResponse}
// @Failure      400  {object}  BaseResponse
// @Failure      401  {object}  BaseResponse
// @Failure      409  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /games/{game_code}/start [post]
func (h *GameHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	playerID, err := h.extractPlayerID(c)
	if err != nil {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	var req StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Invalid start request body")
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "Invalid request body"))
		return
	}

	params := wager.StartGameParams{
		PlayerID:      playerID,
		GameCode:      c.Param("game_code"),
		WagerPerRound: req.WagerPerRound,
		RoundCount:    req.RoundCount,
		StopGain:      req.StopGain,
		StopLoss:      req.StopLoss,
		Asset:         h.extractAsset(c),
		Choice: wager.Choice{
			Pick:      req.Pick,
			Threshold: req.Threshold,
			Over:      req.Over,
		},
	}

	pending, err := h.app.wagerEngine.StartGame(ctx, params)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("player_id", playerID).
			Str("game_code", params.GameCode).
			Msg("Admission rejected")
		HandleAppError(c, err)
		return
	}

	h.logger.Info().
		Str("player_id", playerID).
		Str("game_code", pending.GameCode).
		Str("request_handle", pending.RequestHandle).
		Msg("Game started")

	OK(c, pendingToResponse(pending))
}

// RefundResponse describes an issued refund
type RefundResponse struct {
	GameCode      string          `json:"game_code"`
	RequestHandle string          `json:"request_handle"`
	Amount        decimal.Decimal `json:"amount"`
	Asset         string          `json:"asset"`
}

// Refund godoc
// @Summary      Refund a stuck game
// @Description  Returns the gross stake when the randomness callback never arrived and the refund window plus grace has elapsed
// @Tags         game
// @Accept       json
// @Produce      json
// @Param        game_code  path  string  true  "Game code"
// @Success      200  {object}  BaseResponse{data=RefundResponse}
// @Failure      401  {object}  BaseResponse
// @Failure      404  {object}  BaseResponse
// @Failure      409  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /games/{game_code}/refund [post]
func (h *GameHandler) Refund(c *gin.Context) {
	ctx := c.Request.Context()

	playerID, err := h.extractPlayerID(c)
	if err != nil {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	pending, err := h.app.wagerEngine.Refund(ctx, playerID)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("player_id", playerID).
			Msg("Refund rejected")
		HandleAppError(c, err)
		return
	}

	h.logger.Info().
		Str("player_id", playerID).
		Str("request_handle", pending.RequestHandle).
		Str("amount", pending.GrossStake().String()).
		Msg("Refund issued")

	OK(c, RefundResponse{
		GameCode:      pending.GameCode,
		RequestHandle: pending.RequestHandle,
		Amount:        pending.GrossStake(),
		Asset:         pending.SettlementAsset,
	})
}

// GetState godoc
// @Summary      Get pending game state
// @Description  Returns the player's pending game, or an empty state when no wager is in flight
// @Tags         game
// @Produce      json
// @Param        game_code  path  string  true  "Game code"
// @Success      200  {object}  BaseResponse{data=StateResponse}
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /games/{game_code}/state [get]
func (h *GameHandler) GetState(c *gin.Context) {
	ctx := c.Request.Context()

	playerID, err := h.extractPlayerID(c)
	if err != nil {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	pending, err := h.app.wagerEngine.GetState(ctx, playerID)
	if err != nil {
		h.logger.Error().Err(err).Str("player_id", playerID).Msg("Failed to read state")
		HandleAppError(c, err)
		return
	}

	resp := StateResponse{HasPending: pending != nil}
	if pending != nil {
		resp.Pending = pendingToResponse(pending)
	}
	OK(c, resp)
}

// PaytableResponse describes a game's payout schedule
type PaytableResponse struct {
	GameCode      string        `json:"game_code"`
	OutcomeSpace  int           `json:"outcome_space"`
	MaxMultiplier int64         `json:"max_multiplier"`
	Multipliers   map[int]int64 `json:"multipliers,omitempty"`
}

// GetPaytable godoc
// @Summary      Get game paytable
// @Description  Returns the outcome space and payout multipliers (in hundredths) for a game
// @Tags         game
// @Produce      json
// @Param        game_code  path  string  true  "Game code"
// @Success      200  {object}  BaseResponse{data=PaytableResponse}
// @Failure      404  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /games/{game_code}/paytable [get]
func (h *GameHandler) GetPaytable(c *gin.Context) {
	game, err := h.app.registry.Get(c.Param("game_code"))
	if err != nil {
		HandleAppError(c, err)
		return
	}

	resp := PaytableResponse{
		GameCode:      game.Code(),
		OutcomeSpace:  game.OutcomeSpace(),
		MaxMultiplier: game.MaxMultiplier(),
	}
	if tabler, ok := game.(wager.PayoutTabler); ok {
		resp.Multipliers = tabler.PayoutTable()
	}
	OK(c, resp)
}
