package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/auth"
	"github.com/oddsforge/wager-engine/errors"
)

// RewardHandler exposes the reward bookkeeping: accrued balances,
// claims, referrer assignment and the leaderboard.
type RewardHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(app *App) *RewardHandler {
	return &RewardHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "reward").Logger(),
	}
}

// BalanceResponse holds a player's accrued reward balance
type BalanceResponse struct {
	PlayerID string          `json:"player_id"`
	Accrued  decimal.Decimal `json:"accrued"`
}

// Balance godoc
// @Summary      Get reward balance
// @Description  Returns the player's accrued unclaimed reward balance
// @Tags         rewards
// @Produce      json
// @Success      200  {object}  BaseResponse{data=BalanceResponse}
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /rewards/balance [get]
func (h *RewardHandler) Balance(c *gin.Context) {
	ctx := c.Request.Context()

	playerID, ok := auth.GetPlayerID(c)
	if !ok {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	accrued, err := h.app.rewards.Balance(ctx, playerID)
	if err != nil {
		h.logger.Error().Err(err).Str("player_id", playerID).Msg("Failed to read reward balance")
		HandleAppError(c, err)
		return
	}

	OK(c, BalanceResponse{PlayerID: playerID, Accrued: accrued})
}

// Claim godoc
// @Summary      Claim accrued rewards
// @Description  Drains the player's accrued reward balance into a claim
// @Tags         rewards
// @Produce      json
// @Success      200  {object}  BaseResponse{data=RewardClaim}
// @Failure      401  {object}  BaseResponse
// @Failure      502  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /rewards/claim [post]
func (h *RewardHandler) Claim(c *gin.Context) {
	ctx := c.Request.Context()

	playerID, ok := auth.GetPlayerID(c)
	if !ok {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	claim, err := h.app.rewards.Claim(ctx, playerID)
	if err != nil {
		h.logger.Error().Err(err).Str("player_id", playerID).Msg("Claim failed")
		HandleAppError(c, err)
		return
	}

	h.logger.Info().
		Str("player_id", playerID).
		Str("claim_id", claim.ClaimID).
		Str("amount", claim.Amount.String()).
		Msg("Rewards claimed")

	OK(c, claim)
}

// SetReferrerRequest assigns the referrer for the calling player
type SetReferrerRequest struct {
	ReferrerID string `json:"referrer_id" binding:"required"`
}

// SetReferrer godoc
// @Summary      Set referrer
// @Description  Assigns a one-time referrer who receives a share of the player's future reward accruals
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Param        request  body  SetReferrerRequest  true  "Referrer assignment"
// @Success      204
// @Failure      400  {object}  BaseResponse
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /rewards/referrer [post]
func (h *RewardHandler) SetReferrer(c *gin.Context) {
	ctx := c.Request.Context()

	playerID, ok := auth.GetPlayerID(c)
	if !ok {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	var req SetReferrerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "Invalid request body"))
		return
	}

	if err := h.app.rewards.SetReferrer(ctx, playerID, req.ReferrerID); err != nil {
		h.logger.Warn().Err(err).
			Str("player_id", playerID).
			Str("referrer_id", req.ReferrerID).
			Msg("Referrer assignment rejected")
		HandleAppError(c, err)
		return
	}

	NoContent(c)
}

// LeaderboardResponse wraps the reward leaderboard entries
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// Leaderboard godoc
// @Summary      Get reward leaderboard
// @Description  Returns players with accrued rewards; entries carry no ordering guarantee
// @Tags         rewards
// @Produce      json
// @Param        limit  query  int  false  "Maximum entries to return"
// @Success      200  {object}  BaseResponse{data=LeaderboardResponse}
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /rewards/leaderboard [get]
func (h *RewardHandler) Leaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			BadRequest(c, errors.New(errors.ErrInvalidRequest, "Invalid limit"))
			return
		}
		limit = parsed
	}

	entries, err := h.app.rewards.Leaderboard(ctx, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read leaderboard")
		HandleAppError(c, err)
		return
	}

	OK(c, LeaderboardResponse{Entries: entries})
}
