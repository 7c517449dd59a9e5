package server

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/errors"
	"github.com/oddsforge/wager-engine/wager"
)

// callbackTokenHeader carries the shared secret the oracle coordinator
// presents on every callback.
const callbackTokenHeader = "X-Callback-Token"

// OracleHandler receives randomness fulfillment callbacks from the
// oracle coordinator and forwards them into the settlement engine.
type OracleHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewOracleHandler creates a new oracle callback handler
func NewOracleHandler(app *App) *OracleHandler {
	return &OracleHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "oracle").Logger(),
	}
}

// FulfillRequest is the randomness callback body. The coordinator
// identity is never taken from the body; it is the identity the
// callback token authenticates.
type FulfillRequest struct {
	RequestHandle string   `json:"request_handle" binding:"required"`
	Values        []uint64 `json:"values" binding:"required"`
}

// RoundResultResponse describes one settled round
type RoundResultResponse struct {
	Outcome    int             `json:"outcome"`
	Multiplier int64           `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
}

// FulfillResponse describes a completed settlement
type FulfillResponse struct {
	RequestHandle string                `json:"request_handle"`
	RoundsPlayed  int                   `json:"rounds_played"`
	TotalPayout   decimal.Decimal       `json:"total_payout"`
	Profit        decimal.Decimal       `json:"profit"`
	Rounds        []RoundResultResponse `json:"rounds"`
}

// Fulfill godoc
// @Summary      Deliver randomness
// @Description  Settles a pending wager with the random values provided by the oracle coordinator
// @Tags         oracle
// @Accept       json
// @Produce      json
// @Param        X-Callback-Token  header    string          true  "Coordinator callback token"
// @Param        request           body      FulfillRequest  true  "Fulfillment payload"
// @Success      200  {object}  BaseResponse{data=FulfillResponse}
// @Failure      400  {object}  BaseResponse
// @Failure      403  {object}  BaseResponse
// @Failure      404  {object}  BaseResponse
// @Failure      409  {object}  BaseResponse
// @Failure      503  {object}  BaseResponse
// @Router       /oracle/fulfill [post]
func (h *OracleHandler) Fulfill(c *gin.Context) {
	ctx := c.Request.Context()

	// Fail closed: without a configured token there is no way to
	// authenticate the coordinator, so no callback may settle.
	expected := h.app.config.Oracle.CallbackToken
	if expected == "" {
		h.logger.Error().Msg("Rejecting callback: no callback token configured")
		ServiceUnavailable(c, errors.New(errors.ErrConfigError, "Callback authentication not configured"))
		return
	}

	token := c.GetHeader(callbackTokenHeader)
	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		h.logger.Warn().Msg("Callback with invalid token")
		Forbidden(c, errors.New(errors.ErrUnauthorizedCallback, "Invalid callback token"))
		return
	}

	var req FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Invalid fulfillment body")
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "Invalid request body"))
		return
	}

	// The token authenticates the configured coordinator; that is the
	// identity the engine sees, regardless of what the body claims.
	settlement, err := h.app.wagerEngine.Fulfill(ctx, h.app.config.Oracle.CoordinatorID, req.RequestHandle, req.Values)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("request_handle", req.RequestHandle).
			Msg("Fulfillment rejected")
		HandleAppError(c, err)
		return
	}

	h.logger.Info().
		Str("request_handle", req.RequestHandle).
		Int("rounds_played", settlement.RoundsPlayed).
		Str("total_payout", settlement.TotalPayout.String()).
		Msg("Settlement complete")

	OK(c, settlementToResponse(req.RequestHandle, settlement))
}

func settlementToResponse(handle string, s *wager.Settlement) FulfillResponse {
	rounds := make([]RoundResultResponse, len(s.Rounds))
	for i, round := range s.Rounds {
		rounds[i] = RoundResultResponse{
			Outcome:    round.Outcome,
			Multiplier: round.Multiplier,
			Payout:     round.Payout,
		}
	}
	return FulfillResponse{
		RequestHandle: handle,
		RoundsPlayed:  s.RoundsPlayed,
		TotalPayout:   s.TotalPayout,
		Profit:        s.Profit,
		Rounds:        rounds,
	}
}
