package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/config"
	"github.com/oddsforge/wager-engine/httpclient"
)

// BankrollProvider implements providers.BankrollProvider against the
// treasury service. Settlement calls carry the request handle so the
// treasury can deduplicate redeliveries.
type BankrollProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewBankrollProvider creates a new bankroll provider
func NewBankrollProvider(cfg *config.Config, logger zerolog.Logger) *BankrollProvider {
	return &BankrollProvider{
		client: httpclient.New(httpclient.Config{
			BaseURL: cfg.ExternalServices.BankrollService.BaseURL,
			Timeout: cfg.ExternalServices.BankrollService.Timeout,
			Logger:  logger,
		}),
		logger: logger.With().Str("component", "bankroll_provider").Logger(),
	}
}

// LiquidityOf reads the bankroll's current liquidity for an asset.
// Never cached; the sizing guard needs a fresh figure per check.
func (p *BankrollProvider) LiquidityOf(ctx context.Context, asset string) (decimal.Decimal, error) {
	var result struct {
		Data struct {
			Liquidity decimal.Decimal `json:"liquidity"`
		} `json:"data"`
	}

	path := fmt.Sprintf("/bankroll/liquidity?asset=%s", url.QueryEscape(asset))
	if err := p.client.GetJSON(ctx, path, nil, &result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read liquidity: %w", err)
	}
	return result.Data.Liquidity, nil
}

// AcceptSettlement forwards a settled gross stake to the bankroll
func (p *BankrollProvider) AcceptSettlement(ctx context.Context, asset string, amount decimal.Decimal, handle string) error {
	body := map[string]interface{}{
		"asset":          asset,
		"amount":         amount.String(),
		"request_handle": handle,
	}
	if err := p.client.PostJSON(ctx, "/bankroll/settlements", body, nil, nil); err != nil {
		return fmt.Errorf("failed to forward settlement: %w", err)
	}
	return nil
}

// PayOut transfers a settlement payout from the bankroll to a player
func (p *BankrollProvider) PayOut(ctx context.Context, playerID, asset string, amount decimal.Decimal, handle string) error {
	body := map[string]interface{}{
		"player_id":      playerID,
		"asset":          asset,
		"amount":         amount.String(),
		"request_handle": handle,
	}
	if err := p.client.PostJSON(ctx, "/bankroll/payouts", body, nil, nil); err != nil {
		return fmt.Errorf("failed to pay out: %w", err)
	}
	return nil
}
