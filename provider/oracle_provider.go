package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/config"
	"github.com/oddsforge/wager-engine/httpclient"
)

// OracleProvider implements providers.OracleProvider and
// providers.BlockSource against the randomness coordinator. The
// coordinator answers value requests asynchronously: the handle
// returned here correlates the later fulfillment callback.
type OracleProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewOracleProvider creates a new oracle provider
func NewOracleProvider(cfg *config.Config, logger zerolog.Logger) *OracleProvider {
	return &OracleProvider{
		client: httpclient.New(httpclient.Config{
			BaseURL: cfg.Oracle.BaseURL,
			Timeout: cfg.Oracle.Timeout,
			Logger:  logger,
		}),
		logger: logger.With().Str("component", "oracle_provider").Logger(),
	}
}

// RequestValues submits a randomness request and returns its handle
func (p *OracleProvider) RequestValues(ctx context.Context, count int) (string, error) {
	var result struct {
		Data struct {
			RequestHandle string `json:"request_handle"`
		} `json:"data"`
	}

	body := map[string]interface{}{"count": count}
	if err := p.client.PostJSON(ctx, "/oracle/requests", body, nil, &result); err != nil {
		return "", fmt.Errorf("failed to request random values: %w", err)
	}
	if result.Data.RequestHandle == "" {
		return "", fmt.Errorf("coordinator returned empty request handle")
	}

	p.logger.Debug().
		Str("request_handle", result.Data.RequestHandle).
		Int("count", count).
		Msg("randomness requested")

	return result.Data.RequestHandle, nil
}

// RequestFee quotes the fee for a request, denominated in USD
func (p *OracleProvider) RequestFee(ctx context.Context, count int) (decimal.Decimal, error) {
	var result struct {
		Data struct {
			Fee decimal.Decimal `json:"fee"`
		} `json:"data"`
	}

	path := fmt.Sprintf("/oracle/fee?count=%d", count)
	if err := p.client.GetJSON(ctx, path, nil, &result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to quote request fee: %w", err)
	}
	return result.Data.Fee, nil
}

// CurrentBlock returns the coordinator's current block height
func (p *OracleProvider) CurrentBlock(ctx context.Context) (uint64, error) {
	var result struct {
		Data struct {
			Block uint64 `json:"block"`
		} `json:"data"`
	}

	if err := p.client.GetJSON(ctx, "/oracle/block", nil, &result); err != nil {
		return 0, fmt.Errorf("failed to read current block: %w", err)
	}
	return result.Data.Block, nil
}
