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

// PriceFeedProvider implements providers.PriceFeedProvider. It is
// used only to size the oracle fee in the native asset.
type PriceFeedProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewPriceFeedProvider creates a new price feed provider
func NewPriceFeedProvider(cfg *config.Config, logger zerolog.Logger) *PriceFeedProvider {
	return &PriceFeedProvider{
		client: httpclient.New(httpclient.Config{
			BaseURL: cfg.ExternalServices.PriceFeedService.BaseURL,
			Timeout: cfg.ExternalServices.PriceFeedService.Timeout,
			Logger:  logger,
		}),
		logger: logger.With().Str("component", "pricefeed_provider").Logger(),
	}
}

// NativePrice returns the price of one native unit in the given asset
func (p *PriceFeedProvider) NativePrice(ctx context.Context, asset string) (decimal.Decimal, error) {
	var result struct {
		Data struct {
			Price decimal.Decimal `json:"price"`
		} `json:"data"`
	}

	path := fmt.Sprintf("/prices/native?asset=%s", url.QueryEscape(asset))
	if err := p.client.GetJSON(ctx, path, nil, &result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read native price: %w", err)
	}
	if !result.Data.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("price feed returned non-positive price for %s", asset)
	}
	return result.Data.Price, nil
}
