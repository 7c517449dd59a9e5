package wire

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/oddsforge/wager-engine/config"
	"github.com/oddsforge/wager-engine/db/redis"
	"github.com/oddsforge/wager-engine/events/kafka"
	"github.com/oddsforge/wager-engine/games/coinflip"
	"github.com/oddsforge/wager-engine/games/dice"
	"github.com/oddsforge/wager-engine/games/rps"
	"github.com/oddsforge/wager-engine/games/slots"
	"github.com/oddsforge/wager-engine/logging"
	"github.com/oddsforge/wager-engine/pkg/livefeed"
	"github.com/oddsforge/wager-engine/pkg/providers"
	"github.com/oddsforge/wager-engine/provider"
	"github.com/oddsforge/wager-engine/server"
	"github.com/oddsforge/wager-engine/wager"
)

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRedisClient provides a Redis client
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	return redis.New(cfg.Redis)
}

// ProvideWalletProvider provides the wallet service client
func ProvideWalletProvider(cfg *config.Config, logger zerolog.Logger) providers.WalletProvider {
	return provider.NewWalletProvider(cfg, logger)
}

// ProvideBankrollProvider provides the house bankroll client
func ProvideBankrollProvider(cfg *config.Config, logger zerolog.Logger) providers.BankrollProvider {
	return provider.NewBankrollProvider(cfg, logger)
}

// ProvideOracleProvider provides the randomness coordinator client
func ProvideOracleProvider(cfg *config.Config, logger zerolog.Logger) *provider.OracleProvider {
	return provider.NewOracleProvider(cfg, logger)
}

// ProvideBlockSource provides the block height source. The oracle
// client doubles as the block source.
func ProvideBlockSource(oracle *provider.OracleProvider) providers.BlockSource {
	return oracle
}

// ProvidePriceFeedProvider provides the native asset price feed client
func ProvidePriceFeedProvider(cfg *config.Config, logger zerolog.Logger) providers.PriceFeedProvider {
	return provider.NewPriceFeedProvider(cfg, logger)
}

// ProvidePendingStore provides the Redis-backed pending game store
func ProvidePendingStore(db *redis.Client, logger zerolog.Logger) wager.PendingStore {
	return provider.NewPendingStore(db, logger)
}

// ProvideRewardProvider provides the Redis-backed reward ledger
func ProvideRewardProvider(db *redis.Client, logger zerolog.Logger) providers.RewardProvider {
	return provider.NewRewardProvider(db, logger)
}

// ProvideRegistry provides the game registry with all installed games.
// The slot paytable is loaded from the configured paytable file.
func ProvideRegistry(cfg *config.Config) (*wager.Registry, error) {
	registry := wager.NewRegistry()
	registry.Register(coinflip.New())
	registry.Register(rps.New())
	registry.Register(dice.New())

	if cfg.Engine.PaytableFile != "" {
		table, err := wager.LoadPaytable(cfg.Engine.PaytableFile)
		if err != nil {
			return nil, err
		}
		registry.Register(slots.New(table))
	}

	return registry, nil
}

// ProvideProducer provides the Kafka producer. Returns nil when no
// brokers are configured.
func ProvideProducer(cfg *config.Config, logger zerolog.Logger) (*kafka.Producer, error) {
	return kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Logger:  logger,
	})
}

// ProvideFeed provides the live settlement feed
func ProvideFeed(logger zerolog.Logger) *livefeed.Feed {
	return livefeed.NewFeed(livefeed.Config{Logger: logger})
}

// ProvideEventSink provides the engine's event sink: Kafka topics plus
// the live feed, fanned out.
func ProvideEventSink(cfg *config.Config, producer *kafka.Producer, feed *livefeed.Feed) providers.EventSink {
	var sinks []providers.EventSink
	if producer != nil {
		sinks = append(sinks, kafka.NewSink(producer, cfg.Kafka.Topics))
	}
	if feed != nil {
		sinks = append(sinks, feed)
	}
	return providers.NewFanOutSink(sinks...)
}

// ProvideEngineOptions provides settlement engine options
func ProvideEngineOptions(cfg *config.Config) wager.Options {
	return wager.Options{
		MaxRounds:          cfg.Engine.MaxRounds,
		RefundWindowBlocks: cfg.Engine.RefundWindowBlocks,
		GraceBlocks:        cfg.Engine.GraceBlocks,
		NativeAsset:        cfg.Engine.NativeAsset,
		CoordinatorID:      cfg.Oracle.CoordinatorID,
	}
}

// ProvideEngine provides the settlement engine
func ProvideEngine(
	opts wager.Options,
	registry *wager.Registry,
	store wager.PendingStore,
	wallet providers.WalletProvider,
	bankroll providers.BankrollProvider,
	oracle *provider.OracleProvider,
	blocks providers.BlockSource,
	prices providers.PriceFeedProvider,
	rewards providers.RewardProvider,
	events providers.EventSink,
	logger zerolog.Logger,
) *wager.Engine {
	guard := wager.NewSizingGuard(bankroll)
	return wager.NewEngine(opts, registry, store, guard,
		wallet, bankroll, oracle, blocks, prices, rewards, events, logger)
}

// ProvideServerOptions provides server options
func ProvideServerOptions(
	cfg *config.Config,
	logger zerolog.Logger,
	engine *wager.Engine,
	registry *wager.Registry,
	feed *livefeed.Feed,
	rewards providers.RewardProvider,
) server.Options {
	return server.Options{
		Config:   cfg,
		Logger:   logger,
		Engine:   engine,
		Registry: registry,
		Feed:     feed,
		Rewards:  rewards,
	}
}

// ProvideApp provides the main application
func ProvideApp(opts server.Options) *server.App {
	return server.New(opts)
}

// ConfigSet is the wire provider set for configuration
var ConfigSet = wire.NewSet(
	config.Load,
)

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// RedisSet is the wire provider set for Redis
var RedisSet = wire.NewSet(
	ProvideRedisClient,
)

// ProviderSet is the wire provider set for external service clients
var ProviderSet = wire.NewSet(
	ProvideWalletProvider,
	ProvideBankrollProvider,
	ProvideOracleProvider,
	ProvideBlockSource,
	ProvidePriceFeedProvider,
	ProvidePendingStore,
	ProvideRewardProvider,
)

// EngineSet is the wire provider set for the settlement engine
var EngineSet = wire.NewSet(
	ProvideRegistry,
	ProvideProducer,
	ProvideFeed,
	ProvideEventSink,
	ProvideEngineOptions,
	ProvideEngine,
)

// ServerSet is the wire provider set for the HTTP server
var ServerSet = wire.NewSet(
	ProvideServerOptions,
	ProvideApp,
)

// DefaultSet is the default wire provider set including all common providers
var DefaultSet = wire.NewSet(
	LoggingSet,
	ServerSet,
)

// FullSet includes every provider needed to stand up the service
var FullSet = wire.NewSet(
	DefaultSet,
	RedisSet,
	ProviderSet,
	EngineSet,
)
