package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oddsforge/wager-engine/auth"
	"github.com/oddsforge/wager-engine/config"
	"github.com/oddsforge/wager-engine/docs"
	"github.com/oddsforge/wager-engine/events/kafka"
	"github.com/oddsforge/wager-engine/wire"
)

var (
	configDir  string
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wagerengine",
		Short: "Wager Engine - multi-game wager settlement service",
		Long: `Wager Engine runs the wager lifecycle for the installed games:
admission with bankroll sizing, deferred settlement against oracle
randomness, and the refund safety net.

Example:
  wagerengine serve --config-dir ./config
  wagerengine token --player alice --asset gold`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the fulfillment consumer",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&configDir, "config-dir", "./config", "Directory holding config.<env>.yaml")
	serveCmd.Flags().StringVar(&configFile, "config", "", "Explicit config file (overrides --config-dir)")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a development JWT",
		RunE:  runToken,
	}
	tokenCmd.Flags().StringVar(&configDir, "config-dir", "./config", "Directory holding config.<env>.yaml")
	tokenCmd.Flags().StringVar(&configFile, "config", "", "Explicit config file (overrides --config-dir)")
	tokenCmd.Flags().String("player", "", "Player ID (required)")
	tokenCmd.Flags().String("username", "", "Username (defaults to player ID)")
	tokenCmd.Flags().String("asset", "gold", "Settlement asset")
	_ = tokenCmd.MarkFlagRequired("player")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadByEnv(configDir)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := wire.ProvideLogger(cfg)

	redisClient, err := wire.ProvideRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	walletProvider := wire.ProvideWalletProvider(cfg, logger)
	bankrollProvider := wire.ProvideBankrollProvider(cfg, logger)
	oracleProvider := wire.ProvideOracleProvider(cfg, logger)
	blockSource := wire.ProvideBlockSource(oracleProvider)
	priceFeed := wire.ProvidePriceFeedProvider(cfg, logger)
	pendingStore := wire.ProvidePendingStore(redisClient, logger)
	rewardProvider := wire.ProvideRewardProvider(redisClient, logger)

	registry, err := wire.ProvideRegistry(cfg)
	if err != nil {
		return fmt.Errorf("build game registry: %w", err)
	}

	producer, err := wire.ProvideProducer(cfg, logger)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}

	feed := wire.ProvideFeed(logger)
	eventSink := wire.ProvideEventSink(cfg, producer, feed)

	engine := wire.ProvideEngine(
		wire.ProvideEngineOptions(cfg),
		registry,
		pendingStore,
		walletProvider,
		bankrollProvider,
		oracleProvider,
		blockSource,
		priceFeed,
		rewardProvider,
		eventSink,
		logger,
	)

	app := wire.ProvideApp(wire.ProvideServerOptions(cfg, logger, engine, registry, feed, rewardProvider))
	app.UseCommonMiddlewares()
	app.RegisterHealthCheck()
	app.RegisterGameRoutes()
	app.RegisterOracleRoutes()
	app.RegisterRewardRoutes()
	app.RegisterFeedRoutes()
	app.RegisterSwagger(func(host string) { docs.SwaggerInfo.Host = host })

	// Fulfillments may also arrive over Kafka when the coordinator
	// prefers the broker to HTTP callbacks.
	if len(cfg.Kafka.Brokers) > 0 {
		topic := cfg.Kafka.Topics["fulfillments"]
		if topic == "" {
			topic = kafka.TopicFulfillments
		}
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         topic,
			ConsumerGroup: cfg.Kafka.ConsumerGroup,
			Logger:        logger,
		}, func(ctx context.Context, msg *kafka.FulfillmentMessage) error {
			_, err := engine.Fulfill(ctx, msg.CoordinatorID, msg.RequestHandle, msg.Values)
			return err
		})
		if err := consumer.Start(); err != nil {
			return fmt.Errorf("start fulfillment consumer: %w", err)
		}
		app.OnShutdown(func() {
			if err := consumer.Stop(); err != nil {
				logger.Error().Err(err).Msg("Failed to stop fulfillment consumer")
			}
		})
	}

	if producer != nil {
		app.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close kafka producer")
			}
		})
	}
	app.OnShutdown(func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close redis client")
		}
	})

	return app.Run()
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	playerID, _ := cmd.Flags().GetString("player")
	username, _ := cmd.Flags().GetString("username")
	asset, _ := cmd.Flags().GetString("asset")
	if username == "" {
		username = playerID
	}

	expiration := cfg.JWT.Expiration
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}

	token, err := auth.GenerateTokenWithAsset(cfg.JWT.Secret, playerID, username, asset, expiration)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	fmt.Println(token)
	return nil
}
