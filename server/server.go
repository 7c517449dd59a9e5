package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/auth"
	"github.com/oddsforge/wager-engine/config"
	"github.com/oddsforge/wager-engine/middleware"
	"github.com/oddsforge/wager-engine/pkg/livefeed"
	"github.com/oddsforge/wager-engine/pkg/providers"
	"github.com/oddsforge/wager-engine/wager"
)

// App represents the wager service application
type App struct {
	engine        *gin.Engine
	config        *config.Config
	logger        zerolog.Logger
	wagerEngine   *wager.Engine
	registry      *wager.Registry
	feed          *livefeed.Feed
	rewards       providers.RewardProvider
	httpServer    *http.Server
	onShutdown    []func()
	gameHandler   *GameHandler
	oracleHandler *OracleHandler
	rewardHandler *RewardHandler
	feedHandler   *FeedHandler
}

// Options holds server configuration options
type Options struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Engine   *wager.Engine
	Registry *wager.Registry
	Feed     *livefeed.Feed
	Rewards  providers.RewardProvider
}

// Router is an alias for gin.Engine for convenience
type Router = gin.Engine

// New creates a new wager service application
func New(opts Options) *App {
	// Configure decimal.Decimal to marshal as JSON number instead of string
	// WARNING: This may cause precision loss for decimals with many digits when
	// unmarshaled by clients using IEEE 754 double-precision (e.g., JavaScript)
	decimal.MarshalJSONWithoutQuotes = true

	// Set Gin mode
	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		engine:      gin.New(),
		config:      opts.Config,
		logger:      opts.Logger,
		wagerEngine: opts.Engine,
		registry:    opts.Registry,
		feed:        opts.Feed,
		rewards:     opts.Rewards,
	}

	app.gameHandler = NewGameHandler(app)
	app.oracleHandler = NewOracleHandler(app)
	app.rewardHandler = NewRewardHandler(app)
	if app.feed != nil {
		app.feedHandler = NewFeedHandler(app, app.feed)
	}

	return app
}

// UseCommonMiddlewares adds common middlewares to the application
func (a *App) UseCommonMiddlewares() {
	// Recovery middleware (must be first)
	a.engine.Use(middleware.Recovery(a.logger))

	// Trace ID middleware
	a.engine.Use(middleware.TraceID())

	// Logging middleware
	a.engine.Use(middleware.Logging(a.logger))

	// CORS middleware if enabled
	if a.config.Server.EnableCORS {
		a.engine.Use(middleware.CORS())
	}
}

// UseMiddleware adds a custom middleware
func (a *App) UseMiddleware(m gin.HandlerFunc) {
	a.engine.Use(m)
}

// RegisterHealthCheck adds health check endpoints
func (a *App) RegisterHealthCheck() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/api/health", a.healthCheck)
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   a.config.Environment,
		"games":     a.registry.Codes(),
	})
}

// RegisterGameRoutes registers the wager lifecycle routes for every
// installed game.
//
// Routes registered:
//   - POST /api/games/{game_code}/start    -> GameHandler.Start
//   - POST /api/games/{game_code}/refund   -> GameHandler.Refund
//   - GET  /api/games/{game_code}/state    -> GameHandler.GetState
//   - GET  /api/games/{game_code}/paytable -> GameHandler.GetPaytable
func (a *App) RegisterGameRoutes() {
	games := a.engine.Group("/api/games")
	games.Use(auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
	{
		games.POST("/:game_code/start", a.gameHandler.Start)
		games.POST("/:game_code/refund", a.gameHandler.Refund)
		games.GET("/:game_code/state", a.gameHandler.GetState)
		games.GET("/:game_code/paytable", a.gameHandler.GetPaytable)
	}

	a.logger.Info().
		Strs("games", a.registry.Codes()).
		Msg("Game routes registered: /api/games/:game_code")
}

// RegisterOracleRoutes registers the fulfillment callback boundary.
// The route authenticates with the coordinator callback token, not
// player JWTs.
func (a *App) RegisterOracleRoutes() {
	if a.config.Oracle.CallbackToken == "" {
		a.logger.Error().Msg("No callback token configured; fulfillments will be rejected until one is set")
	}
	a.engine.POST("/api/oracle/fulfill", a.oracleHandler.Fulfill)
	a.logger.Info().Msg("Oracle callback route registered: /api/oracle/fulfill")
}

// RegisterRewardRoutes registers reward bookkeeping routes.
//
// Routes registered:
//   - GET  /api/rewards/balance     -> RewardHandler.Balance
//   - POST /api/rewards/claim       -> RewardHandler.Claim
//   - POST /api/rewards/referrer    -> RewardHandler.SetReferrer
//   - GET  /api/rewards/leaderboard -> RewardHandler.Leaderboard
func (a *App) RegisterRewardRoutes() {
	if a.rewards == nil {
		a.logger.Warn().Msg("No reward provider configured, skipping reward routes")
		return
	}

	rewards := a.engine.Group("/api/rewards")
	rewards.Use(auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
	{
		rewards.GET("/balance", a.rewardHandler.Balance)
		rewards.POST("/claim", a.rewardHandler.Claim)
		rewards.POST("/referrer", a.rewardHandler.SetReferrer)
		rewards.GET("/leaderboard", a.rewardHandler.Leaderboard)
	}

	a.logger.Info().Msg("Reward routes registered: /api/rewards")
}

// RegisterFeedRoutes registers the settled-outcome stream (SSE and
// WebSocket).
func (a *App) RegisterFeedRoutes() {
	if a.feedHandler == nil {
		a.logger.Warn().Msg("No live feed configured, skipping feed routes")
		return
	}

	feed := a.engine.Group("/api/feed")
	feed.Use(auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
	{
		feed.GET("/updates", a.feedHandler.StreamUpdates)
		feed.GET("/updates/ws", a.feedHandler.StreamUpdatesWebSocket)
	}

	a.logger.Info().Msg("Feed routes registered: /api/feed/updates")
}

// Engine returns the settlement engine
func (a *App) Engine() *wager.Engine {
	return a.wagerEngine
}

// Registry returns the game registry
func (a *App) Registry() *wager.Registry {
	return a.registry
}

// Rewards returns the reward provider (may be nil)
func (a *App) Rewards() providers.RewardProvider {
	return a.rewards
}

// Router returns the Gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// Group creates a route group
func (a *App) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return a.engine.Group(path, handlers...)
}

// AuthGroup creates a route group with JWT authentication
func (a *App) AuthGroup(path string) *gin.RouterGroup {
	return a.engine.Group(path, auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
}

// RegisterRoutes registers custom routes using a callback
func (a *App) RegisterRoutes(fn func(*gin.Engine)) {
	fn(a.engine)
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

// Run starts the HTTP server
func (a *App) Run() error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Strs("games", a.registry.Codes()).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	return a.waitForShutdown()
}

// RunWithContext starts the HTTP server with context
func (a *App) RunWithContext(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Strs("games", a.registry.Codes()).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Call registered shutdown handlers
	for _, fn := range a.onShutdown {
		fn()
	}

	if a.feed != nil {
		a.feed.Stop()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	a.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// GameHandler returns the built-in game handler
func (a *App) GameHandler() *GameHandler {
	return a.gameHandler
}
