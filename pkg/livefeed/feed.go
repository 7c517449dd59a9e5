// Package livefeed buffers settled wager outcomes and streams them to
// connected observers. It is transport-agnostic: the HTTP layer wires
// SSE and WebSocket routes on top of Listen().
package livefeed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/oddsforge/wager-engine/pkg/providers"
)

// DefaultFlushInterval is the default interval for broadcasting
// buffered updates.
const DefaultFlushInterval = 2 * time.Second

// Update is one settled outcome as shown to feed observers.
type Update struct {
	PlayerID     string          `json:"player_id"`
	GameCode     string          `json:"game_code"`
	Asset        string          `json:"asset"`
	Wager        decimal.Decimal `json:"wager"`
	TotalPayout  decimal.Decimal `json:"total_payout"`
	RoundsPlayed int             `json:"rounds_played"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Config configures the feed.
type Config struct {
	// FlushInterval controls how often buffered updates are flushed
	// to listeners.
	FlushInterval time.Duration
	Logger        zerolog.Logger
}

// Feed buffers the latest settlement per player and flushes batches
// to listeners on a ticker. It doubles as an event sink so the
// engine's fan-out can feed it directly.
type Feed struct {
	mu       sync.Mutex
	buffer   map[string]Update
	broad    *Broadcaster
	logger   zerolog.Logger
	interval time.Duration
	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewFeed creates and starts a feed.
func NewFeed(cfg Config) *Feed {
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	f := &Feed{
		buffer:   make(map[string]Update),
		broad:    NewBroadcaster(128),
		logger:   cfg.Logger.With().Str("component", "livefeed").Logger(),
		interval: interval,
		stopChan: make(chan struct{}),
	}
	f.ticker = time.NewTicker(interval)
	go f.loop()
	return f
}

// PlayStarted is a no-op; the feed only streams settlements.
func (f *Feed) PlayStarted(ctx context.Context, event *providers.PlayStartedEvent) error {
	return nil
}

// OutcomeSettled buffers a settlement for the next flush. A newer
// settlement for the same player replaces the buffered one.
func (f *Feed) OutcomeSettled(ctx context.Context, event *providers.OutcomeSettledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer[event.PlayerID] = Update{
		PlayerID:     event.PlayerID,
		GameCode:     event.GameCode,
		Asset:        event.Asset,
		Wager:        event.Wager,
		TotalPayout:  event.TotalPayout,
		RoundsPlayed: event.RoundsPlayed,
		Timestamp:    event.Timestamp,
	}
	return nil
}

// RefundIssued is a no-op; refunds are not part of the public feed.
func (f *Feed) RefundIssued(ctx context.Context, event *providers.RefundIssuedEvent) error {
	return nil
}

// Listen returns a channel to receive flushed updates plus a cancel
// function.
func (f *Feed) Listen(ctx context.Context) (<-chan Update, context.CancelFunc) {
	return f.broad.Listen(ctx)
}

// Stop stops the flush loop.
func (f *Feed) Stop() {
	f.stopOnce.Do(func() {
		f.ticker.Stop()
		close(f.stopChan)
	})
}

func (f *Feed) loop() {
	for {
		select {
		case <-f.stopChan:
			return
		case <-f.ticker.C:
			f.flush()
		}
	}
}

// flush broadcasts buffered updates and clears the buffer.
func (f *Feed) flush() {
	f.mu.Lock()
	if len(f.buffer) == 0 {
		f.mu.Unlock()
		return
	}
	updates := lo.Values(f.buffer)
	f.buffer = make(map[string]Update)
	f.mu.Unlock()

	for _, u := range updates {
		f.broad.Send(u)
	}
	if f.logger.GetLevel() <= zerolog.DebugLevel {
		f.logger.Debug().Int("count", len(updates)).Msg("flushed feed updates")
	}
}
