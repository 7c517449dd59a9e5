package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/oddsforge/wager-engine/pkg/livefeed"
)

const (
	EventTypeConnected = "connected"
	EventTypeUpdated   = "updated"
	EventTypeHeartbeat = "heartbeat"
)

// FeedHandler bridges livefeed.Feed to HTTP routes (SSE + WebSocket).
type FeedHandler struct {
	feed            *livefeed.Feed
	app             *App
	logger          zerolog.Logger
	heartbeatPeriod time.Duration
	upgrader        websocket.Upgrader
}

// NewFeedHandler creates a feed handler.
func NewFeedHandler(app *App, feed *livefeed.Feed) *FeedHandler {
	return &FeedHandler{
		feed:            feed,
		app:             app,
		logger:          app.logger.With().Str("handler", "feed").Logger(),
		heartbeatPeriod: 30 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// FeedResponse is one SSE/WebSocket frame.
type FeedResponse struct {
	Type      string            `json:"type"`
	Timestamp int64             `json:"timestamp"`
	Updates   []livefeed.Update `json:"updates,omitempty"`
}

type feedStreamConfig struct {
	gameCodes []string
	wantsGame func(string) bool
	ctx       context.Context
}

// StreamUpdates opens SSE connection and streams settled outcomes.
// Route: GET /api/feed/updates?game_code=dice
func (h *FeedHandler) StreamUpdates(c *gin.Context) {
	config, err := h.prepareStreamConfig(c)
	if err != nil {
		return
	}

	// Setup SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.WriteHeader(http.StatusOK)

	sender := &sseSender{writer: c.Writer}
	h.streamUpdates(config, sender)
}

// StreamUpdatesWebSocket opens WebSocket connection and streams
// settled outcomes.
// Route: GET /api/feed/updates/ws?game_code=dice
func (h *FeedHandler) StreamUpdatesWebSocket(c *gin.Context) {
	config, err := h.prepareStreamConfig(c)
	if err != nil {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close() //nolint:errcheck

	writeDeadline := 10 * time.Second
	conn.SetWriteDeadline(time.Now().Add(writeDeadline)) //nolint:errcheck

	done := make(chan struct{})

	// Detect connection close
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute)) //nolint:errcheck
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket connection closed unexpectedly")
			} else {
				h.logger.Debug().Err(err).Msg("WebSocket closed normally")
			}
		}
	}()

	// Send ping to keep connection alive
	pingTicker := time.NewTicker(30 * time.Second)
	go func() {
		defer pingTicker.Stop()
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				deadline := time.Now().Add(5 * time.Second)
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
					h.logger.Debug().Err(err).Msg("Failed to send ping")
					return
				}
			}
		}
	}()

	sender := &wsSender{
		conn:          conn,
		done:          done,
		logger:        h.logger,
		writeDeadline: writeDeadline,
	}
	h.streamUpdates(config, sender)
}

// prepareStreamConfig extracts and validates stream configuration.
// Repeating the game_code query parameter narrows the stream to those
// games; no parameter means every game.
func (h *FeedHandler) prepareStreamConfig(c *gin.Context) (*feedStreamConfig, error) {
	gameCodes := c.QueryArray("game_code")
	for _, code := range gameCodes {
		if _, err := h.app.registry.Get(code); err != nil {
			ErrorWithMessage(c, http.StatusNotFound, "unknown game code: "+code)
			return nil, err
		}
	}

	wantsGame := func(code string) bool {
		return len(gameCodes) == 0 || lo.Contains(gameCodes, code)
	}

	return &feedStreamConfig{
		gameCodes: gameCodes,
		wantsGame: wantsGame,
		ctx:       c.Request.Context(),
	}, nil
}

// streamUpdates handles the common streaming logic for both SSE and
// WebSocket.
func (h *FeedHandler) streamUpdates(config *feedStreamConfig, sender messageSender) {
	updates, cancel := h.feed.Listen(config.ctx)
	defer cancel()

	// Send connected event
	if err := sender.Send(&FeedResponse{
		Type:      EventTypeConnected,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send connected event, stopping stream")
		return
	}

	heartbeat := time.NewTicker(h.heartbeatPeriod)
	defer heartbeat.Stop()

	// Batch updates that arrive close together (from the same feed
	// flush) into one frame.
	batchWindow := 5 * time.Millisecond
	batchTimer := time.NewTimer(batchWindow)
	batchTimer.Stop()
	var pending []livefeed.Update

	flushBatch := func() bool {
		if len(pending) == 0 {
			return true
		}
		if err := sender.Send(&FeedResponse{
			Type:      EventTypeUpdated,
			Timestamp: time.Now().Unix(),
			Updates:   pending,
		}); err != nil {
			h.logger.Warn().
				Err(err).
				Int("update_count", len(pending)).
				Msg("Failed to send batch update, stopping stream")
			return false
		}
		pending = nil
		return true
	}

	// Check if sender has a done channel (for WebSocket)
	var doneChan <-chan struct{}
	if ws, ok := sender.(*wsSender); ok {
		doneChan = ws.done
	}

	for {
		select {
		case <-config.ctx.Done():
			flushBatch()
			return
		case <-doneChan:
			h.logger.Debug().Msg("WebSocket connection closed, stopping stream")
			flushBatch()
			return
		case <-heartbeat.C:
			if !flushBatch() {
				return
			}
			if err := sender.Send(&FeedResponse{
				Type:      EventTypeHeartbeat,
				Timestamp: time.Now().Unix(),
			}); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to send heartbeat, stopping stream")
				return
			}
		case <-batchTimer.C:
			if !flushBatch() {
				return
			}
			batchTimer.Stop()
		case update, ok := <-updates:
			if !ok {
				flushBatch()
				return
			}
			if !config.wantsGame(update.GameCode) {
				continue
			}
			pending = append(pending, update)

			// Collect the rest of the same flush without blocking.
			collected := false
		collect:
			for {
				select {
				case next, nextOk := <-updates:
					if !nextOk {
						flushBatch()
						return
					}
					if config.wantsGame(next.GameCode) {
						pending = append(pending, next)
						collected = true
					}
				default:
					break collect
				}
			}

			if collected {
				if !flushBatch() {
					return
				}
			} else {
				if !batchTimer.Stop() {
					select {
					case <-batchTimer.C:
					default:
					}
				}
				batchTimer.Reset(batchWindow)
			}
		}
	}
}

// messageSender interface for sending messages (SSE or WebSocket).
type messageSender interface {
	Send(*FeedResponse) error
}

// sseSender sends messages via SSE.
type sseSender struct {
	writer http.ResponseWriter
}

func (s *sseSender) Send(resp *FeedResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = s.writer.Write([]byte("data: " + string(payload) + "\n\n"))
	if err != nil {
		return err
	}
	s.writer.(http.Flusher).Flush()
	return nil
}

// wsSender sends messages via WebSocket.
type wsSender struct {
	conn          *websocket.Conn
	done          <-chan struct{}
	logger        zerolog.Logger
	writeDeadline time.Duration
}

func (s *wsSender) Send(resp *FeedResponse) error {
	// Skip the write when the reader goroutine already observed a close
	select {
	case <-s.done:
		s.logger.Debug().Str("event_type", resp.Type).Msg("Connection already closed, skipping send")
		return io.EOF
	default:
	}

	// Set write deadline before each write
	deadline := time.Now().Add(s.writeDeadline)
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to set write deadline")
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", resp.Type).Msg("Failed to marshal response")
		return err
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.logger.Warn().
				Err(err).
				Str("event_type", resp.Type).
				Int("payload_size", len(payload)).
				Msg("WebSocket WriteMessage failed: connection closed (EOF)")
		} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			s.logger.Warn().
				Err(err).
				Str("event_type", resp.Type).
				Int("payload_size", len(payload)).
				Msg("WebSocket WriteMessage failed: unexpected close error")
		} else {
			s.logger.Warn().
				Err(err).
				Str("event_type", resp.Type).
				Int("payload_size", len(payload)).
				Msg("WebSocket WriteMessage failed")
		}
		return err
	}

	return nil
}
