package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// FulfillmentMessage is the oracle coordinator's callback delivered
// over Kafka instead of HTTP. CoordinatorID is authenticated by the
// handler exactly like the HTTP caller identity.
type FulfillmentMessage struct {
	CoordinatorID string    `json:"coordinator_id"`
	RequestHandle string    `json:"request_handle"`
	Values        []uint64  `json:"values"`
	Timestamp     time.Time `json:"timestamp"`
}

// FulfillmentHandler settles the pending game named by the message.
type FulfillmentHandler func(ctx context.Context, msg *FulfillmentMessage) error

// Consumer reads oracle fulfillments from Kafka and feeds them to
// the settlement handler.
type Consumer struct {
	reader  *kafka.Reader
	handler FulfillmentHandler
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	Logger        zerolog.Logger
}

// NewConsumer creates a new fulfillment consumer
func NewConsumer(config ConsumerConfig, handler FulfillmentHandler) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.ConsumerGroup,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  config.Logger.With().Str("component", "fulfillment-consumer").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins consuming messages
func (c *Consumer) Start() error {
	c.wg.Add(1)
	go c.consume()
	c.logger.Info().Msg("fulfillment consumer started")
	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info().Msg("stopping fulfillment consumer")
	c.cancel()
	c.wg.Wait()

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("error closing Kafka reader")
		return err
	}

	c.logger.Info().Msg("fulfillment consumer stopped")
	return nil
}

// consume is the main consumer loop
func (c *Consumer) consume() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			msg, err := c.reader.FetchMessage(c.ctx)
			if err != nil {
				if err == context.Canceled {
					return
				}
				c.logger.Error().Err(err).Msg("error fetching message from Kafka")
				time.Sleep(time.Second)
				continue
			}

			if err := c.handleMessage(msg); err != nil {
				c.logger.Error().
					Err(err).
					Str("topic", msg.Topic).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("error handling fulfillment")
			}

			// Commit regardless of handler outcome: a rejected
			// fulfillment (stale, unknown handle) will not become
			// valid on redelivery, and transfer failures are
			// retried by the coordinator with a fresh message.
			if err := c.reader.CommitMessages(c.ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("error committing message")
			}
		}
	}
}

// handleMessage decodes and settles one fulfillment
func (c *Consumer) handleMessage(msg kafka.Message) error {
	var fulfillment FulfillmentMessage
	if err := json.Unmarshal(msg.Value, &fulfillment); err != nil {
		return err
	}

	c.logger.Debug().
		Str("request_handle", fulfillment.RequestHandle).
		Int("values", len(fulfillment.Values)).
		Msg("fulfillment received")

	return c.handler(c.ctx, &fulfillment)
}
