package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	defaultWorkers = 4
	sendQueueSize  = 256
	publishTimeout = 10 * time.Second
)

// Producer publishes lifecycle events through a small worker pool so
// the settlement path never blocks on the broker.
type Producer struct {
	writer *kafka.Writer
	logger zerolog.Logger
	queue  chan kafka.Message
	wg     sync.WaitGroup
}

// ProducerConfig configures the event producer.
type ProducerConfig struct {
	Brokers []string
	Logger  zerolog.Logger
	Workers int
}

// NewProducer creates the event producer. Returns nil when no brokers
// are configured; callers treat a nil producer as events-disabled.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	p := &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: publishTimeout,
			ReadTimeout:  publishTimeout,
		},
		logger: cfg.Logger.With().Str("component", "event_producer").Logger(),
		queue:  make(chan kafka.Message, sendQueueSize),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.publishLoop()
	}
	return p, nil
}

// SendMessage enqueues one keyed event for asynchronous publication.
// Events are keyed by player id so each player's lifecycle stays
// ordered within a partition.
func (p *Producer) SendMessage(topic, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.queue <- kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	return nil
}

func (p *Producer) publishLoop() {
	defer p.wg.Done()
	for msg := range p.queue {
		p.publish(msg)
	}
}

func (p *Producer) publish(msg kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("topic", msg.Topic).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic while publishing")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().
			Err(err).
			Str("topic", msg.Topic).
			Str("key", string(msg.Key)).
			Msg("Failed to publish event")
		return
	}
	p.logger.Debug().
		Str("topic", msg.Topic).
		Str("key", string(msg.Key)).
		Msg("Event published")
}

// Close drains the queue and closes the writer.
func (p *Producer) Close() error {
	close(p.queue)
	p.wg.Wait()
	return p.writer.Close()
}
