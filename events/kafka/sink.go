package kafka

import (
	"context"

	"github.com/oddsforge/wager-engine/pkg/providers"
)

// Default lifecycle topics, overridable via configuration.
const (
	TopicPlayStarted  = "wager.play-started"
	TopicSettled      = "wager.settled"
	TopicRefunded     = "wager.refunded"
	TopicFulfillments = "oracle.fulfillments"
)

// Sink implements providers.EventSink on the Kafka producer. Events
// are keyed by player so each player's lifecycle stays ordered within
// a partition.
type Sink struct {
	producer *Producer
	topics   map[string]string
}

// NewSink creates an event sink. topics maps the logical names
// "play_started", "settled" and "refunded" to concrete topic names;
// missing entries fall back to the defaults.
func NewSink(producer *Producer, topics map[string]string) *Sink {
	return &Sink{producer: producer, topics: topics}
}

func (s *Sink) topic(name, fallback string) string {
	if t, ok := s.topics[name]; ok && t != "" {
		return t
	}
	return fallback
}

// PlayStarted publishes a play-started event
func (s *Sink) PlayStarted(ctx context.Context, event *providers.PlayStartedEvent) error {
	return s.producer.SendMessage(s.topic("play_started", TopicPlayStarted), event.PlayerID, event)
}

// OutcomeSettled publishes an outcome-settled event
func (s *Sink) OutcomeSettled(ctx context.Context, event *providers.OutcomeSettledEvent) error {
	return s.producer.SendMessage(s.topic("settled", TopicSettled), event.PlayerID, event)
}

// RefundIssued publishes a refund-issued event
func (s *Sink) RefundIssued(ctx context.Context, event *providers.RefundIssuedEvent) error {
	return s.producer.SendMessage(s.topic("refunded", TopicRefunded), event.PlayerID, event)
}
