package kafka

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewProducerDisabledWithoutBrokers(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil producer when no brokers are configured")
	}
}
