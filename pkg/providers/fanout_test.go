package providers

import (
	"context"
	"errors"
	"testing"
)

type recordingSink struct {
	starts  int
	settles int
	refunds int
	err     error
}

func (s *recordingSink) PlayStarted(ctx context.Context, event *PlayStartedEvent) error {
	s.starts++
	return s.err
}

func (s *recordingSink) OutcomeSettled(ctx context.Context, event *OutcomeSettledEvent) error {
	s.settles++
	return s.err
}

func (s *recordingSink) RefundIssued(ctx context.Context, event *RefundIssuedEvent) error {
	s.refunds++
	return s.err
}

func TestFanOutDeliversToAllSinks(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	fan := NewFanOutSink(a, nil, b)
	ctx := context.Background()

	if err := fan.PlayStarted(ctx, &PlayStartedEvent{}); err != nil {
		t.Fatalf("PlayStarted failed: %v", err)
	}
	if err := fan.OutcomeSettled(ctx, &OutcomeSettledEvent{}); err != nil {
		t.Fatalf("OutcomeSettled failed: %v", err)
	}
	if err := fan.RefundIssued(ctx, &RefundIssuedEvent{}); err != nil {
		t.Fatalf("RefundIssued failed: %v", err)
	}

	for _, s := range []*recordingSink{a, b} {
		if s.starts != 1 || s.settles != 1 || s.refunds != 1 {
			t.Errorf("sink not reached for every event: %+v", s)
		}
	}
}

func TestFanOutContinuesPastFailingSink(t *testing.T) {
	failErr := errors.New("broker down")
	failing := &recordingSink{err: failErr}
	healthy := &recordingSink{}
	fan := NewFanOutSink(failing, healthy)

	err := fan.OutcomeSettled(context.Background(), &OutcomeSettledEvent{})
	if !errors.Is(err, failErr) {
		t.Errorf("expected first error to surface, got %v", err)
	}
	if healthy.settles != 1 {
		t.Error("later sinks must still receive the event")
	}
}
