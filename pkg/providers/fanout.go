package providers

import "context"

// FanOutSink delivers each event to every wrapped sink. The first
// error is returned after all sinks have been attempted.
type FanOutSink struct {
	sinks []EventSink
}

// NewFanOutSink combines sinks into one. Nil entries are skipped.
func NewFanOutSink(sinks ...EventSink) *FanOutSink {
	kept := make([]EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &FanOutSink{sinks: kept}
}

func (f *FanOutSink) PlayStarted(ctx context.Context, event *PlayStartedEvent) error {
	var first error
	for _, s := range f.sinks {
		if err := s.PlayStarted(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *FanOutSink) OutcomeSettled(ctx context.Context, event *OutcomeSettledEvent) error {
	var first error
	for _, s := range f.sinks {
		if err := s.OutcomeSettled(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *FanOutSink) RefundIssued(ctx context.Context, event *RefundIssuedEvent) error {
	var first error
	for _, s := range f.sinks {
		if err := s.RefundIssued(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
