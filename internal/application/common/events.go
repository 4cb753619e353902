package common

import (
	"context"

	"github.com/andrescamacho/hauler-go/internal/domain/task"
)

// EventSink receives task signals. Implementations must not block the tick;
// slow consumers buffer or drop.
type EventSink interface {
	Publish(ctx context.Context, signal task.Signal)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(ctx context.Context, signal task.Signal)

func (f SinkFunc) Publish(ctx context.Context, signal task.Signal) {
	f(ctx, signal)
}

// FanOut delivers each signal to every sink in order
type FanOut []EventSink

func (f FanOut) Publish(ctx context.Context, signal task.Signal) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(ctx, signal)
		}
	}
}

// SignalRecorder keeps every signal in memory; used by tests and the simulate command
type SignalRecorder struct {
	Signals []task.Signal
}

func (r *SignalRecorder) Publish(_ context.Context, signal task.Signal) {
	r.Signals = append(r.Signals, signal)
}

// OfType returns recorded signals of type t
func (r *SignalRecorder) OfType(t task.SignalType) []task.Signal {
	var out []task.Signal
	for _, s := range r.Signals {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
