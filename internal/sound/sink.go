// Package sound contains the trigger sinks the sequencer and the gesture
// poller play through: wav sample playback and MIDI drum output.
package sound

import "beatbox-service/internal/types"

// Sink plays a trigger. Emit must not block and must be safe to call from
// any goroutine; playback failures are swallowed by the sink.
type Sink interface {
	Emit(t types.Trigger)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(t types.Trigger)

func (f SinkFunc) Emit(t types.Trigger) { f(t) }

// Multi fans a trigger out to every non-nil sink.
type Multi []Sink

func (m Multi) Emit(t types.Trigger) {
	for _, s := range m {
		if s != nil {
			s.Emit(t)
		}
	}
}

// Discard drops every trigger.
type Discard struct{}

func (Discard) Emit(types.Trigger) {}
