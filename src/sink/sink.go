// Package sink implements CSML's streaming event sink (spec §4.5): a
// best-effort fan-out of ordered evaluator events, independent of
// MessageData's final batch-return shape.
package sink

import (
	"github.com/csml-sh/csml-engine/src/primitive"
)

// EventKind discriminates the ordered event stream (spec §4.5).
type EventKind int

const (
	EventMessage EventKind = iota
	EventMemory
	EventForget
	EventHold
	EventNext
	EventLog
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "Message"
	case EventMemory:
		return "Memory"
	case EventForget:
		return "Forget"
	case EventHold:
		return "Hold"
	case EventNext:
		return "Next"
	case EventLog:
		return "Log"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event is one item of the ordered evaluator event stream.
type Event struct {
	Kind EventKind

	// EventMessage
	Message *primitive.Literal

	// EventMemory/EventForget
	Key   string
	Value *primitive.Literal

	// EventNext
	NextFlow string
	NextStep string

	// EventLog/EventError
	Text string

	// Flow/Step identify the command's origin for host-side correlation.
	Flow string
	Step string
}

// Sink is the one-method interface the evaluator emits to. Implementations
// must not block the evaluator's single-threaded call path for long — the
// contract is best-effort: the evaluator keeps going even if an event is
// dropped (spec §4.5).
type Sink interface {
	Emit(Event)
}

// NopSink discards every event; used when a host calls Interpret without a
// sink (spec §4.4 entry point: `sink?`).
type NopSink struct{}

func (NopSink) Emit(Event) {}

// ChannelSink is the reference Sink: a non-blocking send to a buffered
// channel with a `default:` drop branch, so a slow or absent consumer
// never stalls the evaluator (spec §4.5's "best-effort" contract, made
// literal via Go's select/default idiom rather than a blocking channel
// send).
type ChannelSink struct {
	ch      chan Event
	Dropped int
}

// NewChannel constructs a ChannelSink with the given buffer size, and
// returns the receive-only channel for the host to drain.
func NewChannel(buf int) (*ChannelSink, <-chan Event) {
	ch := make(chan Event, buf)
	return &ChannelSink{ch: ch}, ch
}

func (s *ChannelSink) Emit(e Event) {
	select {
	case s.ch <- e:
	default:
		s.Dropped++
	}
}

// Close closes the underlying channel; callers must stop calling Emit
// afterward.
func (s *ChannelSink) Close() { close(s.ch) }

// Multi fans one Emit out to several sinks — composition, not replacement,
// the way telemetry.Sink wraps an existing Sink without displacing it.
type Multi struct {
	Sinks []Sink
}

func (m Multi) Emit(e Event) {
	for _, s := range m.Sinks {
		s.Emit(e)
	}
}
