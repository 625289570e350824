// Package telemetry implements an optional analytics tap on the
// evaluator's event stream (SPEC_FULL.md §3's domain-stack wiring for
// `CSML_ANALYTICS_KEY`): a sink.Sink that forwards step_executed,
// hold_created, and runtime_error events to PostHog, composed alongside
// whatever sink a host already supplies rather than replacing it.
//
// Grounded on the teacher's Sampler plugin (src/plugins/sampler.go): both
// observe everything flowing through a request/step without altering it,
// keyed by a per-run identifier (Sampler's traceID, here the Client
// triple), and both degrade silently on write failure rather than
// interrupting evaluation. github.com/posthog/posthog-go is a teacher
// go.mod dependency with no call site in the teacher's own source,
// repurposed here for its stated purpose: outbound analytics events.
package telemetry

import (
	"go.uber.org/zap"

	"github.com/posthog/posthog-go"

	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/sink"
)

// Logger defaults to a no-op sink, in the teacher's style; set via
// engine.SetLogger.
var Logger *zap.Logger = zap.NewNop()

// Sink forwards a subset of the evaluator's event stream to PostHog,
// tagged with the distinct ID of the conversation it came from. A nil or
// zero-value Sink (as returned by New with no key) is a safe no-op, the
// same "off unless configured" default every ambient knob in this module
// follows.
type Sink struct {
	client     posthog.Client
	distinctID string
	flow       string
}

// New constructs a telemetry Sink posting to PostHog with apiKey, scoped
// to one conversation's distinct ID (spec §3's Client triple, flattened
// to a single string key). An empty apiKey (CSML_ANALYTICS_KEY unset)
// returns a Sink with a nil client whose Emit is a no-op — callers don't
// need to branch on whether telemetry is enabled before composing it
// into a sink.Multi.
func New(apiKey string, client host.Client) *Sink {
	if apiKey == "" {
		return &Sink{}
	}
	ph, err := posthog.NewWithConfig(apiKey, posthog.Config{})
	if err != nil {
		Logger.Warn("telemetry: posthog client init failed", zap.Error(err))
		return &Sink{}
	}
	return &Sink{client: ph, distinctID: client.BotID + ":" + client.ChannelID + ":" + client.UserID}
}

// Close flushes and releases the underlying PostHog client, if any. A
// host should defer this once per Interpret call that constructed a Sink.
func (t *Sink) Close() {
	if t.client == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		Logger.Warn("telemetry: posthog client close failed", zap.Error(err))
	}
}

// Emit implements sink.Sink, translating the three event kinds
// SPEC_FULL.md names (step_executed, hold_created, runtime_error) into
// PostHog captures; every other event kind is ignored — telemetry is a
// coarse usage signal, not a full event mirror.
func (t *Sink) Emit(e sink.Event) {
	if t.client == nil {
		return
	}

	var capture *posthog.Capture
	switch e.Kind {
	case sink.EventNext:
		capture = &posthog.Capture{
			DistinctId: t.distinctID,
			Event:      "step_executed",
			Properties: posthog.NewProperties().
				Set("flow", e.NextFlow).
				Set("step", e.NextStep),
		}
	case sink.EventHold:
		capture = &posthog.Capture{
			DistinctId: t.distinctID,
			Event:      "hold_created",
			Properties: posthog.NewProperties().
				Set("flow", e.Flow).
				Set("step", e.Step),
		}
	case sink.EventError:
		capture = &posthog.Capture{
			DistinctId: t.distinctID,
			Event:      "runtime_error",
			Properties: posthog.NewProperties().
				Set("flow", e.Flow).
				Set("step", e.Step).
				Set("message", e.Text),
		}
	default:
		return
	}

	if err := t.client.Enqueue(*capture); err != nil {
		Logger.Debug("telemetry: enqueue failed", zap.Error(err))
	}
}

var _ sink.Sink = (*Sink)(nil)
