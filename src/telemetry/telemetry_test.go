package telemetry

import (
	"testing"

	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/sink"
)

func TestNewWithoutKeyIsNoop(t *testing.T) {
	s := New("", host.Client{BotID: "b", ChannelID: "c", UserID: "u"})
	if s.client != nil {
		t.Fatal("expected an empty apiKey to produce a nil PostHog client")
	}

	// Emit must be safe to call even with nothing configured (a host
	// should never need to branch on whether telemetry is enabled).
	s.Emit(sink.Event{Kind: sink.EventNext, Flow: "start", Step: "start"})
	s.Close()
}

var _ sink.Sink = (*Sink)(nil)
