package engine

import (
	"testing"

	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/interpreter"
)

func TestParseFlow(t *testing.T) {
	flow, errs := ParseFlow(`start: { say "Hello" goto end }`, "start")
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if flow.Name != "start" {
		t.Fatalf("expected flow name %q, got %q", "start", flow.Name)
	}
}

func TestValidateBotOK(t *testing.T) {
	bot := &host.Bot{
		DefaultFlow: "start",
		Flows: []host.Flow{
			{Name: "start", Source: `start: { say "Hello" goto end }`},
		},
	}
	report := ValidateBot(bot)
	if !report.OK() {
		t.Fatalf("expected a valid bot, got %v", report.Errors)
	}
}

func TestValidateBotParseError(t *testing.T) {
	bot := &host.Bot{
		DefaultFlow: "start",
		Flows: []host.Flow{
			{Name: "start", Source: `start: { say "Hello" goto`},
		},
	}
	report := ValidateBot(bot)
	if report.OK() {
		t.Fatal("expected a malformed flow source to fail validation")
	}
}

func TestValidateBotCustomComponent(t *testing.T) {
	bot := &host.Bot{
		DefaultFlow: "start",
		Flows: []host.Flow{
			{Name: "start", Source: `start: { say Weather("Paris") goto end }`},
		},
		CustomComponents: map[string]interface{}{
			"Weather": map[string]interface{}{
				"content_type": "weather",
				"params": []interface{}{
					map[string]interface{}{"name": "city", "required": true, "type": "string"},
				},
			},
		},
	}
	report := ValidateBot(bot)
	if !report.OK() {
		t.Fatalf("expected a bot using its own custom component to pass, got %v", report.Errors)
	}
}

func TestLoadComponents(t *testing.T) {
	schemas := LoadComponents()
	if _, ok := schemas["Text"]; !ok {
		t.Fatal("expected builtin Text schema in LoadComponents result")
	}
}

func TestConfigureDefaults(t *testing.T) {
	// No env knobs set: Configure must not panic and must leave a usable
	// logger wired into every package it configures.
	Configure()
	if interpreter.Logger == nil {
		t.Fatal("expected Configure to wire a non-nil logger into package interpreter")
	}
}
