package linter_test

import (
	"testing"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/components"
	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/linter"
	"github.com/csml-sh/csml-engine/src/parser"
)

func mustParse(t *testing.T, source, name string) *ast.Flow {
	t.Helper()
	flow, errs := parser.ParseFlow(source, name)
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", name, errs)
	}
	return flow
}

func TestLintValidBot(t *testing.T) {
	flows := map[string]*ast.Flow{
		"start": mustParse(t, `start: { say "Hello" goto end }`, "start"),
	}
	bot := &host.Bot{DefaultFlow: "start"}

	report := linter.Lint(flows, bot, components.NewRegistry())
	if !report.OK() {
		t.Fatalf("expected a clean bot to pass, got %v", report.Errors)
	}
}

func TestLintMissingStartStep(t *testing.T) {
	flows := map[string]*ast.Flow{
		"start": mustParse(t, `greet: { say "Hello" goto end }`, "start"),
	}
	bot := &host.Bot{DefaultFlow: "start"}

	report := linter.Lint(flows, bot, components.NewRegistry())
	if report.OK() {
		t.Fatal("expected a flow without a start step to fail linting")
	}
}

func TestLintUnknownDefaultFlow(t *testing.T) {
	flows := map[string]*ast.Flow{
		"start": mustParse(t, `start: { say "Hello" goto end }`, "start"),
	}
	bot := &host.Bot{DefaultFlow: "nope"}

	report := linter.Lint(flows, bot, components.NewRegistry())
	if report.OK() {
		t.Fatal("expected an unresolvable default_flow to fail linting")
	}
}

func TestLintUnknownGotoStep(t *testing.T) {
	flows := map[string]*ast.Flow{
		"start": mustParse(t, `start: { say "Hello" goto nowhere }`, "start"),
	}
	bot := &host.Bot{DefaultFlow: "start"}

	report := linter.Lint(flows, bot, components.NewRegistry())
	if report.OK() {
		t.Fatal("expected a goto to an unknown step to fail linting")
	}
}

func TestLintUnknownCallIsFlagged(t *testing.T) {
	flows := map[string]*ast.Flow{
		"start": mustParse(t, `start: { say definitelyNotARealFunction() goto end }`, "start"),
	}
	bot := &host.Bot{DefaultFlow: "start"}

	report := linter.Lint(flows, bot, components.NewRegistry())
	if report.OK() {
		t.Fatal("expected a call to an unrecognized name to fail linting")
	}
}

func TestLintRecognizesRegisteredComponent(t *testing.T) {
	flows := map[string]*ast.Flow{
		"start": mustParse(t, `start: { say Text("hi") goto end }`, "start"),
	}
	bot := &host.Bot{DefaultFlow: "start"}

	report := linter.Lint(flows, bot, components.NewRegistry())
	if !report.OK() {
		t.Fatalf("expected a call to a builtin component to pass, got %v", report.Errors)
	}
}
