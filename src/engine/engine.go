// Package engine is the single host-facing facade (spec §6): parse one
// flow, validate a whole bot bundle, run one interpret call, and read
// the ambient env knobs that configure logging, encryption, component
// loading, and outbound TLS behavior.
//
// Grounded on the teacher's module-boundary shape: a Caddy module never
// exposes its internal plugin/driver packages directly, it is reached
// through one provisioned entry point (its `ServeHTTP`/`Provision`
// methods in `src/module.go`). Package engine is that entry point here,
// re-exporting just enough of interpreter/parser/linter/components for a
// host to depend on a single import.
package engine

import (
	"context"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/builtins"
	"github.com/csml-sh/csml-engine/src/components"
	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/interpreter"
	"github.com/csml-sh/csml-engine/src/linter"
	"github.com/csml-sh/csml-engine/src/parser"
	"github.com/csml-sh/csml-engine/src/sink"
	"github.com/csml-sh/csml-engine/src/telemetry"
)

// Config is the bundle of env knobs SPEC_FULL.md's ambient stack section
// names. Read once via Configure; zero value behaves like every knob
// unset.
type Config struct {
	LogLevel          zapcore.Level
	EncryptionSecret  string
	Debug             bool
	ComponentsDir     string
	DisableSSLVerify  bool
	AnalyticsKey      string
}

var current Config

// Configure reads CSML_LOG_LEVEL, ENCRYPTION_SECRET, DEBUG,
// COMPONENTS_DIR, DISABLE_SSL_VERIFY, and CSML_ANALYTICS_KEY from the
// process environment and wires a logger at the resolved level into
// every package that exposes one (mirrors the teacher's per-plugin
// `Logger *zap.Logger = zap.NewNop()` + provision-time `SetLogger`
// pattern, collapsed to one call since this module has no Caddy
// provisioning phase to hook into).
func Configure() Config {
	cfg := Config{
		EncryptionSecret: os.Getenv("ENCRYPTION_SECRET"),
		ComponentsDir:    os.Getenv("COMPONENTS_DIR"),
		AnalyticsKey:     os.Getenv("CSML_ANALYTICS_KEY"),
	}
	if lvl, err := zapcore.ParseLevel(os.Getenv("CSML_LOG_LEVEL")); err == nil {
		cfg.LogLevel = lvl
	} else {
		cfg.LogLevel = zapcore.InfoLevel
	}
	if b, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil {
		cfg.Debug = b
		if b {
			cfg.LogLevel = zapcore.DebugLevel
		}
	}
	if b, err := strconv.ParseBool(os.Getenv("DISABLE_SSL_VERIFY")); err == nil {
		cfg.DisableSSLVerify = b
	}
	current = cfg

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zcfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	SetLogger(logger)
	return cfg
}

// SetLogger wires l into every package that exposes a package-level
// Logger, the same "inject once at startup" discipline the teacher
// applies per-plugin at Caddy provision time.
func SetLogger(l *zap.Logger) {
	interpreter.Logger = l
	components.Logger = l
	builtins.Logger = l
	telemetry.Logger = l
}

// ParseFlow parses one flow's source into its AST, per spec §4.1.
func ParseFlow(source, flowName string) (*ast.Flow, []parser.ErrorInfo) {
	return parser.ParseFlow(source, flowName)
}

// LoadComponents returns the canonical builtin component schema set
// (spec §4.3), keyed by name — the shape a host inspects to build an
// authoring UI or validate a bot's custom_components against name
// collisions before upload.
func LoadComponents() map[string]components.Schema {
	reg := components.NewRegistry()
	out := make(map[string]components.Schema, len(reg.Names()))
	for _, name := range reg.Names() {
		if s, ok := reg.Lookup(name); ok {
			out[name] = *s
		}
	}
	return out
}

// buildRegistry assembles the component set a bot runs against: the
// builtin set, any COMPONENTS_DIR schemas (current.ComponentsDir), and
// the bot's own custom_components (spec §3), in that override order.
func buildRegistry(bot *host.Bot) *components.Registry {
	reg := components.NewRegistry()
	if current.ComponentsDir != "" {
		if extra, err := components.LoadDir(current.ComponentsDir); err == nil {
			for _, s := range extra {
				reg.Register(s)
			}
		} else {
			components.Logger.Warn("engine: COMPONENTS_DIR load failed", zap.Error(err), zap.String("dir", current.ComponentsDir))
		}
	}
	if bot != nil && len(bot.CustomComponents) > 0 {
		components.MergeCustom(reg, bot.CustomComponents)
	}
	return reg
}

// ValidateBot parses every flow in bot, folds in its custom_components,
// and runs every linter rule (spec §4.6). A non-OK Report gates
// execution — the host is expected to refuse to run a bot that fails
// this check. Parse errors are reported as KindParseError findings ahead
// of the lint findings, since a flow that didn't parse can't meaningfully
// be linted.
func ValidateBot(bot *host.Bot) linter.Report {
	flows := map[string]*ast.Flow{}
	var parseErrs []*EngineError
	for _, f := range bot.Flows {
		parsed, errList := parser.ParseFlow(f.Source, f.Name)
		flows[f.Name] = parsed
		for _, e := range errList {
			parseErrs = append(parseErrs, &EngineError{Kind: KindParseError, Message: e.Message, Interval: e.Position, Flow: f.Name})
		}
	}

	reg := buildRegistry(bot)
	report := linter.Lint(flows, bot, reg)
	report.Errors = append(parseErrs, report.Errors...)
	return report
}

// Interpret is the spec §4.4 entry point: run one inbound event against
// bot starting from ctx's current position, streaming through sink as it
// goes and returning the batch MessageData once the step chain reaches a
// terminal exit condition.
//
// This is the direct generalization of the teacher's
// `RunInferencePipeline`/`AILModule.ServeHTTP` request orchestration
// (parse request → run plugin chain → stream/collect response) collapsed
// to CSML's simpler parse-once/validate-once/execute-per-event shape: no
// provider driver selection, no recursive tool-call loop, just one flow's
// step chain per call.
func Interpret(bot *host.Bot, ctx *host.Context, event *host.Event, snk sink.Sink) (*host.MessageData, error) {
	reg := buildRegistry(bot)
	return interpreter.Interpret(context.Background(), bot, ctx, event, snk, reg)
}
