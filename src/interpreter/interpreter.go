// Package interpreter implements the CSML tree-walking evaluator (spec
// §4.4): entry point Interpret, scope execution with an observable command
// index, hold/resume checkpointing, control flow, function-call
// resolution, message emission discipline, and failure semantics.
//
// Package split mirrors the teacher's plugin/services split
// (src/plugin/chain.go orchestration vs. src/plugin/tool_plugin.go one
// concern): control-flow evaluation lives in eval.go/scope.go,
// scope/hold bookkeeping in scope.go (resume cursor) and interpreter.go
// (hold snapshot), function/import resolution in
// functions.go — one package, several single-concern files.
package interpreter

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/components"
	"github.com/csml-sh/csml-engine/src/errs"
	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/parser"
	"github.com/csml-sh/csml-engine/src/primitive"
	"github.com/csml-sh/csml-engine/src/sink"
	"github.com/csml-sh/csml-engine/src/token"
)

// Logger defaults to a no-op sink, in the teacher's style; set via
// engine.SetLogger.
var Logger *zap.Logger = zap.NewNop()

// stepChainLimit is spec §4.4's "An execution that would traverse more
// than 100 steps (via `goto step` chains) aborts with Error."
const stepChainLimit = 100

// callDepthLimit resolves spec §9's Open Question (recursion guard for
// function calls), per the original source's interpreter.rs recursion
// guard, at 256 frames.
const callDepthLimit = 256

// maxMessageBytes is spec §4.4.5's outbound Message size cap.
const maxMessageBytes = 16000

// Interpreter holds everything one Interpret call needs; it is
// constructed fresh per call, carrying no state across calls (spec §5's
// single-threaded-per-call model).
type Interpreter struct {
	goCtx      context.Context
	bot        *host.Bot
	flows      map[string]*ast.Flow
	components *components.Registry
	sink       sink.Sink
	rctx       *host.Context

	stepVars map[string]*primitive.Literal

	messages  []host.Message
	memories  []host.MemoryWrite
	stepCount int
	callDepth int

	currentFlow string
	currentStep string

	commandIndex   int
	loopIndexStack []int

	constCache map[string]map[string]*primitive.Literal
}

// Interpret is the entry point from spec §4.4: `interpret(bot, context,
// event, sink?) → MessageData`.
func Interpret(ctx context.Context, bot *host.Bot, rctx *host.Context, event *host.Event, snk sink.Sink, reg *components.Registry) (*host.MessageData, error) {
	if snk == nil {
		snk = sink.NopSink{}
	}
	if reg == nil {
		reg = components.NewRegistry()
	}

	in := &Interpreter{
		goCtx:      ctx,
		bot:        bot,
		flows:      map[string]*ast.Flow{},
		components: reg,
		sink:       snk,
		rctx:       rctx,
		stepVars:   map[string]*primitive.Literal{},
		constCache: map[string]map[string]*primitive.Literal{},
	}

	for _, f := range bot.Flows {
		parsed, errList := parser.ParseFlow(f.Source, f.Name)
		if len(errList) > 0 {
			Logger.Debug("flow parse errors", zap.String("flow", f.Name), zap.Int("count", len(errList)))
		}
		in.flows[f.Name] = parsed
	}

	flowName := rctx.Flow
	if flowName == "" {
		flowName = bot.DefaultFlow
	}
	stepName := rctx.Step
	if stepName == "" {
		stepName = "start"
	}

	flow, ok := in.flows[flowName]
	if !ok {
		return in.errorResult(errs.New(errs.KindControlFault, fmt.Sprintf("unknown flow %q", flowName), zeroInterval(), flowName, stepName))
	}

	in.currentFlow = flowName
	in.currentStep = stepName

	resumeCmd := -1
	var resumeLoopIdx []int
	if rctx.Hold != nil {
		expectedHash := flowMD5(flow)
		if rctx.Hold.Hash == expectedHash {
			in.stepVars = rctx.Hold.StepVars
			resumeCmd = rctx.Hold.CommandIndex
			resumeLoopIdx = rctx.Hold.LoopIndexStack
			in.currentFlow = rctx.Hold.FlowName
			in.currentStep = rctx.Hold.StepName
			flow = in.flows[in.currentFlow]
		} else {
			// HoldMismatch (spec §7): silent reset to start, no
			// user-visible error.
			Logger.Debug("hold hash mismatch, resetting to start", zap.String("flow", flowName))
			rctx.Hold = nil
			in.currentStep = "start"
		}
	}

	return in.run(flow, resumeCmd, resumeLoopIdx)
}

func (in *Interpreter) run(flow *ast.Flow, resumeCmd int, resumeLoopIdx []int) (*host.MessageData, error) {
	for {
		in.stepCount++
		if in.stepCount > stepChainLimit {
			return in.errorResult(errs.New(errs.KindControlFault, "step limit exceeded (possible goto loop)", zeroInterval(), in.currentFlow, in.currentStep))
		}

		step, ok := flow.Steps[in.currentStep]
		if !ok {
			return in.errorResult(errs.New(errs.KindControlFault, fmt.Sprintf("unknown step %q", in.currentStep), zeroInterval(), in.currentFlow, in.currentStep))
		}

		in.sink.Emit(sink.Event{Kind: sink.EventNext, NextFlow: in.currentFlow, NextStep: in.currentStep, Flow: in.currentFlow, Step: in.currentStep})

		ec := &execCtx{commandIndex: 0}
		if resumeCmd >= 0 {
			ec.skip = true
			ec.target = resumeCmd
			ec.loopIdx = resumeLoopIdx
		}
		resumeCmd = -1 // only the first step in a run honors a resume cursor

		sig, err := in.execScope(step.Body, ec)
		if err != nil {
			ee, ok := err.(*errs.EngineError)
			if !ok {
				ee = errs.Wrap(errs.KindRuntimeType, err, zeroInterval(), in.currentFlow, in.currentStep)
			}
			return in.errorResult(ee)
		}

		switch sig.kind {
		case sigGoto:
			nf, ns := resolveGotoTarget(sig.gotoTarget, in.currentFlow)
			if ns == "end" {
				return in.endResult(host.ExitEnd), nil
			}
			if nf != in.currentFlow {
				newFlow, ok := in.flows[nf]
				if !ok {
					return in.errorResult(errs.New(errs.KindControlFault, fmt.Sprintf("goto: unknown flow %q", nf), zeroInterval(), in.currentFlow, in.currentStep))
				}
				flow = newFlow
			}
			in.currentFlow, in.currentStep = nf, ns
			continue
		case sigHold:
			return in.holdResult(sig.holdDuration, flow), nil
		case sigReturn, sigEnd, sigBreak, sigContinue:
			return in.endResult(host.ExitEnd), nil
		default:
			return in.endResult(host.ExitEnd), nil
		}
	}
}

func resolveGotoTarget(target, currentFlow string) (flow, step string) {
	for i := 0; i < len(target); i++ {
		if target[i] == ':' {
			return target[:i], target[i+1:]
		}
	}
	return currentFlow, target
}

func (in *Interpreter) endResult(exit host.ExitCondition) *host.MessageData {
	return &host.MessageData{
		Messages: in.messages, Memories: in.memories,
		NextFlow: in.currentFlow, NextStep: in.currentStep,
		Exit: exit,
	}
}

func (in *Interpreter) errorResult(ee *errs.EngineError) (*host.MessageData, error) {
	Logger.Error("interpret error", zap.String("kind", ee.Kind.String()), zap.Error(ee))
	in.emitErrorMessage(ee)
	in.sink.Emit(sink.Event{Kind: sink.EventError, Text: ee.Error(), Flow: in.currentFlow, Step: in.currentStep})
	return &host.MessageData{
		Messages: in.messages, Memories: in.memories,
		NextFlow: in.currentFlow, NextStep: in.currentStep,
		Exit: host.ExitError,
	}, nil
}

func (in *Interpreter) holdResult(duration *primitive.Literal, flow *ast.Flow) *host.MessageData {
	h := &host.Hold{
		CommandIndex:   in.commandIndex,
		LoopIndexStack: append([]int(nil), in.loopIndexStack...),
		StepVars:       in.stepVars,
		StepName:       in.currentStep,
		FlowName:       in.currentFlow,
		Hash:           flowMD5(flow),
	}
	in.sink.Emit(sink.Event{Kind: sink.EventHold, Flow: in.currentFlow, Step: in.currentStep})
	return &host.MessageData{
		Messages: in.messages, Memories: in.memories,
		NextFlow: in.currentFlow, NextStep: in.currentStep,
		Exit: host.ExitHold, HoldState: h,
	}
}

// flowMD5 is the MD5 hex digest of flowSourceKey(flow), used to detect a
// stale hold snapshot across a flow edit (spec §3 Hold.hash). The flow's
// source text is not hashed: an edit inside a step body that keeps the
// flow's step names and their order leaves the digest unchanged.
func flowMD5(flow *ast.Flow) string {
	sum := md5.Sum([]byte(flowSourceKey(flow)))
	return hex.EncodeToString(sum[:])
}

// flowSourceKey builds the text flowMD5 hashes from the parsed Flow: its
// name followed by its step names in declaration order.
func flowSourceKey(flow *ast.Flow) string {
	s := flow.Name
	for _, name := range flow.StepOrder {
		s += "|" + name
	}
	return s
}

func zeroInterval() token.Interval {
	return token.Interval{}
}
