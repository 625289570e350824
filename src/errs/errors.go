// Package errs defines the tagged error taxonomy (spec §7) shared by every
// layer of the engine — parser, linter, primitive, interpreter, builtins,
// and the engine facade itself. Kept as its own leaf package (rather than
// living in package engine) so packages below the facade can return a
// structured error without importing the facade that assembles them.
package errs

import (
	"fmt"

	"github.com/csml-sh/csml-engine/src/token"
)

// ErrorKind is the tagged error taxonomy of spec §7 — not exceptions,
// values carried through normal error returns.
type ErrorKind int

const (
	KindParseError ErrorKind = iota
	KindLintError
	KindRuntimeType
	KindRuntimeArith
	KindRuntimeRef
	KindRuntimeArgs
	KindRuntimeIO
	KindControlFault
	KindPayloadTooLarge
	KindHoldMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindParseError:
		return "ParseError"
	case KindLintError:
		return "LintError"
	case KindRuntimeType:
		return "RuntimeType"
	case KindRuntimeArith:
		return "RuntimeArith"
	case KindRuntimeRef:
		return "RuntimeRef"
	case KindRuntimeArgs:
		return "RuntimeArgs"
	case KindRuntimeIO:
		return "RuntimeIO"
	case KindControlFault:
		return "ControlFault"
	case KindPayloadTooLarge:
		return "PayloadTooLarge"
	case KindHoldMismatch:
		return "HoldMismatch"
	default:
		return "Unknown"
	}
}

// EngineError is the one error type every package in this module returns
// for a spec §7 failure kind; it carries enough context to render the
// user-visible failure message verbatim ("<message> at line L, column C in
// step S from flow F").
type EngineError struct {
	Kind     ErrorKind
	Message  string
	Interval token.Interval
	Flow     string
	Step     string
	Cause    error
}

func (e *EngineError) Error() string {
	if e.Flow == "" && e.Step == "" {
		return fmt.Sprintf("%s: %s at line %d, column %d", e.Kind, e.Message, e.Interval.StartLine, e.Interval.StartCol)
	}
	return fmt.Sprintf("%s: %s at line %d, column %d in step %s from flow %s",
		e.Kind, e.Message, e.Interval.StartLine, e.Interval.StartCol, e.Step, e.Flow)
}

func (e *EngineError) Unwrap() error { return e.Cause }

// UserVisibleMessage renders the content of an "error" content_type
// Message for this failure (spec §7).
func (e *EngineError) UserVisibleMessage() string {
	return e.Error()
}

// New constructs an EngineError of the given kind.
func New(kind ErrorKind, message string, iv token.Interval, flow, step string) *EngineError {
	return &EngineError{Kind: kind, Message: message, Interval: iv, Flow: flow, Step: step}
}

// Wrap constructs an EngineError of the given kind wrapping cause.
func Wrap(kind ErrorKind, cause error, iv token.Interval, flow, step string) *EngineError {
	return &EngineError{Kind: kind, Message: cause.Error(), Interval: iv, Flow: flow, Step: step, Cause: cause}
}
