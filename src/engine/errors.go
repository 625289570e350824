package engine

import "github.com/csml-sh/csml-engine/src/errs"

// EngineError and ErrorKind are re-exported aliases of package errs' types
// so host code can write engine.EngineError without importing errs
// directly — the facade is the one seam hosts are meant to depend on.
type EngineError = errs.EngineError
type ErrorKind = errs.ErrorKind

const (
	KindParseError      = errs.KindParseError
	KindLintError       = errs.KindLintError
	KindRuntimeType     = errs.KindRuntimeType
	KindRuntimeArith    = errs.KindRuntimeArith
	KindRuntimeRef      = errs.KindRuntimeRef
	KindRuntimeArgs     = errs.KindRuntimeArgs
	KindRuntimeIO       = errs.KindRuntimeIO
	KindControlFault    = errs.KindControlFault
	KindPayloadTooLarge = errs.KindPayloadTooLarge
	KindHoldMismatch    = errs.KindHoldMismatch
)
