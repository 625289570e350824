package parser

import "github.com/csml-sh/csml-engine/src/token"

// ErrorInfo is one parse diagnostic, as spec §4.1: a source position, a
// human-readable message, and optional structured context.
type ErrorInfo struct {
	Position       token.Interval
	Message        string
	AdditionalInfo map[string]string
}
