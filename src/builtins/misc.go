package builtins

import "github.com/csml-sh/csml-engine/src/primitive"

// Exists implements `exists(name)`: boolean, present in step_vars or
// context.current (spec §4.3 table). Scope lookup itself stays in package
// interpreter (the only place that owns step_vars/context); this just
// wraps the presence check the evaluator already has to perform.
func Exists(stepVars, contextCurrent map[string]*primitive.Literal, name string) *primitive.Literal {
	if _, ok := stepVars[name]; ok {
		return primitive.Bool(true)
	}
	if _, ok := contextCurrent[name]; ok {
		return primitive.Bool(true)
	}
	return primitive.Bool(false)
}

// Debug implements `debug(a, b, ...)`: it returns the evaluated arguments
// as an Array value. The sink.Event of kind Log is emitted by the
// interpreter's `debug EXPR` statement, not by this function.
func Debug(args ...*primitive.Literal) *primitive.Literal {
	return primitive.Array(args)
}
