package interpreter

import (
	"fmt"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/errs"
	"github.com/csml-sh/csml-engine/src/primitive"
	"github.com/csml-sh/csml-engine/src/token"
)

// resolveFunction implements spec §4.4.4's call-resolution order, steps
// 1-3 (built-ins are tried by the caller afterwards, step 4):
//  1. an import in the current flow whose call-site name (alias, or the
//     original name when unaliased) matches
//  2. a local function in the current flow
//  3. any function by that name in any flow (first match, in flow
//     declaration order for determinism)
func (in *Interpreter) resolveFunction(name string) (*ast.Function, bool) {
	flow := in.flows[in.currentFlow]
	if flow != nil {
		for _, imp := range flow.Imports {
			callName := imp.As
			if callName == "" {
				callName = imp.Name
			}
			if callName != name {
				continue
			}
			target := flow
			if imp.FromFlow != "" {
				target = in.flows[imp.FromFlow]
			}
			if target == nil {
				continue
			}
			if fn, ok := target.Functions[imp.OriginalName]; ok {
				return fn, true
			}
		}
		if fn, ok := flow.Functions[name]; ok {
			return fn, true
		}
	}
	for _, fname := range sortedFlowNames(in.flows) {
		if fn, ok := in.flows[fname].Functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

func sortedFlowNames(flows map[string]*ast.Flow) []string {
	names := make([]string, 0, len(flows))
	for n := range flows {
		names = append(names, n)
	}
	// Deterministic iteration over the bot's flows (declaration order isn't
	// tracked across flows, only within one — lexical sort is a stable,
	// reproducible tiebreak).
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}

// callFunction executes fn's body in a fresh step_vars scope (spec
// §4.4.4), bound positionally, guarded by a call-depth limit resolving
// spec §9's Open Question on recursion.
func (in *Interpreter) callFunction(fn *ast.Function, name string, args []*primitive.Literal, iv token.Interval) (*primitive.Literal, error) {
	in.callDepth++
	defer func() { in.callDepth-- }()
	if in.callDepth > callDepthLimit {
		return nil, errs.New(errs.KindControlFault, fmt.Sprintf("call depth exceeded calling %q (possible infinite recursion)", name), iv, in.currentFlow, in.currentStep)
	}

	savedVars := in.stepVars
	frame := make(map[string]*primitive.Literal, len(fn.Params))
	for i, p := range fn.Params {
		if i < len(args) {
			frame[p] = args[i]
		} else {
			frame[p] = primitive.Null()
		}
	}
	in.stepVars = frame

	ec := &execCtx{}
	sig, err := in.execScope(fn.Body, ec)
	in.stepVars = savedVars
	if err != nil {
		return nil, err
	}
	if sig.kind == sigReturn {
		return sig.returnValue, nil
	}
	return primitive.Null(), nil
}

// callClosure invokes a Closure primitive value (a `fn` reference bound
// into step_vars, e.g. via `as`), the same frame/depth discipline as
// callFunction but over the captured body.
func (in *Interpreter) callClosure(c *primitive.Closure, args []*primitive.Literal) (*primitive.Literal, error) {
	if c == nil {
		return primitive.Null(), nil
	}
	body, ok := c.Body.(*ast.Scope)
	if !ok {
		return primitive.Null(), nil
	}

	in.callDepth++
	defer func() { in.callDepth-- }()
	if in.callDepth > callDepthLimit {
		return nil, errs.New(errs.KindControlFault, "call depth exceeded calling a closure", body.Span(), in.currentFlow, in.currentStep)
	}

	savedVars := in.stepVars
	frame := make(map[string]*primitive.Literal, len(c.Params)+len(c.Captured))
	for k, v := range c.Captured {
		frame[k] = v
	}
	for i, p := range c.Params {
		if i < len(args) {
			frame[p] = args[i]
		} else {
			frame[p] = primitive.Null()
		}
	}
	in.stepVars = frame

	ec := &execCtx{}
	sig, err := in.execScope(body, ec)
	in.stepVars = savedVars
	if err != nil {
		return nil, err
	}
	if sig.kind == sigReturn {
		return sig.returnValue, nil
	}
	return primitive.Null(), nil
}
