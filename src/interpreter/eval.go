package interpreter

import (
	"fmt"
	"strconv"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/errs"
	"github.com/csml-sh/csml-engine/src/primitive"
	"github.com/csml-sh/csml-engine/src/token"
)

// builtinHandle boxes an in-progress builder chain (HTTP/SMTP/Crypto/
// Base64/Hex/JWT) while PathExpr segments are applied one at a time; it
// never escapes evalExpr as a final value — see collapseHandle.
type builtinHandle struct {
	kind string
	val  interface{}
}

// evalExpr is the evaluator's single entry point (spec §4.4): dispatches
// on the concrete Expr type and always resolves to a *primitive.Literal,
// collapsing any dangling builder chain.
func (in *Interpreter) evalExpr(e ast.Expr) (*primitive.Literal, error) {
	v, err := in.evalRaw(e)
	if err != nil {
		return in.recoverRuntimeError(e, err)
	}
	return in.collapseHandle(e, v)
}

func (in *Interpreter) collapseHandle(e ast.Expr, v interface{}) (*primitive.Literal, error) {
	switch t := v.(type) {
	case *primitive.Literal:
		return t, nil
	case *builtinHandle:
		// A builder chain used as a value without reaching its terminal
		// method (e.g. a bare `HTTP(url)`) has no Message-able value.
		Logger.Debug("builder chain used without a terminal call")
		return primitive.Null(), nil
	default:
		return primitive.Null(), nil
	}
}

// recoverRuntimeError implements spec §4.4.6's failure semantics for
// non-control faults: the failing expression resolves to Null with
// additional_info.error, and an "error" Message is appended, execution
// continuing from the next command.
func (in *Interpreter) recoverRuntimeError(e ast.Expr, err error) (*primitive.Literal, error) {
	ee, ok := err.(*errs.EngineError)
	if !ok {
		ee = errs.Wrap(errs.KindRuntimeType, err, e.Span(), in.currentFlow, in.currentStep)
	}
	if isControlFault(ee.Kind) {
		return nil, ee
	}
	in.emitErrorMessage(ee)
	null := primitive.Null().WithAdditionalInfo("error", primitive.Str(ee.Error()))
	return null, nil
}

func isControlFault(k errs.ErrorKind) bool {
	return k == errs.KindControlFault || k == errs.KindPayloadTooLarge || k == errs.KindHoldMismatch
}

// evalRaw is the un-recovering evaluator core: it returns a raw error
// rather than absorbing it, so PathExpr chains can propagate a builder
// handle between segments without forcing every intermediate step through
// collapseHandle.
func (in *Interpreter) evalRaw(e ast.Expr) (interface{}, error) {
	switch n := e.(type) {
	case *ast.LitExpr:
		return in.evalLit(n)
	case *ast.ComplexLiteral:
		return in.evalComplexLiteral(n)
	case *ast.IdentExpr:
		return in.lookupIdent(n.Name, n.Span())
	case *ast.MapExpr:
		return in.evalMapExpr(n)
	case *ast.VecExpr:
		return in.evalVecExpr(n)
	case *ast.InfixExpr:
		return in.evalInfix(n)
	case *ast.PostfixExpr:
		v, err := in.evalExpr(n.Inner)
		if err != nil {
			return nil, err
		}
		return primitive.Not(v), nil
	case *ast.PathExpr:
		return in.evalPath(n)
	case *ast.ObjectExpr:
		sig, err := in.execObject(n)
		if err != nil {
			return nil, err
		}
		if sig.kind == sigReturn {
			return sig.returnValue, nil
		}
		return primitive.Null(), nil
	default:
		return nil, errs.New(errs.KindRuntimeType, fmt.Sprintf("cannot evaluate %T", e), e.Span(), in.currentFlow, in.currentStep)
	}
}

func (in *Interpreter) evalLit(n *ast.LitExpr) (*primitive.Literal, error) {
	switch n.Kind {
	case token.STRING:
		return primitive.NewAt(primitive.Primitive{Kind: primitive.KindString, Str: n.Raw}, n.Interval), nil
	case token.INT:
		i, err := strconv.ParseInt(n.Raw, 10, 64)
		if err != nil {
			return nil, errs.Wrap(errs.KindRuntimeType, err, n.Interval, in.currentFlow, in.currentStep)
		}
		return primitive.NewAt(primitive.Primitive{Kind: primitive.KindInt, IntV: i}, n.Interval), nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(n.Raw, 64)
		if err != nil {
			return nil, errs.Wrap(errs.KindRuntimeType, err, n.Interval, in.currentFlow, in.currentStep)
		}
		return primitive.NewAt(primitive.Primitive{Kind: primitive.KindFloat, FloatV: f}, n.Interval), nil
	case token.TRUE:
		return primitive.NewAt(primitive.Primitive{Kind: primitive.KindBoolean, BoolV: true}, n.Interval), nil
	case token.FALSE:
		return primitive.NewAt(primitive.Primitive{Kind: primitive.KindBoolean, BoolV: false}, n.Interval), nil
	case token.NULL:
		return primitive.NewAt(primitive.Primitive{Kind: primitive.KindNull}, n.Interval), nil
	default:
		return nil, errs.New(errs.KindRuntimeType, "unrecognized literal kind", n.Interval, in.currentFlow, in.currentStep)
	}
}

func (in *Interpreter) evalComplexLiteral(n *ast.ComplexLiteral) (*primitive.Literal, error) {
	s := ""
	for _, chunk := range n.Chunks {
		v, err := in.evalExpr(chunk)
		if err != nil {
			return nil, err
		}
		s += v.String()
	}
	return primitive.NewAt(primitive.Primitive{Kind: primitive.KindString, Str: s}, n.Interval), nil
}

func (in *Interpreter) evalMapExpr(n *ast.MapExpr) (*primitive.Literal, error) {
	keys := make([]string, 0, len(n.Keys))
	values := make(map[string]*primitive.Literal, len(n.Keys))

	if n.Update && n.SpreadBase != nil {
		base, err := in.evalExpr(n.SpreadBase)
		if err != nil {
			return nil, err
		}
		if base.Primitive.Kind == primitive.KindObject {
			keys = append(keys, base.Primitive.ObjectKeys...)
			for k, v := range base.Primitive.ObjectV {
				values[k] = v
			}
		}
	}

	for i, k := range n.Keys {
		v, err := in.evalExpr(n.Values[i])
		if err != nil {
			return nil, err
		}
		if _, exists := values[k]; !exists {
			keys = append(keys, k)
		}
		values[k] = v
	}
	return primitive.NewAt(primitive.Primitive{Kind: primitive.KindObject, ObjectKeys: keys, ObjectV: values}, n.Interval), nil
}

func (in *Interpreter) evalVecExpr(n *ast.VecExpr) (*primitive.Literal, error) {
	items := make([]*primitive.Literal, len(n.Elements))
	for i, el := range n.Elements {
		v, err := in.evalExpr(el)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return primitive.NewAt(primitive.Primitive{Kind: primitive.KindArray, ArrayV: items}, n.Interval), nil
}

func (in *Interpreter) evalInfix(n *ast.InfixExpr) (*primitive.Literal, error) {
	if n.Op == token.AND {
		lhs, err := in.evalExpr(n.LHS)
		if err != nil {
			return nil, err
		}
		if !lhs.Truthy() {
			return primitive.Bool(false), nil
		}
		rhs, err := in.evalExpr(n.RHS)
		if err != nil {
			return nil, err
		}
		return primitive.Bool(rhs.Truthy()), nil
	}
	if n.Op == token.OR {
		lhs, err := in.evalExpr(n.LHS)
		if err != nil {
			return nil, err
		}
		if lhs.Truthy() {
			return primitive.Bool(true), nil
		}
		rhs, err := in.evalExpr(n.RHS)
		if err != nil {
			return nil, err
		}
		return primitive.Bool(rhs.Truthy()), nil
	}

	lhs, err := in.evalExpr(n.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := in.evalExpr(n.RHS)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case token.PLUS:
		v, err := primitive.Add(lhs, rhs)
		return v, wrapOpErr(err, n, in)
	case token.MINUS:
		v, err := primitive.Sub(lhs, rhs)
		return v, wrapOpErr(err, n, in)
	case token.STAR:
		v, err := primitive.Mul(lhs, rhs)
		return v, wrapOpErr(err, n, in)
	case token.SLASH:
		v, err := primitive.Div(lhs, rhs)
		return v, wrapOpErr(err, n, in)
	case token.PERCENT:
		v, err := primitive.Mod(lhs, rhs)
		return v, wrapOpErr(err, n, in)
	case token.EQ:
		return primitive.Bool(lhs.Equal(rhs)), nil
	case token.NOT_EQ:
		return primitive.Bool(!lhs.Equal(rhs)), nil
	case token.LT, token.LT_EQ, token.GT, token.GT_EQ:
		return primitive.Bool(primitive.Compare(n.Op, lhs, rhs)), nil
	case token.MATCH:
		ok, err := matchRegex(lhs, rhs)
		if err != nil {
			return nil, errs.Wrap(errs.KindRuntimeArgs, err, n.Span(), in.currentFlow, in.currentStep)
		}
		return primitive.Bool(ok), nil
	case token.NOT_MATCH:
		ok, err := matchRegex(lhs, rhs)
		if err != nil {
			return nil, errs.Wrap(errs.KindRuntimeArgs, err, n.Span(), in.currentFlow, in.currentStep)
		}
		return primitive.Bool(!ok), nil
	default:
		return nil, errs.New(errs.KindRuntimeType, fmt.Sprintf("unsupported operator %s", n.Op), n.Span(), in.currentFlow, in.currentStep)
	}
}

func wrapOpErr(err error, n *ast.InfixExpr, in *Interpreter) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*primitive.OpError); ok {
		return errs.Wrap(errs.KindRuntimeArith, err, n.Span(), in.currentFlow, in.currentStep)
	}
	return errs.Wrap(errs.KindRuntimeType, err, n.Span(), in.currentFlow, in.currentStep)
}

// lookupIdent resolves a bare identifier (spec §4.4: step_vars, then
// context.current, then flow constants).
func (in *Interpreter) lookupIdent(name string, iv token.Interval) (*primitive.Literal, error) {
	if v, ok := in.stepVars[name]; ok {
		return v, nil
	}
	if v, ok := in.rctx.Current[name]; ok {
		return v, nil
	}
	if v, ok := in.resolveConstant(name); ok {
		return v, nil
	}
	return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("undefined identifier %q", name), iv, in.currentFlow, in.currentStep)
}

func (in *Interpreter) resolveConstant(name string) (*primitive.Literal, bool) {
	flow := in.flows[in.currentFlow]
	if flow == nil {
		return nil, false
	}
	cache := in.constCache[in.currentFlow]
	if cache == nil {
		cache = map[string]*primitive.Literal{}
		in.constCache[in.currentFlow] = cache
	}
	if v, ok := cache[name]; ok {
		return v, true
	}
	c, ok := flow.Constants[name]
	if !ok {
		return nil, false
	}
	v, err := in.evalExpr(c.Value)
	if err != nil {
		return nil, false
	}
	cache[name] = v
	return v, true
}

// execAssign implements `path = expr` (spec §3's Assign form): the target
// path's root variable is resolved in step_vars first, falling back to
// context.current, defaulting to step_vars when absent (spec §4.4.2's `do`
// assignment-fallback rule, generalized to every assignment statement).
func (in *Interpreter) execAssign(path *ast.PathExpr, valueExpr ast.Expr) (*primitive.Literal, error) {
	val, err := in.evalExpr(valueExpr)
	if err != nil {
		return nil, err
	}
	root, ok := path.Literal.(*ast.IdentExpr)
	if !ok {
		return nil, errs.New(errs.KindRuntimeType, "assignment target must be a variable path", path.Span(), in.currentFlow, in.currentStep)
	}

	if len(path.Path) == 0 {
		in.assignRoot(root.Name, val)
		return val, nil
	}

	container, scope := in.rootContainer(root.Name)
	if container == nil {
		container = primitive.Null()
		scope[root.Name] = container
	}
	if err := assignInto(container, path.Path, val); err != nil {
		return nil, errs.Wrap(errs.KindRuntimeType, err, path.Span(), in.currentFlow, in.currentStep)
	}
	return val, nil
}

// assignRoot writes a bare-identifier assignment target, updating whichever
// scope already holds the name (step_vars first, else context.current),
// defaulting to step_vars when the name is new.
func (in *Interpreter) assignRoot(name string, val *primitive.Literal) {
	if _, ok := in.stepVars[name]; ok {
		in.stepVars[name] = val
		return
	}
	if _, ok := in.rctx.Current[name]; ok {
		in.rctx.Current[name] = val
		return
	}
	in.stepVars[name] = val
}

func (in *Interpreter) rootContainer(name string) (*primitive.Literal, map[string]*primitive.Literal) {
	if v, ok := in.stepVars[name]; ok {
		return v, in.stepVars
	}
	if v, ok := in.rctx.Current[name]; ok {
		return v, in.rctx.Current
	}
	return nil, in.stepVars
}

// assignInto walks path against container, in place, writing val at the
// final segment. Only Dot and Index segments are valid assignment targets.
func assignInto(container *primitive.Literal, path []ast.PathSegment, val *primitive.Literal) error {
	cur := container
	for i, seg := range path {
		last := i == len(path)-1
		switch seg.Kind {
		case ast.PathDot:
			if cur.Primitive.Kind != primitive.KindObject {
				return fmt.Errorf("cannot assign field %q on non-object", seg.Ident)
			}
			if last {
				if _, exists := cur.Primitive.ObjectV[seg.Ident]; !exists {
					cur.Primitive.ObjectKeys = append(cur.Primitive.ObjectKeys, seg.Ident)
				}
				cur.Primitive.ObjectV[seg.Ident] = val
				return nil
			}
			next, ok := cur.Primitive.ObjectV[seg.Ident]
			if !ok {
				next = primitive.Object(nil, map[string]*primitive.Literal{})
				cur.Primitive.ObjectKeys = append(cur.Primitive.ObjectKeys, seg.Ident)
				cur.Primitive.ObjectV[seg.Ident] = next
			}
			cur = next
		case ast.PathIndex:
			return fmt.Errorf("indexed assignment is not supported")
		default:
			return fmt.Errorf("method call is not an assignable path segment")
		}
	}
	return nil
}
