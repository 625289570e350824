package interpreter

import (
	"fmt"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/builtins"
	"github.com/csml-sh/csml-engine/src/components"
	"github.com/csml-sh/csml-engine/src/errs"
	"github.com/csml-sh/csml-engine/src/primitive"
	"github.com/csml-sh/csml-engine/src/token"
)

// evalPath evaluates a member/index/method/call chain (spec §3's PathExpr).
// The root may resolve to a plain value, or — when it is a bare identifier
// whose first segment is a direct call — to a builtin, component, or
// user-defined function invocation (spec §4.4.4's call-resolution order).
func (in *Interpreter) evalPath(n *ast.PathExpr) (interface{}, error) {
	if root, ok := n.Literal.(*ast.IdentExpr); ok && len(n.Path) > 0 && n.Path[0].Kind == ast.PathCall && n.Path[0].Ident == "" {
		if _, isVar := in.stepVars[root.Name]; !isVar {
			if _, isCtx := in.rctx.Current[root.Name]; !isCtx {
				val, err := in.evalDirectCall(root.Name, n.Path[0].Args, root.Span())
				if err != nil {
					return nil, err
				}
				return in.applyPathSegments(val, n.Path[1:])
			}
		}
	}

	cur, err := in.evalRaw(n.Literal)
	if err != nil {
		return nil, err
	}
	return in.applyPathSegments(cur, n.Path)
}

func (in *Interpreter) applyPathSegments(cur interface{}, segs []ast.PathSegment) (interface{}, error) {
	var err error
	for _, seg := range segs {
		cur, err = in.applySegment(cur, seg)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (in *Interpreter) applySegment(cur interface{}, seg ast.PathSegment) (interface{}, error) {
	switch v := cur.(type) {
	case *builtinHandle:
		return in.dispatchBuiltinMethod(v, seg)
	case *primitive.Literal:
		return in.applyLiteralSegment(v, seg)
	default:
		return nil, errs.New(errs.KindRuntimeType, "path segment applied to a non-value", token.Interval{}, in.currentFlow, in.currentStep)
	}
}

func (in *Interpreter) applyLiteralSegment(v *primitive.Literal, seg ast.PathSegment) (interface{}, error) {
	switch seg.Kind {
	case ast.PathDot:
		return in.memberAccess(v, seg.Ident)
	case ast.PathIndex:
		idx, err := in.evalExpr(seg.Index)
		if err != nil {
			return nil, err
		}
		return in.indexAccess(v, idx)
	case ast.PathCall:
		args, err := in.evalArgs(seg.Args)
		if err != nil {
			return nil, err
		}
		if v.Primitive.Kind == primitive.KindClosure && seg.Ident == "" {
			return in.callClosure(v.Primitive.ClosureV, args)
		}
		result, err := primitive.CallMethod(v, seg.Ident, args)
		if err != nil {
			return nil, errs.Wrap(errs.KindRuntimeArgs, err, v.Interval, in.currentFlow, in.currentStep)
		}
		return result, nil
	default:
		return nil, errs.New(errs.KindRuntimeType, "unknown path segment kind", v.Interval, in.currentFlow, in.currentStep)
	}
}

func (in *Interpreter) memberAccess(v *primitive.Literal, name string) (*primitive.Literal, error) {
	if v.Primitive.Kind != primitive.KindObject {
		return nil, errs.New(errs.KindRuntimeType, fmt.Sprintf("cannot access field %q of %s", name, v.Primitive.Kind), v.Interval, in.currentFlow, in.currentStep)
	}
	val, ok := v.Primitive.ObjectV[name]
	if !ok {
		return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("field %q not present", name), v.Interval, in.currentFlow, in.currentStep)
	}
	return val, nil
}

func (in *Interpreter) indexAccess(v, idx *primitive.Literal) (*primitive.Literal, error) {
	switch v.Primitive.Kind {
	case primitive.KindArray:
		if idx.Primitive.Kind != primitive.KindInt {
			return nil, errs.New(errs.KindRuntimeType, "array index must be an int", v.Interval, in.currentFlow, in.currentStep)
		}
		i := idx.Primitive.IntV
		if i < 0 || int(i) >= len(v.Primitive.ArrayV) {
			return nil, errs.New(errs.KindRuntimeArgs, fmt.Sprintf("array index %d out of bounds", i), v.Interval, in.currentFlow, in.currentStep)
		}
		return v.Primitive.ArrayV[i], nil
	case primitive.KindObject:
		if idx.Primitive.Kind != primitive.KindString {
			return nil, errs.New(errs.KindRuntimeType, "object index must be a string", v.Interval, in.currentFlow, in.currentStep)
		}
		val, ok := v.Primitive.ObjectV[idx.Primitive.Str]
		if !ok {
			return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("field %q not present", idx.Primitive.Str), v.Interval, in.currentFlow, in.currentStep)
		}
		return val, nil
	case primitive.KindString:
		if idx.Primitive.Kind != primitive.KindInt {
			return nil, errs.New(errs.KindRuntimeType, "string index must be an int", v.Interval, in.currentFlow, in.currentStep)
		}
		chars := []rune(v.Primitive.Str)
		i := idx.Primitive.IntV
		if i < 0 || int(i) >= len(chars) {
			return nil, errs.New(errs.KindRuntimeArgs, fmt.Sprintf("string index %d out of bounds", i), v.Interval, in.currentFlow, in.currentStep)
		}
		return primitive.Str(string(chars[i])), nil
	default:
		return nil, errs.New(errs.KindRuntimeType, fmt.Sprintf("cannot index %s", v.Primitive.Kind), v.Interval, in.currentFlow, in.currentStep)
	}
}

func (in *Interpreter) evalArgs(exprs []ast.Expr) ([]*primitive.Literal, error) {
	args := make([]*primitive.Literal, len(exprs))
	for i, e := range exprs {
		v, err := in.evalExpr(e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// evalDirectCall resolves and invokes a bare `NAME(args...)` call in the
// order spec §4.4.4 prescribes: import/local/any-flow function, then
// built-in. `exists(name)` is special-cased because its argument is the
// identifier's name itself, not an evaluated value (spec §4.3 table).
func (in *Interpreter) evalDirectCall(name string, argExprs []ast.Expr, iv token.Interval) (interface{}, error) {
	if name == "exists" {
		varName := ""
		if len(argExprs) > 0 {
			if ident, ok := argExprs[0].(*ast.IdentExpr); ok {
				varName = ident.Name
			} else if v, err := in.evalExpr(argExprs[0]); err == nil {
				varName = v.String()
			}
		}
		return builtins.Exists(in.stepVars, in.rctx.Current, varName), nil
	}

	if fn, ok := in.resolveFunction(name); ok {
		args, err := in.evalArgs(argExprs)
		if err != nil {
			return nil, err
		}
		return in.callFunction(fn, name, args, iv)
	}

	if builtins.IsBuiltin(name) {
		args, err := in.evalArgs(argExprs)
		if err != nil {
			return nil, err
		}
		return in.callBuiltin(name, args, iv)
	}

	if schema, ok := in.components.Lookup(name); ok {
		args, err := in.evalArgs(argExprs)
		if err != nil {
			return nil, err
		}
		return in.buildComponent(schema, args, iv)
	}

	return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("function %q not found", name), iv, in.currentFlow, in.currentStep)
}

func (in *Interpreter) buildComponent(schema *components.ComponentSchema, args []*primitive.Literal, iv token.Interval) (*primitive.Literal, error) {
	bound := map[string]*primitive.Literal{}
	for i, p := range schema.Params {
		if i < len(args) {
			bound[p.Name] = args[i]
		}
	}
	lit, err := schema.Build(bound)
	if err != nil {
		return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
	}
	return lit, nil
}
