package interpreter

import (
	"fmt"
	"regexp"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/errs"
	"github.com/csml-sh/csml-engine/src/primitive"
)

// signalKind is the control signal a statement/scope can yield (spec
// §4.4.1's "Goto(flow?, step?), End, Hold, Break, Continue, Error").
type signalKind int

const (
	sigNone signalKind = iota
	sigBreak
	sigContinue
	sigReturn
	sigGoto
	sigEnd
	sigHold
)

type signal struct {
	kind         signalKind
	returnValue  *primitive.Literal
	gotoTarget   string
	holdDuration *primitive.Literal
}

var noSignal = signal{kind: sigNone}

// execCtx threads the hold-resume cursor through nested scope execution.
// While skip is true, statements are walked without side effects until the
// shared commandIndex reaches target; loopIdx supplies, depth-first, which
// iteration index a resumed loop should jump directly to (spec §4.4 step 4:
// "skip commands up to command_index and continue inside nested loops using
// loop_index").
type execCtx struct {
	commandIndex int
	skip         bool
	target       int
	loopIdx      []int
}

func (in *Interpreter) execScope(scope *ast.Scope, ec *execCtx) (signal, error) {
	for _, stmt := range scope.Body {
		sig, err := in.execStmt(stmt, ec)
		if err != nil {
			return noSignal, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return noSignal, nil
}

func (in *Interpreter) execStmt(stmt ast.Expr, ec *execCtx) (signal, error) {
	in.commandIndex++
	ec.commandIndex = in.commandIndex

	if ec.skip && ec.commandIndex < ec.target {
		switch n := stmt.(type) {
		case *ast.ForEachExpr:
			return in.execForEach(n, ec)
		case *ast.WhileExpr:
			return in.execWhile(n, ec)
		case *ast.IfExpr:
			return in.execIf(n, ec)
		default:
			return noSignal, nil
		}
	}
	ec.skip = false

	switch n := stmt.(type) {
	case *ast.IfExpr:
		return in.execIf(n, ec)
	case *ast.ForEachExpr:
		return in.execForEach(n, ec)
	case *ast.WhileExpr:
		return in.execWhile(n, ec)
	case *ast.ObjectExpr:
		return in.execObject(n)
	default:
		_, err := in.evalExpr(stmt)
		return noSignal, err
	}
}

func (in *Interpreter) execIf(n *ast.IfExpr, ec *execCtx) (signal, error) {
	for _, br := range n.Branches {
		if br.Cond != nil {
			v, err := in.evalExpr(br.Cond)
			if err != nil {
				return noSignal, err
			}
			if !v.Truthy() {
				continue
			}
		}
		childEc := &execCtx{commandIndex: in.commandIndex, skip: ec.skip, target: ec.target, loopIdx: ec.loopIdx}
		sig, err := in.execScope(br.Body, childEc)
		in.commandIndex = childEc.commandIndex
		return sig, err
	}
	return noSignal, nil
}

func (in *Interpreter) execForEach(n *ast.ForEachExpr, ec *execCtx) (signal, error) {
	iterable, err := in.evalExpr(n.Iterable)
	if err != nil {
		return noSignal, err
	}

	startIdx := 0
	childLoopIdx := ec.loopIdx
	if ec.skip && len(ec.loopIdx) > 0 {
		startIdx = ec.loopIdx[0]
		childLoopIdx = ec.loopIdx[1:]
	}

	switch iterable.Primitive.Kind {
	case primitive.KindArray:
		items := iterable.Primitive.ArrayV
		for i := startIdx; i < len(items); i++ {
			in.loopIndexStack = append(in.loopIndexStack, i)
			in.stepVars[n.ElemIdent] = items[i]
			if n.IdxIdent != "" {
				in.stepVars[n.IdxIdent] = primitive.Int(int64(i))
			}
			childEc := &execCtx{commandIndex: in.commandIndex, skip: ec.skip && i == startIdx, target: ec.target, loopIdx: childLoopIdx}
			sig, err := in.execScope(n.Body, childEc)
			in.commandIndex = childEc.commandIndex
			in.loopIndexStack = in.loopIndexStack[:len(in.loopIndexStack)-1]
			if err != nil {
				return noSignal, err
			}
			if sig.kind == sigBreak {
				return noSignal, nil
			}
			if sig.kind == sigContinue {
				continue
			}
			if sig.kind != sigNone {
				return sig, nil
			}
		}
		return noSignal, nil
	case primitive.KindObject:
		keys := iterable.Primitive.ObjectKeys
		for i := startIdx; i < len(keys); i++ {
			in.loopIndexStack = append(in.loopIndexStack, i)
			in.stepVars[n.ElemIdent] = primitive.Str(keys[i])
			if n.IdxIdent != "" {
				in.stepVars[n.IdxIdent] = primitive.Int(int64(i))
			}
			childEc := &execCtx{commandIndex: in.commandIndex, skip: ec.skip && i == startIdx, target: ec.target, loopIdx: childLoopIdx}
			sig, err := in.execScope(n.Body, childEc)
			in.commandIndex = childEc.commandIndex
			in.loopIndexStack = in.loopIndexStack[:len(in.loopIndexStack)-1]
			if err != nil {
				return noSignal, err
			}
			if sig.kind == sigBreak {
				return noSignal, nil
			}
			if sig.kind == sigContinue {
				continue
			}
			if sig.kind != sigNone {
				return sig, nil
			}
		}
		return noSignal, nil
	case primitive.KindString:
		chars := []rune(iterable.Primitive.Str)
		for i := startIdx; i < len(chars); i++ {
			in.loopIndexStack = append(in.loopIndexStack, i)
			in.stepVars[n.ElemIdent] = primitive.Str(string(chars[i]))
			if n.IdxIdent != "" {
				in.stepVars[n.IdxIdent] = primitive.Int(int64(i))
			}
			childEc := &execCtx{commandIndex: in.commandIndex, skip: ec.skip && i == startIdx, target: ec.target, loopIdx: childLoopIdx}
			sig, err := in.execScope(n.Body, childEc)
			in.commandIndex = childEc.commandIndex
			in.loopIndexStack = in.loopIndexStack[:len(in.loopIndexStack)-1]
			if err != nil {
				return noSignal, err
			}
			if sig.kind == sigBreak {
				return noSignal, nil
			}
			if sig.kind == sigContinue {
				continue
			}
			if sig.kind != sigNone {
				return sig, nil
			}
		}
		return noSignal, nil
	default:
		return noSignal, errs.New(errs.KindRuntimeType, fmt.Sprintf("foreach requires Array, Object, or String, got %s", iterable.Primitive.Kind), n.Span(), in.currentFlow, in.currentStep)
	}
}

func (in *Interpreter) execWhile(n *ast.WhileExpr, ec *execCtx) (signal, error) {
	iteration := 0
	childLoopIdx := ec.loopIdx
	startIdx := 0
	if ec.skip && len(ec.loopIdx) > 0 {
		startIdx = ec.loopIdx[0]
		childLoopIdx = ec.loopIdx[1:]
	}
	for {
		if !(ec.skip && iteration < startIdx) {
			v, err := in.evalExpr(n.Cond)
			if err != nil {
				return noSignal, err
			}
			if !v.Truthy() {
				return noSignal, nil
			}
		}
		in.loopIndexStack = append(in.loopIndexStack, iteration)
		childEc := &execCtx{commandIndex: in.commandIndex, skip: ec.skip && iteration == startIdx, target: ec.target, loopIdx: childLoopIdx}
		sig, err := in.execScope(n.Body, childEc)
		in.commandIndex = childEc.commandIndex
		in.loopIndexStack = in.loopIndexStack[:len(in.loopIndexStack)-1]
		if err != nil {
			return noSignal, err
		}
		if sig.kind == sigBreak {
			return noSignal, nil
		}
		if sig.kind != sigNone && sig.kind != sigContinue {
			return sig, nil
		}
		iteration++
	}
}

// execObject dispatches a reserved-statement ObjectExpr (spec §4.4.2).
func (in *Interpreter) execObject(n *ast.ObjectExpr) (signal, error) {
	switch n.Kind {
	case ast.FnSay:
		v, err := in.evalExpr(n.Value)
		if err != nil {
			return noSignal, err
		}
		in.emitMessage(v)
		return noSignal, nil

	case ast.FnDebug:
		v, err := in.evalExpr(n.Value)
		if err != nil {
			return noSignal, err
		}
		in.sink.Emit(sinkLogEvent(v.String(), in.currentFlow, in.currentStep))
		return noSignal, nil

	case ast.FnDo:
		_, err := in.evalExpr(n.Value)
		return noSignal, err

	case ast.FnUse:
		v, err := in.evalExpr(n.Value)
		if err != nil {
			return noSignal, err
		}
		if n.Alias != "" {
			in.stepVars[n.Alias] = v
		}
		return noSignal, nil

	case ast.FnAs:
		v, err := in.evalExpr(n.Value)
		if err != nil {
			return noSignal, err
		}
		in.stepVars[n.Alias] = v
		return noSignal, nil

	case ast.FnRemember:
		v, err := in.evalExpr(n.Value)
		if err != nil {
			return noSignal, err
		}
		in.rctx.Current[n.Key] = v
		in.memories = append(in.memories, hostMemoryWrite(n.Key, v, false))
		return noSignal, nil

	case ast.FnForget:
		if len(n.Args) > 0 {
			for _, a := range n.Args {
				if id, ok := a.(*ast.IdentExpr); ok {
					in.forgetOne(id.Name)
				}
			}
			return noSignal, nil
		}
		in.forgetOne(n.Key)
		return noSignal, nil

	case ast.FnGoto:
		return signal{kind: sigGoto, gotoTarget: n.Target}, nil

	case ast.FnHold:
		var dur *primitive.Literal
		if n.OptionalDuration != nil {
			v, err := in.evalExpr(n.OptionalDuration)
			if err != nil {
				return noSignal, err
			}
			dur = v
		}
		return signal{kind: sigHold, holdDuration: dur}, nil

	case ast.FnBreak:
		return signal{kind: sigBreak}, nil

	case ast.FnContinue:
		return signal{kind: sigContinue}, nil

	case ast.FnReturn:
		var v *primitive.Literal
		if n.Value != nil {
			val, err := in.evalExpr(n.Value)
			if err != nil {
				return noSignal, err
			}
			v = val
		} else {
			v = primitive.Null()
		}
		return signal{kind: sigReturn, returnValue: v}, nil

	case ast.FnAssign:
		_, err := in.execAssign(n.AssignPath, n.Value)
		return noSignal, err

	default:
		_, err := in.evalExpr(n)
		return noSignal, err
	}
}

func (in *Interpreter) forgetOne(key string) {
	if key == "ALL" || key == "*" {
		for k := range in.stepVars {
			delete(in.stepVars, k)
		}
		for k := range in.rctx.Current {
			delete(in.rctx.Current, k)
		}
		in.memories = append(in.memories, hostMemoryWrite("*", nil, true))
		return
	}
	delete(in.stepVars, key)
	delete(in.rctx.Current, key)
	in.memories = append(in.memories, hostMemoryWrite(key, nil, true))
}

// matchRegex implements the `=~`/`!~` operators (spec §3 grammar): the
// right operand's string form is compiled as an RE2 pattern (spec §9's
// regex-dialect Open Question, resolved onto Go's stdlib regexp) and
// matched against the left operand's string form.
func matchRegex(lhs, rhs *primitive.Literal) (bool, error) {
	re, err := regexp.Compile(rhs.String())
	if err != nil {
		return false, err
	}
	return re.MatchString(lhs.String()), nil
}
