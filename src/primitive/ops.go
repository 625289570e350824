package primitive

import (
	"fmt"

	"github.com/csml-sh/csml-engine/src/token"
)

// OpError reports an arithmetic/comparison failure (division or modulus by
// zero, or an operator applied to an unsupported kind pair). The
// interpreter turns this into an EngineError of kind RuntimeArith
// (spec §7).
type OpError struct {
	Op      string
	Message string
}

func (e *OpError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Message) }

// Add implements `+`: numeric promotion to Float when either side is
// Float, string concatenation (stringifying a non-string right operand via
// its canonical form), array concatenation, and right-biased object merge.
func Add(a, b *Literal) (*Literal, error) {
	switch {
	case a.Primitive.Kind == KindString:
		return Str(a.Primitive.Str + b.String()), nil
	case b.Primitive.Kind == KindString && a.Primitive.Kind != KindString:
		return Str(a.String() + b.Primitive.Str), nil
	case a.Primitive.Kind == KindArray && b.Primitive.Kind == KindArray:
		out := make([]*Literal, 0, len(a.Primitive.ArrayV)+len(b.Primitive.ArrayV))
		out = append(out, a.Primitive.ArrayV...)
		out = append(out, b.Primitive.ArrayV...)
		return Array(out), nil
	case a.Primitive.Kind == KindObject && b.Primitive.Kind == KindObject:
		return mergeObjects(a, b), nil
	case isNumeric(a.Primitive.Kind) && isNumeric(b.Primitive.Kind):
		return numericOp(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
	default:
		return nil, &OpError{Op: "+", Message: fmt.Sprintf("cannot add %s and %s", a.Primitive.Kind, b.Primitive.Kind)}
	}
}

func mergeObjects(a, b *Literal) *Literal {
	keys := append([]string(nil), a.Primitive.ObjectKeys...)
	values := make(map[string]*Literal, len(a.Primitive.ObjectV))
	for k, v := range a.Primitive.ObjectV {
		values[k] = v
	}
	for _, k := range b.Primitive.ObjectKeys {
		if _, exists := values[k]; !exists {
			keys = append(keys, k)
		}
		values[k] = b.Primitive.ObjectV[k]
	}
	return Object(keys, values)
}

// Sub, Mul, Div, Mod implement `-`, `*`, `/`, `%`: numeric-only.
func Sub(a, b *Literal) (*Literal, error) { return numericOnly("-", a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y }) }
func Mul(a, b *Literal) (*Literal, error) { return numericOnly("*", a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }) }

func Div(a, b *Literal) (*Literal, error) {
	if !isNumeric(a.Primitive.Kind) || !isNumeric(b.Primitive.Kind) {
		return nil, &OpError{Op: "/", Message: fmt.Sprintf("cannot divide %s by %s", a.Primitive.Kind, b.Primitive.Kind)}
	}
	if a.Primitive.Kind == KindInt && b.Primitive.Kind == KindInt {
		if b.Primitive.IntV == 0 {
			return nil, &OpError{Op: "/", Message: "division by zero"}
		}
		return Int(a.Primitive.IntV / b.Primitive.IntV), nil
	}
	bf := asFloat(b.Primitive)
	if bf == 0 {
		return nil, &OpError{Op: "/", Message: "division by zero"}
	}
	return Float(asFloat(a.Primitive) / bf), nil
}

func Mod(a, b *Literal) (*Literal, error) {
	if !isNumeric(a.Primitive.Kind) || !isNumeric(b.Primitive.Kind) {
		return nil, &OpError{Op: "%", Message: fmt.Sprintf("cannot take modulus of %s by %s", a.Primitive.Kind, b.Primitive.Kind)}
	}
	if a.Primitive.Kind == KindInt && b.Primitive.Kind == KindInt {
		if b.Primitive.IntV == 0 {
			return nil, &OpError{Op: "%", Message: "modulus by zero"}
		}
		return Int(a.Primitive.IntV % b.Primitive.IntV), nil
	}
	bf := asFloat(b.Primitive)
	if bf == 0 {
		return nil, &OpError{Op: "%", Message: "modulus by zero"}
	}
	af := asFloat(a.Primitive)
	return Float(af - bf*float64(int64(af/bf))), nil
}

func numericOnly(op string, a, b *Literal, intFn func(int64, int64) int64, floatFn func(float64, float64) float64) (*Literal, error) {
	if !isNumeric(a.Primitive.Kind) || !isNumeric(b.Primitive.Kind) {
		return nil, &OpError{Op: op, Message: fmt.Sprintf("operator %s not defined for %s and %s", op, a.Primitive.Kind, b.Primitive.Kind)}
	}
	return numericOp(a, b, intFn, floatFn)
}

func numericOp(a, b *Literal, intFn func(int64, int64) int64, floatFn func(float64, float64) float64) (*Literal, error) {
	if a.Primitive.Kind == KindInt && b.Primitive.Kind == KindInt {
		return Int(intFn(a.Primitive.IntV, b.Primitive.IntV)), nil
	}
	return Float(floatFn(asFloat(a.Primitive), asFloat(b.Primitive))), nil
}

// Compare implements `< <= > >=` per spec §4.2: numeric coercion between
// Int/Float, lexicographic for String, lexicographic-over-elements for
// Array, Object and Null are unordered (always false).
func Compare(op token.Kind, a, b *Literal) bool {
	switch {
	case isNumeric(a.Primitive.Kind) && isNumeric(b.Primitive.Kind):
		return compareFloat(op, asFloat(a.Primitive), asFloat(b.Primitive))
	case a.Primitive.Kind == KindString && b.Primitive.Kind == KindString:
		return compareStr(op, a.Primitive.Str, b.Primitive.Str)
	case a.Primitive.Kind == KindArray && b.Primitive.Kind == KindArray:
		return compareArray(op, a.Primitive.ArrayV, b.Primitive.ArrayV)
	default:
		return false
	}
}

func compareFloat(op token.Kind, x, y float64) bool {
	switch op {
	case token.LT:
		return x < y
	case token.LT_EQ:
		return x <= y
	case token.GT:
		return x > y
	case token.GT_EQ:
		return x >= y
	}
	return false
}

func compareStr(op token.Kind, x, y string) bool {
	switch op {
	case token.LT:
		return x < y
	case token.LT_EQ:
		return x <= y
	case token.GT:
		return x > y
	case token.GT_EQ:
		return x >= y
	}
	return false
}

func compareArray(op token.Kind, x, y []*Literal) bool {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if x[i].Equal(y[i]) {
			continue
		}
		lt := compareLiteralLess(x[i], y[i])
		switch op {
		case token.LT, token.LT_EQ:
			return lt
		case token.GT, token.GT_EQ:
			return !lt
		}
	}
	switch op {
	case token.LT:
		return len(x) < len(y)
	case token.LT_EQ:
		return len(x) <= len(y)
	case token.GT:
		return len(x) > len(y)
	case token.GT_EQ:
		return len(x) >= len(y)
	}
	return false
}

func compareLiteralLess(a, b *Literal) bool {
	switch {
	case isNumeric(a.Primitive.Kind) && isNumeric(b.Primitive.Kind):
		return asFloat(a.Primitive) < asFloat(b.Primitive)
	case a.Primitive.Kind == KindString && b.Primitive.Kind == KindString:
		return a.Primitive.Str < b.Primitive.Str
	default:
		return false
	}
}

// And, Or implement `&&`/`||` with short-circuit evaluation left to the
// evaluator; these combine two already-evaluated operands' truthiness.
func And(a, b *Literal) *Literal { return Bool(a.Truthy() && b.Truthy()) }
func Or(a, b *Literal) *Literal  { return Bool(a.Truthy() || b.Truthy()) }

// Not implements postfix `!`.
func Not(a *Literal) *Literal { return Bool(!a.Truthy()) }
