package primitive

import (
	"fmt"
	"math"
)

var numericMethods = map[string]func(f float64, isFloat bool, args []*Literal) (*Literal, error){
	"abs": func(f float64, isFloat bool, args []*Literal) (*Literal, error) {
		if !isFloat {
			if f < 0 {
				f = -f
			}
			return Int(int64(f)), nil
		}
		return Float(math.Abs(f)), nil
	},
	"floor": func(f float64, isFloat bool, args []*Literal) (*Literal, error) { return Int(int64(math.Floor(f))), nil },
	"ceil":  func(f float64, isFloat bool, args []*Literal) (*Literal, error) { return Int(int64(math.Ceil(f))), nil },
	"round": func(f float64, isFloat bool, args []*Literal) (*Literal, error) { return Int(int64(math.Round(f))), nil },
	"pow": func(f float64, isFloat bool, args []*Literal) (*Literal, error) {
		if len(args) == 0 {
			return nil, &OpError{Op: "pow", Message: "pow requires one argument"}
		}
		exp := asFloat(args[0].Primitive)
		r := math.Pow(f, exp)
		if !isFloat && args[0].Primitive.Kind == KindInt {
			return Int(int64(r)), nil
		}
		return Float(r), nil
	},
	"sqrt":      func(f float64, isFloat bool, args []*Literal) (*Literal, error) { return Float(math.Sqrt(f)), nil },
	"to_string": func(f float64, isFloat bool, args []*Literal) (*Literal, error) { return Str(formatNumeric(f, isFloat)), nil },
	"is_nan":    func(f float64, isFloat bool, args []*Literal) (*Literal, error) { return Bool(isFloat && math.IsNaN(f)), nil },
}

func formatNumeric(f float64, isFloat bool) string {
	if isFloat {
		return fmt.Sprintf("%g", f)
	}
	return fmt.Sprintf("%d", int64(f))
}

// CallNumericMethod dispatches a method call on an Int or Float primitive.
func CallNumericMethod(recv *Literal, method string, args []*Literal) (*Literal, error) {
	fn, ok := numericMethods[method]
	if !ok {
		return nil, &OpError{Op: method, Message: fmt.Sprintf("no such numeric method %q", method)}
	}
	isFloat := recv.Primitive.Kind == KindFloat
	return fn(asFloat(recv.Primitive), isFloat, args)
}

func HasNumericMethod(method string) bool {
	_, ok := numericMethods[method]
	return ok
}
