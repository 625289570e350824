package primitive

import (
	"fmt"
	"strings"
)

var arrayMethods = map[string]func(arr []*Literal, args []*Literal) (*Literal, []*Literal, error){
	"length":   func(arr, args []*Literal) (*Literal, []*Literal, error) { return Int(int64(len(arr))), arr, nil },
	"is_empty": func(arr, args []*Literal) (*Literal, []*Literal, error) { return Bool(len(arr) == 0), arr, nil },
	"push": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		if len(args) == 0 {
			return nil, arr, &OpError{Op: "push", Message: "push requires one argument"}
		}
		return nil, append(append([]*Literal(nil), arr...), args[0]), nil
	},
	"pop": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		if len(arr) == 0 {
			return Null(), arr, nil
		}
		return arr[len(arr)-1], arr[:len(arr)-1], nil
	},
	"shift": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		if len(arr) == 0 {
			return Null(), arr, nil
		}
		return arr[0], arr[1:], nil
	},
	"unshift": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		if len(args) == 0 {
			return nil, arr, &OpError{Op: "unshift", Message: "unshift requires one argument"}
		}
		return nil, append([]*Literal{args[0]}, arr...), nil
	},
	"index_of": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		if len(args) == 0 {
			return Int(-1), arr, nil
		}
		for i, v := range arr {
			if v.Equal(args[0]) {
				return Int(int64(i)), arr, nil
			}
		}
		return Int(-1), arr, nil
	},
	"contains": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		if len(args) == 0 {
			return Bool(false), arr, nil
		}
		for _, v := range arr {
			if v.Equal(args[0]) {
				return Bool(true), arr, nil
			}
		}
		return Bool(false), arr, nil
	},
	"find": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		if len(args) == 0 {
			return Null(), arr, nil
		}
		for _, v := range arr {
			if v.Equal(args[0]) {
				return v, arr, nil
			}
		}
		return Null(), arr, nil
	},
	"slice": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		start, end := 0, len(arr)
		if len(args) > 0 {
			start = int(args[0].Primitive.IntV)
		}
		if len(args) > 1 {
			end = int(args[1].Primitive.IntV)
		}
		if start < 0 {
			start = 0
		}
		if end > len(arr) {
			end = len(arr)
		}
		if start > end {
			start = end
		}
		out := append([]*Literal(nil), arr[start:end]...)
		return Array(out), arr, nil
	},
	"join": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		sep := ""
		if len(args) > 0 {
			sep = args[0].String()
		}
		parts := make([]string, len(arr))
		for i, v := range arr {
			parts[i] = v.String()
		}
		return Str(strings.Join(parts, sep)), arr, nil
	},
	"reverse": func(arr, args []*Literal) (*Literal, []*Literal, error) {
		out := make([]*Literal, len(arr))
		for i, v := range arr {
			out[len(arr)-1-i] = v
		}
		return nil, out, nil
	},
}

// CallArrayMethod dispatches a method call on an Array primitive. Some
// methods (push, pop, shift, unshift, reverse) mutate the logical value,
// so the result array is returned alongside the method's return value;
// CallMethod stores the result array back into the receiver literal
// (spec §4.2: "no closures in method args" — every array
// method is a fixed, small-arity operation, never a user callback).
func CallArrayMethod(recv *Literal, method string, args []*Literal) (result *Literal, newArr []*Literal, err error) {
	fn, ok := arrayMethods[method]
	if !ok {
		return nil, recv.Primitive.ArrayV, &OpError{Op: method, Message: fmt.Sprintf("no such array method %q", method)}
	}
	result, newArr, err = fn(recv.Primitive.ArrayV, args)
	if result == nil && err == nil {
		result = Array(newArr)
	}
	return result, newArr, err
}

func HasArrayMethod(method string) bool {
	_, ok := arrayMethods[method]
	return ok
}
