package primitive

import "fmt"

var objectMethods = map[string]func(l *Literal, args []*Literal) (*Literal, error){
	"keys": func(l *Literal, args []*Literal) (*Literal, error) {
		out := make([]*Literal, len(l.Primitive.ObjectKeys))
		for i, k := range l.Primitive.ObjectKeys {
			out[i] = Str(k)
		}
		return Array(out), nil
	},
	"values": func(l *Literal, args []*Literal) (*Literal, error) {
		out := make([]*Literal, len(l.Primitive.ObjectKeys))
		for i, k := range l.Primitive.ObjectKeys {
			out[i] = l.Primitive.ObjectV[k]
		}
		return Array(out), nil
	},
	"contains": func(l *Literal, args []*Literal) (*Literal, error) {
		if len(args) == 0 {
			return Bool(false), nil
		}
		_, ok := l.Primitive.ObjectV[args[0].String()]
		return Bool(ok), nil
	},
	"get": func(l *Literal, args []*Literal) (*Literal, error) {
		if len(args) == 0 {
			return Null(), nil
		}
		v, ok := l.Primitive.ObjectV[args[0].String()]
		if !ok {
			return Null(), nil
		}
		return v, nil
	},
	"remove": func(l *Literal, args []*Literal) (*Literal, error) {
		if len(args) == 0 {
			return l, nil
		}
		key := args[0].String()
		keys := make([]string, 0, len(l.Primitive.ObjectKeys))
		values := make(map[string]*Literal, len(l.Primitive.ObjectV))
		for _, k := range l.Primitive.ObjectKeys {
			if k == key {
				continue
			}
			keys = append(keys, k)
			values[k] = l.Primitive.ObjectV[k]
		}
		return Object(keys, values), nil
	},
	"length":   func(l *Literal, args []*Literal) (*Literal, error) { return Int(int64(len(l.Primitive.ObjectKeys))), nil },
	"is_empty": func(l *Literal, args []*Literal) (*Literal, error) { return Bool(len(l.Primitive.ObjectKeys) == 0), nil },
}

// CallObjectMethod dispatches a method call on an Object primitive.
// "remove" returns a new Object value rather than mutating in place; the
// receiver, and the variable it is bound to, are left unchanged.
func CallObjectMethod(recv *Literal, method string, args []*Literal) (*Literal, error) {
	fn, ok := objectMethods[method]
	if !ok {
		return nil, &OpError{Op: method, Message: fmt.Sprintf("no such object method %q", method)}
	}
	return fn(recv, args)
}

func HasObjectMethod(method string) bool {
	_, ok := objectMethods[method]
	return ok
}
