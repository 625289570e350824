package primitive

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// stringMethods is String's method dispatch table (spec §4.2).
var stringMethods = map[string]func(s string, args []*Literal) (*Literal, error){
	"length":        func(s string, args []*Literal) (*Literal, error) { return Int(int64(len(s))), nil },
	"is_empty":      func(s string, args []*Literal) (*Literal, error) { return Bool(s == ""), nil },
	"contains":      func(s string, args []*Literal) (*Literal, error) { return Bool(strings.Contains(s, argStr(args, 0))), nil },
	"starts_with":   func(s string, args []*Literal) (*Literal, error) { return Bool(strings.HasPrefix(s, argStr(args, 0))), nil },
	"ends_with":     func(s string, args []*Literal) (*Literal, error) { return Bool(strings.HasSuffix(s, argStr(args, 0))), nil },
	"to_uppercase":  func(s string, args []*Literal) (*Literal, error) { return Str(strings.ToUpper(s)), nil },
	"to_lowercase":  func(s string, args []*Literal) (*Literal, error) { return Str(strings.ToLower(s)), nil },
	"trim":          func(s string, args []*Literal) (*Literal, error) { return Str(strings.TrimSpace(s)), nil },
	"split": func(s string, args []*Literal) (*Literal, error) {
		sep := argStr(args, 0)
		parts := strings.Split(s, sep)
		out := make([]*Literal, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return Array(out), nil
	},
	"replace": func(s string, args []*Literal) (*Literal, error) {
		return Str(strings.ReplaceAll(s, argStr(args, 0), argStr(args, 1))), nil
	},
	"match": func(s string, args []*Literal) (*Literal, error) {
		// RE2 via the standard library regexp package (spec §9 Open
		// Question, resolved to RE2 — the same dialect cel-go standardizes
		// on for its string extension functions).
		re, err := regexp.Compile(argStr(args, 0))
		if err != nil {
			return nil, &OpError{Op: "match", Message: fmt.Sprintf("invalid regex: %v", err)}
		}
		return Bool(re.MatchString(s)), nil
	},
	"to_int": func(s string, args []*Literal) (*Literal, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, &OpError{Op: "to_int", Message: fmt.Sprintf("cannot parse %q as int", s)}
		}
		return Int(n), nil
	},
	"to_float": func(s string, args []*Literal) (*Literal, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, &OpError{Op: "to_float", Message: fmt.Sprintf("cannot parse %q as float", s)}
		}
		return Float(f), nil
	},
}

func argStr(args []*Literal, i int) string {
	if i >= len(args) || args[i] == nil {
		return ""
	}
	return args[i].String()
}

// CallStringMethod dispatches a method call on a String primitive.
func CallStringMethod(recv *Literal, method string, args []*Literal) (*Literal, error) {
	fn, ok := stringMethods[method]
	if !ok {
		return nil, &OpError{Op: method, Message: fmt.Sprintf("no such string method %q", method)}
	}
	return fn(recv.Primitive.Str, args)
}

// HasStringMethod reports whether method is a known String method name,
// used by the linter's check_valid_method rule.
func HasStringMethod(method string) bool {
	_, ok := stringMethods[method]
	return ok
}
