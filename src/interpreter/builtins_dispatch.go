package interpreter

import (
	"fmt"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/builtins"
	"github.com/csml-sh/csml-engine/src/errs"
	"github.com/csml-sh/csml-engine/src/primitive"
	"github.com/csml-sh/csml-engine/src/token"
)

// callBuiltin constructs the first link of a builtin call (spec §4.3):
// chain-starting builtins return a *builtinHandle for dispatchBuiltinMethod
// to thread through; value builtins return their *primitive.Literal
// directly.
func (in *Interpreter) callBuiltin(name string, args []*primitive.Literal, iv token.Interval) (interface{}, error) {
	switch name {
	case "HTTP":
		url, err := argString(args, 0, iv, in)
		if err != nil {
			return nil, err
		}
		return &builtinHandle{kind: "HTTP", val: builtins.HTTP(url)}, nil

	case "SMTP":
		server, err := argString(args, 0, iv, in)
		if err != nil {
			return nil, err
		}
		return &builtinHandle{kind: "SMTP", val: builtins.SMTP(server)}, nil

	case "Crypto":
		data, err := argString(args, 0, iv, in)
		if err != nil {
			return nil, err
		}
		return &builtinHandle{kind: "Crypto", val: builtins.Crypto(data)}, nil

	case "Base64":
		s, err := argString(args, 0, iv, in)
		if err != nil {
			return nil, err
		}
		return &builtinHandle{kind: "Base64", val: builtins.Base64(s)}, nil

	case "Hex":
		s, err := argString(args, 0, iv, in)
		if err != nil {
			return nil, err
		}
		return &builtinHandle{kind: "Hex", val: builtins.Hex(s)}, nil

	case "JWT":
		if len(args) < 1 {
			return nil, errs.New(errs.KindRuntimeArgs, "JWT requires a payload argument", iv, in.currentFlow, in.currentStep)
		}
		return &builtinHandle{kind: "JWT", val: builtins.JWT(args[0])}, nil

	case "Time":
		return builtins.Time(), nil

	case "Random":
		return builtins.Random(), nil

	case "UUID":
		version := ""
		if len(args) > 0 {
			version = args[0].String()
		}
		v, err := builtins.UUID(version)
		if err != nil {
			return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
		}
		return v, nil

	case "debug":
		return builtins.Debug(args...), nil

	default:
		return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("unknown builtin %q", name), iv, in.currentFlow, in.currentStep)
	}
}

func argString(args []*primitive.Literal, i int, iv token.Interval, in *Interpreter) (string, error) {
	if i >= len(args) {
		return "", errs.New(errs.KindRuntimeArgs, "missing required argument", iv, in.currentFlow, in.currentStep)
	}
	return args[i].String(), nil
}

// dispatchBuiltinMethod applies one chained PathSegment to a builder
// handle, evaluating the segment's arguments against the receiving
// builder's concrete method signature (spec §4.3: one chain step per
// PathCall segment, terminal methods collapsing to a Literal).
func (in *Interpreter) dispatchBuiltinMethod(h *builtinHandle, seg ast.PathSegment) (interface{}, error) {
	if seg.Kind != ast.PathCall {
		return nil, errs.New(errs.KindRuntimeType, "builtin chain requires a method call", token.Interval{}, in.currentFlow, in.currentStep)
	}
	args, err := in.evalArgs(seg.Args)
	if err != nil {
		return nil, err
	}
	iv := token.Interval{}

	switch h.kind {
	case "HTTP":
		b := h.val.(*builtins.HTTPBuilder)
		switch seg.Ident {
		case "get":
			return &builtinHandle{kind: "HTTP", val: b.Get()}, nil
		case "post":
			return &builtinHandle{kind: "HTTP", val: b.Post()}, nil
		case "put":
			return &builtinHandle{kind: "HTTP", val: b.Put()}, nil
		case "patch":
			return &builtinHandle{kind: "HTTP", val: b.Patch()}, nil
		case "delete":
			return &builtinHandle{kind: "HTTP", val: b.Delete()}, nil
		case "set_header":
			if len(args) < 2 {
				return nil, errs.New(errs.KindRuntimeArgs, "set_header requires (key, value)", iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "HTTP", val: b.SetHeader(args[0].String(), args[1].String())}, nil
		case "set_query":
			if len(args) < 2 {
				return nil, errs.New(errs.KindRuntimeArgs, "set_query requires (key, value)", iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "HTTP", val: b.SetQuery(args[0].String(), args[1].String())}, nil
		case "set_body":
			if len(args) < 1 {
				return nil, errs.New(errs.KindRuntimeArgs, "set_body requires one argument", iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "HTTP", val: b.SetBody(args[0])}, nil
		case "send":
			v, err := b.Send(in.goCtx)
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeIO, err, iv, in.currentFlow, in.currentStep)
			}
			return v, nil
		default:
			return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("unknown HTTP builder method %q", seg.Ident), iv, in.currentFlow, in.currentStep)
		}

	case "SMTP":
		b := h.val.(*builtins.SMTPBuilder)
		switch seg.Ident {
		case "port":
			if len(args) < 1 {
				return nil, errs.New(errs.KindRuntimeArgs, "port requires one argument", iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "SMTP", val: b.Port(args[0].Primitive.IntV)}, nil
		case "credentials":
			if len(args) < 2 {
				return nil, errs.New(errs.KindRuntimeArgs, "credentials requires (user, pass)", iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "SMTP", val: b.Credentials(args[0].String(), args[1].String())}, nil
		case "smtp_tls":
			return &builtinHandle{kind: "SMTP", val: b.SmtpTLS()}, nil
		case "smtp_starttls":
			return &builtinHandle{kind: "SMTP", val: b.SmtpStartTLS()}, nil
		case "from":
			if len(args) < 1 {
				return nil, errs.New(errs.KindRuntimeArgs, "from requires one argument", iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "SMTP", val: b.From(args[0].String())}, nil
		case "to":
			if len(args) < 1 {
				return nil, errs.New(errs.KindRuntimeArgs, "to requires one argument", iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "SMTP", val: b.To(args[0].String())}, nil
		case "send":
			msg := ""
			if len(args) > 0 {
				msg = args[0].String()
			}
			v, err := b.Send(msg)
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeIO, err, iv, in.currentFlow, in.currentStep)
			}
			return v, nil
		default:
			return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("unknown SMTP builder method %q", seg.Ident), iv, in.currentFlow, in.currentStep)
		}

	case "Crypto":
		b := h.val.(*builtins.CryptoBuilder)
		switch seg.Ident {
		case "hmac":
			if len(args) < 2 {
				return nil, errs.New(errs.KindRuntimeArgs, "hmac requires (algo, key)", iv, in.currentFlow, in.currentStep)
			}
			nb, err := b.Hmac(args[0].String(), args[1].String())
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
			}
			return &builtinHandle{kind: "Crypto", val: nb}, nil
		case "digest":
			format := "hex"
			if len(args) > 0 {
				format = args[0].String()
			}
			v, err := b.Digest(format)
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
			}
			return v, nil
		default:
			return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("unknown Crypto builder method %q", seg.Ident), iv, in.currentFlow, in.currentStep)
		}

	case "Base64":
		b := h.val.(*builtins.Base64Builder)
		switch seg.Ident {
		case "encode":
			return b.Encode(), nil
		case "decode":
			v, err := b.Decode()
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
			}
			return v, nil
		default:
			return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("unknown Base64 builder method %q", seg.Ident), iv, in.currentFlow, in.currentStep)
		}

	case "Hex":
		b := h.val.(*builtins.HexBuilder)
		switch seg.Ident {
		case "encode":
			return b.Encode(), nil
		case "decode":
			v, err := b.Decode()
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
			}
			return v, nil
		default:
			return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("unknown Hex builder method %q", seg.Ident), iv, in.currentFlow, in.currentStep)
		}

	case "JWT":
		b := h.val.(*builtins.JWTBuilder)
		switch seg.Ident {
		case "sign":
			if len(args) < 2 {
				return nil, errs.New(errs.KindRuntimeArgs, "sign requires (algo, secret)", iv, in.currentFlow, in.currentStep)
			}
			headers := map[string]interface{}{}
			if len(args) > 2 && args[2].Primitive.Kind == primitive.KindObject {
				headers = args[2].ToJSON().(map[string]interface{})
			}
			v, err := b.Sign(args[0].String(), args[1].String(), headers)
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
			}
			return v, nil
		case "decode":
			key := ""
			if len(args) > 0 {
				key = args[0].String()
			}
			validation := map[string]interface{}{}
			if len(args) > 1 && args[1].Primitive.Kind == primitive.KindObject {
				validation = args[1].ToJSON().(map[string]interface{})
			}
			v, err := b.Decode(key, validation)
			if err != nil {
				return nil, errs.Wrap(errs.KindRuntimeArgs, err, iv, in.currentFlow, in.currentStep)
			}
			return v, nil
		default:
			return nil, errs.New(errs.KindRuntimeRef, fmt.Sprintf("unknown JWT builder method %q", seg.Ident), iv, in.currentFlow, in.currentStep)
		}

	default:
		return nil, errs.New(errs.KindRuntimeType, fmt.Sprintf("unknown builder kind %q", h.kind), iv, in.currentFlow, in.currentStep)
	}
}
