// Package parser implements the hand-written recursive-descent CSML
// parser: source text in, *ast.Flow (or accumulated ErrorInfo) out.
//
// There is no package-level or thread-local parser state (spec §9's
// "Global state" design note, resolved in favor of the explicit-struct
// option the note itself recommends): every production is a method on
// *parser, which carries its token stream, cursor, and an exprState field
// tracking interpolation-mode and loop-depth instead of globals.
package parser

import (
	"fmt"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/token"
)

// exprState threads the handful of parse-mode flags that would otherwise
// need to live in package-level or goroutine-local state.
type exprState struct {
	inInterpolation bool
	loopDepth       int
}

type parser struct {
	tokens []token.Token
	pos    int
	errors []ErrorInfo
	state  exprState
}

// ParseFlow parses one flow's source text, returning its AST and any
// accumulated diagnostics. Diagnostics never abort parsing of subsequent
// top-level declarations (spec §4.1).
func ParseFlow(source, flowName string) (*ast.Flow, []ErrorInfo) {
	lex := token.NewLexer(source)
	var toks []token.Token
	for {
		t := lex.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}

	p := &parser{tokens: toks}
	flow := &ast.Flow{
		Name:      flowName,
		Steps:     map[string]*ast.Step{},
		Functions: map[string]*ast.Function{},
		Constants: map[string]*ast.Constant{},
	}

	for !p.atEnd() {
		p.parseTopLevel(flow)
	}
	return flow, p.errors
}

func (p *parser) atEnd() bool {
	return p.cur().Kind == token.EOF
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(off int) token.Token {
	i := p.pos + off
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	if i < 0 {
		return p.tokens[0]
	}
	return p.tokens[i]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) check(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it has kind k, else records an
// ErrorInfo and returns the zero Token without advancing past EOF.
func (p *parser) expect(k token.Kind, context string) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.errorf(p.cur().Interval, "expected %s %s, got %s %q", k, context, p.cur().Kind, p.cur().Literal)
	return token.Token{}, false
}

func (p *parser) errorf(iv token.Interval, format string, args ...any) {
	p.errors = append(p.errors, ErrorInfo{Position: iv, Message: fmt.Sprintf(format, args...)})
}

// syncToTopLevel skips tokens until a position a new top-level declaration
// can plausibly start, so one bad declaration doesn't cascade into
// spurious errors for the rest of the flow.
func (p *parser) syncToTopLevel() {
	for !p.atEnd() {
		switch p.cur().Kind {
		case token.STEP, token.FN, token.IMPORT, token.CONST:
			return
		}
		p.advance()
	}
}

func (p *parser) parseTopLevel(flow *ast.Flow) {
	if p.check(token.IDENT) && p.peekAt(1).Kind == token.COLON {
		// `NAME: { ... }`: a step declared without the `step` keyword.
		name := p.advance()
		p.advance() // ':'
		body := p.parseScope(ast.BlockStep)
		flow.Steps[name.Literal] = &ast.Step{Name: name.Literal, Body: body, Interval: token.Span(startPos(name.Interval), endPos(body.Interval))}
		flow.StepOrder = append(flow.StepOrder, name.Literal)
		return
	}
	switch p.cur().Kind {
	case token.STEP:
		if s := p.parseStep(); s != nil {
			flow.Steps[s.Name] = s
			flow.StepOrder = append(flow.StepOrder, s.Name)
		}
	case token.FN:
		if fn := p.parseFunction(); fn != nil {
			flow.Functions[fn.Name] = fn
			flow.FunctionOrder = append(flow.FunctionOrder, fn.Name)
		}
	case token.IMPORT:
		if im := p.parseImport(); im != nil {
			flow.Imports = append(flow.Imports, im)
		}
	case token.CONST:
		if c := p.parseConst(); c != nil {
			flow.Constants[c.Name] = c
		}
	default:
		p.errorf(p.cur().Interval, "unexpected token %s %q at top level", p.cur().Kind, p.cur().Literal)
		p.advance()
		p.syncToTopLevel()
	}
}
