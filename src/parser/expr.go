package parser

import (
	"strconv"
	"strings"

	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/token"
)

// Operator precedence, low to high, exactly spec §4.1's table.
const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precMatch
	precCompare
	precSum
	precProduct
	precPrefix
)

var infixPrecedence = map[token.Kind]int{
	token.OR:        precOr,
	token.AND:       precAnd,
	token.EQ:        precEquality,
	token.NOT_EQ:    precEquality,
	token.MATCH:     precMatch,
	token.NOT_MATCH: precMatch,
	token.LT:        precCompare,
	token.LT_EQ:     precCompare,
	token.GT:        precCompare,
	token.GT_EQ:     precCompare,
	token.PLUS:      precSum,
	token.MINUS:     precSum,
	token.STAR:      precProduct,
	token.SLASH:     precProduct,
	token.PERCENT:   precProduct,
}

func (p *parser) peekPrecedence() int {
	if prec, ok := infixPrecedence[p.cur().Kind]; ok {
		return prec
	}
	return precLowest
}

// parseExpr is the entry point of the precedence-climbing expression
// parser. Postfix path chains (`. [ ] ( )`) bind tighter than any infix
// operator and are handled directly inside parsePrimary.
func (p *parser) parseExpr(prec int) ast.Expr {
	left := p.parsePrefix()
	for !p.atEnd() && prec < p.peekPrecedence() {
		left = p.parseInfix(left)
	}
	return left
}

func (p *parser) parsePrefix() ast.Expr {
	switch p.cur().Kind {
	case token.NOT:
		start := p.advance().Interval
		inner := p.parseExpr(precPrefix)
		return &ast.PostfixExpr{Base: ast.Base{Interval: token.Span(startPos(start), endPos(inner.Span()))}, Inner: inner}
	case token.MINUS:
		// No dedicated unary-minus AST node; rewritten as `0 - expr` so the
		// evaluator's existing InfixExpr(MINUS) numeric-promotion path
		// handles it without a special case.
		start := p.advance().Interval
		inner := p.parseExpr(precPrefix)
		zero := &ast.LitExpr{Base: ast.Base{Interval: start}, Kind: token.INT, Raw: "0"}
		return &ast.InfixExpr{Base: ast.Base{Interval: token.Span(startPos(start), endPos(inner.Span()))}, Op: token.MINUS, LHS: zero, RHS: inner}
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parseInfix(left ast.Expr) ast.Expr {
	op := p.cur()
	prec := p.peekPrecedence()
	p.advance()
	right := p.parseExpr(prec)
	return &ast.InfixExpr{
		Base: ast.Base{Interval: token.Span(startPos(left.Span()), endPos(right.Span()))},
		Op:   op.Kind, LHS: left, RHS: right,
	}
}

func (p *parser) parsePrimary() ast.Expr {
	var atom ast.Expr
	switch p.cur().Kind {
	case token.INT:
		t := p.advance()
		atom = &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.INT, Raw: t.Literal}
	case token.FLOAT:
		t := p.advance()
		atom = &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.FLOAT, Raw: t.Literal}
	case token.TRUE, token.FALSE:
		t := p.advance()
		atom = &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: t.Kind, Raw: t.Literal}
	case token.NULL:
		t := p.advance()
		atom = &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.NULL, Raw: "null"}
	case token.STRING:
		t := p.advance()
		atom = p.parseStringLiteral(t)
	case token.IDENT:
		t := p.advance()
		atom = &ast.IdentExpr{Base: ast.Base{Interval: t.Interval}, Name: t.Literal}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr(precLowest)
		p.expect(token.RPAREN, "to close grouped expression")
		atom = inner
	case token.LBRACE:
		atom = p.parseMapExpr()
	case token.LBRACKET:
		atom = p.parseVecExpr()
	default:
		t := p.cur()
		p.errorf(t.Interval, "illegal expression: unexpected %s %q", t.Kind, t.Literal)
		p.advance()
		return &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.NULL, Raw: "null"}
	}
	return p.parsePathSuffix(atom)
}

// parsePathSuffix consumes a `. [ ] ( )` chain trailing atom, producing a
// PathExpr when at least one segment is present.
func (p *parser) parsePathSuffix(atom ast.Expr) ast.Expr {
	var segs []ast.PathSegment
	for {
		switch p.cur().Kind {
		case token.DOT:
			p.advance()
			name, ok := p.expect(token.IDENT, "member name after '.'")
			if !ok {
				return p.finishPath(atom, segs)
			}
			if p.check(token.LPAREN) {
				args := p.parseArgs()
				segs = append(segs, ast.PathSegment{Kind: ast.PathCall, Ident: name.Literal, Args: args})
			} else {
				segs = append(segs, ast.PathSegment{Kind: ast.PathDot, Ident: name.Literal})
			}
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpr(precLowest)
			p.expect(token.RBRACKET, "to close index expression")
			segs = append(segs, ast.PathSegment{Kind: ast.PathIndex, Index: idx})
		case token.LPAREN:
			if len(segs) != 0 {
				// A call directly chained onto an index/dot result is not
				// part of the grammar; stop here and let the caller error
				// on the stray '(' as a new statement/expression.
				return p.finishPath(atom, segs)
			}
			args := p.parseArgs()
			segs = append(segs, ast.PathSegment{Kind: ast.PathCall, Args: args})
		default:
			return p.finishPath(atom, segs)
		}
	}
}

func (p *parser) finishPath(atom ast.Expr, segs []ast.PathSegment) ast.Expr {
	if len(segs) == 0 {
		return atom
	}
	last := segs[len(segs)-1]
	end := atom.Span()
	switch last.Kind {
	case ast.PathCall:
		if len(last.Args) > 0 {
			end = last.Args[len(last.Args)-1].Span()
		}
	case ast.PathIndex:
		end = last.Index.Span()
	}
	return &ast.PathExpr{
		Base:    ast.Base{Interval: token.Span(startPos(atom.Span()), endPos(end))},
		Literal: atom, Path: segs,
	}
}

func (p *parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN, "to open argument list")
	var args []ast.Expr
	for !p.check(token.RPAREN) && !p.atEnd() {
		args = append(args, p.parseExpr(precLowest))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "to close argument list")
	return args
}

func (p *parser) parseMapExpr() ast.Expr {
	start := p.advance().Interval // '{'
	m := &ast.MapExpr{}
	if p.check(token.DOTDOT) {
		p.advance()
		m.Update = true
		m.SpreadBase = p.parseExpr(precLowest)
		p.match(token.COMMA)
	}
	for !p.check(token.RBRACE) && !p.atEnd() {
		var key string
		switch p.cur().Kind {
		case token.IDENT:
			key = p.advance().Literal
		case token.STRING:
			key = p.advance().Literal
		default:
			p.errorf(p.cur().Interval, "expected object key, got %s %q", p.cur().Kind, p.cur().Literal)
			p.advance()
			continue
		}
		p.expect(token.COLON, "after object key")
		val := p.parseExpr(precLowest)
		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, val)
		if !p.match(token.COMMA) {
			break
		}
	}
	end, _ := p.expect(token.RBRACE, "to close object literal")
	m.Base = ast.Base{Interval: token.Span(startPos(start), endPos(end.Interval))}
	return m
}

func (p *parser) parseVecExpr() ast.Expr {
	start := p.advance().Interval // '['
	v := &ast.VecExpr{}
	for !p.check(token.RBRACKET) && !p.atEnd() {
		v.Elements = append(v.Elements, p.parseExpr(precLowest))
		if !p.match(token.COMMA) {
			break
		}
	}
	end, _ := p.expect(token.RBRACKET, "to close array literal")
	v.Base = ast.Base{Interval: token.Span(startPos(start), endPos(end.Interval))}
	return v
}

// parseStringLiteral splits a lexed STRING token's text on "{{ ... }}"
// interpolation markers into a ComplexLiteral of alternating literal-chunk
// and expression-slot Exprs (spec §4.1, supplemented from the original
// source's dedicated chunk splitter rather than re-lexing at eval time).
// Plain strings with no "{{" marker are returned as a bare LitExpr.
func (p *parser) parseStringLiteral(t token.Token) ast.Expr {
	raw := t.Literal
	if !strings.Contains(raw, "{{") {
		return &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.STRING, Raw: raw}
	}

	var chunks []ast.Expr
	rest := raw
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			if rest != "" {
				chunks = append(chunks, &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.STRING, Raw: rest, InInSubstring: true})
			}
			break
		}
		if open > 0 {
			chunks = append(chunks, &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.STRING, Raw: rest[:open], InInSubstring: true})
		}
		rest = rest[open+2:]
		closeIdx := strings.Index(rest, "}}")
		if closeIdx < 0 {
			p.errorf(t.Interval, "unterminated {{ interpolation in string literal")
			break
		}
		inner := rest[:closeIdx]
		rest = rest[closeIdx+2:]

		// Interval precision is sacrificed here: the sub-expression is
		// parsed from an isolated source snippet, so its nodes carry the
		// parent string token's span rather than their own offset within
		// it. Diagnostics inside an interpolation slot still point at the
		// containing string.
		sub, subErrs := parseExprSource(inner)
		p.errors = append(p.errors, subErrs...)
		if sub == nil {
			sub = &ast.LitExpr{Base: ast.Base{Interval: t.Interval}, Kind: token.NULL, Raw: "null"}
		} else {
			reinterval(sub, t.Interval)
		}
		chunks = append(chunks, sub)
	}
	return &ast.ComplexLiteral{Base: ast.Base{Interval: t.Interval}, Chunks: chunks}
}

// parseExprSource runs a fresh lexer+parser over an isolated expression
// snippet (the contents of one {{ ... }} interpolation slot).
func parseExprSource(src string) (ast.Expr, []ErrorInfo) {
	lex := token.NewLexer(src)
	var toks []token.Token
	for {
		t := lex.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	sp := &parser{tokens: toks}
	if sp.atEnd() {
		return nil, nil
	}
	expr := sp.parseExpr(precLowest)
	return expr, sp.errors
}

// reinterval overwrites every node's Interval in the subtree rooted at e
// with iv. See parseStringLiteral's comment on interpolation-slot spans.
func reinterval(e ast.Expr, iv token.Interval) {
	switch n := e.(type) {
	case *ast.LitExpr:
		n.Base = ast.Base{Interval: iv}
	case *ast.IdentExpr:
		n.Base = ast.Base{Interval: iv}
	case *ast.InfixExpr:
		n.Base = ast.Base{Interval: iv}
		reinterval(n.LHS, iv)
		reinterval(n.RHS, iv)
	case *ast.PostfixExpr:
		n.Base = ast.Base{Interval: iv}
		reinterval(n.Inner, iv)
	case *ast.PathExpr:
		n.Base = ast.Base{Interval: iv}
		reinterval(n.Literal, iv)
		for _, seg := range n.Path {
			if seg.Index != nil {
				reinterval(seg.Index, iv)
			}
			for _, a := range seg.Args {
				reinterval(a, iv)
			}
		}
	case *ast.MapExpr:
		n.Base = ast.Base{Interval: iv}
		if n.SpreadBase != nil {
			reinterval(n.SpreadBase, iv)
		}
		for _, v := range n.Values {
			reinterval(v, iv)
		}
	case *ast.VecExpr:
		n.Base = ast.Base{Interval: iv}
		for _, el := range n.Elements {
			reinterval(el, iv)
		}
	case *ast.ComplexLiteral:
		n.Base = ast.Base{Interval: iv}
		for _, c := range n.Chunks {
			reinterval(c, iv)
		}
	}
}

// literalIntValue parses an integer literal's raw text as a base-10 int64.
func literalIntValue(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
