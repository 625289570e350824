package parser

import (
	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/token"
)

// parseScope parses a `{ ... }` block of statements.
func (p *parser) parseScope(kind ast.BlockKind) *ast.Scope {
	start, _ := p.expect(token.LBRACE, "to open block")
	scope := &ast.Scope{BlockKind: kind}
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			scope.Body = append(scope.Body, stmt)
		}
	}
	end, _ := p.expect(token.RBRACE, "to close block")
	scope.Base = ast.Base{Interval: token.Span(startPos(start.Interval), endPos(end.Interval))}
	return scope
}

// parseStatement parses one statement inside a Scope body.
func (p *parser) parseStatement() ast.Expr {
	switch p.cur().Kind {
	case token.IF:
		return p.parseIf()
	case token.FOREACH:
		return p.parseForEach()
	case token.WHILE:
		return p.parseWhile()
	case token.GOTO:
		return p.parseGoto()
	case token.USE:
		return p.parseUse()
	case token.DO:
		return p.parseUnaryReserved(ast.FnDo)
	case token.SAY:
		return p.parseUnaryReserved(ast.FnSay)
	case token.DEBUG:
		return p.parseUnaryReserved(ast.FnDebug)
	case token.RETURN:
		return p.parseOptionalUnaryReserved(ast.FnReturn)
	case token.REMEMBER:
		return p.parseRemember()
	case token.FORGET:
		return p.parseForget()
	case token.HOLD:
		return p.parseHold()
	case token.BREAK:
		t := p.advance()
		return &ast.ObjectExpr{Base: ast.Base{Interval: t.Interval}, Kind: ast.FnBreak}
	case token.CONTINUE:
		t := p.advance()
		return &ast.ObjectExpr{Base: ast.Base{Interval: t.Interval}, Kind: ast.FnContinue}
	default:
		return p.parseExprStatement()
	}
}

func (p *parser) parseUnaryReserved(kind ast.ReservedFnKind) ast.Expr {
	start := p.advance().Interval
	val := p.parseExpr(precLowest)
	return &ast.ObjectExpr{
		Base: ast.Base{Interval: token.Span(startPos(start), endPos(val.Span()))},
		Kind: kind, Value: val,
	}
}

// parseUse parses `use EXPR as NAME`, binding EXPR's value into step_vars
// non-persistently (spec §4.4.2).
func (p *parser) parseUse() ast.Expr {
	start := p.advance().Interval // 'use'
	val := p.parseExpr(precLowest)
	if p.check(token.AS) {
		p.advance()
		alias, ok := p.expect(token.IDENT, "binding name after 'as'")
		if ok {
			return &ast.ObjectExpr{
				Base:  ast.Base{Interval: token.Span(startPos(start), endPos(alias.Interval))},
				Kind:  ast.FnUse,
				Value: val, Alias: alias.Literal,
			}
		}
	}
	return &ast.ObjectExpr{
		Base:  ast.Base{Interval: token.Span(startPos(start), endPos(val.Span()))},
		Kind:  ast.FnUse,
		Value: val,
	}
}

// parseOptionalUnaryReserved handles `return` and `return EXPR`.
func (p *parser) parseOptionalUnaryReserved(kind ast.ReservedFnKind) ast.Expr {
	start := p.advance().Interval
	if p.check(token.RBRACE) || p.startsNewStatement() {
		return &ast.ObjectExpr{Base: ast.Base{Interval: start}, Kind: kind}
	}
	val := p.parseExpr(precLowest)
	return &ast.ObjectExpr{
		Base: ast.Base{Interval: token.Span(startPos(start), endPos(val.Span()))},
		Kind: kind, Value: val,
	}
}

// startsNewStatement reports whether the current token can only begin a
// new statement, used to detect a bare `return`/`hold` with no operand.
func (p *parser) startsNewStatement() bool {
	switch p.cur().Kind {
	case token.IF, token.FOREACH, token.WHILE, token.GOTO, token.USE, token.DO,
		token.SAY, token.DEBUG, token.RETURN, token.REMEMBER, token.FORGET,
		token.HOLD, token.BREAK, token.CONTINUE, token.EOF:
		return true
	}
	return false
}

// parseGoto parses `goto NAME`, `goto FLOW:NAME`, or `goto end`.
func (p *parser) parseGoto() ast.Expr {
	start := p.advance().Interval
	target := ""
	if p.check(token.END) {
		target = "end"
		end := p.advance().Interval
		return &ast.ObjectExpr{Base: ast.Base{Interval: token.Span(startPos(start), endPos(end))}, Kind: ast.FnGoto, Target: target}
	}
	name, ok := p.expect(token.IDENT, "step name after 'goto'")
	if !ok {
		return &ast.ObjectExpr{Base: ast.Base{Interval: start}, Kind: ast.FnGoto}
	}
	target = name.Literal
	end := name.Interval
	if p.match(token.COLON) {
		stepName, ok := p.expect(token.IDENT, "step name after 'flow:'")
		if ok {
			target = target + ":" + stepName.Literal
			end = stepName.Interval
		}
	}
	return &ast.ObjectExpr{Base: ast.Base{Interval: token.Span(startPos(start), endPos(end))}, Kind: ast.FnGoto, Target: target}
}

// parseRemember parses `remember KEY = EXPR`.
func (p *parser) parseRemember() ast.Expr {
	start := p.advance().Interval
	key, ok := p.expect(token.IDENT, "memory key after 'remember'")
	if !ok {
		return &ast.ObjectExpr{Base: ast.Base{Interval: start}, Kind: ast.FnRemember}
	}
	p.expect(token.ASSIGN, "after memory key")
	val := p.parseExpr(precLowest)
	return &ast.ObjectExpr{
		Base: ast.Base{Interval: token.Span(startPos(start), endPos(val.Span()))},
		Kind: ast.FnRemember, Key: key.Literal, Value: val,
	}
}

// parseForget parses `forget ALL`, `forget KEY`, or `forget [KEY, ...]`
// (spec §4.4.2). The bracket form's names are carried in Args as IdentExpr
// nodes (evaluator reads their .Name rather than evaluating them).
func (p *parser) parseForget() ast.Expr {
	start := p.advance().Interval
	if p.check(token.LBRACKET) {
		p.advance()
		var names []ast.Expr
		for !p.check(token.RBRACKET) && !p.atEnd() {
			name, ok := p.expect(token.IDENT, "memory key in forget list")
			if ok {
				names = append(names, &ast.IdentExpr{Base: ast.Base{Interval: name.Interval}, Name: name.Literal})
			}
			if !p.match(token.COMMA) {
				break
			}
		}
		end, _ := p.expect(token.RBRACKET, "to close forget list")
		return &ast.ObjectExpr{
			Base: ast.Base{Interval: token.Span(startPos(start), endPos(end.Interval))},
			Kind: ast.FnForget, Args: names,
		}
	}
	key, ok := p.expect(token.IDENT, "memory key after 'forget'")
	if !ok {
		return &ast.ObjectExpr{Base: ast.Base{Interval: start}, Kind: ast.FnForget}
	}
	return &ast.ObjectExpr{
		Base: ast.Base{Interval: token.Span(startPos(start), endPos(key.Interval))},
		Kind: ast.FnForget, Key: key.Literal,
	}
}

// parseHold parses `hold` or `hold EXPR` (an optional TTL-duration expr).
func (p *parser) parseHold() ast.Expr {
	start := p.advance().Interval
	if p.startsNewStatement() || p.check(token.RBRACE) {
		return &ast.ObjectExpr{Base: ast.Base{Interval: start}, Kind: ast.FnHold}
	}
	dur := p.parseExpr(precLowest)
	return &ast.ObjectExpr{
		Base: ast.Base{Interval: token.Span(startPos(start), endPos(dur.Span()))},
		Kind: ast.FnHold, OptionalDuration: dur,
	}
}

// parseIf parses an if/elif.../else? chain into a single IfExpr whose
// Branches list mirrors spec §3's `IfStmt = If{cond, body, else?} |
// Else(body)` recursion as a flat ordered slice.
func (p *parser) parseIf() ast.Expr {
	start := p.cur().Interval
	var branches []ast.IfBranch
	p.advance() // 'if'
	cond := p.parseExpr(precLowest)
	body := p.parseScope(ast.BlockIf)
	branches = append(branches, ast.IfBranch{Cond: cond, Body: body})
	end := body.Interval

	for p.check(token.ELIF) {
		p.advance()
		c := p.parseExpr(precLowest)
		b := p.parseScope(ast.BlockIf)
		branches = append(branches, ast.IfBranch{Cond: c, Body: b})
		end = b.Interval
	}
	if p.check(token.ELSE) {
		p.advance()
		b := p.parseScope(ast.BlockElse)
		branches = append(branches, ast.IfBranch{Cond: nil, Body: b})
		end = b.Interval
	}
	return &ast.IfExpr{Base: ast.Base{Interval: token.Span(startPos(start), endPos(end))}, Branches: branches}
}

// parseForEach parses `foreach (elem[, idx]) in iterable { body }` and the
// bare-parens-free form `foreach elem in iterable { body }`.
func (p *parser) parseForEach() ast.Expr {
	start := p.advance().Interval // 'foreach'
	hadParen := p.match(token.LPAREN)
	elem, _ := p.expect(token.IDENT, "loop element name")
	idx := ""
	if p.match(token.COMMA) {
		idxTok, ok := p.expect(token.IDENT, "loop index name")
		if ok {
			idx = idxTok.Literal
		}
	}
	if hadParen {
		p.expect(token.RPAREN, "to close foreach binding")
	}
	p.expect(token.IN, "in foreach")
	iterable := p.parseExpr(precLowest)
	p.state.loopDepth++
	body := p.parseScope(ast.BlockForEach)
	p.state.loopDepth--
	return &ast.ForEachExpr{
		Base:      ast.Base{Interval: token.Span(startPos(start), endPos(body.Interval))},
		ElemIdent: elem.Literal, IdxIdent: idx, Iterable: iterable, Body: body,
	}
}

// parseWhile parses `while (cond) { body }` / `while cond { body }`.
func (p *parser) parseWhile() ast.Expr {
	start := p.advance().Interval // 'while'
	hadParen := p.match(token.LPAREN)
	cond := p.parseExpr(precLowest)
	if hadParen {
		p.expect(token.RPAREN, "to close while condition")
	}
	p.state.loopDepth++
	body := p.parseScope(ast.BlockWhile)
	p.state.loopDepth--
	return &ast.WhileExpr{
		Base: ast.Base{Interval: token.Span(startPos(start), endPos(body.Interval))},
		Cond: cond, Body: body,
	}
}

// parseExprStatement handles the remaining statement forms that start with
// a bare expression: assignment (`path = expr`), the `expr as ident`
// binding form, and a bare expression evaluated for side effects (e.g. a
// built-in call like `HTTP(url).get().send()`).
func (p *parser) parseExprStatement() ast.Expr {
	start := p.cur().Interval
	expr := p.parseExpr(precLowest)

	if p.check(token.ASSIGN) {
		path, ok := expr.(*ast.PathExpr)
		if !ok {
			// Bare identifier assignment `x = expr` is sugar for a
			// single-segment path.
			if ident, ok2 := expr.(*ast.IdentExpr); ok2 {
				path = &ast.PathExpr{Base: ident.Base, Literal: ident}
			} else {
				p.errorf(expr.Span(), "left-hand side of '=' is not assignable")
			}
		}
		p.advance()
		val := p.parseExpr(precLowest)
		return &ast.ObjectExpr{
			Base:       ast.Base{Interval: token.Span(startPos(start), endPos(val.Span()))},
			Kind:       ast.FnAssign,
			AssignPath: path, Value: val,
		}
	}

	if p.check(token.AS) {
		p.advance()
		alias, ok := p.expect(token.IDENT, "binding name after 'as'")
		if !ok {
			return expr
		}
		return &ast.ObjectExpr{
			Base:  ast.Base{Interval: token.Span(startPos(start), endPos(alias.Interval))},
			Kind:  ast.FnAs,
			Value: expr, Alias: alias.Literal,
		}
	}

	return expr
}
