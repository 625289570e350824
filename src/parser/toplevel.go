package parser

import (
	"github.com/csml-sh/csml-engine/src/ast"
	"github.com/csml-sh/csml-engine/src/token"
)

// parseStep parses `step NAME: { ... }`.
func (p *parser) parseStep() *ast.Step {
	start := p.advance().Interval // 'step'
	name, ok := p.expect(token.IDENT, "step name")
	if !ok {
		p.syncToTopLevel()
		return nil
	}
	if _, ok := p.expect(token.COLON, "after step name"); !ok {
		p.syncToTopLevel()
		return nil
	}
	body := p.parseScope(ast.BlockStep)
	return &ast.Step{Name: name.Literal, Body: body, Interval: token.Span(startPos(start), endPos(body.Interval))}
}

// parseFunction parses `fn NAME(a, b): { ... }`.
func (p *parser) parseFunction() *ast.Function {
	start := p.advance().Interval // 'fn'
	name, ok := p.expect(token.IDENT, "function name")
	if !ok {
		p.syncToTopLevel()
		return nil
	}
	if _, ok := p.expect(token.LPAREN, "after function name"); !ok {
		p.syncToTopLevel()
		return nil
	}
	var params []string
	for !p.check(token.RPAREN) && !p.atEnd() {
		param, ok := p.expect(token.IDENT, "parameter name")
		if !ok {
			break
		}
		params = append(params, param.Literal)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "after parameter list")
	if _, ok := p.expect(token.COLON, "after function signature"); !ok {
		p.syncToTopLevel()
		return nil
	}
	body := p.parseScope(ast.BlockFunction)
	return &ast.Function{Name: name.Literal, Params: params, Body: body, Interval: token.Span(startPos(start), endPos(body.Interval))}
}

// parseImport parses `import NAME [as Alias] [from Flow]`.
func (p *parser) parseImport() *ast.Import {
	start := p.advance().Interval // 'import'
	name, ok := p.expect(token.IDENT, "imported name")
	if !ok {
		p.syncToTopLevel()
		return nil
	}
	im := &ast.Import{Name: name.Literal, OriginalName: name.Literal}
	if p.match(token.AS) {
		alias, ok := p.expect(token.IDENT, "alias after 'as'")
		if ok {
			im.As = alias.Literal
		}
	}
	if p.match(token.FROM) {
		from, ok := p.expect(token.IDENT, "flow name after 'from'")
		if ok {
			im.FromFlow = from.Literal
		}
	}
	im.Interval = token.Span(startPos(start), endPos(p.peekAt(-1).Interval))
	return im
}

// parseConst parses `const NAME = EXPR`.
func (p *parser) parseConst() *ast.Constant {
	start := p.advance().Interval // 'const'
	name, ok := p.expect(token.IDENT, "constant name")
	if !ok {
		p.syncToTopLevel()
		return nil
	}
	if _, ok := p.expect(token.ASSIGN, "after constant name"); !ok {
		p.syncToTopLevel()
		return nil
	}
	val := p.parseExpr(precLowest)
	return &ast.Constant{Name: name.Literal, Value: val, Interval: token.Span(startPos(start), endPos(val.Span()))}
}

func startPos(iv token.Interval) token.Position {
	return token.Position{Line: iv.StartLine, Col: iv.StartCol, Offset: iv.StartOffset}
}

func endPos(iv token.Interval) token.Position {
	return token.Position{Line: iv.EndLine, Col: iv.EndCol, Offset: iv.EndOffset}
}
