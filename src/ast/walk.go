package ast

// Walk traverses e and its children depth-first, calling visit on each
// node; visit returns false to skip that node's children (the same
// contract as the standard library's go/ast.Inspect, generalized to this
// package's own Expr tree since CSML has no comparable built-in walker).
// Used by package linter to collect goto targets, call sites, and method
// segments across a flow without hand-rolling a type switch per rule.
func Walk(e Expr, visit func(Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	switch n := e.(type) {
	case *Scope:
		for _, s := range n.Body {
			Walk(s, visit)
		}
	case *ComplexLiteral:
		for _, c := range n.Chunks {
			Walk(c, visit)
		}
	case *MapExpr:
		if n.SpreadBase != nil {
			Walk(n.SpreadBase, visit)
		}
		for _, v := range n.Values {
			Walk(v, visit)
		}
	case *VecExpr:
		for _, el := range n.Elements {
			Walk(el, visit)
		}
	case *ObjectExpr:
		if n.Value != nil {
			Walk(n.Value, visit)
		}
		if n.OptionalDuration != nil {
			Walk(n.OptionalDuration, visit)
		}
		for _, a := range n.Args {
			Walk(a, visit)
		}
		if n.AssignPath != nil {
			Walk(n.AssignPath, visit)
		}
	case *InfixExpr:
		Walk(n.LHS, visit)
		Walk(n.RHS, visit)
	case *PostfixExpr:
		Walk(n.Inner, visit)
	case *PathExpr:
		Walk(n.Literal, visit)
		for _, seg := range n.Path {
			if seg.Index != nil {
				Walk(seg.Index, visit)
			}
			for _, a := range seg.Args {
				Walk(a, visit)
			}
		}
	case *ForEachExpr:
		Walk(n.Iterable, visit)
		Walk(n.Body, visit)
	case *WhileExpr:
		Walk(n.Cond, visit)
		Walk(n.Body, visit)
	case *IfExpr:
		for _, br := range n.Branches {
			if br.Cond != nil {
				Walk(br.Cond, visit)
			}
			Walk(br.Body, visit)
		}
	case *IdentExpr, *LitExpr:
		// leaves
	}
}
