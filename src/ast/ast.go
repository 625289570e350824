// Package ast defines the CSML abstract syntax tree produced by package
// parser: a Flow is a mapping from instruction scope to Expr, where Expr is
// the tagged union from spec §3.
package ast

import "github.com/csml-sh/csml-engine/src/token"

// Flow is one parsed CSML source file: its declarations, keyed by scope.
type Flow struct {
	Name      string
	Steps     map[string]*Step
	Functions map[string]*Function
	Imports   []*Import
	Constants map[string]*Constant
	// StepOrder/FunctionOrder preserve declaration order for deterministic
	// linting and re-serialization; map iteration order in Go is randomized.
	StepOrder     []string
	FunctionOrder []string
}

// Step is an executable entry point: `step NAME: { ... }`.
type Step struct {
	Name     string
	Body     *Scope
	Interval token.Interval
}

// Function is a callable block: `fn NAME(a, b): { ... }`.
type Function struct {
	Name     string
	Params   []string
	Body     *Scope
	Interval token.Interval
}

// Import brings a function into scope from another flow, or the same one.
// `import NAME [as Alias] [from Flow]`.
type Import struct {
	Name         string
	OriginalName string // the imported function's own name; the parser sets it to Name
	As           string // "" unless aliased
	FromFlow     string // "" means current flow
	Interval     token.Interval
}

// Constant is evaluated on its first reference during an Interpret call and
// the value is cached, immutable, for the rest of that call.
type Constant struct {
	Name     string
	Value    Expr
	Interval token.Interval
}

// BlockKind distinguishes the handful of contexts a Scope can appear in,
// purely for diagnostics (e.g. "body of if", "body of foreach").
type BlockKind int

const (
	BlockStep BlockKind = iota
	BlockFunction
	BlockIf
	BlockElse
	BlockForEach
	BlockWhile
)

// Expr is the tagged union of spec §3's "Expression (AST)". Every concrete
// node embeds Interval via the exprNode marker; type-switch on the concrete
// type to dispatch, the way the evaluator (package interpreter) does.
type Expr interface {
	exprNode()
	Span() token.Interval
}

// Base is embedded by every concrete Expr node to supply its Interval and
// satisfy the Expr interface. Exported (rather than the more common
// unexported "base") so package parser can construct and rewrite node
// intervals directly — needed when re-homing interpolation-slot
// sub-expressions onto their containing string literal's span.
type Base struct {
	Interval token.Interval
}

func (Base) exprNode()              {}
func (b Base) Span() token.Interval { return b.Interval }

// Scope is a braced block: a sequence of statements executed in order.
type Scope struct {
	Base
	BlockKind BlockKind
	Body      []Expr
}

// ComplexLiteral is an interpolated string: "a {{x}} b" split at parse time
// into an ordered sequence of literal-chunk and expression-slot Exprs.
// Chunks are *LitExpr (string kind); slots are arbitrary sub-expressions
// re-parsed from the {{ ... }} source text.
type ComplexLiteral struct {
	Base
	Chunks []Expr
}

// MapExpr is an object literal `{k: v, ...}`. Update marks `{..base, k:v}`
// spread-update form, where SpreadBase holds the spread expression.
type MapExpr struct {
	Base
	Keys       []string
	Values     []Expr
	Update     bool
	SpreadBase Expr // non-nil only when Update
}

// VecExpr is an array literal `[a, b, c]`.
type VecExpr struct {
	Base
	Elements []Expr
}

// ReservedFnKind enumerates the built-in statement forms wrapped by
// ObjectExpr.
type ReservedFnKind int

const (
	FnGoto ReservedFnKind = iota
	FnUse
	FnDo
	FnSay
	FnDebug
	FnReturn
	FnRemember
	FnForget
	FnHold
	FnBreak
	FnContinue
	FnAs
	FnBuiltIn
	FnAssign
)

// ObjectExpr wraps one of the reserved statement forms (spec §4.4.2).
type ObjectExpr struct {
	Base
	Kind ReservedFnKind

	// Goto: Target names a step or "end"/"flow_name:step" cross-flow form.
	Target string

	// Use/Do/Say/Debug/Return/Remember/Forget/As: Value is the operand
	// expression (nil for bare `break`/`continue`).
	Value Expr

	// Remember: Key is the memory key (Value is the memory value).
	Key string

	// Hold: OptionalDuration is an optional TTL expression, may be nil.
	OptionalDuration Expr

	// As: Alias is the bound name; Value is the aliased expression.
	Alias string

	// BuiltIn: Name is the built-in function name, Args its arguments.
	Name string
	Args []Expr

	// Assign: Target path and Assigned value, for `path = expr` statements.
	AssignPath *PathExpr
}

// InfixExpr is a binary operator application.
type InfixExpr struct {
	Base
	Op  token.Kind
	LHS Expr
	RHS Expr
}

// PostfixExpr currently covers only logical negation `!expr`.
type PostfixExpr struct {
	Base
	Inner Expr
}

// PathKindTag discriminates PathExpr segments.
type PathKindTag int

const (
	PathDot PathKindTag = iota
	PathIndex
	PathCall
)

// PathSegment is one `.ident`, `[expr]`, or `.ident(args...)` link in a
// member/index/method chain.
type PathSegment struct {
	Kind  PathKindTag
	Ident string // PathDot, PathCall
	Index Expr   // PathIndex
	Args  []Expr // PathCall
}

// PathExpr is a member/index/method access chain rooted at Literal.
type PathExpr struct {
	Base
	Literal Expr
	Path    []PathSegment
}

// ForEachExpr is `foreach (elem[, idx]) in iterable { body }`.
type ForEachExpr struct {
	Base
	ElemIdent string
	IdxIdent  string // "" if not bound
	Iterable  Expr
	Body      *Scope
}

// WhileExpr is `while (cond) { body }`.
type WhileExpr struct {
	Base
	Cond Expr
	Body *Scope
}

// IfBranch is one arm of an if/elif/else chain.
type IfBranch struct {
	Cond Expr // nil for the trailing else
	Body *Scope
}

// IfExpr is an if/elif.../else? chain, stored as an ordered branch list;
// the last branch has Cond == nil when an else is present.
type IfExpr struct {
	Base
	Branches []IfBranch
}

// IdentExpr is a bare identifier reference (step_vars or context lookup).
type IdentExpr struct {
	Base
	Name string
}

// LitExpr is a primitive literal token. InInSubstring marks a literal
// chunk produced while splitting a ComplexLiteral, distinguishing it from
// a top-level bare literal for diagnostics.
type LitExpr struct {
	Base
	Kind           token.Kind // STRING, INT, FLOAT, TRUE, FALSE, NULL
	Raw            string
	InInSubstring  bool
}
