package ast

import (
	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/token"
)

// Literal is a numeric, string, or char atom, carrying the tokenizer's
// already-decoded value.
type Literal struct {
	Kind        token.LiteralKind
	IntValue    uint64
	FloatValue  float64
	StringValue string
	Sp          span.Span
}

func (l *Literal) Span() span.Span { return l.Sp }
func (*Literal) expr()             {}
func (*Literal) blockChild()       {}

// Variable is a qualified-name reference used as an expression operand.
type Variable struct {
	Name *Qualified
	Sp   span.Span
}

func (v *Variable) Span() span.Span { return v.Sp }
func (*Variable) expr()             {}
func (*Variable) blockChild()       {}

// StructFieldInit is one `name: expr` pair of a StructInitializer.
type StructFieldInit struct {
	Name  string
	Value Expr
	Sp    span.Span
}

// StructInitializer is `Qualified { name: expr, ... }`.
type StructInitializer struct {
	Ty     *Qualified
	Fields []StructFieldInit
	Sp     span.Span
}

func (s *StructInitializer) Span() span.Span { return s.Sp }
func (*StructInitializer) expr()             {}
func (*StructInitializer) blockChild()       {}

// Return is `return [expr]`.
type Return struct {
	Value Expr // nil for a valueless return
	Sp    span.Span
}

func (r *Return) Span() span.Span { return r.Sp }
func (*Return) expr()             {}
func (*Return) blockChild()       {}

// Break is the `break` atom.
type Break struct {
	Sp span.Span
}

func (b *Break) Span() span.Span { return b.Sp }
func (*Break) expr()             {}
func (*Break) blockChild()       {}

// Block is `{ (BlockChild ';')* [TailExpression] }`.
type Block struct {
	Children    []BlockChild
	ReturnsLast bool // true when the tail expression has no trailing ';'
	Sp          span.Span
}

func (b *Block) Span() span.Span { return b.Sp }
func (*Block) expr()             {}
func (*Block) blockChild()       {}

// SubExpression is a parenthesized expression `( expr )`, kept distinct
// from its inner expression so the span covers the parens.
type SubExpression struct {
	Inner Expr
	Sp    span.Span
}

func (s *SubExpression) Span() span.Span { return s.Sp }
func (*SubExpression) expr()             {}
func (*SubExpression) blockChild()       {}

// ControlFlowKind is the closed set of control-flow forms (spec.md §4.4).
type ControlFlowKind uint8

const (
	CFIf ControlFlowKind = iota
	CFWhile
	CFDoWhile
	CFUntil
	CFDoUntil
	CFFor
	CFLoop
)

// ControlFlow unifies `if/else`, `while`, `do ... while`, `until`,
// `do ... until`, `for`, and `loop`. Cond is nil only for CFLoop. Else is
// nil, or another *ControlFlow (an `else if`), or a *Block (a plain
// `else`).
type ControlFlow struct {
	Kind ControlFlowKind
	Cond Expr
	Body *Block
	Else Expr
	Sp   span.Span
}

func (c *ControlFlow) Span() span.Span { return c.Sp }
func (*ControlFlow) expr()             {}
func (*ControlFlow) blockChild()       {}

// Unary is a prefix operator applied to an operand: reference (`&`,
// `&mut`), logical/bitwise not (`!`, `~`), unary minus (`-`), or prefix
// increment/decrement (`++`, `--`).
type Unary struct {
	Op      token.OperatorTag
	Mut     bool // only meaningful when Op == token.OpAnd (reference prefix)
	Operand Expr
	Sp      span.Span
}

func (u *Unary) Span() span.Span { return u.Sp }
func (*Unary) expr()             {}
func (*Unary) blockChild()       {}

// PostfixOp is a suffix increment/decrement applied to an operand.
type PostfixOp struct {
	Op      token.OperatorTag
	Operand Expr
	Sp      span.Span
}

func (p *PostfixOp) Span() span.Span { return p.Sp }
func (*PostfixOp) expr()             {}
func (*PostfixOp) blockChild()       {}

// Dot is member access `lhs.name`.
type Dot struct {
	Base   Expr
	Member string
	Sp     span.Span
}

func (d *Dot) Span() span.Span { return d.Sp }
func (*Dot) expr()             {}
func (*Dot) blockChild()       {}

// Index is a subscript `base[index]`.
type Index struct {
	Base  Expr
	Index Expr
	Sp    span.Span
}

func (i *Index) Span() span.Span { return i.Sp }
func (*Index) expr()             {}
func (*Index) blockChild()       {}

// Call is a function or method call `callee(args...)`.
type Call struct {
	Callee Expr
	Args   []Expr
	Sp     span.Span
}

func (c *Call) Span() span.Span { return c.Sp }
func (*Call) expr()             {}
func (*Call) blockChild()       {}

// Cast is `expr as T`.
type Cast struct {
	Operand Expr
	Ty      TypeExpr
	Sp      span.Span
}

func (c *Cast) Span() span.Span { return c.Sp }
func (*Cast) expr()             {}
func (*Cast) blockChild()       {}

// Binary is a resolved binary operator node, produced only by PEMDAS.
type Binary struct {
	Op  token.OperatorTag
	Lhs Expr
	Rhs Expr
	Sp  span.Span
}

func (b *Binary) Span() span.Span { return b.Sp }
func (*Binary) expr()             {}
func (*Binary) blockChild()       {}

// Binding is `[mut] [Type] Ident [:= Expression]`; at least one of Ty or
// Init must be present (spec.md §4.4).
type Binding struct {
	Mut  bool
	Ty   TypeExpr // nil when inferred from Init
	Name string
	Init Expr // nil when Ty alone suffices (declaration without value)
	Sp   span.Span
}

func (b *Binding) Span() span.Span { return b.Sp }
func (*Binding) blockChild()       {}
