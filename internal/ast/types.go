package ast

import "github.com/zylang/zyc/internal/span"

// Qualified is a (possibly root-anchored) dotted type name with optional
// template arguments: `[::] Ident (:: Ident)* [< TypeArgs >]`.
type Qualified struct {
	Implied bool // leading "::" present
	Parts   []string
	Args    []TypeExpr
	Sp      span.Span
}

func (q *Qualified) Span() span.Span { return q.Sp }
func (*Qualified) typeExpr()         {}

// SizedArrayOf is `[expr] T`.
type SizedArrayOf struct {
	Count Expr
	Elem  TypeExpr
	Sp    span.Span
}

func (a *SizedArrayOf) Span() span.Span { return a.Sp }
func (*SizedArrayOf) typeExpr()         {}

// UnsizedArrayOf is `[] T`.
type UnsizedArrayOf struct {
	Elem TypeExpr
	Sp   span.Span
}

func (a *UnsizedArrayOf) Span() span.Span { return a.Sp }
func (*UnsizedArrayOf) typeExpr()         {}

// ImmutableReferenceTo is `&T`.
type ImmutableReferenceTo struct {
	Elem TypeExpr
	Sp   span.Span
}

func (r *ImmutableReferenceTo) Span() span.Span { return r.Sp }
func (*ImmutableReferenceTo) typeExpr()         {}

// MutReferenceTo is `&mut T`.
type MutReferenceTo struct {
	Elem TypeExpr
	Sp   span.Span
}

func (r *MutReferenceTo) Span() span.Span { return r.Sp }
func (*MutReferenceTo) typeExpr()         {}
