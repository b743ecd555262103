// Package ast builds the per-module syntax tree via recursive-descent
// parsing with backtracking (spec.md §4.4) and resolves flat operator
// sequences into expression trees via PEMDAS (spec.md §4.5).
package ast

import "github.com/zylang/zyc/internal/span"

// Node is implemented by every AST node; every node carries its Span
// (spec.md §3, invariant 1 in §8).
type Node interface {
	Span() span.Span
}

// TopLevel is implemented by every node that can appear as a direct child
// of a GlobalNamespace or a Namespace (spec.md §3).
type TopLevel interface {
	Node
	topLevel()
}

// Expr is implemented by every expression node: Atom | Block |
// SubExpression | ControlFlow | Unary | Binary (spec.md §3).
type Expr interface {
	Node
	expr()
}

// TypeExpr is implemented by every syntactic type node: Qualified |
// SizedArrayOf | UnsizedArrayOf | ImmutableReferenceTo | MutReferenceTo
// (spec.md §3, §4.4).
type TypeExpr interface {
	Node
	typeExpr()
}

// BlockChild is implemented by the node kinds a Block body may directly
// hold: Binding | Expression | ControlFlow | Return (spec.md §4.4).
type BlockChild interface {
	Node
	blockChild()
}
