package ast

import (
	"fmt"

	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/token"
)

// Part is one element of the flat `[E (Op E)*]` sequence the expression
// production collects before resolution (spec.md §4.4). Operand parts and
// operator parts strictly alternate, starting and ending on an operand.
type Part struct {
	Operand Expr
	Op      token.OperatorTag
	IsOp    bool
}

func operand(e Expr) Part           { return Part{Operand: e} }
func operator(op token.OperatorTag) Part { return Part{Op: op, IsOp: true} }

// PrecedenceLevel groups operators that bind at the same strength.
type PrecedenceLevel struct {
	Ops        map[token.OperatorTag]bool
	RightAssoc bool
}

func level(rightAssoc bool, ops ...token.OperatorTag) PrecedenceLevel {
	set := make(map[token.OperatorTag]bool, len(ops))
	for _, o := range ops {
		set[o] = true
	}
	return PrecedenceLevel{Ops: set, RightAssoc: rightAssoc}
}

// BinaryPrecedence is the fixed 7-level binary-operator table of spec.md
// §4.5 levels 5 through 11, tightest first. Levels 1-4 of that table
// (member access/call/subscript, increment/decrement, reference prefix,
// cast) are resolved eagerly as each operand is collected — see
// collectOperand in parser.go — because they chain unambiguously by
// textual adjacency and never need reordering against a sibling operand;
// only genuinely binary operators reach this flat-sequence resolver.
// Level 11 (pipe `|>`) has no reachable operator: the closed operator set
// in spec.md §6 does not include `|>`, so this level can never fire — it
// is kept for fidelity to the precedence table.
var BinaryPrecedence = []PrecedenceLevel{
	level(true, token.OpPow),                                                    // 5 exponent
	level(false, token.OpMul, token.OpDiv, token.OpMod),                         // 6 multiplicative
	level(false, token.OpAdd, token.OpSub),                                      // 7 additive
	level(false, token.OpAnd, token.OpLogAnd, token.OpOr, token.OpLogOr,         // 8 logic/bitwise
		token.OpXor, token.OpLogXor, token.OpShl, token.OpShr, token.OpUShr),
	level(false, token.OpEq, token.OpNe, token.OpLt, token.OpLe, token.OpGt, token.OpGe), // 9 comparison
	level(true, token.OpAssign, token.OpDefine, token.OpAddAssign, token.OpSubAssign, // 10 assignment
		token.OpMulAssign, token.OpDivAssign, token.OpModAssign, token.OpPowAssign,
		token.OpAndAssign, token.OpLogAndAssign, token.OpOrAssign, token.OpLogOrAssign,
		token.OpXorAssign, token.OpLogXorAssign, token.OpShlAssign, token.OpShrAssign,
		token.OpUShrAssign),
	level(false), // 11 pipe — empty set, unreachable (see comment above)
}

// ErrUnresolvedExpression is returned when, after every precedence level
// has been applied, the sequence still holds more than one operand.
type ErrUnresolvedExpression struct {
	Span span.Span
}

func (e *ErrUnresolvedExpression) Error() string {
	return fmt.Sprintf("unresolved expression at %s", e.Span)
}

func (e *ErrUnresolvedExpression) GetSpan() span.Span { return e.Span }

// ResolvePEMDAS rewrites a flat operand/operator sequence into a single
// expression tree, applying levels in the given order (tightest first)
// and, within a level, collapsing triples left-to-right or right-to-left
// per its associativity (spec.md §4.5). It takes the precedence table as
// a parameter specifically so it is independently unit-testable.
func ResolvePEMDAS(parts []Part, levels []PrecedenceLevel) (Expr, error) {
	if len(parts) == 0 {
		return nil, &ErrUnresolvedExpression{}
	}
	cur := append([]Part(nil), parts...)
	for _, lvl := range levels {
		if len(lvl.Ops) == 0 {
			continue
		}
		cur = collapseLevel(cur, lvl)
	}
	if len(cur) != 1 || cur[0].IsOp {
		sp := span.Span{}
		if len(cur) > 0 && !cur[0].IsOp {
			sp = cur[0].Operand.Span()
		}
		return nil, &ErrUnresolvedExpression{Span: sp}
	}
	return cur[0].Operand, nil
}

func collapseLevel(parts []Part, lvl PrecedenceLevel) []Part {
	for {
		idx := findTriple(parts, lvl)
		if idx == -1 {
			return parts
		}
		lhs := parts[idx].Operand
		op := parts[idx+1].Op
		rhs := parts[idx+2].Operand
		merged := &Binary{Op: op, Lhs: lhs, Rhs: rhs, Sp: lhs.Span().Cover(rhs.Span())}
		next := make([]Part, 0, len(parts)-2)
		next = append(next, parts[:idx]...)
		next = append(next, operand(merged))
		next = append(next, parts[idx+3:]...)
		parts = next
	}
}

// findTriple returns the index of the operand that starts the triple to
// collapse next, or -1 once none remain at this level. Left-associative
// levels scan left to right so the leftmost triple collapses first (so
// `1-2-3` becomes `(1-2)-3`); right-associative levels scan right to left
// so the rightmost triple collapses first (so `a**b**c` becomes
// `a**(b**c)`).
func findTriple(parts []Part, lvl PrecedenceLevel) int {
	if lvl.RightAssoc {
		for i := len(parts) - 3; i >= 0; i -= 2 {
			if matchesTriple(parts, i, lvl) {
				return i
			}
		}
		return -1
	}
	for i := 0; i+2 < len(parts); i += 2 {
		if matchesTriple(parts, i, lvl) {
			return i
		}
	}
	return -1
}

func matchesTriple(parts []Part, i int, lvl PrecedenceLevel) bool {
	return !parts[i].IsOp && parts[i+1].IsOp && lvl.Ops[parts[i+1].Op] && !parts[i+2].IsOp
}
