package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/token"
)

func lit(h span.Handle, start, end int, v uint64) Expr {
	return &Literal{Kind: token.LiteralInteger, IntValue: v, Sp: span.New(h, start, end)}
}

func TestPEMDASMultiplicationBindsTighterThanAddition(t *testing.T) {
	// 1 + 2 * 3
	parts := []Part{
		operand(lit(0, 0, 1, 1)),
		operator(token.OpAdd),
		operand(lit(0, 4, 5, 2)),
		operator(token.OpMul),
		operand(lit(0, 8, 9, 3)),
	}
	got, err := ResolvePEMDAS(parts, BinaryPrecedence)
	require.NoError(t, err)

	add, ok := got.(*Binary)
	require.True(t, ok)
	require.Equal(t, token.OpAdd, add.Op)
	require.Equal(t, lit(0, 0, 1, 1), add.Lhs)

	mul, ok := add.Rhs.(*Binary)
	require.True(t, ok)
	require.Equal(t, token.OpMul, mul.Op)
}

func TestPEMDASExponentIsRightAssociative(t *testing.T) {
	// a ** b ** c  ==  a ** (b ** c)
	parts := []Part{
		operand(lit(0, 0, 1, 1)),
		operator(token.OpPow),
		operand(lit(0, 2, 3, 2)),
		operator(token.OpPow),
		operand(lit(0, 4, 5, 3)),
	}
	got, err := ResolvePEMDAS(parts, BinaryPrecedence)
	require.NoError(t, err)

	outer, ok := got.(*Binary)
	require.True(t, ok)
	require.Equal(t, lit(0, 0, 1, 1), outer.Lhs)
	inner, ok := outer.Rhs.(*Binary)
	require.True(t, ok)
	require.Equal(t, token.OpPow, inner.Op)
}

func TestPEMDASSubtractionIsLeftAssociative(t *testing.T) {
	// 1 - 2 - 3  ==  (1 - 2) - 3
	parts := []Part{
		operand(lit(0, 0, 1, 1)),
		operator(token.OpSub),
		operand(lit(0, 2, 3, 2)),
		operator(token.OpSub),
		operand(lit(0, 4, 5, 3)),
	}
	got, err := ResolvePEMDAS(parts, BinaryPrecedence)
	require.NoError(t, err)

	outer, ok := got.(*Binary)
	require.True(t, ok)
	inner, ok := outer.Lhs.(*Binary)
	require.True(t, ok)
	require.Equal(t, token.OpSub, inner.Op)
	require.Equal(t, lit(0, 4, 5, 3), outer.Rhs)
}

func TestPEMDASAssignmentBindsLoosestAndIsRightAssociative(t *testing.T) {
	// x = y = 1 + 2
	parts := []Part{
		operand(&Variable{Name: &Qualified{Parts: []string{"x"}}}),
		operator(token.OpAssign),
		operand(&Variable{Name: &Qualified{Parts: []string{"y"}}}),
		operator(token.OpAssign),
		operand(lit(0, 0, 1, 1)),
		operator(token.OpAdd),
		operand(lit(0, 2, 3, 2)),
	}
	got, err := ResolvePEMDAS(parts, BinaryPrecedence)
	require.NoError(t, err)

	outer, ok := got.(*Binary)
	require.True(t, ok)
	require.Equal(t, token.OpAssign, outer.Op)
	inner, ok := outer.Rhs.(*Binary)
	require.True(t, ok)
	require.Equal(t, token.OpAssign, inner.Op)
	_, ok = inner.Rhs.(*Binary)
	require.True(t, ok, "the 1+2 sub-expression must resolve before assignment wraps it")
}

func TestPEMDASSingleOperandResolvesTrivially(t *testing.T) {
	got, err := ResolvePEMDAS([]Part{operand(lit(0, 0, 1, 1))}, BinaryPrecedence)
	require.NoError(t, err)
	require.Equal(t, lit(0, 0, 1, 1), got)
}

func TestPEMDASDanglingOperatorIsAnError(t *testing.T) {
	parts := []Part{operand(lit(0, 0, 1, 1)), operator(token.OpAdd)}
	_, err := ResolvePEMDAS(parts, BinaryPrecedence)
	require.Error(t, err)
	var unresolved *ErrUnresolvedExpression
	require.ErrorAs(t, err, &unresolved)
}
