package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/span"
)

func TestDomainDeclareRejectsCollision(t *testing.T) {
	d := ir.NewDomain(0, "root", nil)
	require.True(t, d.Declare("greet", &ir.DomainMember{Kind: ir.MemberFunction, Name: "greet"}))
	require.False(t, d.Declare("greet", &ir.DomainMember{Kind: ir.MemberFunction, Name: "greet"}))
}

func TestImplKeySynthesizesWithAndWithoutTrait(t *testing.T) {
	require.Equal(t, "impl!<Foo>", ir.ImplKey("Foo", ""))
	require.Equal(t, "impl!<Foo>!<Bar>", ir.ImplKey("Foo", "Bar"))
}

func TestVariableScopeLookupPrefersMostRecentShadow(t *testing.T) {
	s := ir.NewVariableScope()
	s.Declare(&ir.Variable{Name: "x", Kind: ir.VarLocal})
	idx, v, ok := s.Lookup("x")
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Equal(t, ir.VarLocal, v.Kind)

	s.Declare(&ir.Variable{Name: "x", Kind: ir.VarArgument})
	idx, v, ok = s.Lookup("x")
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Equal(t, ir.VarArgument, v.Kind)
}

func TestVariableReferenceResolvesThroughSharedScope(t *testing.T) {
	s := ir.NewVariableScope()
	idx := s.Declare(&ir.Variable{Name: "x", Ty: ir.Unknown(span.Span{})})
	ref := ir.VariableReference{Scope: s, Index: idx}
	require.Equal(t, "x", ref.Resolve().Name)
}

func TestTypeCellDerefFollowsSharedIndirection(t *testing.T) {
	target := ir.Intrinsic(ir.U8, span.Span{})
	shared := ir.NewTypeCell(ir.Type{Kind: ir.TypeShared, SharedTarget: target})
	require.Same(t, target, shared.Deref())
	require.Same(t, target, target.Deref())
}
