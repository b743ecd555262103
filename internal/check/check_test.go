package check_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/check"
	"github.com/zylang/zyc/internal/diag"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/preprocess"
	"github.com/zylang/zyc/internal/source"
	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/token"
)

// fakeProgram is a single-module check.Program, enough to drive the
// fixed-point sweep in isolation from internal/store.
type fakeProgram struct {
	root *ir.Domain
}

func (p *fakeProgram) Root(span.Handle) *ir.Domain { return p.root }
func (p *fakeProgram) Handles() []span.Handle      { return []span.Handle{0} }

func lower(t *testing.T, src string) *ir.Domain {
	t.Helper()
	r := source.New(0, []byte(src))
	toks, err := token.Tokenize(r)
	require.NoError(t, err)
	p := ast.NewParser(0, toks)
	ns, err := p.ParseModule()
	require.NoError(t, err)
	domain := ir.NewDomain(0, "main", nil)
	_, err = preprocess.Preprocess(0, ns, domain)
	require.NoError(t, err)
	return domain
}

func runCheck(t *testing.T, src string) (*ir.Domain, error) {
	t.Helper()
	domain := lower(t, src)
	err := check.New(&fakeProgram{root: domain}).Run()
	return domain, err
}

func TestCheckHelloWorldStringLiteralCoercesToByteSlice(t *testing.T) {
	domain, err := runCheck(t, `extern puts -> i32 : s: &[]u8; fn main { puts("hi") }`)
	require.NoError(t, err)

	main, ok := domain.Lookup("main")
	require.True(t, ok)
	call := main.Fn.Body.Instructions[0]
	arg := call.Args[0]
	require.Equal(t, ir.TypeReferenceTo, arg.Ty.T.Kind)
	require.Equal(t, ir.TypeUnsizedArrayOf, arg.Ty.T.Elem.T.Kind)
	require.Equal(t, ir.U8, arg.Ty.T.Elem.T.Elem.T.Intrinsic)
}

func TestCheckBindingInferencePropagatesAnnotatedType(t *testing.T) {
	domain, err := runCheck(t, "fn main { x := 5; y : u8 := x }")
	require.NoError(t, err)

	main, ok := domain.Lookup("main")
	require.True(t, ok)
	x := main.Fn.Body.Instructions[0].Dest.Var.Resolve()
	require.Equal(t, ir.TypeIntrinsic, x.Ty.T.Kind)
	require.Equal(t, ir.U8, x.Ty.T.Intrinsic)
}

func TestCheckOperatorPrecedenceResolvesBinaryOpTypes(t *testing.T) {
	domain, err := runCheck(t, "fn f -> i32 { 1 + 2 * 3 }")
	require.NoError(t, err)

	f, ok := domain.Lookup("f")
	require.True(t, ok)
	tail := f.Fn.Body.Instructions[0]
	add := tail.Inner.Instr
	require.Equal(t, ir.I32, add.Ty.T.Intrinsic)
	mul := add.Rhs.Instr
	require.Equal(t, ir.I32, mul.Ty.T.Intrinsic)
}

func TestCheckComparisonResultIsU8(t *testing.T) {
	domain, err := runCheck(t, "fn main { if 1 < 2 { } }")
	require.NoError(t, err)

	main, ok := domain.Lookup("main")
	require.True(t, ok)
	cf := main.Fn.Body.Instructions[0]
	require.Equal(t, ir.U8, cf.Cond.Instr.Ty.T.Intrinsic)
}

func TestCheckIncompatibleAssignmentIsTypeCheckError(t *testing.T) {
	_, err := runCheck(t, `fn main { x : u8 := "too long a string" }`)
	require.Error(t, err)
	var d *diag.Diagnostic
	require.ErrorAs(t, err, &d)
	require.Equal(t, diag.StageTypeCheck, d.Stage)
	require.Equal(t, "IncompatibleType", d.Code)
}

func TestCheckCallArityMismatchIsTypeCheckError(t *testing.T) {
	_, err := runCheck(t, `extern puts -> i32 : s: &u8; fn main { puts("a", "b") }`)
	require.Error(t, err)
	var d *diag.Diagnostic
	require.ErrorAs(t, err, &d)
	require.Equal(t, diag.StageTypeCheck, d.Stage)
}

func TestCheckDotResolvesStructFieldType(t *testing.T) {
	domain, err := runCheck(t, `struct Point { x: i32; y: i32; } fn sum -> i32 { p : Point; p.x + p.y }`)
	require.NoError(t, err)

	f, ok := domain.Lookup("sum")
	require.True(t, ok)
	tail := f.Fn.Body.Instructions[len(f.Fn.Body.Instructions)-1]
	add := tail.Inner.Instr
	require.Equal(t, ir.I32, add.Ty.T.Intrinsic)
	require.Equal(t, ir.InstrDot, add.Lhs.Instr.Kind)
	require.Equal(t, ir.I32, add.Lhs.Instr.Ty.T.Intrinsic)
}

func TestCheckDotOnNonStructIsTypeCheckError(t *testing.T) {
	_, err := runCheck(t, `fn main { x : i32 := 1; x.y }`)
	require.Error(t, err)
	var d *diag.Diagnostic
	require.ErrorAs(t, err, &d)
	require.Equal(t, "InvalidDot", d.Code)
}

func TestCheckImplMethodThisResolvesToReferenceToStruct(t *testing.T) {
	domain, err := runCheck(t, `
struct Point { x: i32; y: i32; }
impl Point {
	fn sum -> i32 { this.x + this.y }
}
`)
	require.NoError(t, err)

	impl, ok := domain.Lookup(ir.ImplKey("Point", ""))
	require.True(t, ok)
	sum, ok := impl.Sub.Lookup("sum")
	require.True(t, ok)

	_, thisVar, found := sum.Fn.Args.Lookup("this")
	require.True(t, found)
	require.Equal(t, ir.TypeReferenceTo, thisVar.Ty.T.Kind)
	require.Equal(t, ir.TypeStruct, thisVar.Ty.T.Elem.T.Kind)

	tail := sum.Fn.Body.Instructions[0]
	add := tail.Inner.Instr
	require.Equal(t, ir.I32, add.Ty.T.Intrinsic)
}

func TestCheckUnresolvedStructReturnTypeResolves(t *testing.T) {
	domain, err := runCheck(t, `struct Point { x: i32; y: i32; } fn make -> Point { }`)
	require.NoError(t, err)

	make_, ok := domain.Lookup("make")
	require.True(t, ok)
	require.Equal(t, ir.TypeStruct, make_.Fn.ReturnTy.T.Kind)
	require.Len(t, make_.Fn.ReturnTy.T.StructMembers, 2)
}
