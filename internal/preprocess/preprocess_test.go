package preprocess_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/preprocess"
	"github.com/zylang/zyc/internal/source"
	"github.com/zylang/zyc/internal/token"
)

func run(t *testing.T, src string) (*ir.Domain, *preprocess.Result) {
	t.Helper()
	r := source.New(0, []byte(src))
	toks, err := token.Tokenize(r)
	require.NoError(t, err)
	p := ast.NewParser(0, toks)
	ns, err := p.ParseModule()
	require.NoError(t, err)

	domain := ir.NewDomain(0, "main", nil)
	res, err := preprocess.Preprocess(0, ns, domain)
	require.NoError(t, err)
	return domain, res
}

func TestPreprocessHelloWorldExtern(t *testing.T) {
	domain, _ := run(t, `extern puts -> i32 : s: &u8; fn main { puts("hi") };`)

	extMember, ok := domain.Lookup("puts")
	require.True(t, ok)
	require.Equal(t, ir.MemberExternFunction, extMember.Kind)
	require.Equal(t, ir.I32, extMember.Fn.ReturnTy.T.Intrinsic)
	require.Len(t, extMember.Fn.Args.Inner, 1)
	require.Equal(t, "s", extMember.Fn.Args.Inner[0].Name)
	require.False(t, extMember.Fn.Variadic)

	mainMember, ok := domain.Lookup("main")
	require.True(t, ok)
	require.Len(t, mainMember.Fn.Body.Instructions, 1)
	call := mainMember.Fn.Body.Instructions[0]
	require.Equal(t, ir.InstrCall, call.Kind)
	require.Len(t, call.Args, 1)
	require.Equal(t, ir.LitString, call.Args[0].LitKind)
	require.Equal(t, "hi", call.Args[0].StringValue)
}

func TestPreprocessBindingInference(t *testing.T) {
	domain, _ := run(t, "fn main { x := 5; y : u8 := x }")
	main, ok := domain.Lookup("main")
	require.True(t, ok)
	require.Len(t, main.Fn.Body.Instructions, 2)

	first := main.Fn.Body.Instructions[0]
	require.Equal(t, ir.InstrAssign, first.Kind)
	require.Equal(t, ir.ValueKindVariable, first.Dest.Kind)
	require.Equal(t, "x", first.Dest.Var.Resolve().Name)
	require.Equal(t, ir.TypeUnknown, first.Dest.Var.Resolve().Ty.T.Kind)

	second := main.Fn.Body.Instructions[1]
	require.Equal(t, "y", second.Dest.Var.Resolve().Name)
	require.Equal(t, ir.U8, second.Dest.Var.Resolve().Ty.T.Intrinsic)
	require.Equal(t, ir.ValueKindVariable, second.Value.Kind)
	require.Equal(t, "x", second.Value.Var.Resolve().Name)
}

func TestPreprocessOperatorPrecedenceLowersToBinaryOp(t *testing.T) {
	domain, _ := run(t, "fn f -> i32 { 1 + 2 * 3 }")
	f, ok := domain.Lookup("f")
	require.True(t, ok)
	require.True(t, f.Fn.Body.ReturnsLast)
	require.Len(t, f.Fn.Body.Instructions, 1)

	tail := f.Fn.Body.Instructions[0]
	require.Equal(t, ir.InstrValue, tail.Kind)
	add := tail.Inner.Instr
	require.Equal(t, ir.InstrBinaryOp, add.Kind)
	require.Equal(t, ir.BinAdd, add.BinOp)
	mul := add.Rhs.Instr
	require.Equal(t, ir.BinMul, mul.BinOp)
}

func TestPreprocessIfElseIfElse(t *testing.T) {
	domain, _ := run(t, `fn main { if x { } else if y { } else { } }`)
	main, _ := domain.Lookup("main")
	require.Len(t, main.Fn.Body.Instructions, 1)
	top := main.Fn.Body.Instructions[0]
	require.Equal(t, ir.InstrControlFlow, top.Kind)
	require.Equal(t, ir.CFIf, top.CFKind)
	require.NotNil(t, top.Else)
	require.Len(t, top.Else.Instructions, 1)
	elseIf := top.Else.Instructions[0]
	require.Equal(t, ir.InstrControlFlow, elseIf.Kind)
	require.Equal(t, ir.CFIf, elseIf.CFKind)
	require.NotNil(t, elseIf.Else)
}

func TestPreprocessDoWhileDesugarsToLoopWithConditionalBreak(t *testing.T) {
	domain, _ := run(t, `fn main { do { x := 1 } while y }`)
	main, _ := domain.Lookup("main")
	require.Len(t, main.Fn.Body.Instructions, 1)
	loop := main.Fn.Body.Instructions[0]
	require.Equal(t, ir.InstrControlFlow, loop.Kind)
	require.Equal(t, ir.CFLoop, loop.CFKind)
	require.Nil(t, loop.Cond)

	last := loop.Body.Instructions[len(loop.Body.Instructions)-1]
	require.Equal(t, ir.InstrControlFlow, last.Kind)
	require.Equal(t, ir.CFIf, last.CFKind)
	require.Len(t, last.Body.Instructions, 1)
	require.Equal(t, ir.InstrBreak, last.Body.Instructions[0].Kind)
}

func TestPreprocessImportIsRecordedNotDeclared(t *testing.T) {
	domain, res := run(t, `import greet from "./b.zy"; fn main { }`)
	require.Len(t, res.Imports, 1)
	require.Equal(t, "./b.zy", res.Imports[0].Path)
	require.Equal(t, ast.ImportSingle, res.Imports[0].Pattern.Kind)
	_, mainOk := domain.Lookup("main")
	require.True(t, mainOk)
	_, importOk := domain.Lookup("greet")
	require.False(t, importOk)
}

func TestPreprocessExportedFunctionRecordsExport(t *testing.T) {
	_, res := run(t, `export fn greet { }`)
	require.True(t, res.Exports["greet"])
}

func TestPreprocessStructDeclaration(t *testing.T) {
	domain, _ := run(t, `struct Point { x: i32; y: i32; }`)
	member, ok := domain.Lookup("Point")
	require.True(t, ok)
	require.Equal(t, ir.MemberStruct, member.Kind)
	require.Len(t, member.Ty.T.StructMembers, 2)
	require.Equal(t, "x", member.Ty.T.StructMembers[0].Name)
	require.Equal(t, ir.I32, member.Ty.T.StructMembers[0].Ty.T.Intrinsic)
}

func TestPreprocessDotLowersToDeferredInstruction(t *testing.T) {
	domain, _ := run(t, `fn f { p.x }`)
	f, ok := domain.Lookup("f")
	require.True(t, ok)
	tail := f.Fn.Body.Instructions[0]
	require.Equal(t, ir.InstrValue, tail.Kind)
	require.Equal(t, ir.InstrDot, tail.Inner.Instr.Kind)
	require.Equal(t, "x", tail.Inner.Instr.Member)
}

func TestPreprocessImplMethodDeclaresThisArgument(t *testing.T) {
	domain, _ := run(t, `impl Point { fn sum -> i32 { this.x + this.y } }`)
	impl, ok := domain.Lookup(ir.ImplKey("Point", ""))
	require.True(t, ok)
	sum, ok := impl.Sub.Lookup("sum")
	require.True(t, ok)

	idx, thisVar, found := sum.Fn.Args.Lookup("this")
	require.True(t, found)
	require.GreaterOrEqual(t, idx, 0)
	require.Equal(t, ir.VarArgument, thisVar.Kind)
	require.Equal(t, ir.TypeReferenceTo, thisVar.Ty.T.Kind)
	require.False(t, thisVar.Ty.T.Mut)
}

func TestPreprocessStaticMethodHasNoThisArgument(t *testing.T) {
	domain, _ := run(t, `impl Point { static fn origin -> i32 { 0 } }`)
	impl, ok := domain.Lookup(ir.ImplKey("Point", ""))
	require.True(t, ok)
	origin, ok := impl.Sub.Lookup("origin")
	require.True(t, ok)

	_, _, found := origin.Fn.Args.Lookup("this")
	require.False(t, found)
}

func TestPreprocessMutMethodGetsMutReceiver(t *testing.T) {
	domain, _ := run(t, `impl Point { mut fn reset -> i32 { 0 } }`)
	impl, ok := domain.Lookup(ir.ImplKey("Point", ""))
	require.True(t, ok)
	reset, ok := impl.Sub.Lookup("reset")
	require.True(t, ok)

	_, thisVar, found := reset.Fn.Args.Lookup("this")
	require.True(t, found)
	require.True(t, thisVar.Ty.T.Mut)
}

func TestPreprocessExportedImportMarksLocalNameExported(t *testing.T) {
	_, res := run(t, `export import f from "./a.zy"; fn main { }`)
	require.True(t, res.Exports["f"])
}

func TestPreprocessExportedAliasedImportMarksAliasExported(t *testing.T) {
	_, res := run(t, `export import f as g from "./a.zy"; fn main { }`)
	require.True(t, res.Exports["g"])
	require.False(t, res.Exports["f"])
}

func TestPreprocessIndexLowersToDeferredInstruction(t *testing.T) {
	domain, _ := run(t, `fn f { a[0] }`)
	f, ok := domain.Lookup("f")
	require.True(t, ok)
	tail := f.Fn.Body.Instructions[0]
	require.Equal(t, ir.InstrIndex, tail.Inner.Instr.Kind)
}

func TestPreprocessImplBlockUsesSyntheticKey(t *testing.T) {
	domain, _ := run(t, `impl Point : Shape { fn area -> i32 { 0 } }`)
	key := ir.ImplKey("Point", "Shape")
	member, ok := domain.Lookup(key)
	require.True(t, ok)
	require.Equal(t, ir.MemberDomain, member.Kind)
	_, ok = member.Sub.Lookup("area")
	require.True(t, ok)
}

func TestPreprocessDuplicateTopLevelNameIsCollision(t *testing.T) {
	_, _, err := parseAndPreprocess(t, `fn f { } fn f { }`)
	require.Error(t, err)
	var collide *preprocess.CollisionError
	require.ErrorAs(t, err, &collide)
	require.Equal(t, "f", collide.Name)
}

func parseAndPreprocess(t *testing.T, src string) (*ir.Domain, *preprocess.Result, error) {
	t.Helper()
	r := source.New(0, []byte(src))
	toks, err := token.Tokenize(r)
	require.NoError(t, err)
	p := ast.NewParser(0, toks)
	ns, err := p.ParseModule()
	require.NoError(t, err)
	domain := ir.NewDomain(0, "main", nil)
	res, err := preprocess.Preprocess(0, ns, domain)
	return domain, res, err
}
