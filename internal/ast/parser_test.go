package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/source"
	"github.com/zylang/zyc/internal/token"
)

func parse(t *testing.T, src string) *ast.GlobalNamespace {
	t.Helper()
	r := source.New(0, []byte(src))
	toks, err := token.Tokenize(r)
	require.NoError(t, err)
	p := ast.NewParser(0, toks)
	ns, err := p.ParseModule()
	require.NoError(t, err)
	return ns
}

func TestParseEmptyMain(t *testing.T) {
	ns := parse(t, "fn main { }")
	require.Len(t, ns.Children, 1)
	fn, ok := ns.Children[0].(*ast.Function)
	require.True(t, ok)
	require.Equal(t, "main", fn.Decl.Name)
	require.Nil(t, fn.Decl.ReturnTy)
	require.Empty(t, fn.Decl.Args)
	require.False(t, fn.Body.ReturnsLast)
	require.Empty(t, fn.Body.Children)
}

func TestParseHelloWorldExtern(t *testing.T) {
	ns := parse(t, `extern puts -> i32 : s: &u8; fn main { puts("hi") };`)
	require.Len(t, ns.Children, 2)

	ext, ok := ns.Children[0].(*ast.Extern)
	require.True(t, ok)
	require.Equal(t, "puts", ext.Decl.Name)
	require.Len(t, ext.Decl.Args, 1)
	require.Equal(t, "s", ext.Decl.Args[0].Name)
	require.False(t, ext.Variadic)

	fn, ok := ns.Children[1].(*ast.Function)
	require.True(t, ok)
	require.Len(t, fn.Body.Children, 1)
	call, ok := fn.Body.Children[0].(*ast.Call)
	require.True(t, ok)
	callee, ok := call.Callee.(*ast.Variable)
	require.True(t, ok)
	require.Equal(t, []string{"puts"}, callee.Name.Parts)
	require.Len(t, call.Args, 1)
	lit, ok := call.Args[0].(*ast.Literal)
	require.True(t, ok)
	require.Equal(t, token.LiteralUnicodeString, lit.Kind)
	require.Equal(t, "hi", lit.StringValue)
}

func TestParseOperatorPrecedence(t *testing.T) {
	ns := parse(t, "fn f -> i32 { 1 + 2 * 3 }")
	fn := ns.Children[0].(*ast.Function)
	require.True(t, fn.Body.ReturnsLast)
	require.Len(t, fn.Body.Children, 1)
	add, ok := fn.Body.Children[0].(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.OpAdd, add.Op)
	_, ok = add.Lhs.(*ast.Literal)
	require.True(t, ok)
	mul, ok := add.Rhs.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.OpMul, mul.Op)
}

func TestParseBindingInference(t *testing.T) {
	ns := parse(t, "fn main { x := 5; y : u8 := x }")
	fn := ns.Children[0].(*ast.Function)
	require.Len(t, fn.Body.Children, 2)

	xb, ok := fn.Body.Children[0].(*ast.Binding)
	require.True(t, ok)
	require.Equal(t, "x", xb.Name)
	require.Nil(t, xb.Ty)
	require.NotNil(t, xb.Init)

	yb, ok := fn.Body.Children[1].(*ast.Binding)
	require.True(t, ok)
	require.Equal(t, "y", yb.Name)
	require.NotNil(t, yb.Ty)
	require.True(t, fn.Body.ReturnsLast)
}

func TestParseImport(t *testing.T) {
	ns := parse(t, `import greet from "./b.zy"; fn main { greet() };`)
	imp, ok := ns.Children[0].(*ast.Import)
	require.True(t, ok)
	require.Equal(t, ast.ImportSingle, imp.Pattern.Kind)
	require.Equal(t, "greet", imp.Pattern.Name)
	require.Equal(t, "./b.zy", imp.Path)
}

func TestParseTypeError3ReturnsBadSecondAssignment(t *testing.T) {
	ns := parse(t, `fn main { x : u8 := 1 ; x := "hi" }`)
	fn := ns.Children[0].(*ast.Function)
	require.Len(t, fn.Body.Children, 2)
	second, ok := fn.Body.Children[1].(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.OpDefine, second.Op)
}

func TestParseIfElseIfElse(t *testing.T) {
	ns := parse(t, `fn main { if x { } else if y { } else { } }`)
	fn := ns.Children[0].(*ast.Function)
	cf, ok := fn.Body.Children[0].(*ast.ControlFlow)
	require.True(t, ok)
	require.Equal(t, ast.CFIf, cf.Kind)
	elseIf, ok := cf.Else.(*ast.ControlFlow)
	require.True(t, ok)
	require.Equal(t, ast.CFIf, elseIf.Kind)
	_, ok = elseIf.Else.(*ast.Block)
	require.True(t, ok)
}

func TestParseConditionBraceIsBlockNotStructInitializer(t *testing.T) {
	ns := parse(t, `fn main { if x { } }`)
	fn := ns.Children[0].(*ast.Function)
	cf := fn.Body.Children[0].(*ast.ControlFlow)
	v, ok := cf.Cond.(*ast.Variable)
	require.True(t, ok, "condition must parse as a bare Variable, not a StructInitializer")
	require.Equal(t, []string{"x"}, v.Name.Parts)
}

func TestParseStructInitializerOutsideCondition(t *testing.T) {
	ns := parse(t, `fn main { p := Point { x: 1, y: 2 } }`)
	fn := ns.Children[0].(*ast.Function)
	b := fn.Body.Children[0].(*ast.Binding)
	init, ok := b.Init.(*ast.StructInitializer)
	require.True(t, ok)
	require.Equal(t, []string{"Point"}, init.Ty.Parts)
	require.Len(t, init.Fields, 2)
}

func TestParseStructDeclaration(t *testing.T) {
	ns := parse(t, `struct Point { x: i32; y: i32; }`)
	st, ok := ns.Children[0].(*ast.Struct)
	require.True(t, ok)
	require.Equal(t, "Point", st.Name)
	require.Len(t, st.Fields, 2)
}

func TestParseImplBlock(t *testing.T) {
	ns := parse(t, `impl Point : Shape { fn area -> i32 { 0 } }`)
	impl, ok := ns.Children[0].(*ast.Impl)
	require.True(t, ok)
	require.Equal(t, []string{"Point"}, impl.TypeName.Parts)
	require.Equal(t, []string{"Shape"}, impl.TraitName.Parts)
	require.Len(t, impl.Methods, 1)
}

func TestParseExternVarargs(t *testing.T) {
	ns := parse(t, `extern printf -> i32 : fmt: &u8, ...;`)
	ext := ns.Children[0].(*ast.Extern)
	require.True(t, ext.Variadic)
	require.Len(t, ext.Decl.Args, 1)
}

func TestParseExportedFunction(t *testing.T) {
	ns := parse(t, `export fn greet { }`)
	exp, ok := ns.Children[0].(*ast.Exported)
	require.True(t, ok)
	_, ok = exp.Inner.(*ast.Function)
	require.True(t, ok)
}
