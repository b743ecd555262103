package driver_test

import (
	"bytes"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/zylang/zyc/internal/diag"
	"github.com/zylang/zyc/internal/driver"
	"github.com/zylang/zyc/internal/ir"
)

func newDriver(t *testing.T) (*driver.Driver, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return driver.New(logger), &buf
}

func singleFileFS(t *testing.T, src string) fs.FS {
	t.Helper()
	a := txtar.Parse([]byte("-- main.zy --\n" + src))
	fsys, err := txtar.FS(a)
	require.NoError(t, err)
	return fsys
}

// TestCompileEndToEndScenarios drives five of the six base scenarios as
// one table (import is TestCompileImportScenario below) — each is a
// single-module program the driver must either accept
// (err == nil) or reject with a specific diagnostic Stage/Code.
func TestCompileEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name      string
		src       string
		wantErr   bool
		wantStage diag.Stage
		wantCode  string
	}{
		{
			name: "empty main",
			src:  "fn main { }",
		},
		{
			name: "hello world extern",
			src:  `extern puts -> i32 : s: &[]u8; fn main { puts("hi") }`,
		},
		{
			name: "operator precedence",
			src:  "fn f -> i32 { 1 + 2 * 3 }",
		},
		{
			name: "binding inference",
			src:  "fn main { x := 5; y : u8 := x }",
		},
		{
			name:      "type error",
			src:       `fn main { x : u8 := "too long a string" }`,
			wantErr:   true,
			wantStage: diag.StageTypeCheck,
			wantCode:  "IncompatibleType",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := txtar.Parse([]byte("-- main.zy --\n" + tc.src))
			fsys, err := txtar.FS(a)
			require.NoError(t, err)

			d, logs := newDriver(t)
			_, _, err = d.Compile(fsys, "main.zy")
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var diagErr *diag.Diagnostic
			require.ErrorAs(t, err, &diagErr)
			require.Equal(t, tc.wantStage, diagErr.Stage)
			require.Equal(t, tc.wantCode, diagErr.Code)
			require.Contains(t, logs.String(), "stage=type-check")
		})
	}
}

// TestCompileImportScenario is the base scenario's sixth case kept
// separate from the table above because it needs a second module.
func TestCompileImportScenario(t *testing.T) {
	a := txtar.Parse([]byte(`
-- main.zy --
import greet from "./b.zy"; fn main { greet() }
-- b.zy --
export fn greet { }
`))
	fsys, err := txtar.FS(a)
	require.NoError(t, err)

	d, _ := newDriver(t)
	s, h, err := d.Compile(fsys, "main.zy")
	require.NoError(t, err)
	require.Len(t, s.Handles(), 2)

	root := s.Root(h)
	member, ok := root.Lookup("greet")
	require.True(t, ok)
	require.Equal(t, ir.MemberFunction, member.Kind)
}

// TestCompileMultiModuleReExportSharesTypeCellIdentity is expansion
// scenario 7: a re-export chain A -> B -> C must resolve `f` to the
// same underlying TypeCell everywhere, not three independently-inferred
// copies, since `internal/store` splices imports in by reference.
func TestCompileMultiModuleReExportSharesTypeCellIdentity(t *testing.T) {
	a := txtar.Parse([]byte(`
-- a.zy --
import f from "./b.zy"; fn main { f() }
-- b.zy --
export import f from "./c.zy";
-- c.zy --
export fn f -> i32 { 1 }
`))
	fsys, err := txtar.FS(a)
	require.NoError(t, err)

	d, _ := newDriver(t)
	s, h, err := d.Compile(fsys, "a.zy")
	require.NoError(t, err)
	require.Len(t, s.Handles(), 3)

	aRoot := s.Root(h)
	aF, ok := aRoot.Lookup("f")
	require.True(t, ok)
	require.Equal(t, ir.I32, aF.Fn.ReturnTy.T.Intrinsic)

	for _, other := range s.Handles() {
		if other == h {
			continue
		}
		root := s.Root(other)
		if m, ok := root.Lookup("f"); ok {
			require.Same(t, aF.Fn.ReturnTy, m.Fn.ReturnTy, "re-exported f must share one ReturnTy cell across modules")
		}
	}
}

// TestCompileVariadicExternAcceptsAnyTrailingArgCount is expansion
// scenario 9: a variadic extern's declared parameters still have to
// unify, but any number of trailing arguments (of any type) are
// accepted without coercion.
func TestCompileVariadicExternAcceptsAnyTrailingArgCount(t *testing.T) {
	fsys := singleFileFS(t, `
extern printf -> i32 : fmt: &[]u8, ...;
fn main { printf("%d %d %s", 1, 2, "three") }
`)

	d, _ := newDriver(t)
	_, _, err := d.Compile(fsys, "main.zy")
	require.NoError(t, err)
}

// TestCompileSizedArrayOfStructCoerces is expansion scenario 10: a
// binding declared as `[2]Point` keeps that type through checking — its
// variable's cell is a sized array whose element resolves to the struct.
func TestCompileSizedArrayOfStructCoerces(t *testing.T) {
	fsys := singleFileFS(t, `
struct Point { x: i32; y: i32; }
fn main { pts : [2]Point; }
`)

	d, _ := newDriver(t)
	s, h, err := d.Compile(fsys, "main.zy")
	require.NoError(t, err)

	main, ok := s.Root(h).Lookup("main")
	require.True(t, ok)
	decl := main.Fn.Body.Instructions[0].Dest.Var.Resolve()
	require.Equal(t, ir.TypeSizedArrayOf, decl.Ty.T.Kind)
	require.Equal(t, ir.TypeStruct, decl.Ty.T.Elem.T.Kind)
}
