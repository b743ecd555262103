package debugdump_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/debugdump"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/preprocess"
	"github.com/zylang/zyc/internal/source"
	"github.com/zylang/zyc/internal/token"
)

func compile(t *testing.T, src string) ([]token.Token, *ast.GlobalNamespace, *ir.Domain) {
	t.Helper()
	toks, err := token.Tokenize(source.New(0, []byte(src)))
	require.NoError(t, err)
	p := ast.NewParser(0, toks)
	ns, err := p.ParseModule()
	require.NoError(t, err)
	domain := ir.NewDomain(0, "main", nil)
	_, err = preprocess.Preprocess(0, ns, domain)
	require.NoError(t, err)
	return toks, ns, domain
}

func TestDumpTokensRoundTripsThroughMsgpack(t *testing.T) {
	toks, _, _ := compile(t, "fn main { }")
	data, err := debugdump.Dump(debugdump.StageTokens, toks, nil, nil)
	require.NoError(t, err)

	var out []debugdump.TokenDump
	require.NoError(t, msgpack.Unmarshal(data, &out))
	require.NotEmpty(t, out)
}

func TestDumpASTRoundTripsThroughMsgpack(t *testing.T) {
	_, ns, _ := compile(t, "fn main { }")
	data, err := debugdump.Dump(debugdump.StageAST, nil, ns, nil)
	require.NoError(t, err)

	var out debugdump.NodeDump
	require.NoError(t, msgpack.Unmarshal(data, &out))
	require.Equal(t, "GlobalNamespace", out.Kind)
	require.Len(t, out.Children, 1)
	require.Equal(t, "Function", out.Children[0].Kind)
	require.Equal(t, "main", out.Children[0].Summary)
}

func TestDumpIRRendersDomainMembers(t *testing.T) {
	_, _, domain := compile(t, "extern puts -> i32 : s: &[]u8; fn main { }")
	data, err := debugdump.Dump(debugdump.StageIR, nil, nil, domain)
	require.NoError(t, err)

	var out debugdump.NodeDump
	require.NoError(t, msgpack.Unmarshal(data, &out))
	require.Equal(t, "Domain", out.Kind)
	require.Len(t, out.Children, 2)
}

// TestDumpASTMatchesPinnedShape pins the exact NodeDump shape
// `zyc dump --stage=ast` produces, the way a golden-file diff would, but
// as a literal since the DTO is small and cycle-free. cmp.Diff (rather
// than reflect.DeepEqual or a field-by-field require.Equal chain) is what
// catches an unintended shape change at the one place in this package
// where the output is a plain tree with no pointers to worry about.
func TestDumpASTMatchesPinnedShape(t *testing.T) {
	_, ns, _ := compile(t, `struct Point { x: i32; y: i32; }`)
	data, err := debugdump.Dump(debugdump.StageAST, nil, ns, nil)
	require.NoError(t, err)
	var got debugdump.NodeDump
	require.NoError(t, msgpack.Unmarshal(data, &got))

	want := debugdump.NodeDump{
		Kind: "GlobalNamespace",
		Children: []debugdump.NodeDump{
			{Kind: "Struct", Summary: "Point", Start: got.Children[0].Start, End: got.Children[0].End},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("AST dump shape changed (-want +got):\n%s", diff)
	}
}

func TestDumpUnknownStageErrors(t *testing.T) {
	_, err := debugdump.Dump(debugdump.Stage("bogus"), nil, nil, nil)
	require.Error(t, err)
}
