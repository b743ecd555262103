package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/source"
	"github.com/zylang/zyc/internal/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	r := source.New(0, []byte(src))
	toks, err := token.Tokenize(r)
	require.NoError(t, err)
	return toks
}

func nonTrivia(toks []token.Token) []token.Token {
	var out []token.Token
	for _, tk := range toks {
		if tk.IsTrivia() {
			continue
		}
		out = append(out, tk)
	}
	return out
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	toks := nonTrivia(tokenize(t, "fn main struct Foo"))
	require.Len(t, toks, 5)
	require.Equal(t, token.KindKeyword, toks[0].Kind)
	require.Equal(t, token.KwFn, toks[0].Keyword)
	require.Equal(t, token.KindIdentifier, toks[1].Kind)
	require.Equal(t, token.KindKeyword, toks[2].Kind)
	require.Equal(t, token.KwStruct, toks[2].Keyword)
	require.Equal(t, token.KindIdentifier, toks[3].Kind)
	require.Equal(t, token.KindEOF, toks[4].Kind)
}

func TestTokenizeNumericBases(t *testing.T) {
	toks := nonTrivia(tokenize(t, "0b1010 0o17 0xFF 1_000 3.14"))
	require.Equal(t, uint64(10), toks[0].IntValue)
	require.Equal(t, uint64(15), toks[1].IntValue)
	require.Equal(t, uint64(255), toks[2].IntValue)
	require.Equal(t, uint64(1000), toks[3].IntValue)
	require.Equal(t, token.LiteralFloat, toks[4].LiteralKind)
	require.InDelta(t, 3.14, toks[4].FloatValue, 1e-9)
}

func TestTokenizeDotAfterIntIsMemberAccessNotFloat(t *testing.T) {
	toks := nonTrivia(tokenize(t, "5.foo"))
	require.Equal(t, token.LiteralInteger, toks[0].LiteralKind)
	require.Equal(t, token.KindOperator, toks[1].Kind)
	require.Equal(t, token.OpDot, toks[1].Operator)
	require.Equal(t, token.KindIdentifier, toks[2].Kind)
}

func TestTokenizeLongestMatchOperators(t *testing.T) {
	toks := nonTrivia(tokenize(t, ">>>= >>= >> > ** * &&= &&"))
	want := []token.OperatorTag{
		token.OpUShrAssign, token.OpShrAssign, token.OpShr, token.OpGt,
		token.OpPow, token.OpMul, token.OpLogAndAssign, token.OpLogAnd,
	}
	require.Len(t, toks, len(want)+1) // +1 EOF
	for i, w := range want {
		require.Equal(t, w, toks[i].Operator, "token %d", i)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks := nonTrivia(tokenize(t, `"hi\n\t\"there\""`))
	require.Equal(t, token.LiteralUnicodeString, toks[0].LiteralKind)
	require.Equal(t, "hi\n\t\"there\"", toks[0].StringValue)
}

func TestTokenizeByteAndCString(t *testing.T) {
	toks := nonTrivia(tokenize(t, `b"raw" c"cstr"`))
	require.Equal(t, token.LiteralByteString, toks[0].LiteralKind)
	require.Equal(t, "raw", toks[0].StringValue)
	require.Equal(t, token.LiteralCString, toks[1].LiteralKind)
	require.Equal(t, "cstr", toks[1].StringValue)
}

func TestTokenizeLineAndBlockComments(t *testing.T) {
	toks := tokenize(t, "// a line\n/* block\ncomment */x")
	require.Equal(t, token.KindComment, toks[0].Kind)
	require.Equal(t, token.CommentLine, toks[0].CommentKind)
	// second comment after whitespace
	var foundMultiline, foundIdent bool
	for _, tk := range toks {
		if tk.Kind == token.KindComment && tk.CommentKind == token.CommentMultiline {
			foundMultiline = true
		}
		if tk.Kind == token.KindIdentifier && tk.Text == "x" {
			foundIdent = true
		}
	}
	require.True(t, foundMultiline)
	require.True(t, foundIdent)
}

func TestTokenizeInvalidOperatorCharContinuesToEOL(t *testing.T) {
	toks := nonTrivia(tokenize(t, "`bad\nzz ok"))
	require.Equal(t, token.KindInvalid, toks[0].Kind)
	require.Equal(t, token.KindIdentifier, toks[1].Kind)
	require.Equal(t, "zz", toks[1].Text)
}

func TestTokenizeGrouping(t *testing.T) {
	toks := nonTrivia(tokenize(t, "([{}])"))
	kinds := []token.GroupingKind{token.Paren, token.Bracket, token.Brace, token.Brace, token.Bracket, token.Paren}
	sides := []token.GroupingSide{token.Open, token.Open, token.Open, token.Close, token.Close, token.Close}
	for i := range kinds {
		require.Equal(t, kinds[i], toks[i].GroupKind, "tok %d", i)
		require.Equal(t, sides[i], toks[i].GroupSide, "tok %d", i)
	}
}

func TestTokenizeReservedEscapesAreErrors(t *testing.T) {
	r := source.New(0, []byte(`"\x41"`))
	_, err := token.Tokenize(r)
	require.Error(t, err)
}

func TestRoundTripToSource(t *testing.T) {
	src := "fn main{x:=1+2;}"
	toks := tokenize(t, src)
	var rebuilt string
	for _, tk := range toks {
		if tk.Kind == token.KindEOF {
			continue
		}
		rebuilt += tk.ToSource(nil)
	}
	require.Equal(t, src, rebuilt)
}
