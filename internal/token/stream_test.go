package token_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/token"
)

func TestStreamPeekNextAdvance(t *testing.T) {
	toks := tokenize(t, "a b c")
	s := token.NewStream(toks)
	require.Equal(t, "a", s.Peek().Text)
	require.Equal(t, "a", s.Next().Text)
	s.SkipWhitespaceAndComments()
	require.Equal(t, "b", s.Peek().Text)
}

func TestStreamMarkCommitAndUndo(t *testing.T) {
	toks := tokenize(t, "a b")
	s := token.NewStream(toks)

	s.PushMark()
	s.Next()
	s.PopMark()
	require.Equal(t, "a", s.Peek().Text, "PopMark must restore the cursor")

	s.PushMark()
	s.Next()
	s.DropMark()
	require.NotEqual(t, "a", s.Peek().Text, "DropMark must keep the advanced cursor")
}

func TestMakeCommitsOnSuccess(t *testing.T) {
	toks := tokenize(t, "a b")
	s := token.NewStream(toks)
	depth := s.MarkDepth()

	v, ok, err := token.Make(s, func() (string, bool, error) {
		tk := s.Next()
		return tk.Text, true, nil
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.Equal(t, depth, s.MarkDepth())
	require.NotEqual(t, "a", s.Peek().Text)
}

func TestMakeUndoesOnNotMyConstruct(t *testing.T) {
	toks := tokenize(t, "a b")
	s := token.NewStream(toks)
	depth := s.MarkDepth()

	_, ok, err := token.Make(s, func() (string, bool, error) {
		s.Next()
		return "", false, nil
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, depth, s.MarkDepth())
	require.Equal(t, "a", s.Peek().Text, "failed attempt must not consume input")
}

func TestMakeUndoesOnError(t *testing.T) {
	toks := tokenize(t, "a b")
	s := token.NewStream(toks)
	depth := s.MarkDepth()

	boom := errors.New("boom")
	_, _, err := token.Make(s, func() (string, bool, error) {
		s.Next()
		return "", false, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, depth, s.MarkDepth())
	require.Equal(t, "a", s.Peek().Text)
}

func TestMakeNestedMarksStayBalanced(t *testing.T) {
	toks := tokenize(t, "a b c")
	s := token.NewStream(toks)
	depth := s.MarkDepth()

	_, ok, err := token.Make(s, func() (string, bool, error) {
		_, innerOk, innerErr := token.Make(s, func() (string, bool, error) {
			s.Next()
			return "", false, nil
		})
		require.NoError(t, innerErr)
		require.False(t, innerOk)
		s.Next()
		return "committed", true, nil
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, depth, s.MarkDepth())
}
