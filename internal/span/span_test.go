package span_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/span"
)

func TestCoverSameHandle(t *testing.T) {
	a := span.New(3, 10, 20)
	b := span.New(3, 15, 30)
	got := a.Cover(b)
	require.Equal(t, span.New(3, 10, 30), got)
}

func TestCoverZero(t *testing.T) {
	a := span.Span{}
	b := span.New(1, 5, 9)
	require.Equal(t, b, a.Cover(b))
	require.Equal(t, b, b.Cover(a))
}

func TestCoverCrossHandlePanics(t *testing.T) {
	a := span.New(1, 0, 1)
	b := span.New(2, 0, 1)
	require.Panics(t, func() { a.Cover(b) })
}

func TestNewRejectsInvertedRange(t *testing.T) {
	require.Panics(t, func() { span.New(0, 5, 2) })
}
