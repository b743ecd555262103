package token

import "github.com/zylang/zyc/internal/span"

// Stream is a cursor over a module's token vector carrying a mark stack, as
// specified in spec.md §4.3. It gives parser productions free backtracking:
// push a mark, attempt a production, then drop (commit) or pop (undo) it.
type Stream struct {
	toks  []Token
	pos   int
	marks []int
}

// NewStream wraps a token vector (as produced by Tokenize) for parsing.
func NewStream(toks []Token) *Stream {
	return &Stream{toks: toks}
}

// Peek returns the token at the cursor without advancing it. Past the end
// of the vector it returns the trailing EOF token.
func (s *Stream) Peek() Token {
	if s.pos >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.pos]
}

// PeekVariant reports whether the token under the cursor has the given
// Kind, without advancing.
func (s *Stream) PeekVariant(k Kind) bool {
	return s.Peek().Kind == k
}

// Next returns the token under the cursor and advances past it.
func (s *Stream) Next() Token {
	t := s.Peek()
	if s.pos < len(s.toks) {
		s.pos++
	}
	return t
}

// NextVariant consumes and returns the token under the cursor only if it
// has the given Kind; otherwise it reports false and leaves the cursor
// untouched.
func (s *Stream) NextVariant(k Kind) (Token, bool) {
	if s.Peek().Kind != k {
		return Token{}, false
	}
	return s.Next(), true
}

// Pos returns the current cursor position (an index into the token
// vector), for diagnostics and tests only — parser productions should
// prefer the mark stack to raw positions.
func (s *Stream) Pos() int { return s.pos }

// Seek moves the cursor to an absolute token index.
func (s *Stream) Seek(pos int) {
	s.pos = pos
}

// Remaining reports how many tokens (including the trailing EOF) are left
// at or after the cursor.
func (s *Stream) Remaining() int {
	if s.pos >= len(s.toks) {
		return 1
	}
	return len(s.toks) - s.pos
}

// PushMark records the current position on the mark stack.
func (s *Stream) PushMark() {
	s.marks = append(s.marks, s.pos)
}

// PopMark restores the cursor to the position recorded by the most recent
// PushMark and discards it.
func (s *Stream) PopMark() {
	n := len(s.marks)
	if n == 0 {
		panic("token: PopMark with empty mark stack")
	}
	s.pos = s.marks[n-1]
	s.marks = s.marks[:n-1]
}

// DropMark discards the most recent mark without moving the cursor,
// committing to everything consumed since it was pushed.
func (s *Stream) DropMark() {
	n := len(s.marks)
	if n == 0 {
		panic("token: DropMark with empty mark stack")
	}
	s.marks = s.marks[:n-1]
}

// MarkDepth reports how many marks are currently pushed; used by tests to
// assert the mark-stack-balance invariant (spec.md §8, invariant 2).
func (s *Stream) MarkDepth() int { return len(s.marks) }

// SpanMark returns the span covering everything consumed since the most
// recent PushMark, up to (but not including) the current token.
func (s *Stream) SpanMark() span.Span {
	n := len(s.marks)
	if n == 0 {
		panic("token: SpanMark with empty mark stack")
	}
	start := s.marks[n-1]
	if start >= len(s.toks) || s.pos > len(s.toks) {
		return span.Span{}
	}
	if s.pos == start {
		return s.toks[start].Span
	}
	lo := s.toks[start].Span
	hi := s.toks[min(s.pos, len(s.toks))-1].Span
	return lo.Cover(hi)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// SkipWhitespaceAndComments advances the cursor past any run of trivia
// tokens. Parser productions call this before every attempt, since the
// tokenizer preserves whitespace/comments for exact reprinting but the
// grammar never matches on them directly.
func (s *Stream) SkipWhitespaceAndComments() {
	for s.Peek().IsTrivia() {
		s.Next()
	}
}

// Make runs fn as a backtracking attempt, implementing the make<T>
// contract from spec.md §4.3: on (value, true, nil) it commits (drops the
// mark); on (_, false, nil) it undoes back to the mark ("not my
// construct"); on (_, _, err) it undoes back to the mark and returns the
// error. The mark-stack depth is always identical before and after.
func Make[T any](s *Stream, fn func() (T, bool, error)) (T, bool, error) {
	depthBefore := s.MarkDepth()
	s.PushMark()
	v, ok, err := fn()
	switch {
	case err != nil:
		s.unwindTo(depthBefore)
	case !ok:
		s.PopMark()
	default:
		s.DropMark()
	}
	if s.MarkDepth() != depthBefore {
		panic("token: mark-stack imbalance after Make")
	}
	return v, ok, err
}

// unwindTo pops marks until the mark stack is back to depth, restoring the
// cursor to the oldest popped mark's position. Used when a production
// fails fatally partway through, possibly after pushing marks for nested
// sub-attempts that themselves forgot to clean up (a programming error in
// the caller, guarded against here so Make's postcondition always holds).
func (s *Stream) unwindTo(depth int) {
	for len(s.marks) > depth {
		s.PopMark()
	}
}
