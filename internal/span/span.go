// Package span defines the identity primitives shared by every later stage
// of the front end: a dense Handle naming a compiled module, and a Span
// locating a half-open byte range inside that module's source text.
package span

import "fmt"

// Handle is an opaque, stable identifier of a source module. Handles are
// dense: the store hands them out in allocation order starting at 0, and
// never reuses one after it is issued.
type Handle int32

// NoHandle is the sentinel used where no module is associated yet.
const NoHandle Handle = -1

func (h Handle) String() string {
	if h == NoHandle {
		return "<no-handle>"
	}
	return fmt.Sprintf("#%d", int32(h))
}

// Span is a half-open byte range [Start, End) into the source text of the
// module identified by Handle. Every AST node, every IR node, and every
// diagnostic carries one.
type Span struct {
	Handle Handle
	Start  int
	End    int
}

// Zero reports whether s has never been set.
func (s Span) Zero() bool {
	return s == Span{} || (s.Handle == NoHandle && s.Start == 0 && s.End == 0)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Cover returns the smallest span that contains both s and other. The two
// spans must belong to the same handle; Cover panics otherwise, since a
// span that straddles two modules would violate the span-coverage
// invariant (spec.md §8, invariant 1).
func (s Span) Cover(other Span) Span {
	if s.Zero() {
		return other
	}
	if other.Zero() {
		return s
	}
	if s.Handle != other.Handle {
		panic(fmt.Sprintf("span: Cover across handles %s and %s", s.Handle, other.Handle))
	}
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{Handle: s.Handle, Start: start, End: end}
}

func (s Span) String() string {
	return fmt.Sprintf("%s[%d:%d)", s.Handle, s.Start, s.End)
}

// New constructs a span, asserting the half-open invariant start <= end.
func New(h Handle, start, end int) Span {
	if start > end {
		panic(fmt.Sprintf("span: invalid range [%d, %d)", start, end))
	}
	return Span{Handle: h, Start: start, End: end}
}
