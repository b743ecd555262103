// Package source implements the byte-level cursor (SourceReader) that the
// tokenizer drives: peek/read/seek/rewind over a module's UTF-8 source
// text, plus span construction relative to a mark.
package source

import (
	"errors"
	"unicode/utf8"

	"github.com/zylang/zyc/internal/span"
)

// ErrOutOfRange is returned by any Reader operation that would move the
// cursor outside [0, len(data)]. At a token boundary the tokenizer reads it
// as end of input and emits the EOF token.
var ErrOutOfRange = errors.New("source: out of range")

// ErrInvalidUTF8 is returned when the reader encounters a byte sequence
// that cannot be decoded as UTF-8. The caller is expected to report
// InvalidSource, carrying whatever token stream was produced so far.
var ErrInvalidUTF8 = errors.New("source: invalid utf-8 sequence")

// Reader is a cursor over one module's source bytes.
type Reader struct {
	handle span.Handle
	data   []byte
	offset int
}

// New constructs a Reader over data, owned by the module identified by h.
func New(h span.Handle, data []byte) *Reader {
	return &Reader{handle: h, data: data, offset: 0}
}

// Len returns the total byte length of the source.
func (r *Reader) Len() int { return len(r.data) }

// Offset returns the current byte offset.
func (r *Reader) Offset() int { return r.offset }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.offset }

// Peek returns the next n bytes without advancing the cursor. It fails if
// fewer than n bytes remain.
func (r *Reader) Peek(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, ErrOutOfRange
	}
	return r.data[r.offset : r.offset+n], nil
}

// PeekCh decodes the rune starting at the cursor without advancing it.
func (r *Reader) PeekCh() (rune, int, error) {
	if r.offset >= len(r.data) {
		return 0, 0, ErrOutOfRange
	}
	ru, size := utf8.DecodeRune(r.data[r.offset:])
	if ru == utf8.RuneError && size <= 1 {
		return 0, 0, ErrInvalidUTF8
	}
	return ru, size, nil
}

// Read returns and consumes the next n bytes.
func (r *Reader) Read(n int) ([]byte, error) {
	b, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.offset += n
	return b, nil
}

// ReadCh decodes and consumes the next rune.
func (r *Reader) ReadCh() (rune, error) {
	ru, size, err := r.PeekCh()
	if err != nil {
		return 0, err
	}
	r.offset += size
	return ru, nil
}

// Seek moves the cursor to an absolute byte offset.
func (r *Reader) Seek(n int) error {
	if n < 0 || n > len(r.data) {
		return ErrOutOfRange
	}
	r.offset = n
	return nil
}

// Rewind moves the cursor back n bytes.
func (r *Reader) Rewind(n int) error {
	if r.offset-n < 0 {
		return ErrOutOfRange
	}
	r.offset -= n
	return nil
}

// SpanSince returns the span covering [start, current offset).
func (r *Reader) SpanSince(start int) span.Span {
	return span.New(r.handle, start, r.offset)
}

// Slice returns the raw bytes of [start, end) without moving the cursor.
func (r *Reader) Slice(start, end int) []byte {
	return r.data[start:end]
}
