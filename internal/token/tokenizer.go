package token

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/zylang/zyc/internal/source"
	"github.com/zylang/zyc/internal/span"
)

// ErrInvalidSource is returned by Tokenize when the source bytes are not
// valid UTF-8. Partial carries every token produced up to the failure, so
// the driver can still color the source in its diagnostic (spec.md §4.1).
type ErrInvalidSource struct {
	Partial []Token
	At      int
}

func (e *ErrInvalidSource) Error() string {
	return fmt.Sprintf("token: invalid utf-8 source byte at offset %d", e.At)
}

// Tokenize consumes the whole of r and returns its token stream. Whitespace
// and comments are preserved so the source can be reprinted byte for byte.
func Tokenize(r *source.Reader) ([]Token, error) {
	var toks []Token
	for {
		start := r.Offset()
		ru, _, err := r.PeekCh()
		if err == source.ErrOutOfRange {
			toks = append(toks, Token{Kind: KindEOF, Span: r.SpanSince(start)})
			return toks, nil
		}
		if err == source.ErrInvalidUTF8 {
			return toks, &ErrInvalidSource{Partial: toks, At: start}
		}

		switch {
		case isSpace(ru):
			lexWhitespace(r)
			sp := r.SpanSince(start)
			toks = append(toks, Token{Kind: KindWhitespace, Span: sp, Text: string(r.Slice(sp.Start, sp.End))})
		case ru == '/' && startsComment(r):
			tok, err := lexComment(r, start)
			if err != nil {
				return toks, err
			}
			toks = append(toks, tok)
		case isIdentStart(ru) && !prefixedLiteral(r, "b") && !prefixedLiteral(r, "c"):
			toks = append(toks, lexIdentifier(r, start))
		case isDigit(ru):
			toks = append(toks, lexNumber(r, start))
		case ru == '"' || ru == '\'':
			tok, err := lexStringOrChar(r, start, LiteralUnicodeString, LiteralUnicodeChar)
			if err != nil {
				return toks, err
			}
			toks = append(toks, tok)
		case ru == 'b' && prefixedLiteral(r, "b"):
			tok, err := lexPrefixedLiteral(r, start, 'b')
			if err != nil {
				return toks, err
			}
			toks = append(toks, tok)
		case ru == 'c' && prefixedLiteral(r, "c"):
			tok, err := lexPrefixedLiteral(r, start, 'c')
			if err != nil {
				return toks, err
			}
			toks = append(toks, tok)
		default:
			tok := lexOperatorPunctGroup(r, start)
			toks = append(toks, tok)
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func lexWhitespace(r *source.Reader) {
	for {
		ru, _, err := r.PeekCh()
		if err != nil || !isSpace(ru) {
			return
		}
		_, _ = r.ReadCh()
	}
}

func startsComment(r *source.Reader) bool {
	b, err := r.Peek(2)
	if err != nil {
		return false
	}
	return b[1] == '/' || b[1] == '*'
}

func lexComment(r *source.Reader, start int) (Token, error) {
	b, _ := r.Read(2)
	if b[1] == '/' {
		for {
			ru, _, err := r.PeekCh()
			if err != nil || ru == '\n' {
				break
			}
			_, _ = r.ReadCh()
		}
		sp := r.SpanSince(start)
		return Token{Kind: KindComment, CommentKind: CommentLine, Span: sp, Text: string(r.Slice(sp.Start, sp.End))}, nil
	}
	// multi-line, non-nesting, closing */ required.
	for {
		two, err := r.Peek(2)
		if err != nil {
			return Token{}, fmt.Errorf("token: unterminated multiline comment starting at %d", start)
		}
		if two[0] == '*' && two[1] == '/' {
			_, _ = r.Read(2)
			break
		}
		_, _ = r.ReadCh()
	}
	sp := r.SpanSince(start)
	return Token{Kind: KindComment, CommentKind: CommentMultiline, Span: sp, Text: string(r.Slice(sp.Start, sp.End))}, nil
}

func lexIdentifier(r *source.Reader, start int) Token {
	for {
		ru, _, err := r.PeekCh()
		if err != nil || !isIdentCont(ru) {
			break
		}
		_, _ = r.ReadCh()
	}
	sp := r.SpanSince(start)
	text := string(r.Slice(sp.Start, sp.End))
	if tag, ok := LookupKeyword(text); ok {
		return Token{Kind: KindKeyword, Keyword: tag, Span: sp, Text: text}
	}
	return Token{Kind: KindIdentifier, Span: sp, Text: text}
}

// prefixedLiteral reports whether the current position starts a b"..."-
// or c"..."-style prefixed literal, without consuming anything.
func prefixedLiteral(r *source.Reader, prefix string) bool {
	b, err := r.Peek(len(prefix) + 1)
	if err != nil {
		return false
	}
	if string(b[:len(prefix)]) != prefix {
		return false
	}
	quote := b[len(prefix)]
	return quote == '"' || quote == '\''
}

func lexPrefixedLiteral(r *source.Reader, start int, prefix byte) (Token, error) {
	_, _ = r.Read(1) // consume 'b' or 'c'
	strKind, charKind := LiteralByteString, LiteralByteChar
	if prefix == 'c' {
		strKind, charKind = LiteralCString, LiteralCString
	}
	return lexStringOrChar(r, start, strKind, charKind)
}

func lexStringOrChar(r *source.Reader, start int, strKind, charKind LiteralKind) (Token, error) {
	quote, err := r.ReadCh()
	if err != nil {
		return Token{}, err
	}
	var sb strings.Builder
	for {
		ru, _, err := r.PeekCh()
		if err != nil {
			return Token{}, fmt.Errorf("token: unterminated literal starting at %d", start)
		}
		if ru == quote {
			_, _ = r.ReadCh()
			break
		}
		if ru == '\\' {
			_, _ = r.ReadCh()
			decoded, err := decodeEscape(r)
			if err != nil {
				return Token{}, err
			}
			sb.WriteRune(decoded)
			continue
		}
		_, _ = r.ReadCh()
		sb.WriteRune(ru)
	}
	sp := r.SpanSince(start)
	kind := strKind
	if quote == '\'' {
		kind = charKind
	}
	return Token{
		Kind: KindLiteral, LiteralKind: kind, Span: sp,
		Text: string(r.Slice(sp.Start, sp.End)), StringValue: sb.String(),
	}, nil
}

// decodeEscape decodes the closed escape set from spec.md §4.2/§6:
// \n \r \t \0 \a \b \v \f \e \' \" \\ plus reserved \x?? and \u{...}.
func decodeEscape(r *source.Reader) (rune, error) {
	ru, err := r.ReadCh()
	if err != nil {
		return 0, fmt.Errorf("token: unterminated escape sequence")
	}
	switch ru {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '0':
		return 0, nil
	case 'a':
		return '\a', nil
	case 'b':
		return '\b', nil
	case 'v':
		return '\v', nil
	case 'f':
		return '\f', nil
	case 'e':
		return 0x1b, nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	case 'x':
		return 0, fmt.Errorf("token: \\x escapes are reserved, not implemented")
	case 'u':
		return 0, fmt.Errorf("token: \\u escapes are reserved, not implemented")
	default:
		return 0, fmt.Errorf("token: unknown escape sequence \\%c", ru)
	}
}

// lexNumber handles optional base prefixes 0b|0o|0d|0x, '_' digit
// separators, and promotion to float on a single '.'.
func lexNumber(r *source.Reader, start int) Token {
	base := 10
	if b, err := r.Peek(2); err == nil && b[0] == '0' {
		switch b[1] {
		case 'b', 'B':
			base = 2
			_, _ = r.Read(2)
		case 'o', 'O':
			base = 8
			_, _ = r.Read(2)
		case 'd', 'D':
			base = 10
			_, _ = r.Read(2)
		case 'x', 'X':
			base = 16
			_, _ = r.Read(2)
		}
	}
	digitsStart := r.Offset()
	consumeDigits(r, base)
	isFloat := false
	if base == 10 {
		if next, err := r.Peek(2); err == nil && next[0] == '.' && next[1] >= '0' && next[1] <= '9' {
			isFloat = true
			_, _ = r.Read(1)
			consumeDigits(r, 10)
		}
	}
	sp := r.SpanSince(start)
	raw := string(r.Slice(digitsStart, r.Offset()))
	digits := strings.ReplaceAll(raw, "_", "")
	if digits == "" || digits == "." {
		return Token{Kind: KindInvalid, Span: sp, Text: string(r.Slice(sp.Start, sp.End))}
	}
	if isFloat {
		f, err := parseFloatDigits(digits)
		if err != nil {
			return Token{Kind: KindInvalid, Span: sp, Text: string(r.Slice(sp.Start, sp.End))}
		}
		return Token{Kind: KindLiteral, LiteralKind: LiteralFloat, Span: sp, Text: string(r.Slice(sp.Start, sp.End)), FloatValue: f}
	}
	v, err := parseUintDigits(digits, base)
	if err != nil {
		return Token{Kind: KindInvalid, Span: sp, Text: string(r.Slice(sp.Start, sp.End))}
	}
	return Token{Kind: KindLiteral, LiteralKind: LiteralInteger, Span: sp, Text: string(r.Slice(sp.Start, sp.End)), IntValue: v}
}

func consumeDigits(r *source.Reader, base int) {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return
		}
		c := b[0]
		if c == '_' {
			_, _ = r.Read(1)
			continue
		}
		if !isDigitForBase(c, base) {
			return
		}
		_, _ = r.Read(1)
	}
}

func isDigitForBase(c byte, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	default:
		return c >= '0' && c <= '9'
	}
}

func parseUintDigits(digits string, base int) (uint64, error) {
	var v uint64
	for _, c := range digits {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, fmt.Errorf("token: bad digit %q", c)
		}
		v = v*uint64(base) + d
	}
	return v, nil
}

func parseFloatDigits(digits string) (float64, error) {
	var intPart, fracPart string
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		intPart, fracPart = digits[:i], digits[i+1:]
	} else {
		intPart = digits
	}
	iv, err := parseUintDigits(intPart, 10)
	if err != nil && intPart != "" {
		return 0, err
	}
	f := float64(iv)
	scale := 0.1
	for _, c := range fracPart {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("token: bad float digit %q", c)
		}
		f += float64(c-'0') * scale
		scale /= 10
	}
	return f, nil
}

// lexOperatorPunctGroup resolves grouping, then tries the longest matching
// operator or punctuation spelling, then falls back to Invalid to
// end-of-line (spec.md §4.2).
func lexOperatorPunctGroup(r *source.Reader, start int) Token {
	b, err := r.Peek(1)
	if err == nil {
		if g, ok := groupingChars[b[0]]; ok {
			_, _ = r.Read(1)
			sp := r.SpanSince(start)
			return Token{Kind: KindGrouping, GroupSide: g.side, GroupKind: g.kind, Span: sp}
		}
	}

	if tag, n, ok := matchLongest(r, operatorsByLength); ok {
		_, _ = r.Read(n)
		sp := r.SpanSince(start)
		return Token{Kind: KindOperator, Operator: tag.(OperatorTag), Span: sp}
	}
	if tag, n, ok := matchLongest(r, punctuationByLength); ok {
		_, _ = r.Read(n)
		sp := r.SpanSince(start)
		return Token{Kind: KindPunctuation, Punct: tag.(PunctuationTag), Span: sp}
	}

	// Unrecognized operator character: Invalid to end of line.
	for {
		ru, _, err := r.PeekCh()
		if err != nil || ru == '\n' {
			break
		}
		_, _ = r.ReadCh()
	}
	sp := r.SpanSince(start)
	return Token{Kind: KindInvalid, Span: sp, Text: string(r.Slice(sp.Start, sp.End))}
}

func matchLongest[T any](r *source.Reader, table [][]struct {
	text string
	tag  T
}) (any, int, bool) {
	for _, group := range table {
		if len(group) == 0 {
			continue
		}
		n := len(group[0].text)
		b, err := r.Peek(n)
		if err != nil {
			continue
		}
		bs := string(b)
		for _, cand := range group {
			if cand.text == bs {
				return cand.tag, n, true
			}
		}
	}
	return nil, 0, false
}

// ToSource reconstructs the exact source text a token was lexed from;
// tokenize(s).map(to_string).concat() == s for any s that tokenizes
// without Invalid (spec.md §8, invariant 6).
func (t Token) ToSource(operatorText func(OperatorTag) string) string {
	switch t.Kind {
	case KindWhitespace, KindComment, KindIdentifier, KindInvalid:
		return t.Text
	case KindKeyword:
		return t.Keyword.String()
	case KindOperator:
		return t.Operator.String()
	case KindPunctuation:
		return t.Punct.String()
	case KindGrouping:
		return groupingText(t.GroupSide, t.GroupKind)
	case KindLiteral:
		return t.Text
	default:
		return ""
	}
}

func groupingText(side GroupingSide, kind GroupingKind) string {
	for ch, g := range groupingChars {
		if g.side == side && g.kind == kind {
			return string(ch)
		}
	}
	return ""
}
