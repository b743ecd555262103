// Package token defines the closed token sets of the zy language (spec.md
// §6) and the Token value the tokenizer emits for each one.
package token

import (
	"fmt"

	"github.com/zylang/zyc/internal/span"
)

// Kind discriminates the variant of a Token. The set is closed: tokenizer.go
// is the only producer of values outside this package.
type Kind uint8

const (
	KindWhitespace Kind = iota
	KindComment
	KindIdentifier
	KindKeyword
	KindOperator
	KindPunctuation
	KindGrouping
	KindLiteral
	KindInvalid
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindWhitespace:
		return "Whitespace"
	case KindComment:
		return "Comment"
	case KindIdentifier:
		return "Identifier"
	case KindKeyword:
		return "Keyword"
	case KindOperator:
		return "Operator"
	case KindPunctuation:
		return "Punctuation"
	case KindGrouping:
		return "Grouping"
	case KindLiteral:
		return "Literal"
	case KindInvalid:
		return "Invalid"
	case KindEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// CommentKind distinguishes line comments (// ...) from multi-line, non
// nesting comments (/* ... */).
type CommentKind uint8

const (
	CommentLine CommentKind = iota
	CommentMultiline
)

// LiteralKind is the closed set of literal categories the tokenizer can
// produce.
type LiteralKind uint8

const (
	LiteralInteger LiteralKind = iota
	LiteralFloat
	LiteralUnicodeString
	LiteralByteString
	LiteralCString
	LiteralUnicodeChar
	LiteralByteChar
)

func (l LiteralKind) String() string {
	switch l {
	case LiteralInteger:
		return "integer"
	case LiteralFloat:
		return "float"
	case LiteralUnicodeString:
		return "unicode_string"
	case LiteralByteString:
		return "byte_string"
	case LiteralCString:
		return "c_string"
	case LiteralUnicodeChar:
		return "unicode_char"
	case LiteralByteChar:
		return "byte_char"
	default:
		return "unknown"
	}
}

// GroupingSide is Open or Close.
type GroupingSide uint8

const (
	Open GroupingSide = iota
	Close
)

// GroupingKind names the three bracket families (spec.md §6).
type GroupingKind uint8

const (
	Paren GroupingKind = iota
	Bracket
	Brace
)

func (g GroupingKind) String() string {
	switch g {
	case Paren:
		return "paren"
	case Bracket:
		return "bracket"
	case Brace:
		return "brace"
	default:
		return "unknown"
	}
}

// Token is the unit the tokenizer emits. Every token carries its Span
// regardless of Kind, so the source can be faithfully reprinted and every
// diagnostic can point at it.
type Token struct {
	Kind Kind
	Span span.Span

	// Text is the raw source slice for Identifier, Invalid, Whitespace and
	// Comment tokens, and the un-decoded literal body for Literal tokens.
	Text string

	Keyword     KeywordTag
	Operator    OperatorTag
	Punct       PunctuationTag
	GroupSide   GroupingSide
	GroupKind   GroupingKind
	CommentKind CommentKind
	LiteralKind LiteralKind

	// Decoded literal values, valid only when Kind == KindLiteral.
	IntValue    uint64
	FloatValue  float64
	StringValue string // decoded escapes, for string/char literals
}

func (t Token) String() string {
	switch t.Kind {
	case KindIdentifier:
		return fmt.Sprintf("Identifier(%q)@%s", t.Text, t.Span)
	case KindKeyword:
		return fmt.Sprintf("Keyword(%s)@%s", t.Keyword, t.Span)
	case KindOperator:
		return fmt.Sprintf("Operator(%s)@%s", t.Operator, t.Span)
	case KindPunctuation:
		return fmt.Sprintf("Punctuation(%s)@%s", t.Punct, t.Span)
	case KindGrouping:
		side := "open"
		if t.GroupSide == Close {
			side = "close"
		}
		return fmt.Sprintf("Grouping(%s %s)@%s", side, t.GroupKind, t.Span)
	case KindLiteral:
		return fmt.Sprintf("Literal(%s %q)@%s", t.LiteralKind, t.Text, t.Span)
	case KindInvalid:
		return fmt.Sprintf("Invalid(%q)@%s", t.Text, t.Span)
	case KindEOF:
		return fmt.Sprintf("EOF@%s", t.Span)
	default:
		return fmt.Sprintf("%s@%s", t.Kind, t.Span)
	}
}

// IsTrivia reports whether the token is whitespace or a comment: parser
// productions skip these via TokenStream.SkipWhitespaceAndComments, but the
// tokenizer always emits them so the source can be reprinted exactly.
func (t Token) IsTrivia() bool {
	return t.Kind == KindWhitespace || t.Kind == KindComment
}
