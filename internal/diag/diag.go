// Package diag is the shared error/diagnostic model every later stage's
// errors unify on (spec.md §4.9, §7): a Stage-tagged, Span-carrying
// Diagnostic plus a pretty-printer the driver uses to render it.
package diag

import (
	"fmt"
	"strings"

	"github.com/zylang/zyc/internal/span"
)

// Stage names which pipeline stage raised a Diagnostic, mirroring spec.md
// §4.9's per-stage error taxonomy.
type Stage uint8

const (
	StageArgument Stage = iota
	StageTokenize
	StageParse
	StageTypeCheck
)

func (s Stage) String() string {
	switch s {
	case StageArgument:
		return "argument"
	case StageTokenize:
		return "tokenize"
	case StageParse:
		return "parse"
	case StageTypeCheck:
		return "type-check"
	default:
		return "?"
	}
}

// Spanner is implemented by every error kind produced upstream (ast's
// ExpectedError and ErrUnresolvedExpression, token's ErrInvalidSource via
// adaptation, preprocess's CollisionError/UnknownNameError) so From can
// lift any of them into a Diagnostic without a stage-specific adapter.
type Spanner interface {
	error
	GetSpan() span.Span
}

// Diagnostic is the single error shape every stage converges on. Soft
// diagnostics (help requested) are suppressed by the driver rather than
// rendered as an error.
type Diagnostic struct {
	Stage   Stage
	Code    string // e.g. "IncompatibleType", "UnknownIdent", "Expected"
	Message string
	Span    span.Span
	Soft    bool
}

func (d *Diagnostic) Error() string      { return d.Message }
func (d *Diagnostic) GetSpan() span.Span { return d.Span }

// From lifts any Spanner into a Diagnostic tagged with stage, deriving Code
// from the error's concrete Go type name so downstream callers (and tests)
// can match on it without a parallel enum of every wrapped error kind.
func From(err error, stage Stage) *Diagnostic {
	if d, ok := err.(*Diagnostic); ok {
		return d
	}
	sp := span.Span{}
	if s, ok := err.(Spanner); ok {
		sp = s.GetSpan()
	}
	return &Diagnostic{Stage: stage, Code: codeOf(err), Message: err.Error(), Span: sp}
}

func codeOf(err error) string {
	t := fmt.Sprintf("%T", err)
	if i := strings.LastIndexByte(t, '.'); i >= 0 {
		t = t[i+1:]
	}
	return strings.TrimPrefix(strings.TrimPrefix(t, "*"), "Err")
}

// Argument-stage constructors (spec.md §4.9).

func UnknownFlag(name string) *Diagnostic {
	return &Diagnostic{Stage: StageArgument, Code: "UnknownFlag", Message: fmt.Sprintf("unknown flag %q", name)}
}

func DuplicateFlag(name string) *Diagnostic {
	return &Diagnostic{Stage: StageArgument, Code: "DuplicateFlag", Message: fmt.Sprintf("flag %q given twice", name)}
}

func NoInput() *Diagnostic {
	return &Diagnostic{Stage: StageArgument, Code: "NoInput", Message: "no input file"}
}

func ExecNotFound(name string) *Diagnostic {
	return &Diagnostic{Stage: StageArgument, Code: "ExecNotFound", Message: fmt.Sprintf("%s: executable not found on PATH", name)}
}

// HelpRequested is the one soft argument error: printed as help text, not
// an error headline, and exits 0.
func HelpRequested() *Diagnostic {
	return &Diagnostic{Stage: StageArgument, Code: "Help", Message: "help requested", Soft: true}
}

// Type-check-stage constructors (spec.md §4.7, §4.9).

func IncompatibleType(what, with string, sp span.Span) *Diagnostic {
	return &Diagnostic{
		Stage: StageTypeCheck, Code: "IncompatibleType", Span: sp,
		Message: fmt.Sprintf("incompatible type: `%s` with `%s`", what, with),
	}
}

func UnknownIdent(text string, sp span.Span) *Diagnostic {
	return &Diagnostic{Stage: StageTypeCheck, Code: "UnknownIdent", Span: sp, Message: fmt.Sprintf("unknown identifier %q", text)}
}

func InvalidDot(sp span.Span) *Diagnostic {
	return &Diagnostic{Stage: StageTypeCheck, Code: "InvalidDot", Span: sp, Message: "member access on a non-struct type"}
}

func InvalidType(text string, sp span.Span) *Diagnostic {
	return &Diagnostic{Stage: StageTypeCheck, Code: "InvalidType", Span: sp, Message: fmt.Sprintf("invalid type %q", text)}
}

func CantInferType(sp span.Span) *Diagnostic {
	return &Diagnostic{Stage: StageTypeCheck, Code: "CantInferType", Span: sp, Message: "cannot infer type"}
}

// Render formats d as the user-visible shape from spec.md §7: a single-line
// headline, then the offending line framed by path and line number with
// carets under the span. source is the full module source the span was cut
// from; when the span's line cannot be located (e.g. a synthetic span),
// only the headline is returned.
func Render(d *Diagnostic, path string, source []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s", d.Message)
	line, col, lineText, ok := locate(source, d.Span.Start)
	if !ok {
		return b.String()
	}
	fmt.Fprintf(&b, "\n  --> %s:%d:%d\n", path, line, col)
	fmt.Fprintf(&b, "%3d | %s\n", line, lineText)
	width := d.Span.Len()
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(&b, "    | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	return b.String()
}

// locate finds the 1-based line/column of byte offset off in source, along
// with that line's text stripped of its trailing newline.
func locate(source []byte, off int) (line, col int, text string, ok bool) {
	if off < 0 || off > len(source) {
		return 0, 0, "", false
	}
	line = 1
	lineStart := 0
	for i := 0; i < off && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := lineStart
	for lineEnd < len(source) && source[lineEnd] != '\n' {
		lineEnd++
	}
	col = off - lineStart + 1
	return line, col, string(source[lineStart:lineEnd]), true
}
