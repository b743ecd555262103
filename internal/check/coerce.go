package check

import (
	"github.com/zylang/zyc/internal/diag"
	"github.com/zylang/zyc/internal/ir"
)

// coerce mutates cell toward to in place — the only mutation point for a
// TypeCell (spec.md §4.7, §5). It requires extends(cell.T, to) unless
// cell currently holds Unknown, the absorbing bottom that anchors
// unconditionally. A no-op when cell already holds to, so a soft cell
// that has nothing left to narrow toward never reports did-work forever
// and breaks the fixed point.
func coerce(cell *ir.TypeCell, to ir.Type) (bool, error) {
	if sameType(cell.T, to) {
		return false, nil
	}
	if cell.T.Kind != ir.TypeUnknown && !extends(cell.T, to) {
		return false, diag.IncompatibleType(typeName(cell.T), typeName(to), cell.T.Span)
	}
	sp := cell.T.Span
	cell.T = to
	cell.T.Span = sp
	return true, nil
}

func sameType(a, b ir.Type) bool {
	return a.Kind == b.Kind && a.Intrinsic == b.Intrinsic
}

// typeName renders a Type for diagnostic messages. It is not a full
// pretty-printer — just enough to name the offending shape in an
// IncompatibleType headline (spec.md §7).
func typeName(t ir.Type) string {
	switch t.Kind {
	case ir.TypeIntrinsic:
		return t.Intrinsic.String()
	case ir.TypeUnknown:
		return "<unknown>"
	case ir.TypeUnresolved:
		return "<unresolved>"
	case ir.TypeFuzzyInteger:
		return "<fuzzy integer>"
	case ir.TypeFuzzyString:
		return "<fuzzy string>"
	case ir.TypeReferenceTo:
		if t.Mut {
			return "&mut " + elemName(t.Elem)
		}
		return "&" + elemName(t.Elem)
	case ir.TypeSizedArrayOf:
		return "[N]" + elemName(t.Elem)
	case ir.TypeUnsizedArrayOf:
		return "[]" + elemName(t.Elem)
	case ir.TypeStruct:
		return "struct"
	case ir.TypeFunction:
		return "fn"
	case ir.TypeShared:
		return elemName(t.SharedTarget)
	default:
		return "?"
	}
}

func elemName(c *ir.TypeCell) string {
	if c == nil {
		return "?"
	}
	return typeName(c.T)
}
