package check

import "github.com/zylang/zyc/internal/ir"

// extends is the structural subtype test of spec.md §4.7: a reports
// whether it may stand in for b. Unknown is the absorbing bottom (it
// extends anything); Shared unwraps to its target before comparison.
func extends(a, b ir.Type) bool {
	for a.Kind == ir.TypeShared {
		a = a.SharedTarget.T
	}
	for b.Kind == ir.TypeShared {
		b = b.SharedTarget.T
	}
	if a.Kind == ir.TypeUnknown {
		return true
	}
	switch {
	case a.Kind == ir.TypeIntrinsic && b.Kind == ir.TypeIntrinsic:
		return a.Intrinsic == b.Intrinsic
	case a.Kind == ir.TypeReferenceTo && b.Kind == ir.TypeReferenceTo:
		if b.Mut && !a.Mut {
			return false
		}
		return elemExtends(a.Elem, b.Elem)
	case a.Kind == ir.TypeFuzzyInteger:
		return b.Kind == ir.TypeIntrinsic && isIntegral(b.Intrinsic)
	case a.Kind == ir.TypeFuzzyString:
		return fuzzyStringExtends(a, b)
	case a.Kind == ir.TypeSizedArrayOf && b.Kind == ir.TypeSizedArrayOf:
		return countEqual(a.Count, b.Count) && elemExtends(a.Elem, b.Elem)
	case a.Kind == ir.TypeUnsizedArrayOf && b.Kind == ir.TypeUnsizedArrayOf:
		return elemExtends(a.Elem, b.Elem)
	case a.Kind == ir.TypeStruct && b.Kind == ir.TypeStruct:
		return structExtends(a, b)
	case a.Kind == ir.TypeFunction && b.Kind == ir.TypeFunction:
		return functionExtends(a, b)
	default:
		return false
	}
}

func isIntegral(k ir.IntrinsicKind) bool {
	switch k {
	case ir.U8, ir.I8, ir.U16, ir.I16, ir.U32, ir.I32, ir.U64, ir.I64:
		return true
	default:
		return false
	}
}

// fuzzyStringExtends implements "FuzzyString{size,elem} extends
// &[size]elem and &[]elem" (spec.md §4.7).
func fuzzyStringExtends(a, b ir.Type) bool {
	if b.Kind != ir.TypeReferenceTo || b.Elem == nil {
		return false
	}
	elem := b.Elem.T
	switch elem.Kind {
	case ir.TypeSizedArrayOf:
		return countEqualsInt(elem.Count, a.FuzzySize) && elemExtends(a.FuzzyElem, elem.Elem)
	case ir.TypeUnsizedArrayOf:
		return elemExtends(a.FuzzyElem, elem.Elem)
	default:
		return false
	}
}

func elemExtends(a, b *ir.TypeCell) bool {
	if a == nil || b == nil {
		return true
	}
	return extends(a.T, b.T)
}

func countEqual(a, b *ir.Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == ir.ValueKindLiteral && b.Kind == ir.ValueKindLiteral {
		return a.IntValue == b.IntValue
	}
	return false
}

func countEqualsInt(v *ir.Value, n int) bool {
	if v == nil || v.Kind != ir.ValueKindLiteral {
		return false
	}
	return v.IntValue == uint64(n)
}

func structExtends(a, b ir.Type) bool {
	if len(a.StructMembers) != len(b.StructMembers) {
		return false
	}
	for i := range a.StructMembers {
		if a.StructMembers[i].Name != b.StructMembers[i].Name {
			return false
		}
		if !extends(a.StructMembers[i].Ty.T, b.StructMembers[i].Ty.T) {
			return false
		}
	}
	return true
}

func functionExtends(a, b ir.Type) bool {
	if len(a.FuncArgs) != len(b.FuncArgs) {
		return false
	}
	for i := range a.FuncArgs {
		if !extends(a.FuncArgs[i].T, b.FuncArgs[i].T) {
			return false
		}
	}
	return extends(a.FuncReturn.T, b.FuncReturn.T)
}
