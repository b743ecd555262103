package check

import (
	"github.com/zylang/zyc/internal/diag"
	"github.com/zylang/zyc/internal/ir"
)

// postprocessDomain is the second pass described by spec.md §4.8: once a
// sweep reaches a fixed point, every TypeCell still holding Unknown or
// Unresolved is a genuine type-inference failure, but a FuzzyInteger or
// FuzzyString that never met a hard constraint is not an error — it
// anchors to its default concrete type (u64, or &[size]elem) instead.
func (c *Checker) postprocessDomain(d *ir.Domain) error {
	for _, name := range sortedNames(d) {
		if err := c.postprocessMember(d.Members[name]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) postprocessMember(m *ir.DomainMember) error {
	switch m.Kind {
	case ir.MemberFunction, ir.MemberExternFunction:
		return c.postprocessFunction(m.Fn)
	case ir.MemberType, ir.MemberStruct:
		return c.postprocessTypeCell(m.Ty)
	case ir.MemberDomain:
		return c.postprocessDomain(m.Sub)
	default:
		return nil
	}
}

func (c *Checker) postprocessFunction(fn *ir.Function) error {
	if err := c.postprocessTypeCell(fn.ReturnTy); err != nil {
		return err
	}
	for _, v := range fn.Args.Inner {
		if err := c.postprocessTypeCell(v.Ty); err != nil {
			return err
		}
	}
	if fn.Body != nil {
		return c.postprocessBlock(fn.Body)
	}
	return nil
}

func (c *Checker) postprocessBlock(b *ir.Block) error {
	for _, v := range b.Scope.Inner {
		if err := c.postprocessTypeCell(v.Ty); err != nil {
			return err
		}
	}
	for i := range b.Instructions {
		if err := c.postprocessInstruction(&b.Instructions[i]); err != nil {
			return err
		}
	}
	return c.postprocessTypeCell(b.Ty)
}

func (c *Checker) postprocessInstruction(instr *ir.Instruction) error {
	switch instr.Kind {
	case ir.InstrAssign:
		if err := c.postprocessValue(&instr.Dest); err != nil {
			return err
		}
		return c.postprocessValue(&instr.Value)
	case ir.InstrCall:
		if err := c.postprocessValue(&instr.Func); err != nil {
			return err
		}
		for i := range instr.Args {
			if err := c.postprocessValue(&instr.Args[i]); err != nil {
				return err
			}
		}
	case ir.InstrReturn:
		if instr.RetValue != nil {
			if err := c.postprocessValue(instr.RetValue); err != nil {
				return err
			}
		}
	case ir.InstrValue:
		if instr.Body != nil {
			if err := c.postprocessBlock(instr.Body); err != nil {
				return err
			}
		}
		if instr.Inner != nil {
			if err := c.postprocessValue(instr.Inner); err != nil {
				return err
			}
		}
	case ir.InstrControlFlow:
		if instr.Cond != nil {
			if err := c.postprocessValue(instr.Cond); err != nil {
				return err
			}
		}
		if err := c.postprocessBlock(instr.Body); err != nil {
			return err
		}
		if instr.Else != nil {
			if err := c.postprocessBlock(instr.Else); err != nil {
				return err
			}
		}
	case ir.InstrBinaryOp:
		if err := c.postprocessValue(instr.Lhs); err != nil {
			return err
		}
		if err := c.postprocessValue(instr.Rhs); err != nil {
			return err
		}
	case ir.InstrDot:
		if err := c.postprocessValue(instr.Base); err != nil {
			return err
		}
	case ir.InstrIndex:
		if err := c.postprocessValue(instr.Base); err != nil {
			return err
		}
		if err := c.postprocessValue(instr.Rhs); err != nil {
			return err
		}
	}
	return c.postprocessTypeCell(instr.Ty)
}

func (c *Checker) postprocessValue(v *ir.Value) error {
	switch v.Kind {
	case ir.ValueKindInstruction:
		return c.postprocessInstruction(v.Instr)
	case ir.ValueKindVariable:
		return c.postprocessTypeCell(v.Var.Resolve().Ty)
	case ir.ValueKindLiteral:
		return c.postprocessTypeCell(v.Ty)
	}
	return nil
}

// postprocessTypeCell anchors a still-fuzzy cell to its default and raises
// diag.CantInferType for anything that reached the end of the fixed point
// still Unknown or Unresolved (spec.md §4.8).
func (c *Checker) postprocessTypeCell(cell *ir.TypeCell) error {
	if cell == nil {
		return nil
	}
	switch cell.T.Kind {
	case ir.TypeUnknown, ir.TypeUnresolved:
		return diag.CantInferType(cell.T.Span)
	case ir.TypeFuzzyInteger:
		sp := cell.T.Span
		cell.T = ir.Type{Kind: ir.TypeIntrinsic, Intrinsic: ir.U64, Span: sp}
		return nil
	case ir.TypeFuzzyString:
		sp := cell.T.Span
		elem := cell.T.FuzzyElem
		if elem == nil {
			elem = ir.Intrinsic(ir.U8, sp)
		}
		if err := c.postprocessTypeCell(elem); err != nil {
			return err
		}
		arr := ir.NewTypeCell(ir.Type{
			Kind: ir.TypeSizedArrayOf, Span: sp, Elem: elem,
			Count: &ir.Value{
				Kind: ir.ValueKindLiteral, Span: sp, LitKind: ir.LitInteger,
				IntValue: uint64(cell.T.FuzzySize), Ty: ir.Intrinsic(ir.U64, sp),
			},
		})
		cell.T = ir.Type{Kind: ir.TypeReferenceTo, Span: sp, Elem: arr}
		return nil
	case ir.TypeSizedArrayOf:
		if cell.T.Count != nil {
			if err := c.postprocessValue(cell.T.Count); err != nil {
				return err
			}
		}
		return c.postprocessTypeCell(cell.T.Elem)
	case ir.TypeUnsizedArrayOf, ir.TypeReferenceTo:
		return c.postprocessTypeCell(cell.T.Elem)
	case ir.TypeShared:
		return c.postprocessTypeCell(cell.T.SharedTarget)
	case ir.TypeFunction:
		if err := c.postprocessTypeCell(cell.T.FuncReturn); err != nil {
			return err
		}
		for _, a := range cell.T.FuncArgs {
			if err := c.postprocessTypeCell(a); err != nil {
				return err
			}
		}
		return nil
	case ir.TypeStruct:
		for _, m := range cell.T.StructMembers {
			if err := c.postprocessTypeCell(m.Ty); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
