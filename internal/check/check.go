// Package check implements the fixed-point type resolver and checker
// (spec.md §4.7): it sweeps every module's Domain, coercing and resolving
// TypeCells in place until a full sweep makes no progress, then anchors
// any still-fuzzy literal types to their defaults (spec.md §4.8).
package check

import (
	"sort"
	"strconv"

	"github.com/zylang/zyc/internal/diag"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/span"
)

// Program gives the checker access to every module's root Domain by
// handle, so a DomainReference anchored at a different module (an
// implied, root-relative lookup, or one whose lexical walk bottoms out)
// can resolve against the right module (spec.md §4.7's
// resolve_type_reference). The store implements this.
type Program interface {
	Root(h span.Handle) *ir.Domain
	Handles() []span.Handle
}

// maxSweepRounds bounds the fixed-point loop. Invariant 5 (spec.md §8)
// only requires N ≤ the number of Unresolved/Unknown/Fuzzy cells at
// preprocess end; this is a generous constant ceiling rather than a
// precomputed exact bound, since nothing in the IR tracks that count
// directly and a compile this deep into a fixed point that still hasn't
// converged is already a bug, not a slow-but-correct case.
const maxSweepRounds = 10000

// Checker runs the fixed-point sweep and postprocess pass over prog.
type Checker struct {
	prog Program
}

// New returns a Checker backed by prog.
func New(prog Program) *Checker {
	return &Checker{prog: prog}
}

// Run sweeps every module to a fixed point, then postprocesses. It
// returns the first type-check error encountered (spec.md §7: "the first
// error reported halts the pipeline before code generation").
func (c *Checker) Run() error {
	handles := c.prog.Handles()
	for round := 0; round < maxSweepRounds; round++ {
		did := false
		for _, h := range handles {
			root := c.prog.Root(h)
			if root == nil {
				continue
			}
			w, err := c.sweepDomain(root)
			did = did || w
			if err != nil {
				return err
			}
		}
		if !did {
			break
		}
	}
	for _, h := range handles {
		root := c.prog.Root(h)
		if root == nil {
			continue
		}
		if err := c.postprocessDomain(root); err != nil {
			return err
		}
	}
	return nil
}

// Sweep runs one fixed-point sweep over every module's domain, returning
// whether any check made progress. Exposed for the driver/tests that want
// round-by-round visibility instead of Run's to-convergence loop.
func (c *Checker) Sweep() (bool, error) {
	did := false
	for _, h := range c.prog.Handles() {
		root := c.prog.Root(h)
		if root == nil {
			continue
		}
		w, err := c.sweepDomain(root)
		did = did || w
		if err != nil {
			return did, err
		}
	}
	return did, nil
}

func sortedNames(d *ir.Domain) []string {
	names := make([]string, 0, len(d.Members))
	for name := range d.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Checker) sweepDomain(d *ir.Domain) (bool, error) {
	did := false
	for _, name := range sortedNames(d) {
		w, err := c.checkMember(d.Members[name])
		did = did || w
		if err != nil {
			return did, err
		}
	}
	return did, nil
}

func (c *Checker) checkMember(m *ir.DomainMember) (bool, error) {
	switch m.Kind {
	case ir.MemberFunction, ir.MemberExternFunction:
		return c.checkFunction(m.Fn)
	case ir.MemberType, ir.MemberStruct:
		return c.checkTypeCell(m.Ty)
	case ir.MemberDomain:
		return c.sweepDomain(m.Sub)
	default:
		return false, nil
	}
}

func (c *Checker) checkFunction(fn *ir.Function) (bool, error) {
	did, err := c.checkTypeCell(fn.ReturnTy)
	if err != nil {
		return did, err
	}
	w, err := c.checkVariableScope(fn.Args)
	did = did || w
	if err != nil {
		return did, err
	}
	if fn.Body != nil {
		w, err = c.checkBlock(fn.Body)
		did = did || w
		if err != nil {
			return did, err
		}
		if fn.Body.ReturnsLast {
			// The body's tail expression is this function's implicit
			// return value — its Block.Ty (narrowed from the tail
			// instruction inside checkBlock) still has to flow into the
			// declared return type, the same unification an explicit
			// `return` gets via Instruction.RetTo sharing fn.ReturnTy.
			w, err = c.unify(fn.Body.Ty, fn.ReturnTy, fn.Body.Span)
			did = did || w
			if err != nil {
				return did, err
			}
		}
	}
	return did, nil
}

func (c *Checker) checkVariableScope(s *ir.VariableScope) (bool, error) {
	did := false
	for _, v := range s.Inner {
		w, err := c.checkTypeCell(v.Ty)
		did = did || w
		if err != nil {
			return did, err
		}
	}
	return did, nil
}

func (c *Checker) checkBlock(b *ir.Block) (bool, error) {
	did, err := c.checkVariableScope(b.Scope)
	if err != nil {
		return did, err
	}
	for i := range b.Instructions {
		w, err := c.checkInstruction(&b.Instructions[i])
		did = did || w
		if err != nil {
			return did, err
		}
	}
	if b.ReturnsLast && len(b.Instructions) > 0 {
		tail := &b.Instructions[len(b.Instructions)-1]
		if ty := instrResultTy(tail); ty != nil {
			w, err := c.unify(ty, b.Ty, b.Span)
			did = did || w
			if err != nil {
				return did, err
			}
		}
	}
	return did, nil
}

// instrResultTy returns the TypeCell an Instruction carries when read as a
// Value, following InstrValue through to its Inner expression when the
// wrapper itself was never given its own Ty (the common case: only a
// nested-block-used-as-a-value sets InstrValue.Ty directly — see
// checkInstrValue; a bare tail expression leaves it nil and the type
// lives on Inner instead).
func instrResultTy(instr *ir.Instruction) *ir.TypeCell {
	switch instr.Kind {
	case ir.InstrCall, ir.InstrBinaryOp, ir.InstrDot, ir.InstrIndex:
		return instr.Ty
	case ir.InstrValue:
		if instr.Ty != nil {
			return instr.Ty
		}
		if instr.Inner != nil {
			return instr.Inner.Ty
		}
	}
	return nil
}

func (c *Checker) checkInstruction(instr *ir.Instruction) (bool, error) {
	switch instr.Kind {
	case ir.InstrAssign:
		return c.checkAssign(instr)
	case ir.InstrCall:
		return c.checkCall(instr)
	case ir.InstrReturn:
		return c.checkReturn(instr)
	case ir.InstrValue:
		return c.checkInstrValue(instr)
	case ir.InstrControlFlow:
		return c.checkControlFlow(instr)
	case ir.InstrBreak:
		return false, nil
	case ir.InstrBinaryOp:
		return c.checkBinaryOp(instr)
	case ir.InstrDot:
		return c.checkDot(instr)
	case ir.InstrIndex:
		return c.checkIndex(instr)
	default:
		return false, nil
	}
}

func (c *Checker) checkAssign(instr *ir.Instruction) (bool, error) {
	did, err := c.checkValue(&instr.Dest)
	if err != nil {
		return did, err
	}
	w, err := c.checkValue(&instr.Value)
	did = did || w
	if err != nil {
		return did, err
	}
	w, err = c.unify(instr.Value.Ty, instr.Dest.Ty, instr.Span)
	did = did || w
	return did, err
}

func (c *Checker) checkCall(instr *ir.Instruction) (bool, error) {
	did, err := c.checkValue(&instr.Func)
	if err != nil {
		return did, err
	}
	for i := range instr.Args {
		w, err := c.checkValue(&instr.Args[i])
		did = did || w
		if err != nil {
			return did, err
		}
	}
	if instr.Func.Ty == nil || instr.Func.Ty.T.Kind != ir.TypeFunction {
		// Callee signature not resolved yet; retried next sweep.
		return did, nil
	}
	sig := instr.Func.Ty.T
	if len(instr.Args) < len(sig.FuncArgs) || (!sig.Variadic && len(instr.Args) != len(sig.FuncArgs)) {
		return did, diag.IncompatibleType(argCountText(len(instr.Args)), paramCountText(len(sig.FuncArgs)), instr.Span)
	}
	for i, param := range sig.FuncArgs {
		w, err := c.unify(instr.Args[i].Ty, param, instr.Span)
		did = did || w
		if err != nil {
			return did, err
		}
	}
	if instr.Ty != nil {
		w, err := c.unify(sig.FuncReturn, instr.Ty, instr.Span)
		did = did || w
		if err != nil {
			return did, err
		}
	}
	return did, nil
}

func (c *Checker) checkReturn(instr *ir.Instruction) (bool, error) {
	if instr.RetValue == nil {
		voidTy := ir.Type{Kind: ir.TypeIntrinsic, Intrinsic: ir.Void}
		if !extends(instr.RetTo.T, voidTy) {
			return false, diag.IncompatibleType("void", typeName(instr.RetTo.T), instr.Span)
		}
		return false, nil
	}
	did, err := c.checkValue(instr.RetValue)
	if err != nil {
		return did, err
	}
	w, err := c.unify(instr.RetValue.Ty, instr.RetTo, instr.Span)
	did = did || w
	return did, err
}

func (c *Checker) checkInstrValue(instr *ir.Instruction) (bool, error) {
	did := false
	if instr.Body != nil {
		w, err := c.checkBlock(instr.Body)
		did = did || w
		if err != nil {
			return did, err
		}
	}
	if instr.Inner != nil {
		w, err := c.checkValue(instr.Inner)
		did = did || w
		if err != nil {
			return did, err
		}
		if instr.Ty != nil {
			w, err = c.unify(instr.Inner.Ty, instr.Ty, instr.Span)
			did = did || w
			if err != nil {
				return did, err
			}
		}
	}
	return did, nil
}

func isComparison(op ir.BinaryOpKind) bool {
	switch op {
	case ir.BinEq, ir.BinNe, ir.BinLt, ir.BinLe, ir.BinGt, ir.BinGe:
		return true
	default:
		return false
	}
}

func (c *Checker) checkBinaryOp(instr *ir.Instruction) (bool, error) {
	did, err := c.checkValue(instr.Lhs)
	if err != nil {
		return did, err
	}
	w, err := c.checkValue(instr.Rhs)
	did = did || w
	if err != nil {
		return did, err
	}
	w, err = c.unify(instr.Rhs.Ty, instr.Lhs.Ty, instr.Span)
	did = did || w
	if err != nil {
		return did, err
	}
	if instr.Ty == nil {
		return did, nil
	}
	if isComparison(instr.BinOp) {
		// The language has no dedicated boolean intrinsic (spec.md §3);
		// comparisons and Cond (checkControlFlow) both settle on u8.
		w, err = coerce(instr.Ty, ir.Type{Kind: ir.TypeIntrinsic, Intrinsic: ir.U8, Span: instr.Span})
	} else {
		w, err = c.unify(instr.Lhs.Ty, instr.Ty, instr.Span)
	}
	did = did || w
	return did, err
}

// derefToStruct walks through ReferenceTo/Shared indirection — the shape
// `this` and any `&T` parameter takes — down to the Struct type it wraps,
// if any.
func derefToStruct(t ir.Type) (ir.Type, bool) {
	for {
		switch t.Kind {
		case ir.TypeReferenceTo:
			t = t.Elem.T
		case ir.TypeShared:
			t = t.SharedTarget.T
		case ir.TypeStruct:
			return t, true
		default:
			return ir.Type{}, false
		}
	}
}

// derefToArray is derefToStruct's counterpart for indexing: it stops at
// whichever array kind it finds and reports the element cell directly.
func derefToArray(t ir.Type) (*ir.TypeCell, bool) {
	for {
		switch t.Kind {
		case ir.TypeReferenceTo, ir.TypeShared:
			if t.Kind == ir.TypeReferenceTo {
				t = t.Elem.T
			} else {
				t = t.SharedTarget.T
			}
		case ir.TypeSizedArrayOf, ir.TypeUnsizedArrayOf:
			return t.Elem, true
		default:
			return nil, false
		}
	}
}

func (c *Checker) checkDot(instr *ir.Instruction) (bool, error) {
	did, err := c.checkValue(instr.Base)
	if err != nil {
		return did, err
	}
	baseTy := instr.Base.Ty
	if baseTy == nil {
		return did, nil
	}
	structTy, ok := derefToStruct(baseTy.T)
	if !ok {
		if isHard(baseTy.T.Kind) {
			return did, diag.InvalidDot(instr.Span)
		}
		return did, nil
	}
	for _, m := range structTy.StructMembers {
		if m.Name == instr.Member {
			w, err := c.unify(m.Ty, instr.Ty, instr.Span)
			did = did || w
			return did, err
		}
	}
	return did, diag.UnknownIdent(instr.Member, instr.Span)
}

func (c *Checker) checkIndex(instr *ir.Instruction) (bool, error) {
	did, err := c.checkValue(instr.Base)
	if err != nil {
		return did, err
	}
	w, err := c.checkValue(instr.Rhs)
	did = did || w
	if err != nil {
		return did, err
	}
	baseTy := instr.Base.Ty
	if baseTy == nil {
		return did, nil
	}
	elem, ok := derefToArray(baseTy.T)
	if !ok {
		if isHard(baseTy.T.Kind) {
			return did, diag.IncompatibleType("index", typeName(baseTy.T), instr.Span)
		}
		return did, nil
	}
	w, err = c.unify(elem, instr.Ty, instr.Span)
	did = did || w
	return did, err
}

func (c *Checker) checkControlFlow(instr *ir.Instruction) (bool, error) {
	did := false
	if instr.Cond != nil {
		w, err := c.checkValue(instr.Cond)
		did = did || w
		if err != nil {
			return did, err
		}
		boolTy := ir.Intrinsic(ir.U8, instr.Span)
		w, err = c.unify(instr.Cond.Ty, boolTy, instr.Span)
		did = did || w
		if err != nil {
			return did, err
		}
	}
	w, err := c.checkBlock(instr.Body)
	did = did || w
	if err != nil {
		return did, err
	}
	if instr.Else != nil {
		w, err = c.checkBlock(instr.Else)
		did = did || w
		if err != nil {
			return did, err
		}
	}
	return did, nil
}

func (c *Checker) checkValue(v *ir.Value) (bool, error) {
	switch v.Kind {
	case ir.ValueKindVariable:
		return c.checkTypeCell(v.Var.Resolve().Ty)
	case ir.ValueKindLiteral:
		return c.checkTypeCell(v.Ty)
	case ir.ValueKindInstruction:
		return c.checkInstruction(v.Instr)
	default:
		return false, nil
	}
}

func (c *Checker) checkTypeCell(cell *ir.TypeCell) (bool, error) {
	if cell == nil {
		return false, nil
	}
	switch cell.T.Kind {
	case ir.TypeUnresolved:
		m, ok := resolveReference(cell.T.Reference, cell.T.Implied, c.prog)
		if !ok {
			return false, nil
		}
		resolved, ok := memberAsType(m)
		if !ok {
			return false, nil
		}
		resolved.Span = cell.T.Span
		cell.T = resolved
		return true, nil
	case ir.TypeSizedArrayOf:
		did := false
		if cell.T.Count != nil {
			w, err := c.checkValue(cell.T.Count)
			did = did || w
			if err != nil {
				return did, err
			}
		}
		w, err := c.checkTypeCell(cell.T.Elem)
		did = did || w
		return did, err
	case ir.TypeUnsizedArrayOf, ir.TypeReferenceTo:
		return c.checkTypeCell(cell.T.Elem)
	case ir.TypeShared:
		return c.checkTypeCell(cell.T.SharedTarget)
	case ir.TypeFunction:
		did, err := c.checkTypeCell(cell.T.FuncReturn)
		if err != nil {
			return did, err
		}
		for _, a := range cell.T.FuncArgs {
			w, err := c.checkTypeCell(a)
			did = did || w
			if err != nil {
				return did, err
			}
		}
		return did, nil
	case ir.TypeStruct:
		did := false
		for _, m := range cell.T.StructMembers {
			w, err := c.checkTypeCell(m.Ty)
			did = did || w
			if err != nil {
				return did, err
			}
		}
		return did, nil
	default:
		return false, nil
	}
}

// unify narrows whichever of value/target currently holds a soft type
// (Unknown, Unresolved, or a Fuzzy literal type) toward the other side, or
// verifies extends(value, target) once both are hard — the one rule
// behind Assign, Return, and Call-argument checking alike (spec.md §4.7).
func (c *Checker) unify(value, target *ir.TypeCell, sp span.Span) (bool, error) {
	if value == nil || target == nil {
		return false, nil
	}
	valHard := isHard(value.T.Kind)
	tgtHard := isHard(target.T.Kind)
	switch {
	case !tgtHard && valHard:
		return coerce(target, value.T)
	case tgtHard && !valHard:
		return coerce(value, target.T)
	case !tgtHard && !valHard:
		if value.T.Kind != ir.TypeUnknown && value.T.Kind != ir.TypeUnresolved {
			return coerce(target, value.T)
		}
		return false, nil
	default:
		if !extends(value.T, target.T) {
			return false, diag.IncompatibleType(typeName(value.T), typeName(target.T), sp)
		}
		return false, nil
	}
}

func isHard(k ir.TypeKind) bool {
	switch k {
	case ir.TypeUnknown, ir.TypeUnresolved, ir.TypeFuzzyInteger, ir.TypeFuzzyString:
		return false
	default:
		return true
	}
}

func argCountText(n int) string   { return countText(n, "argument") }
func paramCountText(n int) string { return countText(n, "parameter") }

func countText(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
