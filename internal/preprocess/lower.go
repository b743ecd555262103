package preprocess

import (
	"fmt"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/token"
)

// UnknownNameError reports a bare identifier that resolves neither to a
// local/argument/template variable nor (yet) to a domain member; the
// checker retries these every sweep until they resolve or the fixed point
// gives up (spec.md §4.7).
type UnknownNameError struct {
	Name string
	Sp   span.Span
}

func (e *UnknownNameError) Error() string     { return fmt.Sprintf("unknown name %q", e.Name) }
func (e *UnknownNameError) GetSpan() span.Span { return e.Sp }

// lowerCtx carries the state needed to lower one function body: the
// module handle, the enclosing domain (for free-name / call-callee
// lookups) and a stack of lexical VariableScopes, innermost last.
type lowerCtx struct {
	h        span.Handle
	domain   *ir.Domain
	returnTo *ir.TypeCell
	scopes   []*ir.VariableScope
}

func (lc *lowerCtx) pushScope(s *ir.VariableScope) { lc.scopes = append(lc.scopes, s) }
func (lc *lowerCtx) popScope()                     { lc.scopes = lc.scopes[:len(lc.scopes)-1] }

func (lc *lowerCtx) lookupVar(name string) (ir.VariableReference, bool) {
	for i := len(lc.scopes) - 1; i >= 0; i-- {
		if idx, _, ok := lc.scopes[i].Lookup(name); ok {
			return ir.VariableReference{Scope: lc.scopes[i], Index: idx}, true
		}
	}
	return ir.VariableReference{}, false
}

func (lc *lowerCtx) lowerBlock(b *ast.Block) (*ir.Block, error) {
	scope := ir.NewVariableScope()
	lc.pushScope(scope)
	defer lc.popScope()

	instrs := make([]ir.Instruction, 0, len(b.Children))
	for _, child := range b.Children {
		instr, err := lc.lowerBlockChild(child, scope)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
	}

	// When the block's tail is a returned value, Ty aliases that tail
	// instruction's own result cell rather than a fresh Unknown one, so a
	// caller narrowing Block.Ty (e.g. the checker unifying a function's
	// implicit return against its declared return type) narrows the very
	// cell the tail expression's coercions already flow through, instead
	// of an unrelated copy the checker would have to keep back in sync by
	// hand.
	var ty *ir.TypeCell
	if b.ReturnsLast && len(instrs) > 0 {
		ty = instrValueTy(&instrs[len(instrs)-1])
	}
	if ty == nil {
		ty = ir.Unknown(b.Sp)
	}
	return &ir.Block{Scope: scope, Instructions: instrs, ReturnsLast: b.ReturnsLast, Ty: ty, Span: b.Sp}, nil
}

// instrValueTy returns the TypeCell instr carries when read as a Value,
// following InstrValue through to Inner when the wrapper itself was never
// given its own Ty (only a nested-block-used-as-a-value sets InstrValue.Ty
// directly, via wrapInstr; a bare tail expression leaves it nil and the
// type lives on Inner instead).
func instrValueTy(instr *ir.Instruction) *ir.TypeCell {
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

func (lc *lowerCtx) lowerBlockChild(child ast.BlockChild, scope *ir.VariableScope) (ir.Instruction, error) {
	switch n := child.(type) {
	case *ast.Binding:
		return lc.lowerBinding(n, scope)
	case *ast.ControlFlow:
		return lc.lowerControlFlow(n)
	case *ast.Return:
		return lc.lowerReturn(n)
	case *ast.Break:
		return ir.Instruction{Kind: ir.InstrBreak, Span: n.Sp}, nil
	case *ast.Call:
		return lc.lowerCallInstr(n)
	case *ast.Binary:
		if assignKind, ok := assignOpKind(n.Op); ok {
			return lc.lowerAssign(n, assignKind)
		}
		v, err := lc.lowerExpr(n)
		return ir.Instruction{Kind: ir.InstrValue, Span: n.Sp, Inner: &v}, err
	default:
		e, ok := child.(ast.Expr)
		if !ok {
			return ir.Instruction{}, fmt.Errorf("preprocess: block child %T is not an expression", child)
		}
		v, err := lc.lowerExpr(e)
		return ir.Instruction{Kind: ir.InstrValue, Span: e.Span(), Inner: &v}, err
	}
}

func (lc *lowerCtx) lowerBinding(n *ast.Binding, scope *ir.VariableScope) (ir.Instruction, error) {
	if n.Ty == nil && !n.Mut && n.Init != nil {
		// `x := e` on a name already in scope assigns to that variable
		// instead of declaring a second one.
		if ref, ok := lc.lookupVar(n.Name); ok {
			val, err := lc.lowerExpr(n.Init)
			if err != nil {
				return ir.Instruction{}, err
			}
			ref.Span = n.Sp
			dest := ir.Value{Kind: ir.ValueKindVariable, Span: n.Sp, Var: &ref, Ty: ref.Resolve().Ty}
			return ir.Instruction{Kind: ir.InstrAssign, Span: n.Sp, Dest: dest, Value: val}, nil
		}
	}
	var ty *ir.TypeCell
	if n.Ty != nil {
		ty = convertType(n.Ty, lc.domain, lc.h)
	} else {
		ty = ir.Unknown(n.Sp)
	}

	v := &ir.Variable{Name: n.Name, Kind: ir.VarLocal, Ty: ty, Span: n.Sp}
	idx := scope.Declare(v)
	destRef := ir.VariableReference{Scope: scope, Index: idx, Span: n.Sp}
	dest := ir.Value{Kind: ir.ValueKindVariable, Span: n.Sp, Var: &destRef, Ty: ty}

	if n.Init == nil {
		// Declaration without a value: nothing to assign yet, still a
		// statement that introduced the name, so surface it as a
		// self-assignment to an Unknown literal rather than special-
		// casing a fifth Instruction shape for "declare only".
		zero := ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, LitKind: ir.LitInteger, Ty: ty}
		return ir.Instruction{Kind: ir.InstrAssign, Span: n.Sp, Dest: dest, Value: zero}, nil
	}

	val, err := lc.lowerExpr(n.Init)
	if err != nil {
		return ir.Instruction{}, err
	}
	return ir.Instruction{Kind: ir.InstrAssign, Span: n.Sp, Dest: dest, Value: val}, nil
}

// assignOpKind reports whether op is one of the assignment-family
// operators and, if compound (e.g. +=), the BinaryOpKind it desugars
// through (Dest := Dest <op> Rhs). Plain `=`/`:=` report ok with no
// meaningful compound kind.
func assignOpKind(op token.OperatorTag) (ir.BinaryOpKind, bool) {
	switch op {
	case token.OpAssign, token.OpDefine:
		return 0, true
	case token.OpAddAssign:
		return ir.BinAdd, true
	case token.OpSubAssign:
		return ir.BinSub, true
	case token.OpMulAssign:
		return ir.BinMul, true
	case token.OpDivAssign:
		return ir.BinDiv, true
	case token.OpModAssign:
		return ir.BinMod, true
	case token.OpPowAssign:
		return ir.BinPow, true
	case token.OpAndAssign:
		return ir.BinAnd, true
	case token.OpLogAndAssign:
		return ir.BinLogAnd, true
	case token.OpOrAssign:
		return ir.BinOr, true
	case token.OpLogOrAssign:
		return ir.BinLogOr, true
	case token.OpXorAssign:
		return ir.BinXor, true
	case token.OpLogXorAssign:
		return ir.BinLogXor, true
	case token.OpShlAssign:
		return ir.BinShl, true
	case token.OpShrAssign:
		return ir.BinShr, true
	case token.OpUShrAssign:
		return ir.BinUShr, true
	}
	return 0, false
}

func compoundAssignOp(op token.OperatorTag) bool {
	return op != token.OpAssign && op != token.OpDefine
}

func (lc *lowerCtx) lowerAssign(n *ast.Binary, kind ir.BinaryOpKind) (ir.Instruction, error) {
	dest, err := lc.lowerExpr(n.Lhs)
	if err != nil {
		return ir.Instruction{}, err
	}
	rhs, err := lc.lowerExpr(n.Rhs)
	if err != nil {
		return ir.Instruction{}, err
	}
	if !compoundAssignOp(n.Op) {
		return ir.Instruction{Kind: ir.InstrAssign, Span: n.Sp, Dest: dest, Value: rhs}, nil
	}
	computed := wrapInstr(ir.Instruction{Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: kind, Lhs: &dest, Rhs: &rhs})
	return ir.Instruction{Kind: ir.InstrAssign, Span: n.Sp, Dest: dest, Value: computed}, nil
}

func (lc *lowerCtx) lowerReturn(n *ast.Return) (ir.Instruction, error) {
	if n.Value == nil {
		return ir.Instruction{Kind: ir.InstrReturn, Span: n.Sp, RetTo: lc.returnTo}, nil
	}
	v, err := lc.lowerExpr(n.Value)
	if err != nil {
		return ir.Instruction{}, err
	}
	return ir.Instruction{Kind: ir.InstrReturn, Span: n.Sp, RetValue: &v, RetTo: lc.returnTo}, nil
}

func (lc *lowerCtx) astCFKind(k ast.ControlFlowKind) (ir.ControlFlowKind, bool, bool) {
	// Returns (kind, isLoopDesugar, isUntil) — isLoopDesugar marks
	// DoWhile/DoUntil/For, which lower to CFLoop plus a conditional Break
	// instead of mapping to one of the four real ir.ControlFlowKind forms
	// (DESIGN.md resolution on DoWhile/DoUntil/For desugaring).
	switch k {
	case ast.CFIf:
		return ir.CFIf, false, false
	case ast.CFWhile:
		return ir.CFWhile, false, false
	case ast.CFUntil:
		return ir.CFUntil, false, false
	case ast.CFLoop:
		return ir.CFLoop, false, false
	case ast.CFDoWhile:
		return ir.CFLoop, true, false
	case ast.CFDoUntil:
		return ir.CFLoop, true, true
	case ast.CFFor:
		return ir.CFLoop, true, false
	}
	return ir.CFLoop, false, false
}

func (lc *lowerCtx) lowerControlFlow(n *ast.ControlFlow) (ir.Instruction, error) {
	kind, desugar, negate := lc.astCFKind(n.Kind)

	body, err := lc.lowerBlock(n.Body)
	if err != nil {
		return ir.Instruction{}, err
	}

	if desugar {
		return lc.desugarToLoop(n, body, negate)
	}

	instr := ir.Instruction{Kind: ir.InstrControlFlow, Span: n.Sp, CFKind: kind, Body: body}
	if n.Cond != nil {
		cond, err := lc.lowerExpr(n.Cond)
		if err != nil {
			return ir.Instruction{}, err
		}
		instr.Cond = &cond
	}
	if n.Else != nil {
		elseBlock, err := lc.lowerElse(n.Else)
		if err != nil {
			return ir.Instruction{}, err
		}
		instr.Else = elseBlock
	}
	return instr, nil
}

// desugarToLoop implements DESIGN.md's DoWhile/DoUntil/For resolution:
// `do { body } while cond` becomes `loop { body; if !cond { break } }`,
// and `until`'s sense is the mirror (break when the condition holds).
// A parsed CFFor carries only a condition (no init or step clause), and
// `for cond { body }` lowers exactly like `do { body } while cond`: the
// condition is tested after each pass of the body. Any of these kinds
// with no condition lowers to a plain Loop.
func (lc *lowerCtx) desugarToLoop(n *ast.ControlFlow, body *ir.Block, negate bool) (ir.Instruction, error) {
	if n.Cond == nil {
		return ir.Instruction{Kind: ir.InstrControlFlow, Span: n.Sp, CFKind: ir.CFLoop, Body: body}, nil
	}

	cond, err := lc.lowerExpr(n.Cond)
	if err != nil {
		return ir.Instruction{}, err
	}
	breakCond := cond
	if !negate {
		falseLit := ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, LitKind: ir.LitInteger, IntValue: 0,
			Ty: ir.NewTypeCell(ir.Type{Kind: ir.TypeFuzzyInteger, Span: n.Sp})}
		breakCond = wrapInstr(ir.Instruction{
			Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: ir.BinEq,
			Lhs: &cond, Rhs: &falseLit,
		})
	}
	breakIf := ir.Instruction{
		Kind: ir.InstrControlFlow, Span: n.Sp, CFKind: ir.CFIf, Cond: &breakCond,
		Body: &ir.Block{Instructions: []ir.Instruction{{Kind: ir.InstrBreak, Span: n.Sp}}, Span: n.Sp, Ty: ir.Unknown(n.Sp)},
	}
	body.Instructions = append(body.Instructions, breakIf)
	return ir.Instruction{Kind: ir.InstrControlFlow, Span: n.Sp, CFKind: ir.CFLoop, Body: body}, nil
}

func (lc *lowerCtx) lowerElse(e ast.Expr) (*ir.Block, error) {
	switch n := e.(type) {
	case *ast.Block:
		return lc.lowerBlock(n)
	case *ast.ControlFlow:
		instr, err := lc.lowerControlFlow(n)
		if err != nil {
			return nil, err
		}
		return &ir.Block{Instructions: []ir.Instruction{instr}, Span: n.Sp, Ty: ir.Unknown(n.Sp)}, nil
	default:
		return nil, fmt.Errorf("preprocess: unexpected else node %T", e)
	}
}

func wrapInstr(instr ir.Instruction) ir.Value {
	if instr.Ty == nil {
		instr.Ty = ir.Unknown(instr.Span)
	}
	return ir.Value{Kind: ir.ValueKindInstruction, Span: instr.Span, Instr: &instr, Ty: instr.Ty}
}

func (lc *lowerCtx) lowerExpr(e ast.Expr) (ir.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return lowerLiteral(n), nil

	case *ast.Variable:
		return lc.lowerVariable(n)

	case *ast.SubExpression:
		return lc.lowerExpr(n.Inner)

	case *ast.Block:
		instr, err := lc.lowerBlockAsValueInstr(n)
		if err != nil {
			return ir.Value{}, err
		}
		return wrapInstr(instr), nil

	case *ast.ControlFlow:
		instr, err := lc.lowerControlFlow(n)
		if err != nil {
			return ir.Value{}, err
		}
		return wrapInstr(instr), nil

	case *ast.Return:
		instr, err := lc.lowerReturn(n)
		if err != nil {
			return ir.Value{}, err
		}
		return wrapInstr(instr), nil

	case *ast.Break:
		return wrapInstr(ir.Instruction{Kind: ir.InstrBreak, Span: n.Sp}), nil

	case *ast.Call:
		instr, err := lc.lowerCallInstr(n)
		if err != nil {
			return ir.Value{}, err
		}
		return wrapInstr(instr), nil

	case *ast.Binary:
		return lc.lowerBinaryExpr(n)

	case *ast.Unary:
		return lc.lowerUnary(n)

	case *ast.PostfixOp:
		return lc.lowerPostfix(n)

	case *ast.Dot:
		return lc.lowerDot(n)

	case *ast.Index:
		return lc.lowerIndex(n)

	case *ast.Cast:
		return lc.lowerCast(n)

	case *ast.StructInitializer:
		return lc.lowerStructInit(n)

	default:
		return ir.Value{}, fmt.Errorf("preprocess: unhandled expression %T", e)
	}
}

func (lc *lowerCtx) lowerBlockAsValueInstr(n *ast.Block) (ir.Instruction, error) {
	b, err := lc.lowerBlock(n)
	if err != nil {
		return ir.Instruction{}, err
	}
	// A nested block used as an expression has no dedicated Instruction
	// shape either; fold its instructions into the parent stream, boxed
	// under InstrValue so the tail value (if ReturnsLast) is still the
	// thing callers read off.
	var tail ir.Value
	if b.ReturnsLast && len(b.Instructions) > 0 {
		last := b.Instructions[len(b.Instructions)-1]
		tail = wrapInstr(last)
		b.Instructions = b.Instructions[:len(b.Instructions)-1]
		// The tail was just lifted out into Inner above; Body no longer
		// ends on a returned value, so its own ReturnsLast must follow.
		b.ReturnsLast = false
	}
	return ir.Instruction{Kind: ir.InstrValue, Span: n.Sp, Inner: &tail, Body: b}, nil
}

func lowerLiteral(n *ast.Literal) ir.Value {
	sp := n.Sp
	switch n.Kind {
	case token.LiteralInteger:
		return ir.Value{Kind: ir.ValueKindLiteral, Span: sp, LitKind: ir.LitInteger, IntValue: n.IntValue,
			Ty: ir.NewTypeCell(ir.Type{Kind: ir.TypeFuzzyInteger, Span: sp})}
	case token.LiteralFloat:
		return ir.Value{Kind: ir.ValueKindLiteral, Span: sp, LitKind: ir.LitFloat, FloatValue: n.FloatValue,
			Ty: ir.Intrinsic(ir.F64, sp)}
	case token.LiteralUnicodeChar, token.LiteralByteChar:
		return ir.Value{Kind: ir.ValueKindLiteral, Span: sp, LitKind: ir.LitChar, IntValue: n.IntValue,
			Ty: ir.Intrinsic(ir.U32, sp)}
	default:
		return ir.Value{Kind: ir.ValueKindLiteral, Span: sp, LitKind: ir.LitString, StringValue: n.StringValue,
			Ty: ir.NewTypeCell(ir.Type{
				Kind: ir.TypeFuzzyString, FuzzySize: len(n.StringValue), Span: sp,
				FuzzyElem: ir.Intrinsic(ir.U8, sp),
			})}
	}
}

func (lc *lowerCtx) lowerVariable(n *ast.Variable) (ir.Value, error) {
	if len(n.Name.Parts) == 1 && !n.Name.Implied {
		if ref, ok := lc.lookupVar(n.Name.Parts[0]); ok {
			ref.Span = n.Sp
			return ir.Value{Kind: ir.ValueKindVariable, Span: n.Sp, Var: &ref, Ty: ref.Resolve().Ty}, nil
		}
	}
	// Not a local/argument/template name: defer to domain member
	// resolution, represented as an Unresolved-typed literal-less
	// reference the checker re-tries each sweep (spec.md §4.7).
	ref := ir.DomainReference{Handle: lc.h, Parts: n.Name.Parts, Origin: lc.domain}
	ty := ir.NewTypeCell(ir.Type{Kind: ir.TypeUnresolved, Implied: n.Name.Implied, Reference: ref, Span: n.Sp})
	return ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, Ty: ty}, nil
}

func (lc *lowerCtx) lowerCallInstr(n *ast.Call) (ir.Instruction, error) {
	fn, err := lc.lowerExpr(n.Callee)
	if err != nil {
		return ir.Instruction{}, err
	}
	args := make([]ir.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := lc.lowerExpr(a)
		if err != nil {
			return ir.Instruction{}, err
		}
		args[i] = v
	}
	return ir.Instruction{Kind: ir.InstrCall, Span: n.Sp, Func: fn, Args: args, Ty: ir.Unknown(n.Sp)}, nil
}

var binOpTable = map[token.OperatorTag]ir.BinaryOpKind{
	token.OpAdd: ir.BinAdd, token.OpSub: ir.BinSub, token.OpMul: ir.BinMul,
	token.OpDiv: ir.BinDiv, token.OpMod: ir.BinMod, token.OpPow: ir.BinPow,
	token.OpAnd: ir.BinAnd, token.OpLogAnd: ir.BinLogAnd,
	token.OpOr: ir.BinOr, token.OpLogOr: ir.BinLogOr,
	token.OpXor: ir.BinXor, token.OpLogXor: ir.BinLogXor,
	token.OpShl: ir.BinShl, token.OpShr: ir.BinShr, token.OpUShr: ir.BinUShr,
	token.OpEq: ir.BinEq, token.OpNe: ir.BinNe,
	token.OpLt: ir.BinLt, token.OpLe: ir.BinLe, token.OpGt: ir.BinGt, token.OpGe: ir.BinGe,
}

func (lc *lowerCtx) lowerBinaryExpr(n *ast.Binary) (ir.Value, error) {
	if kind, ok := assignOpKind(n.Op); ok {
		instr, err := lc.lowerAssign(n, kind)
		if err != nil {
			return ir.Value{}, err
		}
		return wrapInstr(instr), nil
	}
	kind, ok := binOpTable[n.Op]
	if !ok {
		return ir.Value{}, fmt.Errorf("preprocess: unhandled binary operator %v", n.Op)
	}
	lhs, err := lc.lowerExpr(n.Lhs)
	if err != nil {
		return ir.Value{}, err
	}
	rhs, err := lc.lowerExpr(n.Rhs)
	if err != nil {
		return ir.Value{}, err
	}
	return wrapInstr(ir.Instruction{Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: kind, Lhs: &lhs, Rhs: &rhs}), nil
}

func (lc *lowerCtx) lowerUnary(n *ast.Unary) (ir.Value, error) {
	operand, err := lc.lowerExpr(n.Operand)
	if err != nil {
		return ir.Value{}, err
	}
	switch n.Op {
	case token.OpAnd: // reference prefix: &expr / &mut expr
		ty := ir.NewTypeCell(ir.Type{Kind: ir.TypeReferenceTo, Elem: operand.Ty, Mut: n.Mut, Span: n.Sp})
		return ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, Ty: ty}, nil

	case token.OpNot: // logical not: operand == 0
		zero := ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, LitKind: ir.LitInteger, IntValue: 0}
		return wrapInstr(ir.Instruction{Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: ir.BinEq, Lhs: &operand, Rhs: &zero}), nil

	case token.OpTilde: // bitwise not: operand ^ all-ones
		allOnes := ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, LitKind: ir.LitInteger, IntValue: ^uint64(0)}
		return wrapInstr(ir.Instruction{Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: ir.BinXor, Lhs: &operand, Rhs: &allOnes}), nil

	case token.OpSub: // unary minus: 0 - operand
		zero := ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, LitKind: ir.LitInteger, IntValue: 0}
		return wrapInstr(ir.Instruction{Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: ir.BinSub, Lhs: &zero, Rhs: &operand}), nil

	case token.OpInc, token.OpDec:
		one := ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, LitKind: ir.LitInteger, IntValue: 1}
		k := ir.BinAdd
		if n.Op == token.OpDec {
			k = ir.BinSub
		}
		return wrapInstr(ir.Instruction{Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: k, Lhs: &operand, Rhs: &one}), nil

	default:
		return ir.Value{}, fmt.Errorf("preprocess: unhandled unary operator %v", n.Op)
	}
}

func (lc *lowerCtx) lowerPostfix(n *ast.PostfixOp) (ir.Value, error) {
	operand, err := lc.lowerExpr(n.Operand)
	if err != nil {
		return ir.Value{}, err
	}
	one := ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, LitKind: ir.LitInteger, IntValue: 1}
	kind := ir.BinAdd
	if n.Op == token.OpDec {
		kind = ir.BinSub
	}
	return wrapInstr(ir.Instruction{Kind: ir.InstrBinaryOp, Span: n.Sp, BinOp: kind, Lhs: &operand, Rhs: &one}), nil
}

// lowerDot defers the member lookup to the checker (see InstrDot): the
// base's type is almost never resolved yet at lowering time, so this
// cannot look up StructMembers here the way a one-shot resolution would.
func (lc *lowerCtx) lowerDot(n *ast.Dot) (ir.Value, error) {
	base, err := lc.lowerExpr(n.Base)
	if err != nil {
		return ir.Value{}, err
	}
	return wrapInstr(ir.Instruction{Kind: ir.InstrDot, Span: n.Sp, Base: &base, Member: n.Member}), nil
}

// lowerIndex defers the element-type lookup the same way lowerDot does.
func (lc *lowerCtx) lowerIndex(n *ast.Index) (ir.Value, error) {
	base, err := lc.lowerExpr(n.Base)
	if err != nil {
		return ir.Value{}, err
	}
	idx, err := lc.lowerExpr(n.Index)
	if err != nil {
		return ir.Value{}, err
	}
	return wrapInstr(ir.Instruction{Kind: ir.InstrIndex, Span: n.Sp, Base: &base, Rhs: &idx}), nil
}

func (lc *lowerCtx) lowerCast(n *ast.Cast) (ir.Value, error) {
	_, err := lc.lowerExpr(n.Operand)
	if err != nil {
		return ir.Value{}, err
	}
	return ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, Ty: convertType(n.Ty, lc.domain, lc.h)}, nil
}

func (lc *lowerCtx) lowerStructInit(n *ast.StructInitializer) (ir.Value, error) {
	ref := ir.DomainReference{Handle: lc.h, Parts: n.Ty.Parts, Origin: lc.domain}
	ty := ir.NewTypeCell(ir.Type{Kind: ir.TypeUnresolved, Reference: ref, Span: n.Sp})
	for _, f := range n.Fields {
		if _, err := lc.lowerExpr(f.Value); err != nil {
			return ir.Value{}, err
		}
	}
	return ir.Value{Kind: ir.ValueKindLiteral, Span: n.Sp, Ty: ty}, nil
}
