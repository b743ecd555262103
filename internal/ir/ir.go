// Package ir holds the semantic tree the preprocessor builds from the AST
// and the checker resolves to fixed point: domains, types, functions,
// blocks, values and instructions (spec.md §3, §4.6).
package ir

import "github.com/zylang/zyc/internal/span"

// MemberKind discriminates what a DomainMember holds.
type MemberKind uint8

const (
	MemberDomain MemberKind = iota
	MemberFunction
	MemberExternFunction
	MemberType
	MemberStruct
)

// Domain is a name -> DomainMember mapping, the root IR structure per
// module and per nested namespace.
type Domain struct {
	Handle  span.Handle
	Name    string
	Parent  *Domain
	Members map[string]*DomainMember
}

// NewDomain creates an empty domain owned by handle, optionally nested
// under parent (nil for a module's root domain).
func NewDomain(h span.Handle, name string, parent *Domain) *Domain {
	return &Domain{Handle: h, Name: name, Parent: parent, Members: map[string]*DomainMember{}}
}

// Declare inserts member under name, reporting false if the name already
// exists (a collision, spec.md §4.6) so the preprocessor can raise one
// error per clash instead of silently overwriting.
func (d *Domain) Declare(name string, m *DomainMember) bool {
	if _, exists := d.Members[name]; exists {
		return false
	}
	d.Members[name] = m
	return true
}

// Lookup resolves name within this domain only (no parent walk — callers
// needing lexical fallthrough walk Parent themselves).
func (d *Domain) Lookup(name string) (*DomainMember, bool) {
	m, ok := d.Members[name]
	return m, ok
}

// ImplKey builds the synthetic DomainMember key for an impl block, with or
// without a trait (spec.md §4.6): "impl!<T>" or "impl!<T>!<Trait>".
func ImplKey(typeName string, traitName string) string {
	if traitName == "" {
		return "impl!<" + typeName + ">"
	}
	return "impl!<" + typeName + ">!<" + traitName + ">"
}

// DomainMember is one named thing inside a Domain.
type DomainMember struct {
	Kind MemberKind
	Name string
	Span span.Span

	// TemplateScope is non-nil when this member was declared under a
	// template<...> scope (spec.md §4.6); shared by reference so that a
	// declaration and its body see the same template TypeCells.
	TemplateScope *VariableScope

	// Sub is populated when Kind == MemberDomain (a nested namespace).
	Sub *Domain

	// Fn is populated when Kind is MemberFunction or MemberExternFunction.
	Fn *Function

	// Ty is populated when Kind is MemberType or MemberStruct.
	Ty *TypeCell
}

// Function is a declared function's IR: its arguments, return type cell,
// and (for non-extern functions) its body block.
type Function struct {
	Name      string
	Args      *VariableScope
	ReturnTy  *TypeCell
	Body      *Block // nil for ExternFunction
	Variadic  bool   // extern ... only (spec.md §4.4)
	Span      span.Span
}

// Block is a lexical block: its own variable scope plus the instruction
// sequence it lowers to.
type Block struct {
	Scope        *VariableScope
	Instructions []Instruction
	ReturnsLast  bool // true when the block's tail expression has no ';'
	Ty           *TypeCell
	Span         span.Span
}

// VarKind discriminates how a Variable entered its scope.
type VarKind uint8

const (
	VarArgument VarKind = iota
	VarLocal
	VarTemplate
)

// Variable is one entry in a VariableScope.
type Variable struct {
	Name string
	Kind VarKind
	Ty   *TypeCell
	Span span.Span
}

// VariableScope is a shared, mutable, ordered list of Variables (spec.md
// §3). Functions hold one for arguments; blocks hold one for locals;
// template scopes hold one for template type variables. It is always
// referenced through a pointer so every alias observes appends and, via
// each Variable's TypeCell, every coercion.
type VariableScope struct {
	Inner []*Variable
}

// NewVariableScope returns an empty scope.
func NewVariableScope() *VariableScope { return &VariableScope{} }

// Declare appends v and returns its index, the first half of a
// VariableReference.
func (s *VariableScope) Declare(v *Variable) int {
	s.Inner = append(s.Inner, v)
	return len(s.Inner) - 1
}

// Lookup finds the most recently declared Variable named name, so shadowing
// within a single scope resolves to the latest binding.
func (s *VariableScope) Lookup(name string) (int, *Variable, bool) {
	for i := len(s.Inner) - 1; i >= 0; i-- {
		if s.Inner[i].Name == name {
			return i, s.Inner[i], true
		}
	}
	return -1, nil, false
}

// VariableReference names one Variable by scope identity and index,
// instead of by a raw pointer, per spec.md §3.
type VariableReference struct {
	Scope *VariableScope
	Index int
	Span  span.Span
}

// Resolve dereferences the reference to its current Variable.
func (r VariableReference) Resolve() *Variable {
	return r.Scope.Inner[r.Index]
}

// InstructionKind discriminates an Instruction's variant.
type InstructionKind uint8

const (
	InstrAssign InstructionKind = iota
	InstrCall
	InstrReturn
	InstrValue
	// InstrControlFlow is not named in spec.md §3's Instruction variant
	// list (Assign | Call | Return | Value), but a Block's BlockChild set
	// includes ControlFlow (spec.md §4.4) and nothing else in that list
	// can carry a loop or conditional into the instruction stream. This
	// is a minimal, spec-consistent extension of Instruction, not a
	// deviation from it: the checker still treats it as just another
	// Instruction to walk for did-work purposes (spec.md §4.7).
	InstrControlFlow
	// InstrBreak is the same kind of minimal, necessary extension as
	// InstrControlFlow: Atom's Break variant (spec.md §3) has to land
	// somewhere in the instruction stream.
	InstrBreak
	// InstrBinaryOp is the third such extension: PEMDAS (spec.md §4.5)
	// resolves arithmetic/comparison/bitwise operators into ast.Binary
	// nodes, but spec.md §3's Instruction set has no variant for a raw
	// binary computation, only Assign/Call/Return/Value. Rather than
	// invent a call to a synthetic intrinsic function (which would need
	// its own fabricated Domain entry with no grounding anywhere in the
	// spec), InstrBinaryOp carries the operator directly, the same way
	// InstrControlFlow and InstrBreak carry their own shape.
	InstrBinaryOp
	// InstrDot and InstrIndex carry a member-access / index-access as a
	// deferred instruction rather than resolving it once while lowering:
	// the base's type is almost never known yet at that point (it is
	// usually still Unknown/Unresolved/a ReferenceTo, settled only later
	// by the checker sweep), so the lookup against StructMembers/Elem has
	// to retry every round exactly like any other Unresolved cell.
	InstrDot
	InstrIndex
)

// ControlFlowKind mirrors the ast package's closed set of control-flow
// forms without importing ast (ir sits below ast/preprocess).
type ControlFlowKind uint8

const (
	CFIf ControlFlowKind = iota
	CFWhile
	CFUntil
	CFLoop
)

// BinaryOpKind mirrors the closed set of binary operators PEMDAS resolves
// (spec.md §4.5 levels 5-10) without importing the token package.
type BinaryOpKind uint8

const (
	BinAdd BinaryOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinPow
	BinAnd
	BinLogAnd
	BinOr
	BinLogOr
	BinXor
	BinLogXor
	BinShl
	BinShr
	BinUShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

// Instruction is one statement-level IR node (spec.md §3, §4.7).
type Instruction struct {
	Kind InstructionKind
	Span span.Span

	// Assign
	Dest  Value
	Value Value

	// Call
	Func Value
	Args []Value

	// Return
	RetValue *Value   // nil when the return carries no value
	RetTo    *TypeCell // the enclosing function's return type cell

	// Value wraps a nested Value (InstrValue) — see ValueKindInstruction.
	// When the wrapped expression was itself a block (a sub-block used
	// for its tail value), Body carries that block's leading instructions
	// and Inner carries its tail, instead of adding a sixth Instruction
	// shape just for "block as expression".
	Inner *Value

	// ControlFlow (InstrControlFlow). Cond is nil only for CFLoop. Else is
	// non-nil only for CFIf: a plain `else` lowers its Block directly, and
	// an `else if` lowers to a Block whose single Instruction is itself
	// InstrControlFlow, so Else is always *Block either way. DoWhile/
	// DoUntil/For all desugar to CFLoop plus a conditional Break (spec.md
	// §9 open question) during preprocessing, not here: by the time an
	// Instruction exists, only If/While/Until/Loop remain.
	CFKind ControlFlowKind
	Cond   *Value
	Body   *Block
	Else   *Block

	// BinaryOp (InstrBinaryOp). Lhs/Rhs are the operator's two operands.
	BinOp BinaryOpKind
	Lhs   *Value
	Rhs   *Value

	// Dot (InstrDot). Base is the accessed value, Member its field name.
	// Index (InstrIndex) reuses Base for the indexed value and Rhs for
	// the index expression.
	Base   *Value
	Member string

	// Ty is the result type of this Instruction when it is read as a Value
	// (InstrValue, InstrCall, InstrBinaryOp) — the checker coerces it in
	// place like any other TypeCell, and the boxing Value shares the same
	// cell rather than a copy, so a call's return type and the Value that
	// wraps the call observe one coercion together. Left nil for
	// Assign/Return/Break and a ControlFlow used only as a statement.
	Ty *TypeCell
}

// ValueKind discriminates a Value's variant.
type ValueKind uint8

const (
	ValueKindVariable ValueKind = iota
	ValueKindInstruction
	ValueKindLiteral
)

// LiteralKind mirrors the token package's literal categories as they
// arrive in the IR, minus the byte-level decoding detail.
type LiteralKind uint8

const (
	LitInteger LiteralKind = iota
	LitFloat
	LitString
	LitChar
)

// Value is the IR's expression-result carrier: a variable reference, a
// boxed nested instruction (e.g. a call used as an operand), or a
// literal with its own TypeCell.
type Value struct {
	Kind ValueKind
	Span span.Span

	Var *VariableReference

	Instr *Instruction

	LitKind    LiteralKind
	IntValue   uint64
	FloatValue float64
	StringValue string
	Ty         *TypeCell
}
