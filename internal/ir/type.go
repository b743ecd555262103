package ir

import "github.com/zylang/zyc/internal/span"

// IntrinsicKind is the closed set of built-in scalar types (spec.md §3).
// usize/isize/char/c_char are fixed aliases resolved to one of these at
// construction time, not separate kinds.
type IntrinsicKind uint8

const (
	Void IntrinsicKind = iota
	U8
	I8
	U16
	I16
	U32
	I32
	U64
	I64
	F32
	F64
)

func (k IntrinsicKind) String() string {
	switch k {
	case Void:
		return "void"
	case U8:
		return "u8"
	case I8:
		return "i8"
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case U64:
		return "u64"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "?"
	}
}

// intrinsicAliases maps the spec's fixed aliases onto a concrete kind.
var intrinsicAliases = map[string]IntrinsicKind{
	"void": Void, "u8": U8, "i8": I8, "u16": U16, "i16": I16,
	"u32": U32, "i32": I32, "u64": U64, "i64": I64, "f32": F32, "f64": F64,
	"usize": U64, "isize": I64, "char": U32, "c_char": I8,
}

// LookupIntrinsic reports whether name names an intrinsic (including an
// alias), and if so which kind it resolves to.
func LookupIntrinsic(name string) (IntrinsicKind, bool) {
	k, ok := intrinsicAliases[name]
	return k, ok
}

// TypeKind discriminates a Type's variant (spec.md §3).
type TypeKind uint8

const (
	TypeIntrinsic TypeKind = iota
	TypeUnresolved
	TypeUnsizedArrayOf
	TypeSizedArrayOf
	TypeReferenceTo
	TypeShared
	TypeFunction
	TypeStruct
	TypeFuzzyInteger
	TypeFuzzyString
	TypeUnknown
)

// Type is one node of the type tree. TypeCell is the only thing that ever
// points at a Type by value; aliasing goes through TypeCell, never a
// pointer to Type directly, so in-place coercion stays visible everywhere.
type Type struct {
	Kind TypeKind
	Span span.Span

	Intrinsic IntrinsicKind

	// Unresolved
	Implied   bool
	Reference DomainReference
	Template  []*TypeCell

	// UnsizedArrayOf / SizedArrayOf / ReferenceTo element type.
	Elem *TypeCell

	// SizedArrayOf count.
	Count *Value

	// ReferenceTo mutability.
	Mut bool

	// Shared indirection target.
	SharedTarget *TypeCell

	// Function
	FuncArgs   []*TypeCell
	FuncReturn *TypeCell
	Variadic   bool

	// Struct
	StructMembers []StructMember

	// FuzzyString
	FuzzySize int
	FuzzyElem *TypeCell
}

// StructMember is one field of a Struct type, named so extends() can
// compare field lists by name, not just position.
type StructMember struct {
	Name string
	Ty   *TypeCell
}

// TypeCell is a shared, mutable, identity-significant cell holding a Type
// (spec.md §3). Two cells may hold structurally identical Types and still
// be distinct cells; aliasing is explicit via pointer identity of the
// cell, never of the Type it holds.
type TypeCell struct {
	T Type
}

// NewTypeCell wraps t in a fresh cell.
func NewTypeCell(t Type) *TypeCell {
	return &TypeCell{T: t}
}

// Unknown returns a cell holding Unknown{span}, used for a binding with no
// annotation and no initializer yet.
func Unknown(sp span.Span) *TypeCell {
	return NewTypeCell(Type{Kind: TypeUnknown, Span: sp})
}

// Intrinsic returns a cell holding Intrinsic(kind).
func Intrinsic(kind IntrinsicKind, sp span.Span) *TypeCell {
	return NewTypeCell(Type{Kind: TypeIntrinsic, Intrinsic: kind, Span: sp})
}

// Deref follows Shared indirection to the underlying cell, stopping at the
// first non-Shared cell (Shared cells are never chained more than the
// preprocessor needs, but this loop tolerates accidental chains).
func (c *TypeCell) Deref() *TypeCell {
	cur := c
	for cur.T.Kind == TypeShared {
		cur = cur.T.SharedTarget
	}
	return cur
}

// DomainReference is a path identifying a semantic location during name
// resolution (spec.md §3); it seeds Unresolved type lookup.
type DomainReference struct {
	Handle span.Handle
	Parts  []string
	// Origin anchors where the reference should start resolving from: the
	// domain it was written in (for implied, root-relative lookups) or the
	// enclosing scope's domain (for relative lookups). Nil means "resolve
	// from the owning module's root domain".
	Origin *Domain
}
