package ast

import "github.com/zylang/zyc/internal/span"

// GlobalNamespace is the root of a module's AST (spec.md §3).
type GlobalNamespace struct {
	Children []TopLevel
	Sp       span.Span
}

func (g *GlobalNamespace) Span() span.Span { return g.Sp }

// Namespace is a nested `namespace Name { ... }` scope.
type Namespace struct {
	Name     string
	Children []TopLevel
	Sp       span.Span
}

func (n *Namespace) Span() span.Span { return n.Sp }
func (*Namespace) topLevel()         {}

// Arg is one `Ident : Type` of a FunctionDecl's argument list.
type Arg struct {
	Name string
	Ty   TypeExpr
	Sp   span.Span
}

// FunctionDecl is `Ident [-> Type] [: Arg (, Arg)*]`. Arguments follow the
// return type — a deliberate surface-syntax choice, not a parser bug
// (spec.md §4.4).
type FunctionDecl struct {
	Name     string
	ReturnTy TypeExpr // nil when omitted (defaults to void during preprocessing)
	Args     []Arg
	Sp       span.Span
}

// Function is an optional `template<...>` scope, a declaration, and a
// block body.
type Function struct {
	Template *TemplateScope // nil when not generic
	Decl     FunctionDecl
	Body     *Block
	Sp       span.Span
}

func (f *Function) Span() span.Span { return f.Sp }
func (*Function) topLevel()         {}

// TypeAlias is `type Name = Type`.
type TypeAlias struct {
	Name   string
	Target TypeExpr
	Sp     span.Span
}

func (t *TypeAlias) Span() span.Span { return t.Sp }
func (*TypeAlias) topLevel()         {}

// InterfaceMethod is one member signature of an Interface body.
type InterfaceMethod struct {
	Decl FunctionDecl
	Sp   span.Span
}

// Interface is `interface Name { (Decl ';')* }`.
type Interface struct {
	Name    string
	Methods []InterfaceMethod
	Sp      span.Span
}

func (i *Interface) Span() span.Span { return i.Sp }
func (*Interface) topLevel()         {}

// StructField is one `Ident : Type` member of a Struct body.
type StructField struct {
	Name string
	Ty   TypeExpr
	Sp   span.Span
}

// Struct is `struct Name { (Ident : Type ';')* }`.
type Struct struct {
	Name   string
	Fields []StructField
	Sp     span.Span
}

func (s *Struct) Span() span.Span { return s.Sp }
func (*Struct) topLevel()         {}

// Visibility is the closed set of class-member visibility modifiers.
type Visibility uint8

const (
	VisPrivate Visibility = iota
	VisProtected
	VisPublic
)

// ClassMethod is one method of a Class or Impl body, with its modifiers.
type ClassMethod struct {
	Vis      Visibility
	Static   bool
	Abstract bool
	Mut      bool // `this` receiver is mutable
	Fn       Function
	Sp       span.Span
}

// ClassField is one field of a Class body.
type ClassField struct {
	Vis Visibility
	Ty  TypeExpr
	Name string
	Sp  span.Span
}

// Class is `class Name { (Field ';' | Method)* }`; a Method carries a Block
// body unless it is abstract, in which case it ends in ';'.
type Class struct {
	Name    string
	Fields  []ClassField
	Methods []ClassMethod
	Sp      span.Span
}

func (c *Class) Span() span.Span { return c.Sp }
func (*Class) topLevel()         {}

// Impl is `impl T [: Trait] { Method* }`, with methods read as in Class.
type Impl struct {
	TypeName  *Qualified
	TraitName *Qualified // nil for a bare `impl T`
	Methods   []ClassMethod
	Sp        span.Span
}

func (i *Impl) Span() span.Span { return i.Sp }
func (*Impl) topLevel()         {}

// Extern is `extern Ident [-> Type] [: Arg (, Arg)* [, ...]]`.
type Extern struct {
	Decl     FunctionDecl
	Variadic bool
	Sp       span.Span
}

func (e *Extern) Span() span.Span { return e.Sp }
func (*Extern) topLevel()         {}

// ImportPatternKind discriminates an ImportPattern's variant.
type ImportPatternKind uint8

const (
	ImportSingle ImportPatternKind = iota
	ImportGroup
	ImportQualified
)

// ImportPattern is `Ident [as Ident] | { Pattern (, Pattern)* } |
// Ident :: Pattern` (spec.md §4.4).
type ImportPattern struct {
	Kind  ImportPatternKind
	Name  string          // ImportSingle
	Alias string          // ImportSingle, optional
	Group []ImportPattern // ImportGroup
	Qualifier string      // ImportQualified
	Inner *ImportPattern  // ImportQualified
	Sp    span.Span
}

// Import is `import PATTERN from "relative/path"`.
type Import struct {
	Pattern ImportPattern
	Path    string
	Sp      span.Span
}

func (i *Import) Span() span.Span { return i.Sp }
func (*Import) topLevel()         {}

// TemplateScope is a `template< Ident (, Ident)* >` prefix shared between a
// declaration and its body.
type TemplateScope struct {
	Params []string
	Sp     span.Span
}

func (t *TemplateScope) Span() span.Span { return t.Sp }
func (*TemplateScope) topLevel()         {}

// Exported wraps a top-level structure declared with a leading `export`.
type Exported struct {
	Inner TopLevel
	Sp    span.Span
}

func (e *Exported) Span() span.Span { return e.Sp }
func (*Exported) topLevel()         {}
