// Package debugdump serializes a compilation stage to msgpack for the
// `zyc dump` debug subcommand (SPEC_FULL.md §4.11), mirroring the way the
// teacher's own YAEGI_AST_DOT/YAEGI_CFG_DOT hooks expose an internal stage
// for offline inspection. The wire shapes here are deliberately flat DTOs,
// not the live token/ast/ir structures themselves: ast nodes carry
// interface-typed children msgpack can't discriminate on its own, and ir
// nodes form a graph (Domain.Parent, DomainReference.Origin) that would
// recurse forever if encoded by pointer identity.
package debugdump

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/token"
)

// Stage names which pipeline artifact Dump serializes.
type Stage string

const (
	StageTokens Stage = "tokens"
	StageAST    Stage = "ast"
	StageIR     Stage = "ir"
)

// TokenDump is one token.Token, flattened to its printable fields.
type TokenDump struct {
	Kind  string `msgpack:"kind"`
	Text  string `msgpack:"text"`
	Start int    `msgpack:"start"`
	End   int    `msgpack:"end"`
}

// Tokens renders toks to msgpack.
func Tokens(toks []token.Token) ([]byte, error) {
	out := make([]TokenDump, len(toks))
	for i, t := range toks {
		out[i] = TokenDump{Kind: t.Kind.String(), Text: t.String(), Start: t.Span.Start, End: t.Span.End}
	}
	return msgpack.Marshal(out)
}

// NodeDump is a generic tree node: every AST or IR shape reduces to a
// labeled node with a text summary and named children, so one wire struct
// serves both stages instead of a parallel struct per AST/IR type. The AST
// dump covers top-level structures only (function bodies and expressions
// are not descended into, and a TemplateScope shows only its Go type
// name); the IR dump covers domain members and function signatures.
type NodeDump struct {
	Kind     string     `msgpack:"kind"`
	Summary  string     `msgpack:"summary,omitempty"`
	Start    int        `msgpack:"start"`
	End      int        `msgpack:"end"`
	Children []NodeDump `msgpack:"children,omitempty"`
}

// AST renders ns to msgpack.
func AST(ns *ast.GlobalNamespace) ([]byte, error) {
	return msgpack.Marshal(dumpGlobalNamespace(ns))
}

func dumpGlobalNamespace(ns *ast.GlobalNamespace) NodeDump {
	n := NodeDump{Kind: "GlobalNamespace"}
	for _, child := range ns.Children {
		n.Children = append(n.Children, dumpTopLevel(child))
	}
	return n
}

func dumpTopLevel(t ast.TopLevel) NodeDump {
	switch v := t.(type) {
	case *ast.Namespace:
		n := NodeDump{Kind: "Namespace", Summary: v.Name, Start: v.Sp.Start, End: v.Sp.End}
		for _, child := range v.Children {
			n.Children = append(n.Children, dumpTopLevel(child))
		}
		return n
	case *ast.Function:
		return NodeDump{Kind: "Function", Summary: v.Decl.Name, Start: v.Sp.Start, End: v.Sp.End}
	case *ast.Extern:
		return NodeDump{Kind: "Extern", Summary: v.Decl.Name, Start: v.Sp.Start, End: v.Sp.End}
	case *ast.Struct:
		return NodeDump{Kind: "Struct", Summary: v.Name, Start: v.Sp.Start, End: v.Sp.End}
	case *ast.Class:
		return NodeDump{Kind: "Class", Summary: v.Name, Start: v.Sp.Start, End: v.Sp.End}
	case *ast.Interface:
		return NodeDump{Kind: "Interface", Summary: v.Name, Start: v.Sp.Start, End: v.Sp.End}
	case *ast.Impl:
		return NodeDump{Kind: "Impl", Summary: qualifiedName(v.TypeName), Start: v.Sp.Start, End: v.Sp.End}
	case *ast.TypeAlias:
		return NodeDump{Kind: "TypeAlias", Summary: v.Name, Start: v.Sp.Start, End: v.Sp.End}
	case *ast.Import:
		return NodeDump{Kind: "Import", Summary: v.Path, Start: v.Sp.Start, End: v.Sp.End}
	case *ast.Exported:
		n := NodeDump{Kind: "Exported", Start: v.Sp.Start, End: v.Sp.End}
		n.Children = append(n.Children, dumpTopLevel(v.Inner))
		return n
	default:
		return NodeDump{Kind: fmt.Sprintf("%T", t)}
	}
}

// IR renders a module's root semantic domain to msgpack.
func IR(domain *ir.Domain) ([]byte, error) {
	return msgpack.Marshal(dumpDomain(domain))
}

func dumpDomain(d *ir.Domain) NodeDump {
	n := NodeDump{Kind: "Domain", Summary: d.Name}
	for _, name := range sortedNames(d) {
		n.Children = append(n.Children, dumpMember(name, d.Members[name]))
	}
	return n
}

func dumpMember(name string, m *ir.DomainMember) NodeDump {
	n := NodeDump{Start: m.Span.Start, End: m.Span.End}
	switch m.Kind {
	case ir.MemberDomain:
		n.Kind = "Domain:" + name
		n.Children = []NodeDump{dumpDomain(m.Sub)}
	case ir.MemberFunction:
		n.Kind = "Function:" + name
		n.Summary = functionSignature(m.Fn)
	case ir.MemberExternFunction:
		n.Kind = "ExternFunction:" + name
		n.Summary = functionSignature(m.Fn)
	case ir.MemberType, ir.MemberStruct:
		n.Kind = "Type:" + name
		n.Summary = typeName(m.Ty.T)
	}
	return n
}

func functionSignature(fn *ir.Function) string {
	sig := fn.Name + "("
	for i, v := range fn.Args.Inner {
		if i > 0 {
			sig += ", "
		}
		sig += v.Name + ": " + typeName(v.Ty.T)
	}
	if fn.Variadic {
		sig += ", ..."
	}
	return sig + ") -> " + typeName(fn.ReturnTy.T)
}

// typeName renders t as a short, one-line signature — purely for the debug
// dump, independent of internal/check's own diagnostic typeName.
func typeName(t ir.Type) string {
	switch t.Kind {
	case ir.TypeIntrinsic:
		return t.Intrinsic.String()
	case ir.TypeUnresolved:
		return "unresolved"
	case ir.TypeUnsizedArrayOf:
		return "&[]" + typeName(t.Elem.T)
	case ir.TypeSizedArrayOf:
		return "[N]" + typeName(t.Elem.T)
	case ir.TypeReferenceTo:
		return "&" + typeName(t.Elem.T)
	case ir.TypeShared:
		return typeName(t.SharedTarget.T)
	case ir.TypeFunction:
		return "fn(...) -> " + typeName(t.FuncReturn.T)
	case ir.TypeStruct:
		return "struct{...}"
	case ir.TypeFuzzyInteger:
		return "{integer}"
	case ir.TypeFuzzyString:
		return "{string}"
	case ir.TypeUnknown:
		return "?"
	default:
		return "?"
	}
}

func qualifiedName(q *ast.Qualified) string {
	name := ""
	if q.Implied {
		name = "::"
	}
	for i, part := range q.Parts {
		if i > 0 {
			name += "::"
		}
		name += part
	}
	return name
}

func sortedNames(d *ir.Domain) []string {
	names := make([]string, 0, len(d.Members))
	for name := range d.Members {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}

// Dump serializes stage to msgpack, dispatching on the pipeline data it's
// given.
func Dump(stage Stage, toks []token.Token, ns *ast.GlobalNamespace, domain *ir.Domain) ([]byte, error) {
	switch stage {
	case StageTokens:
		return Tokens(toks)
	case StageAST:
		return AST(ns)
	case StageIR:
		return IR(domain)
	default:
		return nil, fmt.Errorf("debugdump: unknown stage %q", stage)
	}
}
