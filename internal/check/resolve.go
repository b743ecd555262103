package check

import "github.com/zylang/zyc/internal/ir"

// resolveReference implements resolve_type_reference (spec.md §4.7): an
// implied (leading `::`) reference walks from its owning module's root
// domain; otherwise it walks outward from the domain it was written in
// (ref.Origin), trying each enclosing domain in turn, falling back to the
// module root last. Traversing an import is transparent here because the
// store already injected the imported DomainMember by reference into the
// importing domain — by the time the checker walks it, it is an ordinary
// member, not a special case.
func resolveReference(ref ir.DomainReference, implied bool, prog Program) (*ir.DomainMember, bool) {
	if implied {
		root := prog.Root(ref.Handle)
		if root == nil {
			return nil, false
		}
		return walkPath(root, ref.Parts)
	}
	for d := ref.Origin; d != nil; d = d.Parent {
		if m, ok := walkPath(d, ref.Parts); ok {
			return m, true
		}
	}
	if root := prog.Root(ref.Handle); root != nil {
		if m, ok := walkPath(root, ref.Parts); ok {
			return m, true
		}
	}
	return nil, false
}

// walkPath descends d by each part of parts in turn, requiring every
// non-final part to itself own a sub-Domain (a namespace, class, or impl
// block) to descend into.
func walkPath(d *ir.Domain, parts []string) (*ir.DomainMember, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	cur := d
	var m *ir.DomainMember
	for i, part := range parts {
		mm, ok := cur.Lookup(part)
		if !ok {
			return nil, false
		}
		m = mm
		if i < len(parts)-1 {
			if mm.Sub == nil {
				return nil, false
			}
			cur = mm.Sub
		}
	}
	return m, true
}

// memberAsType reduces a resolved DomainMember to the Type it stands for
// when read from a value/type position: a function becomes its callable
// signature (spec.md §4.6's Function IR shape, carrying Variadic so Call
// arity checking can allow extern varargs through); a Type/Struct member
// is already one. A Domain member (a namespace, class, or impl block) has
// no Type of its own.
func memberAsType(m *ir.DomainMember) (ir.Type, bool) {
	switch m.Kind {
	case ir.MemberFunction, ir.MemberExternFunction:
		args := make([]*ir.TypeCell, len(m.Fn.Args.Inner))
		for i, v := range m.Fn.Args.Inner {
			args[i] = v.Ty
		}
		return ir.Type{
			Kind: ir.TypeFunction, Span: m.Span,
			FuncArgs: args, FuncReturn: m.Fn.ReturnTy, Variadic: m.Fn.Variadic,
		}, true
	case ir.MemberType, ir.MemberStruct:
		return m.Ty.T, true
	default:
		return ir.Type{}, false
	}
}
