// Package preprocess walks a module's AST into the semantic IR the
// checker resolves to fixed point (spec.md §4.6).
package preprocess

import (
	"fmt"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/span"
)

// CollisionError reports a duplicate name declared twice in one domain.
type CollisionError struct {
	Name string
	Sp   span.Span
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("duplicate name %q at %s", e.Name, e.Sp)
}
func (e *CollisionError) GetSpan() span.Span { return e.Sp }

// ImportRequest is one `import ... from "..."` the preprocessor found;
// resolving the path and injecting names is the store's job (spec.md
// §4.4's Import production, funneled through the central store per
// spec.md §9's design note on import recursion).
type ImportRequest struct {
	Pattern ast.ImportPattern
	Path    string
	Sp      span.Span
}

// Result is everything the store needs after preprocessing one module.
type Result struct {
	Exports map[string]bool
	Imports []ImportRequest
}

// Preprocess converts ns into domain's members, returning the exports and
// import requests the store must act on.
func Preprocess(h span.Handle, ns *ast.GlobalNamespace, domain *ir.Domain) (*Result, error) {
	p := &preprocessor{h: h, result: &Result{Exports: map[string]bool{}}}
	if err := p.namespaceBody(ns.Children, domain); err != nil {
		return nil, err
	}
	return p.result, nil
}

type preprocessor struct {
	h      span.Handle
	result *Result
}

func (p *preprocessor) namespaceBody(children []ast.TopLevel, domain *ir.Domain) error {
	var pendingTemplate *ir.VariableScope
	for _, child := range children {
		exported := false
		node := child
		if exp, ok := node.(*ast.Exported); ok {
			exported = true
			node = exp.Inner
		}

		if ts, ok := node.(*ast.TemplateScope); ok {
			pendingTemplate = templateScopeToVars(ts)
			continue
		}

		// An Import never becomes a DomainMember itself (the store injects
		// the names it binds directly), so `export` on one only has
		// anything to mark: the local names the pattern binds, letting a
		// module re-export a name it merely imported (SPEC_FULL.md §8
		// scenario 7).
		if imp, ok := node.(*ast.Import); ok && exported {
			for _, n := range importPatternNames(imp.Pattern) {
				p.result.Exports[n] = true
			}
		}

		name, member, err := p.topLevelMember(node, domain)
		if err != nil {
			return err
		}
		if member == nil {
			continue
		}
		if pendingTemplate != nil {
			member.TemplateScope = pendingTemplate
			pendingTemplate = nil
		}
		if name != "" {
			if !domain.Declare(name, member) {
				return &CollisionError{Name: name, Sp: member.Span}
			}
			if exported {
				p.result.Exports[name] = true
			}
		}
	}
	return nil
}

func templateScopeToVars(ts *ast.TemplateScope) *ir.VariableScope {
	scope := ir.NewVariableScope()
	for _, param := range ts.Params {
		scope.Declare(&ir.Variable{
			Name: param,
			Kind: ir.VarTemplate,
			Ty:   ir.Unknown(ts.Sp),
			Span: ts.Sp,
		})
	}
	return scope
}

// topLevelMember converts one non-Exported, non-TemplateScope top-level
// node. It returns ("", nil, nil) for an Import, which is recorded on the
// side instead of becoming a DomainMember; a Namespace recurses into a new
// sub-Domain and becomes a MemberDomain.
func (p *preprocessor) topLevelMember(node ast.TopLevel, domain *ir.Domain) (string, *ir.DomainMember, error) {
	switch n := node.(type) {
	case *ast.Function:
		fn, err := p.lowerFunction(n, domain, false, nil, false)
		if err != nil {
			return "", nil, err
		}
		return n.Decl.Name, &ir.DomainMember{Kind: ir.MemberFunction, Name: n.Decl.Name, Span: n.Sp, Fn: fn}, nil

	case *ast.Extern:
		fn := &ir.Function{
			Name:     n.Decl.Name,
			Args:     argsToScope(n.Decl.Args, domain, p.h),
			ReturnTy: returnTypeOrVoid(n.Decl.ReturnTy, domain, p.h, n.Sp),
			Variadic: n.Variadic,
			Span:     n.Sp,
		}
		return n.Decl.Name, &ir.DomainMember{Kind: ir.MemberExternFunction, Name: n.Decl.Name, Span: n.Sp, Fn: fn}, nil

	case *ast.TypeAlias:
		ty := convertType(n.Target, domain, p.h)
		return n.Name, &ir.DomainMember{Kind: ir.MemberType, Name: n.Name, Span: n.Sp, Ty: ty}, nil

	case *ast.Struct:
		ty := structType(n, domain, p.h)
		return n.Name, &ir.DomainMember{Kind: ir.MemberStruct, Name: n.Name, Span: n.Sp, Ty: ty}, nil

	case *ast.Class:
		ty := classType(n, domain, p.h)
		sub := ir.NewDomain(p.h, n.Name, domain)
		receiver := &ast.Qualified{Parts: []string{n.Name}, Sp: n.Sp}
		if err := p.declareMethods(n.Methods, sub, domain, receiver); err != nil {
			return "", nil, err
		}
		return n.Name, &ir.DomainMember{Kind: ir.MemberStruct, Name: n.Name, Span: n.Sp, Ty: ty, Sub: sub}, nil

	case *ast.Interface:
		ty := interfaceType(n, domain, p.h)
		return n.Name, &ir.DomainMember{Kind: ir.MemberType, Name: n.Name, Span: n.Sp, Ty: ty}, nil

	case *ast.Impl:
		traitName := ""
		if n.TraitName != nil {
			traitName = lastPart(n.TraitName)
		}
		key := ir.ImplKey(lastPart(n.TypeName), traitName)
		sub := ir.NewDomain(p.h, key, domain)
		if err := p.declareMethods(n.Methods, sub, domain, n.TypeName); err != nil {
			return "", nil, err
		}
		return key, &ir.DomainMember{Kind: ir.MemberDomain, Name: key, Span: n.Sp, Sub: sub}, nil

	case *ast.Namespace:
		sub := ir.NewDomain(p.h, n.Name, domain)
		if err := p.namespaceBody(n.Children, sub); err != nil {
			return "", nil, err
		}
		return n.Name, &ir.DomainMember{Kind: ir.MemberDomain, Name: n.Name, Span: n.Sp, Sub: sub}, nil

	case *ast.Import:
		p.result.Imports = append(p.result.Imports, ImportRequest{Pattern: n.Pattern, Path: n.Path, Sp: n.Sp})
		return "", nil, nil

	default:
		return "", nil, fmt.Errorf("preprocess: unhandled top-level node %T", node)
	}
}

// importPatternNames collects every local name an ImportPattern binds
// (post-alias), recursing through groups and qualified sub-patterns.
func importPatternNames(pat ast.ImportPattern) []string {
	switch pat.Kind {
	case ast.ImportSingle:
		if pat.Alias != "" {
			return []string{pat.Alias}
		}
		return []string{pat.Name}
	case ast.ImportGroup:
		var names []string
		for _, sub := range pat.Group {
			names = append(names, importPatternNames(sub)...)
		}
		return names
	case ast.ImportQualified:
		if pat.Inner == nil {
			return nil
		}
		return importPatternNames(*pat.Inner)
	default:
		return nil
	}
}

// declareMethods lowers one Class/Impl block's methods into sub. receiver
// names the enclosing type (the Class itself, or an Impl's TypeName);
// every non-static method gets an implicit `this: &receiver` argument
// (there is no `this` keyword in the grammar — it is just the one
// argument name declareMethods reserves for the receiver).
func (p *preprocessor) declareMethods(methods []ast.ClassMethod, sub, enclosing *ir.Domain, receiver *ast.Qualified) error {
	for _, m := range methods {
		r := receiver
		if m.Static {
			r = nil
		}
		fn, err := p.lowerFunction(&m.Fn, enclosing, m.Abstract, r, m.Mut)
		if err != nil {
			return err
		}
		member := &ir.DomainMember{Kind: ir.MemberFunction, Name: m.Fn.Decl.Name, Span: m.Sp, Fn: fn}
		if !sub.Declare(m.Fn.Decl.Name, member) {
			return &CollisionError{Name: m.Fn.Decl.Name, Sp: m.Sp}
		}
	}
	return nil
}

func lastPart(q *ast.Qualified) string {
	if len(q.Parts) == 0 {
		return ""
	}
	return q.Parts[len(q.Parts)-1]
}

func argsToScope(args []ast.Arg, domain *ir.Domain, h span.Handle) *ir.VariableScope {
	scope := ir.NewVariableScope()
	for _, a := range args {
		scope.Declare(&ir.Variable{Name: a.Name, Kind: ir.VarArgument, Ty: convertType(a.Ty, domain, h), Span: a.Sp})
	}
	return scope
}

func returnTypeOrVoid(te ast.TypeExpr, domain *ir.Domain, h span.Handle, sp span.Span) *ir.TypeCell {
	if te == nil {
		return ir.Intrinsic(ir.Void, sp)
	}
	return convertType(te, domain, h)
}

// lowerFunction lowers one function/method declaration and body. receiver
// is non-nil only for a Class/Impl method with an implicit this argument
// (mut mirrors ClassMethod.Mut, choosing &mut vs & for its type); top-level
// functions always pass (nil, false), and externs do not come through here.
func (p *preprocessor) lowerFunction(n *ast.Function, domain *ir.Domain, abstract bool, receiver *ast.Qualified, mut bool) (*ir.Function, error) {
	args := argsToScope(n.Decl.Args, domain, p.h)
	if receiver != nil {
		var thisExpr ast.TypeExpr = &ast.ImmutableReferenceTo{Elem: receiver, Sp: n.Sp}
		if mut {
			thisExpr = &ast.MutReferenceTo{Elem: receiver, Sp: n.Sp}
		}
		thisTy := convertType(thisExpr, domain, p.h)
		args.Declare(&ir.Variable{Name: "this", Kind: ir.VarArgument, Ty: thisTy, Span: n.Sp})
	}
	returnTy := returnTypeOrVoid(n.Decl.ReturnTy, domain, p.h, n.Sp)

	fn := &ir.Function{Name: n.Decl.Name, Args: args, ReturnTy: returnTy, Span: n.Sp}
	if abstract || n.Body == nil {
		return fn, nil
	}

	lc := &lowerCtx{h: p.h, domain: domain, returnTo: returnTy}
	lc.pushScope(args)
	body, err := lc.lowerBlock(n.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func structType(n *ast.Struct, domain *ir.Domain, h span.Handle) *ir.TypeCell {
	members := make([]ir.StructMember, len(n.Fields))
	for i, f := range n.Fields {
		members[i] = ir.StructMember{Name: f.Name, Ty: convertType(f.Ty, domain, h)}
	}
	return ir.NewTypeCell(ir.Type{Kind: ir.TypeStruct, StructMembers: members, Span: n.Sp})
}

func classType(n *ast.Class, domain *ir.Domain, h span.Handle) *ir.TypeCell {
	members := make([]ir.StructMember, len(n.Fields))
	for i, f := range n.Fields {
		members[i] = ir.StructMember{Name: f.Name, Ty: convertType(f.Ty, domain, h)}
	}
	return ir.NewTypeCell(ir.Type{Kind: ir.TypeStruct, StructMembers: members, Span: n.Sp})
}

// interfaceType represents an interface as a struct-shaped type whose
// "members" are its method signatures reduced to Function type cells;
// spec.md does not define a dedicated IR shape for Interface, only Struct
// and Function (§3), so this is the narrowest extension of the given
// vocabulary rather than inventing a new Type variant.
func interfaceType(n *ast.Interface, domain *ir.Domain, h span.Handle) *ir.TypeCell {
	members := make([]ir.StructMember, len(n.Methods))
	for i, m := range n.Methods {
		argTys := make([]*ir.TypeCell, len(m.Decl.Args))
		for j, a := range m.Decl.Args {
			argTys[j] = convertType(a.Ty, domain, h)
		}
		retTy := returnTypeOrVoid(m.Decl.ReturnTy, domain, h, m.Sp)
		fnTy := ir.NewTypeCell(ir.Type{Kind: ir.TypeFunction, FuncArgs: argTys, FuncReturn: retTy, Span: m.Sp})
		members[i] = ir.StructMember{Name: m.Decl.Name, Ty: fnTy}
	}
	return ir.NewTypeCell(ir.Type{Kind: ir.TypeStruct, StructMembers: members, Span: n.Sp})
}

// convertType lowers one syntactic TypeExpr to a TypeCell (spec.md §4.6):
// a single-part, non-implied, argument-less Qualified whose name matches
// an intrinsic becomes Intrinsic; everything else becomes Unresolved,
// seeded with a DomainReference anchored at domain for later lookup.
func convertType(te ast.TypeExpr, domain *ir.Domain, h span.Handle) *ir.TypeCell {
	switch t := te.(type) {
	case *ast.Qualified:
		if !t.Implied && len(t.Parts) == 1 && len(t.Args) == 0 {
			if kind, ok := ir.LookupIntrinsic(t.Parts[0]); ok {
				return ir.Intrinsic(kind, t.Sp)
			}
		}
		var template []*ir.TypeCell
		for _, a := range t.Args {
			template = append(template, convertType(a, domain, h))
		}
		ref := ir.DomainReference{Handle: h, Parts: t.Parts, Origin: domain}
		return ir.NewTypeCell(ir.Type{Kind: ir.TypeUnresolved, Implied: t.Implied, Reference: ref, Template: template, Span: t.Sp})

	case *ast.SizedArrayOf:
		elem := convertType(t.Elem, domain, h)
		lc := &lowerCtx{h: h, domain: domain}
		count, err := lc.lowerExpr(t.Count)
		if err != nil {
			// Malformed count expressions surface during checking (the
			// count Value below will carry an Unknown/Invalid literal);
			// preprocessing itself never errors out of type conversion.
			count = ir.Value{Kind: ir.ValueKindLiteral, LitKind: ir.LitInteger, Ty: ir.Unknown(t.Sp)}
		}
		return ir.NewTypeCell(ir.Type{Kind: ir.TypeSizedArrayOf, Count: &count, Elem: elem, Span: t.Sp})

	case *ast.UnsizedArrayOf:
		elem := convertType(t.Elem, domain, h)
		return ir.NewTypeCell(ir.Type{Kind: ir.TypeUnsizedArrayOf, Elem: elem, Span: t.Sp})

	case *ast.ImmutableReferenceTo:
		elem := convertType(t.Elem, domain, h)
		return ir.NewTypeCell(ir.Type{Kind: ir.TypeReferenceTo, Elem: elem, Mut: false, Span: t.Sp})

	case *ast.MutReferenceTo:
		elem := convertType(t.Elem, domain, h)
		return ir.NewTypeCell(ir.Type{Kind: ir.TypeReferenceTo, Elem: elem, Mut: true, Span: t.Sp})

	default:
		return ir.Unknown(span.Span{})
	}
}
