package store

import (
	"fmt"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/preprocess"
	"github.com/zylang/zyc/internal/span"
)

// injectImport binds req's pattern against source's domain and declares
// each bound name into dest — "resolving the path and injecting names is
// the store's job" (SPEC_FULL.md §4.11). A name is shared by reference
// (the same *ir.DomainMember, and for functions/types the same TypeCell
// graph underneath it), not copied, so a function's TypeCell identity
// stays one cell across every module that re-exports it (SPEC_FULL.md §8
// scenario 7).
func injectImport(dest *ir.Domain, source *Module, req preprocess.ImportRequest) error {
	return bindPattern(dest, source.Domain, source.exports, req.Pattern, req.Sp)
}

// bindPattern recursively resolves one ImportPattern against fromDomain
// and Declares the resulting name(s) into dest.
//
//   - ImportSingle "foo [as bar]": looks foo up in fromDomain, declares it
//     under bar (or foo).
//   - ImportGroup "{ a, b, ... }": recurses over every sub-pattern.
//   - ImportQualified "ns :: pattern": descends into the nested domain
//     member named ns before recursing into pattern.
func bindPattern(dest, fromDomain *ir.Domain, exports map[string]bool, pat ast.ImportPattern, sp span.Span) error {
	switch pat.Kind {
	case ast.ImportSingle:
		member, ok := fromDomain.Lookup(pat.Name)
		if !ok {
			return fmt.Errorf("store: import: %q not found in %q (%s)", pat.Name, fromDomain.Name, sp)
		}
		if len(exports) > 0 && !exports[pat.Name] {
			return fmt.Errorf("store: import: %q is not exported by %q", pat.Name, fromDomain.Name)
		}
		local := pat.Name
		if pat.Alias != "" {
			local = pat.Alias
		}
		if !dest.Declare(local, member) {
			return fmt.Errorf("store: import: %q collides with an existing member of %q", local, dest.Name)
		}
		return nil

	case ast.ImportGroup:
		for _, sub := range pat.Group {
			if err := bindPattern(dest, fromDomain, exports, sub, sp); err != nil {
				return err
			}
		}
		return nil

	case ast.ImportQualified:
		member, ok := fromDomain.Lookup(pat.Qualifier)
		if !ok || member.Sub == nil {
			return fmt.Errorf("store: import: %q is not a namespace in %q", pat.Qualifier, fromDomain.Name)
		}
		return bindPattern(dest, member.Sub, nil, *pat.Inner, sp)

	default:
		return fmt.Errorf("store: import: unhandled pattern kind %v", pat.Kind)
	}
}
