// Package store implements the compilation store (spec.md §2, §3, §4.10):
// one Module per source file, advancing monotonically through
// Unparsed -> Tokenized -> Asterized -> TypeChecked, with import-driven
// registration of further modules during asterization.
package store

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/zylang/zyc/internal/ast"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/preprocess"
	"github.com/zylang/zyc/internal/source"
	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/token"
)

// State is a Module's position in its lifecycle (spec.md §4.10). States
// only ever advance; re-entering an earlier state is a programming error.
type State uint8

const (
	StateUnparsed State = iota
	StateTokenized
	StateAsterized
	StateTypeChecked
)

// DebugInfo is the (expansion) per-module debug identity: a run-scoped
// UUID stamped once at Load so every structured log line for this
// compilation can be correlated without threading a request id by hand
// (SPEC_FULL.md §3/§4.11), plus the handle of whichever module's import
// first pulled this one in (NoHandle for the entry module).
type DebugInfo struct {
	RunID          uuid.UUID
	LoadedAtHandle span.Handle
}

// Module is one source file tracked by the Store.
type Module struct {
	Handle    span.Handle
	Path      string
	Source    []byte
	DebugInfo DebugInfo
	State     State

	Tokens []token.Token
	AST    *ast.GlobalNamespace
	Domain *ir.Domain

	imports []preprocess.ImportRequest
	exports map[string]bool
}

// Store owns every Module reachable from an entry module, allocating
// handles in load order and resolving import paths against fsys (spec.md
// §4.4's directory/index.zy rule).
type Store struct {
	fsys    fs.FS
	runID   uuid.UUID
	modules []*Module
	byPath  map[string]span.Handle
}

// New returns an empty Store rooted at fsys, stamping every module it
// loads with runID.
func New(fsys fs.FS, runID uuid.UUID) *Store {
	return &Store{fsys: fsys, runID: runID, byPath: map[string]span.Handle{}}
}

// Handles returns every registered module's handle in allocation order,
// satisfying internal/check.Program.
func (s *Store) Handles() []span.Handle {
	hs := make([]span.Handle, len(s.modules))
	for i, m := range s.modules {
		hs[i] = m.Handle
	}
	return hs
}

// Root returns h's semantic domain, or nil before it has been asterized,
// satisfying internal/check.Program.
func (s *Store) Root(h span.Handle) *ir.Domain {
	m := s.Module(h)
	if m == nil {
		return nil
	}
	return m.Domain
}

// Module returns the module registered at h, or nil.
func (s *Store) Module(h span.Handle) *Module {
	for _, m := range s.modules {
		if m.Handle == h {
			return m
		}
	}
	return nil
}

// Load registers filePath (resolved against fsys, with the index.zy
// directory fallback) as a new Module in StateUnparsed, or returns the
// handle already assigned to it if it was loaded before — import cycles
// and diamond imports alike resolve to one Module, not a copy per
// referencing site.
func (s *Store) Load(filePath string, loadedFrom span.Handle) (span.Handle, error) {
	resolved, err := resolveZyPath(s.fsys, filePath)
	if err != nil {
		return span.NoHandle, fmt.Errorf("store: %s: %w", filePath, err)
	}
	if h, ok := s.byPath[resolved]; ok {
		return h, nil
	}
	data, err := fs.ReadFile(s.fsys, resolved)
	if err != nil {
		return span.NoHandle, fmt.Errorf("store: reading %s: %w", resolved, err)
	}
	h := span.Handle(len(s.modules))
	m := &Module{
		Handle: h, Path: resolved, Source: data, State: StateUnparsed,
		DebugInfo: DebugInfo{RunID: s.runID, LoadedAtHandle: loadedFrom},
	}
	s.modules = append(s.modules, m)
	s.byPath[resolved] = h
	return h, nil
}

// resolveZyPath applies spec.md §4.4's import-resolution rule: a path
// naming a directory (or one with no file at all under its literal name)
// falls back to "<path>/index.zy".
func resolveZyPath(fsys fs.FS, p string) (string, error) {
	clean := path.Clean(p)
	if info, err := fs.Stat(fsys, clean); err == nil && !info.IsDir() {
		return clean, nil
	}
	withIndex := path.Join(clean, "index.zy")
	if _, err := fs.Stat(fsys, withIndex); err == nil {
		return withIndex, nil
	}
	return "", fmt.Errorf("no such module %q (nor %q)", clean, withIndex)
}

// Tokenize advances m from Unparsed to Tokenized.
func (s *Store) Tokenize(h span.Handle) error {
	m := s.Module(h)
	toks, err := token.Tokenize(source.New(h, m.Source))
	if err != nil {
		return err
	}
	m.Tokens = toks
	m.State = StateTokenized
	return nil
}

// Parse advances m from Tokenized to Asterized: parses its token stream
// and preprocesses the result straight into the module's own Domain,
// recursively Load-ing (and recursing this same step into) every module
// its `import`s name, per spec.md §4.10's "new modules registered by
// import are processed before the pipeline advances to the checker
// sweep".
func (s *Store) Parse(h span.Handle) error {
	m := s.Module(h)
	p := ast.NewParser(h, m.Tokens)
	ns, err := p.ParseModule()
	if err != nil {
		return err
	}
	m.AST = ns
	m.Domain = ir.NewDomain(h, moduleDomainName(m.Path), nil)

	res, err := preprocess.Preprocess(h, ns, m.Domain)
	if err != nil {
		return err
	}
	m.exports = res.Exports
	m.imports = res.Imports
	m.State = StateAsterized

	for _, req := range m.imports {
		importedH, err := s.Load(resolveImportPath(m.Path, req.Path), h)
		if err != nil {
			return err
		}
		if imported := s.Module(importedH); imported.State == StateUnparsed {
			if err := s.Tokenize(importedH); err != nil {
				return err
			}
			if err := s.Parse(importedH); err != nil {
				return err
			}
		}
		if err := injectImport(m.Domain, s.Module(importedH), req); err != nil {
			return err
		}
	}
	return nil
}

// resolveImportPath joins a relative import path against the importing
// module's own directory, matching a shell's `from "./b.zy"` convention.
func resolveImportPath(fromModulePath, importPath string) string {
	if path.IsAbs(importPath) {
		return importPath
	}
	return path.Join(path.Dir(fromModulePath), importPath)
}

func moduleDomainName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// LoadAll runs Load+Tokenize+Parse to a fixed point over entryPath and
// everything it transitively imports.
func (s *Store) LoadAll(entryPath string) (span.Handle, error) {
	h, err := s.Load(entryPath, span.NoHandle)
	if err != nil {
		return span.NoHandle, err
	}
	if err := s.Tokenize(h); err != nil {
		return h, err
	}
	if err := s.Parse(h); err != nil {
		return h, err
	}
	return h, nil
}
