package ir

import "github.com/zylang/zyc/internal/span"

// ModuleEntry is what Program stores per handle (spec.md §3).
type ModuleEntry struct {
	Domain   *Domain
	Path     string
	DebugInfo any
}

// Program is the handle-indexed universe of every module reached so far.
// Invariant: every handle present as a dependency of any module is also
// present here (enforced by store, which is the sole writer).
type Program struct {
	Modules map[span.Handle]*ModuleEntry
}

// NewProgram returns an empty Program.
func NewProgram() *Program {
	return &Program{Modules: map[span.Handle]*ModuleEntry{}}
}

// Get returns the entry for h, or nil if h has not been registered yet.
func (p *Program) Get(h span.Handle) *ModuleEntry {
	return p.Modules[h]
}

// Set registers or replaces the entry for h.
func (p *Program) Set(h span.Handle, e *ModuleEntry) {
	p.Modules[h] = e
}
