// Package driver orchestrates the front-end pipeline — tokenize, parse
// (which transitively loads every import), then sweep the checker to a
// fixed point — on top of internal/store, logging one structured record
// per stage transition (SPEC_FULL.md §7). It is the only layer besides
// cmd/zyc allowed to import log/slog: tokenizer, parser, ir and check stay
// usable as libraries with no logging side effects.
package driver

import (
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zylang/zyc/internal/check"
	"github.com/zylang/zyc/internal/diag"
	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/store"
)

// Driver runs the pipeline and logs its progress.
type Driver struct {
	logger *slog.Logger
}

// New returns a Driver that logs to logger, or slog.Default() if nil.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{logger: logger}
}

// Compile loads entryPath out of fsys, resolves every module it
// transitively imports, and type-checks the whole set to a fixed point.
// It returns the Store (so the caller can inspect any module's AST/IR
// for `zyc dump`) and the entry module's handle even on error, since a
// partially-built Store is still useful for debugging.
func (d *Driver) Compile(fsys fs.FS, entryPath string) (*store.Store, span.Handle, error) {
	runID := uuid.New()
	s := store.New(fsys, runID)
	log := d.logger.With("run_id", runID.String())

	h, err := s.Load(entryPath, span.NoHandle)
	if err != nil {
		return s, span.NoHandle, diag.From(err, diag.StageArgument)
	}

	if err := d.stage(log, "tokenize", h, func() error { return s.Tokenize(h) }); err != nil {
		return s, h, diag.From(err, diag.StageTokenize)
	}
	if err := d.stage(log, "parse", h, func() error { return s.Parse(h) }); err != nil {
		return s, h, diag.From(err, diag.StageParse)
	}

	var checkErr error
	if err := d.stage(log, "type-check", h, func() error {
		checkErr = check.New(s).Run()
		return checkErr
	}); err != nil {
		log.Error("diagnostic", "stage", "type-check", "error", err)
		return s, h, diag.From(err, diag.StageTypeCheck)
	}
	return s, h, nil
}

// stage times fn, logging one Debug record for the attempt and its
// duration regardless of outcome.
func (d *Driver) stage(log *slog.Logger, name string, h span.Handle, fn func() error) error {
	start := time.Now()
	err := fn()
	log.Debug("stage", "stage", name, "handle", fmt.Sprint(h), "duration", time.Since(start))
	return err
}
