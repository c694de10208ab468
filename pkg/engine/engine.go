// Package engine coordinates discovery, install, and package operations
// over a skill repository. The Engine itself is a set of plain blocking
// functions, directly callable from CLI commands and tests; Queue wraps
// it for callers (the TUI) that must keep their event loop responsive
// while filesystem work runs in the background.
package engine

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/skilldeck/skilldeck/pkg/archive"
	"github.com/skilldeck/skilldeck/pkg/install"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

// Engine exposes the engine operations against a single repository root.
type Engine struct {
	scanner *skills.Scanner
	ignore  []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithIgnoreGlobs sets the glob patterns excluded from archives, replacing
// archive.DefaultIgnore.
func WithIgnoreGlobs(globs ...string) Option {
	return func(e *Engine) {
		e.ignore = globs
	}
}

// New creates an engine for the given repository root. The root must
// exist and be a directory; this is the only startup-fatal condition in
// the tool.
func New(root string, opts ...Option) (*Engine, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "repository root %s does not exist", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("repository root %s is not a directory", root)
	}

	e := &Engine{
		scanner: skills.NewScanner(root),
		ignore:  archive.DefaultIgnore,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root returns the repository root.
func (e *Engine) Root() string {
	return e.scanner.Root()
}

// Discover re-scans the repository and returns fresh summaries for every
// bundle directory, valid or not, in lexicographic id order.
func (e *Engine) Discover(ctx context.Context) ([]skills.Summary, error) {
	return e.scanner.Scan(ctx)
}

// Resolve produces a fresh summary for one bundle id. Operations go
// through this instead of trusting summaries from an earlier scan, since
// the filesystem may have changed in between.
func (e *Engine) Resolve(ctx context.Context, id string) (skills.Summary, error) {
	return e.scanner.ScanOne(ctx, id)
}

// Install re-validates the bundle and copies it under the target root.
func (e *Engine) Install(ctx context.Context, id string, target install.Target, overwrite bool) install.Outcome {
	sum, err := e.Resolve(ctx, id)
	if err != nil {
		return install.Outcome{Code: install.Failed, Err: err}
	}
	return install.Install(ctx, sum, target, overwrite)
}

// Package re-validates the bundle and writes it as a zip archive. An
// empty outputPath defaults to <id>.zip in the working directory.
func (e *Engine) Package(ctx context.Context, id, outputPath string) (archive.Result, error) {
	sum, err := e.Resolve(ctx, id)
	if err != nil {
		return archive.Result{}, err
	}
	if outputPath == "" {
		outputPath = sum.ID + ".zip"
	}
	return archive.Package(ctx, sum, outputPath, e.ignore)
}

// InstallDestination reports where an install of the given bundle id
// would land, without touching the filesystem.
func (e *Engine) InstallDestination(id string, target install.Target) string {
	return filepath.Join(target.Root, id)
}
