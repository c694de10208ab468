package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/skilldeck/skilldeck/pkg/fsutil"
	"github.com/skilldeck/skilldeck/pkg/logger"
)

// Subdirectories whose contents are enumerated (paths only) per bundle.
const (
	ResourcesDir = "resources"
	TemplatesDir = "templates"
	ScriptsDir   = "scripts"
)

// Scanner discovers skill bundles under a repository root. Bundles live
// one level deep: every immediate child directory of the root is a
// candidate, nothing is nested further.
type Scanner struct {
	root      string
	entryFile string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithEntryFile overrides the entry file name (default SKILL.md).
func WithEntryFile(name string) Option {
	return func(s *Scanner) {
		s.entryFile = name
	}
}

// NewScanner creates a scanner rooted at the given repository directory.
func NewScanner(root string, opts ...Option) *Scanner {
	s := &Scanner{
		root:      root,
		entryFile: EntryFileName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the repository root the scanner was created with.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the repository root and produces exactly one Summary per
// immediate child directory, ordered lexicographically by directory name.
// A bad bundle never aborts the scan; it surfaces as an Invalid or
// Missing summary among its siblings. Scan only fails when the root
// itself cannot be read.
func (s *Scanner) Scan(ctx context.Context) ([]Summary, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve repository root %s", s.root)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read repository root %s", absRoot)
	}

	// os.ReadDir sorts by name, which gives the stable ordering the UI
	// and tests rely on.
	var summaries []Summary
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dirPath := filepath.Join(absRoot, entry.Name())

		// Stat rather than entry.IsDir so symlinked bundles are followed.
		info, err := os.Stat(dirPath)
		if err != nil || !info.IsDir() {
			continue
		}

		summaries = append(summaries, s.summarize(ctx, dirPath))
	}

	logger.G(ctx).WithField("root", absRoot).WithField("bundles", len(summaries)).Debug("scan complete")
	return summaries, nil
}

// ScanOne produces a fresh Summary for a single bundle id under the root.
// Install and package paths use this to re-validate at the moment of the
// operation instead of trusting a summary from an earlier scan.
func (s *Scanner) ScanOne(ctx context.Context, id string) (Summary, error) {
	if id != filepath.Base(id) || id == "." || id == ".." {
		return Summary{}, errors.Errorf("invalid bundle id %q", id)
	}

	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "failed to resolve repository root %s", s.root)
	}

	dirPath := filepath.Join(absRoot, id)
	info, err := os.Stat(dirPath)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "bundle %q not found under %s", id, absRoot)
	}
	if !info.IsDir() {
		return Summary{}, errors.Errorf("bundle %q is not a directory", id)
	}

	return s.summarize(ctx, dirPath), nil
}

// summarize builds the Summary for one bundle directory. The only file
// read is the entry file; subdirectory contents are enumerated by path.
func (s *Scanner) summarize(ctx context.Context, dirPath string) Summary {
	sum := Summary{
		ID:   filepath.Base(dirPath),
		Path: dirPath,
	}

	raw, err := os.ReadFile(filepath.Join(dirPath, s.entryFile))
	switch {
	case os.IsNotExist(err):
		sum.Status = StatusMissing
	case err != nil:
		sum.Status = StatusInvalid
		sum.Reasons = []string{errors.Wrapf(err, "failed to read %s", s.entryFile).Error()}
	default:
		manifest, parseErr := ParseManifest(raw)
		if reasons := Validate(manifest, parseErr, dirPath); len(reasons) > 0 {
			sum.Status = StatusInvalid
			sum.Reasons = reasons
		} else {
			sum.Status = StatusValid
		}
		sum.Manifest = manifest
	}

	sum.Resources = listSubdir(ctx, dirPath, ResourcesDir)
	sum.Templates = listSubdir(ctx, dirPath, TemplatesDir)
	sum.Scripts = listSubdir(ctx, dirPath, ScriptsDir)

	return sum
}

func listSubdir(ctx context.Context, dirPath, name string) []string {
	files, err := fsutil.ListTree(filepath.Join(dirPath, name))
	if err != nil {
		logger.G(ctx).WithError(err).WithField("dir", filepath.Join(dirPath, name)).Debug("failed to enumerate subdirectory")
		return nil
	}
	return files
}

// Filter returns the subset of summaries whose name or description
// contains the query, case-insensitively. Bundles without a manifest are
// matched on their directory name. An empty query returns the input.
func Filter(summaries []Summary, query string) []Summary {
	if query == "" {
		return summaries
	}

	q := strings.ToLower(query)
	var out []Summary
	for _, sum := range summaries {
		name := sum.ID
		description := ""
		if sum.Manifest != nil {
			name = sum.Manifest.Name
			description = sum.Manifest.Description
		}
		if strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(description), q) {
			out = append(out, sum)
		}
	}
	return out
}
