// Package archive serializes validated skill bundles into zip files for
// portable distribution. Archives are deterministic: entries appear in
// sorted relative-path order with normalized names and a fixed timestamp,
// so packaging an unchanged bundle twice produces byte-identical output.
package archive

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skilldeck/skilldeck/pkg/fsutil"
	"github.com/skilldeck/skilldeck/pkg/logger"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

// DefaultIgnore excludes editor droppings and build artifacts that have
// no place in a distributed skill.
var DefaultIgnore = []string{
	".*",
	"**/.*",
	"__pycache__/**",
	"**/__pycache__/**",
	"*.pyc",
	"**/*.pyc",
}

// Entries get a fixed modification time so archive bytes depend only on
// bundle contents.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Result reports a successfully written archive.
type Result struct {
	Path    string
	Entries int
}

// Package writes the bundle's file tree to a zip archive at outputPath.
// Only Valid bundles are packaged. The archive is staged as a temporary
// file next to outputPath and renamed into place on success; a failure
// never leaves a corrupt archive at the intended path. Files matching an
// ignore glob are skipped.
func Package(ctx context.Context, sum skills.Summary, outputPath string, ignore []string) (Result, error) {
	if sum.Status != skills.StatusValid {
		return Result{}, errors.Errorf("bundle %q is not packageable: status is %s", sum.ID, sum.Status)
	}

	files, err := fsutil.ListTree(sum.Path)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to enumerate bundle files")
	}

	// ListTree returns sorted paths; keep that order for determinism.
	var included []string
	for _, relPath := range files {
		if fsutil.MatchAny(ignore, relPath) {
			continue
		}
		included = append(included, relPath)
	}

	outDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, errors.Wrap(err, "failed to create output directory")
	}

	tmpFile, err := os.CreateTemp(outDir, ".skilldeck-*.zip")
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to create staging file")
	}
	tmpPath := tmpFile.Name()

	if err := writeArchive(tmpFile, sum.Path, included); err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			err = multierror.Append(err, errors.Wrap(rmErr, "failed to remove staging file"))
		}
		return Result{}, err
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		err = errors.Wrap(err, "failed to move archive into place")
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			err = multierror.Append(err, errors.Wrap(rmErr, "failed to remove staging file"))
		}
		return Result{}, err
	}

	logger.G(ctx).WithField("bundle", sum.ID).WithField("archive", outputPath).WithField("entries", len(included)).Info("bundle packaged")
	return Result{Path: outputPath, Entries: len(included)}, nil
}

func writeArchive(f *os.File, bundlePath string, relPaths []string) (err error) {
	zw := zip.NewWriter(f)

	for _, relPath := range relPaths {
		if err := addEntry(zw, bundlePath, relPath); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to finalize archive")
	}
	return errors.Wrap(f.Close(), "failed to flush archive")
}

func addEntry(zw *zip.Writer, bundlePath, relPath string) error {
	srcPath := filepath.Join(bundlePath, filepath.FromSlash(relPath))

	src, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", relPath)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", relPath)
	}

	header := &zip.FileHeader{
		Name:     relPath,
		Method:   zip.Deflate,
		Modified: archiveEpoch,
	}
	header.SetMode(info.Mode().Perm())

	w, err := zw.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, "failed to add %s", relPath)
	}
	if _, err := io.Copy(w, src); err != nil {
		return errors.Wrapf(err, "failed to write %s", relPath)
	}
	return nil
}
