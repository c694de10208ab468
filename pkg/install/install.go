// Package install copies validated skill bundles into a target directory.
// Installs are transactional: the bundle tree is first copied to a hidden
// temporary sibling inside the target root, then swapped into place, so a
// partially written destination is never observable and a failure leaves
// any pre-existing install untouched.
package install

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skilldeck/skilldeck/pkg/fsutil"
	"github.com/skilldeck/skilldeck/pkg/logger"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

// TargetKind identifies one of the supported install destinations.
type TargetKind int

const (
	// ProjectLocal installs under ./.claude/skills of the working directory.
	ProjectLocal TargetKind = iota
	// UserGlobal installs under ~/.claude/skills.
	UserGlobal
	// CustomDir installs under an arbitrary caller-chosen root.
	CustomDir
)

// Target is a destination root under which the bundle subdirectory is
// created.
type Target struct {
	Kind TargetKind
	Root string
}

// ProjectTarget returns the repo-local install target.
func ProjectTarget() Target {
	return Target{Kind: ProjectLocal, Root: filepath.Join(".", ".claude", "skills")}
}

// GlobalTarget returns the user-global install target.
func GlobalTarget() (Target, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Target{}, errors.Wrap(err, "failed to get user home directory")
	}
	return Target{Kind: UserGlobal, Root: filepath.Join(homeDir, ".claude", "skills")}, nil
}

// CustomTarget returns a target rooted at an arbitrary directory.
func CustomTarget(root string) Target {
	return Target{Kind: CustomDir, Root: root}
}

func (t Target) String() string {
	switch t.Kind {
	case ProjectLocal:
		return "project-local"
	case UserGlobal:
		return "user-global"
	default:
		return t.Root
	}
}

// OutcomeCode is the result category of an install attempt.
type OutcomeCode int

const (
	// Installed means the destination now mirrors the source tree.
	Installed OutcomeCode = iota
	// Conflict means the destination exists and overwrite was not requested;
	// nothing was written.
	Conflict
	// Failed means the operation aborted; the destination is unchanged.
	Failed
)

// Outcome reports the result of an install attempt. Path is the
// destination directory for Installed and Conflict outcomes. ErrKind
// classifies Err for Failed outcomes.
type Outcome struct {
	Code    OutcomeCode
	Path    string
	Err     error
	ErrKind fsutil.ErrorKind
}

func failed(err error) Outcome {
	return Outcome{Code: Failed, Err: err, ErrKind: fsutil.Classify(errors.Cause(err))}
}

// Install copies the bundle's full tree to target.Root/<bundle id>. Only
// Valid bundles are installed; anything else fails without touching the
// filesystem. An existing destination returns Conflict unless overwrite
// is set, in which case it is atomically replaced.
func Install(ctx context.Context, sum skills.Summary, target Target, overwrite bool) Outcome {
	log := logger.G(ctx).WithField("bundle", sum.ID).WithField("target", target.String())

	if sum.Status != skills.StatusValid {
		return failed(errors.Errorf("bundle %q is not installable: status is %s", sum.ID, sum.Status))
	}

	if err := os.MkdirAll(target.Root, 0o755); err != nil {
		return failed(errors.Wrap(err, "failed to create target root"))
	}

	dest := filepath.Join(target.Root, sum.ID)
	if _, err := os.Lstat(dest); err == nil {
		if !overwrite {
			log.Debug("destination exists, reporting conflict")
			return Outcome{Code: Conflict, Path: dest}
		}
	} else if !os.IsNotExist(err) {
		return failed(errors.Wrap(err, "failed to stat destination"))
	}

	// Copy into a temporary sibling first so the real destination is only
	// ever touched by renames.
	tmpDir, err := os.MkdirTemp(target.Root, "."+sum.ID+".tmp-")
	if err != nil {
		return failed(errors.Wrap(err, "failed to create staging directory"))
	}

	if err := fsutil.CopyTree(sum.Path, tmpDir); err != nil {
		err = errors.Wrap(err, "failed to copy bundle")
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			err = multierror.Append(err, errors.Wrap(rmErr, "failed to remove staging directory"))
		}
		return failed(err)
	}

	old, err := swapIn(tmpDir, dest)
	if err != nil {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			err = multierror.Append(err, errors.Wrap(rmErr, "failed to remove staging directory"))
		}
		return failed(err)
	}
	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			// New tree is already in place; the leftover is a hidden
			// directory, not a correctness problem.
			log.WithError(err).Warn("failed to remove previous install")
		}
	}

	log.WithField("dest", dest).Info("bundle installed")
	return Outcome{Code: Installed, Path: dest}
}

// swapIn replaces dest with the fully populated tmpDir. A pre-existing
// dest is moved aside before the rename and restored if the rename fails,
// so dest always holds either the old tree or the new one. It returns the
// aside path for the caller to remove once the swap has succeeded.
func swapIn(tmpDir, dest string) (string, error) {
	old := tmpDir + ".old"

	if _, err := os.Lstat(dest); err == nil {
		if err := os.Rename(dest, old); err != nil {
			return "", errors.Wrap(err, "failed to move existing install aside")
		}
	} else if !os.IsNotExist(err) {
		return "", errors.Wrap(err, "failed to stat destination")
	} else {
		old = ""
	}

	if err := os.Rename(tmpDir, dest); err != nil {
		err = errors.Wrap(err, "failed to move bundle into place")
		if old != "" {
			if restoreErr := os.Rename(old, dest); restoreErr != nil {
				err = multierror.Append(err, errors.Wrap(restoreErr, "failed to restore previous install"))
			}
		}
		return "", err
	}

	return old, nil
}
