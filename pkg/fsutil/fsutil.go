// Package fsutil provides the filesystem helpers shared by the installer
// and packager: recursive tree copy, relative-path tree listing, ignore
// glob matching, and classification of OS-level failures into the small
// set of kinds surfaced to users.
package fsutil

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ErrorKind is the user-facing category of an OS-level failure.
type ErrorKind string

const (
	KindPermission  ErrorKind = "permission-denied"
	KindDiskFull    ErrorKind = "disk-full"
	KindPathTooLong ErrorKind = "path-too-long"
	KindOther       ErrorKind = "other"
)

// Classify maps an error to its ErrorKind. Returns an empty kind for nil.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, fs.ErrPermission) {
		return KindPermission
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC:
			return KindDiskFull
		case syscall.ENAMETOOLONG:
			return KindPathTooLong
		}
	}
	return KindOther
}

// CopyTree copies the directory tree rooted at src into dst, preserving
// file modes. dst may already exist (the installer copies into a fresh
// temp directory it created itself).
func CopyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			if err := os.MkdirAll(destPath, info.Mode()); err != nil {
				return err
			}
			// MkdirAll applies the umask; restore the source permissions.
			return os.Chmod(destPath, info.Mode().Perm())
		}

		return copyFile(path, destPath)
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// ListTree returns the relative (forward-slash) paths of every regular
// file beneath root, sorted lexicographically. A nonexistent root yields
// an empty list, not an error.
func ListTree(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", root)
	}

	sort.Strings(files)
	return files, nil
}

// MatchAny reports whether the relative forward-slash path matches any of
// the doublestar glob patterns. Unparseable patterns never match.
func MatchAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
