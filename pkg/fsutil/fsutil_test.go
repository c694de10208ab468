package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("manifest"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "scripts", "run.sh"), []byte("#!/bin/sh\n"), 0o755))

	dst := filepath.Join(t.TempDir(), "dest")
	require.NoError(t, CopyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "manifest", string(data))

	info, err := os.Stat(filepath.Join(dst, "scripts", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyTreeMissingSource(t *testing.T) {
	err := CopyTree(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.Error(t, err)
}

func TestListTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "z.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b", "nested", "deep.txt"), nil, 0o644))

	files, err := ListTree(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b/nested/deep.txt", "z.txt"}, files)
}

func TestListTreeMissingRoot(t *testing.T) {
	files, err := ListTree(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMatchAny(t *testing.T) {
	patterns := []string{".*", "**/.*", "**/__pycache__/**", "*.pyc"}

	assert.True(t, MatchAny(patterns, ".DS_Store"))
	assert.True(t, MatchAny(patterns, "scripts/.hidden"))
	assert.True(t, MatchAny(patterns, "scripts/__pycache__/mod.pyc"))
	assert.True(t, MatchAny(patterns, "compiled.pyc"))
	assert.False(t, MatchAny(patterns, "SKILL.md"))
	assert.False(t, MatchAny(patterns, "resources/data.json"))
	assert.False(t, MatchAny(nil, "anything"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorKind(""), Classify(nil))
	assert.Equal(t, KindPermission, Classify(fs.ErrPermission))
	assert.Equal(t, KindPermission, Classify(&os.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}))
	assert.Equal(t, KindDiskFull, Classify(&os.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC}))
	assert.Equal(t, KindPathTooLong, Classify(&os.PathError{Op: "open", Path: "/x", Err: syscall.ENAMETOOLONG}))
	assert.Equal(t, KindOther, Classify(errors.New("something else")))
}
