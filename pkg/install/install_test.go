package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilldeck/skilldeck/pkg/fsutil"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

func makeBundle(t *testing.T, root, name string) skills.Summary {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))

	manifest := "---\nname: " + name + "\ndescription: Test bundle\n---\n# " + name + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, skills.EntryFileName), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resources", "data.txt"), []byte("resource data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "page.tmpl"), []byte("template"), 0o644))

	sum, err := skills.NewScanner(root).ScanOne(context.Background(), name)
	require.NoError(t, err)
	require.Equal(t, skills.StatusValid, sum.Status)
	return sum
}

func treeContents(t *testing.T, root string) map[string]string {
	t.Helper()

	files, err := fsutil.ListTree(root)
	require.NoError(t, err)

	contents := make(map[string]string, len(files))
	for _, relPath := range files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
		require.NoError(t, err)
		contents[relPath] = string(data)
	}
	return contents
}

func TestInstallSuccess(t *testing.T) {
	sum := makeBundle(t, t.TempDir(), "test-skill")
	target := CustomTarget(filepath.Join(t.TempDir(), "skills"))

	outcome := Install(context.Background(), sum, target, false)
	require.NoError(t, outcome.Err)
	assert.Equal(t, Installed, outcome.Code)
	assert.Equal(t, filepath.Join(target.Root, "test-skill"), outcome.Path)

	// Destination mirrors the source exactly.
	assert.Equal(t, treeContents(t, sum.Path), treeContents(t, outcome.Path))

	// No staging leftovers beside the install.
	entries, err := os.ReadDir(target.Root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "test-skill", entries[0].Name())
}

func TestInstallConflict(t *testing.T) {
	sum := makeBundle(t, t.TempDir(), "test-skill")
	target := CustomTarget(filepath.Join(t.TempDir(), "skills"))

	outcome := Install(context.Background(), sum, target, false)
	require.Equal(t, Installed, outcome.Code)

	before := treeContents(t, outcome.Path)

	// Change the source so we can prove the conflict wrote nothing.
	require.NoError(t, os.WriteFile(filepath.Join(sum.Path, "resources", "data.txt"), []byte("changed"), 0o644))

	second := Install(context.Background(), sum, target, false)
	assert.Equal(t, Conflict, second.Code)
	assert.Equal(t, outcome.Path, second.Path)
	assert.NoError(t, second.Err)

	assert.Equal(t, before, treeContents(t, outcome.Path))
}

func TestInstallOverwriteReplacesFully(t *testing.T) {
	sum := makeBundle(t, t.TempDir(), "test-skill")
	target := CustomTarget(filepath.Join(t.TempDir(), "skills"))

	require.Equal(t, Installed, Install(context.Background(), sum, target, false).Code)

	// Plant a file the source does not have; replacement must drop it.
	dest := filepath.Join(target.Root, "test-skill")
	require.NoError(t, os.WriteFile(filepath.Join(dest, "leftover.txt"), []byte("stale"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sum.Path, "resources", "data.txt"), []byte("v2"), 0o644))

	outcome := Install(context.Background(), sum, target, true)
	require.NoError(t, outcome.Err)
	assert.Equal(t, Installed, outcome.Code)

	got := treeContents(t, dest)
	assert.Equal(t, treeContents(t, sum.Path), got)
	assert.NotContains(t, got, "leftover.txt")
	assert.Equal(t, "v2", got["resources/data.txt"])
}

func TestInstallOverwriteIdempotent(t *testing.T) {
	sum := makeBundle(t, t.TempDir(), "test-skill")
	target := CustomTarget(filepath.Join(t.TempDir(), "skills"))

	first := Install(context.Background(), sum, target, true)
	require.Equal(t, Installed, first.Code)
	second := Install(context.Background(), sum, target, true)
	require.Equal(t, Installed, second.Code)

	assert.Equal(t, treeContents(t, sum.Path), treeContents(t, second.Path))
}

func TestInstallRejectsNonValidBundles(t *testing.T) {
	tests := []struct {
		name   string
		status skills.Status
	}{
		{"invalid", skills.StatusInvalid},
		{"missing", skills.StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := CustomTarget(filepath.Join(t.TempDir(), "skills"))
			sum := skills.Summary{ID: "bad-skill", Path: t.TempDir(), Status: tt.status}

			outcome := Install(context.Background(), sum, target, true)
			assert.Equal(t, Failed, outcome.Code)
			assert.Error(t, outcome.Err)

			// Nothing was created under the target root.
			_, err := os.Stat(filepath.Join(target.Root, "bad-skill"))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestInstallCopyFailureLeavesDestinationUntouched(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	srcRoot := t.TempDir()
	sum := makeBundle(t, srcRoot, "test-skill")
	target := CustomTarget(filepath.Join(t.TempDir(), "skills"))

	require.Equal(t, Installed, Install(context.Background(), sum, target, false).Code)
	dest := filepath.Join(target.Root, "test-skill")
	before := treeContents(t, dest)

	// Break the source mid-tree: an unreadable file fails the copy.
	locked := filepath.Join(sum.Path, "resources", "locked.txt")
	require.NoError(t, os.WriteFile(locked, []byte("secret"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	outcome := Install(context.Background(), sum, target, true)
	require.Equal(t, Failed, outcome.Code)
	assert.Equal(t, fsutil.KindPermission, outcome.ErrKind)

	// Previous install intact, staging cleaned up.
	assert.Equal(t, before, treeContents(t, dest))
	entries, err := os.ReadDir(target.Root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestTargets(t *testing.T) {
	project := ProjectTarget()
	assert.Equal(t, ProjectLocal, project.Kind)
	assert.Equal(t, filepath.Join(".", ".claude", "skills"), project.Root)
	assert.Equal(t, "project-local", project.String())

	global, err := GlobalTarget()
	require.NoError(t, err)
	assert.Equal(t, UserGlobal, global.Kind)
	assert.Equal(t, "user-global", global.String())

	custom := CustomTarget("/srv/skills")
	assert.Equal(t, CustomDir, custom.Kind)
	assert.Equal(t, "/srv/skills", custom.String())
}
