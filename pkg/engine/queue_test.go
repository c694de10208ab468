package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilldeck/skilldeck/pkg/install"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

func nextResult(t *testing.T, q *Queue) Result {
	t.Helper()

	select {
	case res, ok := <-q.Results():
		require.True(t, ok, "results channel closed unexpectedly")
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for queue result")
		return Result{}
	}
}

func TestQueueDiscover(t *testing.T) {
	eng, err := New(makeRepo(t, "alpha-skill"))
	require.NoError(t, err)

	q := NewQueue(eng, 1)
	defer q.Close()

	id := q.SubmitDiscover(context.Background())
	res := nextResult(t, q)

	assert.Equal(t, id, res.ID)
	assert.Equal(t, OpDiscover, res.Kind)
	require.NoError(t, res.Err)
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "alpha-skill", res.Summaries[0].ID)
}

func TestQueueInstallAndPackage(t *testing.T) {
	eng, err := New(makeRepo(t, "alpha-skill"))
	require.NoError(t, err)

	q := NewQueue(eng, 1)
	defer q.Close()

	target := install.CustomTarget(filepath.Join(t.TempDir(), "skills"))
	installID := q.SubmitInstall(context.Background(), "alpha-skill", target, false)

	res := nextResult(t, q)
	assert.Equal(t, installID, res.ID)
	assert.Equal(t, OpInstall, res.Kind)
	assert.Equal(t, "alpha-skill", res.BundleID)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, install.Installed, res.Outcome.Code)

	output := filepath.Join(t.TempDir(), "alpha.zip")
	packageID := q.SubmitPackage(context.Background(), "alpha-skill", output)

	res = nextResult(t, q)
	assert.Equal(t, packageID, res.ID)
	assert.Equal(t, OpPackage, res.Kind)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Archive)
	assert.Equal(t, output, res.Archive.Path)

	_, err = os.Stat(output)
	assert.NoError(t, err)
}

func TestQueueOrderPreserved(t *testing.T) {
	eng, err := New(makeRepo(t, "alpha-skill", "beta-skill"))
	require.NoError(t, err)

	q := NewQueue(eng, 1)
	defer q.Close()

	first := q.SubmitDiscover(context.Background())
	second := q.SubmitDiscover(context.Background())

	assert.Equal(t, first, nextResult(t, q).ID)
	assert.Equal(t, second, nextResult(t, q).ID)
}

func TestQueueCancelPending(t *testing.T) {
	eng, err := New(makeRepo(t, "alpha-skill"))
	require.NoError(t, err)

	q := NewQueue(eng, 1)

	// Park the single worker on a held destination lock so further
	// submissions stay pending.
	dest := filepath.Join(t.TempDir(), "skills")
	key := destKey(filepath.Join(dest, "alpha-skill"))
	q.mu.Lock()
	gate := q.lockFor(key)
	q.mu.Unlock()
	gate.Lock()

	blocked := q.SubmitInstall(context.Background(), "alpha-skill", install.CustomTarget(dest), false)

	// Give the worker time to dequeue the blocked job.
	time.Sleep(50 * time.Millisecond)

	pending := q.SubmitDiscover(context.Background())
	assert.True(t, q.Cancel(pending), "a queued operation should be cancellable")
	assert.False(t, q.Cancel(pending), "cancelling twice is a no-op")
	assert.False(t, q.Cancel(uuid.New()), "unknown ids are not cancellable")

	gate.Unlock()

	res := nextResult(t, q)
	assert.Equal(t, blocked, res.ID)

	// The cancelled operation produces no result: closing drains the
	// queue and the channel ends after the in-flight result.
	q.Close()
	for res := range q.Results() {
		assert.NotEqual(t, pending, res.ID)
	}
}

func TestQueueCancelStartedOperationFails(t *testing.T) {
	eng, err := New(makeRepo(t, "alpha-skill"))
	require.NoError(t, err)

	q := NewQueue(eng, 1)
	defer q.Close()

	id := q.SubmitDiscover(context.Background())
	res := nextResult(t, q)
	require.Equal(t, id, res.ID)

	// Completed operations are no longer pending.
	assert.False(t, q.Cancel(id))
}

func TestQueueSameDestinationSerialized(t *testing.T) {
	eng, err := New(makeRepo(t, "alpha-skill"))
	require.NoError(t, err)

	// Multiple workers; the per-destination lock still forces same-dest
	// installs to run one at a time, so both complete cleanly.
	q := NewQueue(eng, 4)
	defer q.Close()

	dest := install.CustomTarget(filepath.Join(t.TempDir(), "skills"))
	q.SubmitInstall(context.Background(), "alpha-skill", dest, true)
	q.SubmitInstall(context.Background(), "alpha-skill", dest, true)

	for i := 0; i < 2; i++ {
		res := nextResult(t, q)
		require.NotNil(t, res.Outcome)
		assert.Equal(t, install.Installed, res.Outcome.Code)
	}

	sum, err := skills.NewScanner(eng.Root()).ScanOne(context.Background(), "alpha-skill")
	require.NoError(t, err)
	assert.Equal(t, skills.StatusValid, sum.Status)
}
