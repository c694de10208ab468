package engine

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/skilldeck/skilldeck/pkg/archive"
	"github.com/skilldeck/skilldeck/pkg/install"
	"github.com/skilldeck/skilldeck/pkg/logger"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

// OpKind names the operation an async Result belongs to.
type OpKind string

const (
	OpDiscover OpKind = "discover"
	OpInstall  OpKind = "install"
	OpPackage  OpKind = "package"
)

// Result is the completion report of a queued operation, correlated to
// its submission by ID. Exactly one of Summaries, Outcome, or Archive is
// populated, according to Kind.
type Result struct {
	ID        uuid.UUID
	Kind      OpKind
	BundleID  string
	Summaries []skills.Summary
	Outcome   *install.Outcome
	Archive   *archive.Result
	Err       error
}

type job struct {
	id   uuid.UUID
	dest string // serialization key; empty for discovery
	run  func() Result
}

// Queue dispatches engine operations to a bounded worker pool and
// delivers results on a channel the caller's event loop can poll. One
// worker is the default and is sufficient for correctness; operations
// that write to the same destination are additionally serialized by a
// per-destination lock so widening the pool stays safe.
type Queue struct {
	engine  *Engine
	jobs    chan job
	results chan Result
	wg      sync.WaitGroup

	mu        sync.Mutex
	pending   map[uuid.UUID]bool
	cancelled map[uuid.UUID]bool
	destLocks map[string]*sync.Mutex

	closeOnce sync.Once
}

// NewQueue starts workers draining the queue. workers below 1 is treated
// as 1.
func NewQueue(e *Engine, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}

	q := &Queue{
		engine:    e,
		jobs:      make(chan job, 64),
		results:   make(chan Result, 64),
		pending:   make(map[uuid.UUID]bool),
		cancelled: make(map[uuid.UUID]bool),
		destLocks: make(map[string]*sync.Mutex),
	}

	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.work()
	}
	return q
}

// Results is the completion channel. Every submitted operation that is
// not cancelled before starting produces exactly one Result here.
func (q *Queue) Results() <-chan Result {
	return q.results
}

// SubmitDiscover queues a repository re-scan.
func (q *Queue) SubmitDiscover(ctx context.Context) uuid.UUID {
	id := uuid.New()
	q.enqueue(job{id: id, run: func() Result {
		summaries, err := q.engine.Discover(ctx)
		return Result{ID: id, Kind: OpDiscover, Summaries: summaries, Err: err}
	}})
	return id
}

// SubmitInstall queues an install of the named bundle.
func (q *Queue) SubmitInstall(ctx context.Context, bundleID string, target install.Target, overwrite bool) uuid.UUID {
	id := uuid.New()
	dest := q.engine.InstallDestination(bundleID, target)
	q.enqueue(job{id: id, dest: destKey(dest), run: func() Result {
		outcome := q.engine.Install(ctx, bundleID, target, overwrite)
		return Result{ID: id, Kind: OpInstall, BundleID: bundleID, Outcome: &outcome, Err: outcome.Err}
	}})
	return id
}

// SubmitPackage queues packaging of the named bundle.
func (q *Queue) SubmitPackage(ctx context.Context, bundleID, outputPath string) uuid.UUID {
	id := uuid.New()
	q.enqueue(job{id: id, dest: destKey(outputPath), run: func() Result {
		res, err := q.engine.Package(ctx, bundleID, outputPath)
		result := Result{ID: id, Kind: OpPackage, BundleID: bundleID, Err: err}
		if err == nil {
			result.Archive = &res
		}
		return result
	}})
	return id
}

// Cancel drops a queued operation that has not started yet and reports
// whether it did so. An in-flight operation runs to completion: cutting a
// copy or zip off mid-write would reintroduce the partial-write risk the
// staging design removes.
func (q *Queue) Cancel(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.pending[id] {
		return false
	}
	q.cancelled[id] = true
	delete(q.pending, id)
	return true
}

// Close stops accepting submissions, waits for in-flight work, then
// closes the results channel.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
		q.wg.Wait()
		close(q.results)
	})
}

func (q *Queue) enqueue(j job) {
	q.mu.Lock()
	q.pending[j.id] = true
	q.mu.Unlock()
	q.jobs <- j
}

func (q *Queue) work() {
	defer q.wg.Done()

	for j := range q.jobs {
		q.mu.Lock()
		if q.cancelled[j.id] {
			delete(q.cancelled, j.id)
			q.mu.Unlock()
			logger.L.WithField("op", j.id).Debug("dropping cancelled operation")
			continue
		}
		delete(q.pending, j.id)
		lock := q.lockFor(j.dest)
		q.mu.Unlock()

		if lock != nil {
			lock.Lock()
		}
		result := j.run()
		if lock != nil {
			lock.Unlock()
		}

		q.results <- result
	}
}

// lockFor returns the serialization lock for a destination, creating it
// on first use. Caller holds q.mu.
func (q *Queue) lockFor(dest string) *sync.Mutex {
	if dest == "" {
		return nil
	}
	lock, ok := q.destLocks[dest]
	if !ok {
		lock = &sync.Mutex{}
		q.destLocks[dest] = lock
	}
	return lock
}

func destKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
