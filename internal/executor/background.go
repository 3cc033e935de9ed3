// Package executor provides the two schedulers of the configuration
// machinery: a background executor that deduplicates and serializes reload
// work per file, and a single-consumer loop with interactive-thread affinity.
package executor

import (
	"sync"

	"go.lsp.dev/uri"

	"scriptconfig/internal/common"
)

type inflightTask struct {
	done chan struct{}
}

// BackgroundExecutor runs reload work off the interactive thread with at most
// one in-flight task per file. A request for a file that already has a task
// in flight coalesces onto it instead of running concurrently; the completed
// load is expected to re-validate staleness itself, so no preemptive
// cancellation is needed.
type BackgroundExecutor struct {
	mu       sync.Mutex
	inflight map[uri.URI]*inflightTask
	wg       sync.WaitGroup
	stopped  bool
	logger   *common.SafeLogger
}

// NewBackgroundExecutor creates an executor ready to accept work.
func NewBackgroundExecutor() *BackgroundExecutor {
	return &BackgroundExecutor{
		inflight: make(map[uri.URI]*inflightTask),
		logger:   common.ScriptLogger,
	}
}

// Schedule runs fn on a worker goroutine keyed by the file. The returned
// channel closes when the task that ends up covering this request finishes.
// If a task for the same file is already in flight, the request joins it and
// fn is not executed a second time.
func (e *BackgroundExecutor) Schedule(u uri.URI, fn func()) <-chan struct{} {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		closed := make(chan struct{})
		close(closed)
		e.logger.Warn("Background executor stopped, dropping reload for %s", u)
		return closed
	}
	if task, ok := e.inflight[u]; ok {
		e.mu.Unlock()
		return task.done
	}

	task := &inflightTask{done: make(chan struct{})}
	e.inflight[u] = task
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		defer func() {
			e.mu.Lock()
			delete(e.inflight, u)
			e.mu.Unlock()
			close(task.done)
		}()
		fn()
	}()

	return task.done
}

// InFlight reports whether a task for the file is currently running.
func (e *BackgroundExecutor) InFlight(u uri.URI) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inflight[u]
	return ok
}

// Wait blocks until all scheduled tasks complete. Intended for tests and
// shutdown paths.
func (e *BackgroundExecutor) Wait() {
	e.wg.Wait()
}

// Stop rejects further work and waits for in-flight tasks to drain.
func (e *BackgroundExecutor) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	e.wg.Wait()
}
