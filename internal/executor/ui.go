package executor

import (
	"sync"

	"scriptconfig/internal/common"
)

// UILoop marshals funcs onto a single consumer goroutine, standing in for the
// host's interactive thread. Submission order is execution order.
type UILoop struct {
	queue   chan func()
	done    chan struct{}
	stopped sync.Once
}

// NewUILoop creates and starts the loop.
func NewUILoop() *UILoop {
	l := &UILoop{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *UILoop) run() {
	defer close(l.done)
	for fn := range l.queue {
		fn()
	}
}

// Invoke queues fn for execution on the loop goroutine.
func (l *UILoop) Invoke(fn func()) {
	defer func() {
		if recover() != nil {
			common.ScriptLogger.Warn("UI loop stopped, dropping queued work")
		}
	}()
	l.queue <- fn
}

// Flush blocks until everything queued before the call has run.
func (l *UILoop) Flush() {
	ran := make(chan struct{})
	l.Invoke(func() { close(ran) })
	<-ran
}

// Stop drains the queue and stops the loop goroutine.
func (l *UILoop) Stop() {
	l.stopped.Do(func() {
		close(l.queue)
		<-l.done
	})
}

// SyncUI runs funcs inline on the calling goroutine. Used by tests and the
// CLI, where no interactive thread exists.
type SyncUI struct{}

func (SyncUI) Invoke(fn func()) { fn() }
