package asynctcp

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Executor accepts completion-dispatch work for channels bound to it.
// It may be shared by any number of channels.
type Executor interface {
	// Submit schedules fn. It returns an error only if the executor can no
	// longer accept work; fn then never runs.
	Submit(fn func()) error
}

// WorkGroup is the default Executor. Submitted work runs on its own
// goroutine, with concurrency bounded by a weighted semaphore.
type WorkGroup struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	closed atomic.Bool
}

var _ Executor = (*WorkGroup)(nil)

// NewWorkGroup creates a work group running at most parallelism functions
// concurrently. parallelism <= 0 means GOMAXPROCS.
func NewWorkGroup(parallelism int) *WorkGroup {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &WorkGroup{sem: semaphore.NewWeighted(int64(parallelism))}
}

// Submit implements Executor.
func (g *WorkGroup) Submit(fn func()) error {
	if g.closed.Load() {
		return ErrGroupClosed
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := g.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer g.sem.Release(1)
		fn()
	}()
	return nil
}

// Close stops accepting work and waits for in-flight work to finish.
// Repeated calls are no-ops.
func (g *WorkGroup) Close() {
	if g.closed.CompareAndSwap(false, true) {
		g.wg.Wait()
	}
}

var (
	defaultGroupOnce sync.Once
	defaultGroup     *WorkGroup
)

// DefaultGroup returns the shared work group used by channels opened
// without an explicit executor. Created on first use, never closed.
func DefaultGroup() *WorkGroup {
	defaultGroupOnce.Do(func() {
		defaultGroup = NewWorkGroup(0)
	})
	return defaultGroup
}
