package asynctcp

import (
	"context"
	"time"
)

// Lazy is an inert description of one asynchronous operation. Building it
// performs no I/O; each Start (or Run) begins a fresh, independent
// operation delivering its own single result.
type Lazy[T any] struct {
	start func(Callback[T])
}

func lazyOf[T any](start func(Callback[T])) Lazy[T] {
	return Lazy[T]{start: start}
}

// Start begins one execution of the described operation. cb fires exactly
// once for this execution. Starting again describes-and-runs a second,
// independent operation.
func (l Lazy[T]) Start(cb Callback[T]) {
	l.start(cb)
}

// Run starts one execution and waits for its single completion.
func (l Lazy[T]) Run(ctx context.Context) (T, error) {
	return futureOf(l.start).Wait(ctx)
}

// LazyChannel is the lazy-computation tier. Each method returns a
// description of the operation without touching the socket; semantics of
// an execution are identical to the Channel methods.
type LazyChannel struct {
	ch *Channel
}

// NewLazyChannel wraps the callback tier of ch.
func NewLazyChannel(ch *Channel) *LazyChannel {
	return &LazyChannel{ch: ch}
}

// Channel returns the underlying callback tier, for queries and lifecycle.
func (lc *LazyChannel) Channel() *Channel {
	return lc.ch
}

func (lc *LazyChannel) Connect(addr string) Lazy[struct{}] {
	return lazyOf(connectOp(lc.ch, addr))
}

func (lc *LazyChannel) Read(p []byte, timeout time.Duration) Lazy[int] {
	return lazyOf(func(cb Callback[int]) { lc.ch.Read(p, timeout, cb) })
}

func (lc *LazyChannel) Write(p []byte, timeout time.Duration) Lazy[int] {
	return lazyOf(func(cb Callback[int]) { lc.ch.Write(p, timeout, cb) })
}
