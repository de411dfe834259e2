package asynctcp

import (
	"context"
	"sync"
	"time"
)

// Future is a single-assignment result slot, fulfilled by exactly one
// operation completion and readable any number of times afterwards.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is done. Cancellation
// abandons the wait, not the underlying operation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// futureOf derives the deferred-value form of one primitive operation:
// start the operation with the slot's completer, hand back the slot.
// Shared by every FutureChannel method and by Lazy.Run.
func futureOf[T any](start func(Callback[T])) *Future[T] {
	f := newFuture[T]()
	start(f.complete)
	return f
}

// FutureChannel is the deferred-value tier. Each method starts the
// primitive operation immediately and returns the future of its single
// result; semantics are identical to the Channel methods.
type FutureChannel struct {
	ch *Channel
}

// NewFutureChannel wraps the callback tier of ch.
func NewFutureChannel(ch *Channel) *FutureChannel {
	return &FutureChannel{ch: ch}
}

// Channel returns the underlying callback tier, for queries and lifecycle.
func (fc *FutureChannel) Channel() *Channel {
	return fc.ch
}

func (fc *FutureChannel) Connect(addr string) *Future[struct{}] {
	return futureOf(connectOp(fc.ch, addr))
}

func (fc *FutureChannel) Read(p []byte, timeout time.Duration) *Future[int] {
	return futureOf(func(cb Callback[int]) { fc.ch.Read(p, timeout, cb) })
}

func (fc *FutureChannel) Write(p []byte, timeout time.Duration) *Future[int] {
	return futureOf(func(cb Callback[int]) { fc.ch.Write(p, timeout, cb) })
}

// connectOp adapts Connect's error-only callback to the generic shape used
// by both derived tiers.
func connectOp(ch *Channel, addr string) func(Callback[struct{}]) {
	return func(cb Callback[struct{}]) {
		ch.Connect(addr, func(err error) { cb(struct{}{}, err) })
	}
}
