package asynctcp

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const callbackWait = 5 * time.Second

// captureReporter is a Reporter that records every failure for assertions.
type captureReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *captureReporter) Report(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *captureReporter) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// countingExecutor counts submissions before delegating to a real group.
type countingExecutor struct {
	submits atomic.Int64
	inner   Executor
}

func newCountingExecutor() *countingExecutor {
	return &countingExecutor{inner: NewWorkGroup(0)}
}

func (e *countingExecutor) Submit(fn func()) error {
	e.submits.Add(1)
	return e.inner.Submit(fn)
}

func createListener(t testing.TB, handler func(conn net.Conn)) string {
	// Start a simple test server
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start test server: %v", err)
	}

	t.Cleanup(func() {
		listener.Close()
	})

	// Accept connections in background
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func echoHandler(conn net.Conn) {
	_, _ = io.Copy(conn, conn)
}

// silentHandler consumes input and holds the connection open without ever
// replying.
func silentHandler(conn net.Conn) {
	_, _ = io.Copy(io.Discard, conn)
}

// unusedAddr returns an address nothing is listening on.
func unusedAddr(t testing.TB) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

// openTest opens a channel with a capturing reporter, closed on cleanup.
func openTest(t testing.TB, cfg Config) (*Channel, *captureReporter) {
	reporter := &captureReporter{}
	cfg.Reporter = reporter
	ch := Open(cfg, nil)
	t.Cleanup(ch.Close)
	return ch, reporter
}

// connectT connects ch to addr and waits for the completion.
func connectT(t testing.TB, ch *Channel, addr string) {
	t.Helper()
	done := make(chan error, 1)
	ch.Connect(addr, func(err error) { done <- err })
	select {
	case err := <-done:
		require.NoError(t, err, "connect should succeed")
	case <-time.After(callbackWait):
		t.Fatal("connect callback never fired")
	}
}

type ioResult struct {
	n   int
	err error
}

// readT issues a read and waits for its single completion.
func readT(t testing.TB, ch *Channel, p []byte, timeout time.Duration) ioResult {
	t.Helper()
	done := make(chan ioResult, 1)
	ch.Read(p, timeout, func(n int, err error) { done <- ioResult{n, err} })
	return waitResult(t, done, "read")
}

// writeT issues a write and waits for its single completion.
func writeT(t testing.TB, ch *Channel, p []byte, timeout time.Duration) ioResult {
	t.Helper()
	done := make(chan ioResult, 1)
	ch.Write(p, timeout, func(n int, err error) { done <- ioResult{n, err} })
	return waitResult(t, done, "write")
}

func waitResult(t testing.TB, done <-chan ioResult, op string) ioResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(callbackWait):
		t.Fatalf("%s callback never fired", op)
		return ioResult{}
	}
}
