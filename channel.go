// Package asynctcp provides a single-connection asynchronous TCP channel.
// Operations never block the calling goroutine: each connect, read or write
// registers a callback and returns, and the callback fires exactly once with
// the result, dispatched on the channel's executor. Deferred-value and
// lazy-computation views of the same operations are provided by
// FutureChannel and LazyChannel.
package asynctcp

import (
	"net"
	"net/netip"
	"sync/atomic"
	"time"
)

// Callback receives the single completion of one asynchronous operation.
// Exactly one invocation per operation, with either a value or an error.
type Callback[T any] func(value T, err error)

// Channel is the callback tier of the socket capability. The underlying
// channel resource is created lazily on first use, exactly once; the
// executor only dispatches completions and may be shared across channels.
type Channel struct {
	cfg    Config
	exec   Executor
	report Reporter

	handle handle
	closed atomic.Bool
	stats  *statsCollector
}

// Open creates a channel with the given configuration, bound to exec.
// A nil exec binds the channel to the shared DefaultGroup. No resources
// are created until the first operation.
func Open(cfg Config, exec Executor) *Channel {
	if exec == nil {
		exec = DefaultGroup()
	}
	report := cfg.Reporter
	if report == nil {
		report = defaultReporter()
	}
	return &Channel{
		cfg:    cfg,
		exec:   exec,
		report: report,
		stats:  newStatsCollector(),
	}
}

// use returns the realized channel resource, initializing it on first call.
// An initialization failure is reported once to the Reporter and then
// delivered to every operation that touches the failed handle.
func (c *Channel) use() (*rawChannel, error) {
	if c.closed.Load() {
		return nil, ErrChannelClosed
	}
	return c.handle.value(func() (*rawChannel, error) {
		raw, err := newRawChannel(c.cfg, c.exec)
		if err != nil {
			// No operation-level recipient exists at creation time.
			c.report.Report(err)
		}
		return raw, err
	})
}

// Connect starts a TCP handshake to addr. The callback fires exactly once:
// nil on success, the dial or breaker error on failure. A connect issued
// while one is in flight, or after one succeeded, fails immediately with
// ErrAlreadyConnected.
func (c *Channel) Connect(addr string, cb func(err error)) {
	raw, err := c.use()
	if err != nil {
		cb(err)
		return
	}
	if err := raw.beginConnect(); err != nil {
		cb(err)
		return
	}

	var breaker CircuitBreaker
	if c.cfg.NewCircuitBreaker != nil {
		breaker = c.cfg.NewCircuitBreaker(addr)
	}

	job := func() {
		conn, err := dialThrough(raw, breaker, addr)
		if err = raw.finishConnect(conn, err); err != nil {
			c.stats.recordError(err)
			cb(err)
			return
		}
		c.stats.recordConnect()
		cb(nil)
	}
	if err := c.exec.Submit(job); err != nil {
		_ = raw.finishConnect(nil, err)
		cb(err)
	}
}

func dialThrough(raw *rawChannel, breaker CircuitBreaker, addr string) (*net.TCPConn, error) {
	if breaker == nil {
		return raw.dial(addr)
	}
	return breaker.Execute(func() (*net.TCPConn, error) {
		return raw.dial(addr)
	})
}

// Read reads available bytes into p. timeout zero means wait indefinitely.
// On success the callback receives the byte count, or EndOfStream once the
// peer has closed its write side (repeatable). Timeout expiry delivers an
// error matching ErrTimeout. At most one read may be outstanding; a second
// fails immediately with ErrReadPending.
//
// The caller keeps ownership of p and must keep it valid until the
// callback fires.
func (c *Channel) Read(p []byte, timeout time.Duration, cb Callback[int]) {
	raw, conn, err := c.ioConn()
	if err != nil {
		cb(0, err)
		return
	}
	if !raw.readBusy.CompareAndSwap(false, true) {
		cb(0, ErrReadPending)
		return
	}
	job := func() {
		n, err := readOnce(conn, p, timeout)
		raw.readBusy.Store(false)
		if err != nil {
			c.stats.recordError(err)
		} else if n > 0 {
			c.stats.recordRead(n)
		}
		cb(n, err)
	}
	if err := c.exec.Submit(job); err != nil {
		raw.readBusy.Store(false)
		cb(0, err)
	}
}

// Write writes bytes from p. On success the callback receives the count
// actually written, which may be less than len(p); callers needing the
// whole buffer out must loop. Timeout and pending-operation handling
// mirror Read, with ErrWritePending rejecting a concurrent second write.
func (c *Channel) Write(p []byte, timeout time.Duration, cb Callback[int]) {
	raw, conn, err := c.ioConn()
	if err != nil {
		cb(0, err)
		return
	}
	if !raw.writeBusy.CompareAndSwap(false, true) {
		cb(0, ErrWritePending)
		return
	}
	job := func() {
		n, err := writeOnce(conn, p, timeout)
		raw.writeBusy.Store(false)
		if err != nil {
			c.stats.recordError(err)
		} else {
			c.stats.recordWrite(n)
		}
		cb(n, err)
	}
	if err := c.exec.Submit(job); err != nil {
		raw.writeBusy.Store(false)
		cb(0, err)
	}
}

func (c *Channel) ioConn() (*rawChannel, *net.TCPConn, error) {
	raw, err := c.use()
	if err != nil {
		return nil, nil, err
	}
	conn, err := raw.connection()
	if err != nil {
		return nil, nil, err
	}
	return raw, conn, nil
}

func readOnce(conn *net.TCPConn, p []byte, timeout time.Duration) (int, error) {
	if err := conn.SetReadDeadline(deadlineFor(timeout)); err != nil {
		return 0, err
	}
	n, err := conn.Read(p)
	// Bytes first: a partial read is a success, the error resurfaces on
	// the next read.
	if n > 0 {
		return n, nil
	}
	if err == nil {
		return 0, nil
	}
	if isEOF(err) {
		return EndOfStream, nil
	}
	return 0, classifyIOError(err)
}

func writeOnce(conn *net.TCPConn, p []byte, timeout time.Duration) (int, error) {
	if err := conn.SetWriteDeadline(deadlineFor(timeout)); err != nil {
		return 0, err
	}
	n, err := conn.Write(p)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		return 0, nil
	}
	return 0, classifyIOError(err)
}

func deadlineFor(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// LocalAddr returns the bound local address, if the channel is live and
// connected. An unexpected query failure goes to the Reporter and reads
// as absent.
func (c *Channel) LocalAddr() (netip.AddrPort, bool) {
	return c.queryAddr(func(conn *net.TCPConn) net.Addr { return conn.LocalAddr() })
}

// RemoteAddr returns the connected peer address, if present.
func (c *Channel) RemoteAddr() (netip.AddrPort, bool) {
	return c.queryAddr(func(conn *net.TCPConn) net.Addr { return conn.RemoteAddr() })
}

func (c *Channel) queryAddr(get func(*net.TCPConn) net.Addr) (netip.AddrPort, bool) {
	_, conn, err := c.ioConn()
	if err != nil {
		return netip.AddrPort{}, false
	}
	tcpAddr, ok := get(conn).(*net.TCPAddr)
	if !ok || tcpAddr == nil {
		c.report.Report(ErrNotConnected)
		return netip.AddrPort{}, false
	}
	return tcpAddr.AddrPort(), true
}

// CloseRead half-closes the inbound direction: no further data is accepted
// from the peer. The outbound direction stays open. Irreversible. Failures
// go to the Reporter; a failed or closed channel makes this a no-op.
func (c *Channel) CloseRead() {
	c.shutdown(func(conn *net.TCPConn) error { return conn.CloseRead() })
}

// CloseWrite half-closes the outbound direction, signalling end-of-stream
// to the peer while reads stay available.
func (c *Channel) CloseWrite() {
	c.shutdown(func(conn *net.TCPConn) error { return conn.CloseWrite() })
}

func (c *Channel) shutdown(dir func(*net.TCPConn) error) {
	raw, err := c.use()
	if err != nil {
		return
	}
	conn, err := raw.connection()
	if err != nil {
		c.report.Report(err)
		return
	}
	if err := dir(conn); err != nil {
		c.report.Report(err)
	}
}

// Close releases the connection. Idempotent and never returns an error; a
// close failure goes to the Reporter. After Close every operation fails
// with ErrChannelClosed and the channel resource is never recreated.
func (c *Channel) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	raw, ok := c.handle.realized()
	if !ok {
		return
	}
	conn := raw.release()
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		c.report.Report(err)
	}
}

// Stats returns a snapshot of the channel's operation counters.
func (c *Channel) Stats() ChannelStats {
	return c.stats.snapshot()
}
