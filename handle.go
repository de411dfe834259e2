package asynctcp

import (
	"net"
	"sync"
	"sync/atomic"
	"syscall"
)

// connect states of a rawChannel.
const (
	stateIdle = iota
	stateConnecting
	stateConnected
)

// rawChannel is the realized channel resource: the option-applying dialer
// plus, once a connect completes, the live TCP connection. A channel owns
// exactly one rawChannel for its whole lifetime.
type rawChannel struct {
	cfg    Config
	dialer net.Dialer

	mu     sync.Mutex
	state  int
	conn   *net.TCPConn
	closed bool

	readBusy  atomic.Bool
	writeBusy atomic.Bool
}

// handle is the lazily computed Live/Failed cell guarding rawChannel
// creation. Concurrent first use observes a single initialization; the
// outcome is memoized for the channel's lifetime and never re-evaluated.
type handle struct {
	once sync.Once
	done atomic.Bool
	raw  *rawChannel
	err  error
}

func (h *handle) value(init func() (*rawChannel, error)) (*rawChannel, error) {
	h.once.Do(func() {
		h.raw, h.err = init()
		h.done.Store(true)
	})
	return h.raw, h.err
}

// realized reports the live resource without triggering initialization.
func (h *handle) realized() (*rawChannel, bool) {
	if !h.done.Load() || h.err != nil {
		return nil, false
	}
	return h.raw, true
}

// newRawChannel validates the configuration, probes the executor and builds
// the dialer. Control-time options must be set before the socket is bound,
// hence the dialer hook; the remaining options are applied to the
// connection right after the handshake.
func newRawChannel(cfg Config, exec Executor) (*rawChannel, error) {
	if err := cfg.validate(); err != nil {
		return nil, initError(err)
	}
	// Acquiring the group resource: a group that rejects a no-op probe
	// would also reject every completion dispatch.
	if err := exec.Submit(func() {}); err != nil {
		return nil, initError(err)
	}

	raw := &rawChannel{cfg: cfg}
	if cfg.ReuseAddress {
		raw.dialer.Control = func(network, address string, rc syscall.RawConn) error {
			var optErr error
			if err := rc.Control(func(fd uintptr) {
				optErr = setReuseAddress(fd)
			}); err != nil {
				return err
			}
			return optErr
		}
	}
	return raw, nil
}

// dial performs the blocking handshake and applies the post-dial options.
func (r *rawChannel) dial(addr string) (*net.TCPConn, error) {
	conn, err := r.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	tc := conn.(*net.TCPConn)
	if err := r.applyConnOptions(tc); err != nil {
		tc.Close()
		return nil, err
	}
	return tc, nil
}

func (r *rawChannel) applyConnOptions(conn *net.TCPConn) error {
	if r.cfg.ReceiveBufferSize > 0 {
		if err := conn.SetReadBuffer(r.cfg.ReceiveBufferSize); err != nil {
			return err
		}
	}
	if r.cfg.SendBufferSize > 0 {
		if err := conn.SetWriteBuffer(r.cfg.SendBufferSize); err != nil {
			return err
		}
	}
	if err := conn.SetKeepAlive(r.cfg.KeepAlive); err != nil {
		return err
	}
	return conn.SetNoDelay(r.cfg.NoDelay)
}

// connection returns the live connection, or ErrNotConnected.
func (r *rawChannel) connection() (*net.TCPConn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrChannelClosed
	}
	if r.state != stateConnected {
		return nil, ErrNotConnected
	}
	return r.conn, nil
}

// beginConnect reserves the connecting state. Fails if a connect is in
// flight or already succeeded.
func (r *rawChannel) beginConnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrChannelClosed
	}
	if r.state != stateIdle {
		return ErrAlreadyConnected
	}
	r.state = stateConnecting
	return nil
}

// finishConnect records the handshake outcome reserved by beginConnect.
// A close that raced the handshake wins: the fresh connection is released
// and the connect fails.
func (r *rawChannel) finishConnect(conn *net.TCPConn, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = stateIdle
		return err
	}
	if r.closed {
		r.state = stateIdle
		conn.Close()
		return ErrChannelClosed
	}
	r.state = stateConnected
	r.conn = conn
	return nil
}

// release marks the raw channel closed and hands back the connection to
// shut down, if one exists.
func (r *rawChannel) release() *net.TCPConn {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.conn
}
