package asynctcp

import "fmt"

const defaultBufferSize = 262144

// Config holds the socket options applied to the channel and the optional
// collaborators injected at Open time. The socket options are fixed once the
// channel is opened; the struct is never mutated afterwards.
type Config struct {
	// ReuseAddress sets SO_REUSEADDR on the socket before it is bound.
	ReuseAddress bool

	// SendBufferSize is the SO_SNDBUF size in bytes.
	// Zero means the system default.
	SendBufferSize int

	// ReceiveBufferSize is the SO_RCVBUF size in bytes.
	// Zero means the system default.
	ReceiveBufferSize int

	// KeepAlive enables TCP keepalive probes on the connection.
	KeepAlive bool

	// NoDelay disables Nagle's algorithm.
	NoDelay bool

	// Reporter receives failures that have no operation-level callback to
	// go to (initialization, address queries, shutdown, close).
	// If nil, failures are logged through zerolog to stderr.
	Reporter Reporter

	// NewCircuitBreaker creates a circuit breaker guarding connect attempts
	// to an address. Called once per Connect with the remote address; return
	// a shared breaker to trip across channel instances.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(addr string) CircuitBreaker
}

// DefaultConfig returns the default socket options: address reuse on,
// 256KB send and receive buffers, keepalive and no-delay off.
func DefaultConfig() Config {
	return Config{
		ReuseAddress:      true,
		SendBufferSize:    defaultBufferSize,
		ReceiveBufferSize: defaultBufferSize,
	}
}

// validate rejects option values the socket layer cannot apply.
func (c Config) validate() error {
	if c.SendBufferSize < 0 {
		return fmt.Errorf("invalid send buffer size %d", c.SendBufferSize)
	}
	if c.ReceiveBufferSize < 0 {
		return fmt.Errorf("invalid receive buffer size %d", c.ReceiveBufferSize)
	}
	return nil
}
