package asynctcp

import (
	"net"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards connect attempts. Implemented by
// gobreaker.CircuitBreaker[*net.TCPConn].
type CircuitBreaker interface {
	Execute(fn func() (*net.TCPConn, error)) (*net.TCPConn, error)
}

// NewCircuitBreakerConfig returns a breaker factory for Config.NewCircuitBreaker.
// The returned factory creates a fresh breaker per call; memoize per address
// to share breaker state across channel instances.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(addr string) CircuitBreaker {
	return func(addr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[*net.TCPConn](settings)
	}
}
