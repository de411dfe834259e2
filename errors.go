package asynctcp

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrChannelClosed is delivered to operations issued after Close.
	ErrChannelClosed = errors.New("asynctcp: channel closed")

	// ErrNotConnected is delivered to reads and writes issued before a
	// successful Connect.
	ErrNotConnected = errors.New("asynctcp: not connected")

	// ErrAlreadyConnected is delivered to a Connect issued while the
	// channel is connected or a connect is in flight.
	ErrAlreadyConnected = errors.New("asynctcp: already connected")

	// ErrReadPending / ErrWritePending reject a second operation on a
	// direction that already has one outstanding.
	ErrReadPending  = errors.New("asynctcp: read already pending")
	ErrWritePending = errors.New("asynctcp: write already pending")

	// ErrTimeout classifies operations that did not complete within
	// their requested timeout.
	ErrTimeout = errors.New("asynctcp: operation timed out")

	// ErrInitialization wraps any failure while realizing the channel
	// resources. Once captured, every operation on the channel delivers it.
	ErrInitialization = errors.New("asynctcp: channel initialization failed")

	// ErrGroupClosed is returned by a work group that no longer accepts work.
	ErrGroupClosed = errors.New("asynctcp: work group closed")
)

// EndOfStream is the read result reporting that the peer closed its write
// side. It is a success value, not an error, and repeats on further reads.
const EndOfStream = -1

// classifyIOError tags deadline expiry as ErrTimeout so callers can match
// it with errors.Is. Other errors pass through unchanged.
func classifyIOError(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func initError(err error) error {
	return fmt.Errorf("%w: %w", ErrInitialization, err)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
