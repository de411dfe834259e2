package asynctcp

import (
	"errors"
	"sync/atomic"
)

// ChannelStats contains statistics about channel operations.
// All fields are safe for concurrent access.
//
// For Prometheus integration, expose these as:
//   - Counters: Connects, Reads, Writes, Timeouts, Errors
//   - Counters: BytesRead, BytesWritten
type ChannelStats struct {
	Connects     uint64 // Successful connects
	Reads        uint64 // Successful read completions (bytes delivered)
	Writes       uint64 // Successful write completions
	BytesRead    uint64 // Total bytes delivered to read buffers
	BytesWritten uint64 // Total bytes accepted from write buffers
	Timeouts     uint64 // Operations failed by timeout expiry
	Errors       uint64 // Total failed operations, timeouts included
	_            uint64 // Padding to align to 64 bytes
}

// statsCollector provides internal methods for updating channel stats.
// Not exported - the channel updates its own stats.
type statsCollector struct {
	stats *ChannelStats
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		stats: &ChannelStats{},
	}
}

func (c *statsCollector) recordConnect() {
	atomic.AddUint64(&c.stats.Connects, 1)
}

func (c *statsCollector) recordRead(n int) {
	atomic.AddUint64(&c.stats.Reads, 1)
	atomic.AddUint64(&c.stats.BytesRead, uint64(n))
}

func (c *statsCollector) recordWrite(n int) {
	atomic.AddUint64(&c.stats.Writes, 1)
	atomic.AddUint64(&c.stats.BytesWritten, uint64(n))
}

func (c *statsCollector) recordError(err error) {
	atomic.AddUint64(&c.stats.Errors, 1)
	if errors.Is(err, ErrTimeout) {
		atomic.AddUint64(&c.stats.Timeouts, 1)
	}
}

func (c *statsCollector) snapshot() ChannelStats {
	return ChannelStats{
		Connects:     atomic.LoadUint64(&c.stats.Connects),
		Reads:        atomic.LoadUint64(&c.stats.Reads),
		Writes:       atomic.LoadUint64(&c.stats.Writes),
		BytesRead:    atomic.LoadUint64(&c.stats.BytesRead),
		BytesWritten: atomic.LoadUint64(&c.stats.BytesWritten),
		Timeouts:     atomic.LoadUint64(&c.stats.Timeouts),
		Errors:       atomic.LoadUint64(&c.stats.Errors),
	}
}
