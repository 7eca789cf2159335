// Package metrics counts cache events.
package metrics

import (
	"fmt"

	"go.uber.org/atomic"
)

// Counters implements types.Metrics with lock-free counters. Safe for concurrent use.
type Counters struct {
	hits        atomic.Int64
	misses      atomic.Int64
	expirations atomic.Int64
	resolves    atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Hits        int64
	Misses      int64
	Expirations int64
	Resolves    int64
}

// New returns zeroed counters.
func New() *Counters {
	return &Counters{}
}

func (c *Counters) Hit()     { c.hits.Inc() }
func (c *Counters) Miss()    { c.misses.Inc() }
func (c *Counters) Expire()  { c.expirations.Inc() }
func (c *Counters) Resolve() { c.resolves.Inc() }

// Snapshot reads all counters. The values are read one by one, so a snapshot taken
// while another goroutine is writing may mix two moments.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Expirations: c.expirations.Load(),
		Resolves:    c.resolves.Load(),
	}
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.expirations.Store(0)
	c.resolves.Store(0)
}

// HitRatio is hits / (hits + misses), or 0 before the first lookup.
func (s Snapshot) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s Snapshot) String() string {
	return fmt.Sprintf("hits=%d misses=%d expired=%d resolved=%d", s.Hits, s.Misses, s.Expirations, s.Resolves)
}
