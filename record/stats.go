package record

import "sync"

// Stats are the per-reader counters described in spec §3/§5: each
// worker accumulates into a stack-local struct (Counters, no
// mutex/atomics on the hot path) then merges once under a single
// mutex at termination (Aggregate).
type Counters struct {
	Read     uint64
	Filtered uint64
	Sent     uint64
	Dropped  uint64
	Retried  uint64
}

// Add merges o's tallies into c (used when a worker's local counters
// are folded into the coordinator's aggregate).
func (c *Counters) Add(o Counters) {
	c.Read += o.Read
	c.Filtered += o.Filtered
	c.Sent += o.Sent
	c.Dropped += o.Dropped
	c.Retried += o.Retried
}

// Aggregate is the reader-level statistics aggregate, guarded by a
// single mutex per spec §5 ("Statistics... merges once under the
// mutex at completion").
type Aggregate struct {
	mu       sync.Mutex
	counters Counters
}

// Merge folds one worker's final tally into the aggregate. Safe for
// concurrent use by multiple beam workers.
func (a *Aggregate) Merge(c Counters) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters.Add(c)
}

// Snapshot returns a copy of the current aggregate counters.
func (a *Aggregate) Snapshot() Counters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters
}
