// Package counters implements a small set of nonnegative monotonic
// integers updated by distinct writers and read without synchronization.
package counters

import "sync/atomic"

// Counters holds the four monotonic tallies for one mirror run. The zero
// value is ready to use. All writes are atomic adds and all reads are atomic
// loads, with no lock — the progress observer tolerates some staleness in
// exchange for never blocking on the hot path.
type Counters struct {
	bytesQueued       atomic.Int64
	bytesDownloaded   atomic.Int64
	objectsQueued     atomic.Int64
	objectsDownloaded atomic.Int64
}

// AddQueued records one enqueued object of the given size, called by the
// lister on every push.
func (c *Counters) AddQueued(size int64) {
	c.objectsQueued.Add(1)
	c.bytesQueued.Add(size)
}

// AddDownloaded records n bytes received for some in-flight GET. Called from
// the object client's per-chunk callback, the hottest path in the system.
func (c *Counters) AddDownloaded(n int64) {
	c.bytesDownloaded.Add(n)
}

// CompleteObject records that one job reached terminal state (success or
// error), matching objectsQueued regardless of outcome.
func (c *Counters) CompleteObject() {
	c.objectsDownloaded.Add(1)
}

// BytesQueued returns the current queued byte tally.
func (c *Counters) BytesQueued() int64 { return c.bytesQueued.Load() }

// BytesDownloaded returns the current downloaded byte tally.
func (c *Counters) BytesDownloaded() int64 { return c.bytesDownloaded.Load() }

// ObjectsQueued returns the current queued object tally.
func (c *Counters) ObjectsQueued() int64 { return c.objectsQueued.Load() }

// ObjectsDownloaded returns the current completed object tally.
func (c *Counters) ObjectsDownloaded() int64 { return c.objectsDownloaded.Load() }

// Done reports the orchestrator's termination condition: the producer has
// finished AND every queued object has reached terminal state. producerDone
// must be observed by the caller with acquire semantics (see
// queue.Queue.ProducerDone) before this is meaningful.
func (c *Counters) Done(producerDone bool) bool {
	return producerDone && c.ObjectsDownloaded() == c.ObjectsQueued()
}
