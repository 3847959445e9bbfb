// Package queue implements a FIFO of pending ObjectRefs, thread-safe, with a
// single-transition producer-done signal. Unlike a Go channel, Poll blocks
// on a condition variable rather than spinning or requiring the producer to
// know the consumer count in advance, so workers can join or leave the pool
// at any time without the lister ever needing to know how many there are.
package queue

import (
	"sync"

	"github.com/cobookman/s3pd/internal/counters"
)

// ObjectRef is the string key of an object within a bucket, plus its
// declared size in bytes. Immutable once created.
type ObjectRef struct {
	Key  string
	Size int64
}

// Queue is an ordered, thread-safe FIFO of ObjectRef with a one-shot
// producer-done signal. Counters is nil unless set via New, in which case
// Push skips the counter update (used by queue-only unit tests).
type Queue struct {
	mu           sync.Mutex
	cond         *sync.Cond
	items        []ObjectRef
	producerDone bool

	Counters *counters.Counters
}

// New returns an empty, open Queue that updates c on every Push. c may be
// nil.
func New(c *counters.Counters) *Queue {
	q := &Queue{Counters: c}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends ref to the tail of the queue, updates the associated
// Counters (if any), and wakes one waiter. Push cannot fail: an allocation
// failure here is fatal to the process.
func (q *Queue) Push(ref ObjectRef) {
	q.mu.Lock()
	q.items = append(q.items, ref)
	q.mu.Unlock()

	if q.Counters != nil {
		q.Counters.AddQueued(ref.Size)
	}

	q.cond.Signal()
}

// Poll returns the head of the queue if non-empty. If the queue is empty and
// the producer has not yet finished, Poll blocks until an item arrives or
// CloseProducer is called. Once the queue is empty and the producer is done,
// Poll returns ok=false ("closed") and never blocks again.
func (q *Queue) Poll() (ref ObjectRef, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.producerDone {
		q.cond.Wait()
	}

	if len(q.items) > 0 {
		ref = q.items[0]
		q.items = q.items[1:]
		return ref, true
	}

	return ObjectRef{}, false
}

// CloseProducer marks the queue as having no further arrivals and wakes
// every waiter. Idempotent: calling it more than once is a no-op.
func (q *Queue) CloseProducer() {
	q.mu.Lock()
	if q.producerDone {
		q.mu.Unlock()
		return
	}
	q.producerDone = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// ProducerDone reports whether CloseProducer has been called. Used by the
// orchestrator's termination check alongside counters.Counters.Done.
func (q *Queue) ProducerDone() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.producerDone
}

// Len returns the current number of items resident in the queue. Intended
// for tests and diagnostics, not the hot path.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
