// Package worker implements the bounded-concurrency download pipeline that
// pulls object keys off a shared queue and fetches them. Each GET is
// dispatched onto its own goroutine rather than processed synchronously in
// the poll loop, with a permit semaphore enforcing the configured
// concurrency bound across whatever GETs are currently in flight.
package worker

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/cobookman/s3pd/internal/counters"
	"github.com/cobookman/s3pd/internal/objectclient"
	"github.com/cobookman/s3pd/internal/queue"
	"github.com/cobookman/s3pd/internal/sink"
)

// Worker is a long-lived pipeline bound to one object client and one
// optional network interface. It pulls keys from a shared Queue, bounds
// in-flight GETs with a permit semaphore, and dispatches each GET
// asynchronously.
type Worker struct {
	ID       int
	Client   objectclient.Client
	Sinks    sink.Factory
	Queue    *queue.Queue
	Counters *counters.Counters
	Bucket   string

	// ConcurrentDownloads is the permit semaphore's weight.
	ConcurrentDownloads int64

	sem *semaphore.Weighted

	// errMu guards errs, appended to from completion handlers that may run
	// concurrently with each other and with Run's own goroutine.
	errMu sync.Mutex
	errs  []error
}

// Run polls the queue, breaking once it reports closed, acquiring a permit
// and dispatching the GET asynchronously on each iteration. Once the queue
// is closed, Run drains by re-acquiring every permit it owns — blocking
// until every dispatched GET's completion handler has fired, so no
// completion can touch Counters or the error list after Run has returned.
//
// Run returns a single error summarizing whether any GET failed; the
// specific per-object errors are logged to stderr as they occur, not
// retried, and do not stop the worker from processing the rest of the queue.
func (w *Worker) Run(ctx context.Context) error {
	w.sem = semaphore.NewWeighted(w.ConcurrentDownloads)

	for {
		ref, ok := w.Queue.Poll()
		if !ok {
			break
		}

		if err := w.sem.Acquire(ctx, 1); err != nil {
			w.recordErr(fmt.Errorf("worker %d: acquire permit for %s: %w", w.ID, ref.Key, err))
			w.Counters.CompleteObject()
			continue
		}

		go w.dispatch(ctx, ref)
	}

	// Drain: block until every in-flight GET has released its permit. This
	// waits even when ctx has been cancelled.
	if err := w.sem.Acquire(context.Background(), w.ConcurrentDownloads); err != nil {
		w.recordErr(fmt.Errorf("worker %d: drain: %w", w.ID, err))
	}

	return w.combinedErr()
}

// dispatch performs one object's GET and sink write, then releases its
// permit and records completion. It is always run on its own goroutine so
// the poll loop is never blocked on network I/O.
func (w *Worker) dispatch(ctx context.Context, ref queue.ObjectRef) {
	defer w.sem.Release(1)
	defer w.Counters.CompleteObject()

	s, err := w.Sinks.NewSink(ref.Key)
	if err != nil {
		w.recordErr(fmt.Errorf("open sink for %s: %w", ref.Key, err))
		return
	}

	// A GET that has started runs to completion even if ctx is cancelled.
	counting := sink.CountingWriterAt{Sink: s, Counters: w.Counters}
	_, getErr := w.Client.Get(context.WithoutCancel(ctx), w.Bucket, ref.Key, counting)
	closeErr := s.Close()

	if getErr != nil {
		w.recordErr(fmt.Errorf("get %s: %w", ref.Key, getErr))
		return
	}
	if closeErr != nil {
		w.recordErr(fmt.Errorf("close sink for %s: %w", ref.Key, closeErr))
	}
}

// recordErr logs the error to stderr immediately and appends it to the
// worker's error list so Run can report a nonzero-exit-worthy summary.
func (w *Worker) recordErr(err error) {
	fmt.Fprintf(os.Stderr, "s3pd: %v\n", err)

	w.errMu.Lock()
	w.errs = append(w.errs, err)
	w.errMu.Unlock()
}

// combinedErr returns a single error if any GET in this worker's lifetime
// failed, or nil if every dispatched job completed cleanly.
func (w *Worker) combinedErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()

	if len(w.errs) == 0 {
		return nil
	}
	return fmt.Errorf("worker %d: %d object(s) failed (first: %w)", w.ID, len(w.errs), w.errs[0])
}
