// Package orchestrator wires the lister, queue, workers, and progress
// observer into one run and decides when the mirror has finished. It
// follows a construct-then-Run shape with WaitGroup-based join and
// signal.NotifyContext cancellation; there is no per-object retry or
// checkpoint logic — a failed GET is recorded and the rest of the run
// continues.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/cobookman/s3pd/internal/counters"
	"github.com/cobookman/s3pd/internal/lister"
	"github.com/cobookman/s3pd/internal/objectclient"
	"github.com/cobookman/s3pd/internal/progress"
	"github.com/cobookman/s3pd/internal/queue"
	"github.com/cobookman/s3pd/internal/report"
	"github.com/cobookman/s3pd/internal/sink"
	"github.com/cobookman/s3pd/internal/worker"
)

// WorkerSpec binds one configured Client (already pinned to whichever
// network interface it should use, if any) to the shared pipeline.
type WorkerSpec struct {
	Client objectclient.Client
}

// Orchestrator wires together one mirror run's lister, queue, workers, and
// progress observer.
type Orchestrator struct {
	Bucket              string
	Prefix              string
	PageSize            int32
	ConcurrentDownloads int
	OutputEvery         time.Duration

	Workers []WorkerSpec
	Sinks   sink.Factory

	// ShowProgress disables the progress observer when false. Progress is
	// advisory only; the pipeline behaves identically with it off.
	ShowProgress bool
}

// Result is the outcome of one Run, ready to be handed to internal/report.
type Result struct {
	Counters  *counters.Counters
	Errors    int
	StartTime time.Time
	EndTime   time.Time
}

// Run spawns the lister, spawns the progress observer, spawns one worker
// per WorkerSpec sharing one Queue and one Counters, waits for every worker
// and the lister to finish, and returns a Result plus an error that is
// non-nil if the lister failed or any worker recorded at least one GET
// failure.
//
// Run installs its own SIGINT handling via signal.NotifyContext so an
// operator can request a graceful stop: the lister stops requesting further
// pages and in-flight GETs are allowed to drain rather than being killed
// mid-transfer.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	start := time.Now()

	c := &counters.Counters{}
	q := queue.New(c)
	l := lister.New(o.Workers[0].Client, q)

	var stopProgress chan struct{}
	var progressWG sync.WaitGroup
	if o.ShowProgress {
		obs := progress.NewObserver(c, o.OutputEvery)
		stopProgress = make(chan struct{})
		progressWG.Add(1)
		go func() {
			defer progressWG.Done()
			obs.Run(stopProgress)
		}()
	}

	var listErr error
	var listWG sync.WaitGroup
	listWG.Add(1)
	go func() {
		defer listWG.Done()
		listErr = l.Run(ctx, o.Bucket, o.Prefix, o.PageSize)
	}()

	var (
		workerWG  sync.WaitGroup
		errMu     sync.Mutex
		workerErr []error
	)
	for i, spec := range o.Workers {
		workerWG.Add(1)
		w := &worker.Worker{
			ID:                  i,
			Client:              spec.Client,
			Sinks:               o.Sinks,
			Queue:               q,
			Counters:            c,
			Bucket:              o.Bucket,
			ConcurrentDownloads: int64(o.ConcurrentDownloads),
		}
		go func() {
			defer workerWG.Done()
			if err := w.Run(ctx); err != nil {
				errMu.Lock()
				workerErr = append(workerErr, err)
				errMu.Unlock()
			}
		}()
	}

	listWG.Wait()
	workerWG.Wait()

	if stopProgress != nil {
		close(stopProgress)
		progressWG.Wait()
	}

	end := time.Now()

	result := Result{
		Counters:  c,
		Errors:    len(workerErr),
		StartTime: start,
		EndTime:   end,
	}

	if listErr != nil {
		return result, fmt.Errorf("lister failed: %w", listErr)
	}
	if len(workerErr) > 0 {
		return result, fmt.Errorf("%d worker(s) reported object failures (first: %w)", len(workerErr), workerErr[0])
	}
	return result, nil
}

// IsDone reports whether the producer has finished and every queued object
// has reached terminal state. Exposed for tests and any future
// polling-based caller; Run itself uses WaitGroups rather than polling
// this.
func IsDone(q *queue.Queue, c *counters.Counters) bool {
	return c.Done(q.ProducerDone())
}

// BuildReport adapts a Result into a report.Report.
func BuildReport(r Result) report.Report {
	return report.New(r.Counters, r.Errors, r.StartTime, r.EndTime)
}
