// Package progress renders an advisory, best-effort terminal display driven
// by polling internal/counters at a fixed interval. It uses vbauerster/mpb
// for the bar and decorators, including a custom decorator that reports
// recent throughput rather than mpb's built-in cumulative-average one.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/cobookman/s3pd/internal/counters"
)

// barWidth is the fixed cell width of the rendered bar.
const barWidth = 70

// defaultOutputEvery is the sampling interval used when none is configured.
const defaultOutputEvery = time.Second

// Observer renders bytesDownloaded/bytesQueued and object counts to the
// terminal on a fixed cadence, reading Counters without synchronization.
// It is advisory only: it never blocks or gates the pipeline.
type Observer struct {
	Counters    *counters.Counters
	OutputEvery time.Duration

	progress *mpb.Progress
	bar      *mpb.Bar

	lastBytes int64
	lastAt    time.Time
}

// NewObserver constructs an Observer that writes to stderr, keeping stdout
// clean for the final report.
func NewObserver(c *counters.Counters, outputEvery time.Duration) *Observer {
	if outputEvery <= 0 {
		outputEvery = defaultOutputEvery
	}

	p := mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(barWidth),
		mpb.WithRefreshRate(outputEvery),
	)

	bar := p.AddBar(0,
		mpb.PrependDecorators(
			decor.Name("mirror "),
			decor.Any(func(decor.Statistics) string {
				return fmt.Sprintf("%d / %d objects", c.ObjectsDownloaded(), c.ObjectsQueued())
			}, decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.Name(" "),
		),
	)

	o := &Observer{
		Counters:    c,
		OutputEvery: outputEvery,
		progress:    p,
		bar:         bar,
		lastAt:      epoch(),
	}

	bar.AppendDecorators(decor.Any(func(decor.Statistics) string {
		return fmt.Sprintf("% .2f Gibit/s", o.Throughput(time.Now()))
	}))

	return o
}

// epoch exists only so zero-value Observers built without NewObserver (e.g.
// in tests that call sample directly) have a well-defined start time without
// calling time.Now() at package scope.
func epoch() time.Time { return time.Time{} }

// Run samples Counters every OutputEvery until stop is closed, then performs
// one final sample so the terminal display reflects the run's true end
// state before returning.
func (o *Observer) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(o.OutputEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.sample()
		case <-stop:
			o.sample()
			o.progress.Wait()
			return
		}
	}
}

// sample reads the current counters and updates the bar's total and
// current position, widening SetTotal as bytesQueued grows during an
// in-progress listing.
func (o *Observer) sample() {
	queued := o.Counters.BytesQueued()
	downloaded := o.Counters.BytesDownloaded()

	o.bar.SetTotal(queued, false)
	o.bar.SetCurrent(downloaded)
}

// Throughput returns the observed Gibit/s rate since the previous call,
// computed from the delta in bytesDownloaded over the elapsed wall-clock
// time. The supplied now must be monotonically increasing across calls.
func (o *Observer) Throughput(now time.Time) float64 {
	current := o.Counters.BytesDownloaded()
	defer func() {
		o.lastBytes = current
		o.lastAt = now
	}()

	if o.lastAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(o.lastAt).Seconds()
	if elapsed <= 0 {
		return 0
	}

	deltaBits := float64(current-o.lastBytes) * 8
	const gibibit = 1 << 30
	return deltaBits / elapsed / gibibit
}

// Summary returns a final, one-line human-readable status suitable for a
// last stderr line once the pipeline has drained.
func Summary(c *counters.Counters) string {
	return fmt.Sprintf("%d/%d objects, %d bytes downloaded",
		c.ObjectsDownloaded(), c.ObjectsQueued(), c.BytesDownloaded())
}
