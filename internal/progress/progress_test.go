package progress

import (
	"testing"
	"time"

	"github.com/cobookman/s3pd/internal/counters"
)

func TestThroughputZeroOnFirstSample(t *testing.T) {
	var c counters.Counters
	c.AddQueued(100)
	c.AddDownloaded(50)

	o := &Observer{Counters: &c}
	if got := o.Throughput(time.Unix(0, 0)); got != 0 {
		t.Errorf("Throughput() on first call = %v, want 0", got)
	}
}

func TestThroughputComputesDeltaOverTime(t *testing.T) {
	var c counters.Counters
	o := &Observer{Counters: &c}

	start := time.Unix(1000, 0)
	o.Throughput(start)

	c.AddDownloaded(1 << 30) // 1 GiB
	got := o.Throughput(start.Add(8 * time.Second))

	// 1 GiB * 8 bits / 8s = 1 Gibit/s.
	if got < 0.99 || got > 1.01 {
		t.Errorf("Throughput() = %v, want ~1.0 Gibit/s", got)
	}
}

func TestSummaryReportsCounters(t *testing.T) {
	var c counters.Counters
	c.AddQueued(10)
	c.AddQueued(20)
	c.AddDownloaded(5)
	c.CompleteObject()

	got := Summary(&c)
	want := "1/2 objects, 5 bytes downloaded"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
