package sink

import "github.com/cobookman/s3pd/internal/counters"

// CountingWriterAt wraps a Sink so that every WriteAt call — one per
// completed range part from the object client — adds to the shared
// Counters.BytesDownloaded tally. This lives at the sink boundary rather
// than inside the object client so any Client implementation gets byte
// accounting for free.
type CountingWriterAt struct {
	Sink     Sink
	Counters *counters.Counters
}

// WriteAt implements io.WriterAt, forwarding to the wrapped Sink and
// recording however many bytes the Sink accepted, even when it also returns
// an error.
func (c CountingWriterAt) WriteAt(p []byte, off int64) (int, error) {
	n, err := c.Sink.WriteAt(p, off)
	if n > 0 {
		c.Counters.AddDownloaded(int64(n))
	}
	return n, err
}

// Close closes the wrapped Sink.
func (c CountingWriterAt) Close() error {
	return c.Sink.Close()
}
