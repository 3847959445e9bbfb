// Package report builds the terminal summary of a mirror run from its final
// counters: objects and bytes moved, errors seen, and wall-clock duration.
// The report is printed to stdout and optionally written next to the
// destination tree; it is never uploaded anywhere, since there is no write
// path back to the source bucket.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/cobookman/s3pd/internal/counters"
)

// Report is the terminal summary of one mirror run.
type Report struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Duration          time.Duration
	BytesDownloaded   int64 `json:"bytes_downloaded"`
	ObjectsDownloaded int64 `json:"objects_downloaded"`
	ObjectsQueued     int64 `json:"objects_queued"`
	Errors            int   `json:"errors"`
}

// New builds a Report from the final state of c and the worker error count,
// bracketed by the run's start and end times.
func New(c *counters.Counters, errs int, start, end time.Time) Report {
	return Report{
		StartTime:         start,
		EndTime:           end,
		Duration:          end.Sub(start),
		BytesDownloaded:   c.BytesDownloaded(),
		ObjectsDownloaded: c.ObjectsDownloaded(),
		ObjectsQueued:     c.ObjectsQueued(),
		Errors:            errs,
	}
}

// reportJSON mirrors Report but renders Duration as a string: a raw
// time.Duration marshals as a nanosecond integer, which is not what an
// operator wants to read.
type reportJSON struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Duration          string    `json:"duration"`
	BytesDownloaded   int64     `json:"bytes_downloaded"`
	ObjectsDownloaded int64     `json:"objects_downloaded"`
	ObjectsQueued     int64     `json:"objects_queued"`
	Errors            int       `json:"errors"`
}

// MarshalJSON implements json.Marshaler via goccy/go-json for the one JSON
// surface this program produces.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		Duration:          r.Duration.String(),
		BytesDownloaded:   r.BytesDownloaded,
		ObjectsDownloaded: r.ObjectsDownloaded,
		ObjectsQueued:     r.ObjectsQueued,
		Errors:            r.Errors,
	})
}

// String renders a short human-readable summary for stdout.
func (r Report) String() string {
	return fmt.Sprintf(
		"mirror complete: %d/%d objects, %d bytes in %s (%d error(s))",
		r.ObjectsDownloaded, r.ObjectsQueued, r.BytesDownloaded, r.Duration, r.Errors,
	)
}

// reportFileName is the optional on-disk report written alongside the
// mirrored tree, local to the destination only — never uploaded.
const reportFileName = ".s3pd-report.json"

// WriteFile writes r as indented JSON to <destination>/.s3pd-report.json.
func WriteFile(destination string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(destination, reportFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
