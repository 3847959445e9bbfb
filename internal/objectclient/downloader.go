package objectclient

import (
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// minRangeConcurrency and maxRangeConcurrency bound the heuristic below.
const (
	minRangeConcurrency = 1
	maxRangeConcurrency = 32
)

// RangeConcurrency derives the s3manager Downloader's internal range-GET
// fan-out from the configured throughput target. The exact mapping from a
// throughput hint to internal range-parallelism has no single right answer,
// so this is a deliberate, documented heuristic (see DESIGN.md) rather than
// a derivation from any formal model.
func RangeConcurrency(throughputTargetGbps int) int {
	c := throughputTargetGbps / 2
	if c < minRangeConcurrency {
		return minRangeConcurrency
	}
	if c > maxRangeConcurrency {
		return maxRangeConcurrency
	}
	return c
}

// NewDownloader builds an s3manager.Downloader configured from partSize and
// throughputTargetGbps.
func NewDownloader(client *s3.Client, partSize uint64, throughputTargetGbps int) *manager.Downloader {
	return manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = int64(partSize)
		d.Concurrency = RangeConcurrency(throughputTargetGbps)
	})
}
