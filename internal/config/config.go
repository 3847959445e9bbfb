// Package config handles parsing and validation of all mirror operation
// parameters, including the s3:// URI surface.
package config

import (
	"fmt"
	"strings"
)

// defaultPageSize is the page size used by the lister when listing objects,
// matching the original implementation's MaxKeys.
const defaultPageSize = 1000

// Config holds all configuration for a mirror run. All fields correspond to
// flags on the s3pd command line.
type Config struct {
	Source      string // positional: s3://<bucket>[/<prefix>]
	Destination string // positional: local directory

	Region               string   // object-store region
	ThroughputTargetGbps int      // per-client throughput target hint
	PartSize             uint64   // range size for per-object parallel GET, in bytes
	ConcurrentDownloads  int      // max in-flight GETs per worker
	Interfaces           []string // network interfaces; empty = default route
	HTTPS                bool     // HTTPS vs HTTP
	Benchmark            bool     // discard downloaded bytes

	// Populated by Validate from Source.
	bucket string
	prefix string
}

// Bucket returns the bucket name parsed from Source. Only valid after
// Validate has returned successfully.
func (c *Config) Bucket() string { return c.bucket }

// Prefix returns the key prefix parsed from Source. Only valid after
// Validate has returned successfully.
func (c *Config) Prefix() string { return c.prefix }

// PageSize returns the page size the lister should request per ListObjectsV2
// call. Fixed at a sane default; not currently flag-configurable.
func (c *Config) PageSize() int32 { return defaultPageSize }

// WorkerCount returns the number of workers the orchestrator should spawn:
// one per configured interface, or exactly one if none were given.
func (c *Config) WorkerCount() int {
	if len(c.Interfaces) == 0 {
		return 1
	}
	return len(c.Interfaces)
}

// Validate checks all fields for well-formedness and parses Source into a
// bucket and prefix. It must be called before any other Config accessor is
// trusted.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.Destination == "" {
		return fmt.Errorf("destination is required")
	}

	bucket, prefix, err := ParseS3URI(c.Source)
	if err != nil {
		return err
	}
	c.bucket = bucket
	c.prefix = prefix

	if c.ThroughputTargetGbps <= 0 {
		return fmt.Errorf("throughputTarget must be positive")
	}
	if c.PartSize == 0 {
		return fmt.Errorf("partSize must be positive")
	}
	if c.ConcurrentDownloads < 1 {
		return fmt.Errorf("concurrentDownloads must be at least 1")
	}

	return nil
}

// ParseS3URI splits at the first '/' after the s3:// prefix; everything
// before is the bucket, everything after (possibly empty, possibly
// trailing-slash) is the prefix. Writes aren't supported, so a source
// lacking the s3:// scheme is rejected outright rather than guessed at.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	const scheme = "s3://"
	if !strings.HasPrefix(uri, scheme) {
		return "", "", fmt.Errorf("S3 writes not yet supported")
	}

	rest := strings.TrimPrefix(uri, scheme)
	if rest == "" {
		return "", "", fmt.Errorf("invalid s3 uri: missing bucket: %s", uri)
	}

	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return rest, "", nil
	}
	return rest[:idx], rest[idx+1:], nil
}
