// Package main implements the s3pd command-line interface: parse flags,
// validate configuration, wire an AWS S3 client (optionally one per network
// interface) into the orchestrator, and run the mirror.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cobookman/s3pd/internal/config"
	"github.com/cobookman/s3pd/internal/objectclient"
	"github.com/cobookman/s3pd/internal/orchestrator"
	"github.com/cobookman/s3pd/internal/report"
	"github.com/cobookman/s3pd/internal/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses flags, validates configuration, builds one object client per
// configured interface, and hands everything to the orchestrator.
func run() error {
	fs := flag.NewFlagSet("s3pd", flag.ContinueOnError)

	region := fs.String("region", "", "object-store region")
	throughputTarget := fs.Int("throughputTarget", 5, "per-client throughput target hint, in Gbps")
	partSize := fs.Uint64("partSize", 8*1024*1024, "range size for per-object parallel GET, in bytes")
	concurrentDownloads := fs.Int("concurrentDownloads", 10, "max in-flight GETs per worker")
	interfaces := fs.String("interfaces", "", "comma-separated network interface names; empty uses the default route")
	https := fs.Bool("https", true, "use HTTPS for object-store requests")
	benchmark := fs.Bool("benchmark", false, "discard downloaded bytes instead of writing them to disk")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	args := fs.Args()
	if len(args) != 2 {
		return fmt.Errorf("usage: s3pd <source> <destination> [flags]")
	}

	cfg := &config.Config{
		Source:               args[0],
		Destination:          args[1],
		Region:               *region,
		ThroughputTargetGbps: *throughputTarget,
		PartSize:             *partSize,
		ConcurrentDownloads:  *concurrentDownloads,
		Interfaces:           splitInterfaces(*interfaces),
		HTTPS:                *https,
		Benchmark:            *benchmark,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	workers, err := buildWorkerSpecs(awsCfg, cfg)
	if err != nil {
		return fmt.Errorf("build object clients: %w", err)
	}

	var sinks sink.Factory
	if cfg.Benchmark {
		sinks = sink.DiscardFactory{}
	} else {
		sinks = sink.NewFileFactory(cfg.Destination)
	}

	o := &orchestrator.Orchestrator{
		Bucket:              cfg.Bucket(),
		Prefix:              cfg.Prefix(),
		PageSize:            cfg.PageSize(),
		ConcurrentDownloads: cfg.ConcurrentDownloads,
		OutputEvery:         time.Second,
		Workers:             workers,
		Sinks:               sinks,
		ShowProgress:        true,
	}

	fmt.Printf("Mirroring s3://%s/%s to %s\n", cfg.Bucket(), cfg.Prefix(), cfg.Destination)

	result, err := o.Run(ctx)
	rep := orchestrator.BuildReport(result)
	fmt.Println(rep.String())

	if !cfg.Benchmark {
		if writeErr := report.WriteFile(cfg.Destination, rep); writeErr != nil {
			fmt.Fprintf(os.Stderr, "s3pd: write report: %v\n", writeErr)
		}
	}

	if err != nil {
		return fmt.Errorf("mirror failed: %w", err)
	}
	return nil
}

// buildWorkerSpecs constructs one objectclient.Client per configured
// interface (or exactly one using the default route if none were given),
// each pinned to its own *http.Client so a run can fan traffic out across
// multiple NICs. cfg.HTTPS is wired through a scheme-rewriting endpoint
// resolver so the same codepath serves both TLS and plain-HTTP endpoints
// (e.g. a local MinIO instance with TLS disabled).
func buildWorkerSpecs(awsCfg aws.Config, cfg *config.Config) ([]orchestrator.WorkerSpec, error) {
	ifaces := cfg.Interfaces
	if len(ifaces) == 0 {
		ifaces = []string{""}
	}

	resolver := objectclient.NewSchemeResolver(cfg.HTTPS)

	specs := make([]orchestrator.WorkerSpec, 0, len(ifaces))
	for _, iface := range ifaces {
		httpClient, err := objectclient.NewHTTPClient(iface)
		if err != nil {
			return nil, fmt.Errorf("interface %q: %w", iface, err)
		}

		rawClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.HTTPClient = httpClient
			o.EndpointResolverV2 = resolver
		})

		downloader := objectclient.NewDownloader(rawClient, cfg.PartSize, cfg.ThroughputTargetGbps)
		specs = append(specs, orchestrator.WorkerSpec{Client: objectclient.New(rawClient, downloader)})
	}
	return specs, nil
}

// splitInterfaces parses a comma-separated interface list, dropping empty
// entries so an empty flag value yields a nil slice (default route, one
// worker).
func splitInterfaces(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
