package orchestrator

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cobookman/s3pd/internal/objectclient"
	"github.com/cobookman/s3pd/internal/sink"
)

// fakeClient implements objectclient.Client over an in-memory object set,
// with a fixed page size and an optional injected list or get error.
type fakeClient struct {
	mu       sync.Mutex
	keys     []string
	sizes    []int64
	pageSize int
	listErr  error
	failGet  map[string]bool
}

func (c *fakeClient) ListPage(ctx context.Context, bucket, prefix, token string, maxKeys int32) (objectclient.Page, error) {
	if c.listErr != nil {
		return objectclient.Page{}, c.listErr
	}

	start := 0
	if token != "" {
		for i, k := range c.keys {
			if k == token {
				start = i
				break
			}
		}
	}

	end := start + c.pageSize
	if end > len(c.keys) {
		end = len(c.keys)
	}

	page := objectclient.Page{
		Keys:  append([]string(nil), c.keys[start:end]...),
		Sizes: append([]int64(nil), c.sizes[start:end]...),
	}
	if end < len(c.keys) {
		page.Truncated = true
		page.ContinuationToken = c.keys[end]
	}
	return page, nil
}

func (c *fakeClient) Get(ctx context.Context, bucket, key string, dst io.WriterAt) (int64, error) {
	c.mu.Lock()
	fail := c.failGet[key]
	c.mu.Unlock()

	if fail {
		return 0, errors.New("simulated GET failure")
	}
	n, err := dst.WriteAt([]byte("x"), 0)
	return int64(n), err
}

func TestOrchestratorHappyPathSingleWorker(t *testing.T) {
	client := &fakeClient{
		keys:     []string{"a", "b", "c"},
		sizes:    []int64{1, 2, 3},
		pageSize: 10,
	}

	o := &Orchestrator{
		Bucket:              "bucket",
		Prefix:              "",
		PageSize:            10,
		ConcurrentDownloads: 4,
		Workers:             []WorkerSpec{{Client: client}},
		Sinks:               sink.DiscardFactory{},
	}

	result, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Counters.ObjectsDownloaded(); got != 3 {
		t.Errorf("ObjectsDownloaded() = %d, want 3", got)
	}
	if got := result.Counters.ObjectsQueued(); got != 3 {
		t.Errorf("ObjectsQueued() = %d, want 3", got)
	}
	if result.Errors != 0 {
		t.Errorf("Errors = %d, want 0", result.Errors)
	}
}

func TestOrchestratorPaginatedListing(t *testing.T) {
	client := &fakeClient{
		keys:     []string{"a", "b", "c", "d", "e"},
		sizes:    []int64{1, 1, 1, 1, 1},
		pageSize: 2,
	}

	o := &Orchestrator{
		Bucket:              "bucket",
		PageSize:            2,
		ConcurrentDownloads: 2,
		Workers:             []WorkerSpec{{Client: client}},
		Sinks:               sink.DiscardFactory{},
	}

	result, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Counters.ObjectsDownloaded(); got != 5 {
		t.Errorf("ObjectsDownloaded() = %d, want 5", got)
	}
}

func TestOrchestratorListErrorAbandonsRemainingPages(t *testing.T) {
	client := &fakeClient{
		listErr:  errors.New("simulated list failure"),
		pageSize: 10,
	}

	o := &Orchestrator{
		Bucket:              "bucket",
		PageSize:            10,
		ConcurrentDownloads: 2,
		Workers:             []WorkerSpec{{Client: client}},
		Sinks:               sink.DiscardFactory{},
	}

	result, err := o.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want non-nil after a list error")
	}
	if got := result.Counters.ObjectsQueued(); got != 0 {
		t.Errorf("ObjectsQueued() = %d, want 0", got)
	}
}

func TestOrchestratorEmptyPrefixCompletesImmediately(t *testing.T) {
	client := &fakeClient{pageSize: 10}

	o := &Orchestrator{
		Bucket:              "bucket",
		Prefix:              "nothing/here/",
		PageSize:            10,
		ConcurrentDownloads: 2,
		Workers:             []WorkerSpec{{Client: client}},
		Sinks:               sink.DiscardFactory{},
	}

	done := make(chan struct{})
	var result Result
	var err error
	go func() {
		result, err = o.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return promptly for an empty prefix")
	}

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Counters.ObjectsQueued() != 0 || result.Counters.ObjectsDownloaded() != 0 {
		t.Errorf("expected zero counters, got queued=%d downloaded=%d",
			result.Counters.ObjectsQueued(), result.Counters.ObjectsDownloaded())
	}
}

func TestOrchestratorPerObjectGetErrorDoesNotStopOthers(t *testing.T) {
	client := &fakeClient{
		keys:     []string{"good1", "bad", "good2"},
		sizes:    []int64{1, 1, 1},
		pageSize: 10,
		failGet:  map[string]bool{"bad": true},
	}

	o := &Orchestrator{
		Bucket:              "bucket",
		PageSize:            10,
		ConcurrentDownloads: 2,
		Workers:             []WorkerSpec{{Client: client}},
		Sinks:               sink.DiscardFactory{},
	}

	result, err := o.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want non-nil because one object failed")
	}
	if got := result.Counters.ObjectsDownloaded(); got != 3 {
		t.Errorf("ObjectsDownloaded() = %d, want 3 (failures still count as terminal)", got)
	}
}

func TestOrchestratorMultipleWorkersShareOneQueue(t *testing.T) {
	keys := make([]string, 50)
	sizes := make([]int64, 50)
	for i := range keys {
		keys[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
		sizes[i] = 1
	}
	client := &fakeClient{keys: keys, sizes: sizes, pageSize: 10}

	o := &Orchestrator{
		Bucket:              "bucket",
		PageSize:            10,
		ConcurrentDownloads: 4,
		Workers:             []WorkerSpec{{Client: client}, {Client: client}, {Client: client}},
		Sinks:               sink.DiscardFactory{},
	}

	result, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Counters.ObjectsDownloaded(); got != 50 {
		t.Errorf("ObjectsDownloaded() = %d, want 50 (no double-processing across workers)", got)
	}
}
