package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/cobookman/s3pd/internal/counters"
)

func TestQueueFIFO(t *testing.T) {
	q := New(nil)
	want := []ObjectRef{{Key: "a", Size: 1}, {Key: "b", Size: 2}, {Key: "c", Size: 3}}
	for _, ref := range want {
		q.Push(ref)
	}
	q.CloseProducer()

	var got []ObjectRef
	for {
		ref, ok := q.Poll()
		if !ok {
			break
		}
		got = append(got, ref)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d refs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestQueuePollReturnsClosedOnEmptyAfterCloseProducer(t *testing.T) {
	q := New(nil)
	q.CloseProducer()

	_, ok := q.Poll()
	if ok {
		t.Fatal("Poll() on empty closed queue should report closed")
	}
}

func TestQueuePollReturnsHeadEvenAfterCloseProducer(t *testing.T) {
	q := New(nil)
	q.Push(ObjectRef{Key: "only", Size: 1})
	q.CloseProducer()

	ref, ok := q.Poll()
	if !ok {
		t.Fatal("Poll() should still return the pending item after CloseProducer")
	}
	if ref.Key != "only" {
		t.Errorf("ref.Key = %q, want only", ref.Key)
	}

	_, ok = q.Poll()
	if ok {
		t.Fatal("Poll() should report closed once drained")
	}
}

func TestQueuePollBlocksUntilPush(t *testing.T) {
	q := New(nil)
	done := make(chan ObjectRef, 1)
	go func() {
		ref, ok := q.Poll()
		if !ok {
			t.Error("Poll() should have returned an item, not closed")
			return
		}
		done <- ref
	}()

	select {
	case <-done:
		t.Fatal("Poll() returned before any item was pushed")
	case <-time.After(50 * time.Millisecond):
	}

	q.Push(ObjectRef{Key: "late", Size: 1})

	select {
	case ref := <-done:
		if ref.Key != "late" {
			t.Errorf("ref.Key = %q, want late", ref.Key)
		}
	case <-time.After(time.Second):
		t.Fatal("Poll() did not unblock after Push")
	}
}

func TestQueueCloseProducerIdempotent(t *testing.T) {
	q := New(nil)
	q.CloseProducer()
	q.CloseProducer() // must not panic or deadlock
	if !q.ProducerDone() {
		t.Fatal("ProducerDone() should be true")
	}
}

func TestQueuePushUpdatesCounters(t *testing.T) {
	var c counters.Counters
	q := New(&c)

	q.Push(ObjectRef{Key: "a", Size: 10})
	q.Push(ObjectRef{Key: "b", Size: 20})

	if got := c.ObjectsQueued(); got != 2 {
		t.Errorf("ObjectsQueued() = %d, want 2", got)
	}
	if got := c.BytesQueued(); got != 30 {
		t.Errorf("BytesQueued() = %d, want 30", got)
	}
}

func TestQueueMultipleConsumersEachItemOnce(t *testing.T) {
	q := New(nil)
	const n = 200
	for i := 0; i < n; i++ {
		q.Push(ObjectRef{Key: string(rune('a' + i%26)), Size: int64(i)})
	}
	q.CloseProducer()

	seen := make(chan ObjectRef, n)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				ref, ok := q.Poll()
				if !ok {
					return
				}
				seen <- ref
			}
		}()
	}
	wg.Wait()
	close(seen)

	count := 0
	for range seen {
		count++
	}
	if count != n {
		t.Fatalf("consumed %d items across workers, want %d", count, n)
	}
}
