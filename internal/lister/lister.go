// Package lister drives paginated ListObjectsV2 requests against one
// bucket+prefix and pushes every returned key into a work queue for workers
// to pick up.
package lister

import (
	"context"
	"fmt"

	"github.com/cobookman/s3pd/internal/objectclient"
	"github.com/cobookman/s3pd/internal/queue"
)

// Lister drives paginated listing against one bucket+prefix and pushes
// every returned key into a Queue.
type Lister struct {
	client objectclient.Client
	queue  *queue.Queue
}

// New returns a Lister that lists through client and pushes into q.
func New(client objectclient.Client, q *queue.Queue) *Lister {
	return &Lister{client: client, queue: q}
}

// Run issues a list request with the prefix; on success it pushes every
// returned key with its size; if the response carries a continuation
// token, it re-issues with that token; otherwise it closes the producer and
// returns nil. On any list error, the error is returned to the caller, the
// producer is closed so consumers drain and terminate, and the remainder
// of the mirror is abandoned — Run never retries a failed list call.
//
// A key ending in "/" with size 0 (a logical directory marker) is pushed
// like any other key.
func (l *Lister) Run(ctx context.Context, bucket, prefix string, pageSize int32) error {
	defer l.queue.CloseProducer()

	token := ""
	for {
		page, err := l.client.ListPage(ctx, bucket, prefix, token, pageSize)
		if err != nil {
			return fmt.Errorf("list objects in s3://%s/%s: %w", bucket, prefix, err)
		}

		for i, key := range page.Keys {
			l.queue.Push(queue.ObjectRef{Key: key, Size: page.Sizes[i]})
		}

		if !page.Truncated {
			return nil
		}
		token = page.ContinuationToken
	}
}
