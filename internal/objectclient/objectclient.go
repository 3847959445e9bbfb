// Package objectclient composes two AWS SDK v2 surfaces behind one seam the
// worker and lister can mock: a raw s3.Client for paginated listing, and an
// s3manager.Downloader for ranged, parallel GETs.
package objectclient

import (
	"context"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyendpoints "github.com/aws/smithy-go/endpoints"
)

// Page is one page of a ListObjectsV2 response: the keys+sizes returned, and
// whether a further page exists.
type Page struct {
	Keys              []string
	Sizes             []int64
	ContinuationToken string
	Truncated         bool
}

// Client is the abstract object-store capability the lister and worker
// depend on. Implementations must be safe for concurrent use by multiple
// workers.
type Client interface {
	// ListPage issues one paginated list call.
	ListPage(ctx context.Context, bucket, prefix, continuationToken string, maxKeys int32) (Page, error)

	// Get downloads one object's full body into dst, internally splitting
	// the transfer into parallel ranged sub-requests. It returns the number
	// of bytes written.
	Get(ctx context.Context, bucket, key string, dst io.WriterAt) (int64, error)
}

// listAPI is the subset of *s3.Client this package calls, isolated so tests
// can substitute a mock without standing up a real S3 client.
type listAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// downloadAPI is the subset of *manager.Downloader this package calls.
type downloadAPI interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3Client is the production Client implementation: a concrete AWS SDK
// client wrapped behind a small interface so tests can substitute mocks.
type S3Client struct {
	list     listAPI
	download downloadAPI
}

// New builds an S3Client from a raw S3 client and a pre-configured
// Downloader. The Downloader's PartSize and Concurrency are expected to
// already reflect the run's Config (see NewDownloader, called from
// cmd/s3pd).
func New(client *s3.Client, downloader *manager.Downloader) *S3Client {
	return &S3Client{list: client, download: downloader}
}

// schemeResolver wraps an s3.EndpointResolverV2, forcing whichever scheme
// the configured --https flag calls for onto the endpoint it resolves. It
// lets a single *s3.Client be built for either HTTPS or plain HTTP without
// duplicating the SDK's default endpoint logic.
type schemeResolver struct {
	next   s3.EndpointResolverV2
	scheme string
}

// NewSchemeResolver returns an s3.EndpointResolverV2 that resolves endpoints
// normally, then rewrites the URL scheme to "https" or "http" depending on
// useHTTPS.
func NewSchemeResolver(useHTTPS bool) s3.EndpointResolverV2 {
	scheme := "http"
	if useHTTPS {
		scheme = "https"
	}
	return &schemeResolver{next: s3.NewDefaultEndpointResolverV2(), scheme: scheme}
}

func (r *schemeResolver) ResolveEndpoint(ctx context.Context, params s3.EndpointParameters) (smithyendpoints.Endpoint, error) {
	endpoint, err := r.next.ResolveEndpoint(ctx, params)
	if err != nil {
		return endpoint, err
	}

	u, err := url.Parse(endpoint.URI.String())
	if err != nil {
		return endpoint, err
	}
	u.Scheme = r.scheme
	endpoint.URI = *u
	return endpoint, nil
}

// ListPage implements Client.ListPage against the real S3 ListObjectsV2 API,
// mirroring the original implementation's request shape (bucket, optional
// prefix, MaxKeys, continuation token).
func (c *S3Client) ListPage(ctx context.Context, bucket, prefix, continuationToken string, maxKeys int32) (Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  &bucket,
		MaxKeys: &maxKeys,
	}
	if prefix != "" {
		input.Prefix = &prefix
	}
	if continuationToken != "" {
		input.ContinuationToken = &continuationToken
	}

	out, err := c.list.ListObjectsV2(ctx, input)
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Keys:  make([]string, 0, len(out.Contents)),
		Sizes: make([]int64, 0, len(out.Contents)),
	}
	for _, obj := range out.Contents {
		if obj.Key == nil {
			continue
		}
		page.Keys = append(page.Keys, *obj.Key)
		size := int64(0)
		if obj.Size != nil {
			size = *obj.Size
		}
		page.Sizes = append(page.Sizes, size)
	}

	if out.NextContinuationToken != nil && *out.NextContinuationToken != "" {
		page.ContinuationToken = *out.NextContinuationToken
		page.Truncated = true
	}

	return page, nil
}

// Get implements Client.Get by delegating to the s3manager Downloader, which
// internally parallelizes the transfer into byte-range GETs sized by
// PartSize and fanned out by Concurrency. dst receives one WriteAt call per
// completed range part.
func (c *S3Client) Get(ctx context.Context, bucket, key string, dst io.WriterAt) (int64, error) {
	return c.download.Download(ctx, dst, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
}
