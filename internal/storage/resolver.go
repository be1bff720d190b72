// Package storage turns dataset paths into readable sources. Plain paths are
// local files; "s3://bucket/key" paths are fetched from S3 behind a circuit
// breaker.
package storage

import (
	"context"
	"sync"

	"github.com/juman-j/book-recommender/internal/dataset"
)

// Resolver maps configured paths to dataset sources. The S3 client is only
// created the first time an s3:// path is resolved.
type Resolver struct {
	region  string
	breaker *Breaker

	mu        sync.Mutex
	client    ObjectAPI
	newClient func(ctx context.Context, region string) (ObjectAPI, error)
}

// NewResolver creates a resolver that talks to S3 in region
func NewResolver(region string) *Resolver {
	return &Resolver{
		region:  region,
		breaker: NewBreaker("s3-datasets", DefaultBreakerConfig()),
		newClient: func(ctx context.Context, region string) (ObjectAPI, error) {
			return NewS3Client(ctx, region)
		},
	}
}

// NewResolverWithClient creates a resolver around an existing client
func NewResolverWithClient(client ObjectAPI, breaker *Breaker) *Resolver {
	return &Resolver{client: client, breaker: breaker}
}

// Source returns the dataset source for path
func (r *Resolver) Source(ctx context.Context, path string) (dataset.Source, error) {
	bucket, key, ok := ParseS3URL(path)
	if !ok {
		return dataset.FileSource(path), nil
	}

	client, err := r.s3(ctx)
	if err != nil {
		return nil, err
	}
	return NewS3Source(client, r.breaker, bucket, key), nil
}

// Client returns the S3 client, creating it on first use
func (r *Resolver) Client(ctx context.Context) (ObjectAPI, error) {
	return r.s3(ctx)
}

func (r *Resolver) s3(ctx context.Context) (ObjectAPI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}
	client, err := r.newClient(ctx, r.region)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}
