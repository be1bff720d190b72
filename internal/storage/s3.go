package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/juman-j/book-recommender/internal/telemetry"
)

const s3Scheme = "s3://"

// ObjectAPI is the part of the S3 client the dataset store uses. It lets
// tests swap in a fake.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ ObjectAPI = (*s3.Client)(nil)

// NewS3Client creates an S3 client from the default AWS credential chain.
// Requests are traced through an instrumented HTTP client.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
			ServiceName: "s3",
			Timeout:     time.Minute,
		})
	}), nil
}

// ParseS3URL splits "s3://bucket/key" into its parts. ok is false for any
// other path.
func ParseS3URL(path string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(path, s3Scheme) {
		return "", "", false
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(path, s3Scheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// S3Source reads a dataset object from S3. It implements dataset.Source.
type S3Source struct {
	client  ObjectAPI
	breaker *Breaker
	bucket  string
	key     string
}

// NewS3Source creates a source for bucket/key whose reads go through breaker
func NewS3Source(client ObjectAPI, breaker *Breaker, bucket, key string) *S3Source {
	return &S3Source{client: client, breaker: breaker, bucket: bucket, key: key}
}

func (s *S3Source) Name() string {
	return s3Scheme + s.bucket + "/" + s.key
}

// Open fetches the object. The breaker only covers the request itself; body
// read errors surface from the returned reader.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	ctx, span := telemetry.GetPipelineEvents().TraceDatasetRead(ctx, "s3", s.Name())
	defer span.End()

	out, err := s.breaker.Execute(func() (any, error) {
		return s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key),
		})
	})
	if err != nil {
		telemetry.RecordStageError(span, err)
		return nil, fmt.Errorf("failed to get %s: %w", s.Name(), err)
	}

	obj, ok := out.(*s3.GetObjectOutput)
	if !ok || obj.Body == nil {
		return nil, fmt.Errorf("failed to get %s: empty response", s.Name())
	}
	return obj.Body, nil
}

// UploadResult contains the result of an S3 upload
type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Size   int64  `json:"size"`
}

// UploadDataset writes a CSV dataset to bucket/key
func UploadDataset(ctx context.Context, client ObjectAPI, bucket, key string, data []byte) (*UploadResult, error) {
	now := time.Now()
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(getContentType(key)),
		Metadata: map[string]string{
			"upload-timestamp": now.Format(time.RFC3339),
			"file-type":        "dataset",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:    key,
		URL:    s3Scheme + bucket + "/" + key,
		Bucket: bucket,
		Size:   int64(len(data)),
	}, nil
}

// getContentType returns the MIME type for a dataset key
func getContentType(key string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(key), ".csv"):
		return "text/csv"
	case strings.HasSuffix(strings.ToLower(key), ".tsv"):
		return "text/tab-separated-values"
	default:
		return "application/octet-stream"
	}
}
