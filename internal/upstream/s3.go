package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/metrics"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads s3://bucket/key upstreams.
type S3Fetcher struct {
	client objectGetter
	logger *slog.Logger
}

// NewS3Fetcher loads AWS configuration. A custom endpoint (MinIO and other
// S3-compatible stores) switches the client to path-style addressing.
func NewS3Fetcher(ctx context.Context, log *slog.Logger, cfg config.S3Config) (*S3Fetcher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Fetcher(log, client), nil
}

func newS3Fetcher(log *slog.Logger, client objectGetter) *S3Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &S3Fetcher{client: client, logger: log.With(slog.String("service", "upstream_s3"))}
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 url: %w", err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url needs bucket and key: %s", rawURL)
	}
	return bucket, key, nil
}

// Fetch issues GetObject with an optional Range.
func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string, rng *Range) (io.ReadCloser, Response, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, Response{}, err
	}
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if rng != nil {
		input.Range = aws.String(rng.Header())
	}

	start := time.Now()
	out, err := f.client.GetObject(ctx, input)
	if err != nil {
		metrics.ObserveUpstreamFetch("s3", time.Since(start), false)
		return nil, Response{}, classifyS3Error(err)
	}
	metrics.ObserveUpstreamFetch("s3", time.Since(start), true)

	resp := Response{
		StatusCode:    http.StatusOK,
		ContentLength: -1,
		ContentType:   aws.ToString(out.ContentType),
	}
	if out.ContentLength != nil {
		resp.ContentLength = *out.ContentLength
	}
	if rng != nil && aws.ToString(out.ContentRange) != "" {
		resp.StatusCode = http.StatusPartialContent
		resp.Ranged = true
	}
	f.logger.Debug("s3 object opened",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int64("content_length", resp.ContentLength),
	)
	return out.Body, resp, nil
}

func classifyS3Error(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return &FetchError{StatusCode: http.StatusNotFound}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() != 0 {
		return &FetchError{StatusCode: respErr.HTTPStatusCode()}
	}
	return fmt.Errorf("s3 get object: %w", err)
}
