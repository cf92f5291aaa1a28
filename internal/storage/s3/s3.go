// Package s3 implements storage.Storage on Amazon S3 and S3-compatible services.
// Directories do not exist in S3; they are implied by object key prefixes.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/shineum/mailsink-lite/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// contentTypes covers the artifact extensions the sink writes.
var contentTypes = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".json": "application/json",
}

// Client is the subset of the S3 API used by Storage.
// Used for testing with mock implementations.
type Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3aws.HeadBucketInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadBucketOutput, error)
}

// Config holds the configuration for creating a Storage.
type Config struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string // for MinIO, LocalStack and similar
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// Storage writes artifacts as objects in a single bucket.
type Storage struct {
	client Client
	bucket string
	prefix string
}

// New creates an S3 storage, loading AWS configuration from the default
// chain unless static credentials are given.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("%w: bucket and region are required", storage.ErrInvalidConfig)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3aws.NewFromConfig(awsCfg, func(o *s3aws.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient creates a Storage with a custom client, used for testing.
func NewWithClient(client Client, bucket, prefix string) *Storage {
	return &Storage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// MkdirAll only validates dir; prefixes come into existence with the first
// object written under them.
func (s *Storage) MkdirAll(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.key(dir); err != nil {
		return err
	}
	return nil
}

// WriteFile uploads data as the object for name, replacing any previous one.
func (s *Storage) WriteFile(ctx context.Context, name string, data []byte) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	input := &s3aws.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if ct, ok := contentTypes[path.Ext(key)]; ok {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return classifyError(err, "put object "+key)
	}
	return nil
}

// Ping verifies the bucket exists and is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3aws.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return classifyError(err, "head bucket "+s.bucket)
	}
	return nil
}

// Name returns the backend name.
func (s *Storage) Name() string {
	return "s3"
}

// key maps a slash-separated path onto an object key under the prefix.
func (s *Storage) key(name string) (string, error) {
	cleaned := strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if cleaned == "" {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidPath, name)
	}
	if s.prefix == "" {
		return cleaned, nil
	}
	return s.prefix + "/" + cleaned, nil
}

// classifyError maps S3 errors onto storage sentinel errors, keeping the
// original error in the chain.
func classifyError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%s: %w: %w", operation, storage.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%s: %w: %w", operation, storage.ErrAccessDenied, err)
		case "NoSuchBucket", "NotFound":
			return fmt.Errorf("%s: %w: %w", operation, storage.ErrNotFound, err)
		default:
			return fmt.Errorf("%s failed (code: %s): %w", operation, apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
