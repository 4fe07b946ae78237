// Package storage provides object storage implementations for
// relocated assets.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	migrationapp "github.com/storekit/backend/internal/application/migration"
	infraconfig "github.com/storekit/backend/internal/infrastructure/config"
)

// Ensure S3AssetStore implements the AssetStore contract
var _ migrationapp.AssetStore = (*S3AssetStore)(nil)

// S3AssetStore stores relocated assets in any S3-compatible backend
// (AWS S3, MinIO, RustFS, ...)
type S3AssetStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// S3AssetStoreOption is a functional option for S3AssetStore
type S3AssetStoreOption func(*S3AssetStore)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3AssetStoreOption {
	return func(s *S3AssetStore) {
		s.logger = logger
	}
}

// NewS3AssetStore creates an asset store from configuration
func NewS3AssetStore(cfg *infraconfig.StorageConfig, opts ...S3AssetStoreOption) (*S3AssetStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimSuffix(endpoint, "/") + "/" + cfg.Bucket
	}

	store := &S3AssetStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3AssetStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
	}

	s.logger.Info("created asset bucket", zap.String("bucket", s.bucket))
	return nil
}

// Put uploads a blob at the given key
func (s *S3AssetStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %q: %w", key, err)
	}

	s.logger.Debug("uploaded asset",
		zap.String("key", key),
		zap.Int("size", len(body)),
	)
	return nil
}

// PublicURL returns the public URL for a stored key
func (s *S3AssetStore) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}
