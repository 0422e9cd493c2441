package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/metrics"
	"go.uber.org/zap"
)

const defaultRegion = "us-east-1"

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// StorageClient uploads generated artifacts to an S3-compatible bucket
type StorageClient struct {
	s3Client   putObjectAPI
	bucketName string
	endpoint   string
}

// Options configures NewStorageClient. An empty Endpoint targets AWS S3.
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

// NewStorageClient creates a new S3-compatible storage client
func NewStorageClient(opts Options) (*StorageClient, error) {
	if opts.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}

	region := opts.Region
	if region == "" {
		region = defaultRegion
	}
	endpoint := strings.TrimRight(opts.Endpoint, "/")

	s3Opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"", // session token not needed
		),
	}
	if endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(endpoint)
		s3Opts.UsePathStyle = true
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", opts.BucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &StorageClient{
		s3Client:   s3.New(s3Opts),
		bucketName: opts.BucketName,
		endpoint:   endpoint,
	}, nil
}

// Upload stores data under key and returns the object's URL
func (s *StorageClient) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	start := time.Now()
	operation := "putObject"
	key = strings.TrimLeft(key, "/")

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=3600"),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL for key
func (s *StorageClient) ObjectURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.endpoint == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucketName, key)
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, key)
}
