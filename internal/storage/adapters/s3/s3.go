package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"videoforge/internal/config"
	"videoforge/internal/ports"
)

// client implements the ObjectStorage interface for AWS S3
type client struct {
	s3Client *s3.Client
	bucket   string
	logger   ports.Logger
	metrics  ports.Metrics
}

// New creates a new S3 storage client bound to the configured bucket
func New(cfg *config.StorageConfig, logger ports.Logger, metrics ports.Metrics) (ports.ObjectStorage, error) {
	awsCfg, err := buildAWSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
	})

	c := &client{
		s3Client: s3Client,
		bucket:   cfg.BucketOrPath,
		logger:   logger.WithFields(map[string]interface{}{"component": "s3_storage"}),
		metrics:  metrics.WithTags(map[string]string{"storage": "s3"}),
	}

	// Verify the bucket is reachable before accepting traffic
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		logger.Error("Failed to verify bucket existence", "error", err, "bucket", c.bucket)
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	logger.Info("S3 client initialized successfully", "bucket", c.bucket, "region", cfg.S3.Region)
	return c, nil
}

// Put stores an object in S3
func (c *client) Put(ctx context.Context, key string, reader io.Reader, metadata ports.ObjectMetadata) error {
	start := time.Now()

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if metadata.ContentType != "" {
		input.ContentType = aws.String(metadata.ContentType)
	}
	if len(metadata.UserMetadata) > 0 {
		input.Metadata = metadata.UserMetadata
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		c.logger.Error("Failed to put object", "error", err, "key", key)
		c.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "s3"})
		return fmt.Errorf("failed to put object: %w", err)
	}

	c.metrics.IncrementCounter("storage.put.success", nil)
	c.metrics.RecordHistogram("storage.put.duration_ms", float64(time.Since(start).Milliseconds()), nil)
	c.logger.Info("Object stored", "key", key, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Get retrieves an object from S3
func (c *client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	c.metrics.IncrementCounter("storage.get.attempts", nil)

	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			c.metrics.IncrementCounter("storage.get.errors", map[string]string{"error": "not_found"})
			return nil, fmt.Errorf("%w: %s", ports.ErrObjectNotFound, key)
		}
		c.logger.Error("Failed to get object", "error", err, "key", key)
		c.metrics.IncrementCounter("storage.get.errors", map[string]string{"error": "s3"})
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	c.metrics.IncrementCounter("storage.get.success", nil)
	return out.Body, nil
}

// Delete removes an object from S3
func (c *client) Delete(ctx context.Context, key string) error {
	c.metrics.IncrementCounter("storage.delete.attempts", nil)

	if _, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		c.logger.Error("Failed to delete object", "error", err, "key", key)
		c.metrics.IncrementCounter("storage.delete.errors", nil)
		return fmt.Errorf("failed to delete object: %w", err)
	}

	c.metrics.IncrementCounter("storage.delete.success", nil)
	return nil
}

// Exists checks if an object exists in S3
func (c *client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

// List returns objects whose keys start with prefix
func (c *client) List(ctx context.Context, prefix string) ([]ports.ObjectInfo, error) {
	c.metrics.IncrementCounter("storage.list.attempts", nil)

	var objects []ports.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			c.logger.Error("Failed to list objects", "error", err, "prefix", prefix)
			c.metrics.IncrementCounter("storage.list.errors", nil)
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			info := ports.ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}

	c.metrics.IncrementCounter("storage.list.success", nil)
	return objects, nil
}

// buildAWSConfig assembles AWS SDK configuration from service config
func buildAWSConfig(cfg *config.StorageConfig) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}

	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		))
	}

	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
