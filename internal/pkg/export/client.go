package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"
)

// Client wraps the S3 client with export-specific functionality
type Client struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	config        *Config
}

// NewClient creates a new S3 export client
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("S3 export is disabled")
	}

	// Create AWS config
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client
	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services need path-style URLs
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	client := &Client{
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		config:        cfg,
	}

	// Test connection
	if err := client.testConnection(); err != nil {
		return nil, fmt.Errorf("failed to connect to S3: %w", err)
	}

	log.Infof("[Export] Successfully initialized S3 client for bucket: %s", cfg.GetBucketName())
	return client, nil
}

// testConnection tests the S3 connection by checking if the bucket exists
func (c *Client) testConnection() error {
	ctx := context.Background()
	bucketName := c.config.GetBucketName()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})

	if err != nil {
		// If bucket doesn't exist, try to create it (for development)
		if GetAppEnv() != "prod" {
			log.Warnf("[Export] Bucket %s not found, attempting to create it", bucketName)
			return c.createBucket(bucketName)
		}
		return fmt.Errorf("bucket %s not accessible: %w", bucketName, err)
	}

	return nil
}

// createBucket creates a new S3 bucket (dev/staging only)
func (c *Client) createBucket(bucketName string) error {
	ctx := context.Background()

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}

	// For AWS regions other than us-east-1, we need to specify the location constraint
	if c.config.EndpointURL == "" && c.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.config.Region),
		}
	}

	_, err := c.s3Client.CreateBucket(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}

	log.Infof("[Export] Successfully created bucket: %s", bucketName)
	return nil
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	BucketName  string
	ObjectKey   string
	Size        int64
	ContentType string
}

// UploadBundle uploads a serialized export bundle to S3
func (c *Client) UploadBundle(ctx context.Context, objectKey string, data []byte) (*UploadResult, error) {
	bucketName := c.config.GetBucketName()
	contentType := "application/json"

	log.Infof("[Export] Starting upload: s3://%s/%s (Size: %d bytes)", bucketName, objectKey, len(data))

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"upload-source": "postwise-export",
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	result := &UploadResult{
		BucketName:  bucketName,
		ObjectKey:   objectKey,
		Size:        int64(len(data)),
		ContentType: contentType,
	}

	log.Infof("[Export] Successfully uploaded: s3://%s/%s", bucketName, objectKey)
	return result, nil
}

// PresignDownload generates a time-limited download URL for an export bundle
func (c *Client) PresignDownload(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.GetBucketName()),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return req.URL, nil
}

// DeleteBundle deletes an export bundle from S3
func (c *Client) DeleteBundle(ctx context.Context, objectKey string) error {
	bucketName := c.config.GetBucketName()

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})

	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}

	log.Infof("[Export] Successfully deleted: s3://%s/%s", bucketName, objectKey)
	return nil
}

// BundleExists checks if an export bundle exists in S3
func (c *Client) BundleExists(ctx context.Context, objectKey string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.GetBucketName()),
		Key:    aws.String(objectKey),
	})

	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}
