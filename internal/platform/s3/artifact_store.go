// Package s3 implements artifact storage against any S3-compatible
// endpoint (AWS, Supabase Storage, MinIO).
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
)

// S3ArtifactStore implements storage.ArtifactStore on the AWS SDK.
type S3ArtifactStore struct {
	client *s3.S3
	bucket string
}

// NewS3ArtifactStore creates a new S3ArtifactStore from storage config.
// Path-style addressing keeps custom endpoints working.
func NewS3ArtifactStore(cfg config.StorageConfig) (*S3ArtifactStore, error) {
	awsConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3ArtifactStore{
		client: s3.New(sess),
		bucket: cfg.Bucket,
	}, nil
}

// Upload writes the artifact under the given key.
func (s *S3ArtifactStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact %s: %w", key, err)
	}
	return nil
}
