package service

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/forkful/forkful-backend/config"
)

// S3MediaStore stores recipe and avatar images in S3. The rest of the
// backend only ever sees the returned URL and the opaque key.
type S3MediaStore struct {
	s3Config *config.S3Config
}

// NewS3MediaStore creates a new S3MediaStore instance
func NewS3MediaStore(s3Config *config.S3Config) *S3MediaStore {
	return &S3MediaStore{s3Config: s3Config}
}

var _ MediaStore = (*S3MediaStore)(nil)

// Put uploads an object and returns its public URL.
func (s *S3MediaStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

// Delete removes an object by key.
func (s *S3MediaStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
