package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backend stores renders in an S3 bucket and issues presigned GET URLs.
type S3Backend struct {
	bucket    string
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

// NewS3 builds a self-contained S3 backend from static credentials.
func NewS3(bucket, region, accessKey, secretKey string) (*S3Backend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 backend requires a bucket")
	}

	creds := credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
	client := s3.New(s3.Options{
		Region:      region,
		Credentials: creds,
	})

	return &S3Backend{
		bucket:    bucket,
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
	}, nil
}

func (b *S3Backend) Put(ctx context.Context, key string, reader io.Reader) error {
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, b.bucket, err)
	}
	return nil
}

func (b *S3Backend) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return req.URL, nil
}
