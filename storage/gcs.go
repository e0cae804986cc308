package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBackend stores renders in a Google Cloud Storage bucket, authenticated
// with a base64-encoded service account JSON key.
type GCSBackend struct {
	bucket string
	client *gcs.Client
}

// NewGCS builds the backend. The same service account key that authorizes
// uploads also signs retrieval URLs.
func NewGCS(bucket, credentialsBase64 string) (*GCSBackend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs backend requires a bucket")
	}

	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gcs credentials: %w", err)
	}

	client, err := gcs.NewClient(context.Background(), option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	return &GCSBackend{bucket: bucket, client: client}, nil
}

func (b *GCSBackend) Put(ctx context.Context, key string, reader io.Reader) error {
	wc := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(wc, reader); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write object %s to bucket %s: %w", key, b.bucket, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", key, err)
	}
	return nil
}

func (b *GCSBackend) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	url, err := b.client.Bucket(b.bucket).SignedURL(key, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign object %s: %w", key, err)
	}
	return url, nil
}
