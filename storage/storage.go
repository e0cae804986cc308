package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"clipforge/config"
)

// SignedURLTTL is the validity window for download references issued after
// a successful render.
const SignedURLTTL = 7 * 24 * time.Hour

// Backend publishes finished renders and issues time-limited retrieval
// references for them.
type Backend interface {
	// Put streams an object to durable storage under the given key.
	Put(ctx context.Context, key string, reader io.Reader) error
	// SignedURL returns a retrieval reference for a stored object that
	// stays valid for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ObjectKey is the storage path for a job's rendered file:
// {user}/{job}/export.mp4.
func ObjectKey(userID, jobID string) string {
	return userID + "/" + jobID + "/export.mp4"
}

// New constructs the configured output backend.
func New(backendType string) (Backend, error) {
	switch backendType {
	case "local":
		return NewLocal(config.GetServeDir(), config.GetPublicBaseURL(), config.GetSigningSecret()), nil
	case "s3":
		return NewS3(config.GetS3Bucket(), config.GetS3Region(), config.GetS3AccessKey(), config.GetS3SecretKey())
	case "gcs":
		return NewGCS(config.GetGCSBucket(), config.GetGCSCredentials())
	default:
		return nil, fmt.Errorf("unknown storage backend type: %s", backendType)
	}
}
