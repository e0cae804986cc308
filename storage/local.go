package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipforge/signing"
)

// LocalBackend stores renders on the local filesystem under the serve
// directory. Retrieval goes through the HTTP download route, gated by a
// signed token carrying the object key.
type LocalBackend struct {
	serveDir string
	baseURL  string
	secret   []byte
}

func NewLocal(serveDir, baseURL string, secret []byte) *LocalBackend {
	return &LocalBackend{
		serveDir: serveDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   secret,
	}
}

func (b *LocalBackend) Put(_ context.Context, key string, reader io.Reader) error {
	fullPath, err := b.ObjectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories for %s: %w", key, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	return nil
}

func (b *LocalBackend) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	token, err := signing.CreateDownloadToken(key, b.secret, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to create download token for %s: %w", key, err)
	}
	return b.baseURL + "/download?token=" + url.QueryEscape(token), nil
}

// ObjectPath resolves an object key to its path under the serve directory,
// rejecting keys that would escape it.
func (b *LocalBackend) ObjectPath(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(b.serveDir, cleaned), nil
}
