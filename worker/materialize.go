package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"clipforge/models"
)

// ErrTransientRef marks a media locator that only ever existed inside the
// producing client (a blob: handle). These must be resolved to durable URLs
// before submission; one reaching the worker is an upstream contract
// violation, not an ordinary fetch failure.
var ErrTransientRef = errors.New("transient in-browser media reference")

var fetchClient = &http.Client{Timeout: 5 * time.Minute}

// materializeAssets fetches every referenced media asset into the scratch
// directory concurrently and rewrites the document's locators to the local
// paths. The first failure aborts the whole job; there are no partial
// renders.
func materializeAssets(ctx context.Context, doc *models.ExportDocument, dir string) error {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	localPaths := make(map[string]string, len(doc.MediaItems))

	for id, asset := range doc.MediaItems {
		g.Go(func() error {
			localPath, err := fetchAsset(ctx, id, asset, dir)
			if err != nil {
				return err
			}
			mu.Lock()
			localPaths[id] = localPath
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for id, localPath := range localPaths {
		asset := doc.MediaItems[id]
		asset.URL = localPath
		doc.MediaItems[id] = asset
	}
	return nil
}

// fetchAsset writes one asset to scratch and returns its local path.
func fetchAsset(ctx context.Context, id string, asset models.MediaAsset, dir string) (string, error) {
	locator := asset.URL
	switch {
	case strings.HasPrefix(locator, "blob:"):
		return "", fmt.Errorf("media %s: %w", id, ErrTransientRef)
	case strings.HasPrefix(locator, "data:"):
		return decodeDataURI(id, asset, dir)
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return downloadURL(ctx, id, asset, dir)
	default:
		return "", fmt.Errorf("media %s: unsupported locator scheme in %q", id, locator)
	}
}

func downloadURL(ctx context.Context, id string, asset models.MediaAsset, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return "", fmt.Errorf("media %s: invalid url: %w", id, err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("media %s: fetch failed: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("media %s: fetch returned status %d", id, resp.StatusCode)
	}

	localPath := filepath.Join(dir, id+assetExtension(asset))
	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("media %s: %w", id, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("media %s: write failed: %w", id, err)
	}
	return localPath, nil
}

// decodeDataURI decodes an embedded data payload ("data:<mime>;base64,...")
// straight onto scratch.
func decodeDataURI(id string, asset models.MediaAsset, dir string) (string, error) {
	_, payload, found := strings.Cut(asset.URL, ",")
	if !found {
		return "", fmt.Errorf("media %s: malformed data URI", id)
	}

	var data []byte
	var err error
	if strings.Contains(asset.URL[:len(asset.URL)-len(payload)], ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var decoded string
		decoded, err = url.QueryUnescape(payload)
		data = []byte(decoded)
	}
	if err != nil {
		return "", fmt.Errorf("media %s: failed to decode data URI: %w", id, err)
	}

	localPath := filepath.Join(dir, id+assetExtension(asset))
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return "", fmt.Errorf("media %s: %w", id, err)
	}
	return localPath, nil
}

// assetExtension picks a filename extension from the source URL, falling
// back to a default per asset kind.
func assetExtension(asset models.MediaAsset) string {
	if u, err := url.Parse(asset.URL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 5 {
			return ext
		}
	}
	switch asset.Type {
	case models.MediaImage:
		return ".png"
	case models.MediaAudio:
		return ".mp3"
	default:
		return ".mp4"
	}
}
