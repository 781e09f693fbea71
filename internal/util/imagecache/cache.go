// Package imagecache downloads remote images once and keeps them on disk.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	httputil "github.com/jmylchreest/drape/internal/util/http"
)

// CacheOptions configures image caching behavior.
type CacheOptions struct {
	// CacheDir is the directory where images will be cached.
	// If empty, defaults to <user cache dir>/drape/images.
	CacheDir string

	// Filename overrides the hash-derived cache filename.
	Filename string

	// AllowOverwrite forces a fresh download even when a cached copy exists.
	AllowOverwrite bool

	// Timeout bounds the download.
	Timeout time.Duration
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "drape", "images"), nil
	}
	return filepath.Join(cacheDir, "drape", "images"), nil
}

// Filename returns the deterministic cache filename for url: the first 16 bytes of
// its SHA-256 in hex plus the URL's extension, or ".jpg" when it has none.
func Filename(url string) string {
	hash := sha256.Sum256([]byte(url))

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return fmt.Sprintf("%x%s", hash[:16], ext)
}

// DownloadAndCache downloads a remote image and saves it to the cache directory.
// Returns the local file path where the image was saved.
func DownloadAndCache(ctx context.Context, url string, opts CacheOptions) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		cacheDir = defaultDir
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	filename := opts.Filename
	if filename == "" {
		filename = Filename(url)
	}
	cachedPath := filepath.Join(cacheDir, filename)

	if !opts.AllowOverwrite {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{Timeout: opts.Timeout})
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	// Write then rename so a concurrent reader never sees a partial file.
	tmp, err := os.CreateTemp(cacheDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachedPath); err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}

	return cachedPath, nil
}
