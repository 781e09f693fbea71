// Package image provides utilities for loading and processing images.
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/drape/internal/security"
	httputil "github.com/jmylchreest/drape/internal/util/http"
	"github.com/jmylchreest/drape/internal/util/imagecache"
)

// MaxPixels is the largest image, in pixels, the loaders will decode.
const MaxPixels = 64 << 20

// ErrTooLarge is returned for images whose declared size exceeds MaxPixels.
var ErrTooLarge = errors.New("image exceeds the pixel limit")

// decode reads the image header first and refuses oversized images before any
// pixel buffer is allocated.
func decode(r io.ReadSeeker) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrTooLarge, format, cfg.Width, cfg.Height)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind image: %w", err)
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, nil
}

// Decoder decodes an image from a source reference: a local path, an http(s) URL or
// a data URL.
type Decoder interface {
	Decode(ctx context.Context, src string) (image.Image, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, src string) (image.Image, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return decode(file)
}

// DecodeBytes decodes raw image bytes.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	return decode(bytes.NewReader(data))
}

// IsURL reports whether src is an http(s) URL.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// IsDataURL reports whether src is a data URL.
func IsDataURL(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// ParseDataURL extracts the payload and media type of a base64 data URL such as
// "data:image/png;base64,iVBOR...". A bare base64 string is also accepted.
func ParseDataURL(src string) (data []byte, mediaType string, err error) {
	payload := src
	if IsDataURL(src) {
		meta, rest, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
		if !ok {
			return nil, "", fmt.Errorf("malformed data URL")
		}
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("only base64 data URLs are supported")
		}
		mediaType = strings.TrimSuffix(meta, ";base64")
		payload = rest
	}

	data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image data: %w", err)
	}
	return data, mediaType, nil
}

// SmartLoader decodes images from local files, http(s) URLs and data URLs.
type SmartLoader struct {
	fileLoader *FileLoader

	// Timeout bounds remote fetches. Zero uses the http package default.
	Timeout time.Duration
	// CacheDir, when set, keeps downloaded images on disk and reuses them.
	CacheDir string
	// Restricted rejects non-HTTPS and private-network URLs and local files.
	// Servers set it so request bodies cannot read the host filesystem.
	Restricted bool
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{fileLoader: NewFileLoader()}
}

// Decode implements Decoder.
func (l *SmartLoader) Decode(ctx context.Context, src string) (image.Image, error) {
	switch {
	case IsDataURL(src):
		data, _, err := ParseDataURL(src)
		if err != nil {
			return nil, err
		}
		return DecodeBytes(data)
	case IsURL(src):
		return l.loadFromURL(ctx, src)
	case l.Restricted:
		return nil, fmt.Errorf("local image paths are not allowed")
	default:
		if l.fileLoader == nil {
			l.fileLoader = NewFileLoader()
		}
		return l.fileLoader.Load(src)
	}
}

func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	if l.Restricted {
		if err := security.ValidateHTTPURL(url); err != nil {
			return nil, err
		}
	}

	if l.CacheDir != "" {
		path, err := imagecache.DownloadAndCache(ctx, url, imagecache.CacheOptions{CacheDir: l.CacheDir, Timeout: l.Timeout})
		if err != nil {
			return nil, err
		}
		return NewFileLoader().Load(path)
	}

	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{Timeout: l.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}
	return DecodeBytes(data)
}
