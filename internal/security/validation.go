// Package security provides input validation for remote fetches, plugin paths and
// archive restores.
package security

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrSizeLimit is returned by LimitedReader once its budget is spent.
var ErrSizeLimit = errors.New("size limit exceeded")

// URLPolicy controls which remote URLs ValidateURL accepts.
type URLPolicy struct {
	// AllowHTTP permits plain http URLs.
	AllowHTTP bool
	// AllowPrivate permits loopback, private and link-local hosts.
	AllowPrivate bool
}

// ValidateHTTPURL validates a URL for server-side downloads: HTTPS only, and never a
// local or private host.
func ValidateHTTPURL(urlStr string) error {
	return ValidateURL(urlStr, URLPolicy{})
}

// ValidateURL validates urlStr against policy.
func ValidateURL(urlStr string, policy URLPolicy) error {
	if urlStr == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "https":
	case "http":
		if !policy.AllowHTTP {
			return fmt.Errorf("only HTTPS URLs are allowed (got %s)", parsed.Scheme)
		}
	default:
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	host := strings.ToLower(parsed.Hostname())
	if !policy.AllowPrivate && isLocalOrPrivateHost(host) {
		return fmt.Errorf("URL cannot point to local or private hosts: %s", host)
	}

	return nil
}

// ValidatePluginPath ensures pluginPath stays inside baseDir.
func ValidatePluginPath(pluginPath, baseDir string) error {
	if pluginPath == "" {
		return fmt.Errorf("empty plugin path")
	}

	absPluginPath, err := filepath.Abs(filepath.Clean(pluginPath))
	if err != nil {
		return fmt.Errorf("invalid plugin path: %w", err)
	}
	absBaseDir, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base directory: %w", err)
	}

	if absPluginPath != absBaseDir && !strings.HasPrefix(absPluginPath, absBaseDir+string(filepath.Separator)) {
		return fmt.Errorf("plugin path must be within plugin directory (attempted path traversal)")
	}
	return nil
}

// LimitedReader fails with ErrSizeLimit instead of silently truncating, so a
// decompression bomb is reported rather than half-restored.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		// Probe for EOF so an input of exactly the limit still succeeds.
		var one [1]byte
		n, err := l.R.Read(one[:])
		if n == 0 && err != nil {
			return 0, err
		}
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader returns a reader that allows at most maxBytes from r.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{R: r, Remaining: maxBytes}
}

func isLocalOrPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		// Hostnames are resolved by the HTTP client; only literal addresses are checked here.
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified()
}
