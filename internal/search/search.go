// Package search provides product search backends. Every backend maps its upstream
// schema into catalog.Product and returns an empty slice, not an error, when nothing
// matches.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/drape/internal/catalog"
)

// Searcher looks up products for a free-text query. Category is optional and passed
// through to providers that support category filtering.
type Searcher interface {
	Search(ctx context.Context, query, category string) ([]catalog.Product, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query, category string) ([]catalog.Product, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query, category string) ([]catalog.Product, error) {
	return f(ctx, query, category)
}

// DetailsProvider is implemented by backends that can fetch a single product by ID.
type DetailsProvider interface {
	Details(ctx context.Context, id string) (*catalog.Product, error)
}

// ErrProductNotFound is returned by Details when the provider has no such product.
var ErrProductNotFound = errors.New("product not found")

// ProviderError reports a transport, auth or upstream failure from a search provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s search failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s search failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err came from a search provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

type timeoutSearcher struct {
	next    Searcher
	timeout time.Duration
}

// WithTimeout bounds every call to s by d. A non-positive d returns s unchanged.
func WithTimeout(s Searcher, d time.Duration) Searcher {
	if d <= 0 {
		return s
	}
	return &timeoutSearcher{next: s, timeout: d}
}

func (t *timeoutSearcher) Search(ctx context.Context, query, category string) ([]catalog.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		products []catalog.Product
		err      error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{nil, fmt.Errorf("search %q panicked: %v", query, r)}
			}
		}()
		p, err := t.next.Search(ctx, query, category)
		done <- result{p, err}
	}()

	select {
	case r := <-done:
		return r.products, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("search %q: %w", query, ctx.Err())
	}
}
