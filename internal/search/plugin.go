package search

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/plugin/executor"
	"github.com/jmylchreest/drape/pkg/plugin"
)

// Provider is the host side of an external search provider.
type Provider interface {
	Search(ctx context.Context, req plugin.SearchRequest) ([]plugin.Product, error)
}

// PluginSearcher adapts an external provider to Searcher. Wire products are
// converted to catalog products and missing tags are derived from the title.
type PluginSearcher struct {
	provider Provider
	name     string
	limit    int
	logger   hclog.Logger
	close    func()
}

// NewPluginSearcher wraps provider. A limit of zero lets the provider decide.
func NewPluginSearcher(provider Provider, name string, limit int, logger hclog.Logger) *PluginSearcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PluginSearcher{provider: provider, name: name, limit: limit, logger: logger, close: func() {}}
}

// OpenPlugin starts the provider binary at path. Call Close when done.
func OpenPlugin(ctx context.Context, path string, limit int, logger hclog.Logger) (*PluginSearcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ex, err := executor.New(ctx, path, executor.WithLogger(logger.Named("plugin")))
	if err != nil {
		return nil, fmt.Errorf("failed to open search provider: %w", err)
	}
	s := NewPluginSearcher(ex, ex.Info().Name, limit, logger)
	s.close = ex.Close
	return s, nil
}

// Close stops the provider process, if any.
func (s *PluginSearcher) Close() {
	s.close()
}

// Search implements Searcher.
func (s *PluginSearcher) Search(ctx context.Context, query, category string) ([]catalog.Product, error) {
	s.logger.Debug("plugin search", "provider", s.name, "query", query, "category", category)

	raw, err := s.provider.Search(ctx, plugin.SearchRequest{Query: query, Category: category, Limit: s.limit})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("search %q: %w", query, ctx.Err())
		}
		return nil, &ProviderError{Provider: s.name, Err: err}
	}

	products := make([]catalog.Product, 0, len(raw))
	for _, p := range raw {
		if p.Title == "" {
			s.logger.Warn("dropping untitled product", "provider", s.name, "id", p.ID)
			continue
		}
		products = append(products, FromWire(p))
	}
	return products, nil
}

// FromWire converts a provider product into a catalog product.
func FromWire(p plugin.Product) catalog.Product {
	images := p.Images
	if len(images) == 0 && p.Image != "" {
		images = []string{p.Image}
	}
	return catalog.Analyze(catalog.Product{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		ImageURL:      firstNonEmpty(p.Image, firstOf(images)),
		ImageURLs:     images,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		PurchaseURL:   p.URL,
		Category:      catalog.ParseCategory(p.Category),
		Color:         catalog.ParseColor(p.Color),
		Style:         catalog.ParseStyle(p.Style),
	})
}

// ToWire converts a catalog product into the provider wire form.
func ToWire(p catalog.Product) plugin.Product {
	return plugin.Product{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         p.ImageURL,
		Images:        p.ImageURLs,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		URL:           p.PurchaseURL,
		Category:      string(p.Category),
		Color:         string(p.Color),
		Style:         string(p.Style),
	}
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
