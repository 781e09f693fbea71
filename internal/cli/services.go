package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/drape/internal/cloud"
	"github.com/jmylchreest/drape/internal/genai"
	"github.com/jmylchreest/drape/internal/search"
)

// errNoSearch is returned when no product search backend is configured.
var errNoSearch = errors.New("no product search configured: set RAPIDAPI_KEY, DRAPE_CATALOG or DRAPE_SEARCH_PLUGIN, or pass --catalog or --plugin")

// searchBackend is the product search selected from flags and configuration.
type searchBackend struct {
	searcher search.Searcher
	details  search.DetailsProvider
	close    func()
}

// openSearch picks a provider: a plugin, then a local catalog, then RapidAPI.
// Explicit paths override the configuration.
func openSearch(ctx context.Context, pluginPath, catalogPath string, limit int) (*searchBackend, error) {
	if pluginPath == "" {
		pluginPath = cfg.SearchPlugin
	}
	if catalogPath == "" {
		catalogPath = cfg.CatalogPath
	}
	log := logger.Named("search")

	var b searchBackend
	switch {
	case pluginPath != "":
		ps, err := search.OpenPlugin(ctx, pluginPath, limit, log)
		if err != nil {
			return nil, err
		}
		b.searcher, b.close = ps, ps.Close
	case catalogPath != "":
		static, err := search.LoadStatic(catalogPath)
		if err != nil {
			return nil, err
		}
		static.Limit = limit
		b.searcher, b.details = static, static
	case cfg.RapidAPIKey != "":
		r := search.NewRapidAPI(search.RapidAPIConfig{
			APIKey:           cfg.RapidAPIKey,
			Host:             cfg.RapidAPIHost,
			Country:          cfg.Country,
			SortBy:           cfg.SortBy,
			ProductCondition: cfg.ProductCondition,
			Logger:           log,
		})
		b.searcher, b.details = r, r
	default:
		return nil, errNoSearch
	}

	if cfg.SearchTimeout > 0 {
		b.searcher = search.WithTimeout(b.searcher, cfg.SearchTimeout)
	}
	if b.close == nil {
		b.close = func() {}
	}
	return &b, nil
}

// openGenerator returns the generation client, or genai.ErrNotConfigured.
func openGenerator(ctx context.Context) (*genai.Client, error) {
	return genai.New(ctx, genai.Config{
		APIKey:     cfg.GoogleAPIKey,
		Backend:    cfg.GenAIBackend,
		ImageModel: cfg.ImageModel,
		TextModel:  cfg.TextModel,
	}, logger.Named("genai"))
}

// openCloudinary returns the Cloudinary client, or cloud.ErrNotConfigured.
func openCloudinary() (*cloud.Cloudinary, error) {
	return cloud.NewCloudinary(cfg.CloudinaryURL, logger.Named("cloudinary"))
}

// openPublisher returns the named publisher and a close function.
func openPublisher(ctx context.Context, target string) (cloud.Publisher, func(), error) {
	switch target {
	case "cloudinary":
		c, err := openCloudinary()
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	case "gcs":
		p, err := cloud.NewGCSPublisher(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {
			if err := p.Close(); err != nil {
				logger.Warn("failed to close storage client", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown publish target %q (valid targets: cloudinary, gcs)", target)
	}
}
