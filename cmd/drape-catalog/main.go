// drape-catalog - JSON catalog search provider (drape plugin)
//
// Serves products from a local JSON catalog over the go-plugin RPC protocol.
// The catalog is a JSON array of products in the same shape drape prints with
// `drape search --json`.
//
// Build:
//   go build -o drape-catalog ./cmd/drape-catalog
//
// Usage:
//   DRAPE_CATALOG=./catalog.json drape search --plugin ./drape-catalog "linen dress"
//
// Environment:
//   DRAPE_CATALOG: catalog path (default: catalog.json beside the binary)

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmylchreest/drape/internal/search"
	"github.com/jmylchreest/drape/internal/version"
	"github.com/jmylchreest/drape/pkg/plugin"
)

// catalogProvider implements plugin.SearchProvider over a static catalog.
type catalogProvider struct {
	static *search.Static
}

// Search returns catalog products whose titles match the query.
func (p *catalogProvider) Search(ctx context.Context, req plugin.SearchRequest) ([]plugin.Product, error) {
	static := *p.static
	static.Limit = req.Limit

	products, err := static.Search(ctx, req.Query, req.Category)
	if err != nil {
		return nil, err
	}
	out := make([]plugin.Product, len(products))
	for i, prod := range products {
		out[i] = search.ToWire(prod)
	}
	return out, nil
}

// GetMetadata returns plugin metadata.
func (p *catalogProvider) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "drape-catalog",
		Type:            plugin.PluginName,
		Version:         version.Version,
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Search a local JSON product catalog",
		PluginProtocol:  string(plugin.PluginTypeGoPlugin),
	}
}

func catalogPath() string {
	if path := os.Getenv("DRAPE_CATALOG"); path != "" {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return "catalog.json"
	}
	return filepath.Join(filepath.Dir(exe), "catalog.json")
}

func main() {
	provider := &catalogProvider{static: &search.Static{}}

	// --plugin-info must work without a catalog present.
	if len(os.Args) < 2 || os.Args[1] != plugin.InfoFlag {
		static, err := search.LoadStatic(catalogPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "drape-catalog: %v\n", err)
			os.Exit(1)
		}
		provider.static = static
	}

	plugin.Serve(provider)
}
