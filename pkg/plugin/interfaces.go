package plugin

import (
	"context"
)

// SearchProvider is the interface that search plugins must implement for go-plugin RPC.
type SearchProvider interface {
	// Search returns products matching the request. No results is an empty
	// slice, not an error.
	Search(ctx context.Context, req SearchRequest) ([]Product, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}
