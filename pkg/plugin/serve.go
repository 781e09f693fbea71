package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-plugin"
)

// Serve runs impl as a go-plugin search provider. When the process is started
// with InfoFlag it prints the plugin metadata and exits instead.
func Serve(impl SearchProvider) {
	if len(os.Args) > 1 && os.Args[1] == InfoFlag {
		if err := WriteInfo(os.Stdout, impl.GetMetadata()); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding plugin info: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &SearchProviderRPC{Impl: impl},
		},
	})
}

// WriteInfo encodes info as indented JSON.
func WriteInfo(w io.Writer, info PluginInfo) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// ServeJSON answers one json-stdio request: it reads a SearchRequest from in and
// writes a SearchResponse to out. Provider errors are reported in the response.
func ServeJSON(ctx context.Context, impl SearchProvider, in io.Reader, out io.Writer) error {
	var req SearchRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode search request: %w", err)
	}

	resp := SearchResponse{Products: []Product{}}
	products, err := impl.Search(ctx, req)
	if err != nil {
		resp.Error = err.Error()
	} else if products != nil {
		resp.Products = products
	}

	if err := json.NewEncoder(out).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode search response: %w", err)
	}
	return nil
}
