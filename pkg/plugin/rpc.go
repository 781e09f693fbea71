package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// SearchProviderRPC implements the go-plugin Plugin interface for search providers.
type SearchProviderRPC struct {
	plugin.Plugin
	Impl SearchProvider
}

// Server returns an RPC server for this plugin.
func (p *SearchProviderRPC) Server(*plugin.MuxBroker) (any, error) {
	return &SearchProviderRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *SearchProviderRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &SearchProviderRPCClient{client: c}, nil
}

// SearchProviderRPCServer is the RPC server implementation for search providers.
type SearchProviderRPCServer struct {
	Impl SearchProvider
}

// Search implements the RPC method for product search.
func (s *SearchProviderRPCServer) Search(req SearchRequest, resp *[]Product) error {
	products, err := s.Impl.Search(context.Background(), req)
	if err != nil {
		return err
	}
	if products == nil {
		products = []Product{}
	}
	*resp = products
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *SearchProviderRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// SearchProviderRPCClient is the RPC client implementation for search providers.
type SearchProviderRPCClient struct {
	client *rpc.Client
}

// Search calls the remote Search method. The call is abandoned when ctx ends;
// the plugin process keeps running until the host kills it.
func (c *SearchProviderRPCClient) Search(ctx context.Context, req SearchRequest) ([]Product, error) {
	var products []Product
	call := c.client.Go("Plugin.Search", req, &products, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.Done:
	}
	if call.Error != nil {
		return nil, &RPCError{Message: call.Error.Error()}
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *SearchProviderRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
