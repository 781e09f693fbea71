// Package executor runs search provider plugins regardless of their underlying
// protocol (go-plugin RPC or JSON-stdio).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/drape/internal/plugin/protocol"
	drapeplugin "github.com/jmylchreest/drape/pkg/plugin"
)

// PluginExecutor runs searches against one provider binary.
type PluginExecutor struct {
	path   string
	info   protocol.PluginInfo
	kind   protocol.PluginType
	runner ProcessRunner
	logger hclog.Logger

	mu        sync.Mutex
	client    *plugin.Client
	rpcClient *drapeplugin.SearchProviderRPCClient
}

// Option configures a PluginExecutor.
type Option func(*PluginExecutor)

// WithRunner replaces the process runner used for detection and JSON-stdio calls.
func WithRunner(r ProcessRunner) Option {
	return func(e *PluginExecutor) { e.runner = r }
}

// WithLogger sets the logger handed to the go-plugin client.
func WithLogger(l hclog.Logger) Option {
	return func(e *PluginExecutor) { e.logger = l }
}

// New queries the provider with --plugin-info and returns an executor for it.
// go-plugin providers are started lazily on the first search.
func New(ctx context.Context, pluginPath string, opts ...Option) (*PluginExecutor, error) {
	e := &PluginExecutor{
		path:   pluginPath,
		runner: NewRealProcessRunner(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	detectCtx, cancel := context.WithTimeout(ctx, protocol.DetectTimeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(detectCtx, pluginPath, []string{drapeplugin.InfoFlag}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin %s: %w%s", pluginPath, err, stderrSuffix(stderr))
	}
	result, err := protocol.ParseInfo(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}

	e.info = result.PluginInfo
	e.kind = result.Type
	e.logger.Debug("detected search provider", "path", pluginPath, "name", e.info.Name, "protocol", e.kind)
	return e, nil
}

// Info returns the metadata the provider reported.
func (e *PluginExecutor) Info() protocol.PluginInfo {
	return e.info
}

// Protocol returns the detected protocol.
func (e *PluginExecutor) Protocol() protocol.PluginType {
	return e.kind
}

// Search runs one query through the provider.
func (e *PluginExecutor) Search(ctx context.Context, req drapeplugin.SearchRequest) ([]drapeplugin.Product, error) {
	switch e.kind {
	case protocol.PluginTypeGoPlugin:
		return e.searchGoPlugin(ctx, req)
	case protocol.PluginTypeJSON:
		return e.searchJSON(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", e.kind)
	}
}

// Close kills a running go-plugin provider.
func (e *PluginExecutor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

// --- Go-Plugin RPC ---

func (e *PluginExecutor) getRPCClient() (*drapeplugin.SearchProviderRPCClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rpcClient != nil && e.client != nil && !e.client.Exited() {
		return e.rpcClient, nil
	}

	e.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: protocol.Handshake,
		Plugins: map[string]plugin.Plugin{
			drapeplugin.PluginName: &drapeplugin.SearchProviderRPC{},
		},
		Cmd:              exec.Command(e.path), // #nosec G204 -- provider path comes from user configuration
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(drapeplugin.PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*drapeplugin.SearchProviderRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}
	e.rpcClient = client
	return client, nil
}

func (e *PluginExecutor) searchGoPlugin(ctx context.Context, req drapeplugin.SearchRequest) ([]drapeplugin.Product, error) {
	client, err := e.getRPCClient()
	if err != nil {
		return nil, err
	}
	return client.Search(ctx, req)
}

// --- JSON-stdio ---

func (e *PluginExecutor) searchJSON(ctx context.Context, req drapeplugin.SearchRequest) ([]drapeplugin.Product, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	stdout, stderr, err := e.runner.Run(ctx, e.path, nil, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("plugin execution failed: %w%s", err, stderrSuffix(stderr))
	}

	return decodeResponse(stdout)
}

// decodeResponse accepts a SearchResponse object or a bare product array.
func decodeResponse(stdout []byte) ([]drapeplugin.Product, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var products []drapeplugin.Product
		if err := json.Unmarshal(trimmed, &products); err == nil {
			return nonNil(products), nil
		}
	}

	var resp drapeplugin.SearchResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse plugin output: %w\nOutput: %s", err, stdout)
	}
	if resp.Error != "" {
		return nil, &drapeplugin.RPCError{Message: resp.Error}
	}
	return nonNil(resp.Products), nil
}

func nonNil(products []drapeplugin.Product) []drapeplugin.Product {
	if products == nil {
		return []drapeplugin.Product{}
	}
	return products
}

func stderrSuffix(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return ""
	}
	return "\nStderr: " + msg
}
