// Package plugin provides the public API for drape search provider plugins.
// External plugins should import this package instead of internal packages.
package plugin

// PluginInfo contains metadata about a plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Type            string `json:"type"` // always "search"
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}
