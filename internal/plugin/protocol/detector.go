package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/drape/pkg/plugin"
)

// DetectTimeout bounds the --plugin-info query.
const DetectTimeout = 5 * time.Second

// PluginInfo is an alias of the public plugin.PluginInfo.
type PluginInfo = plugin.PluginInfo

// DetectorResult describes a provider binary's protocol.
type DetectorResult struct {
	Type             PluginType
	SupportsGoPlugin bool
	PluginInfo       PluginInfo
}

// ParseInfo decodes --plugin-info output and checks its protocol version.
// An empty plugin_protocol means json-stdio.
func ParseInfo(output []byte) (*DetectorResult, error) {
	var info PluginInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse plugin info: %w", err)
	}
	if strings.TrimSpace(info.Name) == "" {
		return nil, fmt.Errorf("plugin info has no name")
	}

	result := &DetectorResult{PluginInfo: info}
	switch PluginType(info.PluginProtocol) {
	case PluginTypeGoPlugin:
		result.Type = PluginTypeGoPlugin
		result.SupportsGoPlugin = true
	case PluginTypeJSON, "":
		result.Type = PluginTypeJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	if info.ProtocolVersion != "" {
		if ok, err := IsCompatible(info.ProtocolVersion); !ok {
			return nil, fmt.Errorf("plugin %s: %w", info.Name, err)
		}
	}

	return result, nil
}
