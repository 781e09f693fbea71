package protocol

import (
	"github.com/jmylchreest/drape/pkg/plugin"
)

// Handshake is the go-plugin handshake shared with pkg/plugin.
//
// go-plugin only compares a single uint, the major protocol version. Minor and
// patch compatibility is checked from --plugin-info via IsCompatible.
var Handshake = plugin.Handshake

// PluginType is the communication protocol of a provider binary.
type PluginType = plugin.PluginType

const (
	PluginTypeGoPlugin = plugin.PluginTypeGoPlugin
	PluginTypeJSON     = plugin.PluginTypeJSON
)
