package channels

import (
	"deskpilot/pkg/api"
	"deskpilot/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

// ChannelFactory defines the abstract interface for platform-specific
// channel creators. New operator surfaces (e.g. Discord, Slack) plug in
// here without touching the gateway core.
type ChannelFactory interface {
	// Create instantiates a concrete Channel implementation from its raw
	// config section and the shared system parameters.
	Create(rawConfig jsoniter.RawMessage, system *config.SystemConfig) (api.Channel, error)
}

// channelRegistry maps platform names (e.g. "telegram") to their factory
// implementations.
var channelRegistry = make(map[string]ChannelFactory)

// RegisterChannel adds a ChannelFactory to the global registry. Called
// from the factories' init() via the autoload package.
func RegisterChannel(name string, factory ChannelFactory) {
	channelRegistry[name] = factory
}

// GetChannelFactory retrieves a registered ChannelFactory by platform name.
func GetChannelFactory(name string) (ChannelFactory, bool) {
	f, ok := channelRegistry[name]
	return f, ok
}
