package planner

import (
	"deskpilot/pkg/config"
)

// ProviderGroupConfig defines the configuration of one group of models
// from a single provider.
type ProviderGroupConfig struct {
	Type    string         `json:"type"`
	APIKeys []string       `json:"api_keys,omitempty"`
	Models  []string       `json:"models"`
	BaseURL string         `json:"base_url,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// ProviderFactory creates the atomic clients of one provider group.
type ProviderFactory interface {
	Create(group ProviderGroupConfig, system *config.SystemConfig, systemPrompt string) ([]Client, error)
}

var providerRegistry = make(map[string]ProviderFactory)

// RegisterProvider registers a ProviderFactory, typically from an init().
func RegisterProvider(name string, factory ProviderFactory) {
	providerRegistry[name] = factory
}

// GetProviderFactory retrieves a registered factory by provider name.
func GetProviderFactory(name string) (ProviderFactory, bool) {
	f, ok := providerRegistry[name]
	return f, ok
}
