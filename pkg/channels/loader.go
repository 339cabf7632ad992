// Package channels turns config sections into running operator channels
// through a name-keyed factory registry.
package channels

import (
	"log/slog"

	"deskpilot/pkg/config"
	"deskpilot/pkg/gateway"

	jsoniter "github.com/json-iterator/go"
)

// LoadFromConfig iterates the channel config map, resolves each entry's
// factory and registers the resulting channels with the gateway. Unknown
// or failing channels are skipped with a log line so one bad section
// does not take the whole gateway down.
func LoadFromConfig(gw *gateway.GatewayManager, configs map[string]jsoniter.RawMessage, system *config.SystemConfig) {
	for name, rawConfig := range configs {
		factory, ok := GetChannelFactory(name)
		if !ok {
			slog.Warn("Unknown channel type", "name", name)
			continue
		}

		channel, err := factory.Create(rawConfig, system)
		if err != nil {
			slog.Error("Failed to create channel", "name", name, "error", err)
			continue
		}
		if channel == nil {
			continue
		}

		gw.Register(channel)
		slog.Info("Channel registered", "name", name)
	}
}
