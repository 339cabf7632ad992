package planner

import (
	"fmt"
	"log/slog"
	"time"

	"deskpilot/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewFromConfig builds the planner client from the raw 'planner' section of
// config.json. The section is a list of provider groups tried in order;
// more than one group yields a FallbackClient.
func NewFromConfig(rawPlanner jsoniter.RawMessage, customInstructions string, system *config.SystemConfig) (Client, error) {
	if rawPlanner == nil {
		return nil, fmt.Errorf("missing 'planner' config")
	}

	var groups []ProviderGroupConfig
	if err := json.Unmarshal(rawPlanner, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse 'planner' config: %v", err)
	}

	systemPrompt := BuildSystemPrompt(customInstructions)

	var allClients []Client
	for _, group := range groups {
		slog.Info("Loading planner group", "type", group.Type, "models", len(group.Models))

		factory, ok := GetProviderFactory(group.Type)
		if !ok {
			slog.Warn("Unknown planner provider type", "type", group.Type)
			continue
		}

		clients, err := factory.Create(group, system, systemPrompt)
		if err != nil {
			slog.Warn("Failed to create planner clients", "type", group.Type, "error", err)
			continue
		}

		allClients = append(allClients, clients...)
	}

	if len(allClients) == 0 {
		return nil, fmt.Errorf("no planner clients could be initialized")
	}

	slog.Info("Planner clients initialized", "count", len(allClients))

	if len(allClients) == 1 {
		return allClients[0], nil
	}

	return &FallbackClient{
		Clients:    allClients,
		MaxRetries: system.MaxRetries,
		RetryDelay: time.Duration(system.RetryDelayMs) * time.Millisecond,
	}, nil
}
