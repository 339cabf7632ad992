package openaip

import (
	"log/slog"

	"deskpilot/pkg/config"
	"deskpilot/pkg/planner"
)

// OpenAIFactory handles creation of OpenAI planner clients
type OpenAIFactory struct{}

// Create implements planner.ProviderFactory
func (f *OpenAIFactory) Create(group planner.ProviderGroupConfig, sys *config.SystemConfig, systemPrompt string) ([]planner.Client, error) {
	var clients []planner.Client

	apiKey := ""
	if len(group.APIKeys) > 0 {
		apiKey = group.APIKeys[0]
	}

	for _, model := range group.Models {
		client, err := NewClient("openai", apiKey, model, group.BaseURL, systemPrompt)
		if err != nil {
			slog.Error("Failed to create OpenAI planner client", "model", model, "error", err)
			continue
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	planner.RegisterProvider("openai", &OpenAIFactory{})
}
