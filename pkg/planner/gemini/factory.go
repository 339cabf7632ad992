package gemini

import (
	"context"
	"log/slog"

	"deskpilot/pkg/config"
	"deskpilot/pkg/planner"
)

// GeminiFactory handles creation of Gemini planner clients
type GeminiFactory struct{}

// Create implements planner.ProviderFactory
func (f *GeminiFactory) Create(group planner.ProviderGroupConfig, sys *config.SystemConfig, systemPrompt string) ([]planner.Client, error) {
	var clients []planner.Client

	apiKey := ""
	if len(group.APIKeys) > 0 {
		apiKey = group.APIKeys[0]
	}

	for _, model := range group.Models {
		client, err := NewGeminiClient(context.Background(), apiKey, model, systemPrompt)
		if err != nil {
			slog.Error("Failed to create Gemini planner client", "model", model, "error", err)
			continue
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	planner.RegisterProvider("gemini", &GeminiFactory{})
}
