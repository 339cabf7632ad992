package ollama

import (
	"log/slog"

	"deskpilot/pkg/config"
	"deskpilot/pkg/planner"
)

// OllamaFactory handles creation of Ollama planner clients
type OllamaFactory struct{}

// Create implements planner.ProviderFactory
func (f *OllamaFactory) Create(group planner.ProviderGroupConfig, sys *config.SystemConfig, systemPrompt string) ([]planner.Client, error) {
	var clients []planner.Client

	baseURL := group.BaseURL
	if baseURL == "" {
		baseURL = sys.OllamaDefaultURL
	}

	for _, model := range group.Models {
		client, err := NewOllamaClient(model, baseURL, systemPrompt)
		if err != nil {
			slog.Error("Failed to create Ollama planner client", "model", model, "error", err)
			continue
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	planner.RegisterProvider("ollama", &OllamaFactory{})
}
