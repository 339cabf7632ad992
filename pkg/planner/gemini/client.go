package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"deskpilot/pkg/api"
	"deskpilot/pkg/planner"

	"google.golang.org/genai"
)

// GeminiClient plans through the Google GenAI SDK.
type GeminiClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
}

// NewGeminiClient creates a Gemini planner client.
func NewGeminiClient(ctx context.Context, apiKey, model, systemPrompt string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
	}, nil
}

func (g *GeminiClient) Provider() string {
	return "gemini"
}

func (g *GeminiClient) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") {
		return true
	}

	// 429/5xx come through as googleapi errors with the code in the text
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "overloaded") {
		return true
	}

	return false
}

func (g *GeminiClient) Plan(ctx context.Context, req planner.Request) (*api.Plan, error) {
	parts := []*genai.Part{
		{Text: planner.BuildUserPrompt(req)},
	}

	if req.Screenshot != "" {
		raw, err := base64.StdEncoding.DecodeString(req.Screenshot)
		if err != nil {
			return nil, fmt.Errorf("invalid screenshot payload: %w", err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: "image/png",
				Data:     raw,
			},
		})
	}

	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: parts},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: g.systemPrompt}},
		},
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini planning request failed: %w", err)
	}

	return planner.ParsePlan(resp.Text())
}
