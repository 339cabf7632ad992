package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"deskpilot/pkg/api"
	"deskpilot/pkg/planner"

	ollamaapi "github.com/ollama/ollama/api"
)

// OllamaClient plans through a local Ollama instance.
type OllamaClient struct {
	client       *ollamaapi.Client
	model        string
	systemPrompt string
}

// NewOllamaClient creates an Ollama planner client.
func NewOllamaClient(model, baseURL, systemPrompt string) (*OllamaClient, error) {
	var client *ollamaapi.Client
	var err error

	// Local generation can take minutes; the client itself imposes no
	// timeout and the planner context bounds the call instead.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 0,
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   0,
	}

	if baseURL != "" {
		u, parseErr := url.Parse(baseURL)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid base URL: %w", parseErr)
		}
		client = ollamaapi.NewClient(u, httpClient)
	} else {
		client, err = ollamaapi.ClientFromEnvironment()
	}

	if err != nil {
		return nil, err
	}

	slog.Info("Ollama planner client initialized", "model", model, "base_url", baseURL)

	return &OllamaClient{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
	}, nil
}

func (o *OllamaClient) Provider() string {
	return "ollama"
}

func (o *OllamaClient) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	// A local server that is loading a model or restarting recovers
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "loading model") ||
		strings.Contains(msg, "503")
}

func (o *OllamaClient) Plan(ctx context.Context, req planner.Request) (*api.Plan, error) {
	userMsg := ollamaapi.Message{
		Role:    "user",
		Content: planner.BuildUserPrompt(req),
	}

	if req.Screenshot != "" {
		raw, err := base64.StdEncoding.DecodeString(req.Screenshot)
		if err != nil {
			return nil, fmt.Errorf("invalid screenshot payload: %w", err)
		}
		userMsg.Images = []ollamaapi.ImageData{raw}
	}

	streamVal := false
	chatReq := &ollamaapi.ChatRequest{
		Model: o.model,
		Messages: []ollamaapi.Message{
			{Role: "system", Content: o.systemPrompt},
			userMsg,
		},
		Stream: &streamVal,
	}

	var reply strings.Builder
	err := o.client.Chat(ctx, chatReq, func(resp ollamaapi.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama planning request failed: %w", err)
	}

	return planner.ParsePlan(reply.String())
}
