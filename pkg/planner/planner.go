// Package planner is the port to the LLM that turns an objective plus
// execution history into the next plan of action descriptors. Providers
// register themselves through the factory registry; multiple configured
// providers are wrapped in a FallbackClient.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"deskpilot/pkg/api"
)

// Request carries everything one planning round needs.
type Request struct {
	// Objective is the user's natural-language goal for the run.
	Objective string
	// StepIndex is the number of completed planning/execution rounds.
	StepIndex int
	// History is the full ordered list of execution results so far.
	History []api.ExecutionResult
	// Screenshot is the current screen as base64 PNG; may be empty when
	// the capture backend is unavailable.
	Screenshot string
}

// Client is the planner port. Plan blocks until the provider answers or
// the context expires.
type Client interface {
	Plan(ctx context.Context, req Request) (*api.Plan, error)

	// IsTransientError reports whether the error is worth retrying
	// (rate limits, 5xx, network timeouts).
	IsTransientError(err error) bool
}

// FallbackClient tries multiple clients in order, retrying transient
// failures per client before moving on.
type FallbackClient struct {
	Clients    []Client
	MaxRetries int
	RetryDelay time.Duration
}

func (f *FallbackClient) Plan(ctx context.Context, req Request) (*api.Plan, error) {
	var lastErr error
	for i, client := range f.Clients {
		if i > 0 {
			slog.Warn("Previous planner provider failed, trying fallback", "provider_index", i+1)
		}

		maxRetries := f.MaxRetries
		if maxRetries <= 0 {
			maxRetries = 1
		}

		for retry := 1; retry <= maxRetries; retry++ {
			if retry > 1 {
				slog.Info("Retrying planner provider", "provider_index", i+1, "attempt", retry, "max", maxRetries)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(retry-1) * f.RetryDelay):
				}
			}

			plan, err := client.Plan(ctx, req)
			if err == nil {
				return plan, nil
			}

			lastErr = err

			if client.IsTransientError(err) && retry < maxRetries {
				slog.Warn("Planner provider failed with transient error, retrying",
					"provider_index", i+1, "error", err)
				continue
			}

			slog.Error("Planner provider failed", "provider_index", i+1, "error", err)
			break
		}
	}
	return nil, fmt.Errorf("all planner providers failed. Last error: %v", lastErr)
}

// IsTransientError implements Client. A FallbackClient error means every
// child already failed, so it is treated as final.
func (f *FallbackClient) IsTransientError(err error) bool {
	return false
}
