package openaip

import (
	"context"
	"fmt"
	"strings"

	"deskpilot/pkg/api"
	"deskpilot/pkg/planner"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
)

// Client plans through the official OpenAI Go SDK (Responses API). It also
// serves any OpenAI-compatible endpoint via base_url.
type Client struct {
	client       *openai.Client
	provider     string
	model        string
	systemPrompt string
}

// NewClient creates an OpenAI planner client.
func NewClient(provider, apiKey, model, baseURL, systemPrompt string) (*Client, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	return &Client{
		client:       &client,
		provider:     provider,
		model:        model,
		systemPrompt: systemPrompt,
	}, nil
}

func (c *Client) Provider() string {
	return c.provider
}

func (c *Client) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	// Transient: network-level issues
	if strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") {
		return true
	}

	// Transient: server-side temporary failures
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "500 internal") ||
		strings.Contains(msg, "502 bad gateway") ||
		strings.Contains(msg, "503 service unavailable") ||
		strings.Contains(msg, "overloaded") {
		return true
	}

	// Everything else (400 Bad Request, 401 Unauthorized, etc.) is non-transient
	return false
}

func (c *Client) Plan(ctx context.Context, req planner.Request) (*api.Plan, error) {
	userPrompt := planner.BuildUserPrompt(req)

	items := []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(
			c.systemPrompt,
			responses.EasyInputMessageRoleSystem,
		),
	}

	if req.Screenshot != "" {
		contentParts := responses.ResponseInputMessageContentListParam{
			responses.ResponseInputContentUnionParam{
				OfInputText: &responses.ResponseInputTextParam{
					Text: userPrompt,
				},
			},
			responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{
					Detail:   responses.ResponseInputImageDetailAuto,
					ImageURL: param.NewOpt("data:image/png;base64," + req.Screenshot),
				},
			},
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(
			contentParts,
			responses.EasyInputMessageRoleUser,
		))
	} else {
		items = append(items, responses.ResponseInputItemParamOfMessage(
			userPrompt,
			responses.EasyInputMessageRoleUser,
		))
	}

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s planning request failed: %w", c.provider, err)
	}

	return planner.ParsePlan(resp.OutputText())
}
