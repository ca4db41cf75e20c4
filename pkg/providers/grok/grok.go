// Package grok implements modeladapter.ObjectGenerator for xAI's Grok models
// using the OpenAI-compatible chat completions API.
package grok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
)

// DefaultBaseURL is the base URL for the xAI API.
const DefaultBaseURL = "https://api.x.ai/v1"

var _ modeladapter.ObjectGenerator = (*GrokAdapter)(nil)

// GrokAdapter sends schema-constrained chat completions to xAI's Grok API.
type GrokAdapter struct {
	modeladapter.ModelAdapter
}

// New creates a GrokAdapter with the given API key and HTTP client.
// A nil client falls back to the adapter's default client.
func New(apiKey string, client *http.Client) *GrokAdapter {
	return &GrokAdapter{
		ModelAdapter: modeladapter.New(DefaultBaseURL, modeladapter.Auth{Key: apiKey}, client),
	}
}

// GenerateObject sends the prompt fragments as one user message and requests
// a json_schema response.
func (g *GrokAdapter) GenerateObject(ctx context.Context, req modeladapter.ObjectRequest) (modeladapter.ObjectResponse, error) {
	body := chatRequest{
		Model:       g.Name,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   schemaName(req.SchemaName),
				Schema: req.Schema,
			},
		},
	}

	if req.System != "" {
		body.Messages = append(body.Messages, apiMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, apiMessage{Role: "user", Content: strings.Join(req.Prompt, "\n\n")})

	var resp chatResponse
	if err := g.PostJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("grok: %w", err)
	}

	if len(resp.Choices) == 0 {
		return modeladapter.ObjectResponse{}, errors.New("grok: empty response")
	}

	obj, err := modeladapter.ExtractJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("grok: %w", err)
	}

	return modeladapter.ObjectResponse{
		Object: obj,
		Usage: usage.Raw{
			usage.KeyPromptTokens:     resp.Usage.PromptTokens,
			usage.KeyCompletionTokens: resp.Usage.CompletionTokens,
			usage.KeyTotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// API request/response types.

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []apiMessage    `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	ID      string   `json:"id"`
	Choices []choice `json:"choices"`
	Usage   apiUsage `json:"usage"`
}

type choice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func schemaName(name string) string {
	if name == "" {
		return "output"
	}
	return name
}
