// Package openai implements modeladapter.ObjectGenerator for the OpenAI Chat
// Completions API using structured outputs.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
)

// DefaultBaseURL is the base URL for the OpenAI API.
const DefaultBaseURL = "https://api.openai.com"

const completionsPath = "/v1/chat/completions"

var _ modeladapter.ObjectGenerator = (*Adapter)(nil)

// Adapter sends schema-constrained chat completions to OpenAI.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the OpenAI API.
// The baseURL should be "https://api.openai.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{Key: apiKey}
	a.Name = model

	return a
}

// GenerateObject asks the model for a JSON object matching req.Schema via
// response_format json_schema.
func (a *Adapter) GenerateObject(ctx context.Context, req modeladapter.ObjectRequest) (modeladapter.ObjectResponse, error) {
	var resp apiResponse
	if err := a.PostJSON(ctx, completionsPath, a.buildRequest(req), &resp); err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return modeladapter.ObjectResponse{}, errors.New("openai: empty choices in response")
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return modeladapter.ObjectResponse{}, fmt.Errorf("openai: model refused: %s", msg.Refusal)
	}

	obj, err := modeladapter.ExtractJSON(msg.Content)
	if err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("openai: %w", err)
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

// --- request types ---

type apiRequest struct {
	Model          string            `json:"model"`
	Messages       []apiMessage      `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	Temperature    *float64          `json:"temperature,omitempty"`
	ResponseFormat apiResponseFormat `json:"response_format"`
}

type apiMessage struct {
	Role    string       `json:"role"`
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiResponseFormat struct {
	Type       string        `json:"type"`
	JSONSchema apiJSONSchema `json:"json_schema"`
}

type apiJSONSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

// --- response types ---

type apiResponse struct {
	Choices []apiChoice `json:"choices"`
	Usage   apiUsage    `json:"usage"`
}

type apiChoice struct {
	Message      apiRespMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type apiRespMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Refusal string `json:"refusal,omitempty"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(req modeladapter.ObjectRequest) apiRequest {
	out := apiRequest{
		Model:       a.Name,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		ResponseFormat: apiResponseFormat{
			Type: "json_schema",
			JSONSchema: apiJSONSchema{
				Name:   schemaName(req.SchemaName),
				Schema: req.Schema,
			},
		},
	}

	if req.System != "" {
		out.Messages = append(out.Messages, apiMessage{
			Role:    "system",
			Content: []apiContent{{Type: "text", Text: req.System}},
		})
	}

	user := apiMessage{Role: "user"}
	for _, p := range req.Prompt {
		user.Content = append(user.Content, apiContent{Type: "text", Text: p})
	}
	out.Messages = append(out.Messages, user)

	return out
}

func schemaName(name string) string {
	if name == "" {
		return "output"
	}
	return name
}
