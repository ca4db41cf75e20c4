// Package anthropic implements modeladapter.ObjectGenerator for the Anthropic
// Messages API. The schema is declared as a single tool and the model is
// forced to call it; the tool input is the generated object.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
)

// DefaultBaseURL is the base URL for the Anthropic API.
const DefaultBaseURL = "https://api.anthropic.com"

const (
	messagesPath     = "/v1/messages"
	defaultMaxTokens = 4096
	outputTool       = "emit_output"
)

var _ modeladapter.ObjectGenerator = (*Adapter)(nil)

// Adapter sends schema-constrained message requests to Anthropic.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Anthropic API.
// The baseURL should be "https://api.anthropic.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-api-key",
	}
	a.Name = model
	a.Headers = map[string]string{
		"anthropic-version": "2023-06-01",
	}

	return a
}

// GenerateObject forces a tool call whose input schema is req.Schema and
// returns the tool input. A plain text reply is accepted when it holds a JSON
// object.
func (a *Adapter) GenerateObject(ctx context.Context, req modeladapter.ObjectRequest) (modeladapter.ObjectResponse, error) {
	var resp apiResponse
	if err := a.PostJSON(ctx, messagesPath, a.buildRequest(req), &resp); err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("anthropic: %w", err)
	}

	obj, err := parseObject(resp)
	if err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("anthropic: %w", err)
	}

	return modeladapter.ObjectResponse{
		Object: obj,
		Usage: usage.Raw{
			usage.KeyInputTokens:  resp.Usage.InputTokens,
			usage.KeyOutputTokens: resp.Usage.OutputTokens,
			usage.KeyTotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

// --- request types ---

type apiRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []apiMessage  `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	Tools       []apiToolDef  `json:"tools"`
	ToolChoice  apiToolChoice `json:"tool_choice"`
}

type apiMessage struct {
	Role    string       `json:"role"`
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type apiToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type apiToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// --- response types ---

type apiResponse struct {
	Content    []apiContent `json:"content"`
	StopReason string       `json:"stop_reason"`
	Usage      apiUsage     `json:"usage"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(req modeladapter.ObjectRequest) apiRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	name := req.SchemaName
	if name == "" {
		name = outputTool
	}

	user := apiMessage{Role: "user"}
	for _, p := range req.Prompt {
		user.Content = append(user.Content, apiContent{Type: "text", Text: p})
	}

	return apiRequest{
		Model:       a.Name,
		MaxTokens:   maxTokens,
		System:      req.System,
		Messages:    []apiMessage{user},
		Temperature: req.Temperature,
		Tools: []apiToolDef{{
			Name:        name,
			Description: "Return the final answer as structured output.",
			InputSchema: req.Schema,
		}},
		ToolChoice: apiToolChoice{Type: "tool", Name: name},
	}
}

func parseObject(resp apiResponse) (json.RawMessage, error) {
	for _, c := range resp.Content {
		if c.Type == "tool_use" && len(c.Input) > 0 {
			return c.Input, nil
		}
	}

	for _, c := range resp.Content {
		if c.Type == "text" {
			if obj, err := modeladapter.ExtractJSON(c.Text); err == nil {
				return obj, nil
			}
		}
	}

	return nil, fmt.Errorf("no structured output in response (stop reason %q)", resp.StopReason)
}
