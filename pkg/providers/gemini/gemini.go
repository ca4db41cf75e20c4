// Package gemini implements modeladapter.ObjectGenerator for the Google
// Gemini generateContent API using JSON response mode.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
)

// DefaultBaseURL is the base URL for the Gemini API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

var _ modeladapter.ObjectGenerator = (*Adapter)(nil)

// Adapter sends schema-constrained generateContent requests to Gemini.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Gemini API.
// The baseURL should be "https://generativelanguage.googleapis.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-goog-api-key",
	}
	a.Name = model

	return a
}

// GenerateObject requests application/json output constrained by req.Schema.
// When the model returns no candidate text the response Object is nil and
// no error is reported; callers decide whether that is a failure.
func (a *Adapter) GenerateObject(ctx context.Context, req modeladapter.ObjectRequest) (modeladapter.ObjectResponse, error) {
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", a.Name)

	var resp apiResponse
	if err := a.PostJSON(ctx, path, a.buildRequest(req), &resp); err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("gemini: %w", err)
	}

	out := modeladapter.ObjectResponse{
		Usage: usage.Raw{
			usage.KeyInputTokens:  resp.UsageMetadata.PromptTokenCount,
			usage.KeyOutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			usage.KeyTotalTokens:  resp.UsageMetadata.TotalTokenCount,
		},
	}

	text := candidateText(resp)
	if text == "" {
		return out, nil
	}

	obj, err := modeladapter.ExtractJSON(text)
	if err != nil {
		return modeladapter.ObjectResponse{}, fmt.Errorf("gemini: %w", err)
	}
	out.Object = obj

	return out, nil
}

// --- request types ---

type apiRequest struct {
	Contents          []apiContent     `json:"contents"`
	SystemInstruction *apiContent      `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Candidates    []apiCandidate `json:"candidates"`
	UsageMetadata apiUsageMeta   `json:"usageMetadata"`
}

type apiCandidate struct {
	Content      apiContent `json:"content"`
	FinishReason string     `json:"finishReason"`
}

type apiUsageMeta struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(req modeladapter.ObjectRequest) apiRequest {
	out := apiRequest{
		GenerationConfig: generationConfig{
			Temperature:      req.Temperature,
			MaxOutputTokens:  req.MaxTokens,
			ResponseMimeType: "application/json",
		},
	}

	if len(req.Schema) > 0 {
		out.GenerationConfig.ResponseSchema = sanitizeSchema(req.Schema)
	}

	if req.System != "" {
		out.SystemInstruction = &apiContent{Parts: []apiPart{{Text: req.System}}}
	}

	user := apiContent{Role: "user"}
	for _, p := range req.Prompt {
		user.Parts = append(user.Parts, apiPart{Text: p})
	}
	out.Contents = []apiContent{user}

	return out
}

func candidateText(resp apiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}

	return strings.TrimSpace(b.String())
}

// sanitizeSchema removes JSON Schema keywords that the Gemini API does not
// support (e.g. $schema, additionalProperties). It operates recursively so
// nested schemas (inside "properties", "items", etc.) are also cleaned.
func sanitizeSchema(raw json.RawMessage) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}

	delete(obj, "$schema")
	delete(obj, "$id")
	delete(obj, "additionalProperties")

	if props, ok := obj["properties"]; ok {
		var propMap map[string]json.RawMessage
		if err := json.Unmarshal(props, &propMap); err == nil {
			for k, v := range propMap {
				propMap[k] = sanitizeSchema(v)
			}
			if b, err := json.Marshal(propMap); err == nil {
				obj["properties"] = b
			}
		}
	}

	if items, ok := obj["items"]; ok {
		obj["items"] = sanitizeSchema(items)
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return b
}
