// Package provider defines the contract every generation backend satisfies:
// a prompt, a system prompt and an output schema in; a JSON object and token
// usage out.
package provider

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
	"github.com/google/jsonschema-go/jsonschema"
)

// Errors reported before any network call is made.
var (
	ErrMissingAPIKey = errors.New("apiKey is required")
	ErrMissingSchema = errors.New("schema is required")
	ErrInvalidPrompt = errors.New("Invalid prompt format") //nolint:staticcheck // message is part of the public contract.
)

// DefaultTemperature applies when a request leaves Temperature unset.
const DefaultTemperature = 0.8

// Request is a single generation call.
type Request struct {
	Model       string
	APIKey      string
	Prompt      Prompt
	System      string
	Schema      *jsonschema.Schema
	Temperature *float64 // nil selects DefaultTemperature.
	MaxTokens   int      // 0 leaves the backend default.
}

// EffectiveTemperature returns the request temperature or DefaultTemperature.
func (r Request) EffectiveTemperature() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

// Result is the outcome of a generation call. Output conforms to the request
// schema when the call succeeds.
type Result struct {
	Output json.RawMessage
	Usage  usage.Usage
}

// HasOutput reports whether the backend produced anything.
func (r Result) HasOutput() bool {
	return len(r.Output) > 0 && string(r.Output) != "null"
}

// Provider turns a prompt and schema into structured output.
type Provider interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context, req Request) (Result, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Temperature returns a pointer to t, for filling Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
