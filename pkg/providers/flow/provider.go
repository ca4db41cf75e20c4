package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
	"github.com/germanamz/feedbackforge/pkg/providers/gemini"
	"github.com/germanamz/feedbackforge/pkg/providers/provider"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "gemini-2.5-flash"

// GenerateFlowName names the flow each Generate call runs.
const GenerateFlowName = "feedbackforge.flowProvider.generate"

// ErrNoOutput is returned when the flow completes without an object.
var ErrNoOutput = errors.New("Gemini generate returned no output") //nolint:staticcheck // message is part of the public contract.

var _ provider.Provider = (*Provider)(nil)

// ClientFactory builds the request-scoped client for a call.
type ClientFactory func(apiKey, model string) modeladapter.ObjectGenerator

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the Gemini API base URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithHTTPClient sets the HTTP client used by the Gemini client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithClientFactory replaces the Gemini client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Provider) { p.newClient = f }
}

// Provider is the single-vendor flow provider. Model identifiers are bare
// Gemini model names. Usage is not reported.
type Provider struct {
	baseURL   string
	client    *http.Client
	newClient ClientFactory
}

// New creates a Provider talking to the public Gemini API.
func New(opts ...Option) *Provider {
	p := &Provider{baseURL: gemini.DefaultBaseURL}

	for _, o := range opts {
		o(p)
	}

	if p.newClient == nil {
		p.newClient = p.geminiClient
	}

	return p
}

func (p *Provider) geminiClient(apiKey, model string) modeladapter.ObjectGenerator {
	a := gemini.New(p.baseURL, apiKey, model)
	a.Client = p.client
	return a
}

type generateInput struct {
	Prompt []string
	System string
}

// Generate normalizes the prompt into fragments, binds a client to the model,
// temperature and API key, then runs the generate flow.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Result, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	out, err := p.generate(ctx, model, req)
	if err != nil {
		return provider.Result{}, fmt.Errorf("flow provider generate failed for model %q: %w", model, err)
	}

	return provider.Result{Output: out, Usage: usage.Usage{}}, nil
}

func (p *Provider) generate(ctx context.Context, model string, req provider.Request) (json.RawMessage, error) {
	texts, err := provider.Texts(req.Prompt)
	if err != nil {
		return nil, err
	}

	if req.APIKey == "" {
		return nil, provider.ErrMissingAPIKey
	}

	schema, err := provider.MarshalSchema(req.Schema)
	if err != nil {
		return nil, err
	}

	client := p.newClient(req.APIKey, model)
	temp := req.EffectiveTemperature()

	f := Define(GenerateFlowName, func(ctx context.Context, in generateInput) (json.RawMessage, error) {
		resp, err := client.GenerateObject(ctx, modeladapter.ObjectRequest{
			System:      in.System,
			Prompt:      in.Prompt,
			Schema:      schema,
			Temperature: &temp,
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			return nil, err
		}

		if len(resp.Object) == 0 || string(resp.Object) == "null" {
			return nil, ErrNoOutput
		}

		if err := provider.Validate(req.Schema, resp.Object); err != nil {
			return nil, err
		}

		return resp.Object, nil
	})

	return f.Run(ctx, generateInput{Prompt: texts, System: req.System})
}
