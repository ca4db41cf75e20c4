package forge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
	"github.com/germanamz/feedbackforge/pkg/providers/provider"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrNoDeveloperPrompt is returned when the provider succeeds without output.
var ErrNoDeveloperPrompt = errors.New("Failed to generate developer prompt from feedback.") //nolint:staticcheck // message is part of the public contract.

// FeedbackInput is one piece of user feedback.
type FeedbackInput struct {
	Feedback    string `json:"feedback"`
	Breadcrumbs string `json:"breadcrumbs"`
}

// DeveloperPrompt is the structured output of a processing call.
type DeveloperPrompt struct {
	DeveloperPrompt string `json:"developerPrompt" jsonschema:"The generated prompt for the developer." validate:"required"`
}

// BuildPrompt renders the prompt body sent to the provider.
func BuildPrompt(in FeedbackInput) string {
	return fmt.Sprintf("Feedback: %s\n\nBreadcrumbs: %s", in.Feedback, in.Breadcrumbs)
}

// Processor turns feedback into a developer prompt with a single provider
// call. All settings are resolved at construction; a Processor is safe for
// concurrent use when its provider is.
type Processor struct {
	provider    provider.Provider
	kind        Kind
	model       string
	apiKey      string
	system      string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	schema      *jsonschema.Schema
}

// NewProcessor resolves the provider, system prompt, model, temperature and
// deadline from cfg.
func NewProcessor(cfg Config) (*Processor, error) {
	ai := cfg.AI

	if err := ai.Validate(); err != nil {
		return nil, err
	}

	p, err := NewProvider(ai)
	if err != nil {
		return nil, err
	}

	timeout, err := ai.timeout()
	if err != nil {
		return nil, fmt.Errorf("forge: config: %w", err)
	}

	schema, err := provider.SchemaFor[DeveloperPrompt]()
	if err != nil {
		return nil, fmt.Errorf("forge: %w", err)
	}

	return &Processor{
		provider:    p,
		kind:        resolveKind(ai),
		model:       resolveModel(ai),
		apiKey:      ai.APIKey,
		system:      resolveSystemPrompt(cfg),
		temperature: ai.temperature(),
		maxTokens:   ai.MaxTokens,
		timeout:     timeout,
		schema:      schema,
	}, nil
}

// GetFeedbackProcessor returns the Process method of a new Processor.
func GetFeedbackProcessor(cfg Config) (func(context.Context, FeedbackInput) (DeveloperPrompt, error), error) {
	p, err := NewProcessor(cfg)
	if err != nil {
		return nil, err
	}
	return p.Process, nil
}

// Kind returns the resolved provider kind.
func (p *Processor) Kind() Kind { return p.kind }

// Model returns the resolved model identifier.
func (p *Processor) Model() string { return p.model }

// SystemPrompt returns the resolved system prompt.
func (p *Processor) SystemPrompt() string { return p.system }

// Process generates a developer prompt for in.
func (p *Processor) Process(ctx context.Context, in FeedbackInput) (DeveloperPrompt, error) {
	out, _, err := p.ProcessWithUsage(ctx, in)
	return out, err
}

// ProcessWithUsage is Process that also reports the token usage of the call.
// Provider errors are returned unchanged.
func (p *Processor) ProcessWithUsage(ctx context.Context, in FeedbackInput) (DeveloperPrompt, usage.Usage, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res, err := p.provider.Generate(ctx, provider.Request{
		Model:       p.model,
		APIKey:      p.apiKey,
		Prompt:      provider.Text(BuildPrompt(in)),
		System:      p.system,
		Schema:      p.schema,
		Temperature: provider.Temperature(p.temperature),
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return DeveloperPrompt{}, usage.Usage{}, err
	}

	if !res.HasOutput() {
		return DeveloperPrompt{}, res.Usage, ErrNoDeveloperPrompt
	}

	out, err := provider.Decode[DeveloperPrompt](res, p.schema)
	if err != nil {
		return DeveloperPrompt{}, res.Usage, fmt.Errorf("forge: invalid developer prompt: %w", err)
	}

	if err := validateStruct(out); err != nil {
		return DeveloperPrompt{}, res.Usage, fmt.Errorf("forge: invalid developer prompt: %w", err)
	}

	return out, res.Usage, nil
}

func resolveSystemPrompt(cfg Config) string {
	switch {
	case cfg.AI.SystemPrompt != "":
		return cfg.AI.SystemPrompt
	case cfg.FeedbackSystemPrompt != "":
		return cfg.FeedbackSystemPrompt
	default:
		return DefaultFeedbackSystemPrompt
	}
}

// resolveModel applies the explicit model or the default of the tagged kind.
// A custom provider with no tag gets the flow default.
func resolveModel(ai AIConfig) string {
	if ai.Model != "" {
		return ai.Model
	}
	k, _ := ParseKind(ai.Provider)
	return k.DefaultModel()
}
