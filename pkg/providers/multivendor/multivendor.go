// Package multivendor implements a provider that selects its backend from a
// "vendor:model" identifier, such as "openai:gpt-4o" or
// "google:gemini-2.5-flash".
package multivendor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
	"github.com/germanamz/feedbackforge/pkg/providers/anthropic"
	"github.com/germanamz/feedbackforge/pkg/providers/gemini"
	"github.com/germanamz/feedbackforge/pkg/providers/grok"
	"github.com/germanamz/feedbackforge/pkg/providers/openai"
	"github.com/germanamz/feedbackforge/pkg/providers/provider"
)

// Built-in vendor names.
const (
	VendorOpenAI    = "openai"
	VendorAnthropic = "anthropic"
	VendorGoogle    = "google"
	VendorXAI       = "xai"
)

var (
	ErrInvalidModelString = errors.New("Invalid model string format") //nolint:staticcheck // message is part of the public contract.
	ErrUnsupportedVendor  = errors.New("Unsupported provider")        //nolint:staticcheck // message is part of the public contract.
)

var _ provider.Provider = (*Provider)(nil)

// VendorConfig is what a Constructor receives for one call. BaseURL is empty
// unless overridden with WithBaseURL.
type VendorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// Constructor builds a request-scoped vendor client.
type Constructor func(cfg VendorConfig) modeladapter.ObjectGenerator

// ModelID is a parsed "vendor:model" identifier. Vendor is lower-cased.
type ModelID struct {
	Vendor string
	Model  string
}

func (id ModelID) String() string {
	vendor, model := id.Vendor, id.Model
	if vendor == "" {
		vendor = "unknown"
	}
	if model == "" {
		model = "unknown"
	}
	return vendor + ":" + model
}

// ParseModel splits s into vendor and model. Exactly two non-empty parts
// separated by a single ':' are required.
func ParseModel(s string) (ModelID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ModelID{}, fmt.Errorf(`%w: %q. Expected format: "vendor:model" (e.g., "openai:gpt-4o")`, ErrInvalidModelString, s)
	}

	return ModelID{Vendor: strings.ToLower(parts[0]), Model: parts[1]}, nil
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient sets the HTTP client handed to every vendor client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithBaseURL overrides the API base URL for one vendor.
func WithBaseURL(vendor, url string) Option {
	return func(p *Provider) { p.baseURLs[strings.ToLower(vendor)] = url }
}

// WithVendor registers or replaces the constructor for a vendor.
func WithVendor(vendor string, ctor Constructor) Option {
	return func(p *Provider) { p.vendors[strings.ToLower(vendor)] = ctor }
}

// Provider dispatches each call to the vendor named in the model identifier.
// It holds no per-call state and is safe for concurrent use.
type Provider struct {
	vendors  map[string]Constructor
	baseURLs map[string]string
	client   *http.Client
}

// New creates a Provider with the built-in vendors.
func New(opts ...Option) *Provider {
	p := &Provider{
		vendors: map[string]Constructor{
			VendorOpenAI:    newOpenAI,
			VendorAnthropic: newAnthropic,
			VendorGoogle:    newGoogle,
			VendorXAI:       newXAI,
		},
		baseURLs: make(map[string]string),
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

// Vendors returns the supported vendor names in sorted order.
func (p *Provider) Vendors() []string {
	names := make([]string, 0, len(p.vendors))
	for name := range p.vendors {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Generate parses req.Model, checks the request, builds the vendor client
// and asks it for a schema-conforming object. Every failure is wrapped with
// the vendor and model it concerned.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Result, error) {
	id, err := ParseModel(req.Model)
	if err != nil {
		return provider.Result{}, wrap(id, err)
	}

	res, err := p.generate(ctx, id, req)
	if err != nil {
		return provider.Result{}, wrap(id, err)
	}

	return res, nil
}

func (p *Provider) generate(ctx context.Context, id ModelID, req provider.Request) (provider.Result, error) {
	ctor, ok := p.vendors[id.Vendor]
	if !ok {
		return provider.Result{}, fmt.Errorf("%w: %q. Supported providers: %s",
			ErrUnsupportedVendor, id.Vendor, strings.Join(p.Vendors(), ", "))
	}

	if req.APIKey == "" {
		return provider.Result{}, provider.ErrMissingAPIKey
	}

	schema, err := provider.MarshalSchema(req.Schema)
	if err != nil {
		return provider.Result{}, err
	}

	texts, err := provider.Texts(req.Prompt)
	if err != nil {
		return provider.Result{}, err
	}

	client := ctor(VendorConfig{
		APIKey:  req.APIKey,
		Model:   id.Model,
		BaseURL: p.baseURLs[id.Vendor],
		Client:  p.client,
	})

	temp := req.EffectiveTemperature()
	resp, err := client.GenerateObject(ctx, modeladapter.ObjectRequest{
		System:      req.System,
		Prompt:      texts,
		Schema:      schema,
		Temperature: &temp,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return provider.Result{}, err
	}

	res := provider.Result{Output: resp.Object, Usage: usage.Normalize(resp.Usage)}
	if res.HasOutput() {
		if err := provider.Validate(req.Schema, res.Output); err != nil {
			return provider.Result{}, err
		}
	}

	return res, nil
}

func wrap(id ModelID, err error) error {
	return fmt.Errorf("multi-vendor provider generation failed for %s: %w", id, err)
}

// --- built-in vendors ---

func orDefault(url, def string) string {
	if url == "" {
		return def
	}
	return url
}

func newOpenAI(cfg VendorConfig) modeladapter.ObjectGenerator {
	a := openai.New(orDefault(cfg.BaseURL, openai.DefaultBaseURL), cfg.APIKey, cfg.Model)
	a.Client = cfg.Client
	return a
}

func newAnthropic(cfg VendorConfig) modeladapter.ObjectGenerator {
	a := anthropic.New(orDefault(cfg.BaseURL, anthropic.DefaultBaseURL), cfg.APIKey, cfg.Model)
	a.Client = cfg.Client
	return a
}

func newGoogle(cfg VendorConfig) modeladapter.ObjectGenerator {
	a := gemini.New(orDefault(cfg.BaseURL, gemini.DefaultBaseURL), cfg.APIKey, cfg.Model)
	a.Client = cfg.Client
	return a
}

func newXAI(cfg VendorConfig) modeladapter.ObjectGenerator {
	g := grok.New(cfg.APIKey, cfg.Client)
	g.BaseURL = orDefault(cfg.BaseURL, grok.DefaultBaseURL)
	g.Name = cfg.Model
	return g
}
