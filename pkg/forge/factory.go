package forge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/feedbackforge/pkg/providers/flow"
	"github.com/germanamz/feedbackforge/pkg/providers/multivendor"
	"github.com/germanamz/feedbackforge/pkg/providers/provider"
)

// Kind names a built-in provider variant.
type Kind string

// Provider kinds. KindFlow is the default when no tag is configured.
const (
	KindMulti  Kind = "multi"
	KindFlow   Kind = "flow"
	KindCustom Kind = "custom"
)

// DefaultMultiModel is the model used by KindMulti when ai.model is unset.
const DefaultMultiModel = "google:" + flow.DefaultModel

// Factory errors.
var (
	ErrUnknownProvider        = errors.New("Unknown AI provider") //nolint:staticcheck // message is part of the public contract.
	ErrCustomProviderRequired = errors.New("custom AI provider requires ai.customProvider")
)

// ParseKind maps a provider tag to a Kind. The empty tag is KindFlow. The
// legacy tags "vercel" and "genkit" map to KindMulti and KindFlow.
func ParseKind(tag string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", string(KindFlow), "genkit":
		return KindFlow, nil
	case string(KindMulti), "vercel":
		return KindMulti, nil
	case string(KindCustom):
		return KindCustom, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, tag)
	}
}

// DefaultModel returns the model identifier used when ai.model is unset.
func (k Kind) DefaultModel() string {
	switch k {
	case KindMulti:
		return DefaultMultiModel
	case KindFlow:
		return flow.DefaultModel
	default:
		return ""
	}
}

// NewProvider selects the generation backend. A non-nil CustomProvider is
// returned as is, whatever the tag says.
func NewProvider(ai AIConfig) (provider.Provider, error) {
	if ai.CustomProvider != nil {
		return ai.CustomProvider, nil
	}

	kind, err := ParseKind(ai.Provider)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindMulti:
		return newMulti(ai), nil
	case KindFlow:
		return newFlow(ai), nil
	case KindCustom:
		return nil, ErrCustomProviderRequired
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, ai.Provider)
	}
}

func newMulti(ai AIConfig) *multivendor.Provider {
	var opts []multivendor.Option
	if ai.HTTPClient != nil {
		opts = append(opts, multivendor.WithHTTPClient(ai.HTTPClient))
	}
	for vendor, url := range ai.BaseURLs {
		opts = append(opts, multivendor.WithBaseURL(vendor, url))
	}

	return multivendor.New(opts...)
}

func newFlow(ai AIConfig) *flow.Provider {
	var opts []flow.Option
	if ai.HTTPClient != nil {
		opts = append(opts, flow.WithHTTPClient(ai.HTTPClient))
	}
	if url := ai.BaseURLs["google"]; url != "" {
		opts = append(opts, flow.WithBaseURL(url))
	}

	return flow.New(opts...)
}

func resolveKind(ai AIConfig) Kind {
	if ai.CustomProvider != nil {
		return KindCustom
	}
	k, _ := ParseKind(ai.Provider)
	return k
}
