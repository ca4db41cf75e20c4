// Package modeladapter provides the shared HTTP base embedded by every vendor
// client.
//
// It contains:
//   - [ModelAdapter], an embeddable base with auth, custom headers and a JSON POST helper
//   - [ObjectGenerator], the schema-constrained generation primitive vendor clients implement
//   - typed errors for rate limiting ([RateLimitError]) and other non-2xx responses ([StatusError])
//   - [ExtractJSON] for pulling a JSON object out of free-form model text
//   - [github.com/germanamz/feedbackforge/pkg/modeladapter/usage], usage normalization and tracking
//
// This package contains no vendor-specific code. Concrete clients live in
// separate packages under pkg/providers.
package modeladapter
