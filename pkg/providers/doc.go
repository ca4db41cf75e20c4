// Package providers groups the generation backends behind one contract.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/feedbackforge/pkg/providers/provider]: the Provider interface, request/result types and schema helpers
//   - [github.com/germanamz/feedbackforge/pkg/providers/multivendor]: dispatches "vendor:model" identifiers to a vendor client
//   - [github.com/germanamz/feedbackforge/pkg/providers/flow]: a single-vendor provider that runs each call as a named flow
//   - openai, anthropic, gemini, grok: vendor clients implementing modeladapter.ObjectGenerator
package providers
