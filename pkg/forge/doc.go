// Package forge turns raw user feedback into a developer prompt and hands it
// to the configured follow-ups.
//
// # Architecture
//
//   - [Config] is the YAML-backed configuration. [LoadConfig] expands
//     environment references before parsing.
//   - [NewProvider] selects a generation backend from [AIConfig]. A caller
//     supplied provider always wins; an empty provider tag selects the
//     single-vendor flow backend.
//   - [Processor] builds the prompt, runs the single generation call under an
//     optional deadline and validates the returned [DeveloperPrompt].
//   - [Service] wraps the processor with GitHub issue creation, Jules session
//     start and the combined submission flow.
//   - [ToolBox] exposes the service operations as tools for the MCP server.
//
// The processor never logs; every error it returns carries its own context.
// The service logs through zerolog and swallows follow-up failures.
package forge
