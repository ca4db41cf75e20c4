// Package integrations holds the outbound collaborators that act on a
// generated developer prompt.
//
//   - [github.com/germanamz/feedbackforge/pkg/integrations/github]: files the prompt as a GitHub issue
//   - [github.com/germanamz/feedbackforge/pkg/integrations/jules]: starts a Jules coding session against a repository
package integrations
