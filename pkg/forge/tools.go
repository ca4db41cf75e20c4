package forge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/germanamz/feedbackforge/pkg/providers/provider"
	"github.com/germanamz/feedbackforge/pkg/tools/toolbox"
)

// Tool names.
const (
	ToolProcessFeedback   = "process_feedback"
	ToolCreateGitHubIssue = "create_github_issue"
	ToolStartJulesSession = "start_jules_session"
)

// ToolBox exposes the service operations as tools. Results are JSON.
func ToolBox(svc *Service) (*toolbox.ToolBox, error) {
	submission, err := inputSchema[Submission]()
	if err != nil {
		return nil, err
	}

	issueInput, err := inputSchema[IssueInput]()
	if err != nil {
		return nil, err
	}

	sessionInput, err := inputSchema[SessionInput]()
	if err != nil {
		return nil, err
	}

	return toolbox.New(
		toolbox.Tool{
			Name:        ToolProcessFeedback,
			Description: "Turn user feedback into a developer prompt and run the configured follow-ups (GitHub issue, Jules session). Returns the feedback record.",
			InputSchema: submission,
			Handler: handle(func(ctx context.Context, in Submission) (any, error) {
				return svc.ProcessFeedbackComplete(ctx, in)
			}),
		},
		toolbox.Tool{
			Name:        ToolCreateGitHubIssue,
			Description: "Create an issue in the configured GitHub repository.",
			InputSchema: issueInput,
			Handler: handle(func(ctx context.Context, in IssueInput) (any, error) {
				return svc.CreateGitHubIssue(ctx, in.Title, in.Body)
			}),
		},
		toolbox.Tool{
			Name:        ToolStartJulesSession,
			Description: "Start a Jules coding session on the configured repository with the given developer prompt.",
			InputSchema: sessionInput,
			Handler: handle(func(ctx context.Context, in SessionInput) (any, error) {
				return svc.StartJulesSession(ctx, in.Title, in.DeveloperPrompt)
			}),
		},
	), nil
}

func inputSchema[T any]() (json.RawMessage, error) {
	s, err := provider.SchemaFor[T]()
	if err != nil {
		return nil, fmt.Errorf("forge: tool schema: %w", err)
	}
	return provider.MarshalSchema(s)
}

func handle[T any](fn func(context.Context, T) (any, error)) toolbox.Handler {
	return func(ctx context.Context, input json.RawMessage) (string, error) {
		var in T
		if err := json.Unmarshal(input, &in); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		out, err := fn(ctx, in)
		if err != nil {
			return "", err
		}

		b, err := json.Marshal(out)
		if err != nil {
			return "", fmt.Errorf("forge: encode result: %w", err)
		}

		return string(b), nil
	}
}
