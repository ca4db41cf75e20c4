package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/germanamz/feedbackforge/pkg/forge"
	"github.com/germanamz/feedbackforge/pkg/tools/mcpserver"
	"github.com/rs/zerolog"
)

// setup loads .env and the config, then builds the service.
func setup(c *commonFlags) (*forge.Service, zerolog.Logger, error) {
	log := newLogger(c.verbose)

	if err := loadDotEnv(c.env); err != nil {
		return nil, log, err
	}

	cfg, err := loadConfig(c.config)
	if err != nil {
		return nil, log, err
	}

	svc, err := forge.NewService(cfg, forge.WithLogger(log))
	if err != nil {
		return nil, log, err
	}

	return svc, log, nil
}

func runProcessCmd(ctx context.Context, args []string) error {
	fs, common := newFlagSet("process", "Turn feedback into a developer prompt and run the configured follow-ups.")
	title := fs.String("title", "", "feedback title (default: derived from the feedback)")
	feedback := fs.String("feedback", "", "feedback text (prompted for on a terminal when empty)")
	breadcrumbs := fs.String("breadcrumbs", "", "navigation path that led to the feedback")
	raw := fs.Bool("raw", false, "print the developer prompt without markdown rendering")
	_ = fs.Parse(args)

	svc, _, err := setup(common)
	if err != nil {
		return err
	}

	sub := forge.Submission{
		Title:       strings.TrimSpace(*title),
		Feedback:    strings.TrimSpace(*feedback),
		Breadcrumbs: strings.TrimSpace(*breadcrumbs),
	}

	if sub.Feedback == "" && isInteractive() {
		if err := runFeedbackForm(&sub); err != nil {
			return err
		}
	}

	if sub.Feedback == "" {
		return errors.New("feedback is required (use -feedback)")
	}

	if sub.Title == "" {
		sub.Title = deriveTitle(sub.Feedback, maxTitleWidth)
	}

	fb, err := withSpinner(ctx, "Forging developer prompt...", func(ctx context.Context) (forge.Feedback, error) {
		return svc.ProcessFeedbackComplete(ctx, sub)
	})
	if err != nil {
		return err
	}

	printFeedback(fb, svc.Usage().TotalTokens, *raw)

	return nil
}

func runIssueCmd(ctx context.Context, args []string) error {
	fs, common := newFlagSet("issue", "Create a GitHub issue in the configured repository.")
	title := fs.String("title", "", "issue title")
	body := fs.String("body", "", "issue body; use @path to read it from a file")
	_ = fs.Parse(args)

	svc, _, err := setup(common)
	if err != nil {
		return err
	}

	text, err := readArg(*body)
	if err != nil {
		return err
	}

	issue, err := svc.CreateGitHubIssue(ctx, *title, text)
	if err != nil {
		return err
	}

	fmt.Printf("%s #%d %s\n", labelStyle.Render("Issue"), issue.Number, linkStyle.Render(issue.HTMLURL))

	return nil
}

func runJulesCmd(ctx context.Context, args []string) error {
	fs, common := newFlagSet("jules", "Start a Jules session on the configured repository.")
	title := fs.String("title", "", "session title")
	prompt := fs.String("prompt", "", "developer prompt; use @path to read it from a file")
	_ = fs.Parse(args)

	svc, _, err := setup(common)
	if err != nil {
		return err
	}

	text, err := readArg(*prompt)
	if err != nil {
		return err
	}

	session, err := svc.StartJulesSession(ctx, *title, text)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s %s\n", labelStyle.Render("Session"), session.ID, dimStyle.Render(session.Name))

	return nil
}

func runMCPCmd(ctx context.Context, args []string) error {
	fs, common := newFlagSet("mcp", "Serve the forge tools over MCP on stdio.")
	_ = fs.Parse(args)

	svc, log, err := setup(common)
	if err != nil {
		return err
	}

	tb, err := forge.ToolBox(svc)
	if err != nil {
		return err
	}

	srv := mcpserver.New("feedbackforge", version,
		mcpserver.WithLogger(log),
		mcpserver.WithInstructions("Submit user feedback with process_feedback. File issues and start Jules sessions with the other tools."),
	)
	srv.Register(tb.Tools()...)

	log.Info().Int("tools", len(tb.Tools())).Msg("serving mcp on stdio")

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

// readArg returns s, or the contents of the file it names when prefixed
// with "@".
func readArg(s string) (string, error) {
	path, ok := strings.CutPrefix(s, "@")
	if !ok {
		return s, nil
	}

	b, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return string(b), nil
}
