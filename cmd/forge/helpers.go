package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/germanamz/feedbackforge/pkg/forge"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
)

// defaultConfigPath is used when -config is not given and the file exists.
const defaultConfigPath = "forge.yaml"

// maxTitleWidth bounds derived titles, in terminal cells.
const maxTitleWidth = 72

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfigPath returns the config file to use, or "" when there is none.
// Priority: explicit flag, then forge.yaml when it exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}

	return ""
}

// loadConfig loads the resolved config file. Without one, the flow provider
// runs with a key from GEMINI_API_KEY or GOOGLE_API_KEY.
func loadConfig(explicit string) (forge.Config, error) {
	path := resolveConfigPath(explicit)
	if path != "" {
		return forge.LoadConfig(path)
	}

	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}

	return forge.Config{AI: forge.AIConfig{APIKey: key}}, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// deriveTitle returns the first non-empty line of feedback, truncated to
// width terminal cells.
func deriveTitle(feedback string, width int) string {
	for line := range strings.SplitSeq(feedback, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return runewidth.Truncate(line, width, "...")
		}
	}
	return ""
}

// renderMarkdown converts markdown to terminal output. Render failures fall
// back to the input.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}

	return strings.TrimRight(out, "\n")
}

// fmtTokens formats a token count for display, using k/M suffixes.
func fmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func printFeedback(fb forge.Feedback, tokens int, raw bool) {
	fmt.Println(titleStyle.Render(fb.Title))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%s · %s", fb.ID, fb.Status)))
	fmt.Println()

	if raw {
		fmt.Println(fb.DeveloperPrompt)
	} else {
		fmt.Println(renderMarkdown(fb.DeveloperPrompt, 100))
	}

	fmt.Println()

	if fb.GitHubIssueURL != "" {
		fmt.Printf("%s #%d %s\n", labelStyle.Render("Issue"), fb.GitHubIssueNumber, linkStyle.Render(fb.GitHubIssueURL))
	}

	if fb.JulesSessionID != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("Session"), fb.JulesSessionID)
	}

	if tokens > 0 {
		fmt.Println(dimStyle.Render(fmtTokens(tokens) + " tokens"))
	}
}
