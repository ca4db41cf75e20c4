package forge

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/germanamz/feedbackforge/pkg/providers/provider"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds the generation call when ai.timeout is unset.
const DefaultTimeout = 2 * time.Minute

// Default Jules-managed statuses.
const (
	StatusInProgress = "in-progress"
	StatusReceived   = "received"
)

// Config is the top-level configuration.
type Config struct {
	AI                    AIConfig        `yaml:"ai"`
	FeedbackSystemPrompt  string          `yaml:"feedback_system_prompt"`
	GitHub                *GitHubConfig   `yaml:"github"`
	Jules                 *JulesConfig    `yaml:"jules"`
	AutoCreateGitHubIssue bool            `yaml:"auto_create_github_issue"`
	AutoStartJulesSession bool            `yaml:"auto_start_jules_session"`
	JulesManagedStatuses  ManagedStatuses `yaml:"jules_managed_statuses"`
}

// AIConfig selects and parameterizes the generation backend.
type AIConfig struct {
	Provider     string            `yaml:"provider"` // multi, flow or custom. Empty selects flow.
	Model        string            `yaml:"model"`
	APIKey       string            `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	SystemPrompt string            `yaml:"system_prompt"`
	Temperature  *float64          `yaml:"temperature"`
	MaxTokens    int               `yaml:"max_tokens"`
	Timeout      string            `yaml:"timeout"`   // Duration string; "0" disables the deadline.
	BaseURLs     map[string]string `yaml:"base_urls"` // Per-vendor endpoint overrides.

	CustomProvider provider.Provider `yaml:"-"` // Set in code; wins over Provider.
	HTTPClient     *http.Client      `yaml:"-"` // Shared with the GitHub and Jules clients.
}

// GitHubConfig holds the issue target.
type GitHubConfig struct {
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	Token   string `yaml:"token"` //nolint:gosec // configuration field, not a hardcoded secret
	BaseURL string `yaml:"base_url"`
}

// JulesConfig holds the Jules session settings.
type JulesConfig struct {
	APIKey         string `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	APIURL         string `yaml:"api_url"`
	GitHubRepo     string `yaml:"github_repo"`
	StartingBranch string `yaml:"github_starting_branch"`
}

// ManagedStatuses names the feedback statuses set around a Jules session.
type ManagedStatuses struct {
	InProgress string `yaml:"in_progress"`
	Received   string `yaml:"received"`
}

func (m ManagedStatuses) withDefaults() ManagedStatuses {
	if m.InProgress == "" {
		m.InProgress = StatusInProgress
	}
	if m.Received == "" {
		m.Received = StatusReceived
	}
	return m
}

// LoadConfig reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR are expanded before
// parsing so API keys can stay out of the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("forge: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("forge: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if err := c.AI.Validate(); err != nil {
		return err
	}

	if g := c.GitHub; g != nil {
		if g.Owner == "" || g.Repo == "" || g.Token == "" {
			return errors.New("forge: config: github owner, repo and token are required")
		}
	}

	if j := c.Jules; j != nil {
		if j.APIKey == "" || j.GitHubRepo == "" {
			return errors.New("forge: config: jules api_key and github_repo are required")
		}
	}

	if c.AutoCreateGitHubIssue && c.GitHub == nil {
		return errors.New("forge: config: auto_create_github_issue requires github")
	}

	if c.AutoStartJulesSession && c.Jules == nil {
		return errors.New("forge: config: auto_start_jules_session requires jules")
	}

	return nil
}

// Validate checks the AI section on its own.
func (a AIConfig) Validate() error {
	if a.CustomProvider == nil {
		if _, err := ParseKind(a.Provider); err != nil {
			return fmt.Errorf("forge: config: %w", err)
		}
	}

	if t := a.Temperature; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("forge: config: temperature %v out of range [0,1]", *t)
	}

	if a.MaxTokens < 0 {
		return fmt.Errorf("forge: config: max_tokens must not be negative")
	}

	if _, err := a.timeout(); err != nil {
		return fmt.Errorf("forge: config: %w", err)
	}

	return nil
}

func (a AIConfig) timeout() (time.Duration, error) {
	if a.Timeout == "" {
		return DefaultTimeout, nil
	}

	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", a.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", a.Timeout)
	}

	return d, nil
}

func (a AIConfig) temperature() float64 {
	if a.Temperature == nil {
		return provider.DefaultTemperature
	}
	return *a.Temperature
}
