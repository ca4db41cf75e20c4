package forge_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/germanamz/feedbackforge/pkg/forge"
	"github.com/germanamz/feedbackforge/pkg/providers/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_FORGE_AI_KEY", "sk-from-env")

	path := writeConfig(t, `
ai:
  provider: multi
  model: openai:gpt-4o
  api_key: ${TEST_FORGE_AI_KEY}
  temperature: 0.2
  max_tokens: 2048
  timeout: 30s
  base_urls:
    openai: http://localhost:9999
feedback_system_prompt: Be brief.
github:
  owner: acme
  repo: webapp
  token: ghp_test
jules:
  api_key: jules-key
  github_repo: acme/webapp
  github_starting_branch: develop
auto_create_github_issue: true
auto_start_jules_session: true
jules_managed_statuses:
  in_progress: working
`)

	cfg, err := forge.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "multi", cfg.AI.Provider)
	assert.Equal(t, "openai:gpt-4o", cfg.AI.Model)
	assert.Equal(t, "sk-from-env", cfg.AI.APIKey)
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.2, *cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.AI.MaxTokens)
	assert.Equal(t, "30s", cfg.AI.Timeout)
	assert.Equal(t, "http://localhost:9999", cfg.AI.BaseURLs["openai"])
	assert.Equal(t, "Be brief.", cfg.FeedbackSystemPrompt)

	require.NotNil(t, cfg.GitHub)
	assert.Equal(t, "acme", cfg.GitHub.Owner)
	require.NotNil(t, cfg.Jules)
	assert.Equal(t, "develop", cfg.Jules.StartingBranch)
	assert.True(t, cfg.AutoCreateGitHubIssue)
	assert.True(t, cfg.AutoStartJulesSession)
	assert.Equal(t, "working", cfg.JulesManagedStatuses.InProgress)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := forge.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "forge: load config")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	_, err := forge.LoadConfig(writeConfig(t, "ai: [unclosed"))
	assert.ErrorContains(t, err, "forge: parse config")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     forge.Config
		wantErr string
	}{
		{
			name: "empty is valid",
			cfg:  forge.Config{},
		},
		{
			name:    "unknown provider",
			cfg:     forge.Config{AI: forge.AIConfig{Provider: "bedrock"}},
			wantErr: "Unknown AI provider: bedrock",
		},
		{
			name:    "temperature above range",
			cfg:     forge.Config{AI: forge.AIConfig{Temperature: provider.Temperature(1.5)}},
			wantErr: "out of range",
		},
		{
			name:    "negative temperature",
			cfg:     forge.Config{AI: forge.AIConfig{Temperature: provider.Temperature(-0.1)}},
			wantErr: "out of range",
		},
		{
			name:    "bad timeout",
			cfg:     forge.Config{AI: forge.AIConfig{Timeout: "soon"}},
			wantErr: "invalid timeout",
		},
		{
			name:    "negative timeout",
			cfg:     forge.Config{AI: forge.AIConfig{Timeout: "-1s"}},
			wantErr: "must not be negative",
		},
		{
			name:    "incomplete github",
			cfg:     forge.Config{GitHub: &forge.GitHubConfig{Owner: "acme"}},
			wantErr: "github owner, repo and token are required",
		},
		{
			name:    "incomplete jules",
			cfg:     forge.Config{Jules: &forge.JulesConfig{APIKey: "k"}},
			wantErr: "jules api_key and github_repo are required",
		},
		{
			name:    "auto issue without github",
			cfg:     forge.Config{AutoCreateGitHubIssue: true},
			wantErr: "auto_create_github_issue requires github",
		},
		{
			name:    "auto session without jules",
			cfg:     forge.Config{AutoStartJulesSession: true},
			wantErr: "auto_start_jules_session requires jules",
		},
		{
			name: "custom provider ignores tag",
			cfg: forge.Config{AI: forge.AIConfig{
				Provider:       "bedrock",
				CustomProvider: stubProvider(`{"developerPrompt":"x"}`, nil),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefaultTimeout(t *testing.T) {
	assert.Equal(t, 2*time.Minute, forge.DefaultTimeout)
}
