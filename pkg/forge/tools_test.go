package forge_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/germanamz/feedbackforge/pkg/forge"
	"github.com/germanamz/feedbackforge/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolBox(t *testing.T, cfg forge.Config, opts ...forge.ServiceOption) *toolbox.ToolBox {
	t.Helper()

	tb, err := forge.ToolBox(newService(t, cfg, opts...))
	require.NoError(t, err)

	return tb
}

func TestToolBox_Names(t *testing.T) {
	tb := newToolBox(t, forge.Config{AI: forge.AIConfig{CustomProvider: stubProvider("", nil)}})

	var names []string
	for _, tool := range tb.Tools() {
		names = append(names, tool.Name)
	}

	assert.Equal(t, []string{forge.ToolCreateGitHubIssue, forge.ToolProcessFeedback, forge.ToolStartJulesSession}, names)
}

func TestToolBox_Schemas(t *testing.T) {
	tb := newToolBox(t, forge.Config{AI: forge.AIConfig{CustomProvider: stubProvider("", nil)}})

	tool, ok := tb.Get(forge.ToolProcessFeedback)
	require.True(t, ok)

	var schema struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(tool.InputSchema, &schema))

	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"title", "feedback"}, schema.Required)
	assert.Contains(t, schema.Properties, "breadcrumbs")
	assert.Contains(t, schema.Properties, "developerPrompt")
}

func TestToolBox_ProcessFeedback(t *testing.T) {
	tb := newToolBox(t, forge.Config{AI: forge.AIConfig{CustomProvider: stubProvider(`{"developerPrompt":"Generated"}`, nil)}})

	out, err := tb.Call(context.Background(), forge.ToolProcessFeedback,
		json.RawMessage(`{"title":"Broken button","feedback":"The button is broken","breadcrumbs":"/home"}`))
	require.NoError(t, err)

	var fb forge.Feedback
	require.NoError(t, json.Unmarshal([]byte(out), &fb))
	assert.Equal(t, "Generated", fb.DeveloperPrompt)
	assert.Equal(t, "/home", fb.Breadcrumbs)
	assert.Equal(t, forge.StatusReceived, fb.Status)
}

func TestToolBox_CreateGitHubIssue(t *testing.T) {
	issues := &fakeIssues{}
	tb := newToolBox(t, fullConfig(stubProvider("", nil)), forge.WithIssueCreator(issues))

	out, err := tb.Call(context.Background(), forge.ToolCreateGitHubIssue, json.RawMessage(`{"title":"t","body":"b"}`))
	require.NoError(t, err)
	assert.Contains(t, out, `"html_url":"https://github.com/acme/webapp/issues/42"`)
	require.Len(t, issues.reqs, 1)
}

func TestToolBox_StartJulesSession(t *testing.T) {
	sessions := &fakeSessions{}
	tb := newToolBox(t, fullConfig(stubProvider("", nil)), forge.WithSessionStarter(sessions))

	out, err := tb.Call(context.Background(), forge.ToolStartJulesSession, json.RawMessage(`{"title":"t","developerPrompt":"p"}`))
	require.NoError(t, err)
	assert.Contains(t, out, `"id":"sess-1"`)
}

func TestToolBox_Errors(t *testing.T) {
	tb := newToolBox(t, forge.Config{AI: forge.AIConfig{CustomProvider: stubProvider("", nil)}})

	_, err := tb.Call(context.Background(), forge.ToolProcessFeedback, json.RawMessage(`not json`))
	assert.ErrorIs(t, err, forge.ErrInvalidInput)

	_, err = tb.Call(context.Background(), forge.ToolProcessFeedback, nil)
	assert.ErrorIs(t, err, forge.ErrInvalidInput)

	_, err = tb.Call(context.Background(), forge.ToolCreateGitHubIssue, json.RawMessage(`{"title":"t","body":"b"}`))
	assert.ErrorIs(t, err, forge.ErrGitHubNotConfigured)
}
