package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
	"github.com/germanamz/feedbackforge/pkg/providers/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = json.RawMessage(`{"type":"object","properties":{"developerPrompt":{"type":"string"}},"required":["developerPrompt"]}`)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *anthropic.Adapter) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := anthropic.New(srv.URL, "test-key", "claude-sonnet-4-5")

	return srv, a
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}

	return req
}

func TestGenerateObject_ToolUse(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		req := readBody(t, r)
		assert.Equal(t, "claude-sonnet-4-5", req["model"])
		assert.Equal(t, "be helpful", req["system"])
		assert.InDelta(t, 4096, req["max_tokens"], 0)

		tools, _ := req["tools"].([]any)
		require.Len(t, tools, 1)
		tool, _ := tools[0].(map[string]any)
		assert.Equal(t, "emit_output", tool["name"])
		assert.NotNil(t, tool["input_schema"])

		choice, _ := req["tool_choice"].(map[string]any)
		assert.Equal(t, "tool", choice["type"])
		assert.Equal(t, "emit_output", choice["name"])

		msgs, _ := req["messages"].([]any)
		require.Len(t, msgs, 1)
		user, _ := msgs[0].(map[string]any)
		content, _ := user["content"].([]any)
		assert.Len(t, content, 1)

		writeJSON(t, w, map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "id": "toolu_1", "name": "emit_output", "input": map[string]any{"developerPrompt": "do it"}},
			},
			"stop_reason": "tool_use",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 8},
		})
	})

	resp, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{
		System: "be helpful",
		Prompt: []string{"Feedback: x"},
		Schema: testSchema,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"developerPrompt":"do it"}`, string(resp.Object))
	assert.Equal(t, usage.Usage{InputTokens: 12, OutputTokens: 8, TotalTokens: 20}, usage.Normalize(resp.Usage))
}

func TestGenerateObject_CustomNameAndMaxTokens(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)
		assert.InDelta(t, 512, req["max_tokens"], 0)
		choice, _ := req["tool_choice"].(map[string]any)
		assert.Equal(t, "developer_prompt", choice["name"])

		writeJSON(t, w, map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "name": "developer_prompt", "input": map[string]any{"developerPrompt": "ok"}},
			},
		})
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{
		Prompt:     []string{"x"},
		Schema:     testSchema,
		SchemaName: "developer_prompt",
		MaxTokens:  512,
	})
	require.NoError(t, err)
}

func TestGenerateObject_TextFallback(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "```json\n{\"developerPrompt\":\"from text\"}\n```"},
			},
			"stop_reason": "end_turn",
		})
	})

	resp, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"x"}, Schema: testSchema})
	require.NoError(t, err)
	assert.JSONEq(t, `{"developerPrompt":"from text"}`, string(resp.Object))
}

func TestGenerateObject_NoOutput(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "no"}},
			"stop_reason": "end_turn",
		})
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"x"}, Schema: testSchema})
	assert.EqualError(t, err, `anthropic: no structured output in response (stop reason "end_turn")`)
}

func TestGenerateObject_APIError(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error"}`))
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"x"}, Schema: testSchema})
	assert.ErrorContains(t, err, "anthropic: unexpected status 401")
}
