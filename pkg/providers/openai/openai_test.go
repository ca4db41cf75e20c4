package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
	"github.com/germanamz/feedbackforge/pkg/providers/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = json.RawMessage(`{"type":"object","properties":{"developerPrompt":{"type":"string"}},"required":["developerPrompt"]}`)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *openai.Adapter) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := openai.New(srv.URL, "test-key", "gpt-4o")

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

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	}
}

func TestGenerateObject_RequestShape(t *testing.T) {
	temp := 0.8

	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := readBody(t, r)
		assert.Equal(t, "gpt-4o", req["model"])
		assert.InDelta(t, 0.8, req["temperature"], 1e-9)

		msgs, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 2) // system + user

		system, _ := msgs[0].(map[string]any)
		assert.Equal(t, "system", system["role"])

		user, _ := msgs[1].(map[string]any)
		assert.Equal(t, "user", user["role"])
		parts, _ := user["content"].([]any)
		assert.Len(t, parts, 2)

		format, _ := req["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		js, _ := format["json_schema"].(map[string]any)
		assert.Equal(t, "developer_prompt", js["name"])
		assert.NotNil(t, js["schema"])

		writeJSON(t, w, chatResponse(`{"developerPrompt":"fix it"}`))
	})

	resp, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{
		System:      "be helpful",
		Prompt:      []string{"Feedback: broken", "Breadcrumbs: /home"},
		Schema:      testSchema,
		SchemaName:  "developer_prompt",
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"developerPrompt":"fix it"}`, string(resp.Object))
	assert.Equal(t, usage.Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, usage.Normalize(resp.Usage))
}

func TestGenerateObject_NoSystem(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)
		msgs, _ := req["messages"].([]any)
		assert.Len(t, msgs, 1)
		_, hasTemp := req["temperature"]
		assert.False(t, hasTemp)

		format, _ := req["response_format"].(map[string]any)
		js, _ := format["json_schema"].(map[string]any)
		assert.Equal(t, "output", js["name"])

		writeJSON(t, w, chatResponse(`{"developerPrompt":"x"}`))
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{
		Prompt: []string{"hi"},
		Schema: testSchema,
	})
	require.NoError(t, err)
}

func TestGenerateObject_FencedContent(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, chatResponse("```json\n{\"developerPrompt\":\"fenced\"}\n```"))
	})

	resp, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"hi"}, Schema: testSchema})
	require.NoError(t, err)
	assert.JSONEq(t, `{"developerPrompt":"fenced"}`, string(resp.Object))
}

func TestGenerateObject_EmptyChoices(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"choices": []any{}})
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"hi"}, Schema: testSchema})
	assert.EqualError(t, err, "openai: empty choices in response")
}

func TestGenerateObject_Refusal(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "", "refusal": "no"}},
			},
		})
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"hi"}, Schema: testSchema})
	assert.EqualError(t, err, "openai: model refused: no")
}

func TestGenerateObject_NotJSON(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, chatResponse("I cannot do that"))
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"hi"}, Schema: testSchema})
	assert.ErrorIs(t, err, modeladapter.ErrNoJSONObject)
}

func TestGenerateObject_APIError(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad schema"}}`))
	})

	_, err := adapter.GenerateObject(context.Background(), modeladapter.ObjectRequest{Prompt: []string{"hi"}, Schema: testSchema})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai: unexpected status 400")

	var statusErr *modeladapter.StatusError
	assert.True(t, errors.As(err, &statusErr))
}
