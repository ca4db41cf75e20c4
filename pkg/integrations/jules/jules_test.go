package jules_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/germanamz/feedbackforge/pkg/integrations/jules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func validRequest(url string) jules.SessionRequest {
	return jules.SessionRequest{
		Title:           "Fix login bug",
		DeveloperPrompt: "Users cannot log in after password reset.",
		APIKey:          "jules-key",
		APIURL:          url,
		GitHubRepo:      "acme/webapp",
	}
}

func TestCreateSession_Success(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1alpha/sessions", r.URL.Path)
		assert.Equal(t, "jules-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Fix login bug", body["title"])
		assert.Equal(t, "Users cannot log in after password reset.", body["prompt"])

		src, _ := body["sourceContext"].(map[string]any)
		assert.Equal(t, "sources/github/acme/webapp", src["source"])
		repoCtx, _ := src["githubRepoContext"].(map[string]any)
		assert.Equal(t, "main", repoCtx["startingBranch"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "sess-1",
			"name":       "sessions/sess-1",
			"state":      "QUEUED",
			"createTime": "2026-01-01T00:00:00Z",
		})
	})

	c := jules.NewClient(srv.Client())
	session, err := c.CreateSession(context.Background(), validRequest(srv.URL+"/v1alpha/sessions"))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "sessions/sess-1", session.Name)
	assert.Equal(t, "QUEUED", session.State)
	assert.JSONEq(t, `"2026-01-01T00:00:00Z"`, string(session.Extra["createTime"]))
}

func TestCreateSession_StartingBranch(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SourceContext struct {
				GitHubRepoContext struct {
					StartingBranch string `json:"startingBranch"`
				} `json:"githubRepoContext"`
			} `json:"sourceContext"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "develop", body.SourceContext.GitHubRepoContext.StartingBranch)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "s", "name": "n"})
	})

	req := validRequest(srv.URL)
	req.StartingBranch = "develop"

	session, err := jules.NewClient(srv.Client()).CreateSession(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, session.Extra)
}

func TestCreateSession_MissingParams(t *testing.T) {
	tests := map[string]func(*jules.SessionRequest){
		"title":  func(r *jules.SessionRequest) { r.Title = "" },
		"prompt": func(r *jules.SessionRequest) { r.DeveloperPrompt = "" },
		"key":    func(r *jules.SessionRequest) { r.APIKey = "" },
		"repo":   func(r *jules.SessionRequest) { r.GitHubRepo = "" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := validRequest("http://unused.invalid")
			mutate(&req)

			_, err := jules.CreateSession(context.Background(), req)
			require.ErrorIs(t, err, jules.ErrMissingParams)
			assert.EqualError(t, err, "Missing required parameters: title, developerPrompt, julesApiKey, and githubRepo are required")
		})
	}
}

func TestCreateSession_APIError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	})

	_, err := jules.NewClient(srv.Client()).CreateSession(context.Background(), validRequest(srv.URL))

	var apiErr *jules.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Jules API request failed: Forbidden", apiErr.Error())
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.JSONEq(t, `{"error":"forbidden"}`, apiErr.Body)
}

func TestCreateSession_RateLimited(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := jules.NewClient(srv.Client()).CreateSession(context.Background(), validRequest(srv.URL))

	var apiErr *jules.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "Jules API request failed: Too Many Requests", apiErr.Error())
}

func TestCreateSession_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := jules.NewClient(nil).CreateSession(context.Background(), validRequest(url))

	var apiErr *jules.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Error(), "Failed to create Jules session:")
	assert.Zero(t, apiErr.StatusCode)
}
