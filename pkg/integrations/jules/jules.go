// Package jules starts Jules coding sessions against a GitHub repository.
package jules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/germanamz/feedbackforge/pkg/modeladapter"
)

// DefaultURL is the Jules sessions endpoint.
const DefaultURL = "https://jules.googleapis.com/v1alpha/sessions"

// DefaultStartingBranch is used when a request names no branch.
const DefaultStartingBranch = "main"

// ErrMissingParams is returned before any request when a required field is empty.
var ErrMissingParams = errors.New("Missing required parameters: title, developerPrompt, julesApiKey, and githubRepo are required") //nolint:staticcheck // message is part of the public contract.

// APIError reports a failed session request. StatusCode and Body are zero
// for transport failures.
type APIError struct {
	Message    string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// SessionRequest describes a session to create. GitHubRepo is "owner/repo".
type SessionRequest struct {
	Title           string
	DeveloperPrompt string
	APIKey          string //nolint:gosec // caller-supplied credential, not a hardcoded secret
	APIURL          string
	GitHubRepo      string
	StartingBranch  string
}

// Session is a created Jules session. Fields the API returns beyond id, name
// and state are kept in Extra.
type Session struct {
	ID    string                     `json:"id"`
	Name  string                     `json:"name"`
	State string                     `json:"state,omitempty"`
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unknown fields in Extra.
func (s *Session) UnmarshalJSON(b []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}

	type plain Session
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	delete(all, "id")
	delete(all, "name")
	delete(all, "state")
	if len(all) > 0 {
		p.Extra = all
	}

	*s = Session(p)
	return nil
}

type createBody struct {
	Title         string        `json:"title"`
	Prompt        string        `json:"prompt"`
	SourceContext sourceContext `json:"sourceContext"`
}

type sourceContext struct {
	Source            string            `json:"source"`
	GitHubRepoContext githubRepoContext `json:"githubRepoContext"`
}

type githubRepoContext struct {
	StartingBranch string `json:"startingBranch"`
}

// Client creates Jules sessions.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a Client. A nil httpClient falls back to a default
// client with a generous timeout.
func NewClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// CreateSession starts a session working on req.DeveloperPrompt in
// req.GitHubRepo.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	if req.Title == "" || req.DeveloperPrompt == "" || req.APIKey == "" || req.GitHubRepo == "" {
		return Session{}, ErrMissingParams
	}

	url := req.APIURL
	if url == "" {
		url = DefaultURL
	}

	branch := req.StartingBranch
	if branch == "" {
		branch = DefaultStartingBranch
	}

	api := modeladapter.New(url, modeladapter.Auth{Key: req.APIKey, Header: "X-Goog-Api-Key"}, c.httpClient)

	body := createBody{
		Title:  req.Title,
		Prompt: req.DeveloperPrompt,
		SourceContext: sourceContext{
			Source:            "sources/github/" + req.GitHubRepo,
			GitHubRepoContext: githubRepoContext{StartingBranch: branch},
		},
	}

	var session Session
	if err := api.PostJSON(ctx, "", body, &session); err != nil {
		return Session{}, toAPIError(err)
	}

	return session, nil
}

// CreateSession starts a session using a default Client.
func CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	return NewClient(nil).CreateSession(ctx, req)
}

func toAPIError(err error) *APIError {
	var statusErr *modeladapter.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{
			Message:    "Jules API request failed: " + statusErr.StatusText(),
			StatusCode: statusErr.StatusCode,
			Body:       statusErr.Body,
			Err:        err,
		}
	}

	var rlErr *modeladapter.RateLimitError
	if errors.As(err, &rlErr) {
		return &APIError{
			Message:    "Jules API request failed: " + http.StatusText(http.StatusTooManyRequests),
			StatusCode: http.StatusTooManyRequests,
			Body:       rlErr.Body,
			Err:        err,
		}
	}

	return &APIError{
		Message: fmt.Sprintf("Failed to create Jules session: %v", err),
		Err:     err,
	}
}
