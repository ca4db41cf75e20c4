// Package github creates issues on GitHub or GitHub Enterprise.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"
)

// ErrMissingParams is returned when owner, repo or token is empty.
var ErrMissingParams = errors.New("github: owner, repo and token are required")

// IssueRequest describes an issue to create. BaseURL selects a GitHub
// Enterprise server (e.g. "https://github.example.com/api/v3/"); empty means
// github.com.
type IssueRequest struct {
	Title   string
	Body    string
	Owner   string
	Repo    string
	Token   string //nolint:gosec // caller-supplied credential, not a hardcoded secret
	BaseURL string
}

// Issue is the subset of the created issue callers need.
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
}

// Client creates issues through the GitHub REST API.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a Client. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// CreateIssue opens an issue in req.Owner/req.Repo.
func (c *Client) CreateIssue(ctx context.Context, req IssueRequest) (Issue, error) {
	if req.Owner == "" || req.Repo == "" || req.Token == "" {
		return Issue{}, ErrMissingParams
	}

	client := gh.NewClient(c.httpClient).WithAuthToken(req.Token)
	if req.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(req.BaseURL, req.BaseURL)
		if err != nil {
			return Issue{}, fmt.Errorf("github: base url: %w", err)
		}
	}

	created, _, err := client.Issues.Create(ctx, req.Owner, req.Repo, &gh.IssueRequest{
		Title: gh.String(req.Title),
		Body:  gh.String(req.Body),
	})
	if err != nil {
		return Issue{}, fmt.Errorf("github: create issue: %w", err)
	}

	return Issue{
		Number:  created.GetNumber(),
		Title:   created.GetTitle(),
		State:   created.GetState(),
		HTMLURL: created.GetHTMLURL(),
	}, nil
}

// CreateIssue opens an issue using a default Client.
func CreateIssue(ctx context.Context, req IssueRequest) (Issue, error) {
	return NewClient(nil).CreateIssue(ctx, req)
}
