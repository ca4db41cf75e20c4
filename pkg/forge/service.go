package forge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/germanamz/feedbackforge/pkg/integrations/github"
	"github.com/germanamz/feedbackforge/pkg/integrations/jules"
	"github.com/germanamz/feedbackforge/pkg/modeladapter/usage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultBreadcrumbs is recorded when a submission carries no breadcrumbs.
const DefaultBreadcrumbs = "Submitted via API"

// Integration errors.
var (
	ErrGitHubNotConfigured = errors.New("GitHub integration not configured") //nolint:staticcheck // message is part of the public contract.
	ErrJulesNotConfigured  = errors.New("Jules integration not configured")  //nolint:staticcheck // message is part of the public contract.
)

// IssueCreator files GitHub issues. *github.Client satisfies it.
type IssueCreator interface {
	CreateIssue(ctx context.Context, req github.IssueRequest) (github.Issue, error)
}

// SessionStarter starts Jules sessions. *jules.Client satisfies it.
type SessionStarter interface {
	CreateSession(ctx context.Context, req jules.SessionRequest) (jules.Session, error)
}

// Submission is a feedback report as received from a client.
type Submission struct {
	Title           string `json:"title" jsonschema:"Short summary of the feedback." validate:"required,max=200"`
	Feedback        string `json:"feedback" jsonschema:"The user's feedback text." validate:"required"`
	Breadcrumbs     string `json:"breadcrumbs,omitempty" jsonschema:"The user's navigation path before submitting."`
	UserID          string `json:"userId,omitempty" jsonschema:"Identifier of the submitting user."`
	DeveloperPrompt string `json:"developerPrompt,omitempty" jsonschema:"A developer prompt to use instead of generating one."`
}

// IssueInput is the input of CreateGitHubIssue.
type IssueInput struct {
	Title string `json:"title" jsonschema:"Issue title." validate:"required"`
	Body  string `json:"body" jsonschema:"Issue body in Markdown." validate:"required"`
}

// SessionInput is the input of StartJulesSession.
type SessionInput struct {
	Title           string `json:"title" jsonschema:"Session title." validate:"required"`
	DeveloperPrompt string `json:"developerPrompt" jsonschema:"The task for the coding agent." validate:"required"`
}

// Feedback is the record produced by ProcessFeedbackComplete.
type Feedback struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Feedback          string    `json:"feedback"`
	Breadcrumbs       string    `json:"breadcrumbs"`
	UserID            string    `json:"userId,omitempty"`
	DeveloperPrompt   string    `json:"developerPrompt"`
	Status            string    `json:"status"`
	JulesSessionID    string    `json:"julesSessionId,omitempty"`
	GitHubIssueNumber int       `json:"githubIssueNumber,omitempty"`
	GitHubIssueURL    string    `json:"githubIssueUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger. The default discards everything.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// WithIssueCreator replaces the GitHub client.
func WithIssueCreator(c IssueCreator) ServiceOption {
	return func(s *Service) { s.issues = c }
}

// WithSessionStarter replaces the Jules client.
func WithSessionStarter(st SessionStarter) ServiceOption {
	return func(s *Service) { s.sessions = st }
}

// WithProcessor replaces the processor built from the config.
func WithProcessor(p *Processor) ServiceOption {
	return func(s *Service) { s.processor = p }
}

// Service combines feedback processing with the GitHub and Jules
// integrations.
type Service struct {
	cfg       Config
	statuses  ManagedStatuses
	processor *Processor
	issues    IssueCreator
	sessions  SessionStarter
	log       zerolog.Logger
	usage     usage.Tracker
	now       func() time.Time
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		statuses: cfg.JulesManagedStatuses.withDefaults(),
		log:      zerolog.Nop(),
		now:      time.Now,
	}

	for _, o := range opts {
		o(s)
	}

	if s.processor == nil {
		p, err := NewProcessor(cfg)
		if err != nil {
			return nil, err
		}
		s.processor = p
	}

	if s.issues == nil {
		s.issues = github.NewClient(cfg.AI.HTTPClient)
	}

	if s.sessions == nil {
		s.sessions = jules.NewClient(cfg.AI.HTTPClient)
	}

	return s, nil
}

// Usage returns the cumulative token usage of every processing call.
func (s *Service) Usage() usage.Usage {
	return s.usage.Total()
}

// ProcessFeedback generates a developer prompt. Empty breadcrumbs are
// replaced with DefaultBreadcrumbs.
func (s *Service) ProcessFeedback(ctx context.Context, feedback, breadcrumbs string) (DeveloperPrompt, error) {
	if breadcrumbs == "" {
		breadcrumbs = DefaultBreadcrumbs
	}

	s.log.Debug().
		Str("provider", string(s.processor.Kind())).
		Str("model", s.processor.Model()).
		Msg("processing feedback")

	start := time.Now()

	out, u, err := s.processor.ProcessWithUsage(ctx, FeedbackInput{Feedback: feedback, Breadcrumbs: breadcrumbs})
	s.usage.Add(u)
	if err != nil {
		return DeveloperPrompt{}, err
	}

	s.log.Info().
		Str("provider", string(s.processor.Kind())).
		Str("model", s.processor.Model()).
		Int("tokens", u.TotalTokens).
		Dur("elapsed", time.Since(start)).
		Msg("feedback processed")

	return out, nil
}

// CreateGitHubIssue files an issue in the configured repository.
func (s *Service) CreateGitHubIssue(ctx context.Context, title, body string) (github.Issue, error) {
	if s.cfg.GitHub == nil {
		return github.Issue{}, ErrGitHubNotConfigured
	}

	if err := validateStruct(IssueInput{Title: title, Body: body}); err != nil {
		return github.Issue{}, err
	}

	s.log.Info().Str("title", title).Msg("creating github issue")

	g := s.cfg.GitHub
	issue, err := s.issues.CreateIssue(ctx, github.IssueRequest{
		Title:   title,
		Body:    body,
		Owner:   g.Owner,
		Repo:    g.Repo,
		Token:   g.Token,
		BaseURL: g.BaseURL,
	})
	if err != nil {
		return github.Issue{}, err
	}

	s.log.Info().Int("issue", issue.Number).Str("url", issue.HTMLURL).Msg("github issue created")

	return issue, nil
}

// StartJulesSession starts a coding session on the configured repository.
func (s *Service) StartJulesSession(ctx context.Context, title, developerPrompt string) (jules.Session, error) {
	if s.cfg.Jules == nil {
		return jules.Session{}, ErrJulesNotConfigured
	}

	if err := validateStruct(SessionInput{Title: title, DeveloperPrompt: developerPrompt}); err != nil {
		return jules.Session{}, err
	}

	s.log.Info().Str("title", title).Msg("starting jules session")

	j := s.cfg.Jules
	session, err := s.sessions.CreateSession(ctx, jules.SessionRequest{
		Title:           title,
		DeveloperPrompt: developerPrompt,
		APIKey:          j.APIKey,
		APIURL:          j.APIURL,
		GitHubRepo:      j.GitHubRepo,
		StartingBranch:  j.StartingBranch,
	})
	if err != nil {
		return jules.Session{}, err
	}

	s.log.Info().Str("session", session.ID).Msg("jules session started")

	return session, nil
}

// ProcessFeedbackComplete validates sub, generates its developer prompt unless
// one is supplied, then runs the enabled follow-ups concurrently. Follow-up
// failures are logged and leave the record in the received status.
func (s *Service) ProcessFeedbackComplete(ctx context.Context, sub Submission) (Feedback, error) {
	if err := validateStruct(sub); err != nil {
		return Feedback{}, err
	}

	fb := Feedback{
		ID:              uuid.NewString(),
		Title:           sub.Title,
		Feedback:        sub.Feedback,
		Breadcrumbs:     sub.Breadcrumbs,
		UserID:          sub.UserID,
		DeveloperPrompt: sub.DeveloperPrompt,
		Status:          s.statuses.Received,
		CreatedAt:       s.now(),
	}
	if fb.Breadcrumbs == "" {
		fb.Breadcrumbs = DefaultBreadcrumbs
	}

	log := s.log.With().Str("request_id", fb.ID).Str("title", fb.Title).Logger()

	if fb.DeveloperPrompt == "" {
		out, err := s.ProcessFeedback(ctx, fb.Feedback, fb.Breadcrumbs)
		if err != nil {
			return Feedback{}, fmt.Errorf("forge: process feedback %s: %w", fb.ID, err)
		}
		fb.DeveloperPrompt = out.DeveloperPrompt
	} else {
		log.Debug().Msg("developer prompt supplied, skipping generation")
	}

	var (
		g       errgroup.Group
		issue   github.Issue
		session jules.Session
		started bool
	)

	if s.cfg.AutoCreateGitHubIssue && s.cfg.GitHub != nil {
		g.Go(func() error {
			var err error
			issue, err = s.CreateGitHubIssue(ctx, fb.Title, fb.DeveloperPrompt)
			if err != nil {
				log.Error().Err(err).Msg("failed to create github issue")
			}
			return nil
		})
	}

	if s.cfg.AutoStartJulesSession && s.cfg.Jules != nil {
		g.Go(func() error {
			var err error
			session, err = s.StartJulesSession(ctx, fb.Title, fb.DeveloperPrompt)
			if err != nil {
				log.Error().Err(err).Msg("failed to start jules session")
				return nil
			}
			started = true
			return nil
		})
	}

	_ = g.Wait()

	fb.GitHubIssueNumber = issue.Number
	fb.GitHubIssueURL = issue.HTMLURL

	if started {
		fb.JulesSessionID = session.ID
		fb.Status = s.statuses.InProgress
	}

	log.Info().Str("status", fb.Status).Msg("feedback complete")

	return fb, nil
}
