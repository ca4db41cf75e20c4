package main

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/feedbackforge/pkg/forge"
)

// runFeedbackForm asks for the submission fields that are still empty.
func runFeedbackForm(sub *forge.Submission) error {
	var fields []huh.Field

	if sub.Feedback == "" {
		fields = append(fields, huh.NewText().
			Title("Feedback").
			Description("What went wrong, or what should change?").
			Value(&sub.Feedback).
			Validate(required("feedback")))
	}

	if sub.Title == "" {
		fields = append(fields, huh.NewInput().
			Title("Title").
			Description("Leave empty to use the first line of the feedback.").
			Value(&sub.Title))
	}

	if sub.Breadcrumbs == "" {
		fields = append(fields, huh.NewInput().
			Title("Breadcrumbs").
			Placeholder("/home -> /settings").
			Value(&sub.Breadcrumbs))
	}

	if len(fields) == 0 {
		return nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	sub.Feedback = strings.TrimSpace(sub.Feedback)
	sub.Title = strings.TrimSpace(sub.Title)
	sub.Breadcrumbs = strings.TrimSpace(sub.Breadcrumbs)

	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
