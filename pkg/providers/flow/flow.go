// Package flow implements the single-vendor provider. Each call defines a
// named flow bound to a request-scoped Gemini client and runs it at once.
package flow

import (
	"context"
	"fmt"
)

// Flow is a named unit of generation work.
type Flow[In, Out any] struct {
	name string
	fn   func(ctx context.Context, in In) (Out, error)
}

// Define creates a flow with the given name and body.
func Define[In, Out any](name string, fn func(ctx context.Context, in In) (Out, error)) *Flow[In, Out] {
	return &Flow[In, Out]{name: name, fn: fn}
}

// Name returns the flow name.
func (f *Flow[In, Out]) Name() string { return f.name }

// Run executes the flow. A context that is already done short-circuits the
// body.
func (f *Flow[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	if err := ctx.Err(); err != nil {
		var zero Out
		return zero, fmt.Errorf("flow %s: %w", f.name, err)
	}

	return f.fn(ctx, in)
}
