// Package toolbox holds named tools and dispatches calls to them.
package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrToolNotFound is returned by Call for an unregistered name.
var ErrToolNotFound = errors.New("tool not found")

// ToolBox is a collection of tools keyed by name.
type ToolBox struct {
	tools map[string]Tool
}

// New creates a ToolBox holding the given tools.
func New(tools ...Tool) *ToolBox {
	tb := &ToolBox{tools: make(map[string]Tool, len(tools))}
	tb.Register(tools...)
	return tb
}

// Register adds tools to the ToolBox. A tool with an existing name replaces
// the previous one.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and a boolean indicating whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Tools returns all registered tools sorted by name.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}

	slices.SortFunc(result, func(a, b Tool) int { return strings.Compare(a.Name, b.Name) })

	return result
}

// Call runs the named tool with args. Empty args are sent as "{}".
func (tb *ToolBox) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := tb.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	return t.Handler(ctx, args)
}
