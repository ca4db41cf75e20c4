package toolbox_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/germanamz/feedbackforge/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTool_HandlerReceivesInput(t *testing.T) {
	tool := toolbox.Tool{
		Name:        "echo",
		Description: "Echoes input",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(_ context.Context, input json.RawMessage) (string, error) {
			return string(input), nil
		},
	}

	out, err := tool.Handler(context.Background(), json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)
}
