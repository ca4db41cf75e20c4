// Package mcpserver serves toolbox tools over the Model Context Protocol so
// editors and agents can submit feedback, file issues and start sessions.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/germanamz/feedbackforge/pkg/tools/toolbox"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// MCPServer serves tools over the MCP protocol using the official MCP Go SDK.
type MCPServer struct {
	server *mcp.Server
	log    zerolog.Logger
}

// Option configures an MCPServer.
type Option func(*options)

type options struct {
	log          zerolog.Logger
	instructions string
}

// WithLogger logs every tool call.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithInstructions sets the instructions advertised to clients on initialize.
func WithInstructions(s string) Option {
	return func(o *options) { o.instructions = s }
}

// New creates a new MCPServer with the given name and version.
func New(name, version string, opts ...Option) *MCPServer {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, &mcp.ServerOptions{Instructions: o.instructions})

	return &MCPServer{server: server, log: o.log}
}

// Register adds tools to the server.
func (s *MCPServer) Register(tools ...toolbox.Tool) {
	for _, t := range tools {
		s.server.AddTool(toSDKTool(t), s.toSDKHandler(t.Name, t.Handler))
	}
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func toSDKTool(t toolbox.Tool) *mcp.Tool {
	schema := t.InputSchema
	if schema == nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
	}
}

// toSDKHandler adapts a toolbox.Handler. Handler errors become tool results
// with IsError set so the client sees the message instead of a protocol error.
func (s *MCPServer) toSDKHandler(name string, h toolbox.Handler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		start := time.Now()
		result, err := h(ctx, args)
		elapsed := time.Since(start)

		if err != nil {
			s.log.Error().Err(err).Str("tool", name).Dur("elapsed", elapsed).Msg("tool call failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		s.log.Info().Str("tool", name).Dur("elapsed", elapsed).Msg("tool call")

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
