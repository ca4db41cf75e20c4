// Package tools exposes Feedback Forge operations as callable tools.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/feedbackforge/pkg/tools/toolbox]: Tool type and ToolBox for registering, listing and calling tools
//   - [github.com/germanamz/feedbackforge/pkg/tools/mcpserver]: serves toolbox tools over the Model Context Protocol using the official MCP Go SDK
package tools
