package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(msg)},
		IsError: true,
	}
}

// jsonResult marshals v as indented JSON and wraps it as a tool result,
// matching an MCP handler's (*mcp.CallToolResult, error) return shape — a
// marshal failure becomes an IsError result rather than a Go error, since
// mcp-go handlers are expected to report failures through the result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal result: %s", err)), nil
	}
	return textResult(string(data)), nil
}

// valueToJSON renders a value.Value as indented JSON text for tool output.
func valueToJSON(v value.Value) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("marshal error: %s", err)
	}
	return string(data)
}
