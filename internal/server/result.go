// Package server holds the result and argument helpers shared by the
// tool server implementations.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Text wraps plain text in a tool result.
func Text(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// JSON renders v as a JSON tool result.
func JSON(v any) *mcp.CallToolResult {
	raw, err := json.Marshal(v)
	if err != nil {
		return Errorf("encode result: %v", err)
	}
	return Text(string(raw))
}

// Errorf reports a tool-level failure as an IsError payload. The
// transport stays healthy; the caller sees the message as the result.
func Errorf(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

// DecodeArgs unmarshals the request arguments into v. Missing arguments
// decode as an empty object.
func DecodeArgs(req *mcp.CallToolRequest, v any) error {
	args := req.Params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return json.Unmarshal(args, v)
}
