// Package calendar implements the calendar tool server. Events are a
// fixed demo set; a production system would back this with a calendar
// API.
package calendar

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"agenthub/internal/server"
)

var serverImpl = &mcp.Implementation{Name: "calendar", Version: "0.1.0"}

// Event is one calendar entry with RFC 3339 start and end times.
type Event struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// DemoEvents returns the built-in event set served when none is
// provided.
func DemoEvents() []Event {
	return []Event{
		{
			Title: "MCP Stream",
			Start: "2025-05-30T10:00:00",
			End:   "2025-05-30T11:00:00",
		},
		{
			Title: "Team Meeting",
			Start: "2025-05-30T14:00:00",
			End:   "2025-05-30T15:00:00",
		},
	}
}

// NewServer exposes the event list as an MCP tool. A nil events slice
// serves DemoEvents.
func NewServer(events []Event, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = DemoEvents()
	}

	srv := mcp.NewServer(serverImpl, &mcp.ServerOptions{HasTools: true})

	srv.AddTool(&mcp.Tool{
		Name:        "get_events",
		Description: "Retrieves the list of calendar events.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return server.JSON(events), nil
	})

	return srv
}
