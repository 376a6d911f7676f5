// Package tasks implements the task management tool server: list, add,
// and complete operations over a persistent store.
package tasks

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"agenthub/internal/server"
)

var serverImpl = &mcp.Implementation{Name: "tasks", Version: "0.1.0"}

// NewServer exposes the store's operations as MCP tools. Business-rule
// failures (duplicate title, unknown task) come back as tool-level error
// payloads, never transport failures.
func NewServer(store *Store, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("tasks")

	srv := mcp.NewServer(serverImpl, &mcp.ServerOptions{HasTools: true})

	srv.AddTool(&mcp.Tool{
		Name:        "get_tasks",
		Description: "Retrieves all tasks for the user.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := store.List()
		if err != nil {
			log.Warn("list failed", zap.Error(err))
			return server.Errorf("get tasks: %v", err), nil
		}
		if len(list) == 0 {
			return server.Text("No tasks found"), nil
		}
		return server.JSON(list), nil
	})

	srv.AddTool(&mcp.Tool{
		Name:        "add_new_task",
		Description: "Adds a new task for the user.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task": map[string]any{
					"type":        "string",
					"description": "The description of the task to add.",
				},
			},
			"required": []string{"task"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Task string `json:"task"`
		}
		if err := server.DecodeArgs(req, &args); err != nil {
			return server.Errorf("decode arguments: %v", err), nil
		}
		if args.Task == "" {
			return server.Errorf("task is required"), nil
		}
		if err := store.Add(args.Task); err != nil {
			if errors.Is(err, ErrTaskExists) {
				return server.Errorf("task %q already exists", args.Task), nil
			}
			log.Warn("add failed", zap.Error(err))
			return server.Errorf("add task: %v", err), nil
		}
		return server.Text("Successfully added task"), nil
	})

	srv.AddTool(&mcp.Tool{
		Name:        "complete_task",
		Description: "Marks a specified task as done for the user.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task": map[string]any{
					"type":        "string",
					"description": "The description of the task to mark as done.",
				},
			},
			"required": []string{"task"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Task string `json:"task"`
		}
		if err := server.DecodeArgs(req, &args); err != nil {
			return server.Errorf("decode arguments: %v", err), nil
		}
		if err := store.Complete(args.Task); err != nil {
			if errors.Is(err, ErrTaskNotFound) {
				return server.Errorf("task %q not found", args.Task), nil
			}
			log.Warn("complete failed", zap.Error(err))
			return server.Errorf("complete task: %v", err), nil
		}
		return server.Text("Successfully updated task"), nil
	})

	return srv
}
