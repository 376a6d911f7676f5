// Package memory implements the long-term memory tool server: save,
// search, and list operations over a persistent store.
package memory

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"agenthub/internal/server"
)

var serverImpl = &mcp.Implementation{Name: "memory", Version: "0.1.0"}

// NewServer exposes the store's operations as MCP tools.
func NewServer(store *Store, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("memory")

	srv := mcp.NewServer(serverImpl, &mcp.ServerOptions{HasTools: true})

	srv.AddTool(&mcp.Tool{
		Name:        "save_memory",
		Description: "Saves a new memory entry.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{
					"type":        "string",
					"description": "The string content of the memory to save.",
				},
			},
			"required": []string{"content"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Content string `json:"content"`
		}
		if err := server.DecodeArgs(req, &args); err != nil {
			return server.Errorf("decode arguments: %v", err), nil
		}
		if args.Content == "" {
			return server.Errorf("content is required"), nil
		}
		if err := store.Save(args.Content); err != nil {
			log.Warn("save failed", zap.Error(err))
			return server.Errorf("save memory: %v", err), nil
		}
		return server.Text(fmt.Sprintf("Successfully saved memory: %s", args.Content)), nil
	})

	srv.AddTool(&mcp.Tool{
		Name:        "search_memories",
		Description: "Searches existing memories based on a query.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query string.",
				},
			},
			"required": []string{"query"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Query string `json:"query"`
		}
		if err := server.DecodeArgs(req, &args); err != nil {
			return server.Errorf("decode arguments: %v", err), nil
		}
		matches, err := store.Search(args.Query)
		if err != nil {
			log.Warn("search failed", zap.Error(err))
			return server.Errorf("search memories: %v", err), nil
		}
		return server.JSON(matches), nil
	})

	srv.AddTool(&mcp.Tool{
		Name:        "get_all_memories",
		Description: "Retrieves all stored memories for the user.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := store.All()
		if err != nil {
			log.Warn("list failed", zap.Error(err))
			return server.Errorf("get all memories: %v", err), nil
		}
		return server.JSON(all), nil
	})

	return srv
}
