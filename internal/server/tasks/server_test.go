package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func connectTestClient(t *testing.T, srv *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return result
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestTaskServerRoundTrip(t *testing.T) {
	store := openTestStore(t)
	session := connectTestClient(t, NewServer(store, nil))

	result := callTool(t, session, "get_tasks", map[string]any{})
	require.False(t, result.IsError)
	require.Equal(t, "No tasks found", textOf(t, result))

	result = callTool(t, session, "add_new_task", map[string]any{"task": "do the laundry"})
	require.False(t, result.IsError)
	require.Equal(t, "Successfully added task", textOf(t, result))

	result = callTool(t, session, "complete_task", map[string]any{"task": "do the laundry"})
	require.False(t, result.IsError)
	require.Equal(t, "Successfully updated task", textOf(t, result))

	result = callTool(t, session, "get_tasks", map[string]any{})
	require.False(t, result.IsError)

	var list []Task
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &list))
	require.Equal(t, []Task{{Title: "do the laundry", IsDone: true}}, list)
}

func TestTaskServerBusinessErrorsArePayloads(t *testing.T) {
	store := openTestStore(t)
	session := connectTestClient(t, NewServer(store, nil))

	result := callTool(t, session, "complete_task", map[string]any{"task": "ghost"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(t, result), "not found")

	callTool(t, session, "add_new_task", map[string]any{"task": "once"})
	result = callTool(t, session, "add_new_task", map[string]any{"task": "once"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(t, result), "already exists")
}
