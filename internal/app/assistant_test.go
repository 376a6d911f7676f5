package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"agenthub/internal/domain"
	"agenthub/internal/infra/intent"
	"agenthub/internal/infra/registry"
)

// scriptedModel replays canned responses in order: the first Generate
// call answers classification, later calls answer reply composition.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

func (s *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content := s.responses[s.calls]
	s.calls++
	return schema.AssistantMessage(content, nil), nil
}

func (s *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("", nil)}), nil
}

type recordingClient struct {
	tools []domain.ToolDescriptor

	mu   sync.Mutex
	seen []domain.ToolCall
}

func (r *recordingClient) Name() string { return "fake" }

func (r *recordingClient) Open(context.Context) error { return nil }

func (r *recordingClient) Tools() []domain.ToolDescriptor { return r.tools }
func (r *recordingClient) Invoke(_ context.Context, tool string, args json.RawMessage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, domain.ToolCall{Name: tool, Arguments: args})
	return "Successfully added task", nil
}
func (r *recordingClient) Close() error { return nil }

func newTestAssistant(t *testing.T, oracle *scriptedModel, client *recordingClient) *Assistant {
	t.Helper()
	manager := registry.NewManager(registry.ManagerOptions{
		NewClient: func(domain.ServerSpec) domain.ToolClient { return client },
	})
	manager.LoadServers([]domain.ServerSpec{{
		Name:     "fake",
		Endpoint: "http://127.0.0.1:1/fake",
		APIKey:   "k",
	}})
	require.NoError(t, manager.ConnectAll(context.Background()))
	t.Cleanup(manager.CloseAll)

	resolver := intent.NewResolver(oracle, intent.ResolverOptions{})
	return NewAssistant(AssistantOptions{
		Manager:  manager,
		Resolver: resolver,
		Model:    oracle,
	})
}

func TestAnswerDispatchesClassifiedTool(t *testing.T) {
	oracle := &scriptedModel{responses: []string{
		`{"action": "newTask"}`,
		"Added the laundry task for you.",
	}}
	client := &recordingClient{tools: []domain.ToolDescriptor{{Name: "add_new_task"}}}
	assistant := newTestAssistant(t, oracle, client)

	response, err := assistant.Answer(context.Background(), "Add a task: do the laundry")
	require.NoError(t, err)

	require.Equal(t, domain.IntentNewTask, response.Intent)
	require.Equal(t, "add_new_task", response.Tool)
	require.Equal(t, "Successfully added task", response.ToolOutput)
	require.Equal(t, "Added the laundry task for you.", response.Reply)

	require.Len(t, client.seen, 1)
	require.JSONEq(t, `{"task":"do the laundry"}`, string(client.seen[0].Arguments))
}

func TestAnswerOtherSkipsDispatch(t *testing.T) {
	oracle := &scriptedModel{responses: []string{
		`{"action": "other"}`,
		"Hello! How can I help?",
	}}
	client := &recordingClient{tools: []domain.ToolDescriptor{{Name: "add_new_task"}}}
	assistant := newTestAssistant(t, oracle, client)

	response, err := assistant.Answer(context.Background(), "hello there")
	require.NoError(t, err)

	require.Equal(t, domain.IntentOther, response.Intent)
	require.Empty(t, response.Tool)
	require.Equal(t, "Hello! How can I help?", response.Reply)
	require.Empty(t, client.seen)
}

func TestAnswerSurfacesToolFailureInReply(t *testing.T) {
	oracle := &scriptedModel{responses: []string{
		`{"action": "getEvents"}`,
		"I could not reach your calendar.",
	}}
	// No tool server registers get_events, so dispatch fails per-item.
	client := &recordingClient{tools: []domain.ToolDescriptor{{Name: "add_new_task"}}}
	assistant := newTestAssistant(t, oracle, client)

	response, err := assistant.Answer(context.Background(), "What is on my calendar?")
	require.NoError(t, err)

	require.Equal(t, domain.IntentGetEvents, response.Intent)
	require.Equal(t, "get_events", response.Tool)
	require.Contains(t, response.ToolOutput, "tool call failed")
	require.Equal(t, "I could not reach your calendar.", response.Reply)
}
