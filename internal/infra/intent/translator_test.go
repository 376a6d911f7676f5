package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"agenthub/internal/domain"
)

func TestTranslateArgumentExtraction(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		intent   domain.Intent
		wantTool string
		wantArgs string
	}{
		{
			name:     "save memory prefix",
			query:    "Save a memory: bought milk",
			intent:   domain.IntentSaveMemory,
			wantTool: "save_memory",
			wantArgs: `{"content":"bought milk"}`,
		},
		{
			name:     "remember prefix case-insensitive",
			query:    "remember: call mom",
			intent:   domain.IntentSaveMemory,
			wantTool: "save_memory",
			wantArgs: `{"content":"call mom"}`,
		},
		{
			name:     "search memories",
			query:    "Search for memories about Go conferences",
			intent:   domain.IntentSearchMemories,
			wantTool: "search_memories",
			wantArgs: `{"query":"Go conferences"}`,
		},
		{
			name:     "new task",
			query:    "Add a task: do the laundry",
			intent:   domain.IntentNewTask,
			wantTool: "add_new_task",
			wantArgs: `{"task":"do the laundry"}`,
		},
		{
			name:     "complete task strips prefix and suffix",
			query:    "Mark task do the laundry as done",
			intent:   domain.IntentMarkTaskDone,
			wantTool: "complete_task",
			wantArgs: `{"task":"do the laundry"}`,
		},
		{
			name:     "complete task alternative suffix",
			query:    "Complete task: groceries as completed",
			intent:   domain.IntentMarkTaskDone,
			wantTool: "complete_task",
			wantArgs: `{"task":"groceries"}`,
		},
		{
			name:     "no prefix keeps whole query",
			query:    "buy oat milk",
			intent:   domain.IntentNewTask,
			wantTool: "add_new_task",
			wantArgs: `{"task":"buy oat milk"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := Translate(tt.query, tt.intent)
			require.True(t, ok)
			require.Equal(t, tt.wantTool, call.Name)
			require.JSONEq(t, tt.wantArgs, string(call.Arguments))
			require.True(t, strings.HasPrefix(call.ID, "tool_call_"+tt.wantTool+"_"))
		})
	}
}

func TestTranslateListIntents(t *testing.T) {
	tests := []struct {
		intent   domain.Intent
		wantTool string
	}{
		{intent: domain.IntentGetAllMemories, wantTool: "get_all_memories"},
		{intent: domain.IntentReadTasks, wantTool: "get_tasks"},
		{intent: domain.IntentGetEvents, wantTool: "get_events"},
	}
	for _, tt := range tests {
		call, ok := Translate("whatever the user said", tt.intent)
		require.True(t, ok)
		require.Equal(t, tt.wantTool, call.Name)
		require.JSONEq(t, `{}`, string(call.Arguments))
	}
}

func TestTranslateOtherHasNoTool(t *testing.T) {
	call, ok := Translate("hello there", domain.IntentOther)
	require.False(t, ok)
	require.Nil(t, call)
}

func TestTranslateIDsAreUnique(t *testing.T) {
	first, ok := Translate("Add a task: a", domain.IntentNewTask)
	require.True(t, ok)
	second, ok := Translate("Add a task: a", domain.IntentNewTask)
	require.True(t, ok)
	require.NotEqual(t, first.ID, second.ID)
}
