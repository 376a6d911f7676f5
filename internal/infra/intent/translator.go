package intent

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"agenthub/internal/domain"
)

// translationRule maps one intent onto a concrete tool call shape.
// Intents whose tool takes an argument extract it from the query by
// stripping a matched prefix (and optionally a suffix); list-style
// intents send empty arguments.
type translationRule struct {
	tool     string
	argKey   string
	prefixes []string
	suffixes []string
}

var translationRules = map[domain.Intent]translationRule{
	domain.IntentSaveMemory: {
		tool:     "save_memory",
		argKey:   "content",
		prefixes: []string{"Save a memory:", "Remember:"},
	},
	domain.IntentSearchMemories: {
		tool:     "search_memories",
		argKey:   "query",
		prefixes: []string{"Search for memories about", "Search memories for", "Find memories about"},
	},
	domain.IntentGetAllMemories: {tool: "get_all_memories"},
	domain.IntentReadTasks:      {tool: "get_tasks"},
	domain.IntentNewTask: {
		tool:     "add_new_task",
		argKey:   "task",
		prefixes: []string{"Add a task:", "New task:", "Create task:"},
	},
	domain.IntentMarkTaskDone: {
		tool:     "complete_task",
		argKey:   "task",
		prefixes: []string{"Mark task", "Complete task:"},
		suffixes: []string{"as done", "as completed"},
	},
	domain.IntentGetEvents: {tool: "get_events"},
}

// Translate deterministically converts a classified intent plus the
// original query into a tool call. It involves no model round-trip. The
// second return is false when the intent maps to no tool (IntentOther).
func Translate(query string, intent domain.Intent) (*domain.ToolCall, bool) {
	rule, ok := translationRules[intent]
	if !ok {
		return nil, false
	}

	args := json.RawMessage(`{}`)
	if rule.argKey != "" {
		value := extractArgument(query, rule.prefixes, rule.suffixes)
		encoded, err := json.Marshal(map[string]string{rule.argKey: value})
		if err != nil {
			return nil, false
		}
		args = encoded
	}

	return &domain.ToolCall{
		ID:        "tool_call_" + rule.tool + "_" + uuid.NewString(),
		Name:      rule.tool,
		Arguments: args,
	}, true
}

// extractArgument strips the first matching prefix and then the first
// matching suffix, case-insensitively, trimming whitespace after each.
func extractArgument(query string, prefixes, suffixes []string) string {
	content := strings.TrimSpace(query)
	lower := strings.ToLower(content)
	for _, prefix := range prefixes {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			content = strings.TrimSpace(content[len(prefix):])
			break
		}
	}
	lower = strings.ToLower(content)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			content = strings.TrimSpace(content[:len(content)-len(suffix)])
			break
		}
	}
	return content
}
