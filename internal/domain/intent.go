package domain

// Intent is the closed-set classification of a user's natural-language
// request. IntentOther is the universal safe fallback: classification
// degrades to it instead of failing.
type Intent string

const (
	IntentSaveMemory     Intent = "save_memory"
	IntentSearchMemories Intent = "search_memories"
	IntentGetAllMemories Intent = "get_all_memories"
	IntentReadTasks      Intent = "readTasks"
	IntentNewTask        Intent = "newTask"
	IntentMarkTaskDone   Intent = "markTaskAsDone"
	IntentGetEvents      Intent = "getEvents"
	IntentOther          Intent = "other"
)

// Intents lists every recognized intent in a stable order, IntentOther last.
func Intents() []Intent {
	return []Intent{
		IntentSaveMemory,
		IntentSearchMemories,
		IntentGetAllMemories,
		IntentReadTasks,
		IntentNewTask,
		IntentMarkTaskDone,
		IntentGetEvents,
		IntentOther,
	}
}

// ParseIntent maps a raw action string onto the closed intent set.
func ParseIntent(raw string) (Intent, bool) {
	for _, intent := range Intents() {
		if string(intent) == raw {
			return intent, true
		}
	}
	return IntentOther, false
}
