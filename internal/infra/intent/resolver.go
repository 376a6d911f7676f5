package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"agenthub/internal/domain"
	"agenthub/internal/infra/telemetry"
)

// Resolver classifies a natural-language query into the closed intent
// set using an LLM. Classification never fails: any model error,
// unparseable response, or out-of-set action degrades to IntentOther.
type Resolver struct {
	model    model.BaseChatModel
	provider string
	modelID  string
	metrics  domain.Metrics
	logger   *zap.Logger
}

type ResolverOptions struct {
	Provider string
	Model    string
	Metrics  domain.Metrics
	Logger   *zap.Logger
}

func NewResolver(chatModel model.BaseChatModel, opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	return &Resolver{
		model:    chatModel,
		provider: opts.Provider,
		modelID:  opts.Model,
		metrics:  metrics,
		logger:   logger.Named("intent"),
	}
}

// Classify resolves the intent behind query. The query text is treated as
// data to classify, never as instructions to follow.
func (r *Resolver) Classify(ctx context.Context, query string) domain.Intent {
	messages := []*schema.Message{
		schema.SystemMessage(classifySystemPrompt()),
		schema.UserMessage(classifyUserPrompt(query)),
	}

	started := time.Now()
	response, err := r.model.Generate(ctx, messages, model.WithTemperature(0))
	r.metrics.ObserveOracleLatency(r.provider, r.modelID, time.Since(started))
	if err != nil {
		r.logger.Warn("classification failed, defaulting to other",
			telemetry.EventField(telemetry.EventClassifyFallback), zap.Error(err))
		return domain.IntentOther
	}
	r.observeTokenUsage(response)

	return r.parseAction(response.Content)
}

// parseAction extracts the {"action": ...} object from the model output
// and validates it against the intent set.
func (r *Resolver) parseAction(content string) domain.Intent {
	raw, ok := extractJSON(content)
	if !ok {
		r.logger.Warn("no JSON object in classification response",
			telemetry.EventField(telemetry.EventClassifyFallback))
		return domain.IntentOther
	}

	var parsed struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		r.logger.Warn("classification response is not valid JSON",
			telemetry.EventField(telemetry.EventClassifyFallback), zap.Error(err))
		return domain.IntentOther
	}

	resolved, ok := domain.ParseIntent(parsed.Action)
	if !ok {
		r.logger.Warn("classified action is outside the intent set",
			telemetry.EventField(telemetry.EventClassifyFallback),
			zap.String("action", parsed.Action))
		return domain.IntentOther
	}
	return resolved
}

func (r *Resolver) observeTokenUsage(response *schema.Message) {
	if response == nil || response.ResponseMeta == nil || response.ResponseMeta.Usage == nil {
		return
	}
	tokens := response.ResponseMeta.Usage.TotalTokens
	if tokens <= 0 {
		return
	}
	r.metrics.ObserveOracleTokens(r.provider, r.modelID, tokens)
}

// extractJSON returns the substring spanning the first '{' to the last
// '}' of content. Models wrap the JSON object in prose; syntactic
// validation is left to the decoder.
func extractJSON(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return content[start : end+1], true
}

func allowedActions() string {
	intents := domain.Intents()
	names := make([]string, len(intents))
	for i, intent := range intents {
		names[i] = string(intent)
	}
	return strings.Join(names, ", ")
}

func classifySystemPrompt() string {
	return fmt.Sprintf(
		"You are an expert intent classifier. Classify the user's query into one of the following predefined actions: %s. "+
			"If the query doesn't fit any specific action, classify it as 'other'.",
		allowedActions())
}

func classifyUserPrompt(query string) string {
	return fmt.Sprintf(`Identify the action the user wants to perform in the following query: %q

Allowed actions: %s

Specific instructions:
- If the user mentions completing, finishing, or marking a task as done, select 'markTaskAsDone'.
- For general greetings, questions not related to memory, tasks, or calendar, or if unsure, select 'other'.

Provide your response strictly in the following JSON format inside a ## Response section:

## Justification
<Your step-by-step reasoning for choosing the action.>

## Response
{"action": "[chosen_action]"}
`, query, allowedActions())
}
