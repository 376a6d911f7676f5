package app

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"agenthub/internal/domain"
	"agenthub/internal/infra/intent"
	"agenthub/internal/infra/registry"
	"agenthub/internal/infra/telemetry"
)

// maxToolRounds bounds how many dispatch rounds one query may trigger.
const maxToolRounds = 1

// Assistant turns a natural-language query into at most maxToolRounds
// tool invocations and a composed reply. Every dependency is injected;
// there is no package-level state.
type Assistant struct {
	manager  *registry.Manager
	resolver *intent.Resolver
	model    model.BaseChatModel
	logger   *zap.Logger
}

type AssistantOptions struct {
	Manager  *registry.Manager
	Resolver *intent.Resolver
	Model    model.BaseChatModel
	Logger   *zap.Logger
}

func NewAssistant(opts AssistantOptions) *Assistant {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		manager:  opts.Manager,
		resolver: opts.Resolver,
		model:    opts.Model,
		logger:   logger.Named("assistant"),
	}
}

// Response is one answered turn: the classified intent, the tool call it
// produced (empty for free-text turns), and the reply shown to the user.
type Response struct {
	Intent     domain.Intent
	Tool       string
	ToolOutput string
	Reply      string
}

// Answer resolves the query's intent, runs the mapped tool if there is
// one, and composes the reply. Intent "other" skips dispatch and goes
// straight to free-text generation.
func (a *Assistant) Answer(ctx context.Context, query string) (Response, error) {
	resolved := a.resolver.Classify(ctx, query)
	a.logger.Info("query classified", telemetry.IntentField(string(resolved)))

	call, ok := intent.Translate(query, resolved)
	if !ok {
		reply, err := a.freeText(ctx, query)
		if err != nil {
			return Response{}, err
		}
		return Response{Intent: resolved, Reply: reply}, nil
	}

	for range maxToolRounds {
		results := a.manager.Dispatch(ctx, []domain.ToolCall{*call})
		result := results[0]

		output := result.Value
		if result.Err != nil {
			a.logger.Warn("tool round failed",
				telemetry.ToolField(result.Tool), zap.Error(result.Err))
			output = fmt.Sprintf("The tool call failed: %v", result.Err)
		}

		reply, err := a.compose(ctx, query, result.Tool, output)
		if err != nil {
			// The tool already ran; surface its output rather than
			// failing the whole turn on a reply-generation error.
			a.logger.Warn("reply composition failed", zap.Error(err))
			reply = output
		}
		return Response{
			Intent:     resolved,
			Tool:       result.Tool,
			ToolOutput: output,
			Reply:      reply,
		}, nil
	}
	return Response{}, fmt.Errorf("no tool rounds executed")
}

func (a *Assistant) freeText(ctx context.Context, query string) (string, error) {
	response, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(chatSystemPrompt),
		schema.UserMessage(query),
	})
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return response.Content, nil
}

func (a *Assistant) compose(ctx context.Context, query, tool, output string) (string, error) {
	prompt := fmt.Sprintf(
		"The user asked: %q\n\nThe %s tool returned:\n%s\n\nAnswer the user's request based on the tool output. Be concise.",
		query, tool, output)
	response, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(chatSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

const chatSystemPrompt = "You are a helpful personal assistant that manages the user's memories, tasks, and calendar."
