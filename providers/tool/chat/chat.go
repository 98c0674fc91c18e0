// Package chat implements the conversational tool: a single completion call
// with a fixed assistant persona. It is also the category classification
// falls back to, so it must cope with any query at all.
package chat

import (
	"context"
	"log/slog"

	"github.com/agentrouter/agentrouter/providers/ai"
)

// ToolName is the category identifier for this tool.
const ToolName = "conversational"

const (
	personaPrompt = "You are a helpful AI assistant. Provide clear, accurate, and helpful responses to user questions. Be concise but informative."

	// Low but nonzero: conversational answers should vary slightly.
	temperature = 0.1
	maxTokens   = 500
)

// unavailableMessage is returned whenever the completion service cannot
// produce an answer.
const unavailableMessage = "I'm sorry, I couldn't process your request at the moment. The completion service might be unavailable."

// Tool answers general queries.
type Tool struct {
	completer ai.Completer
	logger    *slog.Logger
}

// New creates the conversational tool. The logger may be nil.
func New(completer ai.Completer, logger *slog.Logger) *Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tool{completer: completer, logger: logger}
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return ToolName }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "For general questions, conversations, explanations, and anything else"
}

// Execute forwards the query with the persona prompt. On any failure it
// returns an apologetic message; it never returns an error.
func (t *Tool) Execute(ctx context.Context, query string) (string, error) {
	content, err := t.completer.Complete(ctx, ai.Request{
		System:      personaPrompt,
		User:        query,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		t.logger.WarnContext(ctx, "conversational completion failed", slog.String("error", err.Error()))
		return unavailableMessage, nil
	}
	return content, nil
}
