// Package arithmetic implements the arithmetic tool: a two-stage pipeline
// that first asks the completion service to translate the query into a bare
// arithmetic expression, then evaluates that expression with the restricted
// evaluator. The model's output is never trusted directly — it must pass the
// character allow-list before it reaches the evaluator at all.
package arithmetic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agentrouter/agentrouter/core/eval"
	"github.com/agentrouter/agentrouter/providers/ai"
)

// ToolName is the category identifier for this tool.
const ToolName = "arithmetic"

const constructMaxTokens = 100

// constructPrompt is the few-shot prompt that turns a natural-language query
// into a bare expression. Temperature is pinned to zero by the caller so the
// translation is deterministic.
const constructPrompt = `You are a math expression constructor. Convert the following natural language query into a valid arithmetic expression.

Rules:
1. Use standard operators: +, -, *, /, **, (), etc.
2. Only output the mathematical expression, nothing else
3. Do not include any text, explanations, or formatting
4. If no math is found, return empty string
5. Use ** for exponentiation (not ^)
6. Ensure proper operator precedence with parentheses if needed

Examples:
- "what is 5 plus 3" -> "5+3"
- "calculate 42 times 7" -> "42*7"
- "what is 2 to the power of 8" -> "2**8"
- "divide 100 by 4" -> "100/4"
- "what is (10 plus 5) times 3 minus 8" -> "(10+5)*3-8"

Query: %q

Mathematical expression:`

// Tool answers arithmetic queries.
type Tool struct {
	completer ai.Completer
	logger    *slog.Logger
}

// New creates the arithmetic tool. The logger may be nil, in which case
// slog.Default() is used.
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
	return "For mathematical calculations, equations, arithmetic operations"
}

// Execute translates the query into an expression, validates it, evaluates
// it, and renders "<expression> = <result>". Every failure mode degrades to a
// clarifying message; Execute never returns an error.
func (t *Tool) Execute(ctx context.Context, query string) (string, error) {
	expression := t.constructExpression(ctx, query)
	if expression == "" {
		return "I couldn't identify a mathematical expression in your query. Please provide a clear math problem.", nil
	}

	result, err := eval.Evaluate(expression)
	if err != nil {
		t.logger.WarnContext(ctx, "expression evaluation failed",
			slog.String("expression", expression),
			slog.String("error", err.Error()),
		)
		return fmt.Sprintf("I couldn't evaluate the expression: %s. Please check if it's a valid mathematical expression.", expression), nil
	}

	return fmt.Sprintf("%s = %s", expression, eval.FormatNumber(result)), nil
}

// constructExpression asks the completion service for an expression and
// validates the answer. It returns "" when the call fails or the answer does
// not survive validation — the tool does not guess.
func (t *Tool) constructExpression(ctx context.Context, query string) string {
	content, err := t.completer.Complete(ctx, ai.Request{
		User:        fmt.Sprintf(constructPrompt, query),
		Temperature: 0,
		MaxTokens:   constructMaxTokens,
	})
	if err != nil {
		t.logger.WarnContext(ctx, "expression construction failed", slog.String("error", err.Error()))
		return ""
	}

	expression := strings.Trim(content, "\"'` \n\t")
	if !eval.IsValidExpression(expression) {
		t.logger.WarnContext(ctx, "constructed expression rejected", slog.String("expression", expression))
		return ""
	}
	return expression
}
