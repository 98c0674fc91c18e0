// Package router classifies incoming queries and dispatches them to the
// matching tool. Classification is a single deterministic completion call
// with a closed fallback: whatever goes wrong — timeout, garbage output,
// unreachable service — the query still lands on the conversational tool.
// Nothing escapes Route as an error; every outcome is a [Result].
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/agentrouter/agentrouter/providers/ai"
	"github.com/agentrouter/agentrouter/providers/tool"
)

// ErrorToolName is the marker reported when dispatch itself failed and no
// tool ran. It is distinct from every real category name.
const ErrorToolName = "error"

// FallbackCategory is where classification lands when the completion service
// is unavailable or returns an unrecognized answer. The fallback is pure and
// total: it needs no I/O, so the degraded path works with no network at all.
const FallbackCategory = "conversational"

const classifyMaxTokens = 10

// Result is the envelope every dispatch produces. Success false still
// carries human-readable text in Result, never an empty string.
type Result struct {
	ToolName string
	Result   string
	Success  bool
}

// Router owns the dispatch table and the classification call.
type Router struct {
	completer ai.Completer
	registry  tool.Registry
	logger    *slog.Logger
}

// New creates a Router over the given registry. The registry must contain a
// tool named [FallbackCategory]; the logger may be nil.
func New(completer ai.Completer, registry tool.Registry, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{completer: completer, registry: registry, logger: logger}
}

// Route classifies the query, invokes the selected tool, and wraps the
// outcome. Tool errors are converted to failed results here; they do not
// propagate.
func (r *Router) Route(ctx context.Context, query string) Result {
	category := r.Classify(ctx, query)

	selected, ok := r.registry.Lookup(category)
	if !ok {
		// Unreachable given the closed classification fallback, but an
		// invariant violation must surface as a result, not a panic.
		r.logger.ErrorContext(ctx, "dispatch table miss", slog.String("category", category))
		return Result{
			ToolName: ErrorToolName,
			Result:   fmt.Sprintf("An error occurred while processing your query: unknown tool %q", category),
			Success:  false,
		}
	}

	answer, err := selected.Execute(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "tool execution failed",
			slog.String("tool", category),
			slog.String("error", err.Error()),
		)
		return Result{
			ToolName: category,
			Result:   fmt.Sprintf("Error: %s", err.Error()),
			Success:  false,
		}
	}

	r.logger.InfoContext(ctx, "tool executed", slog.String("tool", category))
	return Result{ToolName: category, Result: answer, Success: true}
}

// Classify decides which category handles the query. It never fails: every
// unusable classification outcome resolves to [FallbackCategory].
func (r *Router) Classify(ctx context.Context, query string) string {
	content, err := r.completer.Complete(ctx, ai.Request{
		User:        r.classificationPrompt(query),
		Temperature: 0,
		MaxTokens:   classifyMaxTokens,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "classification call failed, falling back",
			slog.String("fallback", FallbackCategory),
			slog.String("error", err.Error()),
		)
		return FallbackCategory
	}

	category := strings.ToLower(strings.TrimSpace(content))
	if _, ok := r.registry.Lookup(category); ok {
		r.logger.InfoContext(ctx, "query classified", slog.String("category", category))
		return category
	}

	r.logger.WarnContext(ctx, "unrecognized classification, falling back",
		slog.String("content", content),
		slog.String("fallback", FallbackCategory),
	)
	return FallbackCategory
}

// classificationPrompt enumerates the registered categories with their
// descriptions, in sorted order so the prompt is identical for identical
// registries.
func (r *Router) classificationPrompt(query string) string {
	names := r.registry.Names()
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("You are a query router. Analyze the following query and determine which tool should handle it.\n\nAvailable tools:\n")
	for _, name := range names {
		t, _ := r.registry.Lookup(name)
		fmt.Fprintf(&b, "- %s: %s\n", name, t.Description())
	}
	fmt.Fprintf(&b, "\nQuery: %q\n\nRespond with ONLY the tool name (%s). No explanation needed.\n", query, strings.Join(names, ", "))
	return b.String()
}
