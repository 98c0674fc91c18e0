// Package middleware provides composable wrappers around [ai.Completer].
// Middleware keeps cross-cutting concerns (deadlines, logging) out of the
// providers and the tools: the provider stays a thin wire adapter and the
// tools see a Completer that already behaves correctly.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentrouter/agentrouter/internal/utils"
	"github.com/agentrouter/agentrouter/providers/ai"
)

// Middleware wraps a Completer with additional behaviour.
type Middleware func(next ai.Completer) ai.Completer

// Chain applies middlewares to base so that the first element of the list is
// the outermost wrapper.
func Chain(base ai.Completer, middlewares ...Middleware) ai.Completer {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

// WithTimeout enforces a fixed per-call deadline on every completion call.
// If the caller supplies a context that already has a shorter deadline, that
// shorter deadline wins as per normal context semantics.
func WithTimeout(timeout time.Duration) Middleware {
	return func(next ai.Completer) ai.Completer {
		return ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next.Complete(ctx, req)
		})
	}
}

// truncateLen is the maximum prompt length included in log output.
const truncateLen = 120

// WithLogging emits one structured log entry per completion call: prompt
// length, temperature, duration, and outcome. Prompt content itself is only
// logged truncated and at debug level, since it may carry user data.
//
// The logger must not be nil; pass slog.Default() if no custom logger is
// configured.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next ai.Completer) ai.Completer {
		return ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
			logger.DebugContext(ctx, "completion send",
				slog.String("user_prompt", utils.TruncateString(req.User, truncateLen)),
				slog.Float64("temperature", req.Temperature),
				slog.Int("max_tokens", req.MaxTokens),
			)

			start := time.Now()
			content, err := next.Complete(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "completion failed",
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return "", err
			}

			logger.InfoContext(ctx, "completion done",
				slog.Duration("duration", elapsed),
				slog.Int("response_chars", len(content)),
			)
			return content, nil
		})
	}
}
