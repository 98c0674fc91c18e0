package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/agentrouter/agentrouter/providers/ai"
)

func TestWithTimeout_ExpiresSlowCall(t *testing.T) {
	slow := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		select {
		case <-time.After(time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	wrapped := Chain(slow, WithTimeout(10*time.Millisecond))

	start := time.Now()
	_, err := wrapped.Complete(context.Background(), ai.Request{User: "hi"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("timeout did not bound the call, took %s", elapsed)
	}
}

func TestWithTimeout_FastCallPasses(t *testing.T) {
	fast := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return "done", nil
	})

	got, err := Chain(fast, WithTimeout(time.Second)).Complete(context.Background(), ai.Request{User: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Errorf("expected %q, got %q", "done", got)
	}
}

func TestWithTimeout_ShorterCallerDeadlineWins(t *testing.T) {
	inner := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected a deadline")
		}
		if time.Until(deadline) > 50*time.Millisecond {
			t.Errorf("caller deadline should win, got %s away", time.Until(deadline))
		}
		return "ok", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := Chain(inner, WithTimeout(time.Hour)).Complete(ctx, ai.Request{User: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithLogging_SuccessAndFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return "fine", nil
	})
	if _, err := Chain(ok, WithLogging(logger)).Complete(context.Background(), ai.Request{User: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "completion done") {
		t.Errorf("expected success log entry, got %q", buf.String())
	}

	buf.Reset()
	boom := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return "", errors.New("wire snapped")
	})
	if _, err := Chain(boom, WithLogging(logger)).Complete(context.Background(), ai.Request{User: "hello"}); err == nil {
		t.Fatal("expected error to propagate")
	}
	if !strings.Contains(buf.String(), "completion failed") || !strings.Contains(buf.String(), "wire snapped") {
		t.Errorf("expected failure log entry, got %q", buf.String())
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next ai.Completer) ai.Completer {
			return ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
				order = append(order, name)
				return next.Complete(ctx, req)
			})
		}
	}

	base := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		order = append(order, "base")
		return "", nil
	})

	Chain(base, mark("outer"), mark("inner")).Complete(context.Background(), ai.Request{})

	want := []string{"outer", "inner", "base"}
	for i, name := range want {
		if i >= len(order) || order[i] != name {
			t.Fatalf("expected call order %v, got %v", want, order)
		}
	}
}
