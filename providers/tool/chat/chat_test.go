package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/agentrouter/agentrouter/providers/ai"
)

func TestExecute_Success(t *testing.T) {
	var captured ai.Request
	completer := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		captured = req
		return "Why did the gopher cross the road?", nil
	})

	got, err := New(completer, nil).Execute(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Fatal("expected non-empty answer")
	}

	if captured.System != personaPrompt {
		t.Errorf("expected persona system prompt, got %q", captured.System)
	}
	if captured.User != "tell me a joke" {
		t.Errorf("query must be forwarded verbatim, got %q", captured.User)
	}
	if captured.Temperature != temperature {
		t.Errorf("expected temperature %v, got %v", temperature, captured.Temperature)
	}
}

func TestExecute_FailureDegradesToApology(t *testing.T) {
	completer := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return "", ai.ErrUnavailable
	})

	got, err := New(completer, nil).Execute(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("tool must not propagate errors, got %v", err)
	}
	if !strings.Contains(got, "sorry") && !strings.Contains(got, "Sorry") {
		t.Errorf("expected apologetic message, got %q", got)
	}
}
