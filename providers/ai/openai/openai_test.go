package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentrouter/agentrouter/providers/ai"
)

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
	return string(body)
}

func TestComplete_Success(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Write([]byte(completionBody("  42*7  ")))
	}))
	defer server.Close()

	provider := New(server.URL+"/v1", "test-model").
		WithAPIKey("sk-test").
		WithHTTPClient(server.Client())

	got, err := provider.Complete(context.Background(), ai.Request{
		System:      "be terse",
		User:        "calculate 42 times 7",
		Temperature: 0,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "42*7" {
		t.Errorf("expected trimmed content %q, got %q", "42*7", got)
	}

	if captured.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
	if captured.Temperature == nil || *captured.Temperature != 0 {
		t.Errorf("temperature 0 must be sent explicitly, got %+v", captured.Temperature)
	}
	if captured.MaxTokens == nil || *captured.MaxTokens != 100 {
		t.Errorf("expected max_tokens 100, got %+v", captured.MaxTokens)
	}
	if captured.Stream {
		t.Error("stream must be disabled")
	}
}

func TestComplete_NoSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}
		w.Write([]byte(completionBody("hi")))
	}))
	defer server.Close()

	provider := New(server.URL, "m").WithHTTPClient(server.Client())
	if _, err := provider.Complete(context.Background(), ai.Request{User: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComplete_Non2xxIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := New(server.URL, "m").WithHTTPClient(server.Client())
	_, err := provider.Complete(context.Background(), ai.Request{User: "hello"})
	if !errors.Is(err, ai.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestComplete_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no choices", `{"choices":[]}`},
		{"empty content", completionBody("   ")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			provider := New(server.URL, "m").WithHTTPClient(server.Client())
			_, err := provider.Complete(context.Background(), ai.Request{User: "hello"})
			if !errors.Is(err, ai.ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestComplete_ConnectionRefused(t *testing.T) {
	// Grab a port that is guaranteed closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider := New(url, "m")
	_, err := provider.Complete(context.Background(), ai.Request{User: "hello"})
	if !errors.Is(err, ai.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
