// Package openai implements [ai.Completer] against any OpenAI-compatible
// chat completions endpoint. LM Studio, Ollama's OpenAI facade, vLLM and the
// hosted OpenAI API all speak this format.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/agentrouter/agentrouter/internal/utils"
	"github.com/agentrouter/agentrouter/providers/ai"
)

const chatCompletionsEndpoint = "/chat/completions"

// Provider calls an OpenAI-compatible /chat/completions endpoint. Construct
// it with [New]; the With* methods follow the builder convention and return
// the provider for chaining.
type Provider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a Provider for the given base URL (e.g.
// "http://localhost:1234/v1") and model name.
func New(baseURL, model string) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the bearer token sent with each request.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithHTTPClient sets a custom HTTP client, e.g. one with a transport-level
// timeout or a test server's client.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.client = client
	return p
}

/*
	CHAT COMPLETIONS API - WIRE FORMAT
*/

type chatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete implements [ai.Completer]. Non-2xx replies and transport failures
// are reported as [ai.ErrUnavailable]; a 2xx reply without usable content is
// reported as [ai.ErrMalformed].
func (p *Provider) Complete(ctx context.Context, req ai.Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})

	temperature := req.Temperature
	payload := chatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: &temperature,
		Stream:      false,
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = &req.MaxTokens
	}

	httpRes, resp, err := utils.DoPostJSON[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, payload)
	if err != nil {
		// A 2xx reply that failed to decode is a malformed body, not an
		// availability problem.
		if httpRes != nil && httpRes.StatusCode >= 200 && httpRes.StatusCode < 300 {
			return "", fmt.Errorf("%w: %v", ai.ErrMalformed, err)
		}
		return "", fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ai.ErrMalformed)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty message content", ai.ErrMalformed)
	}

	return content, nil
}

var _ ai.Completer = (*Provider)(nil)
