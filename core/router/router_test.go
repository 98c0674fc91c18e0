package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agentrouter/agentrouter/providers/ai"
	"github.com/agentrouter/agentrouter/providers/tool"
)

// stubTool records execution and returns a fixed answer.
type stubTool struct {
	name      string
	answer    string
	err       error
	execCount int
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub description for " + s.name }
func (s *stubTool) Execute(ctx context.Context, query string) (string, error) {
	s.execCount++
	return s.answer, s.err
}

func classifierReturning(content string, err error) ai.Completer {
	return ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return content, err
	})
}

func testRegistry() (tool.Registry, *stubTool, *stubTool, *stubTool) {
	arith := &stubTool{name: "arithmetic", answer: "42*7 = 294"}
	look := &stubTool{name: "lookup", answer: "sunny in Paris"}
	conv := &stubTool{name: "conversational", answer: "hello there"}
	return tool.NewRegistry(arith, look, conv), arith, look, conv
}

func TestRoute_DispatchesClassifiedTool(t *testing.T) {
	registry, arith, _, _ := testRegistry()
	r := New(classifierReturning("arithmetic", nil), registry, nil)

	result := r.Route(context.Background(), "calculate 42 * 7")

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.ToolName != "arithmetic" {
		t.Errorf("expected arithmetic, got %q", result.ToolName)
	}
	if !strings.Contains(result.Result, "294") {
		t.Errorf("expected answer with 294, got %q", result.Result)
	}
	if arith.execCount != 1 {
		t.Errorf("arithmetic tool should run once, ran %d times", arith.execCount)
	}
}

func TestRoute_NormalizesClassification(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"uppercase", "LOOKUP", "lookup"},
		{"padded", "  lookup \n", "lookup"},
		{"exact", "arithmetic", "arithmetic"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry, _, _, _ := testRegistry()
			r := New(classifierReturning(tc.content, nil), registry, nil)
			if got := r.Classify(context.Background(), "whatever"); got != tc.expected {
				t.Errorf("Classify = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestClassify_FallsBackToConversational(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{"service unavailable", "", ai.ErrUnavailable},
		{"malformed response", "", ai.ErrMalformed},
		{"unknown category", "astrology", nil},
		{"chatty answer", "I think the math tool fits best", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry, _, _, _ := testRegistry()
			r := New(classifierReturning(tc.content, tc.err), registry, nil)
			if got := r.Classify(context.Background(), "anything"); got != FallbackCategory {
				t.Errorf("expected fallback %q, got %q", FallbackCategory, got)
			}
		})
	}
}

func TestClassify_PromptCarriesCategoriesAndQuery(t *testing.T) {
	var captured ai.Request
	completer := ai.CompleteFunc(func(ctx context.Context, req ai.Request) (string, error) {
		captured = req
		return "conversational", nil
	})
	registry, _, _, _ := testRegistry()

	New(completer, registry, nil).Classify(context.Background(), "tell me a joke")

	for _, want := range []string{"arithmetic", "conversational", "lookup", "tell me a joke"} {
		if !strings.Contains(captured.User, want) {
			t.Errorf("classification prompt missing %q:\n%s", want, captured.User)
		}
	}
	if captured.Temperature != 0 {
		t.Errorf("classification must run at temperature 0, got %v", captured.Temperature)
	}
	if captured.MaxTokens != classifyMaxTokens {
		t.Errorf("expected max tokens %d, got %d", classifyMaxTokens, captured.MaxTokens)
	}
}

func TestRoute_ToolErrorBecomesFailedResult(t *testing.T) {
	registry, arith, _, _ := testRegistry()
	arith.err = errors.New("internal meltdown")

	r := New(classifierReturning("arithmetic", nil), registry, nil)
	result := r.Route(context.Background(), "calculate something")

	if result.Success {
		t.Fatal("expected failed result")
	}
	if result.ToolName != "arithmetic" {
		t.Errorf("failed result must keep the attempted tool name, got %q", result.ToolName)
	}
	if !strings.Contains(result.Result, "internal meltdown") {
		t.Errorf("failed result should carry the error text, got %q", result.Result)
	}
}

func TestRoute_DispatchMissReportsErrorMarker(t *testing.T) {
	// A registry without the fallback tool violates the wiring contract;
	// the router must still answer rather than panic.
	arith := &stubTool{name: "arithmetic", answer: "fine"}
	registry := tool.NewRegistry(arith)

	r := New(classifierReturning("bogus", nil), registry, nil)
	result := r.Route(context.Background(), "anything")

	if result.Success {
		t.Fatal("expected failed result")
	}
	if result.ToolName != ErrorToolName {
		t.Errorf("expected error marker %q, got %q", ErrorToolName, result.ToolName)
	}
	if result.Result == "" {
		t.Error("failed result must carry explanatory text")
	}
}

func TestRoute_FallbackStillAnswers(t *testing.T) {
	registry, _, _, conv := testRegistry()
	r := New(classifierReturning("", ai.ErrUnavailable), registry, nil)

	result := r.Route(context.Background(), "tell me a joke")

	if !result.Success {
		t.Fatalf("expected success via fallback, got %+v", result)
	}
	if result.ToolName != FallbackCategory {
		t.Errorf("expected %q, got %q", FallbackCategory, result.ToolName)
	}
	if conv.execCount != 1 {
		t.Errorf("conversational tool should run once, ran %d times", conv.execCount)
	}
}
