// Package ai defines the interface between the service and external
// text-completion providers, together with the error taxonomy callers branch
// on. Concrete implementations live in subpackages; everything in the request
// path depends only on [Completer] so tests can substitute fakes.
package ai

import (
	"context"
	"errors"
)

// Sentinel errors distinguishing the externally-visible failure classes of a
// completion call. Implementations wrap these with %w so callers can use
// errors.Is without depending on provider internals.
var (
	// ErrUnavailable marks network failures, timeouts and non-2xx replies.
	ErrUnavailable = errors.New("completion service unavailable")
	// ErrMalformed marks a 2xx reply whose body could not be interpreted.
	ErrMalformed = errors.New("malformed completion response")
)

// Request describes a single chat-style completion call. The zero value of
// Temperature is meaningful (fully deterministic sampling), so it is always
// sent explicitly.
type Request struct {
	// System is the optional system prompt; empty means none.
	System string
	// User is the user-role prompt content.
	User string
	// Temperature is the sampling temperature in [0, 2].
	Temperature float64
	// MaxTokens bounds the generated output length.
	MaxTokens int
}

// Completer is the minimal contract every text-completion provider satisfies.
type Completer interface {
	// Complete sends one chat request and returns the generated text with
	// surrounding whitespace trimmed. Errors wrap [ErrUnavailable] or
	// [ErrMalformed]; an empty completion from an otherwise healthy provider
	// is reported as ErrMalformed so callers never confuse it with a real
	// answer.
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleteFunc adapts a plain function to the [Completer] interface, mainly
// for tests and middleware.
type CompleteFunc func(ctx context.Context, req Request) (string, error)

// Complete implements [Completer].
func (f CompleteFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
