// Package tool defines the contract every query handler implements and the
// registry the router dispatches through.
package tool

import "context"

// Tool turns a user query into final answer text. Implementations run their
// own multi-step pipelines (possibly several sequential external calls) but
// present a single blocking operation to the router.
//
// Execute returns an error only for failures the tool cannot phrase as an
// answer itself; recoverable problems (an unreachable collaborator, an
// unanswerable query) come back as user-facing text with a nil error.
type Tool interface {
	// Name returns the category identifier this tool serves. It is the
	// value reported as tool_used in the response envelope.
	Name() string

	// Description is the one-line capability summary the classifier
	// enumerates when deciding which tool handles a query.
	Description() string

	// Execute handles one query and returns the answer text.
	Execute(ctx context.Context, query string) (string, error)
}

// Registry maps category names to tools. It is populated once at startup and
// read-only afterwards, so it is safe for concurrent use without locking.
type Registry map[string]Tool

// NewRegistry builds a Registry from the given tools, keyed by Name.
func NewRegistry(tools ...Tool) Registry {
	registry := make(Registry, len(tools))
	for _, t := range tools {
		registry[t.Name()] = t
	}
	return registry
}

// Lookup returns the tool registered under name.
func (r Registry) Lookup(name string) (Tool, bool) {
	t, ok := r[name]
	return t, ok
}

// Names returns the registered category names. Order is unspecified.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
