// Package oracle defines the text-completion boundary used by the command
// interpreter.
//
// An Oracle wraps exactly one remote text-completion call: prompts in, raw
// text out. It makes no attempt to parse or repair the completion — arbitrarily
// malformed or truncated text is a valid success result, and resilience to it
// belongs to the plan extractor, not here. All failures (missing credentials,
// network errors, non-success responses) surface as ordinary Go errors so the
// interpreter can make its degrade-to-fallback decision explicitly.
//
// Implementations must be safe for concurrent use and must honour context
// cancellation on the outbound call.
package oracle

import "context"

// Request carries the prompts and generation parameters for one completion.
type Request struct {
	// SystemPrompt is the high-priority instruction message.
	SystemPrompt string

	// UserPrompt is the user message driving the completion.
	UserPrompt string

	// MaxTokens caps the completion length. Zero means the backend default.
	MaxTokens int

	// Temperature controls output randomness, typically in [0.0, 2.0].
	Temperature float64
}

// Oracle is the abstraction over any chat-style text-completion backend.
type Oracle interface {
	// Complete sends req and returns the first completion's text content
	// unmodified. A non-nil error means the oracle produced nothing usable.
	Complete(ctx context.Context, req Request) (string, error)
}
