// Package mock provides a test double for the oracle.Oracle interface.
//
// Use Oracle in unit tests to verify that the interpreter sends correct
// prompts and to feed controlled completions without a live backend.
//
// Example:
//
//	o := &mock.Oracle{Response: `{"intent":"Play","actions":[...]}`}
//	text, err := o.Complete(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/tghensley/audiopilot/pkg/oracle"
)

// Call records a single invocation of Complete.
type Call struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the Request passed to Complete.
	Req oracle.Request
}

// Oracle is a mock implementation of oracle.Oracle. The zero value returns an
// empty completion and a nil error. Set Err to inject a failure, or Fn to take
// full control of the response.
type Oracle struct {
	mu sync.Mutex

	// Response is the completion text returned by Complete when Fn is nil.
	Response string

	// Err, if non-nil, is returned from Complete instead of Response.
	Err error

	// Fn, if non-nil, fully overrides Complete's behaviour.
	Fn func(ctx context.Context, req oracle.Request) (string, error)

	// Calls records every Complete invocation in order.
	Calls []Call
}

// Compile-time interface assertion.
var _ oracle.Oracle = (*Oracle)(nil)

// Complete implements oracle.Oracle.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	o.mu.Lock()
	o.Calls = append(o.Calls, Call{Ctx: ctx, Req: req})
	fn := o.Fn
	resp, err := o.Response, o.Err
	o.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

// CallCount returns the number of recorded Complete invocations.
func (o *Oracle) CallCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Calls)
}
