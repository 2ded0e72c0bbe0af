// Package transport defines the contract between the request coordinator
// and whatever actually performs HTTP requests. The coordinator depends
// only on this shape, never on a concrete client.
package transport

import "context"

// RequestSpec describes one request to perform. URL is a resolved resource
// path relative to the performer's base URL; Body is pre-serialized.
type RequestSpec struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Accept      string
	Headers     map[string]string
	Query       map[string]string
}

// Response carries the settled status and raw body of a performed request.
type Response struct {
	Status int
	Body   []byte
}

// Transport performs a single request. Implementations classify non-2xx
// statuses as errors, never retry, and never enforce resource-level
// semantics.
type Transport interface {
	Perform(ctx context.Context, spec RequestSpec) (Response, error)
}

// Func adapts a function to the Transport contract.
type Func func(ctx context.Context, spec RequestSpec) (Response, error)

func (f Func) Perform(ctx context.Context, spec RequestSpec) (Response, error) {
	return f(ctx, spec)
}
