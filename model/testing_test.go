package model

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/crmarques/restmodel/resource"
	"github.com/crmarques/restmodel/transport"
)

// recordingTransport settles every request with a canned response and keeps
// the specs it saw.
type recordingTransport struct {
	mu       sync.Mutex
	specs    []transport.RequestSpec
	response transport.Response
	err      error
}

func (r *recordingTransport) Perform(_ context.Context, spec transport.RequestSpec) (transport.Response, error) {
	r.mu.Lock()
	r.specs = append(r.specs, spec)
	r.mu.Unlock()
	if r.err != nil {
		return transport.Response{}, r.err
	}
	return r.response, nil
}

func (r *recordingTransport) calls() []transport.RequestSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transport.RequestSpec{}, r.specs...)
}

func jsonResponse(t *testing.T, status int, payload any) transport.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal canned response: %v", err)
	}
	return transport.Response{Status: status, Body: body}
}

func commentDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		TypeKey:     "comments",
		Base:        "posts/:post/comments",
		PrimaryKeys: []string{"id"},
		Attrs:       resource.ParseAttrs("body", "tags[]"),
	}
}

func postDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		TypeKey:     "posts",
		Base:        "posts",
		PrimaryKeys: []string{"id"},
		Attrs:       resource.ParseAttrs("title", "tags[]", "settings"),
	}
}

func newTestClass(t *testing.T, descriptor *resource.Descriptor, performer transport.Transport, opts ...ClassOption) *Class {
	t.Helper()
	class, err := NewClass(descriptor, performer, opts...)
	if err != nil {
		t.Fatalf("NewClass: %v", err)
	}
	return class
}
