package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crmarques/restmodel/config"
	"github.com/crmarques/restmodel/debugctx"
	"github.com/crmarques/restmodel/faults"
	"github.com/crmarques/restmodel/transport"
)

func newTestClient(t *testing.T, handler http.Handler, mutate func(*config.Endpoint)) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	endpoint := config.Endpoint{BaseURL: server.URL}
	if mutate != nil {
		mutate(&endpoint)
	}

	client, err := NewClient(endpoint)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestPerformSendsResolvedRequest(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	var seenBody []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Clone(context.Background())
		buffer := new(bytes.Buffer)
		_, _ = buffer.ReadFrom(r.Body)
		seenBody = buffer.Bytes()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":1}`))
	}), func(endpoint *config.Endpoint) {
		endpoint.DefaultHeaders = map[string]string{"X-Tenant": "acme"}
		endpoint.Auth = &config.Auth{BearerToken: &config.BearerTokenAuth{Token: "secret"}}
	})

	response, err := client.Perform(context.Background(), transport.RequestSpec{
		Method:      http.MethodPost,
		URL:         "/posts/1/comments",
		Body:        []byte(`{"body":"hi"}`),
		ContentType: "application/json",
		Accept:      "application/json",
		Headers:     map[string]string{"X-Custom": "yes"},
		Query:       map[string]string{"expand": "author"},
	})
	if err != nil {
		t.Fatalf("Perform: %v", err)
	}

	if response.Status != http.StatusOK || string(response.Body) != `{"id":1}` {
		t.Fatalf("unexpected response %d %q", response.Status, response.Body)
	}
	if seen.URL.Path != "/posts/1/comments" || seen.URL.Query().Get("expand") != "author" {
		t.Fatalf("unexpected request URL %q", seen.URL)
	}
	if string(seenBody) != `{"body":"hi"}` {
		t.Fatalf("request body not forwarded: %q", seenBody)
	}
	if seen.Header.Get("Authorization") != "Bearer secret" {
		t.Fatalf("bearer auth must be applied")
	}
	if seen.Header.Get("X-Tenant") != "acme" || seen.Header.Get("X-Custom") != "yes" {
		t.Fatalf("default and per-request headers must be applied")
	}
	if seen.Header.Get(requestIDHeader) == "" {
		t.Fatalf("request id header must be set")
	}
}

func TestPerformAppliesBasicAuth(t *testing.T) {
	t.Parallel()

	var username, password string
	var provided bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, provided = r.BasicAuth()
		w.WriteHeader(http.StatusNoContent)
	}), func(endpoint *config.Endpoint) {
		endpoint.Auth = &config.Auth{BasicAuth: &config.BasicAuth{Username: "admin", Password: "pw"}}
	})

	if _, err := client.Perform(context.Background(), transport.RequestSpec{
		Method: http.MethodGet,
		URL:    "/posts",
	}); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if !provided || username != "admin" || password != "pw" {
		t.Fatalf("basic auth must be applied, got %q %q", username, password)
	}
}

func TestPerformClassifiesErrorStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		category faults.ErrorCategory
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, category: faults.AuthError},
		{name: "forbidden", status: http.StatusForbidden, category: faults.AuthError},
		{name: "not_found", status: http.StatusNotFound, category: faults.NotFoundError},
		{name: "conflict", status: http.StatusConflict, category: faults.ConflictError},
		{name: "bad_request", status: http.StatusBadRequest, category: faults.ValidationError},
		{name: "server_error", status: http.StatusInternalServerError, category: faults.TransportError},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte("nope"))
			}), nil)

			_, err := client.Perform(context.Background(), transport.RequestSpec{
				Method: http.MethodGet,
				URL:    "/posts",
			})
			if !faults.IsCategory(err, testCase.category) {
				t.Fatalf("expected %s, got %v", testCase.category, err)
			}
		})
	}
}

func TestPerformRejectsAbsoluteURLs(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.NotFoundHandler(), nil)
	_, err := client.Perform(context.Background(), transport.RequestSpec{
		Method: http.MethodGet,
		URL:    "https://elsewhere.example.test/posts",
	})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestPerformJoinsBaseURLPath(t *testing.T) {
	t.Parallel()

	var seenPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.Endpoint{BaseURL: server.URL + "/api/v2"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Perform(context.Background(), transport.RequestSpec{
		Method: http.MethodGet,
		URL:    "/posts",
	}); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if seenPath != "/api/v2/posts" {
		t.Fatalf("base path must be preserved, got %q", seenPath)
	}
}

func TestPerformEmitsDebugDumps(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), nil)

	buffer := new(bytes.Buffer)
	ctx := debugctx.WithWriter(debugctx.WithEnabled(context.Background(), true), buffer)
	if _, err := client.Perform(ctx, transport.RequestSpec{Method: http.MethodGet, URL: "/posts"}); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	dump := buffer.String()
	if !strings.Contains(dump, "http request") || !strings.Contains(dump, "http response") {
		t.Fatalf("debug dump missing entries: %q", dump)
	}
	if !strings.Contains(dump, "debug[") {
		t.Fatalf("debug dump must carry the request id tag: %q", dump)
	}
}

func TestNewClientValidatesEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(config.Endpoint{}); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected base-url requirement, got %v", err)
	}
	if _, err := NewClient(config.Endpoint{BaseURL: "ftp://example.test"}); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected scheme rejection, got %v", err)
	}
	if _, err := NewClient(config.Endpoint{
		BaseURL: "https://example.test",
		Auth:    &config.Auth{},
	}); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected auth mode requirement, got %v", err)
	}
}
