// Package http performs model requests against a remote REST endpoint. It
// joins relative request URLs onto the configured base URL, applies auth and
// default headers, and classifies error statuses into typed faults.
package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"

	"github.com/crmarques/restmodel/config"
	"github.com/crmarques/restmodel/internal/providers/shared/tlsconfig"
	"github.com/crmarques/restmodel/transport"
)

const (
	defaultHTTPTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

var _ transport.Transport = (*Client)(nil)

type Client struct {
	baseURL        *url.URL
	defaultHeaders map[string]string
	auth           authConfig
	client         *http.Client
	limiter        *rate.Limiter
	log            logr.Logger
	tlsDebug       tlsDebugInfo
}

type ClientOption func(*Client)

func WithLogger(log logr.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func NewClient(endpoint config.Endpoint, opts ...ClientOption) (*Client, error) {
	baseURL, err := parseBaseURL(endpoint.BaseURL)
	if err != nil {
		return nil, err
	}

	auth, err := buildAuthConfig(endpoint.Auth)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := tlsconfig.BuildTLSConfig(endpoint.TLS, "endpoint")
	if err != nil {
		return nil, err
	}

	timeout := defaultHTTPTimeout
	if endpoint.TimeoutSeconds > 0 {
		timeout = time.Duration(endpoint.TimeoutSeconds) * time.Second
	}

	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	httpTransport.TLSClientConfig = tlsConfig

	client := &Client{
		baseURL:        baseURL,
		defaultHeaders: cloneStringMap(endpoint.DefaultHeaders),
		auth:           auth,
		client: &http.Client{
			Timeout:   timeout,
			Transport: httpTransport,
		},
		log:      logr.Discard(),
		tlsDebug: newTLSDebugInfo(endpoint.TLS),
	}
	if endpoint.RatePerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(endpoint.RatePerSecond), 1)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client, nil
}

func (c *Client) Perform(ctx context.Context, spec transport.RequestSpec) (transport.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transport.Response{}, transportError("request rate wait interrupted", err)
		}
	}

	request, err := c.newRequest(ctx, spec)
	if err != nil {
		return transport.Response{}, err
	}

	response, err := c.doRequest(ctx, request)
	if err != nil {
		return transport.Response{}, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return transport.Response{}, transportError("failed to read remote response body", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return transport.Response{}, classifyStatusError(response.StatusCode, body)
	}

	return transport.Response{Status: response.StatusCode, Body: body}, nil
}

func (c *Client) newRequest(ctx context.Context, spec transport.RequestSpec) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		return nil, validationError("request method is required", nil)
	}

	targetURL, err := c.resolveRequestURL(spec.URL, spec.Query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if len(spec.Body) > 0 {
		bodyReader = bytes.NewReader(spec.Body)
	}

	request, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	if strings.TrimSpace(spec.Accept) != "" {
		request.Header.Set("Accept", spec.Accept)
	}
	if len(spec.Body) > 0 && strings.TrimSpace(spec.ContentType) != "" {
		request.Header.Set("Content-Type", spec.ContentType)
	}

	setSorted(request, c.defaultHeaders)
	setSorted(request, spec.Headers)

	c.applyAuth(request)

	return request, nil
}

func (c *Client) resolveRequestURL(requestPath string, query map[string]string) (string, error) {
	if strings.TrimSpace(requestPath) == "" {
		return "", validationError("request path is required", nil)
	}
	if parsed, err := url.Parse(requestPath); err == nil && parsed.Scheme != "" {
		return "", validationError("request path must be relative to endpoint.base-url", nil)
	}

	target := *c.baseURL
	target.Path = joinBaseAndRequestPath(c.baseURL.Path, requestPath)

	values := target.Query()
	if len(query) > 0 {
		keys := make([]string, 0, len(query))
		for key := range query {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			values.Set(key, query[key])
		}
	}
	target.RawQuery = values.Encode()

	return target.String(), nil
}

func joinBaseAndRequestPath(basePath string, requestPath string) string {
	joined := strings.TrimSuffix(basePath, "/") + "/" + strings.TrimPrefix(requestPath, "/")
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	return joined
}

func setSorted(request *http.Request, headers map[string]string) {
	if len(headers) == 0 {
		return
	}
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		request.Header.Set(key, headers[key])
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("endpoint.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("endpoint.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("endpoint.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("endpoint.base-url host is required", nil)
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	}

	return parsed, nil
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
