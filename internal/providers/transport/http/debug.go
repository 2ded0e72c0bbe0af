package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crmarques/restmodel/config"
	"github.com/crmarques/restmodel/debugctx"
)

const requestIDHeader = "X-Request-Id"

var tracer = otel.Tracer("github.com/crmarques/restmodel/internal/providers/transport/http")

type tlsDebugInfo struct {
	enabled            bool
	insecureSkipVerify bool
	caCertFile         string
	clientCertFile     string
	clientKeyFile      string
}

func newTLSDebugInfo(tlsSettings *config.TLS) tlsDebugInfo {
	if tlsSettings == nil {
		return tlsDebugInfo{}
	}

	return tlsDebugInfo{
		enabled:            true,
		insecureSkipVerify: tlsSettings.InsecureSkipVerify,
		caCertFile:         strings.TrimSpace(tlsSettings.CACertFile),
		clientCertFile:     strings.TrimSpace(tlsSettings.ClientCertFile),
		clientKeyFile:      strings.TrimSpace(tlsSettings.ClientKeyFile),
	}
}

func (info tlsDebugInfo) mTLSEnabled() bool {
	return info.clientCertFile != "" && info.clientKeyFile != ""
}

func (c *Client) doRequest(ctx context.Context, request *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	request.Header.Set(requestIDHeader, requestID)
	ctx = debugctx.WithRequestID(ctx, requestID)

	ctx, span := tracer.Start(ctx, "http.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", request.Method),
			attribute.String("url.full", redactURLForDebug(request.URL)),
		))
	defer span.End()
	request = request.WithContext(ctx)

	debugctx.Printf(
		ctx,
		"http request method=%q url=%q tls_enabled=%t mtls_enabled=%t tls_insecure_skip_verify=%t",
		request.Method,
		redactURLForDebug(request.URL),
		c.tlsDebug.enabled,
		c.tlsDebug.mTLSEnabled(),
		c.tlsDebug.insecureSkipVerify,
	)
	c.log.V(1).Info("performing request",
		"method", request.Method, "url", redactURLForDebug(request.URL), "request_id", requestID)

	response, err := c.client.Do(request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		debugctx.Printf(
			ctx,
			"http request failed method=%q url=%q error=%v",
			request.Method,
			redactURLForDebug(request.URL),
			err,
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", response.StatusCode))
	debugctx.Printf(
		ctx,
		"http response method=%q url=%q status=%d",
		request.Method,
		redactURLForDebug(request.URL),
		response.StatusCode,
	)
	c.log.V(1).Info("request settled",
		"method", request.Method, "status", response.StatusCode, "request_id", requestID)
	return response, nil
}

func redactURLForDebug(value *url.URL) string {
	if value == nil {
		return ""
	}

	cloned := *value
	cloned.User = nil

	query := cloned.Query()
	if len(query) > 0 {
		for key, values := range query {
			redacted := make([]string, len(values))
			for idx := range values {
				redacted[idx] = "<redacted>"
			}
			query[key] = redacted
		}
		cloned.RawQuery = query.Encode()
	}

	return cloned.String()
}
