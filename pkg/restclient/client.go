package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/pkg/circuitbreaker"
	apperrors "github.com/akeren/participant-console/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "github.com/akeren/participant-console/pkg/restclient"
	maxResponseSize = 4 << 20
)

type Config struct {
	BaseURL string
	// Timeout of zero means no client-side deadline; the caller's context still applies.
	Timeout time.Duration
	// Breaker is optional; nil disables the circuit breaker.
	Breaker *circuitbreaker.Config
	// Registerer is optional; nil disables upstream metrics.
	Registerer prometheus.Registerer
	Logger     *log.Logger
	HTTPClient *http.Client
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker circuitbreaker.CircuitBreaker
	metrics *clientMetrics
	logger  *log.Logger
	tracer  trace.Tracer
}

// Request describes one call. Path elements are joined onto the base URL and must
// already be path-escaped.
type Request struct {
	Operation string
	Method    string
	Path      []string
	Body      any
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

// Text returns the body as sent. A JSON string body is unquoted.
func (r *Response) Text() string {
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) > 1 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(r.Body)
}

// IsEmpty reports a body with no content or a JSON null.
func (r *Response) IsEmpty() bool {
	trimmed := bytes.TrimSpace(r.Body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// StatusError is a non-2xx answer from the upstream API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, strings.TrimSpace(body))
}

func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("restclient: config is required")
	}

	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("restclient: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("restclient: base URL %q must use http or https", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("restclient: base URL %q is missing a host", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewLoggerWithJSONOutput()
	}

	c := &Client{
		baseURL: base,
		http:    httpClient,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}

	if cfg.Breaker != nil {
		c.breaker = circuitbreaker.NewCircuitBreaker(cfg.Breaker)
	}

	if cfg.Registerer != nil {
		c.metrics, err = newClientMetrics(cfg.Registerer)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// BreakerState reports false when no breaker is configured.
func (c *Client) BreakerState() (circuitbreaker.CircuitState, bool) {
	if c.breaker == nil {
		return circuitbreaker.Closed, false
	}
	return c.breaker.State(), true
}

// Do performs req and returns the response for any 2xx status. Other outcomes are
// returned as *apperrors.AppError: NOT_FOUND for 404, UPSTREAM_UNAVAILABLE when the
// breaker is open or the host is unreachable, UPSTREAM_ERROR otherwise.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "participantapi."+req.Operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, apperrors.NewInternalServerError("unable to build upstream request", err)
	}

	span.SetAttributes(
		attribute.String("http.request.method", httpReq.Method),
		attribute.String("url.full", httpReq.URL.Redacted()),
	)

	start := time.Now()
	var resp *Response

	call := func() error {
		var callErr error
		resp, callErr = c.execute(httpReq)
		if callErr != nil {
			return callErr
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
		}
		return nil
	}

	if c.breaker != nil {
		err = c.breaker.Call(call)
	} else {
		err = call()
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	c.metrics.observe(req.Operation, outcomeLabel(status, err), time.Since(start))
	log.LogOutboundRequest(c.logger, httpReq, status, time.Since(start).Milliseconds())

	if err == nil && (status < 200 || status > 299) {
		err = &StatusError{StatusCode: status, Body: string(resp.Body)}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, classify(req.Operation, err)
	}

	return resp, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL.JoinPath(req.Path...)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json, text/plain;q=0.9")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	log.InjectCorrelationID(httpReq)

	return httpReq, nil
}

func (c *Client) execute(httpReq *http.Request) (*Response, error) {
	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: payload}, nil
}

func classify(operation string, err error) error {
	var statusErr *StatusError
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return apperrors.NewUpstreamUnavailableError("participant API is temporarily unavailable", err)
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		return apperrors.NewNotFoundError("participant not found", err)
	case errors.As(err, &statusErr):
		return apperrors.NewUpstreamError(fmt.Sprintf("participant API rejected %s", operation), err)
	case apperrors.DeduceErrorTypeFromErrorString(err) == apperrors.ErrorTypeUpstreamUnavailable:
		return apperrors.NewUpstreamUnavailableError("participant API is unreachable", err)
	default:
		return apperrors.NewUpstreamError(fmt.Sprintf("participant API call %s failed", operation), err)
	}
}

func outcomeLabel(status int, err error) string {
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return "circuit_open"
	case status == 0:
		return "transport_error"
	default:
		return strconv.Itoa(status)
	}
}
