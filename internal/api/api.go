// Package api is a small JSON-over-HTTP client shared by the market data
// source and the Anthropic adapter.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/trace"
)

const (
	// Responses larger than this are cut off and reported as an error.
	maxResponseBytes = 8 << 20
	// StatusError keeps at most this much of an error body.
	maxErrorBody = 1024
)

// Client sends requests relative to a base URL with a fixed set of default headers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	useLogging bool
}

type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHeader sets a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers[key] = value }
}

func WithLogging(enabled bool) ClientOption {
	return func(c *Client) { c.useLogging = enabled }
}

// WithHTTPClient replaces the underlying http.Client, timeout included.
// Options after it still apply to the new client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !c.useLogging {
		return
	}
	switch level {
	case slog.LevelDebug:
		logger.Debug(ctx, msg, args...)
	case slog.LevelWarn:
		logger.Warn(ctx, msg, args...)
	default:
		logger.Error(ctx, msg, args...)
	}
}

// Request describes one call. Body, when set, is sent as JSON.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
	ctx     context.Context
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Query:   url.Values{},
		Headers: make(map[string]string),
		ctx:     context.Background(),
	}
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

func (r *Request) WithQuery(key, value string) *Request {
	r.Query.Set(key, value)
	return r
}

func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// StatusError is returned for HTTP responses with status >= 400.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err carries an HTTP status error with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func (c *Client) buildURL(req *Request) string {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func (c *Client) newHTTPRequest(req *Request, fullURL string) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(req.ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// Do sends req and reads the whole response. Statuses >= 400 become *StatusError.
func (c *Client) Do(req *Request) (*Response, error) {
	ctx, span := trace.StartSpan(req.ctx, "http "+req.Method+" "+req.Path)
	defer span.End()
	req.ctx = ctx

	fullURL := c.buildURL(req)
	httpReq, err := c.newHTTPRequest(req, fullURL)
	if err != nil {
		c.log(ctx, slog.LevelError, "Failed to build HTTP request", "url", fullURL, "error", err)
		return nil, err
	}

	c.log(ctx, slog.LevelDebug, "HTTP request", "method", req.Method, "url", fullURL)
	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log(ctx, slog.LevelError, "HTTP request failed", "method", req.Method, "url", fullURL, "error", err)
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", req.Path, maxResponseBytes)
	}

	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.Int("http.status_code", httpResp.StatusCode),
		attribute.Int("http.response_size", len(body)),
	)
	c.log(ctx, slog.LevelDebug, "HTTP response",
		"method", req.Method,
		"url", fullURL,
		"status", httpResp.StatusCode,
		"duration", time.Since(start),
		"bodySize", len(body))

	if httpResp.StatusCode >= 400 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody] + "..."
		}
		span.SetStatus(codes.Error, httpResp.Status)
		c.log(ctx, slog.LevelWarn, "HTTP error response", "url", fullURL, "status", httpResp.StatusCode, "body", msg)
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: msg}
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: body, Headers: httpResp.Header}, nil
}

// GET performs a GET request with optional query parameters.
func (c *Client) GET(ctx context.Context, path string, query url.Values) (*Response, error) {
	req := NewRequest(http.MethodGet, path).WithContext(ctx)
	for key := range query {
		req.WithQuery(key, query.Get(key))
	}
	return c.Do(req)
}

// POST sends body as JSON.
func (c *Client) POST(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(NewRequest(http.MethodPost, path).WithContext(ctx).WithBody(body))
}

func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

func (r *Response) String() string {
	return string(r.Body)
}

// JSONHeaders returns headers for public JSON market APIs.
func JSONHeaders() map[string]string {
	return map[string]string{
		"User-Agent": "crypto-chart-analyzer/1.0",
		"Accept":     "application/json",
	}
}
