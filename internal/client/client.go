// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Configuration constants for the answering service transport.
const (
	// DefaultTimeout bounds a single exchange, headers through body.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the default cap on a response body.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	// maxErrorBody is how much of a failed response is kept on StatusError.
	maxErrorBody = 512
)

// Error variables for transport failures.
var (
	// ErrNotConfigured indicates no endpoint is set.
	ErrNotConfigured = errors.New("answer endpoint not configured")

	// ErrResponseTooLarge indicates the body exceeded the configured limit.
	ErrResponseTooLarge = errors.New("response exceeded maximum size")

	// ErrMalformedResponse indicates the body is not valid JSON.
	ErrMalformedResponse = errors.New("response is not valid JSON")

	// ErrNullResponse indicates the body is the JSON literal null.
	ErrNullResponse = errors.New("response is JSON null")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("answer service returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("answer service returned HTTP %d: %s", e.Status, e.Body)
}

// Request is the outbound request body. Exactly these two fields are sent.
type Request struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// Response holds the decoded top-level fields of a JSON object response.
// Values are kept raw; extraction rules belong to the caller.
type Response map[string]json.RawMessage

// Has reports whether the response carries the named field.
func (r Response) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends queries to the answering service.
// Client is safe for concurrent use once configured.
type Client struct {
	endpoint   string
	token      string
	userAgent  string
	maxBody    int64
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// New creates a client for the given endpoint URL with default settings.
// An empty endpoint yields a client whose Ask returns ErrNotConfigured.
func New(endpoint string) *Client {
	return &Client{
		endpoint:  strings.TrimSpace(endpoint),
		userAgent: "askterm/dev",
		maxBody:   MaxResponseSize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: zap.NewNop(),
	}
}

// WithToken sets a bearer token sent in the Authorization header.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

// WithTimeout sets the per-exchange timeout. Zero or negative disables it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithRateLimit caps outbound requests per minute. Zero disables limiting.
func (c *Client) WithRateLimit(perMinute int) *Client {
	if perMinute <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	return c
}

// WithMaxResponseBytes caps the accepted response body size.
func (c *Client) WithMaxResponseBytes(n int64) *Client {
	if n > 0 {
		c.maxBody = n
	}
	return c
}

// WithUserAgent sets the User-Agent header value.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(log *zap.Logger) *Client {
	if log != nil {
		c.log = log.Named("client")
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Timeout returns the per-exchange timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// IsConfigured reports whether an endpoint is set.
func (c *Client) IsConfigured() bool {
	return c.endpoint != ""
}

// TokenFingerprint returns a short hash identifying the token without
// revealing it, or "none".
func (c *Client) TokenFingerprint() string {
	if c.token == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.token))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// EXCHANGE
// =============================================================================

// Ask performs one exchange. It blocks until the response is read, the
// timeout elapses or ctx is cancelled.
func (c *Client) Ask(ctx context.Context, req Request) (Response, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	start := time.Now()
	// Headers and bodies are never logged: they carry the token and user text.
	c.log.Debug("request", zap.String("method", httpReq.Method), zap.String("host", httpReq.URL.Host), zap.String("path", httpReq.URL.Path))

	resp, err := c.httpClient.Do(httpReq)
	httpReq.Header.Del("Authorization")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := c.readResponse(resp)
	c.log.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: errorSnippet(data)}
	}

	return decodeObject(data)
}

// setHeaders sets the headers for an answer request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// readResponse reads the body, failing if it exceeds the configured limit.
func (c *Client) readResponse(resp *http.Response) ([]byte, error) {
	// One extra byte distinguishes "exactly at the limit" from "over it"
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxBody)
	}
	return body, nil
}

// decodeObject decodes a JSON body into its top-level fields. Arrays and
// scalars carry no fields and decode as an empty Response; null is an error.
func decodeObject(data []byte) (Response, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, ErrMalformedResponse
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNullResponse
	}
	if trimmed[0] != '{' {
		return Response{}, nil
	}
	var out Response
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if out == nil {
		out = Response{}
	}
	return out, nil
}

// errorSnippet trims an error body for inclusion in StatusError.
func errorSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	runes := []rune(s)
	if len(runes) > maxErrorBody {
		return string(runes[:maxErrorBody]) + "..."
	}
	return s
}
