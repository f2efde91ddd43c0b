// Package transport performs single HTTP requests against the contact API.
// It injects the bearer token, enforces the request timeout, unwraps the
// {"data": ...} success envelope and maps failures onto types.TransportError
// and types.ServerError. It never retries and never caches.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Request describes one call. Path is relative to the base URL and must
// start with a slash.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Client implements Doer over net/http.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *slog.Logger
}

// Doer is the transport contract the remote client depends on.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

var _ Doer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is kept as
// given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client from cfg.
func New(cfg types.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("transport config: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.EffectiveTimeout(),
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		token:  cfg.Token,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// envelope is the shape of every response body: data on success, message on
// failure.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Do performs req and decodes the envelope's data into out. out may be nil
// when the caller does not need the payload.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	op := req.Method + " " + req.Path

	var reqBody io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reqBody)
	if err != nil {
		return &types.TransportError{Op: op, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "error", err, "elapsed", time.Since(start))
		return &types.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.TransportError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}
	c.logger.Debug("request completed", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &types.TransportError{Op: op, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &types.TransportError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// serverError builds a ServerError, taking the message from a JSON error body
// when one is present.
func serverError(status int, body []byte) error {
	se := &types.ServerError{StatusCode: status}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		se.Message = strings.TrimSpace(env.Message)
	}
	return se
}
