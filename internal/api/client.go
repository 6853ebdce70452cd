package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
)

// TokenSource supplies the bearer token for authenticated calls.
// An empty token sends the request without an Authorization header.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client talks to the tally REST API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout sets the per-request timeout. A client supplied through
// WithHTTPClient is copied first, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		tokens:  StaticToken(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.http.Timeout != c.timeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type errorBody struct {
	Message string `json:"message"`
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	raw, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return decode(method+" "+path, raw, out)
}

func decode(op string, raw []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	// An empty 2xx body carries no result to merge
	if len(bytes.TrimSpace(raw)) == 0 {
		return &apperrors.TransportError{Op: op, Err: errors.New("empty response body")}
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return &apperrors.TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// send performs the request and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &apperrors.TransportError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("resolving api token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Request failed", "op", op, "request_id", requestID, "error", err)
		return nil, &apperrors.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.TransportError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}
	logger.Debug("Request finished", "op", op, "request_id", requestID, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, boundaryError(resp.StatusCode, raw)
	}
	return raw, nil
}

func boundaryError(status int, raw []byte) error {
	var eb errorBody
	if err := sonic.Unmarshal(raw, &eb); err == nil && strings.TrimSpace(eb.Message) != "" {
		return &apperrors.BoundaryError{Status: status, Message: eb.Message}
	}
	return &apperrors.BoundaryError{Status: status, Message: fmt.Sprintf("server error (%d)", status)}
}

// listEnvelope is the {"data": [...]} shape some list endpoints return.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// getList fetches a list endpoint that answers either a bare array or {"data": [...]}.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	raw, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := sonic.Unmarshal(trimmed, &items); err != nil {
			return nil, &apperrors.TransportError{Op: "GET " + path, Err: fmt.Errorf("decoding list: %w", err)}
		}
		return items, nil
	}
	var env listEnvelope[T]
	if err := sonic.Unmarshal(trimmed, &env); err != nil {
		return nil, &apperrors.TransportError{Op: "GET " + path, Err: fmt.Errorf("decoding list: %w", err)}
	}
	if env.Data == nil {
		return []T{}, nil
	}
	return env.Data, nil
}
