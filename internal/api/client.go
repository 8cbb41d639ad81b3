// Package api is the HTTP adapter for the stray-animal care backend.
// It attaches the bearer token, unwraps the common response envelope and
// routes auth failures back into the session store: a 401 clears the
// session (navigation is the caller's concern), a 403 only notifies, and
// 5xx surfaces a generic retryable message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"straycare/internal/notify"
)

// TokenSource provides the current bearer token and the hook the adapter
// fires when the backend rejects it. Implemented by the session store.
type TokenSource interface {
	Token() string
	ClearAuth()
}

// Envelope is the backend's uniform response wrapper.
type Envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// StatusError is a non-2xx response, carrying the backend message when the
// body parsed as an envelope.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// Client talks to the backend REST surface.
type Client struct {
	base    string
	http    *http.Client
	tokens  TokenSource
	notify  notify.Notifier
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource wires the session store into the request/response path.
func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.tokens = ts } }

// WithNotifier sets the user-notification sink.
func WithNotifier(n notify.Notifier) Option { return func(c *Client) { c.notify = n } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option { return func(c *Client) { c.log = log } }

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New builds a client for the given base URL (including the /api/v1 prefix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
		notify: notify.Nop(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET and decodes the envelope data into out (out may be nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, path, query, "", nil, out)
	return err
}

// Post issues a JSON POST. A nil body sends an empty JSON object.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.doJSON(ctx, http.MethodPost, path, body, out)
	return err
}

// Put issues a JSON PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.doJSON(ctx, http.MethodPut, path, body, out)
	return err
}

// Patch issues a JSON PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	_, err := c.doJSON(ctx, http.MethodPatch, path, body, out)
	return err
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, "", nil, out)
	return err
}

// PostEnvelope issues a JSON POST and returns the full envelope, for callers
// that need the message field (e.g. admin promote).
func (c *Client) PostEnvelope(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

// PutEnvelope issues a JSON PUT and returns the full envelope.
func (c *Client) PutEnvelope(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.doJSON(ctx, http.MethodPut, path, body, nil)
}

// FilePart is one file attached to a multipart request.
type FilePart struct {
	Field string
	Path  string
}

// PostMultipart issues a multipart POST with scalar fields and file parts.
// Content-Type is left to the multipart writer so the boundary is correct.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FilePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("multipart field %s: %w", name, err)
		}
	}
	for _, fp := range files {
		f, err := os.Open(fp.Path)
		if err != nil {
			return fmt.Errorf("open %s: %w", fp.Path, err)
		}
		part, err := w.CreateFormFile(fp.Field, filepath.Base(fp.Path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return fmt.Errorf("attach %s: %w", fp.Path, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}
	_, err := c.do(ctx, http.MethodPost, path, nil, w.FormDataContentType(), &buf, out)
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (*Envelope, error) {
	if body == nil {
		body = struct{}{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.do(ctx, method, path, nil, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) (*Envelope, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env Envelope
	if len(raw) > 0 {
		// Non-envelope bodies (proxies, HTML error pages) are tolerated;
		// env stays zero and only the status code drives handling.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorForStatus(resp.StatusCode, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return &env, nil
}

// errorForStatus implements the response interceptor policy.
func (c *Client) errorForStatus(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		if c.tokens != nil {
			c.tokens.ClearAuth()
		}
		c.notify.Error("Session expired. Please login again.")
	case status == http.StatusForbidden:
		c.notify.Error("Access denied. You do not have permission for this action.")
	case status >= 500:
		c.notify.Error("Server error. Please try again later.")
	}
	return &StatusError{StatusCode: status, Message: message}
}

// MessageOf extracts a user-displayable message from an error, preferring
// the backend's envelope message, falling back to the given default.
func MessageOf(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
