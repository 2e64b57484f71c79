// Package httpclient is the single point of egress to the storefront backend.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/net/publicsuffix"
)

// TokenSource yields the bearer token kept in durable client storage.
// An empty token means none is stored.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// UnauthorizedHandler performs the hard navigation to the login screen.
type UnauthorizedHandler func(method, path string)

type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	policy         Policy
	onUnauthorized UnauthorizedHandler
}

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient replaces the transport client. A cookie jar is added when it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithPolicy(p Policy) Option {
	return func(c *Client) { c.policy = p }
}

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// New returns a Client for baseURL. Cookies set by the backend are kept and sent
// back on every request.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpclient: parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("httpclient: base URL must be absolute, got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		policy:  DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("httpclient: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one JSON request. body is encoded when non-nil; a 2xx body is decoded into
// out when out is non-nil (a *[]byte receives the raw bytes).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	return c.send(ctx, method, path, query, reader, "application/json", out)
}

// Multipart sends form as multipart/form-data.
func (c *Client) Multipart(ctx context.Context, method, path string, form *Form, out any) error {
	buf, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("httpclient: encoding %s %s: %w", method, path, err)
	}
	return c.send(ctx, method, path, nil, buf, contentType, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("httpclient: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	c.attachCredentials(ctx, req)

	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		if id, err := uuid.NewV7(); err == nil {
			requestID = id.String()
		}
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	slog.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleError(method, path, resp.StatusCode, raw)
	}
	return decode(raw, out, method, path)
}

type requestIDKey struct{}

// WithRequestID makes every backend call made with ctx carry id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// attachCredentials sets the bearer header when a token is stored. It never fails
// the request.
func (c *Client) attachCredentials(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		slog.Warn("reading stored token failed", "err", err)
		return
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) handleError(method, path string, status int, raw []byte) error {
	apiErr := &APIError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: bodyMessage(raw),
		Body:    raw,
	}
	if status != http.StatusUnauthorized || c.policy.Exempt(method, path) {
		return apiErr
	}

	apiErr.LoginRedirect = true
	slog.Info("unauthorized response, redirecting to login", "method", method, "path", path)
	if c.onUnauthorized != nil {
		c.onUnauthorized(method, path)
	}
	return apiErr
}

func decode(raw []byte, out any, method, path string) error {
	if out == nil {
		return nil
	}
	if dst, ok := out.(*[]byte); ok {
		*dst = raw
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: decoding %s %s: %w", method, path, err)
	}
	return nil
}
