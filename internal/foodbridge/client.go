package foodbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	// CSRFCookie is the cookie the server sets at session restore.
	CSRFCookie = "csrf_token"
	// CSRFHeader carries the token on every state-changing request.
	CSRFHeader = "X-CSRF-Token"
	// RequestIDHeader correlates client and server logs.
	RequestIDHeader = "X-Request-ID"

	defaultBaseURL   = "http://127.0.0.1:5000"
	defaultUserAgent = "foodbridge/0.1"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 16 << 20
	apiPrefix        = "/api"
)

// Observer receives one call per completed round-trip. Status is zero when no
// response was received.
type Observer interface {
	ObserveRequest(method, resource string, status int, elapsed time.Duration)
}

// Response is a fully-read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the body into dest.
func (r *Response) Decode(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client is the fetch gateway for the marketplace API. It normalises paths
// under /api, attaches the CSRF token to every non-GET request and turns
// non-2xx responses into *StatusError values.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	breaker   *gobreaker.CircuitBreaker
	observer  Observer
	log       zerolog.Logger

	mu        sync.Mutex
	bodyToken string
	restored  bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A cookie jar is added
// when the supplied client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithObserver reports each round-trip to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the gateway logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithBreaker routes every request through cb. Transport failures and 5xx
// responses count against it; 4xx responses do not.
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CSRFToken returns the token currently held, preferring the cookie.
func (c *Client) CSRFToken() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL.ResolveReference(&url.URL{Path: apiPrefix + "/"})) {
		if ck.Name == CSRFCookie && ck.Value != "" {
			return ck.Value
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bodyToken
}

// RestoreCSRF asks the server for a fresh token. The server normally sets the
// cookie; a csrf_token field in the body is kept as a fallback.
func (c *Client) RestoreCSRF(ctx context.Context) (string, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/api/csrf/restore", nil)
	if err != nil {
		return "", fmt.Errorf("restore csrf: %w", err)
	}
	var payload struct {
		Token string `json:"csrf_token"`
	}
	c.mu.Lock()
	c.restored = true
	if len(bytes.TrimSpace(resp.Body)) > 0 && json.Unmarshal(resp.Body, &payload) == nil && payload.Token != "" {
		c.bodyToken = payload.Token
	}
	c.mu.Unlock()
	return c.CSRFToken(), nil
}

// Do performs one request. body is JSON-encoded when non-nil. A 2xx response
// is returned fully read; anything else comes back as *StatusError, and
// transport failures wrap ErrUnavailable.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	token := ""
	if method != http.MethodGet {
		token, err = c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
	}

	if c.breaker == nil {
		return c.roundTrip(ctx, method, rel, payload, token)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, method, rel, payload, token)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, rel.Path, err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*Response), nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if tok := c.CSRFToken(); tok != "" {
		return tok, nil
	}
	c.mu.Lock()
	restored := c.restored
	c.mu.Unlock()
	if restored {
		return "", nil
	}
	tok, err := c.RestoreCSRF(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		c.log.Warn().Err(err).Msg("csrf restore failed; sending without token")
		return "", nil
	}
	return tok, nil
}

func (c *Client) roundTrip(ctx context.Context, method string, rel *url.URL, payload []byte, token string) (*Response, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && token != "" {
		req.Header.Set(CSRFHeader, token)
	}

	start := time.Now()
	resource := resourceOf(rel.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, resource, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("execute request: %w", ctxErr)
		}
		c.log.Debug().Str("request_id", requestID).Str("method", method).Str("path", rel.Path).Err(err).Msg("request failed")
		return nil, fmt.Errorf("%w: execute request: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	c.observe(method, resource, resp.StatusCode, elapsed)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}
	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", rel.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     method,
			Path:       rel.Path,
			StatusCode: resp.StatusCode,
			Body:       data,
			Problem:    ParseProblem(data),
		}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// BreakerSuccess classifies outcomes for gobreaker.Settings.IsSuccessful:
// only failures wrapping ErrUnavailable count against the breaker.
func BreakerSuccess(err error) bool {
	return err == nil || !errors.Is(err, ErrUnavailable)
}

func (c *Client) observe(method, resource string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, resource, status, elapsed)
	}
}

// normalizePath prefixes /api when missing and keeps any query string.
func normalizePath(path string) (*url.URL, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	if trimmed != apiPrefix && !strings.HasPrefix(trimmed, apiPrefix+"/") && !strings.HasPrefix(trimmed, apiPrefix+"?") {
		trimmed = apiPrefix + trimmed
	}
	rel, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	return rel, nil
}

// resourceOf returns the first path segment below /api, used as a metrics label.
func resourceOf(path string) string {
	rest := strings.TrimPrefix(path, apiPrefix)
	rest = strings.TrimPrefix(rest, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "root"
	}
	return rest
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
