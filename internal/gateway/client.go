package gateway

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
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	// SSOPath is where the operator is sent when the session has expired.
	SSOPath = "/oauth2/authorization/sso"

	xsrfCookie = "XSRF-TOKEN"
	xsrfHeader = "X-XSRF-TOKEN"

	defaultMaxInFlight = 4
)

// Navigator performs the full "page" navigation that follows an
// authentication failure. In a terminal that usually means printing the
// login URL or opening a browser.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// Options overrides the defaults of a single request. Body may be nil,
// []byte, string, json.RawMessage or any value that marshals to JSON.
type Options struct {
	Method  string
	Headers map[string]string
	Body    any
}

// Settings configures a Client.
type Settings struct {
	BaseURL           string
	Timeout           time.Duration
	Retries           int
	MaxInFlight       int64
	SessionCookieName string
	SessionCookie     string
	XSRFToken         string
	Navigator         Navigator
	HTTPClient        *http.Client
}

// Client is the single path every console call goes through. It carries
// same-origin cookies, the anti-forgery header and the auth redirect.
type Client struct {
	base   string
	origin *url.URL
	http   *http.Client
	nav    Navigator
	retry  *RetryPolicy
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// New creates a Client for the admin API at s.BaseURL.
func New(s Settings) (*Client, error) {
	base := strings.TrimRight(s.BaseURL, "/")
	origin, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", s.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	var seed []*http.Cookie
	if s.SessionCookie != "" {
		name := s.SessionCookieName
		if name == "" {
			name = "SESSION"
		}
		seed = append(seed, &http.Cookie{Name: name, Value: s.SessionCookie, Path: "/"})
	}
	if s.XSRFToken != "" {
		seed = append(seed, &http.Cookie{Name: xsrfCookie, Value: s.XSRFToken, Path: "/"})
	}
	if len(seed) > 0 {
		jar.SetCookies(origin, seed)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	if s.HTTPClient != nil {
		copied := *s.HTTPClient
		hc = &copied
	}
	hc.Jar = jar

	maxInFlight := s.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}

	logger := slog.Default().With("component", "gateway")
	nav := s.Navigator
	if nav == nil {
		nav = NavigatorFunc(func(u string) {
			logger.Warn("authentication required", "login", u)
		})
	}

	return &Client{
		base:   base,
		origin: origin,
		http:   hc,
		nav:    nav,
		retry:  NewRetryPolicy(s.Retries),
		sem:    semaphore.NewWeighted(maxInFlight),
		logger: logger,
	}, nil
}

// BaseURL returns the API origin without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// LoginURL returns the SSO authorization endpoint.
func (c *Client) LoginURL() string { return c.base + SSOPath }

// xsrfToken returns the URL-decoded XSRF-TOKEN cookie, if the jar holds one.
func (c *Client) xsrfToken() (string, bool) {
	for _, ck := range c.http.Jar.Cookies(c.origin) {
		if ck.Name != xsrfCookie {
			continue
		}
		v, err := url.PathUnescape(ck.Value)
		if err != nil {
			return ck.Value, true
		}
		return v, true
	}
	return "", false
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		return data, nil
	}
}

// Request performs one API call and returns the raw JSON body, or nil when
// the response is not JSON. A 401 or 403 navigates to the login page and
// returns ErrAuthRequired; every other failure is a *RequestError.
func (c *Client) Request(ctx context.Context, path string, opts *Options) (json.RawMessage, error) {
	if opts == nil {
		opts = &Options{}
	}
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	if !safeMethod(method) {
		if token, ok := c.xsrfToken(); ok {
			headers.Set(xsrfHeader, token)
		}
	}
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	var out json.RawMessage
	attempt := func() error {
		var err error
		out, err = c.send(ctx, method, path, headers, body)
		return err
	}
	if safeMethod(method) {
		err = c.retry.Execute(ctx, attempt)
	} else {
		err = attempt()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, method, path string, headers http.Header, body []byte) (json.RawMessage, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, &RequestError{Message: err.Error()}
	}
	defer c.sem.Release(1)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, &RequestError{Message: err.Error()}
	}
	req.Header = headers.Clone()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "error", err)
		return nil, &RequestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	if err != nil {
		return nil, &RequestError{Status: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.nav.Navigate(c.LoginURL())
		return nil, ErrAuthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil, nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	if !json.Valid(respBody) {
		return nil, &RequestError{Status: resp.StatusCode, Message: "invalid JSON in response"}
	}
	return json.RawMessage(respBody), nil
}

// Do is Request followed by decoding the body into out. A nil body leaves
// out untouched.
func (c *Client) Do(ctx context.Context, path string, opts *Options, out any) error {
	raw, err := c.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
