package client

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
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultTimeout bounds a single round trip when no HTTP client is provided.
	DefaultTimeout = 10 * time.Second
	// HeaderRequestID carries the per request correlation id.
	HeaderRequestID = "X-Request-ID"

	defaultUserAgent = "go-postboard"
)

// ErrEmptyBody is returned by Response.Decode when there is nothing to decode.
var ErrEmptyBody = errors.New("response body is empty")

// Config holds transport options.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	// RequestID generates the X-Request-ID header value, defaults to uuid v4.
	RequestID func() string
}

// Client issues JSON and form requests against the post board API. Session
// cookies set by the server are kept in an in-memory jar for the lifetime of
// the client and never persisted.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	requestID  func() string
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: base url must be http or https, got %q", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("client: base url has no host: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.HTTPClient != nil {
		cp := *cfg.HTTPClient
		httpClient = &cp
	}

	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	requestID := cfg.RequestID
	if requestID == nil {
		requestID = func() string { return uuid.New().String() }
	}

	return &Client{
		baseURL:    strings.TrimRight(base.String(), "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
		requestID:  requestID,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cookies returns the cookies the jar would send to the API root.
func (c *Client) Cookies() []*http.Cookie {
	u, err := url.Parse(c.baseURL)
	if err != nil || c.httpClient.Jar == nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// Do sends req and returns the full response. Only failures where no
// response was obtained are returned as errors; non 2xx statuses are returned
// as a Response for the caller to interpret.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	id := c.requestID()

	body, contentType, err := req.encode()
	if err != nil {
		return nil, fmt.Errorf("client: encode %s %s: %w", method, req.Path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: build %s %s: %w", method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(HeaderRequestID, id)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, RequestID: id, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, RequestID: id, Err: err}
	}

	return &Response{
		Method:     method,
		URL:        target,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header.Clone(),
		Body:       payload,
		RequestID:  id,
	}, nil
}

// Request describes a single API call. At most one of JSON or Form is used;
// JSON wins when both are set.
type Request struct {
	Method string
	Path   string
	JSON   any
	Form   url.Values
}

func (r Request) encode() (io.Reader, string, error) {
	switch {
	case r.JSON != nil:
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	case r.Form != nil:
		return strings.NewReader(r.Form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return nil, "", nil
	}
}

// Response is a fully read HTTP response.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	RequestID  string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the trimmed body.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Body))
}

// Decode unmarshals the JSON body into out.
func (r *Response) Decode(out any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(r.Body, out)
}

// TransportError is returned when the request never produced a response.
type TransportError struct {
	Method    string
	URL       string
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Metadata returns diagnostic fields for logging.
func (e *TransportError) Metadata() map[string]any {
	if e == nil {
		return nil
	}
	meta := map[string]any{
		"method": e.Method,
		"url":    e.URL,
	}
	if e.RequestID != "" {
		meta["request_id"] = e.RequestID
	}
	if e.Err != nil {
		meta["error"] = e.Err.Error()
	}
	return meta
}
