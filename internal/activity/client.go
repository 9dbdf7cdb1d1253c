package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"walletbot/internal/config"
	"walletbot/internal/logging"
	"walletbot/internal/session"
)

// Response is a parsed vendor API envelope. Code 0 means success; any other
// value is a domain-level failure carried alongside the raw body.
type Response struct {
	Code    int
	Value   json.RawMessage
	Message string
	Raw     string
}

type envelope struct {
	Code    *int            `json:"code"`
	Value   json.RawMessage `json:"value"`
	Message string          `json:"message"`
}

// Client issues campaign API requests bound to one session. Transport and
// parse errors are logged and surface as nil responses; domain failures are
// recorded as a human-readable error string per the upstream contract, never
// raised.
type Client struct {
	vendor  config.Vendor
	profile config.Profile
	hc      *http.Client
	cookie  string
	log     *logging.Logger

	mu      sync.Mutex
	errInfo string
}

// NewClient creates a client for one account session
func NewClient(vendor config.Vendor, profile config.Profile, sess *session.Session, log *logging.Logger) *Client {
	return &Client{
		vendor:  vendor,
		profile: profile,
		hc:      &http.Client{Timeout: 15 * time.Second},
		cookie:  sess.CookieHeader(),
		log:     log,
	}
}

// ErrorInfo returns the last recorded domain or transport error description.
// Empty when no call has failed since the last ClearError.
func (c *Client) ErrorInfo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errInfo
}

// ClearError resets the recorded error description
func (c *Client) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errInfo = ""
}

func (c *Client) setError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.mu.Lock()
	c.errInfo = msg
	c.mu.Unlock()
	c.log.Warn(msg)
}

// do performs one HTTP request and returns the raw body. Query parameters
// are appended to the URL; form values are sent urlencoded in the body.
func (c *Client) do(ctx context.Context, method, path string, params, form url.Values, headers map[string]string) ([]byte, error) {
	reqURL := c.vendor.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var body io.Reader
	if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", c.vendor.MobileUA)
	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if len(form) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(data), 100))
	}
	return data, nil
}

func (c *Client) parse(data []byte) *Response {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warnf("failed to parse server response: %s", truncate(string(data), 100))
		return nil
	}

	code := -1
	if env.Code != nil {
		code = *env.Code
	}
	return &Response{
		Code:    code,
		Value:   env.Value,
		Message: env.Message,
		Raw:     string(data),
	}
}

// Get issues a GET request and parses the envelope. Returns nil on transport
// or parse failure.
func (c *Client) Get(ctx context.Context, path string, params url.Values, headers map[string]string) *Response {
	data, err := c.do(ctx, http.MethodGet, path, params, nil, headers)
	if err != nil {
		c.log.Error("request failed", err)
		return nil
	}
	return c.parse(data)
}

// PostForm issues a form-encoded POST request and parses the envelope.
// Returns nil on transport or parse failure.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, headers map[string]string) *Response {
	data, err := c.do(ctx, http.MethodPost, path, nil, form, headers)
	if err != nil {
		c.log.Error("request failed", err)
		return nil
	}
	return c.parse(data)
}

// GetRaw issues a GET request and returns the unparsed body. Used where the
// vendor is known to answer with non-JSON bodies.
func (c *Client) GetRaw(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil, nil)
}

// PostFormRaw issues a form POST and returns the unparsed body
func (c *Client) PostFormRaw(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, form, nil)
}

// baseParams returns the device-identifying parameters attached to most
// task and reward calls.
func (c *Client) baseParams() url.Values {
	v := url.Values{}
	v.Set("activityCode", c.vendor.ActivityCode)
	v.Set("app", c.profile.App)
	v.Set("deviceType", "2")
	v.Set("system", "1")
	v.Set("visitEnvironment", "2")
	v.Set("userExtra", c.profile.UserExtra)
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
