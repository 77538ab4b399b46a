// Package gateway is the single point of outbound HTTP to the storefront API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"golang.org/x/time/rate"

	"storefront-sync/internal/core/domain"
)

// FallbackMessage is used when a failure response carries no message
const FallbackMessage = "request failed"

// TokenSource supplies the current access token, empty when anonymous
type TokenSource interface {
	AccessToken() string
}

// Client issues JSON requests against the API base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu     sync.RWMutex
	tokens TokenSource
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTransport sets the round tripper of the underlying http.Client
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithRateLimit caps outbound requests per second
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a new Client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetTokenSource binds the token source after construction; the session
// store needs the client before it exists itself.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

// Request sends method path with an optional JSON body and query, and
// decodes a 2xx body into out when out is non-nil. Non-2xx responses
// fail with *domain.ApiError; transport failures with *domain.NetworkError.
func (c *Client) Request(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		reader = buf
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.NetworkError{Method: method, Path: path, Err: err}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ApiError{StatusCode: resp.StatusCode, Message: errorMessage(payload)}
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

// errorMessage reads the error field of a failure body, then message
func errorMessage(payload []byte) string {
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return FallbackMessage
	}
	var msg string
	if len(body.Error) > 0 && json.Unmarshal(body.Error, &msg) == nil && msg != "" {
		return msg
	}
	if body.Message != "" {
		return body.Message
	}
	return FallbackMessage
}

var encoder = schema.NewEncoder()

// EncodeQuery converts a schema-tagged struct into query parameters,
// omitting zero values tagged omitempty.
func EncodeQuery(v any) (url.Values, error) {
	values := url.Values{}
	if err := encoder.Encode(v, values); err != nil {
		return nil, err
	}
	return values, nil
}
