// Package api provides the HTTP client for the Fureal inference backend.
package api

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"go.uber.org/zap"

	"github.com/fureal/fureal/internal/models"
)

// httpDoer is the part of tls_client.HttpClient the client needs
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the chat backend: one POST per exchange and plain GETs
// for synthesized audio.
type Client struct {
	httpClient httpDoer
	baseURL    string
	chatPath   string
	timeout    time.Duration
	logger     *zap.Logger
	seq        atomic.Uint64
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the backend base address (scheme://host[:port])
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithChatPath sets the path of the chat endpoint
func WithChatPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.chatPath = path
	}
}

// WithTimeout sets the transport timeout. Zero or less means no limit.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout < 0 {
			timeout = 0
		}
		c.timeout = timeout
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// withHTTPClient replaces the transport (used by tests)
func withHTTPClient(doer httpDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		baseURL:  models.DefaultBackendURL,
		chatPath: models.DefaultChatPath,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if _, err := parseBase(client.baseURL); err != nil {
		return nil, err
	}

	if client.httpClient == nil {
		// tls-client applies its own 30s default unless told otherwise;
		// zero seconds leaves the transport unbounded.
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
			tls_client.WithTimeoutSeconds(client.timeoutSeconds()),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	client.logger = client.logger.Named("api")
	return client, nil
}

// Timeout returns the transport timeout; zero means no limit
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// timeoutSeconds rounds the timeout up so sub-second values stay bounded
func (c *Client) timeoutSeconds() int {
	if c.timeout <= 0 {
		return 0
	}
	return int(math.Ceil(c.timeout.Seconds()))
}

// BaseURL returns the backend base address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChatURL returns the absolute address of the chat endpoint
func (c *Client) ChatURL() string {
	return c.baseURL + c.chatPath
}

// Close marks the client as closed; further requests fail
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// nextSeq returns a monotonic request number
func (c *Client) nextSeq() uint64 {
	return c.seq.Add(1)
}

func parseBase(base string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: missing host", base)
	}
	return u, nil
}
