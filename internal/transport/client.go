package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Default client settings.
const (
	DefaultAPIVersion = "62.0"
	DefaultTimeout    = 120 * time.Second
	DefaultMaxFetch   = 50000

	// DefaultMaxBodySize limits the size of a single response body.
	DefaultMaxBodySize = 64 * 1024 * 1024 // 64MB

	userAgent = "soqlq"
)

// Client talks to the REST query API of one org.
type Client struct {
	instanceURL *url.URL
	accessToken string
	apiVersion  string
	tooling     bool
	maxFetch    int
	maxBodySize int64
	timeout     time.Duration

	// proxyAddress is an optional SOCKS5 proxy in "host:port" format.
	proxyAddress string

	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIVersion sets the REST API version, e.g. "62.0".
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = strings.TrimPrefix(version, "v")
		}
	}
}

// WithTimeout sets the timeout of each HTTP request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTooling sends queries to the tooling API instead of the data API.
func WithTooling(tooling bool) Option {
	return func(c *Client) {
		c.tooling = tooling
	}
}

// WithMaxFetch caps the number of records collected across pages.
func WithMaxFetch(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxFetch = n
		}
	}
}

// WithMaxBodySize sets the maximum size of a response body.
// Larger responses fail with ErrResponseTooLarge.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithSOCKS5Proxy routes every request through the SOCKS5 proxy at addr.
func WithSOCKS5Proxy(addr string) Option {
	return func(c *Client) {
		c.proxyAddress = addr
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client. Authentication
// headers are still added by the client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the org at instanceURL.
//
// The URL must be absolute with an http or https scheme. No request is
// made here; call CheckProxy to verify a configured proxy.
func NewClient(instanceURL, accessToken string, opts ...Option) (*Client, error) {
	u, err := parseInstanceURL(instanceURL)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}

	c := &Client{
		instanceURL: u,
		accessToken: accessToken,
		apiVersion:  DefaultAPIVersion,
		maxFetch:    DefaultMaxFetch,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	base := c.httpClient
	if base == nil {
		base, err = c.newHTTPClient()
		if err != nil {
			return nil, err
		}
	}

	// authenticate every request, redirects included
	client := *base
	inner := client.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}
	client.Transport = &headerInjectingTransport{
		base: inner,
		headers: map[string]string{
			"Authorization": "Bearer " + c.accessToken,
			"Accept":        "application/json",
			"User-Agent":    userAgent,
		},
	}
	c.httpClient = &client

	return c, nil
}

// parseInstanceURL validates and normalizes an instance URL.
func parseInstanceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstanceURL, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInstanceURL, raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// newHTTPClient builds the HTTP client, dialing through the SOCKS5 proxy
// when one is configured.
func (c *Client) newHTTPClient() (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if c.proxyAddress != "" {
		if !isValidProxyAddress(c.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// InstanceURL returns the normalized instance URL.
func (c *Client) InstanceURL() string {
	return c.instanceURL.String()
}

// APIVersion returns the REST API version in use.
func (c *Client) APIVersion() string {
	return c.apiVersion
}

// ProxyAddress returns the configured proxy address, if any.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// fixed headers into every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
