package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/octonezd/altmerge/internal/domain"
	"github.com/octonezd/altmerge/pkg/version"
)

// Ensure Client implements domain.Fetcher
var _ domain.Fetcher = (*Client)(nil)

// Client is an HTTP client for manifest sources built on tls-client
type Client struct {
	tlsClient    tls_client.HttpClient
	userAgent    string
	cache        domain.Cache
	cacheEnabled bool
	cacheTTL     time.Duration
	refreshCache bool
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Timeout      time.Duration
	EnableCache  bool
	CacheTTL     time.Duration
	Cache        domain.Cache
	RefreshCache bool
	UserAgent    string
	ProxyURL     string
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:     30 * time.Second,
		EnableCache: false,
		CacheTTL:    time.Hour,
		UserAgent:   "",
		ProxyURL:    "",
	}
}

// DefaultUserAgent returns the User-Agent sent when none is configured
func DefaultUserAgent() string {
	return version.UserAgent()
}

// NewClient creates a new HTTP client
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	tlsOpts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutMilliseconds(timeoutMillis(opts.Timeout)),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithRandomTLSExtensionOrder(),
	}

	if opts.ProxyURL != "" {
		tlsOpts = append(tlsOpts, tls_client.WithProxyUrl(opts.ProxyURL))
	}

	tlsClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), tlsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent()
	}

	return &Client{
		tlsClient:    tlsClient,
		userAgent:    userAgent,
		cache:        opts.Cache,
		cacheEnabled: opts.EnableCache,
		cacheTTL:     opts.CacheTTL,
		refreshCache: opts.RefreshCache,
	}, nil
}

// timeoutMillis converts d to whole milliseconds, rounding up so a
// sub-millisecond remainder never shortens the deadline.
func timeoutMillis(d time.Duration) int {
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	if ms < 1 {
		ms = 1
	}
	return int(ms)
}

// Get fetches a source and returns its body decoded to UTF-8
func (c *Client) Get(ctx context.Context, url string) (*domain.Response, error) {
	if c.cacheEnabled && c.cache != nil && !c.refreshCache {
		cached, err := c.getFromCache(ctx, url)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	if c.cacheEnabled && c.cache != nil {
		_ = c.saveToCache(ctx, url, resp)
	}

	return resp, nil
}

// doRequest performs the actual HTTP request
func (c *Client) doRequest(ctx context.Context, targetURL string) (*domain.Response, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, targetURL, nil)
	if err != nil {
		return nil, domain.NewNetworkError(targetURL, 0, fmt.Errorf("failed to create request: %w", err))
	}

	for k, v := range requestHeaders(c.userAgent) {
		req.Header.Set(k, v)
	}

	resp, err := c.tlsClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError(targetURL, 0, classifyTransportError(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewNetworkError(targetURL, resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError(targetURL, resp.StatusCode, classifyTransportError(ctx, err))
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := DecodeBody(raw, contentType, targetURL)
	if err != nil {
		return nil, domain.NewParseError(targetURL, err)
	}

	// Convert fhttp.Header to http.Header
	httpHeaders := make(http.Header)
	for k, v := range resp.Header {
		httpHeaders[k] = v
	}

	return &domain.Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		Headers:     httpHeaders,
		ContentType: contentType,
		URL:         targetURL,
		FromCache:   false,
	}, nil
}

// classifyTransportError marks deadline failures with domain.ErrTimeout
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("request failed: %w", err)
}

// requestHeaders returns the headers sent with every request
func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json, */*;q=0.8",
	}
}

// Close releases client resources
func (c *Client) Close() error {
	// TLS client doesn't have a Close method, but we keep this for interface compliance
	return nil
}

// getFromCache retrieves a response from cache
func (c *Client) getFromCache(ctx context.Context, url string) (*domain.Response, error) {
	if c.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := c.cache.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	return &domain.Response{
		StatusCode:  200,
		Body:        data,
		ContentType: "application/json",
		URL:         url,
		FromCache:   true,
	}, nil
}

// saveToCache saves a response to cache
func (c *Client) saveToCache(ctx context.Context, url string, resp *domain.Response) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Set(ctx, url, resp.Body, c.cacheTTL)
}
