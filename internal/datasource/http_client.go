// Package datasource provides the outbound HTTP transport shared by provider clients.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
	ProxyURL     string
	// SingleAttempt returns every response to the caller, including 429 and
	// 5xx, so the caller can run its own retry policy.
	SingleAttempt bool
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:      20 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    2.0,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting
type RateLimitedHTTPClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Entry
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) (*RateLimitedHTTPClient, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	entry := logger.WithField("component", "http_client")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = &leveledLogger{entry: entry}

	if cfg.SingleAttempt {
		retryClient.RetryMax = 0
		retryClient.CheckRetry = singleAttemptPolicy()
	} else {
		retryClient.RetryMax = cfg.MaxRetries
		retryClient.CheckRetry = customRetryPolicy()
	}

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport, ok := retryClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			return nil, fmt.Errorf("unexpected transport type %T", retryClient.HTTPClient.Transport)
		}
		transport.Proxy = http.ProxyURL(proxy)
		entry.WithField("proxy_host", proxy.Host).Info("Routing provider traffic through proxy")
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &RateLimitedHTTPClient{
		client:  retryClient,
		limiter: rate.NewLimiter(limit, 1),
		logger:  entry,
	}, nil
}

// Do executes an HTTP request after waiting on the rate limiter
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	rreq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap request: %w", err)
	}

	return c.client.Do(rreq)
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Post executes a POST request
func (c *RateLimitedHTTPClient) Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			// Retry on network errors
			return true, err
		}

		// Retry on rate limit (429), server errors (500, 502, 503, 504), and gateway errors
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}

		return false, nil
	}
}

// singleAttemptPolicy never retries; network errors are surfaced as-is.
func singleAttemptPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
}

// leveledLogger adapts a logrus entry to retryablehttp.LeveledLogger
type leveledLogger struct {
	entry *logrus.Entry
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.withFields(keysAndValues).Error(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.withFields(keysAndValues).Info(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.withFields(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.withFields(keysAndValues).Warn(msg)
}

func (l *leveledLogger) withFields(keysAndValues []interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}
