// Package provider fetches match listings and per-event odds from the upstream
// exchange and normalizes them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/config"
	"github.com/yourusername/live-odds/internal/logger"
	"github.com/yourusername/live-odds/internal/metrics"
	"github.com/yourusername/live-odds/internal/models"
)

const backoffFactor = 1.5

// HTTPDoer executes a single outbound request
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// ClientConfig controls the event fetch retry policy
type ClientConfig struct {
	BaseURL          string
	MaxRetries       int
	BaseDelay        time.Duration
	RateLimitedDelay time.Duration
	ForbiddenDelay   time.Duration
	// Jitter bounds the random delay added to each backoff.
	Jitter            time.Duration
	RateLimitedJitter time.Duration
	ForbiddenJitter   time.Duration
	UserAgents        []string
}

// ClientConfigFrom maps provider configuration onto a ClientConfig
func ClientConfigFrom(cfg config.ProviderConfig) ClientConfig {
	return ClientConfig{
		BaseURL:           cfg.BaseURL,
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         cfg.BaseDelay(),
		RateLimitedDelay:  time.Duration(cfg.RateLimitedDelayMs) * time.Millisecond,
		ForbiddenDelay:    time.Duration(cfg.ForbiddenDelayMs) * time.Millisecond,
		Jitter:            time.Duration(cfg.JitterMs) * time.Millisecond,
		RateLimitedJitter: time.Duration(cfg.RateLimitedDelayMs) * time.Millisecond / 2,
		ForbiddenJitter:   time.Duration(cfg.ForbiddenDelayMs) * time.Millisecond * 3 / 5,
		UserAgents:        cfg.UserAgents,
	}
}

// Client fetches and normalizes per-event odds
type Client struct {
	http       HTTPDoer
	cfg        ClientConfig
	detailURL  string
	origin     string
	userAgents []string
	log        *logger.IngestionLogger

	sleep  SleepFunc
	jitter func(limit time.Duration) time.Duration
	pick   func(n int) int
	now    func() time.Time
}

// Option customizes a Client
type Option func(*Client)

// WithSleep replaces the backoff sleep
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithJitter replaces the random jitter source
func WithJitter(jitter func(limit time.Duration) time.Duration) Option {
	return func(c *Client) { c.jitter = jitter }
}

// WithClock replaces the timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates an event fetcher
func NewClient(doer HTTPDoer, cfg ClientConfig, log *logrus.Logger, opts ...Option) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}

	c := &Client{
		http:       doer,
		cfg:        cfg,
		detailURL:  detailURL(cfg.BaseURL),
		origin:     providerOrigin(cfg.BaseURL),
		userAgents: agents,
		log:        logger.NewIngestionLogger(log),
		sleep:      sleepContext,
		jitter:     randomJitter,
		pick:       rand.Intn,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEvent fetches one event and returns its normalized record. Transient
// failures are retried with exponential backoff; a 404 or a malformed payload
// ends the loop immediately. A non-nil error means the event must be skipped.
func (c *Client) FetchEvent(ctx context.Context, eventID string) (*models.NormalizedEvent, error) {
	start := time.Now()
	defer func() { metrics.RecordFetchDuration(time.Since(start).Seconds()) }()

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.log.LogFetchRetry(eventID, attempt, 0, delay, errorReason(lastErr))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		c.log.LogFetchAttempt(eventID, attempt+1, c.cfg.MaxRetries)
		event, err := c.attempt(ctx, eventID)
		if err == nil {
			metrics.RecordFetchAttempt("success")
			c.log.LogEventNormalized(eventID, event.MarketCount())
			return event, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var fe *FetchError
		if errors.As(err, &fe) {
			metrics.RecordFetchAttempt(fe.Code)
			if fe.Terminal() {
				return nil, fe
			}
		}
		lastErr = err
	}

	return nil, newFetchError(eventID, ErrCodeRetriesExhausted,
		fmt.Sprintf("failed after %d attempts", c.cfg.MaxRetries),
		errors.Join(ErrRetriesExhausted, lastErr))
}

// attempt performs one request. Throttled responses sleep their own longer
// delay here before the error is handed back to the retry loop.
func (c *Client) attempt(ctx context.Context, eventID string) (*models.NormalizedEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.detailURL+"/"+eventID, nil)
	if err != nil {
		return nil, newFetchError(eventID, ErrCodeInvalidData, "failed to create request", err)
	}
	setBrowserHeaders(req, c.userAgents[c.pick(len(c.userAgents))], c.origin)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, newFetchError(eventID, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, c.throttled(ctx, eventID, ErrCodeRateLimited, resp.StatusCode, c.cfg.RateLimitedDelay, c.cfg.RateLimitedJitter)
	case resp.StatusCode == http.StatusForbidden:
		return nil, c.throttled(ctx, eventID, ErrCodeForbidden, resp.StatusCode, c.cfg.ForbiddenDelay, c.cfg.ForbiddenJitter)
	case resp.StatusCode == http.StatusNotFound:
		return nil, newFetchError(eventID, ErrCodeNotFound, "event not found", ErrEventNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, newFetchError(eventID, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newFetchError(eventID, ErrCodeNetworkError, "failed to read body", err)
	}
	if len(body) == 0 {
		return nil, newFetchError(eventID, ErrCodeEmptyBody, "empty response", nil)
	}

	return normalizeEvent(eventID, body, c.now(), c.log.WithField("event_id", eventID))
}

func (c *Client) throttled(ctx context.Context, eventID, code string, status int, base, jitter time.Duration) error {
	delay := base + c.jitter(jitter)
	c.log.LogFetchRetry(eventID, 0, status, delay, code)
	if err := c.sleep(ctx, delay); err != nil {
		return err
	}
	return newFetchError(eventID, code, fmt.Sprintf("status %d", status), nil)
}

// backoff returns base × 1.5^attempt plus jitter
func (c *Client) backoff(attempt int) time.Duration {
	base := float64(c.cfg.BaseDelay) * math.Pow(backoffFactor, float64(attempt))
	return time.Duration(base) + c.jitter(c.cfg.Jitter)
}

func detailURL(baseURL string) string {
	return (&config.ProviderConfig{BaseURL: baseURL}).EventDetailURL()
}

func errorReason(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Code
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(limit)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
