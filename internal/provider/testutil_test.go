package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/live-odds/internal/datasource"
)

const samplePayload = `{
	"event": {"id": "E1", "name": "India v Australia"},
	"catalogues": [
		{"marketId": "1.1", "marketName": "Match Odds", "status": "OPEN", "inPlay": false,
		 "runners": [{"id": 101, "name": "India"}, {"id": 102, "name": "Australia"}]},
		{"marketId": "1.2", "marketName": "6 Over Runs IND", "marketCondition": {"min": 1},
		 "status": "OPEN", "runners": [{"id": 201, "name": "Runs"}]},
		{"marketId": "1.3", "marketName": "Session 10", "runners": [{"id": "301", "name": "Yes"}]},
		{"marketId": 14, "marketName": "Toss", "inPlay": true, "runners": []},
		"garbage"
	],
	"odds": "{\"1.1\": \"x|y|SUSPENDED|a|b|c|TRUE|101~ACTIVE~1.85:500:10~1.90:300:5,102~ACTIVE~2.1:100:0,bad\", \"1.3\": 42}",
	"score": "{\"runs\": 120}"
}`

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// sleepRecorder captures requested sleeps without blocking
type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}

func testClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:           baseURL,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		RateLimitedDelay:  10 * time.Second,
		ForbiddenDelay:    5 * time.Second,
		Jitter:            500 * time.Millisecond,
		RateLimitedJitter: 5 * time.Second,
		ForbiddenJitter:   3 * time.Second,
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *sleepRecorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := datasource.DefaultHTTPClientConfig()
	cfg.SingleAttempt = true
	cfg.RateLimit = 0
	cfg.Timeout = 2 * time.Second
	doer, err := datasource.NewRateLimitedHTTPClient(cfg, quietLogger())
	require.NoError(t, err)

	rec := &sleepRecorder{}
	client := NewClient(doer, testClientConfig(server.URL), quietLogger(),
		WithSleep(rec.sleep),
		WithJitter(func(time.Duration) time.Duration { return 0 }),
		WithClock(func() time.Time { return fixedNow }),
	)
	return client, rec
}
