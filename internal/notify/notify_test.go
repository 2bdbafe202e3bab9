package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/live-odds/internal/datasource"
	"github.com/yourusername/live-odds/internal/models"
)

func testEvent() *models.NormalizedEvent {
	event := models.NewNormalizedEvent("E1", "A v B", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	event.Status = "OPEN"
	return event
}

func singleAttemptDoer(t *testing.T) HTTPDoer {
	t.Helper()
	cfg := datasource.DefaultHTTPClientConfig()
	cfg.SingleAttempt = true
	cfg.RateLimit = 0
	doer, err := datasource.NewRateLimitedHTTPClient(cfg, nil)
	require.NoError(t, err)
	return doer
}

func TestWebhookPostsEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "E1", got["match_id"])
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	hook := NewWebhook(singleAttemptDoer(t), server.URL, 5*time.Second)
	assert.NoError(t, hook.Notify(context.Background(), testEvent()))
}

func TestWebhookDoesNotRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	hook := NewWebhook(singleAttemptDoer(t), server.URL, 5*time.Second)
	err := hook.Notify(context.Background(), testEvent())

	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWebhookTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	hook := NewWebhook(singleAttemptDoer(t), server.URL, 50*time.Millisecond)
	start := time.Now()
	err := hook.Notify(context.Background(), testEvent())

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

type fakeStream struct {
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	return redis.NewStringResult("1-0", f.err)
}

func TestRedisPublisherAddsToStream(t *testing.T) {
	stream := &fakeStream{}
	pub := NewRedisPublisher(stream, "live_odds.updates")

	require.NoError(t, pub.Notify(context.Background(), testEvent()))
	require.Len(t, stream.args, 1)

	args := stream.args[0]
	assert.Equal(t, "live_odds.updates", args.Stream)
	values := args.Values.(map[string]interface{})
	assert.Equal(t, "E1", values["match_id"])
	assert.Equal(t, "OPEN", values["status"])
	assert.Contains(t, values["data"], `"match_name":"A v B"`)
}

func TestRedisPublisherError(t *testing.T) {
	pub := NewRedisPublisher(&fakeStream{err: errors.New("connection refused")}, "s")
	assert.Error(t, pub.Notify(context.Background(), testEvent()))
}

type recordingNotifier struct {
	name  string
	err   error
	calls int
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(ctx context.Context, event *models.NormalizedEvent) error {
	r.calls++
	return r.err
}

func TestMultiContinuesPastFailures(t *testing.T) {
	failing := &recordingNotifier{name: "webhook", err: errors.New("boom")}
	ok := &recordingNotifier{name: "redis"}
	multi := Multi{failing, ok}

	err := multi.Notify(context.Background(), testEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook: boom")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
	assert.True(t, multi.Enabled())
}

func TestEmptyMulti(t *testing.T) {
	var multi Multi
	assert.False(t, multi.Enabled())
	assert.NoError(t, multi.Notify(context.Background(), testEvent()))
}
