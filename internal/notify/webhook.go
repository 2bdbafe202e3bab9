package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourusername/live-odds/internal/models"
)

// HTTPDoer executes a single outbound request
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Webhook POSTs each event as JSON to a fixed URL
type Webhook struct {
	http    HTTPDoer
	url     string
	timeout time.Duration
}

// NewWebhook creates a webhook notifier. doer must not retry.
func NewWebhook(doer HTTPDoer, url string, timeout time.Duration) *Webhook {
	return &Webhook{http: doer, url: url, timeout: timeout}
}

// Name implements Notifier
func (w *Webhook) Name() string {
	return "webhook"
}

// Notify implements Notifier
func (w *Webhook) Notify(ctx context.Context, event *models.NormalizedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("posting event %s: %w", event.MatchID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
