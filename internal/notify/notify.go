// Package notify pushes normalized events to optional downstream targets.
// Delivery is best effort: one attempt, no retry.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/live-odds/internal/metrics"
	"github.com/yourusername/live-odds/internal/models"
)

// Notifier delivers one normalized event downstream
type Notifier interface {
	Name() string
	Notify(ctx context.Context, event *models.NormalizedEvent) error
}

// Multi fans an event out to every target. A failing target does not stop
// the others.
type Multi []Notifier

// Name implements Notifier
func (m Multi) Name() string {
	return "multi"
}

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, event *models.NormalizedEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			metrics.RecordPushFailure(n.Name())
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Enabled reports whether any target is configured
func (m Multi) Enabled() bool {
	return len(m) > 0
}
