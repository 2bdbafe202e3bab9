// Package service drives live odds ingestion runs and catalogue refreshes.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/live-odds/internal/config"
	"github.com/yourusername/live-odds/internal/logger"
	"github.com/yourusername/live-odds/internal/metrics"
	"github.com/yourusername/live-odds/internal/models"
	"github.com/yourusername/live-odds/internal/notify"
	"github.com/yourusername/live-odds/internal/tracing"
)

// CatalogueReader loads the current match catalogue
type CatalogueReader interface {
	ReadCatalogue() ([]models.MatchCatalogueEntry, error)
}

// SnapshotWriter persists a completed result set
type SnapshotWriter interface {
	WriteLiveResults(results models.LiveResultSet) error
}

// EventFetcher fetches and normalizes one event. A non-nil error means no record.
type EventFetcher interface {
	FetchEvent(ctx context.Context, eventID string) (*models.NormalizedEvent, error)
}

// Broadcaster receives every completed result set
type Broadcaster interface {
	Broadcast(results models.LiveResultSet)
}

// OrchestratorConfig controls run pacing
type OrchestratorConfig struct {
	Concurrency int
	PacingMin   time.Duration
	PacingMax   time.Duration
}

// OrchestratorConfigFrom maps ingestion configuration onto an OrchestratorConfig
func OrchestratorConfigFrom(cfg config.IngestionConfig) OrchestratorConfig {
	return OrchestratorConfig{
		Concurrency: cfg.Concurrency,
		PacingMin:   time.Duration(cfg.PacingMinMs) * time.Millisecond,
		PacingMax:   time.Duration(cfg.PacingMaxMs) * time.Millisecond,
	}
}

// Orchestrator runs one full scan of live matches per call to Run
type Orchestrator struct {
	catalogue   CatalogueReader
	fetcher     EventFetcher
	snapshot    SnapshotWriter
	notifier    notify.Notifier
	broadcaster Broadcaster
	cfg         OrchestratorConfig
	log         *logger.IngestionLogger

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(limit time.Duration) time.Duration

	mu           sync.RWMutex
	lastRunStats *RunStats
}

// OrchestratorOption customizes an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithNotifier sets the downstream push target
func WithNotifier(n notify.Notifier) OrchestratorOption {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithBroadcaster sets the live stream target
func WithBroadcaster(b Broadcaster) OrchestratorOption {
	return func(o *Orchestrator) { o.broadcaster = b }
}

// WithPacing replaces the pacing sleep and its random source
func WithPacing(sleep func(ctx context.Context, d time.Duration) error, jitter func(limit time.Duration) time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
		if jitter != nil {
			o.jitter = jitter
		}
	}
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(
	catalogue CatalogueReader,
	fetcher EventFetcher,
	snapshot SnapshotWriter,
	cfg OrchestratorConfig,
	log *logrus.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PacingMax < cfg.PacingMin {
		cfg.PacingMax = cfg.PacingMin
	}

	o := &Orchestrator{
		catalogue: catalogue,
		fetcher:   fetcher,
		snapshot:  snapshot,
		cfg:       cfg,
		log:       logger.NewIngestionLogger(log),
		sleep:     sleepContext,
		jitter:    randomDuration,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run reads the catalogue, fetches every live match and writes the result
// set. Per-match failures are logged and skipped. The only error returned is
// context cancellation, in which case nothing is written.
func (o *Orchestrator) Run(ctx context.Context) (models.LiveResultSet, error) {
	stats := newRunRecorder(uuid.New().String())
	log := o.log.WithRun(stats.stats.RunID)

	ctx, span := tracing.StartSegment(ctx, "live_odds.run")
	tracing.AddAnnotation(ctx, "run_id", stats.stats.RunID)

	entries, err := o.catalogue.ReadCatalogue()
	catalogueOK := err == nil
	if !catalogueOK {
		log.WithError(err).Warn("Catalogue unavailable, running with no matches")
		entries = nil
	}

	live := make([]models.MatchCatalogueEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Live {
			live = append(live, entry)
		}
	}
	stats.setCatalogue(len(entries), len(live))
	log.LogRunStarted(len(entries), len(live))

	slots := make([]*models.NormalizedEvent, len(live))
	g := new(errgroup.Group)
	g.SetLimit(o.cfg.Concurrency)

	// pacing runs between dispatches
	var dispatchErr error
	for i, entry := range live {
		if i > 0 {
			if dispatchErr = o.sleep(ctx, o.pacingDelay()); dispatchErr != nil {
				break
			}
		}
		i, entry := i, entry
		g.Go(func() error {
			event, err := o.processMatch(ctx, log, stats, entry)
			if err != nil {
				return err
			}
			slots[i] = event
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = dispatchErr
	}
	if err != nil {
		summary := stats.finish()
		metrics.RecordRun("cancelled", summary.Duration.Seconds(), 0)
		log.WithError(err).Warn("Live odds run aborted")
		span.End(err)
		return nil, err
	}

	results := make(models.LiveResultSet, 0, len(slots))
	for _, event := range slots {
		if event != nil {
			results = append(results, event)
		}
	}

	// an unreadable catalogue keeps the previous snapshot and subscribers' view
	if catalogueOK {
		if err := o.snapshot.WriteLiveResults(results); err != nil {
			stats.recordSnapshotError(err)
			metrics.RecordSnapshotWriteFailure()
			log.WithError(err).Error("Failed to write live results snapshot")
		}
		if o.broadcaster != nil {
			o.broadcaster.Broadcast(results)
		}
	}

	summary := stats.finish()
	metrics.RecordRun("completed", summary.Duration.Seconds(), len(results))
	log.LogRunCompleted(len(results), len(live)-len(results), summary.Duration)
	tracing.AddAnnotation(ctx, "live_matches", len(results))
	tracing.AddMetadata(ctx, "failed", summary.Failed)
	span.End(nil)

	o.mu.Lock()
	o.lastRunStats = &summary
	o.mu.Unlock()

	return results, nil
}

// processMatch fetches one match. Only context cancellation is returned as an
// error; every other failure is recorded and yields a nil event.
func (o *Orchestrator) processMatch(ctx context.Context, log *logger.IngestionLogger, stats *runRecorder, entry models.MatchCatalogueEntry) (event *models.NormalizedEvent, err error) {
	eventID := entry.EventID.String()
	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("panic while processing match: %v", r)
			stats.recordFailure(eventID, entry.MatchName, panicErr)
			metrics.RecordEventFailed()
			log.LogFetchFailure(eventID, entry.MatchName, panicErr)
			event, err = nil, nil
		}
	}()

	log.WithFields(logrus.Fields{"event_id": eventID, "match_name": entry.MatchName}).Info("Processing live match")

	fetchCtx, span := tracing.StartSubsegment(ctx, "fetch_event")
	tracing.AddAnnotation(fetchCtx, "event_id", eventID)
	event, err = o.fetcher.FetchEvent(fetchCtx, eventID)
	span.End(err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stats.recordFailure(eventID, entry.MatchName, err)
		metrics.RecordEventFailed()
		log.LogFetchFailure(eventID, entry.MatchName, err)
		return nil, nil
	}
	if event == nil {
		missing := errors.New("no data returned")
		stats.recordFailure(eventID, entry.MatchName, missing)
		metrics.RecordEventFailed()
		log.LogFetchFailure(eventID, entry.MatchName, missing)
		return nil, nil
	}

	event.MergeCatalogue(entry)
	stats.recordSuccess()

	if o.notifier != nil {
		if err := o.notifier.Notify(ctx, event); err != nil {
			stats.recordPushFailure()
			log.LogPushFailure(eventID, err)
		}
	}

	return event, nil
}

// LastRunStats returns statistics of the most recent completed run
func (o *Orchestrator) LastRunStats() (RunStats, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.lastRunStats == nil {
		return RunStats{}, false
	}
	return *o.lastRunStats, true
}

func (o *Orchestrator) pacingDelay() time.Duration {
	return o.cfg.PacingMin + o.jitter(o.cfg.PacingMax-o.cfg.PacingMin)
}

func randomDuration(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(limit)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
