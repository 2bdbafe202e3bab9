// Package scheduler runs the periodic background refresh jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/models"
)

// LiveCache is the cache slot the live refresh job drives
type LiveCache interface {
	Invalidate()
	Read(ctx context.Context) (models.LiveResultSet, error)
}

// CatalogueRefresher rebuilds the stored match catalogue
type CatalogueRefresher interface {
	Refresh(ctx context.Context) ([]models.MatchCatalogueEntry, error)
}

// Scheduler manages the refresh jobs
type Scheduler struct {
	cron       *cron.Cron
	cronLogger cron.Logger
	logger     *logrus.Entry
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID

	jobCtx    context.Context
	cancelJob context.CancelFunc
}

// NewScheduler creates a new scheduler. Panicking jobs are recovered and a
// tick that fires while the previous run of the same job is still going is
// skipped. Each job is wrapped on its own so jobs never block each other.
func NewScheduler(logger *logrus.Logger) *Scheduler {
	entry := logger.WithField("component", "scheduler")
	cronLogger := cron.PrintfLogger(entry)

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
		),
		cronLogger: cronLogger,
		logger:     entry,
		jobIDs:     make([]cron.EntryID, 0),
		jobCtx:     ctx,
		cancelJob:  cancel,
	}
}

// ScheduleLiveRefresh invalidates the cache and re-reads it every interval
func (s *Scheduler) ScheduleLiveRefresh(liveCache LiveCache, interval time.Duration) error {
	return s.schedule("live refresh", interval, func() {
		s.refreshLive(s.jobCtx, liveCache)
	})
}

// ScheduleCatalogueRefresh rebuilds the match catalogue every interval
func (s *Scheduler) ScheduleCatalogueRefresh(refresher CatalogueRefresher, interval time.Duration) error {
	return s.schedule("catalogue refresh", interval, func() {
		s.refreshCatalogue(s.jobCtx, refresher)
	})
}

func (s *Scheduler) schedule(name string, interval time.Duration, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if interval < time.Second {
		interval = time.Second
	}

	// Recover sits inside the skip wrapper so a panic still releases the slot
	wrapped := cron.NewChain(
		cron.SkipIfStillRunning(s.cronLogger),
		cron.Recover(s.cronLogger),
	).Then(cron.FuncJob(job))

	entryID, err := s.cron.AddJob(fmt.Sprintf("@every %s", interval), wrapped)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":      name,
		"interval": interval.String(),
	}).Info("Scheduled job")

	return nil
}

func (s *Scheduler) refreshLive(ctx context.Context, liveCache LiveCache) {
	liveCache.Invalidate()
	results, err := liveCache.Read(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Live refresh failed")
		return
	}
	s.logger.WithField("live_matches", len(results)).Debug("Live refresh completed")
}

func (s *Scheduler) refreshCatalogue(ctx context.Context, refresher CatalogueRefresher) {
	entries, err := refresher.Refresh(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Catalogue refresh failed")
		return
	}
	s.logger.WithField("matches", len(entries)).Debug("Catalogue refresh completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop waits for running jobs to finish. If ctx ends first the running jobs
// are cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancelJob()
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
