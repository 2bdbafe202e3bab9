package service

import (
	"fmt"
	"sync"
	"time"
)

// FailedMatch records a live match that produced no normalized record
type FailedMatch struct {
	EventID   string `json:"event_id"`
	MatchName string `json:"match_name"`
	Reason    string `json:"reason"`
}

// RunStats summarizes one orchestrator run
type RunStats struct {
	RunID         string        `json:"run_id"`
	StartTime     time.Time     `json:"start_time"`
	Duration      time.Duration `json:"duration"`
	CatalogueSize int           `json:"catalogue_size"`
	LiveMatches   int           `json:"live_matches"`
	Succeeded     int           `json:"succeeded"`
	PushFailures  int           `json:"push_failures"`
	Failed        []FailedMatch `json:"failed"`
	SnapshotError string        `json:"snapshot_error,omitempty"`
}

// SuccessRate returns the percentage of live matches that produced a record
func (s RunStats) SuccessRate() float64 {
	if s.LiveMatches == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.LiveMatches) * 100
}

// String returns a formatted string representation of the stats
func (s RunStats) String() string {
	return fmt.Sprintf(
		"RunStats{Run=%s, Catalogue=%d, Live=%d, Succeeded=%d (%.1f%%), Failed=%d, PushFailures=%d, Duration=%v}",
		s.RunID,
		s.CatalogueSize,
		s.LiveMatches,
		s.Succeeded,
		s.SuccessRate(),
		len(s.Failed),
		s.PushFailures,
		s.Duration,
	)
}

// runRecorder collects RunStats from concurrent match workers
type runRecorder struct {
	mu    sync.Mutex
	stats RunStats
}

func newRunRecorder(runID string) *runRecorder {
	return &runRecorder{stats: RunStats{
		RunID:     runID,
		StartTime: time.Now(),
		Failed:    make([]FailedMatch, 0),
	}}
}

func (r *runRecorder) setCatalogue(size, live int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.CatalogueSize = size
	r.stats.LiveMatches = live
}

func (r *runRecorder) recordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Succeeded++
}

func (r *runRecorder) recordFailure(eventID, matchName string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Failed = append(r.stats.Failed, FailedMatch{EventID: eventID, MatchName: matchName, Reason: err.Error()})
}

func (r *runRecorder) recordPushFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.PushFailures++
}

func (r *runRecorder) recordSnapshotError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.SnapshotError = err.Error()
}

// finish stamps the duration and returns a copy of the stats
func (r *runRecorder) finish() RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Duration = time.Since(r.stats.StartTime)
	out := r.stats
	out.Failed = append([]FailedMatch(nil), r.stats.Failed...)
	return out
}
