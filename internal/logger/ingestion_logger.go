// Package logger provides ingestion-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// IngestionLogger provides structured logging for odds ingestion runs.
type IngestionLogger struct {
	*logrus.Entry
}

// NewIngestionLogger creates a new ingestion logger.
func NewIngestionLogger(baseLogger *logrus.Logger) *IngestionLogger {
	return &IngestionLogger{
		Entry: baseLogger.WithField("component", "ingestion"),
	}
}

// WithRun scopes the logger to a single orchestrator run.
func (il *IngestionLogger) WithRun(runID string) *IngestionLogger {
	return &IngestionLogger{Entry: il.WithField("run_id", runID)}
}

// LogRunStarted logs the start of a run.
func (il *IngestionLogger) LogRunStarted(catalogueSize, liveCount int) {
	il.WithFields(logrus.Fields{
		"catalogue_size": catalogueSize,
		"live_count":     liveCount,
	}).Info("Live odds run started")
}

// LogFetchAttempt logs a single provider request attempt.
func (il *IngestionLogger) LogFetchAttempt(eventID string, attempt, maxAttempts int) {
	il.WithFields(logrus.Fields{
		"event_id":     eventID,
		"attempt":      attempt,
		"max_attempts": maxAttempts,
	}).Debug("Fetching event odds")
}

// LogFetchRetry logs a retryable failure and the delay before the next attempt.
func (il *IngestionLogger) LogFetchRetry(eventID string, attempt int, statusCode int, delay time.Duration, reason string) {
	il.WithFields(logrus.Fields{
		"event_id":    eventID,
		"attempt":     attempt,
		"status_code": statusCode,
		"delay_ms":    delay.Milliseconds(),
		"reason":      reason,
	}).Warn("Retrying event fetch")
}

// LogFetchFailure logs an event that produced no normalized record.
func (il *IngestionLogger) LogFetchFailure(eventID, matchName string, err error) {
	il.WithFields(logrus.Fields{
		"event_id":   eventID,
		"match_name": matchName,
		"error":      err.Error(),
	}).Warn("Event fetch failed")
}

// LogEventNormalized logs a successfully normalized event.
func (il *IngestionLogger) LogEventNormalized(eventID string, markets int) {
	il.WithFields(logrus.Fields{
		"event_id": eventID,
		"markets":  markets,
	}).Info("Event normalized")
}

// LogPushFailure logs a downstream notification failure.
func (il *IngestionLogger) LogPushFailure(eventID string, err error) {
	il.WithFields(logrus.Fields{
		"event_id": eventID,
		"error":    err.Error(),
	}).Error("Downstream push failed")
}

// LogRunCompleted logs the outcome of a run.
func (il *IngestionLogger) LogRunCompleted(succeeded, failed int, duration time.Duration) {
	il.WithFields(logrus.Fields{
		"succeeded":   succeeded,
		"failed":      failed,
		"duration_ms": duration.Milliseconds(),
	}).Info("Live odds run completed")
}
