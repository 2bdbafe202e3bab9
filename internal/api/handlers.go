package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/models"
)

// LiveReader serves the cached live result set
type LiveReader interface {
	Read(ctx context.Context) (models.LiveResultSet, error)
}

// MatchLister serves the match catalogue
type MatchLister interface {
	Matches(ctx context.Context) []models.MatchCatalogueEntry
}

// RootResponse is the body of GET /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// LiveOddsResponse is the body of GET /live/odds
type LiveOddsResponse struct {
	Count       int                  `json:"count"`
	LiveMatches models.LiveResultSet `json:"live_matches"`
}

// ErrorResponse is returned for failed requests
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	appName string
	version string
	live    LiveReader
	matches MatchLister
	logger  *logrus.Entry
}

// NewHandler creates a new handler
func NewHandler(appName, version string, live LiveReader, matches MatchLister, logger *logrus.Logger) *Handler {
	return &Handler{
		appName: appName,
		version: version,
		live:    live,
		matches: matches,
		logger:  logger.WithField("component", "api"),
	}
}

// Root reports that the service is up
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, RootResponse{
		Message: h.appName + " is running",
		Version: h.version,
	})
}

// LiveOdds returns the cached live result set, refreshing it when stale
func (h *Handler) LiveOdds(w http.ResponseWriter, r *http.Request) {
	results, err := h.live.Read(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read live odds")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = models.LiveResultSet{}
	}

	respondJSON(w, http.StatusOK, LiveOddsResponse{
		Count:       len(results),
		LiveMatches: results,
	})
}

// AllMatches returns the sorted match catalogue
func (h *Handler) AllMatches(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.matches.Matches(r.Context()))
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Detail: message})
}
