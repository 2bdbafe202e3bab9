package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/metrics"
	"github.com/yourusername/live-odds/internal/models"
)

// MatchLister fetches the provider's match listing
type MatchLister interface {
	FetchMatches(ctx context.Context) ([]models.MatchCatalogueEntry, error)
}

// CatalogueStore reads and replaces the persisted catalogue
type CatalogueStore interface {
	CatalogueReader
	WriteCatalogue(entries []models.MatchCatalogueEntry) error
}

// CatalogueService refreshes the match catalogue the orchestrator reads
type CatalogueService struct {
	lister MatchLister
	store  CatalogueStore
	log    *logrus.Entry
}

// NewCatalogueService creates a catalogue service
func NewCatalogueService(lister MatchLister, store CatalogueStore, log *logrus.Logger) *CatalogueService {
	return &CatalogueService{
		lister: lister,
		store:  store,
		log:    log.WithField("component", "catalogue"),
	}
}

// Refresh fetches the listing and replaces the stored catalogue
func (s *CatalogueService) Refresh(ctx context.Context) ([]models.MatchCatalogueEntry, error) {
	matches, err := s.lister.FetchMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}

	if err := s.store.WriteCatalogue(matches); err != nil {
		return nil, fmt.Errorf("failed to write catalogue: %w", err)
	}
	metrics.UpdateCatalogueSize(len(matches))

	live := 0
	for _, m := range matches {
		if m.Live {
			live++
		}
	}
	s.log.WithFields(logrus.Fields{"matches": len(matches), "live": live}).Info("Saved match catalogue")
	return matches, nil
}

// Matches refreshes the catalogue, falling back to the stored copy when the
// provider is unreachable. It never returns nil.
func (s *CatalogueService) Matches(ctx context.Context) []models.MatchCatalogueEntry {
	matches, err := s.Refresh(ctx)
	if err == nil {
		return matches
	}
	s.log.WithError(err).Error("Error fetching matches")

	stored, readErr := s.store.ReadCatalogue()
	if readErr != nil || stored == nil {
		return []models.MatchCatalogueEntry{}
	}
	return stored
}
