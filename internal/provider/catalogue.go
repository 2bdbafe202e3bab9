package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/config"
	"github.com/yourusername/live-odds/internal/models"
)

const notAvailable = "N/A"

// listingItem is one market in the provider's cricket listing
type listingItem struct {
	Event struct {
		ID       models.FlexString `json:"id"`
		Name     *string           `json:"name"`
		OpenDate *string           `json:"openDate"`
	} `json:"event"`
	Catalogue struct {
		MarketID models.FlexString `json:"marketId"`
		Status   *string           `json:"status"`
		InPlay   bool              `json:"inPlay"`
		Runners  []struct {
			Name *string `json:"name"`
		} `json:"runners"`
	} `json:"catalogue"`
	Competition struct {
		Name *string `json:"name"`
	} `json:"competition"`
}

// CatalogueClient fetches the cricket match listing
type CatalogueClient struct {
	http      HTTPDoer
	listURL   string
	userAgent string
	log       *logrus.Entry
}

// NewCatalogueClient creates a listing client. doer should carry its own
// retry policy.
func NewCatalogueClient(doer HTTPDoer, cfg config.ProviderConfig, log *logrus.Logger) *CatalogueClient {
	ua := defaultUserAgents[0]
	if len(cfg.UserAgents) > 0 {
		ua = cfg.UserAgents[0]
	}
	return &CatalogueClient{
		http:      doer,
		listURL:   cfg.MatchListURL(),
		userAgent: ua,
		log:       log.WithField("component", "catalogue"),
	}
}

// FetchMatches returns the current listing sorted live first, then OPEN
// before SUSPENDED, then by start time.
func (c *CatalogueClient) FetchMatches(ctx context.Context) ([]models.MatchCatalogueEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var items []listingItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse match listing: %w", err)
	}

	matches := make([]models.MatchCatalogueEntry, 0, len(items))
	for _, item := range items {
		matches = append(matches, toCatalogueEntry(item))
	}
	SortCatalogue(matches)

	c.log.WithField("matches", len(matches)).Info("Fetched match listing")
	return matches, nil
}

func toCatalogueEntry(item listingItem) models.MatchCatalogueEntry {
	teams := make([]string, 0, len(item.Catalogue.Runners))
	for _, r := range item.Catalogue.Runners {
		teams = append(teams, orNA(r.Name))
	}

	return models.MatchCatalogueEntry{
		MatchName:   orNA(item.Event.Name),
		Teams:       strings.Join(teams, ", "),
		StartTime:   orNA(item.Event.OpenDate),
		Status:      orNA(item.Catalogue.Status),
		MarketID:    flexOrNA(item.Catalogue.MarketID),
		EventID:     flexOrNA(item.Event.ID),
		Competition: orNA(item.Competition.Name),
		Live:        item.Catalogue.InPlay,
	}
}

// SortCatalogue orders entries in place: live first, then OPEN, SUSPENDED and
// everything else, then ascending start time. Equal keys keep their order.
func SortCatalogue(matches []models.MatchCatalogueEntry) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Live != b.Live {
			return a.Live
		}
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		return startKey(a.StartTime) < startKey(b.StartTime)
	})
}

func statusRank(status string) int {
	switch status {
	case models.StatusOpen:
		return 0
	case models.StatusSuspended:
		return 1
	default:
		return 2
	}
}

func startKey(start string) string {
	if start == "" {
		return "Z"
	}
	return start
}

func orNA(s *string) string {
	if s == nil {
		return notAvailable
	}
	return *s
}

func flexOrNA(s models.FlexString) models.FlexString {
	if s == "" {
		return notAvailable
	}
	return s
}
