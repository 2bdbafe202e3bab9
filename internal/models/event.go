package models

import (
	"encoding/json"
	"time"
)

// Category is the semantic bucket a market is filed under
type Category string

// Market categories
const (
	CategoryBookmaker Category = "bookmaker"
	CategoryFancy     Category = "fancy"
	CategorySessions  Category = "sessions"
	CategoryOther     Category = "other"
)

// MarketRecord is a catalogue market with its decoded odds attached
type MarketRecord struct {
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	InPlay          bool            `json:"in_play"`
	Runners         []RunnerOdds    `json:"runners"`
	MarketCondition json.RawMessage `json:"market_condition,omitempty"`
}

// NormalizedEvent is the per-match record produced by one fetch
type NormalizedEvent struct {
	MatchID     string                  `json:"match_id"`
	MatchName   string                  `json:"match_name"`
	Bookmaker   map[string]MarketRecord `json:"bookmaker"`
	Fancy       map[string]MarketRecord `json:"fancy"`
	Sessions    map[string]MarketRecord `json:"sessions"`
	Other       map[string]MarketRecord `json:"other,omitempty"`
	Result      map[string]any          `json:"result"`
	Odds        map[string]any          `json:"odds"`
	LastUpdated time.Time               `json:"last_updated"`

	Teams       string `json:"teams"`
	Competition string `json:"competition"`
	StartTime   string `json:"start_time"`
	Status      string `json:"status"`
}

// NewNormalizedEvent returns an event with every category map allocated
func NewNormalizedEvent(matchID, matchName string, updated time.Time) *NormalizedEvent {
	return &NormalizedEvent{
		MatchID:     matchID,
		MatchName:   matchName,
		Bookmaker:   make(map[string]MarketRecord),
		Fancy:       make(map[string]MarketRecord),
		Sessions:    make(map[string]MarketRecord),
		Result:      make(map[string]any),
		Odds:        make(map[string]any),
		LastUpdated: updated,
	}
}

// AddMarket files a market under its category
func (e *NormalizedEvent) AddMarket(category Category, marketID string, market MarketRecord) {
	switch category {
	case CategoryBookmaker:
		e.Bookmaker[marketID] = market
	case CategoryFancy:
		e.Fancy[marketID] = market
	case CategorySessions:
		e.Sessions[marketID] = market
	default:
		if e.Other == nil {
			e.Other = make(map[string]MarketRecord)
		}
		e.Other[marketID] = market
	}
}

// MarketCount returns the number of markets across all categories
func (e *NormalizedEvent) MarketCount() int {
	return len(e.Bookmaker) + len(e.Fancy) + len(e.Sessions) + len(e.Other)
}

// MergeCatalogue copies listing metadata onto the event. An empty catalogue
// name keeps the fetched one.
func (e *NormalizedEvent) MergeCatalogue(entry MatchCatalogueEntry) {
	if entry.MatchName != "" {
		e.MatchName = entry.MatchName
	}
	e.Teams = entry.Teams
	e.Competition = entry.Competition
	e.StartTime = entry.StartTime
	e.Status = entry.Status
}

// LiveResultSet is the ordered output of one orchestrator run
type LiveResultSet []*NormalizedEvent
