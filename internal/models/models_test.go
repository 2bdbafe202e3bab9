package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexString
	}{
		{"quoted", `"1.234567"`, "1.234567"},
		{"integer", `33012345`, "33012345"},
		{"float", `1.5`, "1.5"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexStringRejectsObjects(t *testing.T) {
	var got FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &got))
}

func TestCatalogueEntryMixedIDs(t *testing.T) {
	raw := `{"match_name":"India v Australia","event_id":33012345,"market_id":"1.2345","live":true}`

	var entry MatchCatalogueEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, "33012345", entry.EventID.String())
	assert.Equal(t, "1.2345", entry.MarketID.String())
	assert.True(t, entry.Live)
}

func TestAddMarketFilesByCategory(t *testing.T) {
	event := NewNormalizedEvent("E1", "A v B", time.Now())

	event.AddMarket(CategoryBookmaker, "m1", MarketRecord{Name: "Match Odds"})
	event.AddMarket(CategoryFancy, "m2", MarketRecord{Name: "Total Runs"})
	event.AddMarket(CategorySessions, "m3", MarketRecord{Name: "Session Over 5"})
	event.AddMarket(CategoryOther, "m4", MarketRecord{Name: "Toss"})

	assert.Contains(t, event.Bookmaker, "m1")
	assert.Contains(t, event.Fancy, "m2")
	assert.Contains(t, event.Sessions, "m3")
	assert.Contains(t, event.Other, "m4")
	assert.Equal(t, 4, event.MarketCount())
}

func TestNormalizedEventJSONShape(t *testing.T) {
	event := NewNormalizedEvent("E1", "A v B", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	event.MergeCatalogue(MatchCatalogueEntry{
		MatchName:   "India v Australia",
		Teams:       "India, Australia",
		Competition: "Test Series",
		StartTime:   "2026-03-01T09:30:00.000Z",
		Status:      StatusOpen,
	})

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var shape map[string]any
	require.NoError(t, json.Unmarshal(data, &shape))

	for _, key := range []string{"match_id", "match_name", "bookmaker", "fancy", "sessions", "result", "odds", "last_updated", "teams", "competition", "start_time", "status"} {
		assert.Contains(t, shape, key)
	}
	assert.NotContains(t, shape, "other")
	assert.Equal(t, "India v Australia", shape["match_name"])
	assert.Equal(t, map[string]any{}, shape["bookmaker"])
}

func TestMergeCatalogueKeepsFetchedName(t *testing.T) {
	event := NewNormalizedEvent("E2", "Provider v Name", time.Now())
	event.MergeCatalogue(MatchCatalogueEntry{Teams: "A, B", Status: StatusOpen})

	assert.Equal(t, "Provider v Name", event.MatchName)
	assert.Equal(t, "A, B", event.Teams)

	event.MergeCatalogue(MatchCatalogueEntry{MatchName: "A v B"})
	assert.Equal(t, "A v B", event.MatchName)
}

func TestRunnerOddsNullPrice(t *testing.T) {
	price := 1.85
	runner := RunnerOdds{ID: "101", Back: PriceSize{Price: &price, Volume: 500}}

	data, err := json.Marshal(runner)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"101","status":"","name":"","back":{"price":1.85,"volume":500,"exposed":0},"lay":{"price":null,"volume":0,"exposed":0}}`, string(data))
	assert.Equal(t, 0.0, runner.GetSpread())
	assert.False(t, runner.Lay.HasPrice())
}
