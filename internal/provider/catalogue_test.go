package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/live-odds/internal/config"
	"github.com/yourusername/live-odds/internal/datasource"
	"github.com/yourusername/live-odds/internal/models"
)

const sampleListing = `[
	{"event": {"id": "3", "name": "C v D", "openDate": "2025-01-03T10:00:00Z"},
	 "catalogue": {"marketId": "1.3", "status": "SUSPENDED", "inPlay": false, "runners": [{"name": "C"}, {"name": "D"}]},
	 "competition": {"name": "Cup"}},
	{"event": {"id": 1, "name": "A v B", "openDate": "2025-01-02T10:00:00Z"},
	 "catalogue": {"marketId": "1.1", "status": "OPEN", "inPlay": true, "runners": [{"name": "A"}, {"name": "B"}]},
	 "competition": {"name": "League"}},
	{"event": {"id": "2", "name": "E v F", "openDate": "2025-01-01T10:00:00Z"},
	 "catalogue": {"marketId": "1.2", "status": "OPEN", "inPlay": false, "runners": [{}]},
	 "competition": {}},
	{"event": {}, "catalogue": {}, "competition": {}}
]`

func newCatalogueTestClient(t *testing.T, handler http.Handler) *CatalogueClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.RateLimit = 0
	httpCfg.RetryWaitMin = 0
	httpCfg.RetryWaitMax = 0
	doer, err := datasource.NewRateLimitedHTTPClient(httpCfg, quietLogger())
	require.NoError(t, err)

	return NewCatalogueClient(doer, config.ProviderConfig{BaseURL: server.URL}, quietLogger())
}

func TestFetchMatchesMapsAndSorts(t *testing.T) {
	client := newCatalogueTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/delaymarkets/markets/eventtype/4", r.URL.Path)
		_, _ = w.Write([]byte(sampleListing))
	}))

	matches, err := client.FetchMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 4)

	assert.Equal(t, models.MatchCatalogueEntry{
		MatchName:   "A v B",
		Teams:       "A, B",
		StartTime:   "2025-01-02T10:00:00Z",
		Status:      "OPEN",
		MarketID:    "1.1",
		EventID:     "1",
		Competition: "League",
		Live:        true,
	}, matches[0])
	assert.Equal(t, "E v F", matches[1].MatchName)
	assert.Equal(t, "N/A", matches[1].Teams)
	assert.Equal(t, "N/A", matches[1].Competition)
	assert.Equal(t, "C v D", matches[2].MatchName)

	empty := matches[3]
	assert.Equal(t, "N/A", empty.MatchName)
	assert.Equal(t, "N/A", empty.Status)
	assert.Equal(t, models.FlexString("N/A"), empty.EventID)
	assert.Equal(t, "", empty.Teams)
	assert.False(t, empty.Live)
}

func TestFetchMatchesRetriesServerErrors(t *testing.T) {
	calls := 0
	client := newCatalogueTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	matches, err := client.FetchMatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 2, calls)
}

func TestFetchMatchesErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"not json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) }},
		{"object", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"a":1}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newCatalogueTestClient(t, tt.handler)
			_, err := client.FetchMatches(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestSortCatalogueIsStable(t *testing.T) {
	matches := []models.MatchCatalogueEntry{
		{MatchName: "closed", Status: "CLOSED", StartTime: "1"},
		{MatchName: "no-start", Status: "OPEN"},
		{MatchName: "open-late", Status: "OPEN", StartTime: "2025-02"},
		{MatchName: "open-early-1", Status: "OPEN", StartTime: "2025-01"},
		{MatchName: "open-early-2", Status: "OPEN", StartTime: "2025-01"},
		{MatchName: "live-suspended", Status: "SUSPENDED", Live: true},
		{MatchName: "live-open", Status: "OPEN", Live: true, StartTime: "2030"},
	}

	SortCatalogue(matches)

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.MatchName)
	}
	assert.Equal(t, []string{
		"live-open",
		"live-suspended",
		"open-early-1",
		"open-early-2",
		"open-late",
		"no-start",
		"closed",
	}, names)
}
