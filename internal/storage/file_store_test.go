package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/live-odds/internal/models"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "all_matches.json"), filepath.Join(dir, "nested", "live_matches.json")), dir
}

func TestCatalogueRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	entries := []models.MatchCatalogueEntry{
		{MatchName: "India v Australia", Teams: "India, Australia", EventID: "1", MarketID: "1.1", Status: "OPEN", Live: true},
	}

	require.NoError(t, store.WriteCatalogue(entries))

	got, err := store.ReadCatalogue()
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestReadCatalogueMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ReadCatalogue()
	assert.True(t, errors.Is(err, models.ErrCatalogueNotFound))
}

func TestReadCatalogueCorrupt(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "all_matches.json"), []byte("{not json"), 0o644))

	_, err := store.ReadCatalogue()
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrCatalogueNotFound))
}

func TestReadCatalogueNumericIDs(t *testing.T) {
	store, dir := newTestStore(t)
	body := `[{"match_name": "A v B", "event_id": 34567, "market_id": "1.23", "live": true}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "all_matches.json"), []byte(body), 0o644))

	got, err := store.ReadCatalogue()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.FlexString("34567"), got[0].EventID)
}

func TestWriteLiveResultsFormatting(t *testing.T) {
	store, dir := newTestStore(t)
	event := models.NewNormalizedEvent("E1", "Rajasthan <Royals> & Co", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, store.WriteLiveResults(models.LiveResultSet{event}))

	data, err := os.ReadFile(filepath.Join(dir, "nested", "live_matches.json"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n    {"))
	assert.Contains(t, text, "<Royals> & Co")

	got, err := store.ReadLiveResults()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "E1", got[0].MatchID)
}

func TestWriteLiveResultsReplaces(t *testing.T) {
	store, dir := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.WriteLiveResults(models.LiveResultSet{
		models.NewNormalizedEvent("E1", "one", now),
		models.NewNormalizedEvent("E2", "two", now),
	}))
	require.NoError(t, store.WriteLiveResults(nil))

	got, err := store.ReadLiveResults()
	require.NoError(t, err)
	assert.Empty(t, got)

	data, err := os.ReadFile(filepath.Join(dir, "nested", "live_matches.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "nested", ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestReadLiveResultsMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ReadLiveResults()
	assert.True(t, errors.Is(err, models.ErrSnapshotNotFound))
}
