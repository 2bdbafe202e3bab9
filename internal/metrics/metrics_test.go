package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordFetchAttempt(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(FetchAttemptsTotal.WithLabelValues("not_found"))

	RecordFetchAttempt("not_found")

	assert.Equal(t, before+1, testutil.ToFloat64(FetchAttemptsTotal.WithLabelValues("not_found")))
}

func TestRecordRun(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name        string
		status      string
		liveMatches int
		wantGauge   float64
	}{
		{name: "completed sets gauge", status: "completed", liveMatches: 4, wantGauge: 4},
		{name: "cancelled keeps gauge", status: "cancelled", liveMatches: 0, wantGauge: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(RunsTotal.WithLabelValues(tt.status))
			RecordRun(tt.status, 1.5, tt.liveMatches)

			assert.Equal(t, before+1, testutil.ToFloat64(RunsTotal.WithLabelValues(tt.status)))
			assert.Equal(t, tt.wantGauge, testutil.ToFloat64(LiveMatches))
		})
	}
}

func TestRecordCacheRequest(t *testing.T) {
	InitRegistry()

	RecordCacheRequest("hit", 0.75)

	assert.Equal(t, 0.75, testutil.ToFloat64(CacheHitRatio))
}

func TestRecordPushFailure(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PushFailuresTotal.WithLabelValues("webhook"))

	assert.NotPanics(t, func() {
		RecordPushFailure("webhook")
	})
	assert.Equal(t, before+1, testutil.ToFloat64(PushFailuresTotal.WithLabelValues("webhook")))
}

func TestUpdateGauges(t *testing.T) {
	InitRegistry()

	UpdateCatalogueSize(12)
	UpdateStreamClients(3)

	assert.Equal(t, float64(12), testutil.ToFloat64(CatalogueSize))
	assert.Equal(t, float64(3), testutil.ToFloat64(StreamClients))
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordSnapshotWriteFailure()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "live_odds_snapshot_write_failures_total")
}
