package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-radar/internal/config"
	"liquidity-radar/internal/storage"
)

type fakeStore struct {
	latest    []storage.SnapshotRecord
	history   []storage.SnapshotRecord
	baselines []storage.BaselineRecord
	alerts    []storage.AlertRecord
	states    map[string]string
}

func (f *fakeStore) LatestSnapshots(context.Context) ([]storage.SnapshotRecord, error) {
	return f.latest, nil
}

func (f *fakeStore) VenueHistory(_ context.Context, venue string, limit int) ([]storage.SnapshotRecord, error) {
	out := make([]storage.SnapshotRecord, 0)
	for _, rec := range f.history {
		if rec.Venue == venue {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListBaselines(context.Context) ([]storage.BaselineRecord, error) {
	return f.baselines, nil
}

func (f *fakeStore) ListRecentAlerts(_ context.Context, limit int) ([]storage.AlertRecord, error) {
	if limit > 0 && len(f.alerts) > limit {
		return f.alerts[:limit], nil
	}
	return f.alerts, nil
}

func (f *fakeStore) RuntimeStates(context.Context) (map[string]string, error) {
	return f.states, nil
}

func newTestRouter(store *fakeStore) http.Handler {
	logger := zerolog.Nop()
	handler := NewHandler(store, store, store, store, logger)
	server := NewServer(config.WebConfig{Listen: ":0"}, handler, logger)
	return server.router()
}

func d(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return &parsed
}

func doGet(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthReportsDegradedCycle(t *testing.T) {
	store := &fakeStore{states: map[string]string{
		"last_cycle_degraded": "true",
		"last_cycle_ok":       "0",
	}}
	router := newTestRouter(store)

	rec, body := doGet(t, router, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestHealthOK(t *testing.T) {
	store := &fakeStore{states: map[string]string{"last_cycle_degraded": "false"}}
	router := newTestRouter(store)

	rec, body := doGet(t, router, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestOverviewIncludesBaselineRatios(t *testing.T) {
	observed := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		latest: []storage.SnapshotRecord{{
			Venue:          "alpha",
			Symbol:         "MONUSDT",
			ObservedAt:     observed,
			SpreadBps:      d(t, "10"),
			DepthTotal1Pct: d(t, "250000"),
		}},
		baselines: []storage.BaselineRecord{{
			Venue:            "alpha",
			Symbol:           "MONUSDT",
			Ready:            true,
			SampleCount:      20,
			SpreadBpsMedian:  d(t, "5"),
			DepthTotalMedian: d(t, "500000"),
		}},
	}
	router := newTestRouter(store)

	rec, body := doGet(t, router, "/api/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	venues, ok := body["venues"].(map[string]any)
	require.True(t, ok)
	alpha, ok := venues["alpha"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, true, alpha["baseline_ready"])
	assert.Equal(t, "0.5", alpha["depth_ratio"])
	assert.Equal(t, "2", alpha["spread_ratio"])
}

func TestHistoryRequiresVenue(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec, body := doGet(t, router, "/api/history")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "venue")
}

func TestHistoryReturnsVenueSnapshots(t *testing.T) {
	observed := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{history: []storage.SnapshotRecord{
		{Venue: "alpha", Symbol: "MONUSDT", ObservedAt: observed, LastPrice: d(t, "1.52")},
		{Venue: "beta", Symbol: "MONUSDT", ObservedAt: observed},
	}}
	router := newTestRouter(store)

	rec, body := doGet(t, router, "/api/history?venue=alpha")
	require.Equal(t, http.StatusOK, rec.Code)

	snapshots, ok := body["snapshots"].([]any)
	require.True(t, ok)
	require.Len(t, snapshots, 1)
	first := snapshots[0].(map[string]any)
	assert.Equal(t, "alpha", first["venue"])
	assert.Equal(t, "1.52", first["last_price"])
}

func TestAlertsAppliesLimit(t *testing.T) {
	store := &fakeStore{alerts: []storage.AlertRecord{
		{ID: 3, Venue: "alpha", AlertType: "depth_shrink", Severity: "critical"},
		{ID: 2, Venue: "alpha", AlertType: "spread_widen", Severity: "warn"},
		{ID: 1, Venue: "beta", AlertType: "volume_spike", Severity: "info"},
	}}
	router := newTestRouter(store)

	rec, body := doGet(t, router, "/api/alerts?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	alerts, ok := body["alerts"].([]any)
	require.True(t, ok)
	assert.Len(t, alerts, 2)
}
