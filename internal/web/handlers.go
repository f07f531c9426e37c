package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"liquidity-radar/internal/storage"
	"liquidity-radar/internal/version"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
	defaultAlertLimit   = 50
)

// SnapshotReader is the read surface the handlers need from snapshot storage.
type SnapshotReader interface {
	LatestSnapshots(ctx context.Context) ([]storage.SnapshotRecord, error)
	VenueHistory(ctx context.Context, venue string, limit int) ([]storage.SnapshotRecord, error)
}

// BaselineReader lists stored baselines.
type BaselineReader interface {
	ListBaselines(ctx context.Context) ([]storage.BaselineRecord, error)
}

// AlertReader lists persisted alerts.
type AlertReader interface {
	ListRecentAlerts(ctx context.Context, limit int) ([]storage.AlertRecord, error)
}

// StateReader reads runtime state.
type StateReader interface {
	RuntimeStates(ctx context.Context) (map[string]string, error)
}

// Handler implements the read API endpoints.
type Handler struct {
	snapshots SnapshotReader
	baselines BaselineReader
	alerts    AlertReader
	states    StateReader
	logger    zerolog.Logger
}

// NewHandler wires the read API over storage.
func NewHandler(snapshots SnapshotReader, baselines BaselineReader, alerts AlertReader, states StateReader, logger zerolog.Logger) *Handler {
	return &Handler{
		snapshots: snapshots,
		baselines: baselines,
		alerts:    alerts,
		states:    states,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	RuntimeState map[string]string `json:"runtime_state,omitempty"`
}

// Health reports liveness and the last cycle's runtime state.
func (h *Handler) Health(c *gin.Context) {
	resp := healthResponse{Status: "ok", Version: version.Version}
	if h.states != nil {
		states, err := h.states.RuntimeStates(c.Request.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to load runtime state")
		} else {
			resp.RuntimeState = states
			if states["last_cycle_degraded"] == "true" {
				resp.Status = "degraded"
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

type overviewVenue struct {
	Snapshot      snapshotView     `json:"snapshot"`
	Baseline      *baselineView    `json:"baseline,omitempty"`
	DepthRatio    *decimal.Decimal `json:"depth_ratio,omitempty"`
	SpreadRatio   *decimal.Decimal `json:"spread_ratio,omitempty"`
	BaselineReady bool             `json:"baseline_ready"`
}

// Overview returns the latest snapshot and baseline per venue, with the
// current-to-baseline ratios the detector works from.
func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	latest, err := h.snapshots.LatestSnapshots(ctx)
	if err != nil {
		h.fail(c, err, "list latest snapshots")
		return
	}
	baseRecs, err := h.baselines.ListBaselines(ctx)
	if err != nil {
		h.fail(c, err, "list baselines")
		return
	}
	baseByVenue := make(map[string]storage.BaselineRecord, len(baseRecs))
	for _, rec := range baseRecs {
		baseByVenue[rec.Venue] = rec
	}

	venues := make(map[string]overviewVenue, len(latest))
	for _, rec := range latest {
		entry := overviewVenue{Snapshot: newSnapshotView(rec)}
		if base, ok := baseByVenue[rec.Venue]; ok {
			view := newBaselineView(base)
			entry.Baseline = &view
			entry.BaselineReady = base.Ready
			entry.DepthRatio = ratio(rec.DepthTotal1Pct, base.DepthTotalMedian)
			entry.SpreadRatio = ratio(rec.SpreadBps, base.SpreadBpsMedian)
		}
		venues[rec.Venue] = entry
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_at": time.Now().UTC(),
		"venues":       venues,
	})
}

// History returns recent snapshots for one venue, newest first.
func (h *Handler) History(c *gin.Context) {
	venue := c.Query("venue")
	if venue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "venue query parameter is required"})
		return
	}
	limit := parseLimit(c.DefaultQuery("limit", ""), defaultHistoryLimit, maxHistoryLimit)

	records, err := h.snapshots.VenueHistory(c.Request.Context(), venue, limit)
	if err != nil {
		h.fail(c, err, "venue history")
		return
	}

	views := make([]snapshotView, 0, len(records))
	for _, rec := range records {
		views = append(views, newSnapshotView(rec))
	}
	c.JSON(http.StatusOK, gin.H{"venue": venue, "snapshots": views})
}

// Baselines lists the stored baseline per venue.
func (h *Handler) Baselines(c *gin.Context) {
	records, err := h.baselines.ListBaselines(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list baselines")
		return
	}

	views := make([]baselineView, 0, len(records))
	for _, rec := range records {
		views = append(views, newBaselineView(rec))
	}
	c.JSON(http.StatusOK, gin.H{"baselines": views})
}

// Alerts lists the most recent persisted alerts.
func (h *Handler) Alerts(c *gin.Context) {
	limit := parseLimit(c.DefaultQuery("limit", ""), defaultAlertLimit, maxHistoryLimit)

	records, err := h.alerts.ListRecentAlerts(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err, "list alerts")
		return
	}

	views := make([]alertView, 0, len(records))
	for _, rec := range records {
		views = append(views, newAlertView(rec))
	}
	c.JSON(http.StatusOK, gin.H{"alerts": views})
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	h.logger.Error().Err(err).Str("op", op).Msg("api request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func parseLimit(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func ratio(current, base *decimal.Decimal) *decimal.Decimal {
	if current == nil || base == nil || !base.IsPositive() {
		return nil
	}
	r := current.Div(*base)
	return &r
}
