package storage

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS metric_snapshots (
    id                        BIGSERIAL PRIMARY KEY,
    venue                     TEXT        NOT NULL,
    symbol                    TEXT        NOT NULL,
    observed_at               TIMESTAMPTZ NOT NULL,
    errored                   BOOLEAN     NOT NULL DEFAULT FALSE,
    error_detail              TEXT,
    last_price                NUMERIC,
    pct_change_1h             NUMERIC,
    pct_change_24h            NUMERIC,
    quote_volume_24h          NUMERIC,
    best_bid                  NUMERIC,
    best_ask                  NUMERIC,
    mid_price                 NUMERIC,
    spread_bps                NUMERIC,
    depth_bid_1pct            NUMERIC,
    depth_ask_1pct            NUMERIC,
    depth_total_1pct          NUMERIC,
    impact_small_slip_bps     NUMERIC,
    impact_small_insufficient BOOLEAN     NOT NULL DEFAULT FALSE,
    impact_small_shortfall    NUMERIC,
    impact_large_slip_bps     NUMERIC,
    impact_large_insufficient BOOLEAN     NOT NULL DEFAULT FALSE,
    impact_large_shortfall    NUMERIC,
    funding_rate              NUMERIC,
    open_interest             NUMERIC,
    realized_vol_24h          NUMERIC,
    high_low_range_24h        NUMERIC,
    candle_count              INTEGER     NOT NULL DEFAULT 0,
    created_at                TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_metric_snapshots_venue_observed
    ON metric_snapshots (venue, observed_at DESC);

CREATE TABLE IF NOT EXISTS baselines (
    venue               TEXT        PRIMARY KEY,
    symbol              TEXT        NOT NULL,
    computed_at         TIMESTAMPTZ NOT NULL,
    sample_count        INTEGER     NOT NULL,
    ready               BOOLEAN     NOT NULL,
    spread_bps_median   NUMERIC,
    depth_total_median  NUMERIC,
    impact_large_median NUMERIC,
    volume_24h_mean     NUMERIC
);

CREATE TABLE IF NOT EXISTS alerts (
    id             BIGSERIAL PRIMARY KEY,
    venue          TEXT        NOT NULL,
    symbol         TEXT        NOT NULL,
    alert_type     TEXT        NOT NULL,
    severity       TEXT        NOT NULL,
    message        TEXT        NOT NULL,
    threshold      NUMERIC,
    observed       NUMERIC,
    baseline_value NUMERIC,
    observed_at    TIMESTAMPTZ NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_alerts_dedupe
    ON alerts (venue, alert_type, created_at DESC);

CREATE TABLE IF NOT EXISTS confirmation_counters (
    venue      TEXT        NOT NULL,
    rule       TEXT        NOT NULL,
    count      INTEGER     NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (venue, rule)
);

CREATE TABLE IF NOT EXISTS runtime_state (
    key        TEXT        PRIMARY KEY,
    value      TEXT        NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates all tables and indexes if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, schemaSQL); execErr != nil {
		return fmt.Errorf("ensure schema: %w", execErr)
	}
	return nil
}
