package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"liquidity-radar/internal/detector"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertSnapshotSQL = `INSERT INTO metric_snapshots (
        venue,
        symbol,
        observed_at,
        errored,
        error_detail,
        last_price,
        pct_change_1h,
        pct_change_24h,
        quote_volume_24h,
        best_bid,
        best_ask,
        mid_price,
        spread_bps,
        depth_bid_1pct,
        depth_ask_1pct,
        depth_total_1pct,
        impact_small_slip_bps,
        impact_small_insufficient,
        impact_small_shortfall,
        impact_large_slip_bps,
        impact_large_insufficient,
        impact_large_shortfall,
        funding_rate,
        open_interest,
        realized_vol_24h,
        high_low_range_24h,
        candle_count
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27
    );`

	snapshotColumns = `
        id,
        venue,
        symbol,
        observed_at,
        errored,
        error_detail,
        last_price,
        pct_change_1h,
        pct_change_24h,
        quote_volume_24h,
        best_bid,
        best_ask,
        mid_price,
        spread_bps,
        depth_bid_1pct,
        depth_ask_1pct,
        depth_total_1pct,
        impact_small_slip_bps,
        impact_small_insufficient,
        impact_small_shortfall,
        impact_large_slip_bps,
        impact_large_insufficient,
        impact_large_shortfall,
        funding_rate,
        open_interest,
        realized_vol_24h,
        high_low_range_24h,
        candle_count,
        created_at`

	snapshotsSinceSQL = `SELECT * FROM (
        SELECT ` + snapshotColumns + `
        FROM metric_snapshots
        WHERE venue = $1
          AND observed_at >= $2
        ORDER BY observed_at DESC
        LIMIT $3
    ) recent ORDER BY observed_at;`

	venueHistorySQL = `SELECT ` + snapshotColumns + `
    FROM metric_snapshots
    WHERE venue = $1
    ORDER BY observed_at DESC
    LIMIT $2;`

	latestSnapshotsSQL = `SELECT DISTINCT ON (venue) ` + snapshotColumns + `
    FROM metric_snapshots
    ORDER BY venue, observed_at DESC;`

	snapshotsBetweenSQL = `SELECT ` + snapshotColumns + `
    FROM metric_snapshots
    WHERE venue = $1
      AND observed_at >= $2
      AND observed_at < $3
    ORDER BY observed_at;`

	deleteSnapshotsBeforeSQL = `DELETE FROM metric_snapshots WHERE observed_at < $1;`

	upsertBaselineSQL = `INSERT INTO baselines (
        venue,
        symbol,
        computed_at,
        sample_count,
        ready,
        spread_bps_median,
        depth_total_median,
        impact_large_median,
        volume_24h_mean
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    )
    ON CONFLICT (venue) DO UPDATE
    SET
        symbol              = EXCLUDED.symbol,
        computed_at         = EXCLUDED.computed_at,
        sample_count        = EXCLUDED.sample_count,
        ready               = EXCLUDED.ready,
        spread_bps_median   = EXCLUDED.spread_bps_median,
        depth_total_median  = EXCLUDED.depth_total_median,
        impact_large_median = EXCLUDED.impact_large_median,
        volume_24h_mean     = EXCLUDED.volume_24h_mean;`

	baselineColumns = `
        venue,
        symbol,
        computed_at,
        sample_count,
        ready,
        spread_bps_median,
        depth_total_median,
        impact_large_median,
        volume_24h_mean`

	latestBaselineSQL = `SELECT ` + baselineColumns + `
    FROM baselines
    WHERE venue = $1;`

	listBaselinesSQL = `SELECT ` + baselineColumns + `
    FROM baselines
    ORDER BY venue;`

	insertAlertIfAbsentSQL = `INSERT INTO alerts (
        venue,
        symbol,
        alert_type,
        severity,
        message,
        threshold,
        observed,
        baseline_value,
        observed_at
    )
    SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9
    WHERE NOT EXISTS (
        SELECT 1 FROM alerts
        WHERE venue = $1
          AND alert_type = $3
          AND created_at > $10
    );`

	listRecentAlertsSQL = `SELECT
        id,
        venue,
        symbol,
        alert_type,
        severity,
        message,
        threshold,
        observed,
        baseline_value,
        observed_at,
        created_at
    FROM alerts
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteAlertsBeforeSQL = `DELETE FROM alerts WHERE created_at < $1;`

	confirmationCountsSQL = `SELECT rule, count
    FROM confirmation_counters
    WHERE venue = $1;`

	upsertConfirmationCountSQL = `INSERT INTO confirmation_counters (
        venue, rule, count, updated_at
    ) VALUES (
        $1,$2,$3,now()
    )
    ON CONFLICT (venue, rule) DO UPDATE
    SET count = EXCLUDED.count, updated_at = now();`

	upsertRuntimeStateSQL = `INSERT INTO runtime_state (
        key, value, updated_at
    ) VALUES (
        $1,$2,now()
    )
    ON CONFLICT (key) DO UPDATE
    SET value = EXCLUDED.value, updated_at = now();`

	runtimeStatesSQL = `SELECT key, value FROM runtime_state;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// SnapshotStore defines operations for metric snapshot persistence.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, rec SnapshotRecord) error
	SnapshotsSince(ctx context.Context, venue string, since time.Time, limit int) ([]SnapshotRecord, error)
	VenueHistory(ctx context.Context, venue string, limit int) ([]SnapshotRecord, error)
	LatestSnapshots(ctx context.Context) ([]SnapshotRecord, error)
	SnapshotsBetween(ctx context.Context, venue string, from, to time.Time) ([]SnapshotRecord, error)
}

// BaselineStore defines operations for baseline persistence.
type BaselineStore interface {
	UpsertBaseline(ctx context.Context, rec BaselineRecord) error
	LatestBaseline(ctx context.Context, venue string) (*BaselineRecord, error)
	ListBaselines(ctx context.Context) ([]BaselineRecord, error)
}

// AlertStore defines operations for alert auditing and deduplication.
type AlertStore interface {
	SaveAlertIfAbsent(ctx context.Context, alert detector.Alert, window time.Duration) (bool, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
	DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error
}

// CounterStore defines operations for confirmation counter persistence.
type CounterStore interface {
	ConfirmationCounts(ctx context.Context, venue string) (map[string]int, error)
	SaveConfirmationCounts(ctx context.Context, venue string, counts map[string]int) error
}

// StateStore defines operations for runtime state persistence.
type StateStore interface {
	UpsertRuntimeState(ctx context.Context, key, value string) error
	RuntimeStates(ctx context.Context) (map[string]string, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to snapshots, baselines, alerts and counters.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// SaveSnapshot persists one metric snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, rec SnapshotRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertSnapshotSQL,
		rec.Venue,
		rec.Symbol,
		rec.ObservedAt,
		rec.Errored,
		nullableString(rec.ErrorDetail),
		nullableDecimal(rec.LastPrice),
		nullableDecimal(rec.PctChange1h),
		nullableDecimal(rec.PctChange24h),
		nullableDecimal(rec.QuoteVolume24h),
		nullableDecimal(rec.BestBid),
		nullableDecimal(rec.BestAsk),
		nullableDecimal(rec.Mid),
		nullableDecimal(rec.SpreadBps),
		nullableDecimal(rec.DepthBid1Pct),
		nullableDecimal(rec.DepthAsk1Pct),
		nullableDecimal(rec.DepthTotal1Pct),
		nullableDecimal(rec.ImpactSmallSlipBps),
		rec.ImpactSmallInsufficient,
		nullableDecimal(rec.ImpactSmallShortfall),
		nullableDecimal(rec.ImpactLargeSlipBps),
		rec.ImpactLargeInsufficient,
		nullableDecimal(rec.ImpactLargeShortfall),
		nullableDecimal(rec.FundingRate),
		nullableDecimal(rec.OpenInterest),
		nullableDecimal(rec.RealizedVol24h),
		nullableDecimal(rec.HighLowRange24h),
		rec.CandleCount,
	)
	if execErr != nil {
		return fmt.Errorf("save snapshot: %w", execErr)
	}
	return nil
}

// SnapshotsSince lists snapshots for a venue since a point in time, oldest
// first, bounded to the most recent limit rows.
func (s *Store) SnapshotsSince(ctx context.Context, venue string, since time.Time, limit int) ([]SnapshotRecord, error) {
	return s.querySnapshots(ctx, snapshotsSinceSQL, venue, since, limit)
}

// VenueHistory lists the most recent snapshots for one venue, newest first.
func (s *Store) VenueHistory(ctx context.Context, venue string, limit int) ([]SnapshotRecord, error) {
	return s.querySnapshots(ctx, venueHistorySQL, venue, limit)
}

// LatestSnapshots returns the newest snapshot per venue.
func (s *Store) LatestSnapshots(ctx context.Context) ([]SnapshotRecord, error) {
	return s.querySnapshots(ctx, latestSnapshotsSQL)
}

// SnapshotsBetween lists snapshots for a venue within a time window, oldest first.
func (s *Store) SnapshotsBetween(ctx context.Context, venue string, from, to time.Time) ([]SnapshotRecord, error) {
	return s.querySnapshots(ctx, snapshotsBetweenSQL, venue, from, to)
}

// DeleteSnapshotsBefore deletes historical snapshots.
func (s *Store) DeleteSnapshotsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteSnapshotsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete snapshots before: %w", execErr)
	}
	return nil
}

func (s *Store) querySnapshots(ctx context.Context, query string, args ...any) ([]SnapshotRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("query snapshots: %w", queryErr)
	}
	defer rows.Close()

	records := make([]SnapshotRecord, 0)
	for rows.Next() {
		rec, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// UpsertBaseline persists or replaces the baseline for a venue.
func (s *Store) UpsertBaseline(ctx context.Context, rec BaselineRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertBaselineSQL,
		rec.Venue,
		rec.Symbol,
		rec.ComputedAt,
		rec.SampleCount,
		rec.Ready,
		nullableDecimal(rec.SpreadBpsMedian),
		nullableDecimal(rec.DepthTotalMedian),
		nullableDecimal(rec.ImpactLargeMedian),
		nullableDecimal(rec.Volume24hMean),
	)
	if execErr != nil {
		return fmt.Errorf("upsert baseline: %w", execErr)
	}
	return nil
}

// LatestBaseline returns the stored baseline for a venue, or nil when absent.
func (s *Store) LatestBaseline(ctx context.Context, venue string) (*BaselineRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	row := pool.QueryRow(ctx, latestBaselineSQL, venue)
	rec, scanErr := scanBaselineRow(row)
	if scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, scanErr
	}
	return &rec, nil
}

// ListBaselines lists all stored baselines ordered by venue.
func (s *Store) ListBaselines(ctx context.Context) ([]BaselineRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listBaselinesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list baselines: %w", queryErr)
	}
	defer rows.Close()

	records := make([]BaselineRecord, 0)
	for rows.Next() {
		rec, scanErr := scanBaselineRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// SaveAlertIfAbsent inserts the alert unless one of the same (venue, type)
// exists within the trailing window. The existence check and insert run as a
// single statement so concurrent writers cannot both pass the check.
func (s *Store) SaveAlertIfAbsent(ctx context.Context, alert detector.Alert, window time.Duration) (bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return false, err
	}

	cutoff := time.Now().UTC().Add(-window)
	cmdTag, execErr := pool.Exec(ctx, insertAlertIfAbsentSQL,
		alert.Venue,
		alert.Symbol,
		string(alert.Type),
		string(alert.Severity),
		alert.Message,
		nullableDecimal(alert.Threshold),
		nullableDecimal(alert.Observed),
		nullableDecimal(alert.BaselineValue),
		alert.ObservedAt,
		cutoff,
	)
	if execErr != nil {
		return false, fmt.Errorf("save alert: %w", execErr)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// ListRecentAlerts lists most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		var (
			rec       AlertRecord
			threshold sql.NullString
			observed  sql.NullString
			baseVal   sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Venue,
			&rec.Symbol,
			&rec.AlertType,
			&rec.Severity,
			&rec.Message,
			&threshold,
			&observed,
			&baseVal,
			&rec.ObservedAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		var convErr error
		if rec.Threshold, convErr = parseNullDecimal(threshold); convErr != nil {
			return nil, fmt.Errorf("parse alert threshold: %w", convErr)
		}
		if rec.Observed, convErr = parseNullDecimal(observed); convErr != nil {
			return nil, fmt.Errorf("parse alert observed: %w", convErr)
		}
		if rec.Baseline, convErr = parseNullDecimal(baseVal); convErr != nil {
			return nil, fmt.Errorf("parse alert baseline: %w", convErr)
		}

		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

// DeleteAlertsBefore deletes historical alerts.
func (s *Store) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete alerts before: %w", execErr)
	}
	return nil
}

// ConfirmationCounts loads the confirmation counters for a venue.
func (s *Store) ConfirmationCounts(ctx context.Context, venue string) (map[string]int, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, confirmationCountsSQL, venue)
	if queryErr != nil {
		return nil, fmt.Errorf("confirmation counts: %w", queryErr)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var rule string
		var count int
		if err := rows.Scan(&rule, &count); err != nil {
			return nil, err
		}
		counts[rule] = count
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return counts, nil
}

// SaveConfirmationCounts upserts the confirmation counters for a venue.
func (s *Store) SaveConfirmationCounts(ctx context.Context, venue string, counts map[string]int) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	for rule, count := range counts {
		if _, execErr := pool.Exec(ctx, upsertConfirmationCountSQL, venue, rule, count); execErr != nil {
			return fmt.Errorf("save confirmation count %s/%s: %w", venue, rule, execErr)
		}
	}
	return nil
}

// UpsertRuntimeState persists one runtime state key.
func (s *Store) UpsertRuntimeState(ctx context.Context, key, value string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, upsertRuntimeStateSQL, key, value); execErr != nil {
		return fmt.Errorf("upsert runtime state: %w", execErr)
	}
	return nil
}

// RuntimeStates loads all runtime state keys.
func (s *Store) RuntimeStates(ctx context.Context) (map[string]string, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, runtimeStatesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("runtime states: %w", queryErr)
	}
	defer rows.Close()

	states := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		states[key] = value
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return states, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (SnapshotRecord, error) {
	var (
		rec         SnapshotRecord
		errorDetail sql.NullString
		decimals    [19]sql.NullString
	)

	if err := row.Scan(
		&rec.ID,
		&rec.Venue,
		&rec.Symbol,
		&rec.ObservedAt,
		&rec.Errored,
		&errorDetail,
		&decimals[0],  // last_price
		&decimals[1],  // pct_change_1h
		&decimals[2],  // pct_change_24h
		&decimals[3],  // quote_volume_24h
		&decimals[4],  // best_bid
		&decimals[5],  // best_ask
		&decimals[6],  // mid_price
		&decimals[7],  // spread_bps
		&decimals[8],  // depth_bid_1pct
		&decimals[9],  // depth_ask_1pct
		&decimals[10], // depth_total_1pct
		&decimals[11], // impact_small_slip_bps
		&rec.ImpactSmallInsufficient,
		&decimals[12], // impact_small_shortfall
		&decimals[13], // impact_large_slip_bps
		&rec.ImpactLargeInsufficient,
		&decimals[14], // impact_large_shortfall
		&decimals[15], // funding_rate
		&decimals[16], // open_interest
		&decimals[17], // realized_vol_24h
		&decimals[18], // high_low_range_24h
		&rec.CandleCount,
		&rec.CreatedAt,
	); err != nil {
		return SnapshotRecord{}, err
	}

	if errorDetail.Valid {
		msg := errorDetail.String
		rec.ErrorDetail = &msg
	}

	targets := []**decimal.Decimal{
		&rec.LastPrice,
		&rec.PctChange1h,
		&rec.PctChange24h,
		&rec.QuoteVolume24h,
		&rec.BestBid,
		&rec.BestAsk,
		&rec.Mid,
		&rec.SpreadBps,
		&rec.DepthBid1Pct,
		&rec.DepthAsk1Pct,
		&rec.DepthTotal1Pct,
		&rec.ImpactSmallSlipBps,
		&rec.ImpactSmallShortfall,
		&rec.ImpactLargeSlipBps,
		&rec.ImpactLargeShortfall,
		&rec.FundingRate,
		&rec.OpenInterest,
		&rec.RealizedVol24h,
		&rec.HighLowRange24h,
	}
	for i, target := range targets {
		value, err := parseNullDecimal(decimals[i])
		if err != nil {
			return SnapshotRecord{}, fmt.Errorf("parse snapshot column %d: %w", i, err)
		}
		*target = value
	}

	return rec, nil
}

func scanBaselineRow(row rowScanner) (BaselineRecord, error) {
	var (
		rec    BaselineRecord
		spread sql.NullString
		depth  sql.NullString
		impact sql.NullString
		volume sql.NullString
	)

	if err := row.Scan(
		&rec.Venue,
		&rec.Symbol,
		&rec.ComputedAt,
		&rec.SampleCount,
		&rec.Ready,
		&spread,
		&depth,
		&impact,
		&volume,
	); err != nil {
		return BaselineRecord{}, err
	}

	var convErr error
	if rec.SpreadBpsMedian, convErr = parseNullDecimal(spread); convErr != nil {
		return BaselineRecord{}, fmt.Errorf("parse spread median: %w", convErr)
	}
	if rec.DepthTotalMedian, convErr = parseNullDecimal(depth); convErr != nil {
		return BaselineRecord{}, fmt.Errorf("parse depth median: %w", convErr)
	}
	if rec.ImpactLargeMedian, convErr = parseNullDecimal(impact); convErr != nil {
		return BaselineRecord{}, fmt.Errorf("parse impact median: %w", convErr)
	}
	if rec.Volume24hMean, convErr = parseNullDecimal(volume); convErr != nil {
		return BaselineRecord{}, fmt.Errorf("parse volume mean: %w", convErr)
	}

	return rec, nil
}

func parseNullDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func nullableDecimal(v *decimal.Decimal) interface{} {
	if v == nil {
		return nil
	}
	return v.String()
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
