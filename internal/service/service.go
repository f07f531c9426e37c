// Package service orchestrates the collection cycle: fetch every venue in
// parallel, derive metrics, persist, detect anomalies against the previous
// cycle's baseline, and only then roll the baseline forward.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"liquidity-radar/internal/alerting"
	"liquidity-radar/internal/baseline"
	"liquidity-radar/internal/config"
	"liquidity-radar/internal/detector"
	"liquidity-radar/internal/fetcher"
	"liquidity-radar/internal/market"
	"liquidity-radar/internal/metrics"
	"liquidity-radar/internal/scheduler"
	"liquidity-radar/internal/storage"
)

// Store is the persistence surface the cycle needs.
type Store interface {
	storage.SnapshotStore
	storage.BaselineStore
	storage.CounterStore
	storage.StateStore
}

// Service orchestrates sampling, persistence, detection, and alerting.
type Service struct {
	scheduler *scheduler.Scheduler
	fetchers  map[string]fetcher.VenueFetcher
	calc      metrics.Calculator
	tracker   baseline.Tracker
	detector  *detector.Detector
	deduper   *alerting.Deduper
	store     Store
	logger    zerolog.Logger

	symbol       string
	venueTimeout time.Duration
	baselineAge  time.Duration
	historyLimit int
	locker       storage.AdvisoryLocker
	lockKey      int64
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, fetchers map[string]fetcher.VenueFetcher, store Store, deduper *alerting.Deduper, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	venueTimeout := cfg.Monitor.VenueTimeout
	if venueTimeout <= 0 {
		venueTimeout = time.Minute
	}

	return &Service{
		scheduler:    sched,
		fetchers:     fetchers,
		calc:         CalculatorFromConfig(cfg.Monitor),
		tracker:      TrackerFromConfig(cfg.Monitor),
		detector:     detector.New(ThresholdsFromConfig(cfg.Monitor.Thresholds), logger),
		deduper:      deduper,
		store:        store,
		logger:       logger.With().Str("component", "service").Logger(),
		symbol:       cfg.Monitor.TokenSymbol,
		venueTimeout: venueTimeout,
		baselineAge:  time.Duration(cfg.Monitor.BaselineDays) * 24 * time.Hour,
		historyLimit: cfg.Monitor.BaselineMaxSamples,
		locker:       locker,
		lockKey:      cfg.Scheduler.AdvisoryLockKey,
	}
}

// CalculatorFromConfig builds the metric calculator from monitor settings.
func CalculatorFromConfig(cfg config.MonitorConfig) metrics.Calculator {
	calc := metrics.NewCalculator()
	if cfg.DepthBandPct > 0 {
		calc.DepthBandPct = decimal.NewFromFloat(cfg.DepthBandPct)
	}
	if cfg.NotionalSmall > 0 {
		calc.NotionalSmall = decimal.NewFromFloat(cfg.NotionalSmall)
	}
	if cfg.NotionalLarge > 0 {
		calc.NotionalLarge = decimal.NewFromFloat(cfg.NotionalLarge)
	}
	return calc
}

// TrackerFromConfig builds the baseline tracker from monitor settings.
func TrackerFromConfig(cfg config.MonitorConfig) baseline.Tracker {
	tracker := baseline.NewTracker()
	if cfg.BaselineMinSamples > 0 {
		tracker.MinSamples = cfg.BaselineMinSamples
	}
	if cfg.BaselineMaxSamples > 0 {
		tracker.MaxSamples = cfg.BaselineMaxSamples
	}
	return tracker
}

// ThresholdsFromConfig builds the detector rule table from monitor settings.
func ThresholdsFromConfig(cfg config.ThresholdsConfig) detector.Thresholds {
	t := detector.DefaultThresholds()
	if cfg.DepthDropRatio > 0 {
		t.DepthDropRatio = decimal.NewFromFloat(cfg.DepthDropRatio)
	}
	if cfg.DepthCriticalRatio > 0 {
		t.DepthCriticalRatio = decimal.NewFromFloat(cfg.DepthCriticalRatio)
	}
	if cfg.SpreadRatio > 0 {
		t.SpreadRatio = decimal.NewFromFloat(cfg.SpreadRatio)
	}
	if cfg.ImpactRatio > 0 {
		t.ImpactRatio = decimal.NewFromFloat(cfg.ImpactRatio)
	}
	if cfg.VolumeSpikeRatio > 0 {
		t.VolumeSpikeRatio = decimal.NewFromFloat(cfg.VolumeSpikeRatio)
	}
	if cfg.LiquidityGapPct > 0 {
		t.LiquidityGapPct = decimal.NewFromFloat(cfg.LiquidityGapPct)
	}
	if cfg.ConfirmCycles > 0 {
		t.ConfirmCycles = cfg.ConfirmCycles
	}
	return t
}

// Run begins the aligned sampling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessCycle)
}

// ProcessCycle executes one collection cycle for every configured venue. A
// cancelled run context stops the loop between cycles; a cycle already in
// flight runs to completion so its snapshots and counters stay consistent.
func (s *Service) ProcessCycle(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip cycle because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeCycle(context.WithoutCancel(ctx), bucket)
}

type venueResult struct {
	venue   string
	errored bool
	err     error
	alerts  int
}

func (s *Service) executeCycle(ctx context.Context, bucket time.Time) error {
	cyclesTotal.Inc()
	started := time.Now()
	defer func() { cycleDuration.Observe(time.Since(started).Seconds()) }()

	venues := s.venueNames()
	if len(venues) == 0 {
		return fmt.Errorf("no venues configured")
	}

	results := make([]venueResult, len(venues))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range venues {
		i, name := i, name
		g.Go(func() error {
			// venue failures are recorded, never propagated, so one venue
			// cannot cancel its siblings mid-cycle
			results[i] = s.processVenue(gctx, name, bucket)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var okCount, erroredCount, failedCount int
	for _, res := range results {
		switch {
		case res.err != nil:
			failedCount++
			s.logger.Error().Err(res.err).Str("venue", res.venue).Msg("venue processing failed")
		case res.errored:
			erroredCount++
		default:
			okCount++
		}
	}

	degraded := okCount == 0
	s.saveRuntimeState(ctx, bucket, okCount, erroredCount+failedCount, degraded)

	s.logger.Info().
		Time("bucket", bucket).
		Int("venues_ok", okCount).
		Int("venues_errored", erroredCount).
		Int("venues_failed", failedCount).
		Bool("degraded", degraded).
		Msg("cycle complete")
	return nil
}

// processVenue runs the full pipeline for one venue: fetch, derive, persist,
// detect against the previous baseline, emit alerts, then roll the baseline.
func (s *Service) processVenue(ctx context.Context, name string, bucket time.Time) venueResult {
	res := venueResult{venue: name}

	sample := s.fetchSample(ctx, name, bucket)
	snap := s.calc.Compute(sample)
	res.errored = snap.Errored
	if snap.Errored {
		venueErrorsTotal.WithLabelValues(name).Inc()
	}

	// the errored snapshot is persisted too: outage history is part of the
	// venue's record
	if err := s.store.SaveSnapshot(ctx, storage.RecordFromSnapshot(snap)); err != nil {
		res.err = fmt.Errorf("save snapshot: %w", err)
		return res
	}
	snapshotsPersistedTotal.WithLabelValues(name).Inc()

	base, err := s.previousBaseline(ctx, name)
	if err != nil {
		res.err = err
		return res
	}

	counts, err := s.store.ConfirmationCounts(ctx, name)
	if err != nil {
		res.err = fmt.Errorf("load confirmation counts: %w", err)
		return res
	}
	state := make(detector.ConfirmationState, len(counts))
	for rule, count := range counts {
		state[detector.AlertType(rule)] = count
	}

	alerts := s.detector.Evaluate(snap, base, state)

	persistState := make(map[string]int, len(state))
	for rule, count := range state {
		persistState[string(rule)] = count
	}
	if err := s.store.SaveConfirmationCounts(ctx, name, persistState); err != nil {
		res.err = fmt.Errorf("save confirmation counts: %w", err)
		return res
	}

	for _, alert := range alerts {
		persisted, err := s.deduper.Process(ctx, alert)
		if err != nil {
			s.logger.Error().Err(err).
				Str("venue", name).
				Str("type", string(alert.Type)).
				Msg("failed to process alert")
			continue
		}
		if persisted {
			res.alerts++
			alertsEmittedTotal.WithLabelValues(string(alert.Type), string(alert.Severity)).Inc()
		}
	}

	if err := s.rollBaseline(ctx, name, snap.Symbol, bucket); err != nil {
		res.err = err
		return res
	}

	return res
}

// fetchSample retrieves the venue sample under the per-venue timeout. Fetch
// failures degrade into an errored sample; the cycle itself never retries.
func (s *Service) fetchSample(ctx context.Context, name string, bucket time.Time) market.RawVenueSample {
	fetchCtx, cancel := context.WithTimeout(ctx, s.venueTimeout)
	defer cancel()

	sample, err := s.fetchers[name].Fetch(fetchCtx)
	if err != nil {
		var fetchErr *market.FetchError
		if !errors.As(err, &fetchErr) {
			code := market.ErrCodeNetwork
			if errors.Is(err, context.DeadlineExceeded) {
				code = market.ErrCodeTimeout
			}
			fetchErr = market.NewFetchError(code, "%s", err.Error())
		}
		s.logger.Warn().
			Str("venue", name).
			Str("code", fetchErr.Code).
			Str("detail", fetchErr.Detail).
			Msg("venue fetch failed")
		return market.RawVenueSample{
			Venue:      name,
			Symbol:     s.symbol,
			ObservedAt: bucket,
			Err:        fetchErr,
		}
	}

	if sample.ObservedAt.IsZero() {
		sample.ObservedAt = bucket
	}
	return sample
}

// previousBaseline loads the baseline persisted by an earlier cycle. A venue
// with no stored baseline yet evaluates against a not-ready zero value, which
// skips detection entirely.
func (s *Service) previousBaseline(ctx context.Context, venue string) (baseline.Baseline, error) {
	rec, err := s.store.LatestBaseline(ctx, venue)
	if err != nil {
		return baseline.Baseline{}, fmt.Errorf("load baseline: %w", err)
	}
	if rec == nil {
		return baseline.Baseline{Venue: venue}, nil
	}
	return rec.Baseline(), nil
}

// rollBaseline recomputes and upserts the venue baseline from the trailing
// snapshot window, current cycle included.
func (s *Service) rollBaseline(ctx context.Context, venue, symbol string, bucket time.Time) error {
	since := bucket.Add(-s.baselineAge)
	records, err := s.store.SnapshotsSince(ctx, venue, since, s.historyLimit)
	if err != nil {
		return fmt.Errorf("load snapshot history: %w", err)
	}

	history := make([]metrics.MetricSnapshot, 0, len(records))
	for _, rec := range records {
		history = append(history, rec.Snapshot())
	}

	if symbol == "" {
		symbol = s.symbol
	}
	next := s.tracker.Compute(venue, symbol, bucket, history)
	if err := s.store.UpsertBaseline(ctx, storage.RecordFromBaseline(next)); err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}
	return nil
}

func (s *Service) saveRuntimeState(ctx context.Context, bucket time.Time, ok, failed int, degraded bool) {
	states := map[string]string{
		"last_cycle_at":       bucket.UTC().Format(time.RFC3339),
		"last_cycle_ok":       strconv.Itoa(ok),
		"last_cycle_errored":  strconv.Itoa(failed),
		"last_cycle_degraded": strconv.FormatBool(degraded),
	}
	for key, value := range states {
		if err := s.store.UpsertRuntimeState(ctx, key, value); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("failed to persist runtime state")
		}
	}
}

func (s *Service) venueNames() []string {
	names := make([]string, 0, len(s.fetchers))
	for name := range s.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
