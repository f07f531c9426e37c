package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"liquidity-radar/internal/baseline"
	"liquidity-radar/internal/detector"
	"liquidity-radar/internal/fetcher"
	"liquidity-radar/internal/market"
	"liquidity-radar/internal/metrics"
	"liquidity-radar/internal/service"
)

// Simulate runs the derivation pipeline against a sample document from disk,
// without touching the database. With Check set it also evaluates the rule
// table against a baseline supplied on the command line, with confirmation
// forced to a single cycle, and dispatches surviving alerts if alerting is
// enabled.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	if opts.SamplePath == "" {
		return errors.New("--sample is required")
	}

	payload, err := os.ReadFile(opts.SamplePath)
	if err != nil {
		return fmt.Errorf("read sample: %w", err)
	}

	var sample market.RawVenueSample
	if err := json.Unmarshal(payload, &sample); err != nil {
		return fmt.Errorf("decode sample: %w", err)
	}
	if sample.ObservedAt.IsZero() {
		sample.ObservedAt = time.Now().UTC()
	}

	src := &fetcher.Static{Sample: sample}
	fetched, err := src.Fetch(ctx)
	if err != nil {
		return err
	}

	calc := service.CalculatorFromConfig(a.Config.Monitor)
	snap := calc.Compute(fetched)

	out, err := json.MarshalIndent(snapshotReport(snap), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))

	if !opts.Check {
		return nil
	}

	base, err := baselineFromOptions(snap.Venue, snap.Symbol, opts)
	if err != nil {
		return err
	}

	thresholds := service.ThresholdsFromConfig(a.Config.Monitor.Thresholds)
	thresholds.ConfirmCycles = 1
	det := detector.New(thresholds, a.Logger)

	alerts := det.Evaluate(snap, base, detector.ConfirmationState{})
	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no rules fired")
		return nil
	}

	notifier := a.newNotifier()
	for _, alert := range alerts {
		fmt.Fprintf(os.Stdout, "[%s] %s: %s\n", alert.Severity, alert.Type, alert.Message)
		if notifier != nil {
			if err := notifier.Notify(ctx, alert); err != nil {
				a.Logger.Error().Err(err).Str("type", string(alert.Type)).Msg("failed to dispatch simulated alert")
			}
		}
	}
	return nil
}

func baselineFromOptions(venue, symbol string, opts SimulateOptions) (baseline.Baseline, error) {
	base := baseline.Baseline{
		Venue:       venue,
		Symbol:      symbol,
		ComputedAt:  time.Now().UTC(),
		SampleCount: 1,
		Ready:       true,
	}

	assign := func(raw string, target **decimal.Decimal, flag string) error {
		if raw == "" {
			return nil
		}
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", flag, err)
		}
		*target = &parsed
		return nil
	}

	if err := assign(opts.SpreadBpsMedian, &base.SpreadBpsMedian, "--spread-median"); err != nil {
		return base, err
	}
	if err := assign(opts.DepthTotalMedian, &base.DepthTotalMedian, "--depth-median"); err != nil {
		return base, err
	}
	if err := assign(opts.ImpactMedian, &base.ImpactLargeMedian, "--impact-median"); err != nil {
		return base, err
	}
	if err := assign(opts.VolumeMean, &base.Volume24hMean, "--volume-mean"); err != nil {
		return base, err
	}
	return base, nil
}

type simulatedReport struct {
	Venue      string    `json:"venue"`
	Symbol     string    `json:"symbol"`
	ObservedAt time.Time `json:"observed_at"`
	Errored    bool      `json:"errored"`

	LastPrice      *decimal.Decimal `json:"last_price,omitempty"`
	SpreadBps      *decimal.Decimal `json:"spread_bps,omitempty"`
	DepthBid1Pct   *decimal.Decimal `json:"depth_bid_1pct,omitempty"`
	DepthAsk1Pct   *decimal.Decimal `json:"depth_ask_1pct,omitempty"`
	DepthTotal1Pct *decimal.Decimal `json:"depth_total_1pct,omitempty"`

	ImpactSmallSlipBps *decimal.Decimal `json:"impact_small_slip_bps,omitempty"`
	ImpactLargeSlipBps *decimal.Decimal `json:"impact_large_slip_bps,omitempty"`

	RealizedVol24h  *decimal.Decimal `json:"realized_vol_24h,omitempty"`
	HighLowRange24h *decimal.Decimal `json:"high_low_range_24h,omitempty"`
}

func snapshotReport(snap metrics.MetricSnapshot) simulatedReport {
	report := simulatedReport{
		Venue:          snap.Venue,
		Symbol:         snap.Symbol,
		ObservedAt:     snap.ObservedAt,
		Errored:        snap.Errored,
		LastPrice:      snap.LastPrice,
		SpreadBps:      snap.SpreadBps,
		DepthBid1Pct:   snap.DepthBid1Pct,
		DepthAsk1Pct:   snap.DepthAsk1Pct,
		DepthTotal1Pct: snap.DepthTotal1Pct,

		RealizedVol24h:  snap.RealizedVol24h,
		HighLowRange24h: snap.HighLowRange24h,
	}
	if snap.ImpactSmall != nil {
		report.ImpactSmallSlipBps = snap.ImpactSmall.SlipBps
	}
	if snap.ImpactLarge != nil {
		report.ImpactLargeSlipBps = snap.ImpactLarge.SlipBps
	}
	return report
}
