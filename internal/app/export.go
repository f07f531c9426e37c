package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"liquidity-radar/internal/storage"
)

// Export renders one venue's snapshot history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.Venue == "" {
		return errors.New("--venue is required")
	}
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Scheduler.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	snapshots, err := store.SnapshotsBetween(ctx, opts.Venue, from, to)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		a.Logger.Info().Str("venue", opts.Venue).Msg("no snapshots found for export window")
		return nil
	}

	downsampled := downsampleSnapshots(snapshots, opts.MaxPoints)
	a.Logger.Info().
		Str("venue", opts.Venue).
		Int("total", len(snapshots)).
		Int("exported", len(downsampled)).
		Msg("exporting snapshots")

	if opts.CSVPath != "" {
		if err := writeSnapshotsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSnapshotsPNG(opts.PNGPath, opts.Venue, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleSnapshots(snapshots []storage.SnapshotRecord, max int) []storage.SnapshotRecord {
	if max <= 0 || len(snapshots) <= max {
		return snapshots
	}

	result := make([]storage.SnapshotRecord, 0, max)
	step := float64(len(snapshots)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(snapshots) {
			idx = len(snapshots) - 1
		}
		result = append(result, snapshots[idx])
	}
	return result
}

func writeSnapshotsCSV(path string, snapshots []storage.SnapshotRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"observed_at", "venue", "symbol", "errored",
		"last_price", "spread_bps", "depth_bid_1pct", "depth_ask_1pct", "depth_total_1pct",
		"impact_small_slip_bps", "impact_large_slip_bps",
		"quote_volume_24h", "funding_rate", "open_interest",
		"realized_vol_24h", "high_low_range_24h",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, snap := range snapshots {
		errored := "false"
		if snap.Errored {
			errored = "true"
		}
		record := []string{
			snap.ObservedAt.Format(time.RFC3339),
			snap.Venue,
			snap.Symbol,
			errored,
			csvDecimal(snap.LastPrice),
			csvDecimal(snap.SpreadBps),
			csvDecimal(snap.DepthBid1Pct),
			csvDecimal(snap.DepthAsk1Pct),
			csvDecimal(snap.DepthTotal1Pct),
			csvDecimal(snap.ImpactSmallSlipBps),
			csvDecimal(snap.ImpactLargeSlipBps),
			csvDecimal(snap.QuoteVolume24h),
			csvDecimal(snap.FundingRate),
			csvDecimal(snap.OpenInterest),
			csvDecimal(snap.RealizedVol24h),
			csvDecimal(snap.HighLowRange24h),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSnapshotsPNG(path, venue string, snapshots []storage.SnapshotRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, 0, len(snapshots))
	spread := make([]float64, 0, len(snapshots))
	depth := make([]float64, 0, len(snapshots))
	impact := make([]float64, 0, len(snapshots))

	// errored rows carry no derived values and would render as zero dips
	for _, snap := range snapshots {
		if snap.Errored || snap.SpreadBps == nil || snap.DepthTotal1Pct == nil {
			continue
		}
		x = append(x, snap.ObservedAt)
		spread = append(spread, snap.SpreadBps.InexactFloat64())
		depth = append(depth, snap.DepthTotal1Pct.InexactFloat64())
		if snap.ImpactLargeSlipBps != nil {
			impact = append(impact, snap.ImpactLargeSlipBps.InexactFloat64())
		} else {
			impact = append(impact, 0)
		}
	}
	if len(x) < 2 {
		return errors.New("not enough clean snapshots to plot")
	}

	bpsFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Title:  venue + " liquidity",
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Spread / Impact (bp)",
			ValueFormatter: bpsFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Depth ±1% (quote)",
			ValueFormatter: bpsFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Spread bp",
				XValues: x,
				YValues: spread,
			},
			chart.TimeSeries{
				Name:    "Impact lg bp",
				XValues: x,
				YValues: impact,
			},
			chart.TimeSeries{
				Name:    "Depth ±1%",
				XValues: x,
				YValues: depth,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func csvDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
