package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// Show prints the latest snapshot per venue, the stored baselines, and the
// most recent alerts.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	snapshots, err := store.LatestSnapshots(ctx)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Venue\tTime (UTC)\tLast\tSpread bp\tDepth ±1%\tImpact lg bp\tVol 24h\tStatus")
	for _, snap := range snapshots {
		status := "ok"
		if snap.Errored {
			status = "errored"
			if snap.ErrorDetail != nil {
				status = sanitizeInline(*snap.ErrorDetail)
			}
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			snap.Venue,
			snap.ObservedAt.UTC().Format(time.RFC3339),
			formatDecimalPtr(snap.LastPrice, 4),
			formatDecimalPtr(snap.SpreadBps, 1),
			formatDecimalPtr(snap.DepthTotal1Pct, 0),
			formatDecimalPtr(snap.ImpactLargeSlipBps, 1),
			formatDecimalPtr(snap.QuoteVolume24h, 0),
			status,
		)
	}
	writer.Flush()

	baselines, err := store.ListBaselines(ctx)
	if err != nil {
		return err
	}
	if len(baselines) > 0 {
		fmt.Fprintln(os.Stdout)
		writer = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "Venue\tSamples\tReady\tSpread med\tDepth med\tImpact med\tVol mean")
		for _, base := range baselines {
			fmt.Fprintf(
				writer,
				"%s\t%d\t%t\t%s\t%s\t%s\t%s\n",
				base.Venue,
				base.SampleCount,
				base.Ready,
				formatDecimalPtr(base.SpreadBpsMedian, 1),
				formatDecimalPtr(base.DepthTotalMedian, 0),
				formatDecimalPtr(base.ImpactLargeMedian, 1),
				formatDecimalPtr(base.Volume24hMean, 0),
			)
		}
		writer.Flush()
	}

	limit := opts.AlertLimit
	if limit <= 0 {
		limit = 10
	}
	alerts, err := store.ListRecentAlerts(ctx, limit)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		return nil
	}

	fmt.Fprintln(os.Stdout)
	writer = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tVenue\tType\tSeverity\tMessage")
	for _, alert := range alerts {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			alert.CreatedAt.UTC().Format(time.RFC3339),
			alert.Venue,
			alert.AlertType,
			alert.Severity,
			sanitizeInline(alert.Message),
		)
	}
	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}

func formatDecimalPtr(d *decimal.Decimal, places int32) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(places)
}
