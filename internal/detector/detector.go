// Package detector classifies metric snapshots against the venue baseline.
// Slow-burn rules (depth, spread, impact cost) require several consecutive
// cycles before firing; acute rules (liquidity gap, volume spike) fire on the
// cycle they occur. Dedup against previously persisted alerts happens
// downstream in alerting.
package detector

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"liquidity-radar/internal/baseline"
	"liquidity-radar/internal/metrics"
)

// Thresholds parameterise the rule table. Ratios are current/baseline.
type Thresholds struct {
	// DepthDropRatio triggers depth_shrink below it; DepthCriticalRatio
	// escalates the severity.
	DepthDropRatio     decimal.Decimal
	DepthCriticalRatio decimal.Decimal
	SpreadRatio        decimal.Decimal
	ImpactRatio        decimal.Decimal
	VolumeSpikeRatio   decimal.Decimal
	// LiquidityGapPct is the shortfall percentage of the target notional
	// above which insufficient_liquidity fires.
	LiquidityGapPct decimal.Decimal
	// ConfirmCycles is how many consecutive cycles a slow-burn condition must
	// hold before its rule fires.
	ConfirmCycles int
}

// DefaultThresholds returns the standard rule table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DepthDropRatio:     decimal.NewFromFloat(0.7),
		DepthCriticalRatio: decimal.NewFromFloat(0.4),
		SpreadRatio:        decimal.NewFromInt(2),
		ImpactRatio:        decimal.NewFromInt(2),
		VolumeSpikeRatio:   decimal.NewFromInt(2),
		LiquidityGapPct:    decimal.NewFromInt(20),
		ConfirmCycles:      3,
	}
}

// ConfirmationState holds one venue's consecutive-hit counters keyed by rule.
// The caller owns persistence between cycles; there is no hidden state inside
// the detector.
type ConfirmationState map[AlertType]int

// Detector evaluates the rule table for one venue per call.
type Detector struct {
	thresholds Thresholds
	logger     zerolog.Logger
}

// New constructs a Detector.
func New(thresholds Thresholds, logger zerolog.Logger) *Detector {
	if thresholds.ConfirmCycles <= 0 {
		thresholds.ConfirmCycles = 3
	}
	return &Detector{
		thresholds: thresholds,
		logger:     logger.With().Str("component", "detector").Logger(),
	}
}

// Evaluate runs every rule against the current snapshot and the venue's
// previous-cycle baseline, updating counters in place. It returns candidate
// alerts only; dedup runs downstream.
//
// An errored snapshot, or a baseline that is not ready, skips every rule and
// leaves counters untouched: a gap in observation says nothing about whether
// the underlying condition stopped holding. The same applies per rule when
// the relevant current value or baseline stat is nil.
func (d *Detector) Evaluate(snap metrics.MetricSnapshot, base baseline.Baseline, counters ConfirmationState) []Alert {
	if snap.Errored {
		d.logger.Debug().Str("venue", snap.Venue).Msg("snapshot errored; detection skipped")
		return nil
	}
	if !base.Ready {
		d.logger.Debug().
			Str("venue", snap.Venue).
			Int("samples", base.SampleCount).
			Msg("baseline warming up; detection skipped")
		return nil
	}

	var alerts []Alert
	if a := d.checkDepthShrink(snap, base, counters); a != nil {
		alerts = append(alerts, *a)
	}
	if a := d.checkSpreadWiden(snap, base, counters); a != nil {
		alerts = append(alerts, *a)
	}
	if a := d.checkImpactCostRise(snap, base, counters); a != nil {
		alerts = append(alerts, *a)
	}
	if a := d.checkInsufficientLiquidity(snap); a != nil {
		alerts = append(alerts, *a)
	}
	if a := d.checkVolumeSpike(snap, base); a != nil {
		alerts = append(alerts, *a)
	}
	return alerts
}

// confirm implements the strict edge trigger: the counter keeps incrementing
// while the condition holds and the rule fires only on the cycle the counter
// reaches exactly the requirement. The counter resets the cycle the condition
// stops holding.
func (d *Detector) confirm(counters ConfirmationState, rule AlertType, condition bool) bool {
	if !condition {
		counters[rule] = 0
		return false
	}
	counters[rule]++
	return counters[rule] == d.thresholds.ConfirmCycles
}

func (d *Detector) checkDepthShrink(snap metrics.MetricSnapshot, base baseline.Baseline, counters ConfirmationState) *Alert {
	if snap.DepthTotal1Pct == nil || base.DepthTotalMedian == nil || !base.DepthTotalMedian.IsPositive() {
		return nil
	}

	current := *snap.DepthTotal1Pct
	median := *base.DepthTotalMedian
	threshold := median.Mul(d.thresholds.DepthDropRatio)
	ratio := current.Div(median)

	if !d.confirm(counters, AlertDepthShrink, current.LessThan(threshold)) {
		return nil
	}

	severity := SeverityWarn
	if ratio.LessThan(d.thresholds.DepthCriticalRatio) {
		severity = SeverityCritical
	}
	return &Alert{
		ObservedAt:    snap.ObservedAt,
		Venue:         snap.Venue,
		Symbol:        snap.Symbol,
		Type:          AlertDepthShrink,
		Severity:      severity,
		Threshold:     &threshold,
		Observed:      &current,
		BaselineValue: &median,
		Message: fmt.Sprintf(
			"depth shrink: 1%% depth $%s < baseline $%s x %s = $%s [%d samples]",
			current.StringFixed(0), median.StringFixed(0),
			d.thresholds.DepthDropRatio, threshold.StringFixed(0),
			base.SampleCount,
		),
	}
}

func (d *Detector) checkSpreadWiden(snap metrics.MetricSnapshot, base baseline.Baseline, counters ConfirmationState) *Alert {
	if snap.SpreadBps == nil || base.SpreadBpsMedian == nil || !base.SpreadBpsMedian.IsPositive() {
		return nil
	}

	current := *snap.SpreadBps
	median := *base.SpreadBpsMedian
	threshold := median.Mul(d.thresholds.SpreadRatio)

	if !d.confirm(counters, AlertSpreadWiden, current.GreaterThan(threshold)) {
		return nil
	}

	return &Alert{
		ObservedAt:    snap.ObservedAt,
		Venue:         snap.Venue,
		Symbol:        snap.Symbol,
		Type:          AlertSpreadWiden,
		Severity:      SeverityWarn,
		Threshold:     &threshold,
		Observed:      &current,
		BaselineValue: &median,
		Message: fmt.Sprintf(
			"spread widen: %sbp > baseline %sbp x %s = %sbp [%d samples]",
			current.StringFixed(1), median.StringFixed(1),
			d.thresholds.SpreadRatio, threshold.StringFixed(1),
			base.SampleCount,
		),
	}
}

func (d *Detector) checkImpactCostRise(snap metrics.MetricSnapshot, base baseline.Baseline, counters ConfirmationState) *Alert {
	slip := snap.ImpactLargeSlip()
	if slip == nil || base.ImpactLargeMedian == nil || !base.ImpactLargeMedian.IsPositive() {
		return nil
	}

	current := *slip
	median := *base.ImpactLargeMedian
	threshold := median.Mul(d.thresholds.ImpactRatio)

	if !d.confirm(counters, AlertImpactCostRise, current.GreaterThan(threshold)) {
		return nil
	}

	return &Alert{
		ObservedAt:    snap.ObservedAt,
		Venue:         snap.Venue,
		Symbol:        snap.Symbol,
		Type:          AlertImpactCostRise,
		Severity:      SeverityWarn,
		Threshold:     &threshold,
		Observed:      &current,
		BaselineValue: &median,
		Message: fmt.Sprintf(
			"impact cost rise: large-tier slip %sbp > baseline %sbp x %s = %sbp [%d samples]",
			current.StringFixed(1), median.StringFixed(1),
			d.thresholds.ImpactRatio, threshold.StringFixed(1),
			base.SampleCount,
		),
	}
}

func (d *Detector) checkInsufficientLiquidity(snap metrics.MetricSnapshot) *Alert {
	for _, tier := range []struct {
		label  string
		impact *metrics.ImpactCost
	}{
		{"large", snap.ImpactLarge},
		{"small", snap.ImpactSmall},
	} {
		impact := tier.impact
		if impact == nil || !impact.Insufficient || !impact.TargetNotional.IsPositive() {
			continue
		}
		gapPct := impact.Shortfall.Div(impact.TargetNotional).Mul(decimal.NewFromInt(100))
		if !gapPct.GreaterThan(d.thresholds.LiquidityGapPct) {
			continue
		}

		filled := impact.FilledNotional
		threshold := impact.TargetNotional.Mul(
			decimal.NewFromInt(1).Sub(d.thresholds.LiquidityGapPct.Div(decimal.NewFromInt(100))),
		)
		return &Alert{
			ObservedAt: snap.ObservedAt,
			Venue:      snap.Venue,
			Symbol:     snap.Symbol,
			Type:       AlertInsufficientLiquidity,
			Severity:   SeverityCritical,
			Threshold:  &threshold,
			Observed:   &filled,
			Message: fmt.Sprintf(
				"insufficient liquidity (%s tier): target $%s, filled $%s, shortfall $%s (%s%%)",
				tier.label,
				impact.TargetNotional.StringFixed(0), filled.StringFixed(0),
				impact.Shortfall.StringFixed(0), gapPct.StringFixed(0),
			),
		}
	}
	return nil
}

func (d *Detector) checkVolumeSpike(snap metrics.MetricSnapshot, base baseline.Baseline) *Alert {
	if snap.QuoteVolume24h == nil || base.Volume24hMean == nil || !base.Volume24hMean.IsPositive() {
		return nil
	}

	current := *snap.QuoteVolume24h
	mean := *base.Volume24hMean
	threshold := mean.Mul(d.thresholds.VolumeSpikeRatio)
	if !current.GreaterThan(threshold) {
		return nil
	}

	direction := "volume spike"
	if snap.PctChange24h != nil {
		switch {
		case snap.PctChange24h.IsPositive():
			direction = "volume spike, price up"
		case snap.PctChange24h.IsNegative():
			direction = "volume spike, price down"
		}
	}

	return &Alert{
		ObservedAt:    snap.ObservedAt,
		Venue:         snap.Venue,
		Symbol:        snap.Symbol,
		Type:          AlertVolumeSpike,
		Severity:      SeverityInfo,
		Threshold:     &threshold,
		Observed:      &current,
		BaselineValue: &mean,
		Message: fmt.Sprintf(
			"%s: 24h volume $%s > baseline mean $%s x %s = $%s [%d samples]",
			direction,
			current.StringFixed(0), mean.StringFixed(0),
			d.thresholds.VolumeSpikeRatio, threshold.StringFixed(0),
			base.SampleCount,
		),
	}
}
