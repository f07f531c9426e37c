// Package baseline maintains the rolling per-venue statistical reference that
// anomaly detection compares against. Medians are used for spread, depth and
// impact cost so a single bad cycle cannot poison the reference; the volume
// comparator is a mean because volume anomalies are about absolute spikes.
package baseline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"liquidity-radar/internal/metrics"
)

// Baseline is the rolling statistical reference for one venue. A baseline
// below the sample floor is not ready and must not gate alerts.
type Baseline struct {
	Venue      string
	Symbol     string
	ComputedAt time.Time

	SampleCount int
	Ready       bool

	SpreadBpsMedian   *decimal.Decimal
	DepthTotalMedian  *decimal.Decimal
	ImpactLargeMedian *decimal.Decimal
	Volume24hMean     *decimal.Decimal
}

// Tracker recomputes baselines from a trailing window of snapshots.
type Tracker struct {
	// MinSamples is the readiness floor; below it the baseline is warming up.
	MinSamples int
	// MaxSamples bounds the trailing window.
	MaxSamples int
}

// NewTracker applies the defaults: 3-sample floor, 200-sample window.
func NewTracker() Tracker {
	return Tracker{MinSamples: 3, MaxSamples: 200}
}

// Compute rebuilds the baseline for one venue from its snapshot history,
// ordered oldest first. Errored snapshots never contribute; a venue in
// persistent outage therefore keeps its last valid baseline upstream rather
// than degrading this one toward nil.
func (t Tracker) Compute(venue, symbol string, now time.Time, history []metrics.MetricSnapshot) Baseline {
	b := Baseline{Venue: venue, Symbol: symbol, ComputedAt: now}

	clean := make([]metrics.MetricSnapshot, 0, len(history))
	for _, s := range history {
		if s.Errored {
			continue
		}
		clean = append(clean, s)
	}
	if t.MaxSamples > 0 && len(clean) > t.MaxSamples {
		clean = clean[len(clean)-t.MaxSamples:]
	}

	b.SampleCount = len(clean)
	minSamples := t.MinSamples
	if minSamples <= 0 {
		minSamples = 3
	}
	b.Ready = b.SampleCount >= minSamples

	spreads := make([]decimal.Decimal, 0, len(clean))
	depths := make([]decimal.Decimal, 0, len(clean))
	impacts := make([]decimal.Decimal, 0, len(clean))
	volumes := make([]decimal.Decimal, 0, len(clean))
	for _, s := range clean {
		if s.SpreadBps != nil {
			spreads = append(spreads, *s.SpreadBps)
		}
		if s.DepthTotal1Pct != nil {
			depths = append(depths, *s.DepthTotal1Pct)
		}
		if slip := s.ImpactLargeSlip(); slip != nil {
			impacts = append(impacts, *slip)
		}
		if s.QuoteVolume24h != nil {
			volumes = append(volumes, *s.QuoteVolume24h)
		}
	}

	b.SpreadBpsMedian = median(spreads)
	b.DepthTotalMedian = median(depths)
	b.ImpactLargeMedian = median(impacts)
	b.Volume24hMean = mean(volumes)
	return b
}

func median(values []decimal.Decimal) *decimal.Decimal {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	n := len(sorted)
	var m decimal.Decimal
	if n%2 == 1 {
		m = sorted[n/2]
	} else {
		m = sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
	}
	return &m
}

func mean(values []decimal.Decimal) *decimal.Decimal {
	if len(values) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	m := sum.Div(decimal.NewFromInt(int64(len(values))))
	return &m
}
