package detector

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-radar/internal/baseline"
	"liquidity-radar/internal/metrics"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func readyBaseline() baseline.Baseline {
	return baseline.Baseline{
		Venue:             "binance",
		Symbol:            "MONUSDT",
		SampleCount:       50,
		Ready:             true,
		SpreadBpsMedian:   decPtr("10"),
		DepthTotalMedian:  decPtr("500000"),
		ImpactLargeMedian: decPtr("50"),
		Volume24hMean:     decPtr("1000000"),
	}
}

func healthySnapshot() metrics.MetricSnapshot {
	return metrics.MetricSnapshot{
		Venue:          "binance",
		Symbol:         "MONUSDT",
		ObservedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SpreadBps:      decPtr("10"),
		DepthTotal1Pct: decPtr("500000"),
		QuoteVolume24h: decPtr("1000000"),
		ImpactLarge:    &metrics.ImpactCost{TargetNotional: dec("100000"), SlipBps: decPtr("50")},
		ImpactSmall:    &metrics.ImpactCost{TargetNotional: dec("10000"), SlipBps: decPtr("5")},
	}
}

func newDetector() *Detector {
	return New(DefaultThresholds(), zerolog.Nop())
}

func TestDepthShrinkCriticalAfterConfirmation(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	// median 500k, current 150k: ratio 0.3, below the 0.4 critical line
	snap := healthySnapshot()
	snap.DepthTotal1Pct = decPtr("150000")

	for cycle := 1; cycle <= 2; cycle++ {
		alerts := d.Evaluate(snap, readyBaseline(), counters)
		assert.Empty(t, alerts, "cycle %d must not fire yet", cycle)
	}

	alerts := d.Evaluate(snap, readyBaseline(), counters)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertDepthShrink, alerts[0].Type)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	require.NotNil(t, alerts[0].Observed)
	assert.True(t, alerts[0].Observed.Equal(dec("150000")))
	require.NotNil(t, alerts[0].Threshold)
	assert.True(t, alerts[0].Threshold.Equal(dec("350000")))
}

func TestDepthShrinkWarnAboveCriticalRatio(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	// ratio 0.6: below the 0.7 trigger, above the 0.4 critical line
	snap := healthySnapshot()
	snap.DepthTotal1Pct = decPtr("300000")

	var alerts []Alert
	for cycle := 0; cycle < 3; cycle++ {
		alerts = d.Evaluate(snap, readyBaseline(), counters)
	}
	require.Len(t, alerts, 1)
	assert.Equal(t, SeverityWarn, alerts[0].Severity)
}

func TestConfirmationIsEdgeTriggered(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	snap := healthySnapshot()
	snap.SpreadBps = decPtr("100") // baseline 10, threshold 20

	fired := 0
	for cycle := 0; cycle < 10; cycle++ {
		if alerts := d.Evaluate(snap, readyBaseline(), counters); len(alerts) > 0 {
			fired++
		}
	}
	assert.Equal(t, 1, fired, "a qualifying streak fires exactly once")
}

func TestConfirmationResetsWhenConditionClears(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	wide := healthySnapshot()
	wide.SpreadBps = decPtr("100")
	normal := healthySnapshot()

	assert.Empty(t, d.Evaluate(wide, readyBaseline(), counters))
	assert.Empty(t, d.Evaluate(wide, readyBaseline(), counters))
	// condition clears one cycle short of confirmation
	assert.Empty(t, d.Evaluate(normal, readyBaseline(), counters))
	assert.Equal(t, 0, counters[AlertSpreadWiden])

	// the streak has to rebuild from scratch
	assert.Empty(t, d.Evaluate(wide, readyBaseline(), counters))
	assert.Empty(t, d.Evaluate(wide, readyBaseline(), counters))
	alerts := d.Evaluate(wide, readyBaseline(), counters)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertSpreadWiden, alerts[0].Type)
	assert.Equal(t, SeverityWarn, alerts[0].Severity)
}

func TestSecondStreakFiresAgain(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	shallow := healthySnapshot()
	shallow.DepthTotal1Pct = decPtr("100000")
	normal := healthySnapshot()

	fired := 0
	run := func(s metrics.MetricSnapshot, n int) {
		for i := 0; i < n; i++ {
			if alerts := d.Evaluate(s, readyBaseline(), counters); len(alerts) > 0 {
				fired += len(alerts)
			}
		}
	}

	run(shallow, 5)
	run(normal, 1)
	run(shallow, 3)
	assert.Equal(t, 2, fired, "one alert per qualifying streak")
}

func TestImpactCostRiseWarnAfterConfirmation(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	snap := healthySnapshot()
	snap.ImpactLarge = &metrics.ImpactCost{TargetNotional: dec("100000"), SlipBps: decPtr("150")}

	var alerts []Alert
	for cycle := 0; cycle < 3; cycle++ {
		alerts = d.Evaluate(snap, readyBaseline(), counters)
	}
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertImpactCostRise, alerts[0].Type)
	assert.Equal(t, SeverityWarn, alerts[0].Severity)
}

func TestVolumeSpikeImmediateInfo(t *testing.T) {
	d := newDetector()

	snap := healthySnapshot()
	snap.QuoteVolume24h = decPtr("3000000") // mean 1M, ratio 3.0 > 2.0
	snap.PctChange24h = decPtr("12")

	alerts := d.Evaluate(snap, readyBaseline(), ConfirmationState{})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertVolumeSpike, alerts[0].Type)
	assert.Equal(t, SeverityInfo, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "price up")
}

func TestInsufficientLiquidityImmediateCritical(t *testing.T) {
	d := newDetector()

	snap := healthySnapshot()
	snap.ImpactLarge = &metrics.ImpactCost{
		TargetNotional: dec("100000"),
		FilledNotional: dec("60000"),
		Insufficient:   true,
		Shortfall:      dec("40000"), // 40% gap > 20%
	}

	alerts := d.Evaluate(snap, readyBaseline(), ConfirmationState{})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertInsufficientLiquidity, alerts[0].Type)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "large tier")
}

func TestInsufficientLiquiditySmallGapIgnored(t *testing.T) {
	d := newDetector()

	snap := healthySnapshot()
	snap.ImpactLarge = &metrics.ImpactCost{
		TargetNotional: dec("100000"),
		FilledNotional: dec("90000"),
		Insufficient:   true,
		Shortfall:      dec("10000"), // 10% gap, below the 20% line
	}

	assert.Empty(t, d.Evaluate(snap, readyBaseline(), ConfirmationState{}))
}

func TestWarmingUpBaselineSkipsEverything(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	snap := healthySnapshot()
	snap.DepthTotal1Pct = decPtr("1") // wildly anomalous
	snap.QuoteVolume24h = decPtr("999000000")
	snap.ImpactLarge = &metrics.ImpactCost{
		TargetNotional: dec("100000"),
		Insufficient:   true,
		Shortfall:      dec("100000"),
	}

	base := readyBaseline()
	base.Ready = false
	base.SampleCount = 2

	for cycle := 0; cycle < 5; cycle++ {
		assert.Empty(t, d.Evaluate(snap, base, counters))
	}
	assert.Equal(t, 0, counters[AlertDepthShrink], "warming up must not advance counters")
}

func TestErroredSnapshotLeavesCountersUntouched(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{}

	shallow := healthySnapshot()
	shallow.DepthTotal1Pct = decPtr("100000")

	errored := healthySnapshot()
	errored.Errored = true

	assert.Empty(t, d.Evaluate(shallow, readyBaseline(), counters))
	assert.Empty(t, d.Evaluate(shallow, readyBaseline(), counters))
	assert.Equal(t, 2, counters[AlertDepthShrink])

	// a fetch gap says nothing about the market; the streak survives
	assert.Empty(t, d.Evaluate(errored, readyBaseline(), counters))
	assert.Equal(t, 2, counters[AlertDepthShrink])

	alerts := d.Evaluate(shallow, readyBaseline(), counters)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertDepthShrink, alerts[0].Type)
}

func TestNilCurrentValueSkipsRule(t *testing.T) {
	d := newDetector()
	counters := ConfirmationState{AlertSpreadWiden: 2}

	snap := healthySnapshot()
	snap.SpreadBps = nil

	assert.Empty(t, d.Evaluate(snap, readyBaseline(), counters))
	assert.Equal(t, 2, counters[AlertSpreadWiden], "nil input leaves the counter untouched")
}
