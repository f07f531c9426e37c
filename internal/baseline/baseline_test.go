package baseline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-radar/internal/metrics"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func snap(spread, depth, impact, volume string) metrics.MetricSnapshot {
	s := metrics.MetricSnapshot{Venue: "binance", Symbol: "MONUSDT"}
	if spread != "" {
		d := dec(spread)
		s.SpreadBps = &d
	}
	if depth != "" {
		d := dec(depth)
		s.DepthTotal1Pct = &d
	}
	if impact != "" {
		d := dec(impact)
		s.ImpactLarge = &metrics.ImpactCost{SlipBps: &d}
	}
	if volume != "" {
		d := dec(volume)
		s.QuoteVolume24h = &d
	}
	return s
}

func TestComputeMediansAndMean(t *testing.T) {
	history := []metrics.MetricSnapshot{
		snap("10", "500000", "50", "1000000"),
		snap("30", "400000", "70", "3000000"),
		snap("20", "600000", "60", "2000000"),
	}

	b := NewTracker().Compute("binance", "MONUSDT", time.Now().UTC(), history)

	assert.Equal(t, 3, b.SampleCount)
	assert.True(t, b.Ready)
	require.NotNil(t, b.SpreadBpsMedian)
	assert.True(t, b.SpreadBpsMedian.Equal(dec("20")))
	require.NotNil(t, b.DepthTotalMedian)
	assert.True(t, b.DepthTotalMedian.Equal(dec("500000")))
	require.NotNil(t, b.ImpactLargeMedian)
	assert.True(t, b.ImpactLargeMedian.Equal(dec("60")))
	require.NotNil(t, b.Volume24hMean)
	assert.True(t, b.Volume24hMean.Equal(dec("2000000")))
}

func TestMedianResistsSpike(t *testing.T) {
	history := []metrics.MetricSnapshot{
		snap("10", "", "", ""),
		snap("10", "", "", ""),
		snap("10", "", "", ""),
		snap("10000", "", "", ""), // single-cycle spike
	}

	b := NewTracker().Compute("binance", "MONUSDT", time.Now().UTC(), history)
	require.NotNil(t, b.SpreadBpsMedian)
	assert.True(t, b.SpreadBpsMedian.Equal(dec("10")))
}

func TestEvenCountMedianAveragesMiddlePair(t *testing.T) {
	history := []metrics.MetricSnapshot{
		snap("10", "", "", ""),
		snap("20", "", "", ""),
		snap("30", "", "", ""),
		snap("40", "", "", ""),
	}

	b := NewTracker().Compute("binance", "MONUSDT", time.Now().UTC(), history)
	require.NotNil(t, b.SpreadBpsMedian)
	assert.True(t, b.SpreadBpsMedian.Equal(dec("25")))
}

func TestErroredSnapshotsExcluded(t *testing.T) {
	bad := snap("9999", "1", "9999", "9999999")
	bad.Errored = true

	history := []metrics.MetricSnapshot{
		snap("10", "500000", "50", "1000000"),
		bad,
		snap("12", "520000", "52", "1100000"),
		snap("14", "540000", "54", "1200000"),
	}

	b := NewTracker().Compute("binance", "MONUSDT", time.Now().UTC(), history)
	assert.Equal(t, 3, b.SampleCount)
	require.NotNil(t, b.SpreadBpsMedian)
	assert.True(t, b.SpreadBpsMedian.Equal(dec("12")))
}

func TestNotReadyBelowFloor(t *testing.T) {
	history := []metrics.MetricSnapshot{
		snap("10", "500000", "50", "1000000"),
		snap("12", "520000", "52", "1100000"),
	}

	b := NewTracker().Compute("binance", "MONUSDT", time.Now().UTC(), history)
	assert.Equal(t, 2, b.SampleCount)
	assert.False(t, b.Ready)
}

func TestWindowBounded(t *testing.T) {
	tracker := Tracker{MinSamples: 3, MaxSamples: 5}
	history := make([]metrics.MetricSnapshot, 0, 10)
	for i := 0; i < 10; i++ {
		// older half has spread 100, newest five have spread 10
		v := "100"
		if i >= 5 {
			v = "10"
		}
		history = append(history, snap(v, "", "", ""))
	}

	b := tracker.Compute("binance", "MONUSDT", time.Now().UTC(), history)
	assert.Equal(t, 5, b.SampleCount)
	require.NotNil(t, b.SpreadBpsMedian)
	assert.True(t, b.SpreadBpsMedian.Equal(dec("10")), "only the trailing window should count")
}

func TestEmptyHistory(t *testing.T) {
	b := NewTracker().Compute("okx", "MON-USDT-SWAP", time.Now().UTC(), nil)
	assert.Equal(t, 0, b.SampleCount)
	assert.False(t, b.Ready)
	assert.Nil(t, b.SpreadBpsMedian)
	assert.Nil(t, b.DepthTotalMedian)
	assert.Nil(t, b.ImpactLargeMedian)
	assert.Nil(t, b.Volume24hMean)
}
