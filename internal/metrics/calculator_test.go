package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-radar/internal/market"
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

func levels(pairs ...string) []market.BookLevel {
	if len(pairs)%2 != 0 {
		panic("levels needs price/quantity pairs")
	}
	out := make([]market.BookLevel, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, market.BookLevel{Price: dec(pairs[i]), Quantity: dec(pairs[i+1])})
	}
	return out
}

func TestSpreadBps(t *testing.T) {
	snap := NewCalculator().Compute(market.RawVenueSample{
		Venue:   "binance",
		BestBid: decPtr("100"),
		BestAsk: decPtr("101"),
	})
	require.NotNil(t, snap.SpreadBps)
	assert.True(t, snap.SpreadBps.Equal(dec("100")), "spread = 1/100*10000 bps, got %s", snap.SpreadBps)
}

func TestSpreadBpsUndefined(t *testing.T) {
	calc := NewCalculator()

	snap := calc.Compute(market.RawVenueSample{BestAsk: decPtr("101")})
	assert.Nil(t, snap.SpreadBps, "missing bid")

	snap = calc.Compute(market.RawVenueSample{BestBid: decPtr("0"), BestAsk: decPtr("101")})
	assert.Nil(t, snap.SpreadBps, "non-positive bid")

	snap = calc.Compute(market.RawVenueSample{BestBid: decPtr("100")})
	assert.Nil(t, snap.SpreadBps, "missing ask")
}

func TestDepthBandScenario(t *testing.T) {
	// bids [(100,5),(99,10)], asks [(101,4),(102,20)], mid = 100.5.
	// Band [99.495, 101.505]: the 99 bid and 102 ask fall outside, so
	// bid depth = 100*5 = 500, ask depth = 101*4 = 404.
	snap := NewCalculator().Compute(market.RawVenueSample{
		BestBid: decPtr("100"),
		BestAsk: decPtr("101"),
		Bids:    levels("100", "5", "99", "10"),
		Asks:    levels("101", "4", "102", "20"),
	})

	require.NotNil(t, snap.Mid)
	assert.True(t, snap.Mid.Equal(dec("100.5")))
	require.NotNil(t, snap.DepthBid1Pct)
	assert.True(t, snap.DepthBid1Pct.Equal(dec("500")), "bid depth %s", snap.DepthBid1Pct)
	require.NotNil(t, snap.DepthAsk1Pct)
	assert.True(t, snap.DepthAsk1Pct.Equal(dec("404")), "ask depth %s", snap.DepthAsk1Pct)
	require.NotNil(t, snap.DepthTotal1Pct)
	assert.True(t, snap.DepthTotal1Pct.Equal(dec("904")))
}

func TestDepthMonotonicInBand(t *testing.T) {
	bids := levels("100", "5", "99", "10", "95", "50", "90", "100")
	asks := levels("101", "4", "102", "20", "105", "30", "110", "80")
	mid := dec("100.5")

	prev := decimal.Zero
	for _, pct := range []string{"0.5", "1", "2", "5", "10", "20"} {
		bid := DepthWithinPct(bids, mid, dec(pct), SideBid)
		ask := DepthWithinPct(asks, mid, dec(pct), SideAsk)
		total := bid.Add(ask)
		assert.False(t, total.IsNegative())
		assert.True(t, total.GreaterThanOrEqual(prev),
			"depth must not shrink as the band widens: %s%% gave %s after %s", pct, total, prev)
		prev = total
	}
}

func TestImpactCostMonotonicInNotional(t *testing.T) {
	asks := levels("101", "10", "102", "10", "105", "10", "110", "10")
	mid := dec("100")

	prev := decimal.NewFromInt(-1 << 30)
	for _, n := range []string{"500", "1000", "2000", "3000", "4000"} {
		res := ImpactCostBuy(asks, mid, dec(n))
		require.False(t, res.Insufficient, "notional %s should fill", n)
		require.NotNil(t, res.SlipBps)
		assert.True(t, res.SlipBps.GreaterThanOrEqual(prev),
			"impact cost must not fall as notional grows: %s gave %s after %s", n, res.SlipBps, prev)
		prev = *res.SlipBps
	}
}

func TestImpactCostExactFill(t *testing.T) {
	// Two levels: 101*4 = 404, then 102*20. A 404 target fills the first
	// level exactly, avg fill = 101, slip vs mid 100 = 100 bps.
	res := ImpactCostBuy(levels("101", "4", "102", "20"), dec("100"), dec("404"))
	require.False(t, res.Insufficient)
	require.NotNil(t, res.AvgFillPrice)
	assert.True(t, res.AvgFillPrice.Equal(dec("101")))
	require.NotNil(t, res.SlipBps)
	assert.True(t, res.SlipBps.Equal(dec("100")), "slip %s", res.SlipBps)
	assert.True(t, res.FilledNotional.Equal(dec("404")))
}

func TestImpactCostBookExhausted(t *testing.T) {
	// Book holds 404 + 2040 = 2444 notional; a 10000 target cannot fill.
	res := ImpactCostBuy(levels("101", "4", "102", "20"), dec("100"), dec("10000"))
	assert.True(t, res.Insufficient)
	assert.Nil(t, res.SlipBps, "exhausted book must not extrapolate a slippage")
	assert.Nil(t, res.AvgFillPrice)
	assert.True(t, res.Shortfall.Equal(dec("7556")), "shortfall %s", res.Shortfall)
	assert.True(t, res.FilledNotional.Equal(dec("2444")))
}

func TestMidPrefersLastTrade(t *testing.T) {
	snap := NewCalculator().Compute(market.RawVenueSample{
		LastPrice: decPtr("100.2"),
		BestBid:   decPtr("100"),
		BestAsk:   decPtr("101"),
	})
	require.NotNil(t, snap.Mid)
	assert.True(t, snap.Mid.Equal(dec("100.2")))
}

func hourlyCandles(closes ...string) []market.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, 0, len(closes))
	for i, c := range closes {
		d := dec(c)
		out = append(out, market.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     d, High: d.Add(dec("1")), Low: d.Sub(dec("1")), Close: d,
		})
	}
	return out
}

func TestRealizedVolNeedsEnoughCandles(t *testing.T) {
	calc := NewCalculator()

	snap := calc.Compute(market.RawVenueSample{Candles: hourlyCandles("100", "101")})
	assert.Nil(t, snap.RealizedVol24h, "two candles are not enough")

	snap = calc.Compute(market.RawVenueSample{Candles: hourlyCandles("100", "101", "102")})
	require.NotNil(t, snap.RealizedVol24h)
	assert.True(t, snap.RealizedVol24h.IsPositive())
}

func TestRealizedVolZeroForFlatSeries(t *testing.T) {
	snap := NewCalculator().Compute(market.RawVenueSample{
		Candles: hourlyCandles("100", "100", "100", "100", "100"),
	})
	require.NotNil(t, snap.RealizedVol24h)
	assert.True(t, snap.RealizedVol24h.IsZero())
}

func TestPctChange1h(t *testing.T) {
	snap := NewCalculator().Compute(market.RawVenueSample{
		Candles: hourlyCandles("100", "100", "102"),
	})
	require.NotNil(t, snap.PctChange1h)
	assert.True(t, snap.PctChange1h.Equal(dec("2")), "1h change %s", snap.PctChange1h)
}

func TestHighLowRangeProxy(t *testing.T) {
	snap := NewCalculator().Compute(market.RawVenueSample{
		Candles: hourlyCandles("100", "101", "102"),
	})
	// every synthetic candle has high-low = 2
	require.NotNil(t, snap.HighLowRange24h)
	assert.True(t, snap.HighLowRange24h.Equal(dec("2")))
}

func TestErroredSampleShortCircuits(t *testing.T) {
	snap := NewCalculator().Compute(market.RawVenueSample{
		Venue:   "okx",
		Symbol:  "MON-USDT-SWAP",
		BestBid: decPtr("100"),
		BestAsk: decPtr("101"),
		Err:     market.NewFetchError(market.ErrCodeTimeout, "collect timeout after 60s"),
	})

	assert.True(t, snap.Errored)
	require.NotNil(t, snap.ErrorDetail)
	assert.Contains(t, *snap.ErrorDetail, market.ErrCodeTimeout)
	assert.Nil(t, snap.SpreadBps)
	assert.Nil(t, snap.Mid)
	assert.Nil(t, snap.DepthTotal1Pct)
	assert.Nil(t, snap.ImpactLarge)
}

func TestMissingBookYieldsNilNotZero(t *testing.T) {
	snap := NewCalculator().Compute(market.RawVenueSample{
		Venue:          "bybit",
		QuoteVolume24h: decPtr("0"),
	})
	assert.Nil(t, snap.Mid)
	assert.Nil(t, snap.DepthTotal1Pct)
	assert.Nil(t, snap.ImpactSmall)
	// an explicit zero from the venue survives as zero, not nil
	require.NotNil(t, snap.QuoteVolume24h)
	assert.True(t, snap.QuoteVolume24h.IsZero())
}
