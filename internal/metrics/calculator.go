package metrics

import (
	"math"

	"github.com/shopspring/decimal"

	"liquidity-radar/internal/market"
)

var (
	decTwo      = decimal.NewFromInt(2)
	decHundred  = decimal.NewFromInt(100)
	decBpsScale = decimal.NewFromInt(10000)
)

// Calculator derives a MetricSnapshot from a raw venue sample. It is a pure
// computation; the same sample always yields the same snapshot.
type Calculator struct {
	// DepthBandPct is the depth band half-width in percent (1.0 means ±1%).
	DepthBandPct decimal.Decimal
	// NotionalSmall and NotionalLarge are the two impact-cost tiers in quote
	// currency.
	NotionalSmall decimal.Decimal
	NotionalLarge decimal.Decimal
	// VolWindow is how many trailing hourly candles feed realized volatility
	// and the high-low range proxy.
	VolWindow int
}

// NewCalculator applies the standard tiers: ±1% band, $10k/$100k notionals,
// 24 hourly candles.
func NewCalculator() Calculator {
	return Calculator{
		DepthBandPct:  decimal.NewFromInt(1),
		NotionalSmall: decimal.NewFromInt(10_000),
		NotionalLarge: decimal.NewFromInt(100_000),
		VolWindow:     24,
	}
}

// Compute derives all metrics for one sample. A sample carrying a fetch error
// produces a snapshot with the error tag set and every derived field nil.
func (c Calculator) Compute(sample market.RawVenueSample) MetricSnapshot {
	snap := MetricSnapshot{
		Venue:      sample.Venue,
		Symbol:     sample.Symbol,
		ObservedAt: sample.ObservedAt,
	}

	if sample.Errored() {
		snap.Errored = true
		detail := sample.Err.Error()
		snap.ErrorDetail = &detail
		return snap
	}

	snap.LastPrice = sample.LastPrice
	snap.QuoteVolume24h = sample.QuoteVolume24h
	snap.FundingRate = sample.FundingRate
	snap.OpenInterest = sample.OpenInterest
	snap.BestBid = sample.BestBid
	snap.BestAsk = sample.BestAsk
	snap.CandleCount = len(sample.Candles)

	snap.SpreadBps = spreadBps(sample.BestBid, sample.BestAsk)
	snap.Mid = midPrice(sample)

	if snap.Mid != nil {
		mid := *snap.Mid
		bid := DepthWithinPct(sample.Bids, mid, c.DepthBandPct, SideBid)
		ask := DepthWithinPct(sample.Asks, mid, c.DepthBandPct, SideAsk)
		snap.DepthBid1Pct = &bid
		snap.DepthAsk1Pct = &ask
		total := bid.Add(ask)
		snap.DepthTotal1Pct = &total

		small := ImpactCostBuy(sample.Asks, mid, c.NotionalSmall)
		large := ImpactCostBuy(sample.Asks, mid, c.NotionalLarge)
		snap.ImpactSmall = &small
		snap.ImpactLarge = &large
	}

	snap.RealizedVol24h = realizedVol(sample.Candles, c.VolWindow)
	snap.HighLowRange24h = highLowRange(sample.Candles, c.VolWindow)
	snap.PctChange1h = pctChange(sample.Candles, 1)
	snap.PctChange24h = pctChange(sample.Candles, 24)

	return snap
}

// spreadBps computes (ask - bid) / bid * 10000. Undefined when either side is
// missing or the bid is not positive.
func spreadBps(bid, ask *decimal.Decimal) *decimal.Decimal {
	if bid == nil || ask == nil || !bid.IsPositive() {
		return nil
	}
	spread := ask.Sub(*bid).Div(*bid).Mul(decBpsScale)
	return &spread
}

// midPrice prefers the last trade price, falling back to the bid/ask mean.
func midPrice(sample market.RawVenueSample) *decimal.Decimal {
	if sample.LastPrice != nil && sample.LastPrice.IsPositive() {
		mid := *sample.LastPrice
		return &mid
	}
	if sample.BestBid != nil && sample.BestAsk != nil {
		mid := sample.BestBid.Add(*sample.BestAsk).Div(decTwo)
		if mid.IsPositive() {
			return &mid
		}
	}
	return nil
}

// Side selects which side of the book a depth computation walks.
type Side int

const (
	SideBid Side = iota
	SideAsk
)

// DepthWithinPct sums level notionals within pct percent of mid on one side.
// Bids count while price >= mid*(1-pct/100), asks while price <= mid*(1+pct/100).
func DepthWithinPct(levels []market.BookLevel, mid decimal.Decimal, pct decimal.Decimal, side Side) decimal.Decimal {
	total := decimal.Zero
	if !mid.IsPositive() {
		return total
	}

	frac := pct.Div(decHundred)
	if side == SideBid {
		lower := mid.Mul(decimal.NewFromInt(1).Sub(frac))
		for _, lvl := range levels {
			if lvl.Price.GreaterThanOrEqual(lower) {
				total = total.Add(lvl.Notional())
			}
		}
		return total
	}

	upper := mid.Mul(decimal.NewFromInt(1).Add(frac))
	for _, lvl := range levels {
		if lvl.Price.LessThanOrEqual(upper) {
			total = total.Add(lvl.Notional())
		}
	}
	return total
}

// ImpactCostBuy walks ask levels from best upward until the target notional is
// filled and reports the volume-weighted fill price against mid in bps. If the
// book is exhausted first, the slippage stays nil and the shortfall is
// recorded; the result is never extrapolated beyond the visible book.
func ImpactCostBuy(asks []market.BookLevel, mid decimal.Decimal, notional decimal.Decimal) ImpactCost {
	result := ImpactCost{TargetNotional: notional}
	remaining := notional
	totalCost := decimal.Zero
	totalBase := decimal.Zero

	for _, lvl := range asks {
		if !remaining.IsPositive() {
			break
		}
		levelNotional := lvl.Notional()
		if levelNotional.LessThanOrEqual(remaining) {
			totalCost = totalCost.Add(levelNotional)
			totalBase = totalBase.Add(lvl.Quantity)
			remaining = remaining.Sub(levelNotional)
		} else {
			fillQty := remaining.Div(lvl.Price)
			totalCost = totalCost.Add(remaining)
			totalBase = totalBase.Add(fillQty)
			remaining = decimal.Zero
		}
	}

	result.FilledNotional = notional.Sub(remaining)

	if remaining.IsPositive() {
		result.Insufficient = true
		result.Shortfall = remaining
		return result
	}

	if totalBase.IsPositive() && mid.IsPositive() {
		avg := totalCost.Div(totalBase)
		result.AvgFillPrice = &avg
		slip := avg.Sub(mid).Div(mid).Mul(decBpsScale)
		result.SlipBps = &slip
	}
	return result
}

// realizedVol is the sample standard deviation of hourly log returns over the
// trailing window. Needs at least 3 candles and 2 valid returns.
func realizedVol(candles []market.Candle, window int) *decimal.Decimal {
	if len(candles) < 3 {
		return nil
	}

	// window hourly returns need window+1 closes
	start := 0
	if len(candles) > window+1 {
		start = len(candles) - (window + 1)
	}
	recent := candles[start:]

	returns := make([]float64, 0, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		prev := recent[i-1].Close
		cur := recent[i].Close
		if prev.IsPositive() && cur.IsPositive() {
			r, _ := cur.Div(prev).Float64()
			returns = append(returns, math.Log(r))
		}
	}
	if len(returns) < 2 {
		return nil
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	vol := decimal.NewFromFloat(math.Sqrt(variance))
	return &vol
}

// highLowRange averages |high - low| over the trailing window of candles.
func highLowRange(candles []market.Candle, window int) *decimal.Decimal {
	if len(candles) == 0 {
		return nil
	}
	start := 0
	if len(candles) > window {
		start = len(candles) - window
	}
	recent := candles[start:]

	sum := decimal.Zero
	for _, c := range recent {
		sum = sum.Add(c.High.Sub(c.Low).Abs())
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(recent))))
	return &avg
}

// pctChange derives the percent move over the given number of hours from the
// candle closes.
func pctChange(candles []market.Candle, hours int) *decimal.Decimal {
	if len(candles) < hours+1 {
		return nil
	}
	current := candles[len(candles)-1].Close
	past := candles[len(candles)-1-hours].Close
	if !past.IsPositive() || current.IsZero() {
		return nil
	}
	change := current.Sub(past).Div(past).Mul(decHundred)
	return &change
}
