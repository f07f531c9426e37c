package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImpactCost is the outcome of walking one side of the book for a target
// notional. SlipBps and AvgFillPrice are nil when the book cannot fill the
// target; walking past available liquidity is never extrapolated.
type ImpactCost struct {
	TargetNotional decimal.Decimal
	FilledNotional decimal.Decimal
	AvgFillPrice   *decimal.Decimal
	SlipBps        *decimal.Decimal
	Insufficient   bool
	Shortfall      decimal.Decimal
}

// MetricSnapshot is one derived observation for a (venue, cycle) pair.
// Derived fields are nil, never zero, when their inputs were missing or the
// venue errored: zero is a valid market value and must stay distinguishable.
type MetricSnapshot struct {
	Venue      string
	Symbol     string
	ObservedAt time.Time

	Errored     bool
	ErrorDetail *string

	LastPrice      *decimal.Decimal
	PctChange1h    *decimal.Decimal
	PctChange24h   *decimal.Decimal
	QuoteVolume24h *decimal.Decimal

	BestBid   *decimal.Decimal
	BestAsk   *decimal.Decimal
	Mid       *decimal.Decimal
	SpreadBps *decimal.Decimal

	DepthBid1Pct   *decimal.Decimal
	DepthAsk1Pct   *decimal.Decimal
	DepthTotal1Pct *decimal.Decimal

	ImpactSmall *ImpactCost
	ImpactLarge *ImpactCost

	FundingRate  *decimal.Decimal
	OpenInterest *decimal.Decimal

	RealizedVol24h  *decimal.Decimal
	HighLowRange24h *decimal.Decimal
	CandleCount     int
}

// ImpactLargeSlip returns the large-tier slippage in bps, or nil.
func (s *MetricSnapshot) ImpactLargeSlip() *decimal.Decimal {
	if s.ImpactLarge == nil {
		return nil
	}
	return s.ImpactLarge.SlipBps
}
