package storage

import (
	"liquidity-radar/internal/baseline"
	"liquidity-radar/internal/metrics"
)

// RecordFromSnapshot flattens a derived snapshot for persistence.
func RecordFromSnapshot(s metrics.MetricSnapshot) SnapshotRecord {
	rec := SnapshotRecord{
		Venue:       s.Venue,
		Symbol:      s.Symbol,
		ObservedAt:  s.ObservedAt,
		Errored:     s.Errored,
		ErrorDetail: s.ErrorDetail,

		LastPrice:      s.LastPrice,
		PctChange1h:    s.PctChange1h,
		PctChange24h:   s.PctChange24h,
		QuoteVolume24h: s.QuoteVolume24h,

		BestBid:   s.BestBid,
		BestAsk:   s.BestAsk,
		Mid:       s.Mid,
		SpreadBps: s.SpreadBps,

		DepthBid1Pct:   s.DepthBid1Pct,
		DepthAsk1Pct:   s.DepthAsk1Pct,
		DepthTotal1Pct: s.DepthTotal1Pct,

		FundingRate:  s.FundingRate,
		OpenInterest: s.OpenInterest,

		RealizedVol24h:  s.RealizedVol24h,
		HighLowRange24h: s.HighLowRange24h,
		CandleCount:     s.CandleCount,
	}

	if s.ImpactSmall != nil {
		rec.ImpactSmallSlipBps = s.ImpactSmall.SlipBps
		rec.ImpactSmallInsufficient = s.ImpactSmall.Insufficient
		if s.ImpactSmall.Insufficient {
			shortfall := s.ImpactSmall.Shortfall
			rec.ImpactSmallShortfall = &shortfall
		}
	}
	if s.ImpactLarge != nil {
		rec.ImpactLargeSlipBps = s.ImpactLarge.SlipBps
		rec.ImpactLargeInsufficient = s.ImpactLarge.Insufficient
		if s.ImpactLarge.Insufficient {
			shortfall := s.ImpactLarge.Shortfall
			rec.ImpactLargeShortfall = &shortfall
		}
	}

	return rec
}

// Snapshot rebuilds the derived snapshot from a persisted record. Impact cost
// is restored with its outcome fields only; the target notional is a runtime
// configuration concern and is not persisted.
func (r SnapshotRecord) Snapshot() metrics.MetricSnapshot {
	s := metrics.MetricSnapshot{
		Venue:       r.Venue,
		Symbol:      r.Symbol,
		ObservedAt:  r.ObservedAt,
		Errored:     r.Errored,
		ErrorDetail: r.ErrorDetail,

		LastPrice:      r.LastPrice,
		PctChange1h:    r.PctChange1h,
		PctChange24h:   r.PctChange24h,
		QuoteVolume24h: r.QuoteVolume24h,

		BestBid:   r.BestBid,
		BestAsk:   r.BestAsk,
		Mid:       r.Mid,
		SpreadBps: r.SpreadBps,

		DepthBid1Pct:   r.DepthBid1Pct,
		DepthAsk1Pct:   r.DepthAsk1Pct,
		DepthTotal1Pct: r.DepthTotal1Pct,

		FundingRate:  r.FundingRate,
		OpenInterest: r.OpenInterest,

		RealizedVol24h:  r.RealizedVol24h,
		HighLowRange24h: r.HighLowRange24h,
		CandleCount:     r.CandleCount,
	}

	if r.ImpactSmallSlipBps != nil || r.ImpactSmallInsufficient {
		impact := metrics.ImpactCost{
			SlipBps:      r.ImpactSmallSlipBps,
			Insufficient: r.ImpactSmallInsufficient,
		}
		if r.ImpactSmallShortfall != nil {
			impact.Shortfall = *r.ImpactSmallShortfall
		}
		s.ImpactSmall = &impact
	}
	if r.ImpactLargeSlipBps != nil || r.ImpactLargeInsufficient {
		impact := metrics.ImpactCost{
			SlipBps:      r.ImpactLargeSlipBps,
			Insufficient: r.ImpactLargeInsufficient,
		}
		if r.ImpactLargeShortfall != nil {
			impact.Shortfall = *r.ImpactLargeShortfall
		}
		s.ImpactLarge = &impact
	}

	return s
}

// RecordFromBaseline flattens a computed baseline for persistence.
func RecordFromBaseline(b baseline.Baseline) BaselineRecord {
	return BaselineRecord{
		Venue:             b.Venue,
		Symbol:            b.Symbol,
		ComputedAt:        b.ComputedAt,
		SampleCount:       b.SampleCount,
		Ready:             b.Ready,
		SpreadBpsMedian:   b.SpreadBpsMedian,
		DepthTotalMedian:  b.DepthTotalMedian,
		ImpactLargeMedian: b.ImpactLargeMedian,
		Volume24hMean:     b.Volume24hMean,
	}
}

// Baseline rebuilds the domain baseline from a persisted record.
func (r BaselineRecord) Baseline() baseline.Baseline {
	return baseline.Baseline{
		Venue:             r.Venue,
		Symbol:            r.Symbol,
		ComputedAt:        r.ComputedAt,
		SampleCount:       r.SampleCount,
		Ready:             r.Ready,
		SpreadBpsMedian:   r.SpreadBpsMedian,
		DepthTotalMedian:  r.DepthTotalMedian,
		ImpactLargeMedian: r.ImpactLargeMedian,
		Volume24hMean:     r.Volume24hMean,
	}
}
