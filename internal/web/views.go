package web

import (
	"time"

	"github.com/shopspring/decimal"

	"liquidity-radar/internal/storage"
)

type snapshotView struct {
	Venue      string    `json:"venue"`
	Symbol     string    `json:"symbol"`
	ObservedAt time.Time `json:"observed_at"`

	Errored     bool    `json:"errored"`
	ErrorDetail *string `json:"error_detail,omitempty"`

	LastPrice      *decimal.Decimal `json:"last_price,omitempty"`
	PctChange1h    *decimal.Decimal `json:"pct_change_1h,omitempty"`
	PctChange24h   *decimal.Decimal `json:"pct_change_24h,omitempty"`
	QuoteVolume24h *decimal.Decimal `json:"quote_volume_24h,omitempty"`

	BestBid   *decimal.Decimal `json:"best_bid,omitempty"`
	BestAsk   *decimal.Decimal `json:"best_ask,omitempty"`
	Mid       *decimal.Decimal `json:"mid,omitempty"`
	SpreadBps *decimal.Decimal `json:"spread_bps,omitempty"`

	DepthBid1Pct   *decimal.Decimal `json:"depth_bid_1pct,omitempty"`
	DepthAsk1Pct   *decimal.Decimal `json:"depth_ask_1pct,omitempty"`
	DepthTotal1Pct *decimal.Decimal `json:"depth_total_1pct,omitempty"`

	ImpactSmallSlipBps      *decimal.Decimal `json:"impact_small_slip_bps,omitempty"`
	ImpactSmallInsufficient bool             `json:"impact_small_insufficient"`
	ImpactLargeSlipBps      *decimal.Decimal `json:"impact_large_slip_bps,omitempty"`
	ImpactLargeInsufficient bool             `json:"impact_large_insufficient"`

	FundingRate  *decimal.Decimal `json:"funding_rate,omitempty"`
	OpenInterest *decimal.Decimal `json:"open_interest,omitempty"`

	RealizedVol24h  *decimal.Decimal `json:"realized_vol_24h,omitempty"`
	HighLowRange24h *decimal.Decimal `json:"high_low_range_24h,omitempty"`
	CandleCount     int              `json:"candle_count"`
}

func newSnapshotView(rec storage.SnapshotRecord) snapshotView {
	return snapshotView{
		Venue:      rec.Venue,
		Symbol:     rec.Symbol,
		ObservedAt: rec.ObservedAt,

		Errored:     rec.Errored,
		ErrorDetail: rec.ErrorDetail,

		LastPrice:      rec.LastPrice,
		PctChange1h:    rec.PctChange1h,
		PctChange24h:   rec.PctChange24h,
		QuoteVolume24h: rec.QuoteVolume24h,

		BestBid:   rec.BestBid,
		BestAsk:   rec.BestAsk,
		Mid:       rec.Mid,
		SpreadBps: rec.SpreadBps,

		DepthBid1Pct:   rec.DepthBid1Pct,
		DepthAsk1Pct:   rec.DepthAsk1Pct,
		DepthTotal1Pct: rec.DepthTotal1Pct,

		ImpactSmallSlipBps:      rec.ImpactSmallSlipBps,
		ImpactSmallInsufficient: rec.ImpactSmallInsufficient,
		ImpactLargeSlipBps:      rec.ImpactLargeSlipBps,
		ImpactLargeInsufficient: rec.ImpactLargeInsufficient,

		FundingRate:  rec.FundingRate,
		OpenInterest: rec.OpenInterest,

		RealizedVol24h:  rec.RealizedVol24h,
		HighLowRange24h: rec.HighLowRange24h,
		CandleCount:     rec.CandleCount,
	}
}

type baselineView struct {
	Venue       string    `json:"venue"`
	Symbol      string    `json:"symbol"`
	ComputedAt  time.Time `json:"computed_at"`
	SampleCount int       `json:"sample_count"`
	Ready       bool      `json:"ready"`

	SpreadBpsMedian   *decimal.Decimal `json:"spread_bps_median,omitempty"`
	DepthTotalMedian  *decimal.Decimal `json:"depth_total_median,omitempty"`
	ImpactLargeMedian *decimal.Decimal `json:"impact_large_median,omitempty"`
	Volume24hMean     *decimal.Decimal `json:"volume_24h_mean,omitempty"`
}

func newBaselineView(rec storage.BaselineRecord) baselineView {
	return baselineView{
		Venue:             rec.Venue,
		Symbol:            rec.Symbol,
		ComputedAt:        rec.ComputedAt,
		SampleCount:       rec.SampleCount,
		Ready:             rec.Ready,
		SpreadBpsMedian:   rec.SpreadBpsMedian,
		DepthTotalMedian:  rec.DepthTotalMedian,
		ImpactLargeMedian: rec.ImpactLargeMedian,
		Volume24hMean:     rec.Volume24hMean,
	}
}

type alertView struct {
	ID         int64            `json:"id"`
	Venue      string           `json:"venue"`
	Symbol     string           `json:"symbol"`
	Type       string           `json:"type"`
	Severity   string           `json:"severity"`
	Message    string           `json:"message"`
	Threshold  *decimal.Decimal `json:"threshold,omitempty"`
	Observed   *decimal.Decimal `json:"observed,omitempty"`
	Baseline   *decimal.Decimal `json:"baseline,omitempty"`
	ObservedAt time.Time        `json:"observed_at"`
	CreatedAt  time.Time        `json:"created_at"`
}

func newAlertView(rec storage.AlertRecord) alertView {
	return alertView{
		ID:         rec.ID,
		Venue:      rec.Venue,
		Symbol:     rec.Symbol,
		Type:       rec.AlertType,
		Severity:   rec.Severity,
		Message:    rec.Message,
		Threshold:  rec.Threshold,
		Observed:   rec.Observed,
		Baseline:   rec.Baseline,
		ObservedAt: rec.ObservedAt,
		CreatedAt:  rec.CreatedAt,
	}
}
