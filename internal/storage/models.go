package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotRecord is a persisted per-venue metric observation.
type SnapshotRecord struct {
	ID         int64
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

	ImpactSmallSlipBps      *decimal.Decimal
	ImpactSmallInsufficient bool
	ImpactSmallShortfall    *decimal.Decimal
	ImpactLargeSlipBps      *decimal.Decimal
	ImpactLargeInsufficient bool
	ImpactLargeShortfall    *decimal.Decimal

	FundingRate  *decimal.Decimal
	OpenInterest *decimal.Decimal

	RealizedVol24h  *decimal.Decimal
	HighLowRange24h *decimal.Decimal
	CandleCount     int

	CreatedAt time.Time
}

// BaselineRecord is the persisted rolling reference for one venue.
type BaselineRecord struct {
	Venue       string
	Symbol      string
	ComputedAt  time.Time
	SampleCount int
	Ready       bool

	SpreadBpsMedian   *decimal.Decimal
	DepthTotalMedian  *decimal.Decimal
	ImpactLargeMedian *decimal.Decimal
	Volume24hMean     *decimal.Decimal
}

// AlertRecord captures an emitted alert for de-duplication and auditing.
type AlertRecord struct {
	ID         int64
	Venue      string
	Symbol     string
	AlertType  string
	Severity   string
	Message    string
	Threshold  *decimal.Decimal
	Observed   *decimal.Decimal
	Baseline   *decimal.Decimal
	ObservedAt time.Time
	CreatedAt  time.Time
}
