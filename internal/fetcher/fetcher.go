package fetcher

import (
	"context"

	"liquidity-radar/internal/market"
)

// VenueFetcher retrieves one normalized sample for a single venue. Exchange
// wire formats and unit normalization live behind this boundary; the core
// only ever sees the RawVenueSample shape.
type VenueFetcher interface {
	Fetch(ctx context.Context) (market.RawVenueSample, error)
}

// Static returns a fixed sample; used by the simulate command and tests.
type Static struct {
	Sample market.RawVenueSample
}

// Fetch returns the configured sample unchanged.
func (s *Static) Fetch(ctx context.Context) (market.RawVenueSample, error) {
	return s.Sample, nil
}

var _ VenueFetcher = (*Static)(nil)
