package market

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BookLevel is a single price level on one side of an order book.
type BookLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Notional returns price multiplied by quantity.
func (l BookLevel) Notional() decimal.Decimal {
	return l.Price.Mul(l.Quantity)
}

// Candle is one hourly OHLC bar.
type Candle struct {
	OpenTime time.Time       `json:"open_time"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
}

// RawVenueSample is the normalized per-venue payload consumed by the
// calculator. Adapters are responsible for unit normalization (contract
// multipliers, quote-currency conversion) before the sample reaches this
// shape. Optional fields are nil when the venue did not report them.
type RawVenueSample struct {
	Venue      string    `json:"venue"`
	Symbol     string    `json:"symbol"`
	ObservedAt time.Time `json:"observed_at"`

	LastPrice      *decimal.Decimal `json:"last_price,omitempty"`
	BestBid        *decimal.Decimal `json:"best_bid,omitempty"`
	BestAsk        *decimal.Decimal `json:"best_ask,omitempty"`
	QuoteVolume24h *decimal.Decimal `json:"quote_volume_24h,omitempty"`

	// Bids are ordered best (highest price) first, asks best (lowest) first.
	Bids []BookLevel `json:"bids,omitempty"`
	Asks []BookLevel `json:"asks,omitempty"`

	FundingRate  *decimal.Decimal `json:"funding_rate,omitempty"`
	OpenInterest *decimal.Decimal `json:"open_interest_notional,omitempty"`

	// Candles are hourly bars ordered oldest first.
	Candles []Candle `json:"candles,omitempty"`

	// Err marks the sample as unusable for this cycle. All derived metrics
	// stay nil downstream.
	Err *FetchError `json:"error,omitempty"`
}

// Errored reports whether the sample carries a fetch or parse failure.
func (s *RawVenueSample) Errored() bool {
	return s.Err != nil
}

// Fetch error codes recorded on a sample.
const (
	ErrCodeNetwork        = "network_error"
	ErrCodeTimeout        = "venue_timeout"
	ErrCodeBadPayload     = "bad_payload"
	ErrCodeSymbolNotFound = "symbol_not_found"
	ErrCodeUnavailable    = "market_data_unavailable"
)

// FetchError describes why a venue sample could not be collected.
type FetchError struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

func (e *FetchError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// NewFetchError builds a tagged fetch error.
func NewFetchError(code, format string, args ...any) *FetchError {
	return &FetchError{Code: code, Detail: fmt.Sprintf(format, args...)}
}
