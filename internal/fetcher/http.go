package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"liquidity-radar/internal/market"
)

// HTTPOptions parameterise the sample-feed fetcher.
type HTTPOptions struct {
	// SampleURL serves the normalized sample document for one venue.
	SampleURL string
	Venue     string
	Symbol    string
	Timeout   time.Duration
	UserAgent string
}

// HTTP pulls already-normalized venue samples from a collector sidecar over
// REST. It performs no exchange-specific parsing and no retries; a failed
// fetch simply waits for the next cycle.
type HTTP struct {
	opts   HTTPOptions
	logger zerolog.Logger
	client *http.Client
}

// NewHTTP constructs an HTTP sample fetcher.
func NewHTTP(opts HTTPOptions, logger zerolog.Logger) *HTTP {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTP{
		opts:   opts,
		logger: logger.With().Str("component", "sample_fetcher").Str("venue", opts.Venue).Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and decodes one sample document.
func (h *HTTP) Fetch(ctx context.Context) (market.RawVenueSample, error) {
	if h.opts.SampleURL == "" {
		return market.RawVenueSample{}, errors.New("sample url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.opts.SampleURL, nil)
	if err != nil {
		return market.RawVenueSample{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(h.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return market.RawVenueSample{}, fmt.Errorf("fetch venue sample: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return market.RawVenueSample{}, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return market.RawVenueSample{}, market.NewFetchError(
			market.ErrCodeSymbolNotFound, "%s returned 404 for %s", h.opts.Venue, h.opts.Symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return market.RawVenueSample{}, market.NewFetchError(
			market.ErrCodeUnavailable, "%s returned status %d", h.opts.Venue, resp.StatusCode)
	}

	var sample market.RawVenueSample
	if err := json.Unmarshal(payload, &sample); err != nil {
		return market.RawVenueSample{}, market.NewFetchError(
			market.ErrCodeBadPayload, "decode %s sample: %v", h.opts.Venue, err)
	}

	if sample.Venue == "" {
		sample.Venue = h.opts.Venue
	}
	if sample.Symbol == "" {
		sample.Symbol = h.opts.Symbol
	}
	if sample.ObservedAt.IsZero() {
		sample.ObservedAt = time.Now().UTC()
	}
	return sample, nil
}

var _ VenueFetcher = (*HTTP)(nil)
