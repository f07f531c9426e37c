package alerting

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"liquidity-radar/internal/detector"
)

// AlertSink persists an alert only when no alert of the same (venue, type)
// was stored within the trailing window. The insert must be conditional in
// one statement so the existence check cannot race a concurrent writer.
type AlertSink interface {
	SaveAlertIfAbsent(ctx context.Context, alert detector.Alert, window time.Duration) (bool, error)
}

// Deduper suppresses repeated candidate alerts of the same (venue, type)
// within the dedupe window. It is a pure existence check, not a rate limiter:
// one persisted alert per key per window, regardless of severity changes
// inside the window.
type Deduper struct {
	sink     AlertSink
	notifier Notifier
	window   time.Duration
	logger   zerolog.Logger
}

// NewDeduper wires the sink and an optional notifier for alerts that survive
// deduplication.
func NewDeduper(sink AlertSink, notifier Notifier, window time.Duration, logger zerolog.Logger) *Deduper {
	if window <= 0 {
		window = time.Hour
	}
	return &Deduper{
		sink:     sink,
		notifier: notifier,
		window:   window,
		logger:   logger.With().Str("component", "deduper").Logger(),
	}
}

// Process persists the candidate unless a matching alert already exists
// within the window, then notifies on success. A notifier failure is logged
// but does not undo the persisted alert.
func (d *Deduper) Process(ctx context.Context, alert detector.Alert) (bool, error) {
	persisted, err := d.sink.SaveAlertIfAbsent(ctx, alert, d.window)
	if err != nil {
		return false, err
	}
	if !persisted {
		d.logger.Info().
			Str("venue", alert.Venue).
			Str("type", string(alert.Type)).
			Msg("alert suppressed by dedupe window")
		return false, nil
	}

	d.logger.Info().
		Str("venue", alert.Venue).
		Str("type", string(alert.Type)).
		Str("severity", string(alert.Severity)).
		Str("message", alert.Message).
		Msg("alert persisted")

	if d.notifier != nil {
		if err := d.notifier.Notify(ctx, alert); err != nil {
			d.logger.Error().Err(err).
				Str("venue", alert.Venue).
				Str("type", string(alert.Type)).
				Msg("failed to dispatch alert")
		}
	}
	return true, nil
}
