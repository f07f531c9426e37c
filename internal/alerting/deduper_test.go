package alerting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-radar/internal/detector"
)

// memorySink replays the storage dedupe contract in memory: one alert per
// (venue, type) per window, judged by insertion time.
type memorySink struct {
	now      time.Time
	inserted []struct {
		key string
		at  time.Time
	}
	failNext error
}

func (m *memorySink) SaveAlertIfAbsent(_ context.Context, alert detector.Alert, window time.Duration) (bool, error) {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return false, err
	}
	key := alert.Venue + ":" + string(alert.Type)
	for _, rec := range m.inserted {
		if rec.key == key && m.now.Sub(rec.at) < window {
			return false, nil
		}
	}
	m.inserted = append(m.inserted, struct {
		key string
		at  time.Time
	}{key, m.now})
	return true, nil
}

type recordingNotifier struct {
	delivered []detector.Alert
	err       error
}

func (r *recordingNotifier) Notify(_ context.Context, alert detector.Alert) error {
	if r.err != nil {
		return r.err
	}
	r.delivered = append(r.delivered, alert)
	return nil
}

func candidate(venue string, typ detector.AlertType) detector.Alert {
	return detector.Alert{
		Venue:    venue,
		Symbol:   "MONUSDT",
		Type:     typ,
		Severity: detector.SeverityWarn,
		Message:  "test candidate",
	}
}

func TestDeduperOnePerWindow(t *testing.T) {
	sink := &memorySink{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	d := NewDeduper(sink, nil, time.Hour, zerolog.Nop())

	persisted, err := d.Process(context.Background(), candidate("binance", detector.AlertSpreadWiden))
	require.NoError(t, err)
	assert.True(t, persisted)

	sink.now = sink.now.Add(10 * time.Minute)
	persisted, err = d.Process(context.Background(), candidate("binance", detector.AlertSpreadWiden))
	require.NoError(t, err)
	assert.False(t, persisted, "second candidate inside the window is suppressed")
	assert.Len(t, sink.inserted, 1)
}

func TestDeduperWindowExpiry(t *testing.T) {
	sink := &memorySink{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	d := NewDeduper(sink, nil, time.Hour, zerolog.Nop())

	_, err := d.Process(context.Background(), candidate("binance", detector.AlertVolumeSpike))
	require.NoError(t, err)

	sink.now = sink.now.Add(61 * time.Minute)
	persisted, err := d.Process(context.Background(), candidate("binance", detector.AlertVolumeSpike))
	require.NoError(t, err)
	assert.True(t, persisted, "a candidate after the window expires persists again")
	assert.Len(t, sink.inserted, 2)
}

func TestDeduperKeyIsVenueAndType(t *testing.T) {
	sink := &memorySink{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	d := NewDeduper(sink, nil, time.Hour, zerolog.Nop())

	for _, a := range []detector.Alert{
		candidate("binance", detector.AlertSpreadWiden),
		candidate("okx", detector.AlertSpreadWiden),
		candidate("binance", detector.AlertDepthShrink),
	} {
		persisted, err := d.Process(context.Background(), a)
		require.NoError(t, err)
		assert.True(t, persisted)
	}
	assert.Len(t, sink.inserted, 3, "different venues and types never collide")
}

func TestDeduperNotifiesOnlyPersisted(t *testing.T) {
	sink := &memorySink{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	d := NewDeduper(sink, notifier, time.Hour, zerolog.Nop())

	_, err := d.Process(context.Background(), candidate("binance", detector.AlertSpreadWiden))
	require.NoError(t, err)
	_, err = d.Process(context.Background(), candidate("binance", detector.AlertSpreadWiden))
	require.NoError(t, err)

	assert.Len(t, notifier.delivered, 1, "suppressed candidates are never dispatched")
}

func TestDeduperNotifierFailureDoesNotFail(t *testing.T) {
	sink := &memorySink{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	d := NewDeduper(sink, notifier, time.Hour, zerolog.Nop())

	persisted, err := d.Process(context.Background(), candidate("binance", detector.AlertSpreadWiden))
	require.NoError(t, err, "delivery failure must not surface as a pipeline error")
	assert.True(t, persisted)
}

func TestDeduperSinkError(t *testing.T) {
	sink := &memorySink{now: time.Now(), failNext: errors.New("db down")}
	d := NewDeduper(sink, nil, time.Hour, zerolog.Nop())

	persisted, err := d.Process(context.Background(), candidate("binance", detector.AlertSpreadWiden))
	require.Error(t, err)
	assert.False(t, persisted)
}
