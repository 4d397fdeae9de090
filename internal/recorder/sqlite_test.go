package recorder

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/scanner"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func sampleReport(runID string, started time.Time) *scanner.Report {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &scanner.Report{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Rules:      []string{"ultimate", "range_level"},
		Tickers:    3,
		Scanned:    2,
		Issues:     []scanner.Issue{{Ticker: "TINY", Outcome: scanner.OutcomeSkipped, Reason: "insufficient data"}},
		Signals: []model.Signal{
			{
				Ticker: "AAPL", Date: date, Price: 180.5, Rule: "ultimate", Side: model.SideBuy, Score: 71.5,
				Conditions: map[string]bool{"trend_up": true, "channel_printing": true, "efi_bearish": false},
				Oscillator: -0.4, Color: model.ColorStrongBearish, NormalizedPrice: -0.3, Basis: 182,
				ZonePosition: 12, ZoneLabel: model.ZoneBuy, Nearest: model.Near0,
				ChannelDuration: 14, ChannelUpper: 184, ChannelLower: 178,
				Trend: model.TrendUp, Fader: model.FaderGreen, VolumeRatio: 1.4,
			},
			{
				Ticker: "MSFT", Date: date, Price: 410, Rule: "range_level", Side: model.SideBuy, Score: 40,
				Oscillator: 0.1, Color: model.ColorWeakBullish, NormalizedPrice: math.NaN(), Basis: math.NaN(),
				ZonePosition: math.NaN(), ChannelUpper: math.NaN(), ChannelLower: math.NaN(),
				Trend: model.TrendNeutral, VolumeRatio: 0.9,
			},
		},
	}
}

func TestRecordAndReadLatestRun(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)

	require.NoError(t, r.RecordScan(ctx, sampleReport("run-1", t0)))
	later := sampleReport("run-2", t0.Add(24*time.Hour))
	later.Signals = later.Signals[1:]
	require.NoError(t, r.RecordScan(ctx, later))

	run, signals, err := r.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "run-2", run.RunID)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 1, run.Signals)
	assert.True(t, run.StartedAt.Equal(t0.Add(24*time.Hour)))
	require.Len(t, signals, 1)

	s := signals[0]
	assert.Equal(t, "MSFT", s.Ticker)
	assert.True(t, math.IsNaN(s.NormalizedPrice))
	assert.True(t, math.IsNaN(s.ChannelUpper))
	assert.Equal(t, model.ColorWeakBullish, s.Color)
	assert.Equal(t, model.ZoneUndefined, s.ZoneLabel)
	assert.Nil(t, s.Conditions)
}

func TestRecordRoundTripsSignalFields(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()
	require.NoError(t, r.RecordScan(ctx, sampleReport("run-1", time.Now())))

	_, signals, err := r.LatestRun(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	s := signals[0]
	assert.Equal(t, "AAPL", s.Ticker)
	assert.Equal(t, 71.5, s.Score)
	assert.True(t, s.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, model.SideBuy, s.Side)
	assert.Equal(t, model.ColorStrongBearish, s.Color)
	assert.Equal(t, model.ZoneBuy, s.ZoneLabel)
	assert.Equal(t, model.Near0, s.Nearest)
	assert.Equal(t, model.TrendUp, s.Trend)
	assert.Equal(t, model.FaderGreen, s.Fader)
	assert.Equal(t, 14, s.ChannelDuration)
	assert.Equal(t, 184.0, s.ChannelUpper)
	assert.Equal(t, map[string]bool{"channel_printing": true, "trend_up": true, "efi_bearish": false}, s.Conditions)
	assert.Equal(t, "MSFT", signals[1].Ticker)
}

func TestConditionsEncoding(t *testing.T) {
	conds := map[string]bool{"trend_up": true, "zone_near_25": false, "channel_printing": true}
	enc := encodeConditions(conds)
	assert.Equal(t, "channel_printing=true,trend_up=true,zone_near_25=false", enc)
	assert.Equal(t, conds, decodeConditions(enc))

	assert.Equal(t, "", encodeConditions(nil))
	assert.Nil(t, decodeConditions(""))
	assert.Equal(t, map[string]bool{"trend_up": true, "fader_green": true}, decodeConditions("fader_green,trend_up"))
}

func TestLatestRunEmpty(t *testing.T) {
	run, signals, err := openTemp(t).LatestRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, run)
	assert.Nil(t, signals)
}

func TestDuplicateRunRejected(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()
	require.NoError(t, r.RecordScan(ctx, sampleReport("run-1", time.Now())))
	assert.Error(t, r.RecordScan(ctx, sampleReport("run-1", time.Now())))

	// the failed transaction left nothing behind
	_, signals, err := r.LatestRun(ctx)
	require.NoError(t, err)
	assert.Len(t, signals, 2)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordScan(context.Background(), &scanner.Report{}))
	run, signals, err := r.LatestRun(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, run)
	assert.Nil(t, signals)
	assert.NoError(t, r.Close())
}
