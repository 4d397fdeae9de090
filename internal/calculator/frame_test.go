package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchlistScanner/internal/model"
)

func seriesFrom(symbol string, high, low, close []float64) model.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(close))
	for i := range close {
		bars[i] = model.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   close[i],
			High:   high[i],
			Low:    low[i],
			Close:  close[i],
			Volume: 1000,
		}
	}
	return model.BarSeries{Symbol: symbol, Bars: bars}
}

func TestAnalyze_Snapshot(t *testing.T) {
	high, low, close := flatThenRamp()
	frame, err := Analyze(seriesFrom("TEST", high, low, close), DefaultIndicatorConfig())
	require.NoError(t, err)
	require.Equal(t, 150, frame.Len())

	snap := frame.Snapshot(101)
	assert.Equal(t, 101, snap.Index)
	assert.True(t, snap.Channel.InSqueeze)
	assert.Equal(t, 52, snap.Channel.Duration)
	assert.Equal(t, model.TrendUp, snap.Trend)
	assert.True(t, snap.Zone.Defined)
	assert.Equal(t, model.ZoneBuy, snap.Zone.Label)
	assert.InDelta(t, 1.0, snap.VolumeRatio, 1e-12)
	assert.True(t, frame.Snapshot(99).CloseInChannel)

	last := frame.Snapshot(frame.Last())
	assert.False(t, last.Channel.InSqueeze)
	assert.Equal(t, model.ColorStrongBullish, last.Color)
	assert.Greater(t, last.NormalizedPrice, 0.0)
	assert.Equal(t, model.FaderGreen, last.Fader)
	// May 29: April's low is the flat base.
	assert.InDelta(t, 4.95, last.Shakeout.PriorMonthLow, 1e-12)
	assert.False(t, last.Shakeout.Found)
	assert.Equal(t, low[149], last.Low)
}

func TestAnalyze_InsufficientData(t *testing.T) {
	high, low, close := flatThenRamp()
	_, err := Analyze(seriesFrom("SHORT", high[:99], low[:99], close[:99]), DefaultIndicatorConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestAnalyze_InvalidSeries(t *testing.T) {
	high, low, close := flatThenRamp()
	s := seriesFrom("BAD", high, low, close)
	s.Bars[10].Date = s.Bars[9].Date
	_, err := Analyze(s, DefaultIndicatorConfig())
	assert.True(t, errors.Is(err, ErrInvalidSeries))
}

func TestIndicatorConfig_RequiredBars(t *testing.T) {
	cfg := DefaultIndicatorConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.RequiredBars())

	cfg.Trend.SMAPeriod = 200
	assert.Equal(t, 210, cfg.RequiredBars())
}
