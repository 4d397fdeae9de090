package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchlistScanner/internal/model"
)

func TestAggregateWeekly(t *testing.T) {
	assert.Nil(t, AggregateWeekly(nil))

	var daily []model.PriceBar
	// 2024-01-01 is a Monday; two full weeks of five sessions each
	for i, d := range []int{1, 2, 3, 4, 5, 8, 9, 10, 11, 12} {
		p := float64(10 + i)
		daily = append(daily, model.PriceBar{
			Date: day(2024, 1, d), Open: p, High: p + 1, Low: p - 1, Close: p + 0.5, Volume: 100,
		})
	}

	weekly := AggregateWeekly(daily)
	require.Len(t, weekly, 2)

	w := weekly[0]
	assert.True(t, w.Date.Equal(day(2024, 1, 1)))
	assert.Equal(t, 10.0, w.Open)
	assert.Equal(t, 15.0, w.High)
	assert.Equal(t, 9.0, w.Low)
	assert.Equal(t, 14.5, w.Close)
	assert.Equal(t, int64(500), w.Volume)

	w = weekly[1]
	assert.True(t, w.Date.Equal(day(2024, 1, 8)))
	assert.Equal(t, 15.0, w.Open)
	assert.Equal(t, 19.5, w.Close)
}

func TestAggregateWeeklyAcrossYearBoundary(t *testing.T) {
	// 2024-12-30 and 2025-01-02 share ISO week 1 of 2025
	daily := []model.PriceBar{
		{Date: day(2024, 12, 30), Open: 1, High: 2, Low: 1, Close: 2, Volume: 1},
		{Date: day(2025, 1, 2), Open: 2, High: 3, Low: 1, Close: 3, Volume: 1},
	}
	weekly := AggregateWeekly(daily)
	require.Len(t, weekly, 1)
	assert.Equal(t, 3.0, weekly[0].Close)
}
