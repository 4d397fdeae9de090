package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchlistScanner/internal/model"
)

func TestFetcherSourceCleansBars(t *testing.T) {
	fetcher := &MockFetcher{Bars: map[string][]model.PriceBar{
		"AAPL": {
			{Date: day(2024, 1, 3), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
			{Date: day(2024, 1, 2), Open: 2, High: 2, Low: 2, Close: 2, Volume: 1},
			{Date: day(2024, 1, 3), Open: 3, High: 3, Low: 3, Close: 3, Volume: 1},
		},
	}}
	src := &FetcherSource{Fetcher: fetcher, Days: 10}

	series, err := src.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 2.0, series.Bars[0].Close)
	assert.Equal(t, 3.0, series.Bars[1].Close)
	assert.NoError(t, series.Validate())
}

func TestFetcherSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &FetcherSource{Fetcher: &MockFetcher{Err: boom}, Days: 10}
	_, err := src.Load(context.Background(), "AAPL")
	assert.ErrorIs(t, err, boom)

	src = &FetcherSource{Fetcher: &MockFetcher{Bars: map[string][]model.PriceBar{"AAPL": nil}}, Days: 10}
	_, err = src.Load(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoData)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src = &FetcherSource{Fetcher: &MockFetcher{Price: 10}, Days: 10}
	_, err = src.Load(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectorTimeframes(t *testing.T) {
	src := &FetcherSource{Fetcher: &MockFetcher{Price: 50}, Days: 140}

	daily, err := NewCollector(src, "").Collect(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 140, daily.Len())

	weekly, err := NewCollector(src, Weekly).Collect(context.Background(), "AAPL")
	require.NoError(t, err)
	// 140 consecutive calendar days span 20 or 21 ISO weeks
	assert.GreaterOrEqual(t, weekly.Len(), 20)
	assert.LessOrEqual(t, weekly.Len(), 21)
	assert.NoError(t, weekly.Validate())
}

func TestCollectorRejectsInvalidSeries(t *testing.T) {
	src := &stubSource{series: model.BarSeries{Symbol: "BAD", Bars: []model.PriceBar{
		{Date: day(2024, 1, 2), Open: 1, High: 1, Low: -1, Close: 1, Volume: 1},
	}}}
	_, err := NewCollector(src, Daily).Collect(context.Background(), "BAD")
	assert.Error(t, err)
}

func TestUpdaterMergesHistory(t *testing.T) {
	store := &CSVSource{Dir: t.TempDir()}
	require.NoError(t, store.Save(model.BarSeries{Symbol: "AAPL", Bars: []model.PriceBar{
		{Date: day(2024, 1, 2), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Date: day(2024, 1, 3), Open: 2, High: 2, Low: 2, Close: 2, Volume: 1},
	}}))
	fetcher := &MockFetcher{Bars: map[string][]model.PriceBar{"AAPL": {
		{Date: day(2024, 1, 3), Open: 5, High: 5, Low: 5, Close: 5, Volume: 1},
		{Date: day(2024, 1, 4), Open: 6, High: 6, Low: 6, Close: 6, Volume: 1},
	}}}
	u := &Updater{Fetcher: fetcher, Store: store, Days: 5}

	added, err := u.Update(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	got, err := store.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, []float64{1, 5, 6}, got.Closes())

	// a ticker with no stored history starts fresh
	added, err = (&Updater{Fetcher: &MockFetcher{Price: 10}, Store: store, Days: 30}).Update(context.Background(), "NEW")
	require.NoError(t, err)
	assert.Equal(t, 30, added)
}
