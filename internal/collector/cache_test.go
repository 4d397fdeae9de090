package collector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchlistScanner/internal/model"
)

type stubSource struct {
	series model.BarSeries
	err    error
	calls  int
}

func (s *stubSource) Load(ctx context.Context, ticker string) (model.BarSeries, error) {
	s.calls++
	return s.series, s.err
}

func sampleSeries() model.BarSeries {
	return model.BarSeries{Symbol: "AAPL", Bars: []model.PriceBar{
		{Date: day(2024, 1, 2), Open: 187.1, High: 188.4, Low: 183.8, Close: 185.6, Volume: 82488700},
		{Date: day(2024, 1, 3), Open: 184.2, High: 185.8, Low: 183.4, Close: 184.2, Volume: 58414500},
	}}
}

func TestCachedSourceHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := &stubSource{}
	cache := NewCachedSource(src, db, time.Hour, "")

	data, err := json.Marshal(sampleSeries())
	require.NoError(t, err)
	mock.ExpectGet("bars:AAPL").SetVal(string(data))

	got, err := cache.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 0, src.calls)
	require.Equal(t, 2, got.Len())
	assert.True(t, got.Bars[1].Date.Equal(day(2024, 1, 3)))
	assert.Equal(t, 184.2, got.Bars[1].Close)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSourceMissStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := &stubSource{series: sampleSeries()}
	cache := NewCachedSource(src, db, time.Hour, "scan:")

	data, err := json.Marshal(sampleSeries())
	require.NoError(t, err)
	mock.ExpectGet("scan:AAPL").RedisNil()
	mock.ExpectSet("scan:AAPL", data, time.Hour).SetVal("OK")

	got, err := cache.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, sampleSeries(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSourceRedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := &stubSource{series: sampleSeries()}
	cache := NewCachedSource(src, db, time.Hour, "")

	mock.ExpectGet("bars:AAPL").SetErr(errors.New("connection refused"))

	got, err := cache.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 2, got.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSourceSourceError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := &stubSource{err: ErrNoData}
	cache := NewCachedSource(src, db, time.Hour, "")

	mock.ExpectGet("bars:ZZZ").RedisNil()

	_, err := cache.Load(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, ErrNoData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSourceInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCachedSource(&stubSource{}, db, time.Hour, "")

	mock.ExpectDel("bars:AAPL").SetVal(1)
	assert.NoError(t, cache.Invalidate(context.Background(), "AAPL"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
