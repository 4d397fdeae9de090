package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() HTTPOptions {
	return HTTPOptions{Timeout: 5 * time.Second, RequestsPerSec: 100, Burst: 10, MaxRetryTimeout: 5 * time.Second}
}

func TestYahooFetchDailyBars(t *testing.T) {
	t1 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC).Unix()
	t2 := time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC).Unix()
	t3 := time.Date(2024, 1, 4, 14, 30, 0, 0, time.UTC).Unix()
	body := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%d,%d,%d],"indicators":{"quote":[{
		"open":[187.1,null,182.1],"high":[188.4,null,183.1],"low":[183.8,null,180.9],
		"close":[185.6,null,181.9],"volume":[82488700,null,71983600]}]}}],"error":null}}`, t1, t2, t3)

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewYahooFetcher(testOptions())
	f.BaseURL = srv.URL

	bars, err := f.FetchDailyBars(context.Background(), "SPX", 250)
	require.NoError(t, err)
	assert.Contains(t, path, "/v8/finance/chart/%5EGSPC")
	assert.Contains(t, path, "range=1y")
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Date.Equal(day(2024, 1, 2)))
	assert.Equal(t, 181.9, bars[1].Close)
	assert.Equal(t, int64(71983600), bars[1].Volume)

	bars, err = f.FetchDailyBars(context.Background(), "SPX", 1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.True(t, bars[0].Date.Equal(day(2024, 1, 4)))
}

func TestYahooClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewYahooFetcher(testOptions())
	f.BaseURL = srv.URL

	_, err := f.FetchDailyBars(context.Background(), "NOPE", 100)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestVsTraderRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"timestamp":1704290400,"open":2,"high":3,"low":1,"close":2.5,"volume":10},
			{"timestamp":1704204000,"open":1,"high":2,"low":1,"close":1.5,"volume":20}]`))
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "secret", testOptions())
	bars, err := f.FetchDailyBars(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	require.Len(t, bars, 2)
	assert.Equal(t, 1.5, bars[0].Close)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
}
