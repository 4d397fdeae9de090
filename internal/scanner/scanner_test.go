package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchlistScanner/internal/collector"
	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/strategy"
)

type stubLoader struct {
	series map[string]model.BarSeries
	errs   map[string]error
}

func (l *stubLoader) Collect(ctx context.Context, ticker string) (model.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.BarSeries{}, err
	}
	if err, ok := l.errs[ticker]; ok {
		return model.BarSeries{}, err
	}
	s, ok := l.series[ticker]
	if !ok {
		return model.BarSeries{}, fmt.Errorf("%s: %w", ticker, collector.ErrNoData)
	}
	return s, nil
}

// rampSeries is flat for 100 bars and then climbs, so the last bar is in
// an uptrend. lastVolume sets the volume of the final bar.
func rampSeries(symbol string, n int, lastVolume int64) model.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 5.0
		if i >= 100 {
			c = 5 + 2*float64(i-99)/50
		}
		bars[i] = model.PriceBar{
			Date: start.AddDate(0, 0, i), Open: c, High: c + 0.05, Low: c - 0.05, Close: c, Volume: 1000,
		}
	}
	bars[n-1].Volume = lastVolume
	return model.BarSeries{Symbol: symbol, Bars: bars}
}

func uptrendConfig() strategy.RuleConfig {
	cfg := strategy.DefaultRuleConfig()
	cfg.Rules = []strategy.RuleSet{{
		Name:    "uptrend",
		Side:    model.SideBuy,
		Require: [][]string{{"trend_up"}},
		Score:   []strategy.ScoreComponent{{Name: "volume", Metric: "volume_ratio", Weight: 10, Max: 100}},
	}}
	return cfg
}

func testLoader() *stubLoader {
	return &stubLoader{
		series: map[string]model.BarSeries{
			"MSFT":  rampSeries("MSFT", 150, 1000),
			"AAPL":  rampSeries("AAPL", 150, 1000),
			"HOT":   rampSeries("HOT", 150, 3000),
			"SHORT": rampSeries("SHORT", 50, 1000),
		},
		errs: map[string]error{"BROKEN": errors.New("disk on fire")},
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunCollectsAndOrdersSignals(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(testLoader(), uptrendConfig(), 3, time.Second, NewMetrics(reg))

	report, err := s.Run(context.Background(), []string{"MSFT", "SHORT", "AAPL", "MISSING", "BROKEN", "HOT"})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"uptrend"}, report.Rules)
	assert.Equal(t, 6, report.Tickers)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 3, report.Skipped())

	require.Len(t, report.Signals, 3)
	assert.Equal(t, "HOT", report.Signals[0].Ticker)
	assert.InDelta(t, 30, report.Signals[0].Score, 1e-9)
	assert.Equal(t, "AAPL", report.Signals[1].Ticker)
	assert.Equal(t, "MSFT", report.Signals[2].Ticker)
	assert.InDelta(t, 10, report.Signals[2].Score, 1e-9)

	require.Len(t, report.Issues, 3)
	assert.Equal(t, Issue{Ticker: "BROKEN", Outcome: OutcomeFailed, Reason: "disk on fire"}, report.Issues[0])
	assert.Equal(t, "MISSING", report.Issues[1].Ticker)
	assert.Equal(t, OutcomeSkipped, report.Issues[1].Outcome)
	assert.Equal(t, "SHORT", report.Issues[2].Ticker)
	assert.Equal(t, OutcomeSkipped, report.Issues[2].Outcome)

	assert.Equal(t, 3.0, counterValue(t, reg, "watchlist_scan_tickers_total", OutcomeOK))
	assert.Equal(t, 2.0, counterValue(t, reg, "watchlist_scan_tickers_total", OutcomeSkipped))
	assert.Equal(t, 1.0, counterValue(t, reg, "watchlist_scan_tickers_total", OutcomeFailed))
	assert.Equal(t, 3.0, counterValue(t, reg, "watchlist_scan_signals_total", "uptrend"))
}

func TestRunIsDeterministic(t *testing.T) {
	tickers := []string{"MSFT", "AAPL", "HOT", "SHORT"}
	first, err := New(testLoader(), uptrendConfig(), 4, time.Second, nil).Run(context.Background(), tickers)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := New(testLoader(), uptrendConfig(), 2, time.Second, nil).Run(context.Background(), tickers)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%+v", first.Signals), fmt.Sprintf("%+v", again.Signals))
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := uptrendConfig()
	cfg.Rules[0].Require = [][]string{{"no_such_condition"}}
	_, err := New(testLoader(), cfg, 1, time.Second, nil).Run(context.Background(), []string{"AAPL"})
	assert.ErrorIs(t, err, strategy.ErrUnknownCondition)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := New(testLoader(), uptrendConfig(), 1, time.Second, nil).Run(ctx, []string{"AAPL", "MSFT"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Signals)
}

func TestRunWithCollector(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: map[string][]model.PriceBar{
		"AAPL": rampSeries("AAPL", 150, 1000).Bars,
	}}
	c := collector.NewCollector(&collector.FetcherSource{Fetcher: fetcher, Days: 150}, collector.Daily)

	report, err := New(c, uptrendConfig(), 2, time.Second, nil).Run(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, report.Signals, 1)
	assert.Equal(t, "AAPL", report.Signals[0].Ticker)
	assert.Equal(t, model.TrendUp, report.Signals[0].Trend)
}

func TestReportHelpers(t *testing.T) {
	r := &Report{Signals: []model.Signal{
		{Ticker: "A", Rule: "x"}, {Ticker: "B", Rule: "y"}, {Ticker: "C", Rule: "x"},
	}}
	assert.Len(t, r.Top(2), 2)
	assert.Len(t, r.Top(0), 3)
	assert.Len(t, r.Top(10), 3)
	byRule := r.ByRule()
	assert.Len(t, byRule["x"], 2)
	assert.Equal(t, "C", byRule["x"][1].Ticker)
}

func TestSortSignals(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	signals := []model.Signal{
		{Ticker: "B", Date: d1, Rule: "a", Score: 50},
		{Ticker: "A", Date: d2, Rule: "a", Score: 50},
		{Ticker: "A", Date: d1, Rule: "b", Score: 50},
		{Ticker: "A", Date: d1, Rule: "a", Score: 50},
		{Ticker: "Z", Date: d1, Rule: "a", Score: 90},
	}
	SortSignals(signals)
	var got []string
	for _, s := range signals {
		got = append(got, fmt.Sprintf("%s/%s/%s", s.Ticker, s.Date.Format("01-02"), s.Rule))
	}
	assert.Equal(t, []string{"Z/01-01/a", "A/01-01/a", "A/01-01/b", "A/01-02/a", "B/01-01/a"}, got)
}
