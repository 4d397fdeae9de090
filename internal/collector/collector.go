package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"WatchlistScanner/internal/model"
)

// Timeframes a Collector can deliver.
const (
	Daily  = "daily"
	Weekly = "weekly"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.PriceBar
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.Price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	today := model.NormalizeDate(time.Now())
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   today.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector loads a ticker's bars from its Source and shapes them into the
// configured timeframe.
type Collector struct {
	Source    Source
	Timeframe string
}

// NewCollector creates a new Collector.
func NewCollector(source Source, timeframe string) *Collector {
	if timeframe == "" {
		timeframe = Daily
	}
	return &Collector{Source: source, Timeframe: timeframe}
}

// Collect returns the validated series for one ticker.
func (c *Collector) Collect(ctx context.Context, ticker string) (model.BarSeries, error) {
	series, err := c.Source.Load(ctx, ticker)
	if err != nil {
		return model.BarSeries{}, err
	}
	if c.Timeframe == Weekly {
		daily := len(series.Bars)
		series.Bars = AggregateWeekly(series.Bars)
		log.Debug().Str("ticker", ticker).Int("daily", daily).Int("weekly", len(series.Bars)).Msg("aggregated to weekly bars")
	}
	if err := series.Validate(); err != nil {
		return model.BarSeries{}, fmt.Errorf("%s: %w", ticker, err)
	}
	return series, nil
}
