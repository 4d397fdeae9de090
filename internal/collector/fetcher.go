package collector

import (
	"context"
	"errors"
	"fmt"

	"WatchlistScanner/internal/model"
)

// ErrNoData is returned when a source has nothing for a ticker.
var ErrNoData = errors.New("no data")

// Fetcher downloads daily bars from a market data API.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	Name() string
}

// Source loads the full bar history a scan analyzes.
type Source interface {
	Load(ctx context.Context, ticker string) (model.BarSeries, error)
}

// FetcherSource adapts a Fetcher into a Source that downloads a fixed
// number of days.
type FetcherSource struct {
	Fetcher Fetcher
	Days    int
}

func (s *FetcherSource) Load(ctx context.Context, ticker string) (model.BarSeries, error) {
	bars, err := s.Fetcher.FetchDailyBars(ctx, ticker, s.Days)
	if err != nil {
		return model.BarSeries{}, fmt.Errorf("%s fetch %s: %w", s.Fetcher.Name(), ticker, err)
	}
	if len(bars) == 0 {
		return model.BarSeries{}, fmt.Errorf("%s fetch %s: %w", s.Fetcher.Name(), ticker, ErrNoData)
	}
	return model.BarSeries{Symbol: ticker, Bars: cleanBars(bars)}, nil
}
