package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"WatchlistScanner/internal/model"
)

// Updater downloads recent bars and merges them into the CSV store.
type Updater struct {
	Fetcher Fetcher
	Store   *CSVSource
	Days    int
}

// Update fetches ticker and writes the merged history back. Downloaded bars
// replace stored bars of the same day. It returns the number of new days.
func (u *Updater) Update(ctx context.Context, ticker string) (int, error) {
	existing, err := u.Store.Load(ctx, ticker)
	if err != nil && !errors.Is(err, ErrNoData) {
		return 0, err
	}
	fresh, err := u.Fetcher.FetchDailyBars(ctx, ticker, u.Days)
	if err != nil {
		return 0, fmt.Errorf("%s fetch %s: %w", u.Fetcher.Name(), ticker, err)
	}
	if len(fresh) == 0 {
		return 0, fmt.Errorf("%s fetch %s: %w", u.Fetcher.Name(), ticker, ErrNoData)
	}

	merged := MergeBars(existing.Bars, fresh)
	added := len(merged) - len(existing.Bars)
	if err := u.Store.Save(model.BarSeries{Symbol: ticker, Bars: merged}); err != nil {
		return 0, err
	}
	log.Debug().Str("ticker", ticker).Int("added", added).Int("total", len(merged)).Msg("bar history updated")
	return added, nil
}

// MergeBars combines two histories. Bars in newer win on equal dates.
func MergeBars(older, newer []model.PriceBar) []model.PriceBar {
	all := make([]model.PriceBar, 0, len(older)+len(newer))
	all = append(all, older...)
	all = append(all, newer...)
	return cleanBars(all)
}
