package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"WatchlistScanner/internal/collector"
	"WatchlistScanner/internal/config"
)

func downloadCmd(g *globalFlags) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download daily bars into the CSV data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.Data.Days
			}

			tickers := splitTickers(g.tickers)
			if len(tickers) == 0 {
				if cfg.Data.TickerList == "" {
					return fmt.Errorf("download needs --tickers or data.ticker_list")
				}
				if tickers, err = collector.ReadTickerList(cfg.Data.TickerList); err != nil {
					return err
				}
			}

			fetchCfg := *cfg
			if fetchCfg.Data.Source == config.SourceCSV {
				fetchCfg.Data.Source = config.SourceYahoo
			}
			u := &collector.Updater{
				Fetcher: newFetcher(&fetchCfg),
				Store:   &collector.CSVSource{Dir: cfg.Data.Dir},
				Days:    days,
			}

			failed := 0
			for i, t := range tickers {
				if err := ctx.Err(); err != nil {
					return err
				}
				added, err := u.Update(ctx, t)
				if err != nil {
					failed++
					log.Warn().Err(err).Str("ticker", t).Msg("download failed")
					continue
				}
				log.Info().Str("ticker", t).Int("added", added).Msgf("[%d/%d]", i+1, len(tickers))
			}
			fmt.Printf("downloaded %d of %d tickers into %s\n", len(tickers)-failed, len(tickers), cfg.Data.Dir)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "trading days to request (default data.days)")
	return cmd
}
