package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"WatchlistScanner/internal/collector"
	"WatchlistScanner/internal/config"
	"WatchlistScanner/internal/recorder"
	"WatchlistScanner/internal/scanner"
	"WatchlistScanner/internal/scheduler"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg       *config.Config
	collector *collector.Collector
	scanner   *scanner.Scanner
	tickers   scheduler.TickerSource
	redis     *redis.Client
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	opts := collector.HTTPOptions{ProxyURL: cfg.Proxy, RequestsPerSec: cfg.Data.RequestsPerSec}
	switch cfg.Data.Source {
	case config.SourceVsTrader:
		return collector.NewVsTraderFetcher(cfg.Data.VsTrader.BaseURL, cfg.Data.VsTrader.APIKey, opts)
	case config.SourceMock:
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(opts)
	}
}

func newApp(ctx context.Context, cfg *config.Config, tickerFlag string, reg prometheus.Registerer) (*app, error) {
	a := &app{cfg: cfg}

	var src collector.Source
	if cfg.Data.Source == config.SourceCSV {
		src = &collector.CSVSource{Dir: cfg.Data.Dir}
	} else {
		f := newFetcher(cfg)
		src = &collector.FetcherSource{Fetcher: f, Days: cfg.Data.Days}
		log.Info().Str("fetcher", f.Name()).Msg("data source")
	}

	if cfg.Cache.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable, cache will fall through")
		}
		src = collector.NewCachedSource(src, a.redis, cfg.Cache.TTL, cfg.Cache.Prefix)
	}
	a.collector = collector.NewCollector(src, cfg.Data.Timeframe)

	rc, err := cfg.RuleConfig()
	if err != nil {
		return nil, err
	}
	a.scanner = scanner.New(a.collector, rc, cfg.Scan.Workers, cfg.Scan.TickerTimeout, scanner.NewMetrics(reg))

	a.tickers = func() ([]string, error) {
		if list := splitTickers(tickerFlag); len(list) > 0 {
			return list, nil
		}
		if cfg.Data.TickerList != "" {
			return collector.ReadTickerList(cfg.Data.TickerList)
		}
		list, err := collector.ListTickers(cfg.Data.Dir)
		if err != nil {
			return nil, fmt.Errorf("no ticker list configured: %w", err)
		}
		return list, nil
	}
	return a, nil
}

func (a *app) newRecorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	rec, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return rec
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
}
