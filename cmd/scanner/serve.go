package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"WatchlistScanner/internal/collector"
	"WatchlistScanner/internal/config"
	"WatchlistScanner/internal/notifier"
	"WatchlistScanner/internal/scheduler"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled scans with Telegram commands and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, g.tickers, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			defer a.close()

			rec := a.newRecorder()
			defer rec.Close()

			var msg scheduler.Messenger
			var tn *notifier.TelegramNotifier
			if cfg.TelegramEnabled() {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
				msg = tn
			} else {
				log.Warn().Msg("telegram not configured, notifications disabled")
			}

			var updater *collector.Updater
			if cfg.Data.Source == config.SourceCSV {
				updater = &collector.Updater{
					Fetcher: newFetcher(cfg),
					Store:   &collector.CSVSource{Dir: cfg.Data.Dir},
					Days:    30,
				}
			}

			sched := scheduler.NewScheduler(ctx, a.scanner, updater, a.tickers, msg, rec, cfg.Scan.Top)
			if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.UpdateCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if cfg.Metrics.Addr != "" {
				srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Msg("metrics server")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}
			if runOnStart {
				go func() {
					if _, err := sched.RunScanNow(ctx); err != nil {
						log.Error().Err(err).Msg("startup scan")
					}
				}()
			}

			log.Info().Str("scan_cron", cfg.Schedule.ScanCron).Msg("scanner is running, press Ctrl+C to stop")
			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "scan once immediately")
	return cmd
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
