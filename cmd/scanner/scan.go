package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"WatchlistScanner/internal/notifier"
	"WatchlistScanner/internal/scanner"
)

func scanCmd(g *globalFlags) *cobra.Command {
	var (
		outDir  string
		last    int
		allBars bool
		notify  bool
		record  bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the watchlist once and print the signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, g.tickers, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.close()
			if last > 0 {
				a.scanner.Config.EvaluateLast = last
			}
			if allBars {
				a.scanner.Config.AllBars = true
			}

			tickers, err := a.tickers()
			if err != nil {
				return err
			}
			report, err := a.scanner.Run(ctx, tickers)
			if err != nil {
				return err
			}

			fmt.Println(notifier.RenderReport(report.Signals))
			printIssues(report)

			if outDir != "" {
				if err := writeOutputs(outDir, report); err != nil {
					return err
				}
			}
			if record {
				rec := a.newRecorder()
				defer rec.Close()
				if err := rec.RecordScan(ctx, report); err != nil {
					return fmt.Errorf("record scan: %w", err)
				}
			}
			if notify {
				if !cfg.TelegramEnabled() {
					return fmt.Errorf("--notify needs telegram.bot_token and telegram.chat_id")
				}
				tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
				if err := tn.SendWithRetry(ctx, notifier.FormatScanSummary(report, cfg.Scan.Top), 3); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for the report and TradingView list")
	cmd.Flags().IntVar(&last, "last", 0, "evaluate the last N bars of each ticker")
	cmd.Flags().BoolVar(&allBars, "all-bars", false, "evaluate every bar after warm-up")
	cmd.Flags().BoolVar(&notify, "notify", false, "send the summary to Telegram")
	cmd.Flags().BoolVar(&record, "record", false, "store the run in the SQLite history")
	return cmd
}

func printIssues(r *scanner.Report) {
	fmt.Printf("run %s: %d tickers, %d scanned, %d skipped, %d signals in %s\n",
		r.RunID, r.Tickers, r.Scanned, r.Skipped(), len(r.Signals), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	for _, is := range r.Issues {
		if is.Outcome == scanner.OutcomeFailed {
			fmt.Printf("  %s failed: %s\n", is.Ticker, is.Reason)
		}
	}
}

func writeOutputs(dir string, r *scanner.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	stamp := r.StartedAt.Format("20060102_150405")
	reportPath := filepath.Join(dir, "scan_"+stamp+".txt")
	if err := os.WriteFile(reportPath, []byte(notifier.RenderReport(r.Signals)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	listPath := filepath.Join(dir, "tradingview_"+stamp+".txt")
	if err := os.WriteFile(listPath, []byte(notifier.TradingViewList(r.Signals)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write tradingview list: %w", err)
	}
	log.Info().Str("report", reportPath).Str("tradingview", listPath).Msg("scan outputs written")
	return nil
}
