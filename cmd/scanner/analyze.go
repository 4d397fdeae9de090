package main

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"WatchlistScanner/internal/calculator"
	"WatchlistScanner/internal/strategy"
)

func f2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func analyzeCmd(g *globalFlags) *cobra.Command {
	var bars int
	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Show indicator values and rule verdicts for one ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, "", prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.close()

			ticker := strings.ToUpper(args[0])
			series, err := a.collector.Collect(ctx, ticker)
			if err != nil {
				return err
			}
			frame, err := calculator.Analyze(series, a.scanner.Config.Indicators)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Date", "Close", "EFI", "Color", "Norm", "Channel", "Zone", "Zone %", "Trend", "Fader", "RSI", "Vol x"})
			for i := max(0, frame.Len()-bars); i < frame.Len(); i++ {
				s := frame.Snapshot(i)
				t.AppendRow(table.Row{
					s.Date.Format("2006-01-02"), f2(s.Close), f2(s.Oscillator), s.Color, f2(s.NormalizedPrice),
					s.Channel.Duration, s.Zone.Label, f2(s.Zone.PositionPct), s.Trend, s.Fader, f2(s.RSI), f2(s.VolumeRatio),
				})
			}
			fmt.Println(t.Render())

			rt := table.NewWriter()
			rt.SetStyle(table.StyleLight)
			rt.AppendHeader(table.Row{"Rule", "Passed", "Score", "Failed conditions"})
			for _, rule := range a.scanner.Config.Rules {
				ev := strategy.Evaluate(frame, frame.Last(), rule)
				var failed []string
				for name, ok := range ev.Conditions {
					if !ok {
						failed = append(failed, name)
					}
				}
				sort.Strings(failed)
				rt.AppendRow(table.Row{rule.Name, ev.Passed, fmt.Sprintf("%.1f", ev.Score), strings.Join(failed, ", ")})
			}
			fmt.Println(rt.Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&bars, "bars", "n", 10, "number of recent bars to print")
	return cmd
}
