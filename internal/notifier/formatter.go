package notifier

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/scanner"
	"WatchlistScanner/internal/strategy"
)

func num(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// FormatSignal renders one signal as a short HTML block.
func FormatSignal(s model.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> %s %s | score <b>%.1f</b>\n", html.EscapeString(s.Ticker), s.Side, html.EscapeString(s.Rule), s.Score)
	fmt.Fprintf(&b, "  close %s | EFI %s (%s) | norm %s\n", num(s.Price, 2), num(s.Oscillator, 2), s.Color, num(s.NormalizedPrice, 2))
	if s.ChannelDuration > 0 {
		fmt.Fprintf(&b, "  channel %dd [%s - %s]\n", s.ChannelDuration, num(s.ChannelLower, 2), num(s.ChannelUpper, 2))
	}
	if s.ZoneLabel != model.ZoneUndefined {
		fmt.Fprintf(&b, "  zone %s %s%% | %s | %s\n", s.ZoneLabel, num(s.ZonePosition, 1), s.Trend, s.Fader)
	}
	if p := s.Plan; p.Type != model.TradeNone {
		fmt.Fprintf(&b, "  %s entry %s stop %s target %s (R:R %s)\n",
			p.Type, num(p.Entry, 2), num(p.Stop, 2), num(p.Target, 2), num(p.RewardRisk, 1))
	}
	return b.String()
}

// FormatScanSummary renders a scan report as a Telegram HTML message with
// the top signals.
func FormatScanSummary(r *scanner.Report, top int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Watchlist scan</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Tickers %d | scanned %d | skipped %d | signals %d\n",
		r.Tickers, r.Scanned, r.Skipped(), len(r.Signals))
	if len(r.Signals) == 0 {
		b.WriteString("\nNo setups today.")
		return b.String()
	}

	byRule := r.ByRule()
	rules := make([]string, 0, len(byRule))
	for name := range byRule {
		rules = append(rules, name)
	}
	sort.Strings(rules)
	b.WriteString("\n")
	for _, name := range rules {
		fmt.Fprintf(&b, "  %s: %d\n", html.EscapeString(name), len(byRule[name]))
	}

	b.WriteString("\n🏆 <b>Top setups</b>\n")
	for _, s := range r.Top(top) {
		b.WriteString(FormatSignal(s))
	}
	return b.String()
}

// RenderReport renders signals as a plain text table.
func RenderReport(signals []model.Signal) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Ticker", "Date", "Rule", "Side", "Score", "Close", "EFI", "Color", "Norm", "Zone %", "Channel", "Trend", "Vol x"})
	for i, s := range signals {
		t.AppendRow(table.Row{
			i + 1, s.Ticker, s.Date.Format("2006-01-02"), s.Rule, s.Side, num(s.Score, 1),
			num(s.Price, 2), num(s.Oscillator, 2), s.Color, num(s.NormalizedPrice, 2),
			num(s.ZonePosition, 1), s.ChannelDuration, s.Trend, num(s.VolumeRatio, 2),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 10, Align: text.AlignRight},
		{Number: 11, Align: text.AlignRight},
		{Number: 12, Align: text.AlignRight},
		{Number: 14, Align: text.AlignRight},
	})
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "", "", "", "", "", "signals", len(signals)})
	return t.Render()
}

// TradingViewList returns the signal tickers as a comma separated watchlist,
// each ticker once, in signal order.
func TradingViewList(signals []model.Signal) string {
	seen := make(map[string]bool)
	var tickers []string
	for _, s := range signals {
		if !seen[s.Ticker] {
			seen[s.Ticker] = true
			tickers = append(tickers, s.Ticker)
		}
	}
	return strings.Join(tickers, ",")
}

// FormatRules lists rule names with their descriptions.
func FormatRules(rules []strategy.RuleSet) string {
	var b strings.Builder
	b.WriteString("📋 <b>Active rules</b>\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "• <b>%s</b> (%s): %s\n", html.EscapeString(r.Name), r.Side, html.EscapeString(r.Description))
	}
	return b.String()
}
