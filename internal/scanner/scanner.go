package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"WatchlistScanner/internal/calculator"
	"WatchlistScanner/internal/collector"
	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/strategy"
)

// Ticker outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Loader supplies the bars of one ticker.
type Loader interface {
	Collect(ctx context.Context, ticker string) (model.BarSeries, error)
}

// Issue records why a ticker produced no evaluation.
type Issue struct {
	Ticker  string
	Outcome string
	Reason  string
}

// Report is the result of one batch scan.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Rules      []string
	Tickers    int
	Scanned    int
	Issues     []Issue
	Signals    []model.Signal
}

// Skipped counts tickers that were skipped or failed.
func (r *Report) Skipped() int { return len(r.Issues) }

// Top returns at most n signals, best first.
func (r *Report) Top(n int) []model.Signal {
	if n <= 0 || n >= len(r.Signals) {
		return r.Signals
	}
	return r.Signals[:n]
}

// ByRule groups signals by rule name, preserving order.
func (r *Report) ByRule() map[string][]model.Signal {
	out := make(map[string][]model.Signal)
	for _, s := range r.Signals {
		out[s.Rule] = append(out[s.Rule], s)
	}
	return out
}

// Scanner evaluates rule sets over a watchlist concurrently.
type Scanner struct {
	Loader  Loader
	Config  strategy.RuleConfig
	Workers int
	Timeout time.Duration
	Metrics *Metrics
}

// New creates a Scanner. Workers below 1 default to 8 and a zero timeout
// to 30 seconds per ticker.
func New(loader Loader, cfg strategy.RuleConfig, workers int, timeout time.Duration, metrics *Metrics) *Scanner {
	if workers < 1 {
		workers = 8
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Scanner{Loader: loader, Config: cfg, Workers: workers, Timeout: timeout, Metrics: metrics}
}

// Run scans every ticker. A ticker that cannot be loaded or is too short
// is recorded in the report and the batch carries on. Run returns an error
// only for an invalid rule configuration or a cancelled ctx.
func (s *Scanner) Run(ctx context.Context, tickers []string) (*Report, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Tickers:   len(tickers),
	}
	for _, r := range s.Config.Rules {
		report.Rules = append(report.Rules, r.Name)
	}
	logger := log.With().Str("component", "scanner").Str("run_id", report.RunID).Logger()
	logger.Info().Int("tickers", len(tickers)).Strs("rules", report.Rules).Int("workers", s.Workers).Msg("scan started")
	s.Metrics.Runs.Inc()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for _, ticker := range tickers {
		if gctx.Err() != nil {
			break
		}
		ticker := ticker
		g.Go(func() error {
			s.Metrics.ActiveWorkers.Inc()
			defer s.Metrics.ActiveWorkers.Dec()

			start := time.Now()
			signals, err := s.scanTicker(gctx, ticker)
			s.Metrics.TickerDuration.Observe(time.Since(start).Seconds())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome := classify(err)
				s.Metrics.Tickers.WithLabelValues(outcome).Inc()
				report.Issues = append(report.Issues, Issue{Ticker: ticker, Outcome: outcome, Reason: err.Error()})
				ev := logger.Debug()
				if outcome == OutcomeFailed {
					ev = logger.Warn()
				}
				ev.Err(err).Str("ticker", ticker).Str("outcome", outcome).Msg("ticker not evaluated")
				return nil
			}
			s.Metrics.Tickers.WithLabelValues(OutcomeOK).Inc()
			report.Scanned++
			for _, sig := range signals {
				s.Metrics.Signals.WithLabelValues(sig.Rule, string(sig.Side)).Inc()
			}
			report.Signals = append(report.Signals, signals...)
			return nil
		})
	}
	_ = g.Wait()

	SortSignals(report.Signals)
	sort.Slice(report.Issues, func(i, j int) bool { return report.Issues[i].Ticker < report.Issues[j].Ticker })
	report.FinishedAt = time.Now()
	s.Metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	logger.Info().
		Int("scanned", report.Scanned).
		Int("skipped", report.Skipped()).
		Int("signals", len(report.Signals)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("scan finished")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Scanner) scanTicker(ctx context.Context, ticker string) ([]model.Signal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	series, err := s.Loader.Collect(ctx, ticker)
	if err != nil {
		return nil, err
	}
	frame, err := calculator.Analyze(series, s.Config.Indicators)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return strategy.DetectFrame(frame, s.Config), nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, calculator.ErrInsufficientData), errors.Is(err, collector.ErrNoData):
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// SortSignals orders signals by score descending, then ticker, date and
// rule so repeated scans print identically.
func SortSignals(signals []model.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Rule < b.Rule
	})
}
