package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"WatchlistScanner/internal/collector"
	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/notifier"
	"WatchlistScanner/internal/recorder"
	"WatchlistScanner/internal/scanner"
)

// ErrScanRunning is returned when a scan is requested while one is active.
var ErrScanRunning = errors.New("scan already running")

// Messenger delivers chat messages.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// TickerSource returns the current watchlist.
type TickerSource func() ([]string, error)

// Scheduler runs scans on cron schedules and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Updater  *collector.Updater
	Tickers  TickerSource
	Notifier Messenger
	Recorder recorder.Recorder
	Ctx      context.Context
	Top      int

	mu      sync.Mutex
	running bool
	last    *scanner.Report
}

// NewScheduler creates a new Scheduler. updater may be nil when bars are
// maintained outside the process.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, updater *collector.Updater, tickers TickerSource, msg Messenger, rec recorder.Recorder, top int) *Scheduler {
	if top <= 0 {
		top = 20
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Updater:  updater,
		Tickers:  tickers,
		Notifier: msg,
		Recorder: rec,
		Ctx:      ctx,
		Top:      top,
	}
}

// RegisterAll registers the scan task and, with an updater, the data
// update task.
func (s *Scheduler) RegisterAll(scanCron, updateCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if s.Updater != nil && updateCron != "" {
		if _, err := s.Cron.AddFunc(updateCron, s.updateTask); err != nil {
			return fmt.Errorf("register update task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunScanNow scans the watchlist, records and announces the result.
func (s *Scheduler) RunScanNow(ctx context.Context) (*scanner.Report, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrScanRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	tickers, err := s.Tickers()
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	report, err := s.Scanner.Run(ctx, tickers)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	if err := s.Recorder.RecordScan(ctx, report); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("record scan")
	}
	s.trySend(ctx, notifier.FormatScanSummary(report, s.Top))
	return report, nil
}

func (s *Scheduler) scanTask() {
	log.Info().Msg("running scheduled scan")
	if _, err := s.RunScanNow(s.Ctx); err != nil {
		log.Error().Err(err).Msg("scheduled scan")
		if !errors.Is(err, ErrScanRunning) && s.Ctx.Err() == nil {
			s.trySend(s.Ctx, fmt.Sprintf("❌ Scan failed: %v", err))
		}
	}
}

// UpdateNow refreshes the stored bars of every watchlist ticker. It returns
// the number of tickers updated.
func (s *Scheduler) UpdateNow(ctx context.Context) (int, error) {
	if s.Updater == nil {
		return 0, errors.New("no updater configured")
	}
	tickers, err := s.Tickers()
	if err != nil {
		return 0, fmt.Errorf("load watchlist: %w", err)
	}
	updated := 0
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if _, err := s.Updater.Update(ctx, t); err != nil {
			log.Warn().Err(err).Str("ticker", t).Msg("update failed")
			continue
		}
		updated++
	}
	log.Info().Int("updated", updated).Int("tickers", len(tickers)).Msg("bar update finished")
	return updated, nil
}

func (s *Scheduler) updateTask() {
	if _, err := s.UpdateNow(s.Ctx); err != nil {
		log.Error().Err(err).Msg("scheduled update")
	}
}

// lastSignals returns the latest report's signals, falling back to the
// recorder after a restart.
func (s *Scheduler) lastSignals(ctx context.Context) ([]model.Signal, bool) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last != nil {
		return last.Signals, true
	}
	run, signals, err := s.Recorder.LatestRun(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load latest run")
		return nil, false
	}
	return signals, run != nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/scan":
		s.mu.Lock()
		busy := s.running
		s.mu.Unlock()
		if busy {
			return "A scan is already running."
		}
		go func() {
			if _, err := s.RunScanNow(s.Ctx); err != nil {
				log.Error().Err(err).Msg("manual scan")
			}
		}()
		return "🔎 Scan started."
	case "/top":
		n := s.Top
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		signals, ok := s.lastSignals(ctx)
		if !ok {
			return "No scan has run yet."
		}
		if len(signals) == 0 {
			return "The last scan found no setups."
		}
		if n < len(signals) {
			signals = signals[:n]
		}
		var b strings.Builder
		fmt.Fprintf(&b, "🏆 <b>Top %d setups</b>\n", len(signals))
		for _, sig := range signals {
			b.WriteString(notifier.FormatSignal(sig))
		}
		b.WriteString("\n" + notifier.TradingViewList(signals))
		return b.String()
	case "/rules":
		return notifier.FormatRules(s.Scanner.Config.Rules)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /scan run a scan now\n• /top [n] best setups of the last scan\n• /rules active rule sets"

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
