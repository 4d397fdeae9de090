package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/scanner"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			rules       TEXT,
			tickers     INTEGER,
			scanned     INTEGER,
			skipped     INTEGER,
			signals     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           TEXT NOT NULL,
			ticker           TEXT NOT NULL,
			bar_date         TEXT NOT NULL,
			rule             TEXT NOT NULL,
			side             TEXT NOT NULL,
			score            REAL,
			price            REAL,
			oscillator       REAL,
			color            TEXT,
			norm_price       REAL,
			basis            REAL,
			zone_position    REAL,
			zone_label       TEXT,
			nearest          TEXT,
			channel_duration INTEGER,
			channel_upper    REAL,
			channel_lower    REAL,
			trend            TEXT,
			fader            TEXT,
			volume_ratio     REAL,
			conditions       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_run ON signals(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ticker ON signals(ticker, bar_date)`,

		`CREATE TABLE IF NOT EXISTS scan_issues (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL,
			ticker  TEXT NOT NULL,
			outcome TEXT,
			reason  TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps undefined values to NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// encodeConditions stores every evaluated condition as name=true|false,
// sorted by name.
func encodeConditions(conds map[string]bool) string {
	pairs := make([]string, 0, len(conds))
	for name, ok := range conds {
		pairs = append(pairs, name+"="+strconv.FormatBool(ok))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// decodeConditions reverses encodeConditions. A bare name reads as true.
func decodeConditions(s string) map[string]bool {
	if s == "" {
		return nil
	}
	conds := make(map[string]bool)
	for _, pair := range strings.Split(s, ",") {
		name, value, found := strings.Cut(pair, "=")
		ok := true
		if found {
			ok, _ = strconv.ParseBool(value)
		}
		conds[name] = ok
	}
	return conds
}

func (r *SQLiteRecorder) RecordScan(ctx context.Context, report *scanner.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO scan_runs
		(run_id, started_at, finished_at, rules, tickers, scanned, skipped, signals)
		VALUES (?,?,?,?,?,?,?,?)`,
		report.RunID, report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli(),
		strings.Join(report.Rules, ","), report.Tickers, report.Scanned, report.Skipped(), len(report.Signals),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, s := range report.Signals {
		_, err := tx.ExecContext(ctx, `INSERT INTO signals
			(run_id, ticker, bar_date, rule, side, score, price, oscillator, color,
			 norm_price, basis, zone_position, zone_label, nearest,
			 channel_duration, channel_upper, channel_lower, trend, fader, volume_ratio, conditions)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			report.RunID, s.Ticker, s.Date.Format("2006-01-02"), s.Rule, string(s.Side),
			s.Score, nullable(s.Price), nullable(s.Oscillator), s.Color.String(),
			nullable(s.NormalizedPrice), nullable(s.Basis), nullable(s.ZonePosition), string(s.ZoneLabel), string(s.Nearest),
			s.ChannelDuration, nullable(s.ChannelUpper), nullable(s.ChannelLower),
			s.Trend.String(), s.Fader.String(), nullable(s.VolumeRatio), encodeConditions(s.Conditions),
		)
		if err != nil {
			return fmt.Errorf("insert signal %s/%s: %w", s.Ticker, s.Rule, err)
		}
	}

	for _, is := range report.Issues {
		if _, err := tx.ExecContext(ctx, `INSERT INTO scan_issues (run_id, ticker, outcome, reason) VALUES (?,?,?,?)`,
			report.RunID, is.Ticker, is.Outcome, is.Reason); err != nil {
			return fmt.Errorf("insert issue %s: %w", is.Ticker, err)
		}
	}
	return tx.Commit()
}

// LatestRun returns the most recent run and its signals ordered best
// first. Both are nil when nothing has been recorded.
func (r *SQLiteRecorder) LatestRun(ctx context.Context) (*RunSummary, []model.Signal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		run               RunSummary
		started, finished int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT run_id, started_at, finished_at, tickers, scanned, skipped, signals
		FROM scan_runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&run.RunID, &started, &finished, &run.Tickers, &run.Scanned, &run.Skipped, &run.Signals)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("latest run: %w", err)
	}
	run.StartedAt = time.UnixMilli(started)
	run.FinishedAt = time.UnixMilli(finished)

	rows, err := r.db.QueryContext(ctx, `SELECT ticker, bar_date, rule, side, score, price, oscillator, color,
			norm_price, basis, zone_position, zone_label, nearest,
			channel_duration, channel_upper, channel_lower, trend, fader, volume_ratio, conditions
		FROM signals WHERE run_id = ? ORDER BY score DESC, ticker, bar_date, rule`, run.RunID)
	if err != nil {
		return nil, nil, fmt.Errorf("latest signals: %w", err)
	}
	defer rows.Close()

	var signals []model.Signal
	for rows.Next() {
		var (
			s                             model.Signal
			date, side, color, zone, near string
			trend, fader, conds           string
			price, osc, norm, basis, zpos sql.NullFloat64
			upper, lower, vol             sql.NullFloat64
		)
		if err := rows.Scan(&s.Ticker, &date, &s.Rule, &side, &s.Score, &price, &osc, &color,
			&norm, &basis, &zpos, &zone, &near,
			&s.ChannelDuration, &upper, &lower, &trend, &fader, &vol, &conds); err != nil {
			return nil, nil, fmt.Errorf("scan signal: %w", err)
		}
		s.Date, _ = time.Parse("2006-01-02", date)
		s.Side = model.Side(side)
		s.Price, s.Oscillator, s.NormalizedPrice, s.Basis = orNaN(price), orNaN(osc), orNaN(norm), orNaN(basis)
		s.ZonePosition, s.ChannelUpper, s.ChannelLower, s.VolumeRatio = orNaN(zpos), orNaN(upper), orNaN(lower), orNaN(vol)
		s.Color, _ = model.ParseMomentumColor(color)
		s.ZoneLabel = model.ZoneLabel(zone)
		s.Nearest = model.QuartileLabel(near)
		s.Trend = model.ParseTrend(trend)
		s.Fader = model.ParseFaderColor(fader)
		s.Conditions = decodeConditions(conds)
		signals = append(signals, s)
	}
	return &run, signals, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
