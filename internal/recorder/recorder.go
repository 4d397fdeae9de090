package recorder

import (
	"context"
	"time"

	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/scanner"
)

// RunSummary is one row of the scan history.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Tickers    int
	Scanned    int
	Skipped    int
	Signals    int
}

// Recorder persists scan results for later review.
type Recorder interface {
	RecordScan(ctx context.Context, report *scanner.Report) error
	LatestRun(ctx context.Context) (*RunSummary, []model.Signal, error)
	Close() error
}
