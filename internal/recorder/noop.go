package recorder

import (
	"context"

	"WatchlistScanner/internal/model"
	"WatchlistScanner/internal/scanner"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ context.Context, _ *scanner.Report) error { return nil }
func (n *NoopRecorder) LatestRun(_ context.Context) (*RunSummary, []model.Signal, error) {
	return nil, nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
