package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the batch scanner.
type Metrics struct {
	Runs           prometheus.Counter
	Tickers        *prometheus.CounterVec
	Signals        *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	TickerDuration prometheus.Histogram
	ActiveWorkers  prometheus.Gauge
}

// NewMetrics creates the scanner metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchlist_scan_runs_total",
			Help: "Total number of batch scans started",
		}),
		Tickers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_scan_tickers_total",
			Help: "Tickers processed by outcome",
		}, []string{"outcome"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_scan_signals_total",
			Help: "Signals emitted by rule and side",
		}, []string{"rule", "side"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "watchlist_scan_duration_seconds",
			Help:    "Wall time of a batch scan",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		TickerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "watchlist_scan_ticker_duration_seconds",
			Help:    "Load and analysis time of one ticker",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "watchlist_scan_active_workers",
			Help: "Tickers currently being processed",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Tickers, m.Signals, m.RunDuration, m.TickerDuration, m.ActiveWorkers)
	}
	return m
}
