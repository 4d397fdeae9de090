package calculator

import (
	"fmt"

	"WatchlistScanner/internal/model"
)

// TrendConfig parameterizes the SMA slope filter.
type TrendConfig struct {
	SMAPeriod int `yaml:"sma_period"`
	Lag       int `yaml:"lag"`
}

// DefaultTrendConfig returns a 50-bar SMA compared against itself 10 bars back.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{SMAPeriod: 50, Lag: 10}
}

func (c TrendConfig) Validate() error {
	if c.SMAPeriod < 1 || c.Lag < 1 {
		return fmt.Errorf("trend: sma_period and lag must be positive: %+v", c)
	}
	return nil
}

// Lookback is the number of bars before the trend can be decided.
func (c TrendConfig) Lookback() int {
	return c.SMAPeriod + c.Lag
}

// ComputeTrend labels each bar up when close is above a rising SMA, neutral
// while either SMA value is still warming up and down otherwise.
func ComputeTrend(close []float64, cfg TrendConfig) ([]model.Trend, []float64) {
	sma := SMA(close, cfg.SMAPeriod)
	trend := make([]model.Trend, len(close))
	for i := range close {
		if i < cfg.Lag || !Defined(sma[i]) || !Defined(sma[i-cfg.Lag]) {
			trend[i] = model.TrendNeutral
			continue
		}
		if close[i] > sma[i] && sma[i] > sma[i-cfg.Lag] {
			trend[i] = model.TrendUp
		} else {
			trend[i] = model.TrendDown
		}
	}
	return trend, sma
}
