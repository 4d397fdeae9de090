package calculator

import (
	"fmt"
	"math"

	"WatchlistScanner/internal/model"
)

// ChannelConfig parameterizes the volatility-adaptive squeeze channel.
// MaxDuration caps the reported duration; 0 leaves it uncapped.
type ChannelConfig struct {
	FastPeriod  int     `yaml:"fast_period"`
	SlowPeriod  int     `yaml:"slow_period"`
	ATRPeriod   int     `yaml:"atr_period"`
	ATRMult     float64 `yaml:"atr_mult"`
	MaxDuration int     `yaml:"max_duration"`
}

// DefaultChannelConfig returns the stock channel settings.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{FastPeriod: 5, SlowPeriod: 26, ATRPeriod: 50, ATRMult: 0.4}
}

func (c ChannelConfig) Validate() error {
	if c.FastPeriod < 1 || c.SlowPeriod < 1 || c.ATRPeriod < 1 {
		return fmt.Errorf("channel: periods must be positive: %+v", c)
	}
	if c.ATRMult <= 0 {
		return fmt.Errorf("channel: atr_mult must be positive, got %v", c.ATRMult)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("channel: max_duration must be >= 0, got %d", c.MaxDuration)
	}
	return nil
}

// Lookback is the number of bars before the squeeze test can pass.
func (c ChannelConfig) Lookback() int {
	return max(c.FastPeriod, c.SlowPeriod, c.ATRPeriod+1)
}

// ChannelResult is one channel pass over a series.
type ChannelResult struct {
	States []model.ChannelState
	Fast   []float64
	Slow   []float64
	Band   []float64
}

// DetectChannel flags bars where the fast and slow EMAs sit within an ATR
// band of each other and counts consecutive squeeze bars in one forward scan.
func DetectChannel(high, low, close []float64, cfg ChannelConfig) *ChannelResult {
	n := len(close)
	fast := EMA(close, cfg.FastPeriod)
	slow := EMA(close, cfg.SlowPeriod)
	band := WilderATR(high, low, close, cfg.ATRPeriod)
	for i, v := range band {
		band[i] = v * cfg.ATRMult
	}

	states := make([]model.ChannelState, n)
	run := 0
	for i := 0; i < n; i++ {
		squeeze := Defined(fast[i]) && Defined(slow[i]) && Defined(band[i]) &&
			math.Abs(slow[i]-fast[i]) < band[i]
		if !squeeze {
			run = 0
			states[i] = model.ChannelState{Upper: math.NaN(), Lower: math.NaN()}
			continue
		}
		run++
		duration := run
		if cfg.MaxDuration > 0 && duration > cfg.MaxDuration {
			duration = cfg.MaxDuration
		}
		states[i] = model.ChannelState{
			InSqueeze: true,
			Upper:     slow[i] + band[i],
			Lower:     slow[i] - band[i],
			Duration:  duration,
		}
	}
	return &ChannelResult{States: states, Fast: fast, Slow: slow, Band: band}
}

// ChannelWidthPct is the channel height as a percentage of its lower bound.
func ChannelWidthPct(s model.ChannelState) float64 {
	if !s.InSqueeze || s.Lower <= 0 {
		return math.NaN()
	}
	return (s.Upper - s.Lower) / s.Lower * 100
}

// ChannelPositionPct places price inside the channel, 0 at the lower bound
// and 100 at the upper. A zero-height channel reports the midpoint.
func ChannelPositionPct(s model.ChannelState, price float64) float64 {
	if !s.InSqueeze {
		return math.NaN()
	}
	width := s.Upper - s.Lower
	if width <= 0 {
		return 50
	}
	return (price - s.Lower) / width * 100
}

// InChannel reports whether price sits between the channel bounds.
func InChannel(s model.ChannelState, price float64) bool {
	return s.InSqueeze && price >= s.Lower && price <= s.Upper
}
