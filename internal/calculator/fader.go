package calculator

import (
	"fmt"
	"math"

	"WatchlistScanner/internal/model"
)

// FaderConfig parameterizes the fader trend line.
type FaderConfig struct {
	Fast      int     `yaml:"fast"`
	Slow      int     `yaml:"slow"`
	JMALength int     `yaml:"jma_length"`
	JMAPhase  float64 `yaml:"jma_phase"`
	JMAPower  float64 `yaml:"jma_power"`
}

func DefaultFaderConfig() FaderConfig {
	return FaderConfig{Fast: 2, Slow: 2, JMALength: 7, JMAPhase: 126, JMAPower: 0.89144}
}

func (c FaderConfig) Validate() error {
	if c.Fast < 1 || c.Slow < 1 || c.JMALength < 1 {
		return fmt.Errorf("fader: periods must be positive: %+v", c)
	}
	if c.JMAPower <= 0 {
		return fmt.Errorf("fader: jma_power must be positive, got %v", c.JMAPower)
	}
	return nil
}

func (c FaderConfig) periods() (t, f, ft, s int) {
	t = c.Fast + c.Slow
	f = t + c.Slow
	ft = f + t
	s = ft + f
	return
}

// Lookback is the number of bars before the fader color is defined.
func (c FaderConfig) Lookback() int {
	t, f, ft, s := c.periods()
	hma := s - 1 + int(math.Sqrt(float64(s))) - 1
	chain := (c.Fast - 1) + (c.Slow - 1) + (t - 1) + (f - 1) + (ft - 1) + hma
	return max(chain, c.JMALength-1) + 4
}

// FaderResult is the fader line and its per-bar color.
type FaderResult struct {
	Line   []float64
	Colors []model.FaderColor
}

// ComputeFader cascades WMAs over Fibonacci-like periods, takes the HMA of
// the result and averages it with a JMA of close. The line is green while it
// rises and red otherwise.
func ComputeFader(close []float64, cfg FaderConfig) *FaderResult {
	t, f, ft, s := cfg.periods()
	m1 := WMA(close, cfg.Fast)
	m2 := WMA(m1, cfg.Slow)
	m3 := WMA(m2, t)
	m4 := WMA(m3, f)
	m5 := WMA(m4, ft)
	mavw := HMA(m5, s)
	jma := JMA(close, cfg.JMALength, cfg.JMAPhase, cfg.JMAPower)

	n := len(close)
	line := undefinedSeries(n)
	for i := range close {
		if Defined(mavw[i]) && Defined(jma[i]) {
			line[i] = (mavw[i] + jma[i]) / 2
		}
	}

	colors := make([]model.FaderColor, n)
	for i := 1; i < n; i++ {
		if !Defined(line[i]) || !Defined(line[i-1]) {
			continue
		}
		if line[i] > line[i-1] {
			colors[i] = model.FaderGreen
		} else {
			colors[i] = model.FaderRed
		}
	}
	return &FaderResult{Line: line, Colors: colors}
}

// TurnedGreen reports a red bar two bars back followed by two green bars.
func (r *FaderResult) TurnedGreen(i int) bool {
	if i < 2 {
		return false
	}
	return r.Colors[i-2] == model.FaderRed &&
		r.Colors[i-1] == model.FaderGreen &&
		r.Colors[i] == model.FaderGreen
}
