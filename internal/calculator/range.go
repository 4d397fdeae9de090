package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RollingHigh is the highest value over the trailing period bars.
func RollingHigh(src []float64, period int) []float64 {
	if period == 1 {
		return append([]float64(nil), src...)
	}
	return tail(src, period, talib.Max)
}

// RollingLow is the lowest value over the trailing period bars.
func RollingLow(src []float64, period int) []float64 {
	if period == 1 {
		return append([]float64(nil), src...)
	}
	return tail(src, period, talib.Min)
}

// RangesFromPivot counts how many zone sizes the current zone floor sits
// above the zone of the pivot low, the lowest low of the trailing lookback.
// Bars with fewer than five bars of history report 0.
func RangesFromPivot(lows, close []float64, lookback int, cfg ZoneConfig) []float64 {
	n := len(close)
	out := undefinedSeries(n)
	if lookback < 1 {
		return out
	}
	window := RollingLow(lows, lookback+1)
	running := math.Inf(1)
	for i := 0; i < n; i++ {
		running = math.Min(running, lows[i])
		if i < 5 {
			out[i] = 0
			continue
		}
		pivot := running
		if i >= lookback {
			pivot = window[i]
		}
		pz := ClassifyZone(pivot, cfg)
		cz := ClassifyZone(close[i], cfg)
		if !pz.Defined || !cz.Defined {
			continue
		}
		out[i] = (cz.Floor - pz.Floor) / pz.Size
	}
	return out
}
