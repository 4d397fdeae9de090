package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA is the simple moving average, undefined for the first period-1 points.
func SMA(src []float64, period int) []float64 {
	return tail(src, period, talib.Sma)
}

// EMA is the exponential moving average with alpha 2/(period+1), seeded
// with the SMA of the first window.
func EMA(src []float64, period int) []float64 {
	return tail(src, period, talib.Ema)
}

// WMA weights the window linearly 1..period with the newest bar heaviest.
func WMA(src []float64, period int) []float64 {
	return tail(src, period, talib.Wma)
}

// HMA is the Hull moving average:
// WMA(2*WMA(src, period/2) - WMA(src, period), floor(sqrt(period))).
func HMA(src []float64, period int) []float64 {
	half := period / 2
	root := int(math.Sqrt(float64(period)))
	if half < 1 || root < 1 {
		return undefinedSeries(len(src))
	}
	fast := WMA(src, half)
	slow := WMA(src, period)
	raw := make([]float64, len(src))
	for i := range src {
		raw[i] = 2*fast[i] - slow[i]
	}
	return WMA(raw, root)
}
