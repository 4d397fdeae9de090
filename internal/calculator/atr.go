package calculator

import "github.com/markcheno/go-talib"

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|). The
// first bar has no previous close and uses high-low.
func TrueRange(high, low, close []float64) []float64 {
	if len(close) == 0 {
		return nil
	}
	tr := talib.TRange(high, low, close)
	tr[0] = high[0] - low[0]
	return tr
}

// ATR is the simple-average true range.
func ATR(high, low, close []float64, period int) []float64 {
	return SMA(TrueRange(high, low, close), period)
}

// WilderATR is the Wilder-smoothed average true range. It is undefined for
// the first period bars.
func WilderATR(high, low, close []float64, period int) []float64 {
	out := undefinedSeries(len(close))
	if period < 1 || len(close) <= period {
		return out
	}
	res := talib.Atr(high, low, close, period)
	for i := period; i < len(res); i++ {
		out[i] = res[i]
	}
	return out
}
