package calculator

import (
	"math"

	"WatchlistScanner/internal/model"
)

// PriorMonthLow is, for every bar, the lowest low of the last calendar month
// with bars before the bar's own month. Bars in the series' first month have
// no prior month and stay NaN.
func PriorMonthLow(bars []model.PriceBar) []float64 {
	out := undefinedSeries(len(bars))
	var (
		curYear  int
		curMonth = -1
		curLow   = math.NaN()
		prevLow  = math.NaN()
	)
	for i, b := range bars {
		y, m, _ := b.Date.Date()
		if y != curYear || int(m) != curMonth {
			if curMonth >= 0 {
				prevLow = curLow
			}
			curYear, curMonth, curLow = y, int(m), b.Low
		} else {
			curLow = math.Min(curLow, b.Low)
		}
		out[i] = prevLow
	}
	return out
}

// FindShakeout looks for the most recent bar in [i-lookback, i] whose low
// broke the prior month low of bar i.
func FindShakeout(low, close, priorLow []float64, i, lookback int) model.Shakeout {
	sh := model.Shakeout{PriorMonthLow: priorLow[i], Low: math.NaN(), DepthPct: math.NaN(), RecoveryPct: math.NaN()}
	level := priorLow[i]
	if !Defined(level) || level <= 0 {
		return sh
	}
	for j := i; j >= max(0, i-lookback); j-- {
		if low[j] >= level {
			continue
		}
		sh.Found = true
		sh.DaysAgo = i - j
		sh.Low = low[j]
		sh.DepthPct = (level - low[j]) / level * 100
		sh.RecoveryPct = (close[i] - low[j]) / low[j] * 100
		break
	}
	return sh
}
