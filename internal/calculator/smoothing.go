package calculator

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientData is returned when a series is shorter than the
	// longest lookback it has to feed.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidSeries is returned for bars that violate the input contract.
	ErrInvalidSeries = errors.New("invalid series")
)

// Defined reports whether v is a usable indicator value. Warm-up bars and
// degenerate results are carried as NaN.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstDefined(src []float64) int {
	for i, v := range src {
		if Defined(v) {
			return i
		}
	}
	return -1
}

// tail runs a windowed kernel over the defined tail of src and re-pads the
// warm-up with NaN. The talib kernels zero-fill their lookback and index past
// inputs shorter than the window, so neither case ever reaches them.
func tail(src []float64, period int, kernel func([]float64, int) []float64) []float64 {
	out := undefinedSeries(len(src))
	start := firstDefined(src)
	if period < 1 || start < 0 || len(src)-start < period {
		return out
	}
	res := kernel(src[start:], period)
	for i := period - 1; i < len(res); i++ {
		out[start+i] = res[i]
	}
	return out
}

type jmaState struct {
	e0, e1, e2, out float64
}

func (s jmaState) step(x, alpha, beta, phaseRatio float64) jmaState {
	e0 := (1-alpha)*x + alpha*s.e0
	e1 := (x-e0)*(1-beta) + beta*s.e1
	e2 := (e0+phaseRatio*e1-s.out)*(1-alpha)*(1-alpha) + alpha*alpha*s.e2
	return jmaState{e0: e0, e1: e1, e2: e2, out: e2 + s.out}
}

// JMA is the Jurik-style adaptive moving average. phase is clamped to
// [-100, 100]; the first length-1 defined points are undefined.
func JMA(src []float64, length int, phase, power float64) []float64 {
	out := undefinedSeries(len(src))
	start := firstDefined(src)
	if length < 1 || start < 0 {
		return out
	}

	phaseRatio := math.Max(-100, math.Min(100, phase))/100 + 1.5
	beta := 0.45 * float64(length-1) / (0.45*float64(length-1) + 2)
	alpha := math.Pow(beta, power)

	st := jmaState{e0: src[start], out: src[start]}
	for i := start; i < len(src); i++ {
		if i > start {
			st = st.step(src[i], alpha, beta, phaseRatio)
		}
		if i-start >= length-1 {
			out[i] = st.out
		}
	}
	return out
}

// StdDevAround is the rolling sample deviation of src around an arbitrary
// mean series: sqrt(sum((src-mean)^2) / (period-1)) over each window.
func StdDevAround(src, mean []float64, period int) []float64 {
	n := len(src)
	if period < 2 || len(mean) != n {
		return undefinedSeries(n)
	}
	sq := undefinedSeries(n)
	for i := range src {
		if Defined(src[i]) && Defined(mean[i]) {
			d := src[i] - mean[i]
			sq[i] = d * d
		}
	}
	avg := SMA(sq, period)
	out := undefinedSeries(n)
	scale := float64(period) / float64(period-1)
	for i, v := range avg {
		if Defined(v) {
			out[i] = math.Sqrt(math.Max(0, v*scale))
		}
	}
	return out
}
