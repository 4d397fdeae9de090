package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestWMA_Weights(t *testing.T) {
	got := WMA([]float64{1, 2, 3, 4}, 3)
	require.Len(t, got, 4)
	assert.False(t, Defined(got[0]))
	assert.False(t, Defined(got[1]))
	assert.InDelta(t, 14.0/6, got[2], 1e-12)
	assert.InDelta(t, 20.0/6, got[3], 1e-12)
}

func TestKernels_ShortInputIsUndefined(t *testing.T) {
	src := []float64{1, 2, 3}
	for name, out := range map[string][]float64{
		"sma": SMA(src, 5),
		"ema": EMA(src, 5),
		"wma": WMA(src, 5),
		"hma": HMA(src, 16),
		"jma": JMA(src, 7, 0, 2),
	} {
		require.Len(t, out, 3, name)
		for i, v := range out {
			assert.False(t, Defined(v), "%s[%d]", name, i)
		}
	}
	assert.Empty(t, SMA(nil, 3))
}

func TestKernels_LeadingUndefinedInput(t *testing.T) {
	src := append([]float64{math.NaN(), math.NaN()}, 1, 2, 3, 4)
	got := SMA(src, 2)
	assert.False(t, Defined(got[2]))
	assert.InDelta(t, 1.5, got[3], 1e-12)
	assert.InDelta(t, 3.5, got[5], 1e-12)
}

func TestHMA_WarmUp(t *testing.T) {
	src := ramp(40, 10, 0.5)
	got := HMA(src, 16)
	// WMA(16) is defined from index 15, the final WMA(4) adds three more bars.
	assert.False(t, Defined(got[17]))
	assert.True(t, Defined(got[18]))
	// A linear series is tracked with under one bar of lag.
	assert.InDelta(t, src[30], got[30], 0.5)
}

func TestHMA_PrefixInvariant(t *testing.T) {
	src := make([]float64, 80)
	for i := range src {
		src[i] = 20 + 3*math.Sin(float64(i)/5) + float64(i)*0.1
	}
	full := HMA(src, 16)
	prefix := HMA(src[:50], 16)
	for i := range prefix {
		if !Defined(prefix[i]) {
			assert.False(t, Defined(full[i]), "index %d", i)
			continue
		}
		assert.InDelta(t, prefix[i], full[i], 1e-12, "index %d", i)
	}
}

func TestJMA(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 42
	}
	got := JMA(flat, 7, 50, 2)
	for i := 0; i < 6; i++ {
		assert.False(t, Defined(got[i]), "index %d", i)
	}
	for i := 6; i < len(got); i++ {
		assert.InDelta(t, 42, got[i], 1e-9, "index %d", i)
	}

	up := JMA(ramp(60, 10, 1), 7, 0, 2)
	assert.Greater(t, up[59], up[40])
	assert.InDelta(t, 69, up[59], 3)
}

func TestJMA_PhaseClamped(t *testing.T) {
	src := ramp(50, 5, 0.3)
	hi, hiClamped := JMA(src, 7, 100, 1), JMA(src, 7, 500, 1)
	lo, loClamped := JMA(src, 7, -100, 1), JMA(src, 7, -250, 1)
	for i := 6; i < len(src); i++ {
		assert.Equal(t, hi[i], hiClamped[i], "index %d", i)
		assert.Equal(t, lo[i], loClamped[i], "index %d", i)
	}
}

func TestATR(t *testing.T) {
	high := []float64{11, 12, 13, 12}
	low := []float64{9, 10, 11, 10}
	close := []float64{10, 11, 12, 11}
	tr := TrueRange(high, low, close)
	assert.Equal(t, []float64{2, 2, 2, 2}, tr)

	atr := ATR(high, low, close, 2)
	assert.False(t, Defined(atr[0]))
	assert.InDelta(t, 2, atr[3], 1e-12)

	wilder := WilderATR(high, low, close, 2)
	assert.False(t, Defined(wilder[1]))
	assert.InDelta(t, 2, wilder[2], 1e-12)
	assert.InDelta(t, 2, wilder[3], 1e-12)

	for _, v := range WilderATR(high, low, close, 4) {
		assert.False(t, Defined(v))
	}
}

func TestStdDevAround(t *testing.T) {
	src := []float64{1, 3, 1, 3}
	mean := []float64{2, 2, 2, 2}
	got := StdDevAround(src, mean, 4)
	assert.False(t, Defined(got[2]))
	// four deviations of 1 over n-1 = 3
	assert.InDelta(t, math.Sqrt(4.0/3), got[3], 1e-12)
	assert.False(t, Defined(StdDevAround(src, mean, 1)[3]))
}
