package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSI(t *testing.T) {
	rising := ramp(30, 10, 1)
	rsi := RSI(rising, 14)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(rsi[i]), "index %d", i)
	}
	assert.Equal(t, 100.0, rsi[14])
	assert.Equal(t, 100.0, rsi[29])

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 7
	}
	assert.Equal(t, 50.0, RSI(flat, 14)[19])

	// equal-sized alternating moves balance out
	alt := make([]float64, 31)
	for i := range alt {
		alt[i] = 10 + float64(i%2)
	}
	assert.InDelta(t, 50, RSI(alt, 14)[14], 5)

	falling := ramp(20, 50, -1)
	assert.Equal(t, 0.0, RSI(falling, 14)[19])

	assert.True(t, math.IsNaN(RSI(rising[:14], 14)[13]))
	assert.True(t, math.IsNaN(RSI(rising, 0)[20]))
}
