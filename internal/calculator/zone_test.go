package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchlistScanner/internal/model"
)

func TestClassifyZone(t *testing.T) {
	cfg := DefaultZoneConfig()
	cases := []struct {
		price   float64
		floor   float64
		size    float64
		pos     float64
		label   model.ZoneLabel
		nearest model.QuartileLabel
	}{
		{4.20, 4, 1, 20, model.ZoneBuy, model.Near25},
		{4.50, 4, 1, 50, model.ZoneNeutral, model.Near50},
		{4.80, 4, 1, 80, model.ZoneSell, model.Near75},
		{4.95, 4, 1, 95, model.ZoneSell, model.Near100},
		{10, 10, 10, 0, model.ZoneBuy, model.Near0},
		{45, 40, 10, 50, model.ZoneNeutral, model.Near50},
		{100, 100, 50, 0, model.ZoneBuy, model.Near0},
		{250, 250, 50, 0, model.ZoneBuy, model.Near0},
		{734, 700, 100, 34, model.ZoneBuy, model.Near25},
		{735, 700, 100, 35, model.ZoneNeutral, model.Near25},
		{764, 700, 100, 64, model.ZoneNeutral, model.Near75},
		{765, 700, 100, 65, model.ZoneSell, model.Near75},
		// cent prices on a boundary resolve like whole ones
		{4.35, 4, 1, 35, model.ZoneNeutral, model.Near25},
		{2.35, 2, 1, 35, model.ZoneNeutral, model.Near25},
		{0.35, 0, 1, 35, model.ZoneNeutral, model.Near25},
		{4.65, 4, 1, 65, model.ZoneSell, model.Near75},
		{2.65, 2, 1, 65, model.ZoneSell, model.Near75},
		{8.65, 8, 1, 65, model.ZoneSell, model.Near75},
		{3.375, 3, 1, 37.5, model.ZoneNeutral, model.Near50},
		{6.875, 6, 1, 87.5, model.ZoneSell, model.Near100},
		{43.5, 40, 10, 35, model.ZoneNeutral, model.Near25},
	}
	for _, tc := range cases {
		z := ClassifyZone(tc.price, cfg)
		require.True(t, z.Defined, "price %v", tc.price)
		assert.InDelta(t, tc.floor, z.Floor, 1e-9, "price %v floor", tc.price)
		assert.InDelta(t, tc.floor+tc.size, z.Ceiling, 1e-9, "price %v ceiling", tc.price)
		assert.Equal(t, tc.size, z.Size, "price %v size", tc.price)
		assert.InDelta(t, tc.pos, z.PositionPct, 1e-6, "price %v position", tc.price)
		assert.Equal(t, tc.label, z.Label, "price %v label", tc.price)
		assert.Equal(t, tc.nearest, z.Nearest, "price %v nearest", tc.price)
	}
}

func TestClassifyZone_Invariants(t *testing.T) {
	cfg := DefaultZoneConfig()
	for p := 0.05; p < 1500; p *= 1.013 {
		z := ClassifyZone(p, cfg)
		require.True(t, z.Defined)
		assert.GreaterOrEqual(t, z.PositionPct, 0.0, "price %v", p)
		assert.Less(t, z.PositionPct, 100.0, "price %v", p)
		assert.LessOrEqual(t, z.Floor, p+1e-9, "price %v", p)
		assert.Greater(t, z.Ceiling, p, "price %v", p)
		assert.InDelta(t, z.Floor+0.5*z.Size, z.Levels.L50, 1e-9)
	}
}

func TestClassifyZone_NonPositive(t *testing.T) {
	cfg := DefaultZoneConfig()
	assert.False(t, ClassifyZone(0, cfg).Defined)
	assert.False(t, ClassifyZone(-3, cfg).Defined)
	assert.False(t, ClassifyZone(math.NaN(), cfg).Defined)
}

func TestPlanTrade(t *testing.T) {
	cfg := DefaultZoneConfig()

	within := PlanTrade(ClassifyZone(4.25, cfg), 4.25)
	assert.Equal(t, model.TradeWithinRange, within.Type)
	assert.InDelta(t, 4.25, within.Entry, 1e-9)
	assert.InDelta(t, 4.0, within.Stop, 1e-9)
	assert.InDelta(t, 4.75, within.Target, 1e-9)
	assert.InDelta(t, 2.0, within.RewardRisk, 1e-9)
	assert.InDelta(t, 0, within.DistancePct, 1e-9)

	change := PlanTrade(ClassifyZone(78, cfg), 78)
	assert.Equal(t, model.TradeRangeChange, change.Type)
	assert.InDelta(t, 77.5, change.Entry, 1e-9)
	assert.InDelta(t, 75, change.Stop, 1e-9)
	assert.InDelta(t, 82.5, change.Target, 1e-9)
	assert.InDelta(t, 2.0, change.RewardRisk, 1e-9)
	assert.InDelta(t, 5, change.DistancePct, 1e-9)

	none := PlanTrade(ClassifyZone(4.5, cfg), 4.5)
	assert.Equal(t, model.TradeNone, none.Type)
	assert.False(t, Defined(none.RewardRisk))
}

func TestRangesFromPivot(t *testing.T) {
	cfg := DefaultZoneConfig()
	n := 12
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range lows {
		lows[i] = 5.5
		closes[i] = 5.6
	}
	closes[n-1] = 8.5
	got := RangesFromPivot(lows, closes, 60, cfg)
	assert.Equal(t, 0.0, got[2])
	assert.Equal(t, 0.0, got[6])
	assert.InDelta(t, 3, got[n-1], 1e-9)
}

func TestRollingRange(t *testing.T) {
	src := []float64{3, 1, 4, 1, 5, 9, 2}
	hi := RollingHigh(src, 3)
	lo := RollingLow(src, 3)
	assert.False(t, Defined(hi[1]))
	assert.Equal(t, 4.0, hi[2])
	assert.Equal(t, 9.0, hi[6])
	assert.Equal(t, 1.0, lo[4])
	assert.Equal(t, 2.0, lo[6])
}

func TestZoneConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultZoneConfig().Validate())

	cfg := DefaultZoneConfig()
	cfg.Brackets = []Bracket{{Size: 1}, {Below: 10, Size: 10}}
	assert.Error(t, cfg.Validate())

	cfg = DefaultZoneConfig()
	cfg.BuyMax, cfg.SellMin = 70, 30
	assert.Error(t, cfg.Validate())
}
