package calculator

import (
	"fmt"
	"math"

	"WatchlistScanner/internal/model"
)

// Bracket assigns a zone size to every price below Below. A zero Below marks
// the open-ended top bracket.
type Bracket struct {
	Below float64 `yaml:"below"`
	Size  float64 `yaml:"size"`
}

// ZoneConfig parameterizes the denomination-aware zone classifier.
type ZoneConfig struct {
	Brackets        []Bracket `yaml:"brackets"`
	BuyMax          float64   `yaml:"buy_max"`
	SellMin         float64   `yaml:"sell_min"`
	RollingLookback int       `yaml:"rolling_lookback"`
	PivotLookback   int       `yaml:"pivot_lookback"`
}

// DefaultZoneConfig returns the $1/$10/$50/$100 bracket table.
func DefaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		Brackets: []Bracket{
			{Below: 10, Size: 1},
			{Below: 100, Size: 10},
			{Below: 500, Size: 50},
			{Size: 100},
		},
		BuyMax:          35,
		SellMin:         65,
		RollingLookback: 100,
		PivotLookback:   60,
	}
}

func (c ZoneConfig) Validate() error {
	if len(c.Brackets) == 0 {
		return fmt.Errorf("zone: no brackets configured")
	}
	prev := 0.0
	for i, b := range c.Brackets {
		if b.Size <= 0 {
			return fmt.Errorf("zone: bracket %d size must be positive", i)
		}
		last := i == len(c.Brackets)-1
		if b.Below == 0 && !last {
			return fmt.Errorf("zone: only the last bracket may be open-ended")
		}
		if b.Below != 0 && b.Below <= prev {
			return fmt.Errorf("zone: bracket bounds must increase (bracket %d)", i)
		}
		prev = b.Below
	}
	if c.BuyMax < 0 || c.SellMin > 100 || c.BuyMax > c.SellMin {
		return fmt.Errorf("zone: need 0 <= buy_max <= sell_min <= 100, got %v/%v", c.BuyMax, c.SellMin)
	}
	if c.RollingLookback < 1 || c.PivotLookback < 1 {
		return fmt.Errorf("zone: lookbacks must be positive")
	}
	return nil
}

// SizeFor returns the zone size of the bracket price falls in.
func (c ZoneConfig) SizeFor(price float64) float64 {
	for _, b := range c.Brackets {
		if b.Below == 0 || price < b.Below {
			return b.Size
		}
	}
	return c.Brackets[len(c.Brackets)-1].Size
}

// ClassifyZone places price inside its round-number zone.
func ClassifyZone(price float64, cfg ZoneConfig) model.Zone {
	if !Defined(price) || price <= 0 || len(cfg.Brackets) == 0 {
		return model.Zone{}
	}
	size := cfg.SizeFor(price)
	floor := math.Floor(price/size) * size
	if floor > price {
		floor -= size
	}
	if price-floor >= size {
		floor += size
	}
	// Snap away float noise so cent prices on a boundary label like whole ones.
	pos := math.Round(100*(price-floor)/size*1e6) / 1e6
	if pos >= 100 {
		floor += size
		pos = 0
	}
	if pos < 0 {
		pos = 0
	}

	z := model.Zone{
		Defined:     true,
		Floor:       floor,
		Ceiling:     floor + size,
		Size:        size,
		PositionPct: pos,
		Levels: model.QuartileLevels{
			L0:   floor,
			L25:  floor + 0.25*size,
			L50:  floor + 0.50*size,
			L75:  floor + 0.75*size,
			L100: floor + size,
		},
	}

	switch {
	case pos < cfg.BuyMax:
		z.Label = model.ZoneBuy
	case pos >= cfg.SellMin:
		z.Label = model.ZoneSell
	default:
		z.Label = model.ZoneNeutral
	}

	switch {
	case pos < 12.5:
		z.Nearest = model.Near0
	case pos < 37.5:
		z.Nearest = model.Near25
	case pos < 62.5:
		z.Nearest = model.Near50
	case pos < 87.5:
		z.Nearest = model.Near75
	default:
		z.Nearest = model.Near100
	}
	return z
}

// PlanTrade builds the quartile trade for a zone: a within-range trade from
// the 25% level or a range-change trade from the 75% level. Other quartiles
// get an empty plan with undefined numbers.
func PlanTrade(z model.Zone, price float64) model.TradePlan {
	none := model.TradePlan{
		Entry:       math.NaN(),
		Stop:        math.NaN(),
		Target:      math.NaN(),
		RewardRisk:  math.NaN(),
		DistancePct: math.NaN(),
	}
	if !z.Defined {
		return none
	}

	var p model.TradePlan
	switch z.Nearest {
	case model.Near25:
		p = model.TradePlan{Type: model.TradeWithinRange, Entry: z.Levels.L25, Stop: z.Levels.L0, Target: z.Levels.L75}
	case model.Near75:
		p = model.TradePlan{Type: model.TradeRangeChange, Entry: z.Levels.L75, Stop: z.Levels.L50, Target: z.Ceiling + 0.25*z.Size}
	default:
		return none
	}

	risk := p.Entry - p.Stop
	if risk > 0 {
		p.RewardRisk = (p.Target - p.Entry) / risk
	}
	p.DistancePct = math.Abs(price-p.Entry) / z.Size * 100
	return p
}
