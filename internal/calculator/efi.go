package calculator

import (
	"fmt"
	"math"

	"WatchlistScanner/internal/model"
)

// Basis moving-average kinds.
const (
	BasisEMA = "ema"
	BasisHMA = "hma"
)

// EFIConfig parameterizes the faux-volume Elder Force Index.
type EFIConfig struct {
	BasisPeriod   int     `yaml:"basis_period"`
	BasisMA       string  `yaml:"basis_ma"`
	SignalPeriod  int     `yaml:"signal_period"`
	ForcePeriod   int     `yaml:"force_period"`
	ScaleFactor   float64 `yaml:"scale_factor"`
	AutoScaleLen  int     `yaml:"auto_scale_len"`
	ATRPeriod     int     `yaml:"atr_period"`
	BandMult      float64 `yaml:"band_mult"`
	InnerBandMult float64 `yaml:"inner_band_mult"`
}

// DefaultEFIConfig returns the stock oscillator settings.
func DefaultEFIConfig() EFIConfig {
	return EFIConfig{
		BasisPeriod:   68,
		BasisMA:       BasisEMA,
		SignalPeriod:  2,
		ForcePeriod:   13,
		ScaleFactor:   13,
		AutoScaleLen:  1,
		ATRPeriod:     11,
		BandMult:      1.0,
		InnerBandMult: 1.0,
	}
}

// Validate checks that every window is usable.
func (c EFIConfig) Validate() error {
	if c.BasisPeriod < 2 || c.SignalPeriod < 1 || c.ForcePeriod < 1 || c.AutoScaleLen < 1 || c.ATRPeriod < 1 {
		return fmt.Errorf("efi: periods must be positive (basis >= 2): %+v", c)
	}
	if c.BasisMA != BasisEMA && c.BasisMA != BasisHMA {
		return fmt.Errorf("efi: unknown basis_ma %q", c.BasisMA)
	}
	if c.BandMult < 0 || c.InnerBandMult < 0 {
		return fmt.Errorf("efi: band multipliers must be non-negative")
	}
	return nil
}

// Lookback is the number of bars before the oscillator, the basis and the
// histogram are defined. The deviation bands need a further BasisPeriod-1.
func (c EFIConfig) Lookback() int {
	force := c.ATRPeriod + c.AutoScaleLen - 1 + c.ForcePeriod
	return max(force, c.basisLookback()+c.SignalPeriod-1)
}

func (c EFIConfig) basisLookback() int {
	if c.BasisMA == BasisHMA {
		return c.BasisPeriod + int(math.Sqrt(float64(c.BasisPeriod))) - 1
	}
	return c.BasisPeriod
}

// EFIResult holds every per-bar output of one oscillator pass.
type EFIResult struct {
	Oscillator      []float64
	Delta           []float64
	Colors          []model.MomentumColor
	WeightedPrice   []float64
	Basis           []float64
	NormalizedPrice []float64
	Dev             []float64
	Upper           []float64
	Lower           []float64
	InnerUpper      []float64
	InnerLower      []float64
	Histogram       []float64
}

// ComputeEFI runs the oscillator over the whole series in O(N).
func ComputeEFI(high, low, close []float64, cfg EFIConfig) *EFIResult {
	n := len(close)

	var basis []float64
	if cfg.BasisMA == BasisHMA {
		basis = HMA(close, cfg.BasisPeriod)
	} else {
		basis = EMA(close, cfg.BasisPeriod)
	}

	fauxVolume := ATR(high, low, close, cfg.ATRPeriod)
	volumeScale := SMA(fauxVolume, cfg.AutoScaleLen)
	weighted := undefinedSeries(n)
	for i := range close {
		if !Defined(fauxVolume[i]) || !Defined(volumeScale[i]) {
			continue
		}
		if volumeScale[i] == 0 {
			weighted[i] = 0
			continue
		}
		weighted[i] = close[i] * fauxVolume[i] / volumeScale[i]
	}

	raw := undefinedSeries(n)
	for i := 1; i < n; i++ {
		if Defined(weighted[i]) {
			raw[i] = (close[i] - close[i-1]) * weighted[i] * cfg.ScaleFactor
		}
	}
	osc := EMA(raw, cfg.ForcePeriod)

	res := &EFIResult{
		Oscillator:      osc,
		Delta:           undefinedSeries(n),
		Colors:          make([]model.MomentumColor, n),
		WeightedPrice:   weighted,
		Basis:           basis,
		NormalizedPrice: undefinedSeries(n),
		Dev:             StdDevAround(close, basis, cfg.BasisPeriod),
		Upper:           undefinedSeries(n),
		Lower:           undefinedSeries(n),
		InnerUpper:      undefinedSeries(n),
		InnerLower:      undefinedSeries(n),
		Histogram:       undefinedSeries(n),
	}

	signal := EMA(basis, cfg.SignalPeriod)
	for i := range close {
		if i > 0 && Defined(osc[i]) && Defined(osc[i-1]) {
			res.Delta[i] = osc[i] - osc[i-1]
		}
		res.Colors[i] = Classify(osc[i], res.Delta[i])

		if Defined(basis[i]) {
			res.NormalizedPrice[i] = close[i] - basis[i]
			if Defined(signal[i]) {
				res.Histogram[i] = basis[i] - signal[i]
			}
		}
		if dev := res.Dev[i]; Defined(dev) {
			res.Upper[i] = dev * cfg.BandMult
			res.Lower[i] = -dev * cfg.BandMult
			res.InnerUpper[i] = dev * cfg.InnerBandMult
			res.InnerLower[i] = -dev * cfg.InnerBandMult
		}
	}
	return res
}

// At returns the oscillator, its color, the normalized price and the basis
// for bar i.
func (r *EFIResult) At(i int) (float64, model.MomentumColor, float64, float64) {
	return r.Oscillator[i], r.Colors[i], r.NormalizedPrice[i], r.Basis[i]
}

// CrossAboveZero reports an oscillator cross from <= 0 to > 0 at bar i.
func (r *EFIResult) CrossAboveZero(i int) bool {
	if i < 1 || !Defined(r.Oscillator[i]) || !Defined(r.Oscillator[i-1]) {
		return false
	}
	return r.Oscillator[i] > 0 && r.Oscillator[i-1] <= 0
}

// CrossBelowZero reports an oscillator cross from >= 0 to < 0 at bar i.
func (r *EFIResult) CrossBelowZero(i int) bool {
	if i < 1 || !Defined(r.Oscillator[i]) || !Defined(r.Oscillator[i-1]) {
		return false
	}
	return r.Oscillator[i] < 0 && r.Oscillator[i-1] >= 0
}

// Classify maps an oscillator value and its one-bar change to a momentum
// color. An undefined change can only produce a weak state.
func Classify(value, delta float64) model.MomentumColor {
	switch {
	case !Defined(value):
		return model.ColorUndefined
	case value > 0:
		if Defined(delta) && delta > 0 {
			return model.ColorStrongBullish
		}
		return model.ColorWeakBullish
	case value < 0:
		if Defined(delta) && delta < 0 {
			return model.ColorStrongBearish
		}
		return model.ColorWeakBearish
	default:
		return model.ColorNeutral
	}
}
