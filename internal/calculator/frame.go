package calculator

import (
	"fmt"

	"WatchlistScanner/internal/model"
)

// IndicatorConfig bundles every indicator's parameters.
type IndicatorConfig struct {
	MinBars          int           `yaml:"min_bars"`
	VolumeLookback   int           `yaml:"volume_lookback"`
	RSIPeriod        int           `yaml:"rsi_period"`
	ShakeoutLookback int           `yaml:"shakeout_lookback"`
	EFI              EFIConfig     `yaml:"efi"`
	Channel          ChannelConfig `yaml:"channel"`
	Zone             ZoneConfig    `yaml:"zone"`
	Trend            TrendConfig   `yaml:"trend"`
	Fader            FaderConfig   `yaml:"fader"`
}

// DefaultIndicatorConfig returns the stock parameter set.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		MinBars:          100,
		VolumeLookback:   20,
		RSIPeriod:        14,
		ShakeoutLookback: 20,
		EFI:              DefaultEFIConfig(),
		Channel:          DefaultChannelConfig(),
		Zone:             DefaultZoneConfig(),
		Trend:            DefaultTrendConfig(),
		Fader:            DefaultFaderConfig(),
	}
}

func (c IndicatorConfig) Validate() error {
	if c.MinBars < 1 {
		return fmt.Errorf("indicators: min_bars must be positive, got %d", c.MinBars)
	}
	if c.VolumeLookback < 1 {
		return fmt.Errorf("indicators: volume_lookback must be positive, got %d", c.VolumeLookback)
	}
	if c.RSIPeriod < 1 {
		return fmt.Errorf("indicators: rsi_period must be positive, got %d", c.RSIPeriod)
	}
	if c.ShakeoutLookback < 0 {
		return fmt.Errorf("indicators: shakeout_lookback must not be negative, got %d", c.ShakeoutLookback)
	}
	for _, v := range []interface{ Validate() error }{c.EFI, c.Channel, c.Zone, c.Trend, c.Fader} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RequiredBars is the shortest series Analyze accepts.
func (c IndicatorConfig) RequiredBars() int {
	return max(c.MinBars, c.EFI.Lookback(), c.Channel.Lookback(), c.Trend.Lookback(), c.Fader.Lookback(), c.VolumeLookback+1, c.RSIPeriod+1)
}

// Frame holds every indicator series of one ticker, computed once.
type Frame struct {
	Series  model.BarSeries
	Config  IndicatorConfig
	EFI     *EFIResult
	Channel *ChannelResult
	Fader   *FaderResult
	Trend   []model.Trend
	SMA     []float64

	volumeRatio     []float64
	rsi             []float64
	rangesFromPivot []float64
	rollingHigh     []float64
	rollingLow      []float64
	priorMonthLow   []float64
	lows            []float64
	closes          []float64
}

// Analyze validates the series and computes all indicators over it.
func Analyze(series model.BarSeries, cfg IndicatorConfig) (*Frame, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", series.Symbol, ErrInvalidSeries, err)
	}
	if need := cfg.RequiredBars(); series.Len() < need {
		return nil, fmt.Errorf("%s: %w: have %d bars, need %d", series.Symbol, ErrInsufficientData, series.Len(), need)
	}

	high, low, close := series.Highs(), series.Lows(), series.Closes()
	trend, sma := ComputeTrend(close, cfg.Trend)
	return &Frame{
		Series:          series,
		Config:          cfg,
		EFI:             ComputeEFI(high, low, close, cfg.EFI),
		Channel:         DetectChannel(high, low, close, cfg.Channel),
		Fader:           ComputeFader(close, cfg.Fader),
		Trend:           trend,
		SMA:             sma,
		volumeRatio:     VolumeRatio(series.Volumes(), cfg.VolumeLookback),
		rsi:             RSI(close, cfg.RSIPeriod),
		rangesFromPivot: RangesFromPivot(low, close, cfg.Zone.PivotLookback, cfg.Zone),
		rollingHigh:     RollingHigh(high, cfg.Zone.RollingLookback),
		rollingLow:      RollingLow(low, cfg.Zone.RollingLookback),
		priorMonthLow:   PriorMonthLow(series.Bars),
		lows:            low,
		closes:          close,
	}, nil
}

// Len is the number of bars in the frame.
func (f *Frame) Len() int { return len(f.closes) }

// Last is the index of the most recent bar.
func (f *Frame) Last() int { return len(f.closes) - 1 }

// Snapshot gathers every indicator value at bar i.
func (f *Frame) Snapshot(i int) model.Snapshot {
	bar := f.Series.Bars[i]
	zone := ClassifyZone(bar.Close, f.Config.Zone)
	ch := f.Channel.States[i]
	return model.Snapshot{
		Index:  i,
		Date:   bar.Date,
		Low:    bar.Low,
		Close:  bar.Close,
		Volume: bar.Volume,

		Oscillator:      f.EFI.Oscillator[i],
		OscillatorDelta: f.EFI.Delta[i],
		Color:           f.EFI.Colors[i],
		CrossAboveZero:  f.EFI.CrossAboveZero(i),
		CrossBelowZero:  f.EFI.CrossBelowZero(i),
		NormalizedPrice: f.EFI.NormalizedPrice[i],
		Basis:           f.EFI.Basis[i],
		UpperBand:       f.EFI.Upper[i],
		LowerBand:       f.EFI.Lower[i],
		Histogram:       f.EFI.Histogram[i],

		Channel:         ch,
		ChannelWidthPct: ChannelWidthPct(ch),
		ChannelPosPct:   ChannelPositionPct(ch, bar.Close),
		CloseInChannel:  InChannel(ch, bar.Close),

		Zone:            zone,
		Plan:            PlanTrade(zone, bar.Close),
		RangesFromPivot: f.rangesFromPivot[i],
		RollingHigh:     f.rollingHigh[i],
		RollingLow:      f.rollingLow[i],
		Shakeout:        FindShakeout(f.lows, f.closes, f.priorMonthLow, i, f.Config.ShakeoutLookback),

		Trend: f.Trend[i],
		SMA:   f.SMA[i],

		Fader:       f.Fader.Colors[i],
		FaderTurned: f.Fader.TurnedGreen(i),
		FaderValue:  f.Fader.Line[i],
		VolumeRatio: f.volumeRatio[i],
		RSI:         f.rsi[i],
	}
}
