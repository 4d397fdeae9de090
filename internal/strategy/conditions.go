package strategy

import (
	"math"
	"sort"

	"WatchlistScanner/internal/calculator"
	"WatchlistScanner/internal/model"
)

// Bar is the view a condition evaluates: one snapshot plus access to the
// bars before it.
type Bar struct {
	Index int
	Snap  model.Snapshot
	back  func(i int) model.Snapshot
}

// FrameBar builds the view of bar i of an analyzed frame.
func FrameBar(f *calculator.Frame, i int) Bar {
	return Bar{Index: i, Snap: f.Snapshot(i), back: f.Snapshot}
}

// Back returns the snapshot k bars before this one.
func (b Bar) Back(k int) (model.Snapshot, bool) {
	if k == 0 {
		return b.Snap, true
	}
	i := b.Index - k
	if b.back == nil || i < 0 {
		return model.Snapshot{}, false
	}
	return b.back(i), true
}

// Condition is a named boolean predicate over one bar. Undefined inputs
// always evaluate false.
type Condition func(b Bar, th Limits) bool

var defined = calculator.Defined

func colorIs(c model.MomentumColor) Condition {
	return func(b Bar, _ Limits) bool { return b.Snap.Color == c }
}

func zoneIs(l model.ZoneLabel) Condition {
	return func(b Bar, _ Limits) bool { return b.Snap.Zone.Defined && b.Snap.Zone.Label == l }
}

func nearest(q model.QuartileLabel) Condition {
	return func(b Bar, _ Limits) bool { return b.Snap.Zone.Defined && b.Snap.Zone.Nearest == q }
}

var conditions = map[string]Condition{
	"channel_printing": func(b Bar, _ Limits) bool {
		return b.Snap.Channel.InSqueeze
	},
	"channel_min_days": func(b Bar, th Limits) bool {
		return b.Snap.Channel.InSqueeze && b.Snap.Channel.Duration >= th.MinChannelDays
	},
	"close_in_channel": func(b Bar, _ Limits) bool {
		return b.Snap.CloseInChannel
	},
	"channel_held": func(b Bar, th Limits) bool {
		for k := 0; k < th.HeldBars; k++ {
			s, ok := b.Back(k)
			if !ok || !s.CloseInChannel {
				return false
			}
		}
		return true
	},
	"channel_position_max": func(b Bar, th Limits) bool {
		return defined(b.Snap.ChannelPosPct) && b.Snap.ChannelPosPct <= th.MaxChannelPosition
	},

	"efi_strong_bullish": colorIs(model.ColorStrongBullish),
	"efi_weak_bullish":   colorIs(model.ColorWeakBullish),
	"efi_strong_bearish": colorIs(model.ColorStrongBearish),
	"efi_weak_bearish":   colorIs(model.ColorWeakBearish),
	"efi_bullish": func(b Bar, _ Limits) bool {
		return b.Snap.Color.Bullish()
	},
	"efi_bearish": func(b Bar, _ Limits) bool {
		return b.Snap.Color.Bearish()
	},
	"efi_rising": func(b Bar, _ Limits) bool {
		return defined(b.Snap.OscillatorDelta) && b.Snap.OscillatorDelta > 0
	},
	"efi_cross_above_zero": func(b Bar, _ Limits) bool {
		return b.Snap.CrossAboveZero
	},
	"efi_cross_below_zero": func(b Bar, _ Limits) bool {
		return b.Snap.CrossBelowZero
	},
	"efi_turned_bullish": func(b Bar, _ Limits) bool {
		prev, ok := b.Back(1)
		return ok && prev.Color.Bearish() && b.Snap.Color.Bullish()
	},
	// Bullish, or still below zero but rising with the normalized price off
	// its lows.
	"efi_recovering": func(b Bar, th Limits) bool {
		s := b.Snap
		if s.Color.Bullish() {
			return true
		}
		return s.Color == model.ColorWeakBearish && defined(s.OscillatorDelta) && s.OscillatorDelta > 0 &&
			defined(s.NormalizedPrice) && s.NormalizedPrice > th.RecoveringNormMin
	},

	"norm_price_below": func(b Bar, th Limits) bool {
		return defined(b.Snap.NormalizedPrice) && b.Snap.NormalizedPrice < th.NormPriceBelow
	},
	"norm_price_above_zero": func(b Bar, _ Limits) bool {
		return defined(b.Snap.NormalizedPrice) && b.Snap.NormalizedPrice > 0
	},
	"norm_price_below_zero": func(b Bar, _ Limits) bool {
		return defined(b.Snap.NormalizedPrice) && b.Snap.NormalizedPrice < 0
	},
	"norm_price_below_band": func(b Bar, _ Limits) bool {
		s := b.Snap
		return defined(s.NormalizedPrice) && defined(s.LowerBand) && s.NormalizedPrice < s.LowerBand
	},
	"norm_price_above_band": func(b Bar, _ Limits) bool {
		s := b.Snap
		return defined(s.NormalizedPrice) && defined(s.UpperBand) && s.NormalizedPrice > s.UpperBand
	},
	"norm_price_zero_touch": normPriceZeroTouch,
	"norm_price_cross_above_zero": func(b Bar, _ Limits) bool {
		prev, ok := b.Back(1)
		cur := b.Snap.NormalizedPrice
		return ok && defined(prev.NormalizedPrice) && defined(cur) && prev.NormalizedPrice <= 0 && cur > 0
	},

	"zone_buy":     zoneIs(model.ZoneBuy),
	"zone_neutral": zoneIs(model.ZoneNeutral),
	"zone_sell":    zoneIs(model.ZoneSell),
	"zone_near_25": nearest(model.Near25),
	"zone_near_75": nearest(model.Near75),
	"zone_position_max": func(b Bar, th Limits) bool {
		return b.Snap.Zone.Defined && b.Snap.Zone.PositionPct <= th.MaxZonePosition
	},

	"trend_up": func(b Bar, _ Limits) bool {
		return b.Snap.Trend == model.TrendUp
	},
	"trend_down": func(b Bar, _ Limits) bool {
		return b.Snap.Trend == model.TrendDown
	},

	"fader_green": func(b Bar, _ Limits) bool {
		return b.Snap.Fader == model.FaderGreen
	},
	"fader_red": func(b Bar, _ Limits) bool {
		return b.Snap.Fader == model.FaderRed
	},
	"fader_turned_green": func(b Bar, _ Limits) bool {
		return b.Snap.FaderTurned
	},

	"shakeout_recent": func(b Bar, _ Limits) bool {
		return b.Snap.Shakeout.Found
	},
	"shakeout_reclaim": func(b Bar, _ Limits) bool {
		sh := b.Snap.Shakeout
		return sh.Found && defined(sh.PriorMonthLow) && b.Snap.Close > sh.PriorMonthLow
	},

	"not_overextended": func(b Bar, th Limits) bool {
		return defined(b.Snap.RangesFromPivot) && b.Snap.RangesFromPivot < th.MaxRangesFromPivot
	},
	"volume_above_average": func(b Bar, th Limits) bool {
		return defined(b.Snap.VolumeRatio) && b.Snap.VolumeRatio > th.MinVolumeRatio
	},
	"rsi_oversold": func(b Bar, th Limits) bool {
		return defined(b.Snap.RSI) && b.Snap.RSI < th.RSIBelow
	},
	"rsi_overbought": func(b Bar, th Limits) bool {
		return defined(b.Snap.RSI) && b.Snap.RSI > th.RSIAbove
	},
}

// normPriceZeroTouch fires when the normalized price comes down from above
// zero to touch it: the previous bar was above zero, some bar in the lookback
// cleared the touch band and the current bar is inside the band or below zero.
func normPriceZeroTouch(b Bar, th Limits) bool {
	cur := b.Snap.NormalizedPrice
	prev, ok := b.Back(1)
	if !ok || !defined(cur) || !defined(prev.NormalizedPrice) || prev.NormalizedPrice <= 0 {
		return false
	}
	band := b.Snap.Close * th.ZeroTouchPct / 100
	if math.Abs(cur) > band && cur > 0 {
		return false
	}
	for k := 1; k <= th.ZeroTouchLookback; k++ {
		s, ok := b.Back(k)
		if !ok {
			break
		}
		if defined(s.NormalizedPrice) && s.NormalizedPrice > band {
			return true
		}
	}
	return false
}

// ConditionNames lists every registered condition, sorted.
func ConditionNames() []string {
	names := make([]string, 0, len(conditions))
	for name := range conditions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
