package strategy

import "WatchlistScanner/internal/model"

// Presets returns the built-in scanner rule sets. Each call returns fresh
// values that callers may modify.
func Presets() []RuleSet {
	return []RuleSet{
		{
			Name:        "ultimate",
			Description: "Channel printing in an uptrend, price low in the channel, oversold force index, close under the basis",
			Side:        model.SideBuy,
			Require: [][]string{
				{"channel_printing"},
				{"trend_up"},
				{"channel_position_max"},
				{"efi_bearish"},
				{"norm_price_below"},
			},
			Thresholds: Thresholds{MaxChannelPosition: Float(35), NormPriceBelow: Float(-0.2)},
			Score: []ScoreComponent{
				{Name: "consolidation", Metric: "channel_days", Weight: 0.5, Max: 25},
				{Name: "oversold", Metric: "norm_price_abs", Weight: 25, Max: 25},
				{Name: "force", Metric: "momentum_color", Max: 25, Points: map[string]float64{
					model.ColorStrongBearish.String(): 25,
					model.ColorWeakBearish.String():   15,
				}},
				{Name: "volume", Metric: "volume_ratio", Offset: 1, Weight: 50, Max: 25},
			},
		},
		{
			Name:        "triple_signal",
			Description: "Channel printing, buy zone, bearish force index, uptrend",
			Side:        model.SideBuy,
			Require: [][]string{
				{"channel_printing"},
				{"zone_buy"},
				{"efi_bearish"},
				{"trend_up"},
			},
			Score: []ScoreComponent{
				{Name: "consolidation", Metric: "channel_days", Weight: 1, Max: 40},
				{Name: "force", Metric: "momentum_color", Max: 30, Points: map[string]float64{
					model.ColorStrongBearish.String(): 30,
					model.ColorWeakBearish.String():   20,
				}},
				{Name: "zone depth", Metric: "zone_position", Direction: Below, Max: 30, Bands: []Band{
					{Threshold: 10, Points: 30},
					{Threshold: 20, Points: 20},
					{Threshold: 35, Points: 10},
				}},
			},
		},
		{
			Name:        "efi_price_zone_buy",
			Description: "Strong bearish force index in the buy zone of an uptrend",
			Side:        model.SideBuy,
			Require:     [][]string{{"efi_strong_bearish"}, {"zone_buy"}, {"trend_up"}},
			Score: []ScoreComponent{
				{Name: "zone depth", Metric: "zone_position", Direction: Below, Max: 50, Bands: []Band{
					{Threshold: 10, Points: 50},
					{Threshold: 20, Points: 35},
					{Threshold: 35, Points: 20},
				}},
				{Name: "volume", Metric: "volume_ratio", Offset: 1, Weight: 50, Max: 50},
			},
		},
		{
			Name:        "efi_price_zone_sell",
			Description: "Strong bearish force index in the sell zone of a downtrend",
			Side:        model.SideSell,
			Require:     [][]string{{"efi_strong_bearish"}, {"zone_sell"}, {"trend_down"}},
			Score: []ScoreComponent{
				{Name: "zone height", Metric: "zone_position", Direction: Above, Max: 50, Bands: []Band{
					{Threshold: 90, Points: 50},
					{Threshold: 80, Points: 35},
					{Threshold: 65, Points: 20},
				}},
				{Name: "volume", Metric: "volume_ratio", Offset: 1, Weight: 50, Max: 50},
			},
		},
		{
			Name:        "efi_zero_cross",
			Description: "Force index crosses above zero with price above the basis",
			Side:        model.SideBuy,
			Require:     [][]string{{"efi_cross_above_zero"}, {"norm_price_above_zero"}},
			Score: []ScoreComponent{
				{Name: "trend", Metric: "fader_color", Max: 40, Points: map[string]float64{"green": 40}},
				{Name: "volume", Metric: "volume_ratio", Offset: 1, Weight: 60, Max: 60},
			},
		},
		{
			Name:        "efi_zero_touch",
			Description: "Normalized price pulls back from above zero to touch the basis",
			Side:        model.SideBuy,
			Require:     [][]string{{"norm_price_zero_touch"}},
			Score: []ScoreComponent{
				{Name: "force", Metric: "momentum_color", Max: 50, Points: map[string]float64{
					model.ColorStrongBullish.String(): 50,
					model.ColorWeakBullish.String():   40,
				}},
				{Name: "volume", Metric: "volume_ratio", Offset: 1, Weight: 50, Max: 50},
			},
		},
		{
			Name:        "fader_channel",
			Description: "Fader turns green while price holds inside a printing channel",
			Side:        model.SideBuy,
			Require:     [][]string{{"channel_printing"}, {"fader_turned_green"}, {"channel_held"}},
			Thresholds:  Thresholds{HeldBars: Int(3)},
			Score: []ScoreComponent{
				{Name: "duration", Metric: "channel_days", Weight: 1, Max: 30},
				{Name: "tightness", Metric: "channel_width_pct", Direction: Below, Max: 30, Bands: []Band{
					{Threshold: 2, Points: 30},
					{Threshold: 5, Points: 20},
					{Threshold: 10, Points: 10},
				}},
				{Name: "position", Metric: "channel_position_pct", Direction: Below, Max: 20, Bands: []Band{
					{Threshold: 30, Points: 20},
					{Threshold: 50, Points: 15},
					{Threshold: 70, Points: 10},
				}},
				{Name: "strength", Metric: "channel_days", Direction: Above, Max: 20, Bands: []Band{
					{Threshold: 10, Points: 20},
					{Threshold: 5, Points: 15},
					{Threshold: 3, Points: 10},
				}},
			},
		},
		{
			Name:        "range_level",
			Description: "Price settling at the 25% or 75% level of its zone without being overextended",
			Side:        model.SideBuy,
			Require:     [][]string{{"zone_near_25", "zone_near_75"}, {"not_overextended"}},
			Thresholds:  Thresholds{MaxRangesFromPivot: Float(3)},
			MinScore:    30,
			Score: []ScoreComponent{
				{Name: "fader", Metric: "fader_color", Max: 25, Points: map[string]float64{"green": 25}},
				{Name: "force", Metric: "momentum_color", Max: 25, Points: map[string]float64{
					model.ColorStrongBullish.String(): 25,
					model.ColorWeakBullish.String():   25,
					model.ColorWeakBearish.String():   15,
				}},
				{Name: "entry", Metric: "level_distance_pct", Direction: Below, Max: 20, Bands: []Band{
					{Threshold: 5, Points: 20},
					{Threshold: 10, Points: 10},
				}},
				{Name: "reward/risk", Metric: "reward_risk", Direction: Above, Max: 15, Bands: []Band{
					{Threshold: 2, Points: 15},
					{Threshold: 1.5, Points: 10},
				}},
				{Name: "freshness", Metric: "ranges_from_pivot", Direction: Below, Max: 15, Bands: []Band{
					{Threshold: 1, Points: 15},
					{Threshold: 2, Points: 10},
				}},
			},
		},
		{
			Name:        "momentum_reversal",
			Description: "Normalized price crosses above zero as the force index turns from bearish to bullish",
			Side:        model.SideBuy,
			Require:     [][]string{{"norm_price_cross_above_zero"}, {"efi_turned_bullish"}},
			Score: []ScoreComponent{
				{Name: "price", Metric: "norm_price", Weight: 30, Max: 30},
				{Name: "force", Metric: "momentum_color", Max: 40, Points: map[string]float64{
					model.ColorStrongBullish.String(): 40,
					model.ColorWeakBullish.String():   20,
				}},
				{Name: "volume", Metric: "volume_ratio", Offset: 1, Weight: 60, Max: 30},
			},
		},
		{
			Name:        "shakeout_reversal",
			Description: "Uptrend that broke last month's low, reclaimed it and has the force index recovering",
			Side:        model.SideBuy,
			Require:     [][]string{{"trend_up"}, {"shakeout_reclaim"}, {"efi_recovering"}},
			Thresholds:  Thresholds{RecoveringNormMin: Float(-0.3)},
			MinScore:    20,
			Score: []ScoreComponent{
				{Name: "force", Metric: "momentum_color", Max: 30, Points: map[string]float64{
					model.ColorStrongBullish.String(): 30,
					model.ColorWeakBullish.String():   30,
					model.ColorWeakBearish.String():   20,
				}},
				{Name: "speed", Metric: "shakeout_days", Direction: Below, Max: 20, Bands: []Band{
					{Threshold: 11, Points: 20},
					{Threshold: 16, Points: 10},
				}},
				{Name: "bounce", Metric: "shakeout_recovery_pct", Direction: Above, Max: 25, Bands: []Band{
					{Threshold: 5, Points: 25},
					{Threshold: 2, Points: 12},
				}},
				{Name: "depth", Metric: "shakeout_depth_pct", Direction: Above, Max: 25, Bands: []Band{
					{Threshold: 3, Points: 25},
					{Threshold: 1, Points: 12},
				}},
			},
		},
	}
}

// Preset looks up a built-in rule set by name.
func Preset(name string) (RuleSet, bool) {
	for _, r := range Presets() {
		if r.Name == name {
			return r, true
		}
	}
	return RuleSet{}, false
}
