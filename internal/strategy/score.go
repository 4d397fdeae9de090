package strategy

import (
	"fmt"
	"math"
	"sort"

	"WatchlistScanner/internal/model"
)

// Band directions.
const (
	Above = "above"
	Below = "below"
)

// Band awards Points when the metric clears Threshold in the component's
// direction.
type Band struct {
	Threshold float64 `yaml:"threshold"`
	Points    float64 `yaml:"points"`
}

// ScoreComponent is one sub-score of a rule's quality score. It is scored in
// one of three ways:
//
//   - categorical: Points maps the metric's label to a fixed award
//   - banded: the first matching entry of Bands
//   - linear: (value - Offset) * Weight
//
// Every contribution is clamped to [0, Max].
type ScoreComponent struct {
	Name      string             `yaml:"name"`
	Metric    string             `yaml:"metric"`
	Weight    float64            `yaml:"weight"`
	Offset    float64            `yaml:"offset"`
	Max       float64            `yaml:"max"`
	Direction string             `yaml:"direction"`
	Bands     []Band             `yaml:"bands"`
	Points    map[string]float64 `yaml:"points"`
}

// Validate rejects negative weights and bands that would make the score
// decrease as the metric improves.
func (c ScoreComponent) Validate() error {
	name := c.label()
	m, ok := metrics[c.Metric]
	if !ok {
		return fmt.Errorf("score %s: unknown metric %q", name, c.Metric)
	}
	if c.Max <= 0 {
		return fmt.Errorf("score %s: max must be positive", name)
	}
	switch {
	case len(c.Points) > 0:
		if !m.categorical {
			return fmt.Errorf("score %s: metric %q has no labels", name, c.Metric)
		}
		for label, p := range c.Points {
			if p < 0 {
				return fmt.Errorf("score %s: negative points for %q", name, label)
			}
		}
	case len(c.Bands) > 0:
		if m.categorical {
			return fmt.Errorf("score %s: metric %q is categorical", name, c.Metric)
		}
		if c.Direction != Above && c.Direction != Below {
			return fmt.Errorf("score %s: direction must be %q or %q", name, Above, Below)
		}
		for i, b := range c.Bands {
			if b.Points < 0 {
				return fmt.Errorf("score %s: band %d has negative points", name, i)
			}
			if i == 0 {
				continue
			}
			prev := c.Bands[i-1]
			ordered := b.Threshold > prev.Threshold
			if c.Direction == Above {
				ordered = b.Threshold < prev.Threshold
			}
			if !ordered || b.Points > prev.Points {
				return fmt.Errorf("score %s: bands are not monotone at %d", name, i)
			}
		}
	default:
		if m.categorical {
			return fmt.Errorf("score %s: metric %q is categorical", name, c.Metric)
		}
		if c.Weight <= 0 {
			return fmt.Errorf("score %s: weight must be positive", name)
		}
	}
	return nil
}

func (c ScoreComponent) label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Metric
}

// Contribution scores one snapshot. Undefined metrics earn nothing.
func (c ScoreComponent) Contribution(s model.Snapshot) model.ScoreContribution {
	out := model.ScoreContribution{Name: c.label(), Metric: c.Metric, Value: math.NaN(), Max: c.Max}
	m, ok := metrics[c.Metric]
	if !ok {
		return out
	}
	value, tag, ok := m.read(s)
	if !ok {
		out.Commentary = "n/a"
		return out
	}
	out.Value = value

	var pts float64
	switch {
	case len(c.Points) > 0:
		pts = c.Points[tag]
		out.Commentary = tag
	case len(c.Bands) > 0:
		for _, b := range c.Bands {
			if (c.Direction == Above && value >= b.Threshold) || (c.Direction == Below && value < b.Threshold) {
				pts = b.Points
				break
			}
		}
		out.Commentary = fmt.Sprintf("%.2f", value)
	default:
		pts = (value - c.Offset) * c.Weight
		out.Commentary = fmt.Sprintf("%.2f", value)
	}
	out.Points = math.Max(0, math.Min(c.Max, pts))
	return out
}

// TotalScore sums the components of a rule, clamps to [0, 100] and rounds to
// one decimal, half away from zero.
func TotalScore(components []ScoreComponent, s model.Snapshot) (float64, []model.ScoreContribution) {
	parts := make([]model.ScoreContribution, 0, len(components))
	total := 0.0
	for _, c := range components {
		p := c.Contribution(s)
		parts = append(parts, p)
		total += p.Points
	}
	total = math.Max(0, math.Min(100, total))
	return math.Round(total*10) / 10, parts
}

type metric struct {
	categorical bool
	read        func(s model.Snapshot) (float64, string, bool)
}

func numeric(f func(s model.Snapshot) float64) metric {
	return metric{read: func(s model.Snapshot) (float64, string, bool) {
		v := f(s)
		return v, "", defined(v)
	}}
}

var metrics = map[string]metric{
	"channel_days": {read: func(s model.Snapshot) (float64, string, bool) {
		return float64(s.Channel.Duration), "", true
	}},
	"channel_width_pct":    numeric(func(s model.Snapshot) float64 { return s.ChannelWidthPct }),
	"channel_position_pct": numeric(func(s model.Snapshot) float64 { return s.ChannelPosPct }),
	"norm_price":           numeric(func(s model.Snapshot) float64 { return s.NormalizedPrice }),
	"norm_price_abs":       numeric(func(s model.Snapshot) float64 { return math.Abs(s.NormalizedPrice) }),
	"oscillator":           numeric(func(s model.Snapshot) float64 { return s.Oscillator }),
	"volume_ratio":         numeric(func(s model.Snapshot) float64 { return s.VolumeRatio }),
	"rsi":                  numeric(func(s model.Snapshot) float64 { return s.RSI }),
	"zone_position": {read: func(s model.Snapshot) (float64, string, bool) {
		return s.Zone.PositionPct, "", s.Zone.Defined
	}},
	"reward_risk":        numeric(func(s model.Snapshot) float64 { return s.Plan.RewardRisk }),
	"level_distance_pct": numeric(func(s model.Snapshot) float64 { return s.Plan.DistancePct }),
	"ranges_from_pivot":  numeric(func(s model.Snapshot) float64 { return s.RangesFromPivot }),
	"shakeout_days": {read: func(s model.Snapshot) (float64, string, bool) {
		return float64(s.Shakeout.DaysAgo), "", s.Shakeout.Found
	}},
	"shakeout_depth_pct":    numeric(func(s model.Snapshot) float64 { return s.Shakeout.DepthPct }),
	"shakeout_recovery_pct": numeric(func(s model.Snapshot) float64 { return s.Shakeout.RecoveryPct }),
	"momentum_color": {categorical: true, read: func(s model.Snapshot) (float64, string, bool) {
		return float64(s.Color), s.Color.String(), s.Color != model.ColorUndefined
	}},
	"fader_color": {categorical: true, read: func(s model.Snapshot) (float64, string, bool) {
		return float64(s.Fader), s.Fader.String(), s.Fader != model.FaderUndefined
	}},
	"zone_label": {categorical: true, read: func(s model.Snapshot) (float64, string, bool) {
		return s.Zone.PositionPct, string(s.Zone.Label), s.Zone.Defined
	}},
}

// MetricNames lists every metric a score component may read, sorted.
func MetricNames() []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
