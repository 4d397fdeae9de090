package strategy

import (
	"errors"
	"fmt"

	"WatchlistScanner/internal/model"
)

var (
	// ErrUnknownCondition is returned for a rule naming a condition that is
	// not registered.
	ErrUnknownCondition = errors.New("unknown condition")
	// ErrInvalidRule is returned for a structurally invalid rule set.
	ErrInvalidRule = errors.New("invalid rule")
)

// Thresholds are the numeric knobs read by parameterized conditions. A nil
// field takes the default noted beside it; an explicit zero is kept.
type Thresholds struct {
	MinChannelDays     *int     `yaml:"min_channel_days,omitempty"`      // default 0
	HeldBars           *int     `yaml:"held_bars,omitempty"`             // default 3
	MaxChannelPosition *float64 `yaml:"max_channel_position,omitempty"`  // default 35
	NormPriceBelow     *float64 `yaml:"norm_price_below,omitempty"`      // default 0
	MaxZonePosition    *float64 `yaml:"max_zone_position,omitempty"`     // default 35
	MaxRangesFromPivot *float64 `yaml:"max_ranges_from_pivot,omitempty"` // default 3
	MinVolumeRatio     *float64 `yaml:"min_volume_ratio,omitempty"`      // default 1
	ZeroTouchPct       *float64 `yaml:"zero_touch_pct,omitempty"`        // default 0.05
	ZeroTouchLookback  *int     `yaml:"zero_touch_lookback,omitempty"`   // default 5
	RSIBelow           *float64 `yaml:"rsi_below,omitempty"`             // default 30
	RSIAbove           *float64 `yaml:"rsi_above,omitempty"`             // default 70
	RecoveringNormMin  *float64 `yaml:"recovering_norm_min,omitempty"`   // default -0.3
}

// Int and Float return pointers for Thresholds literals.
func Int(v int) *int           { return &v }
func Float(v float64) *float64 { return &v }

// Limits are resolved Thresholds, the values conditions compare against.
type Limits struct {
	MinChannelDays     int
	HeldBars           int
	MaxChannelPosition float64
	NormPriceBelow     float64
	MaxZonePosition    float64
	MaxRangesFromPivot float64
	MinVolumeRatio     float64
	ZeroTouchPct       float64
	ZeroTouchLookback  int
	RSIBelow           float64
	RSIAbove           float64
	RecoveringNormMin  float64
}

// DefaultLimits are the limits of an empty Thresholds.
func DefaultLimits() Limits {
	return Limits{
		HeldBars:           3,
		MaxChannelPosition: 35,
		MaxZonePosition:    35,
		MaxRangesFromPivot: 3,
		MinVolumeRatio:     1,
		ZeroTouchPct:       0.05,
		ZeroTouchLookback:  5,
		RSIBelow:           30,
		RSIAbove:           70,
		RecoveringNormMin:  -0.3,
	}
}

func pick[T int | float64](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Limits resolves the thresholds over DefaultLimits.
func (t Thresholds) Limits() Limits {
	l := DefaultLimits()
	pick(&l.MinChannelDays, t.MinChannelDays)
	pick(&l.HeldBars, t.HeldBars)
	pick(&l.MaxChannelPosition, t.MaxChannelPosition)
	pick(&l.NormPriceBelow, t.NormPriceBelow)
	pick(&l.MaxZonePosition, t.MaxZonePosition)
	pick(&l.MaxRangesFromPivot, t.MaxRangesFromPivot)
	pick(&l.MinVolumeRatio, t.MinVolumeRatio)
	pick(&l.ZeroTouchPct, t.ZeroTouchPct)
	pick(&l.ZeroTouchLookback, t.ZeroTouchLookback)
	pick(&l.RSIBelow, t.RSIBelow)
	pick(&l.RSIAbove, t.RSIAbove)
	pick(&l.RecoveringNormMin, t.RecoveringNormMin)
	return l
}

// RuleSet is one declarative scanner: an AND of clauses, each clause an OR
// of named conditions, plus the score table ranking the bars that pass.
type RuleSet struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Side        model.Side       `yaml:"side"`
	Require     [][]string       `yaml:"require"`
	Thresholds  Thresholds       `yaml:"thresholds"`
	Score       []ScoreComponent `yaml:"score"`
	MinScore    float64          `yaml:"min_score"`
}

// Validate checks the rule against the condition and metric registries.
func (r RuleSet) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRule)
	}
	if r.Side != model.SideBuy && r.Side != model.SideSell {
		return fmt.Errorf("%w: %s: side must be BUY or SELL, got %q", ErrInvalidRule, r.Name, r.Side)
	}
	if len(r.Require) == 0 {
		return fmt.Errorf("%w: %s: no required conditions", ErrInvalidRule, r.Name)
	}
	for i, clause := range r.Require {
		if len(clause) == 0 {
			return fmt.Errorf("%w: %s: clause %d is empty", ErrInvalidRule, r.Name, i)
		}
		for _, name := range clause {
			if _, ok := conditions[name]; !ok {
				return fmt.Errorf("%w: %s: %q", ErrUnknownCondition, r.Name, name)
			}
		}
	}
	for _, c := range r.Score {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.Name, err)
		}
	}
	if r.MinScore < 0 || r.MinScore > 100 {
		return fmt.Errorf("%w: %s: min_score must be within [0, 100]", ErrInvalidRule, r.Name)
	}
	return nil
}

// ConditionNames lists every condition the rule references, in order of
// first appearance.
func (r RuleSet) ConditionNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, clause := range r.Require {
		for _, name := range clause {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// ValidateAll validates every rule and rejects duplicate names.
func ValidateAll(rules []RuleSet) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate rule %q", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}
