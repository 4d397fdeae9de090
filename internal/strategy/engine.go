package strategy

import (
	"fmt"

	"WatchlistScanner/internal/calculator"
	"WatchlistScanner/internal/model"
)

// RuleConfig is everything Detect needs besides the bars.
type RuleConfig struct {
	Indicators calculator.IndicatorConfig `yaml:"indicators"`
	Rules      []RuleSet                  `yaml:"rules"`
	// EvaluateLast is how many of the most recent bars are evaluated; values
	// below 1 mean the last bar only. AllBars overrides it.
	EvaluateLast int  `yaml:"evaluate_last"`
	AllBars      bool `yaml:"all_bars"`
}

// DefaultRuleConfig evaluates every preset on the last bar.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		Indicators:   calculator.DefaultIndicatorConfig(),
		Rules:        Presets(),
		EvaluateLast: 1,
	}
}

// Validate checks the indicator parameters and every rule.
func (c RuleConfig) Validate() error {
	if err := c.Indicators.Validate(); err != nil {
		return err
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: no rules configured", ErrInvalidRule)
	}
	return ValidateAll(c.Rules)
}

// Evaluation is the verdict of one rule on one bar.
type Evaluation struct {
	Rule       string
	Index      int
	Passed     bool
	Conditions map[string]bool
	Score      float64
	Components []model.ScoreContribution
	Snapshot   model.Snapshot
}

// Evaluate runs one rule against bar idx of an analyzed frame. The score is
// computed whether or not the conditions hold.
func Evaluate(f *calculator.Frame, idx int, rule RuleSet) Evaluation {
	return evaluate(FrameBar(f, idx), rule)
}

func evaluate(bar Bar, rule RuleSet) Evaluation {
	th := rule.Thresholds.Limits()
	results := make(map[string]bool)
	passed := true
	for _, clause := range rule.Require {
		hit := false
		for _, name := range clause {
			ok, seen := results[name]
			if !seen {
				cond, found := conditions[name]
				ok = found && cond(bar, th)
				results[name] = ok
			}
			hit = hit || ok
		}
		passed = passed && hit
	}

	score, parts := TotalScore(rule.Score, bar.Snap)
	return Evaluation{
		Rule:       rule.Name,
		Index:      bar.Index,
		Passed:     passed && score >= rule.MinScore,
		Conditions: results,
		Score:      score,
		Components: parts,
		Snapshot:   bar.Snap,
	}
}

// Detect analyzes one ticker's bars and returns a signal for every
// (bar, rule) pair that passes. Signals come out ordered by bar, then by
// rule order. A series too short for the configured indicators yields no
// signals and an error wrapping calculator.ErrInsufficientData.
func Detect(series model.BarSeries, cfg RuleConfig) ([]model.Signal, error) {
	if err := ValidateAll(cfg.Rules); err != nil {
		return nil, err
	}
	frame, err := calculator.Analyze(series, cfg.Indicators)
	if err != nil {
		return nil, err
	}
	return DetectFrame(frame, cfg), nil
}

// DetectFrame is Detect over an already analyzed frame.
func DetectFrame(frame *calculator.Frame, cfg RuleConfig) []model.Signal {
	start := frame.Last()
	switch {
	case cfg.AllBars:
		start = 0
	case cfg.EvaluateLast > 1:
		start = max(0, frame.Len()-cfg.EvaluateLast)
	}

	var signals []model.Signal
	for i := start; i < frame.Len(); i++ {
		bar := FrameBar(frame, i)
		for _, rule := range cfg.Rules {
			ev := evaluate(bar, rule)
			if ev.Passed {
				signals = append(signals, newSignal(frame.Series.Symbol, rule, ev))
			}
		}
	}
	return signals
}

func newSignal(ticker string, rule RuleSet, ev Evaluation) model.Signal {
	s := ev.Snapshot
	return model.Signal{
		Ticker:          ticker,
		Date:            s.Date,
		Price:           s.Close,
		Rule:            rule.Name,
		Side:            rule.Side,
		Conditions:      ev.Conditions,
		Score:           ev.Score,
		Components:      ev.Components,
		Oscillator:      s.Oscillator,
		Color:           s.Color,
		NormalizedPrice: s.NormalizedPrice,
		Basis:           s.Basis,
		ZonePosition:    s.Zone.PositionPct,
		ZoneLabel:       s.Zone.Label,
		Nearest:         s.Zone.Nearest,
		ChannelDuration: s.Channel.Duration,
		ChannelUpper:    s.Channel.Upper,
		ChannelLower:    s.Channel.Lower,
		Trend:           s.Trend,
		Fader:           s.Fader,
		VolumeRatio:     s.VolumeRatio,
		Plan:            s.Plan,
	}
}
