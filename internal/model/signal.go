package model

import "time"

// Side is the trade direction a rule looks for.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ScoreContribution is one weighted sub-score of a signal's quality score.
type ScoreContribution struct {
	Name       string
	Metric     string
	Value      float64
	Points     float64
	Max        float64
	Commentary string
}

// Signal is the terminal output of the composer for one (ticker, date, rule).
type Signal struct {
	Ticker     string
	Date       time.Time
	Price      float64
	Rule       string
	Side       Side
	Conditions map[string]bool
	Score      float64
	Components []ScoreContribution

	Oscillator      float64
	Color           MomentumColor
	NormalizedPrice float64
	Basis           float64
	ZonePosition    float64
	ZoneLabel       ZoneLabel
	Nearest         QuartileLabel
	ChannelDuration int
	ChannelUpper    float64
	ChannelLower    float64
	Trend           Trend
	Fader           FaderColor
	VolumeRatio     float64
	Plan            TradePlan
}
