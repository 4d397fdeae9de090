package model

import "time"

// MomentumColor is the four-state force index classification plus the
// warm-up and exact-zero states.
type MomentumColor int

const (
	ColorUndefined MomentumColor = iota
	ColorNeutral
	ColorStrongBullish
	ColorWeakBullish
	ColorStrongBearish
	ColorWeakBearish
)

var colorNames = [...]string{"undefined", "neutral", "strong_bullish", "weak_bullish", "strong_bearish", "weak_bearish"}

func (c MomentumColor) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return "undefined"
	}
	return colorNames[c]
}

// Bullish reports strong or weak bullish.
func (c MomentumColor) Bullish() bool { return c == ColorStrongBullish || c == ColorWeakBullish }

// Bearish reports strong or weak bearish.
func (c MomentumColor) Bearish() bool { return c == ColorStrongBearish || c == ColorWeakBearish }

// ParseMomentumColor maps a color name back to its value.
func ParseMomentumColor(s string) (MomentumColor, bool) {
	for i, n := range colorNames {
		if n == s {
			return MomentumColor(i), true
		}
	}
	return ColorUndefined, false
}

// Trend is the SMA slope-and-position classification.
type Trend int

const (
	TrendNeutral Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "uptrend"
	case TrendDown:
		return "downtrend"
	default:
		return "neutral"
	}
}

// ParseTrend maps a trend name back to its value; unknown names are neutral.
func ParseTrend(s string) Trend {
	switch s {
	case "uptrend":
		return TrendUp
	case "downtrend":
		return TrendDown
	default:
		return TrendNeutral
	}
}

// FaderColor is the direction of the fader line.
type FaderColor int

const (
	FaderUndefined FaderColor = iota
	FaderGreen
	FaderRed
)

func (f FaderColor) String() string {
	switch f {
	case FaderGreen:
		return "green"
	case FaderRed:
		return "red"
	default:
		return "undefined"
	}
}

func ParseFaderColor(s string) FaderColor {
	switch s {
	case "green":
		return FaderGreen
	case "red":
		return FaderRed
	default:
		return FaderUndefined
	}
}

// ChannelState is the squeeze channel at one bar. Upper and Lower are NaN
// when the channel is not printing; Duration counts the consecutive squeeze
// bars ending at this bar, so a printing channel always has Duration >= 1.
type ChannelState struct {
	InSqueeze bool
	Upper     float64
	Lower     float64
	Duration  int
}

// ZoneLabel is the buy/neutral/sell split of a bracket.
type ZoneLabel string

const (
	ZoneUndefined ZoneLabel = ""
	ZoneBuy       ZoneLabel = "buy_zone"
	ZoneNeutral   ZoneLabel = "neutral_zone"
	ZoneSell      ZoneLabel = "sell_zone"
)

// QuartileLabel names the quartile level nearest to the price.
type QuartileLabel string

const (
	QuartileUndefined QuartileLabel = ""
	Near0             QuartileLabel = "NEAR_0"
	Near25            QuartileLabel = "NEAR_25"
	Near50            QuartileLabel = "NEAR_50"
	Near75            QuartileLabel = "NEAR_75"
	Near100           QuartileLabel = "NEAR_100"
)

// QuartileLevels are the 0/25/50/75/100% prices of a bracket.
type QuartileLevels struct {
	L0, L25, L50, L75, L100 float64
}

// Zone is the denomination bracket enclosing a price.
type Zone struct {
	Defined     bool
	Floor       float64
	Ceiling     float64
	Size        float64
	PositionPct float64 // [0, 100)
	Levels      QuartileLevels
	Label       ZoneLabel
	Nearest     QuartileLabel
}

// TradeType distinguishes the two quartile-level trades.
type TradeType string

const (
	TradeNone        TradeType = ""
	TradeWithinRange TradeType = "WITHIN_RANGE"
	TradeRangeChange TradeType = "RANGE_CHANGE"
)

// TradePlan is the level-to-level entry/stop/target derived from a zone.
type TradePlan struct {
	Type        TradeType
	Entry       float64
	Stop        float64
	Target      float64
	RewardRisk  float64
	DistancePct float64 // distance from price to the entry level, % of bracket size
}

// Shakeout is a recent break of the prior calendar month's low. Found is
// false when no bar in the lookback broke it; the other fields are then NaN.
type Shakeout struct {
	PriorMonthLow float64
	Found         bool
	DaysAgo       int
	Low           float64
	DepthPct      float64 // how far the low went under the prior month low
	RecoveryPct   float64 // close above the shakeout low
}

// Snapshot is every indicator value at one bar. Float fields hold NaN when
// the indicator is still warming up.
type Snapshot struct {
	Index  int
	Date   time.Time
	Low    float64
	Close  float64
	Volume int64

	Oscillator      float64
	OscillatorDelta float64
	Color           MomentumColor
	CrossAboveZero  bool
	CrossBelowZero  bool
	NormalizedPrice float64
	Basis           float64
	UpperBand       float64
	LowerBand       float64
	Histogram       float64

	Channel         ChannelState
	ChannelWidthPct float64
	ChannelPosPct   float64
	CloseInChannel  bool

	Zone            Zone
	Plan            TradePlan
	RangesFromPivot float64
	RollingHigh     float64
	RollingLow      float64
	Shakeout        Shakeout

	Trend Trend
	SMA   float64

	Fader       FaderColor
	FaderTurned bool // red two bars ago, green for the last two
	FaderValue  float64
	VolumeRatio float64
	RSI         float64
}
