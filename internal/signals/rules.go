// Package signals maps indicator readings and market deltas to human-readable
// trading signals and a 0-100 confidence score.
package signals

import (
	"fmt"

	"github.com/vkryukov/pulsar/pkg/models"
)

const baseConfidence = 50

// Inputs are the observations a caller has for one asset. Indicators is nil
// when no candle series is available (aggregate scans), which skips the
// indicator rules. A MarketCapRank below 1 means the rank is unknown.
type Inputs struct {
	Indicators        *models.IndicatorSnapshot
	Change24h         float64
	VolumeToMarketCap float64
	WeeklyChange      float64
	RecentUptrend     bool
	MarketCapRank     int
}

// Ruleset derives signals from market observations. Rules are additive and
// evaluated in a fixed order; a rule may append a signal and shift the
// confidence delta, and no rule short-circuits another.
type Ruleset struct{}

// NewRuleset creates the signal ruleset
func NewRuleset() *Ruleset {
	return &Ruleset{}
}

// Evaluate applies the rule table and returns the triggered signals in rule
// order together with the accumulated confidence delta.
func (r *Ruleset) Evaluate(in Inputs) ([]string, int) {
	signals := make([]string, 0, 8)
	delta := 0

	if in.Indicators != nil {
		rsi := in.Indicators.RSI
		if rsi < 30 {
			signals = append(signals, "💡 Oversold conditions (potential buy)")
			delta += 20
		} else if rsi > 70 {
			signals = append(signals, "⚠️ Overbought conditions (potential sell)")
			delta -= 20
		}

		macd := in.Indicators.MACD
		if macd.MACD > macd.Signal {
			signals = append(signals, "🚀 MACD bullish signal")
			delta += 15

			if macd.Histogram > 0 {
				signals = append(signals, "📈 Positive MACD momentum")
				delta += 5
			}
		} else {
			signals = append(signals, "📉 MACD bearish signal")
			delta -= 15

			if macd.Histogram < 0 {
				signals = append(signals, "📉 Negative MACD momentum")
				delta -= 5
			}
		}
	}

	if in.Change24h > 5 {
		signals = append(signals, fmt.Sprintf("📈 Strong upward momentum (+%.2f%%)", in.Change24h))
		delta += 15
	} else if in.Change24h < -5 {
		signals = append(signals, fmt.Sprintf("📉 Strong downward momentum (%.2f%%)", in.Change24h))
		delta -= 15
	}

	if in.VolumeToMarketCap > 0.2 {
		signals = append(signals, "🔥 High trading activity")
		delta += 10
	} else if in.VolumeToMarketCap > 0.1 {
		signals = append(signals, "📊 Above average volume")
		delta += 5
	}

	if in.WeeklyChange > 10 {
		signals = append(signals, "💫 Strong weekly trend")
		delta += 10
	} else if in.WeeklyChange < -10 {
		signals = append(signals, "⚠️ Weekly downtrend")
		delta -= 10
	}

	if in.RecentUptrend {
		signals = append(signals, "✨ Continuous uptrend")
		delta += 5
	}

	if in.MarketCapRank >= 1 && in.MarketCapRank <= 10 {
		signals = append(signals, "👑 Top 10 crypto")
		delta += 5
	}

	return signals, delta
}

// Confidence folds a rule delta into the final clamped score
func Confidence(delta int) int {
	confidence := baseConfidence + delta
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

// RecentUptrend reports whether the last 12 points of a price series are
// non-decreasing. Series shorter than 2 points carry no trend.
func RecentUptrend(prices []float64) bool {
	if len(prices) < 2 {
		return false
	}

	recent := prices
	if len(recent) > 12 {
		recent = recent[len(recent)-12:]
	}

	for i := 1; i < len(recent); i++ {
		if recent[i] < recent[i-1] {
			return false
		}
	}
	return true
}
