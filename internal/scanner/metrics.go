package scanner

import (
	"fmt"
	"math"
	"strconv"
)

const supportResistanceWindow = 24

// dominance returns the asset's share of total market capitalization in percent
func dominance(marketCap, totalMarketCap float64) float64 {
	if totalMarketCap <= 0 {
		return 0
	}
	return marketCap / totalMarketCap * 100
}

// volumeToMarketCap returns the 24h volume as a fraction of market cap
func volumeToMarketCap(volume, marketCap float64) float64 {
	if marketCap <= 0 {
		return 0
	}
	return volume / marketCap
}

// athDistance returns how far below the all-time high the price sits, in percent
func athDistance(ath, price float64) float64 {
	if ath <= 0 {
		return 0
	}
	return (ath - price) / ath * 100
}

// volatility is the mean absolute percent change between consecutive points.
// Series with fewer than 2 points carry no movement and score 0.
func volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		sum += math.Abs((prices[i] - prev) / prev * 100)
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// supportResistance derives price targets from the last 24 series points:
// support 2% under the window low, resistance 2% over the window high.
func supportResistance(prices []float64) (support, resistance float64) {
	if len(prices) == 0 {
		return 0, 0
	}

	recent := prices
	if len(recent) > supportResistanceWindow {
		recent = recent[len(recent)-supportResistanceWindow:]
	}

	low, high := recent[0], recent[0]
	for _, p := range recent[1:] {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}

	return low * 0.98, high * 1.02
}

// volumeProfile buckets the volume/market-cap ratio into a display label
func volumeProfile(ratio float64) string {
	switch {
	case ratio > 0.3:
		return "Very High"
	case ratio > 0.2:
		return "High"
	case ratio > 0.1:
		return "Moderate"
	default:
		return "Low"
	}
}

// formatMarketCap renders a market cap for display: billions and millions are
// abbreviated, smaller values shown as a grouped integer.
func formatMarketCap(marketCap float64) string {
	switch {
	case marketCap >= 1e9:
		return fmt.Sprintf("$%.2fB", marketCap/1e9)
	case marketCap >= 1e6:
		return fmt.Sprintf("$%.2fM", marketCap/1e6)
	default:
		return "$" + groupThousands(int64(math.Round(marketCap)))
	}
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return sign + string(out)
}

// analysisScore ranks assets for the market analysis view: volatility weighted
// double plus a rank bonus that favors the top of the market. Assets without a
// valid rank get no bonus so the score stays finite.
func analysisScore(vol float64, rank int) float64 {
	score := vol * 2
	if rank >= 1 {
		score += 1 / float64(rank)
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
