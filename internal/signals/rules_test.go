package signals

import (
	"strings"
	"testing"

	"github.com/vkryukov/pulsar/pkg/models"
)

func containsSignal(signals []string, fragment string) bool {
	for _, s := range signals {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func TestRuleset_VolumeAndMomentum(t *testing.T) {
	rules := NewRuleset()

	// High trading activity plus strong upward momentum, nothing else
	sigs, delta := rules.Evaluate(Inputs{
		Change24h:         6,
		VolumeToMarketCap: 0.25,
	})

	if !containsSignal(sigs, "High trading activity") {
		t.Errorf("Expected high trading activity signal, got %v", sigs)
	}
	if !containsSignal(sigs, "Strong upward momentum") {
		t.Errorf("Expected strong upward momentum signal, got %v", sigs)
	}
	if delta != 25 {
		t.Errorf("Expected delta 25, got %d", delta)
	}
	if got := Confidence(delta); got != 75 {
		t.Errorf("Expected confidence 75, got %d", got)
	}
}

func TestRuleset_FixedOrder(t *testing.T) {
	rules := NewRuleset()

	// Trigger rules across the whole table and check they come out in table
	// order, not by magnitude
	sigs, _ := rules.Evaluate(Inputs{
		Indicators: &models.IndicatorSnapshot{
			RSI:  25,
			MACD: models.MACDValue{MACD: 2, Signal: 1, Histogram: 1},
		},
		Change24h:         7,
		VolumeToMarketCap: 0.3,
		WeeklyChange:      12,
		RecentUptrend:     true,
		MarketCapRank:     3,
	})

	wantOrder := []string{
		"Oversold",
		"MACD bullish",
		"Positive MACD momentum",
		"Strong upward momentum",
		"High trading activity",
		"Strong weekly trend",
		"Continuous uptrend",
		"Top 10",
	}

	if len(sigs) != len(wantOrder) {
		t.Fatalf("Expected %d signals, got %d: %v", len(wantOrder), len(sigs), sigs)
	}
	for i, fragment := range wantOrder {
		if !strings.Contains(sigs[i], fragment) {
			t.Errorf("Signal %d should contain %q, got %q", i, fragment, sigs[i])
		}
	}
}

func TestRuleset_BearishRules(t *testing.T) {
	rules := NewRuleset()

	sigs, delta := rules.Evaluate(Inputs{
		Indicators: &models.IndicatorSnapshot{
			RSI:  75,
			MACD: models.MACDValue{MACD: -2, Signal: -1, Histogram: -1},
		},
		Change24h:    -8,
		WeeklyChange: -15,
	})

	for _, fragment := range []string{"Overbought", "MACD bearish", "Negative MACD momentum", "Strong downward momentum", "Weekly downtrend"} {
		if !containsSignal(sigs, fragment) {
			t.Errorf("Expected %q signal, got %v", fragment, sigs)
		}
	}

	// -20 -15 -5 -15 -10
	if delta != -65 {
		t.Errorf("Expected delta -65, got %d", delta)
	}
	if got := Confidence(delta); got != 0 {
		t.Errorf("Expected confidence clamped to 0, got %d", got)
	}
}

func TestConfidence_Clamp(t *testing.T) {
	cases := []struct {
		delta int
		want  int
	}{
		{-200, 0},
		{-51, 0},
		{-50, 0},
		{-49, 1},
		{0, 50},
		{25, 75},
		{50, 100},
		{51, 100},
		{200, 100},
	}

	for _, tc := range cases {
		if got := Confidence(tc.delta); got != tc.want {
			t.Errorf("Confidence(%d) = %d, want %d", tc.delta, got, tc.want)
		}
	}
}

func TestRuleset_NoIndicators(t *testing.T) {
	rules := NewRuleset()

	sigs, delta := rules.Evaluate(Inputs{})
	if len(sigs) != 0 {
		t.Errorf("Neutral inputs should produce no signals, got %v", sigs)
	}
	if delta != 0 {
		t.Errorf("Neutral inputs should produce zero delta, got %d", delta)
	}
	if got := Confidence(delta); got != 50 {
		t.Errorf("Neutral confidence should be 50, got %d", got)
	}
}

func TestRuleset_RankGuard(t *testing.T) {
	rules := NewRuleset()

	// Missing rank must not match the top-10 rule
	sigs, _ := rules.Evaluate(Inputs{MarketCapRank: 0})
	if containsSignal(sigs, "Top 10") {
		t.Errorf("Rank 0 should not trigger the top-10 rule: %v", sigs)
	}

	sigs, _ = rules.Evaluate(Inputs{MarketCapRank: 10})
	if !containsSignal(sigs, "Top 10") {
		t.Errorf("Rank 10 should trigger the top-10 rule: %v", sigs)
	}
}

func TestRecentUptrend(t *testing.T) {
	cases := []struct {
		name   string
		prices []float64
		want   bool
	}{
		{"empty", nil, false},
		{"single point", []float64{100}, false},
		{"rising", []float64{1, 2, 3, 4, 5}, true},
		{"flat", []float64{5, 5, 5}, true},
		{"dip", []float64{1, 2, 1.5, 3}, false},
		{"rises only in last 12", append(make([]float64, 0, 20), 10, 9, 8, 7, 6, 5, 4, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RecentUptrend(tc.prices); got != tc.want {
				t.Errorf("RecentUptrend(%v) = %v, want %v", tc.prices, got, tc.want)
			}
		})
	}
}
