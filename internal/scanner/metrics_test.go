package scanner

import (
	"math"
	"testing"
)

func TestFormatMarketCap(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{5e9, "$5.00B"},
		{1.234e9, "$1.23B"},
		{7.5e6, "$7.50M"},
		{1e6, "$1.00M"},
		{999999, "$999,999"},
		{1500, "$1,500"},
		{42, "$42"},
	}

	for _, tc := range cases {
		if got := formatMarketCap(tc.in); got != tc.want {
			t.Errorf("formatMarketCap(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSupportResistance(t *testing.T) {
	prices := make([]float64, 0, 21)
	for p := 100.0; p <= 120; p++ {
		prices = append(prices, p)
	}

	support, resistance := supportResistance(prices)
	if math.Abs(support-98.0) > 1e-9 {
		t.Errorf("support = %v, want 98.0", support)
	}
	if math.Abs(resistance-122.4) > 1e-9 {
		t.Errorf("resistance = %v, want 122.4", resistance)
	}

	t.Run("window limited to last 24", func(t *testing.T) {
		series := make([]float64, 0, 30)
		// An early spike outside the window must not move resistance
		series = append(series, 1000)
		for i := 0; i < 29; i++ {
			series = append(series, 100)
		}
		_, resistance := supportResistance(series)
		if math.Abs(resistance-102.0) > 1e-9 {
			t.Errorf("resistance = %v, want 102.0", resistance)
		}
	})

	t.Run("empty series", func(t *testing.T) {
		support, resistance := supportResistance(nil)
		if support != 0 || resistance != 0 {
			t.Errorf("empty series should yield zero targets, got %v/%v", support, resistance)
		}
	})
}

func TestVolatility(t *testing.T) {
	t.Run("mean absolute change", func(t *testing.T) {
		// +10% then -10%: (10 + 10) / 2 = 10
		got := volatility([]float64{100, 110, 99})
		if math.Abs(got-10) > 1e-9 {
			t.Errorf("volatility = %v, want 10", got)
		}
	})

	t.Run("fewer than two points", func(t *testing.T) {
		if v := volatility(nil); v != 0 {
			t.Errorf("volatility(nil) = %v, want 0", v)
		}
		if v := volatility([]float64{42}); v != 0 {
			t.Errorf("volatility(single) = %v, want 0", v)
		}
	})

	t.Run("flat series", func(t *testing.T) {
		if v := volatility([]float64{5, 5, 5, 5}); v != 0 {
			t.Errorf("volatility(flat) = %v, want 0", v)
		}
	})
}

func TestVolumeProfile(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{0.35, "Very High"},
		{0.25, "High"},
		{0.15, "Moderate"},
		{0.05, "Low"},
		{0, "Low"},
	}

	for _, tc := range cases {
		if got := volumeProfile(tc.ratio); got != tc.want {
			t.Errorf("volumeProfile(%v) = %q, want %q", tc.ratio, got, tc.want)
		}
	}
}

func TestDominanceAndDistance(t *testing.T) {
	if got := dominance(1e11, 2e12); math.Abs(got-5) > 1e-9 {
		t.Errorf("dominance = %v, want 5", got)
	}
	if got := dominance(1e11, 0); got != 0 {
		t.Errorf("dominance with zero total = %v, want 0", got)
	}

	if got := athDistance(100, 75); math.Abs(got-25) > 1e-9 {
		t.Errorf("athDistance = %v, want 25", got)
	}
	if got := athDistance(0, 75); got != 0 {
		t.Errorf("athDistance with zero ath = %v, want 0", got)
	}
}

func TestAnalysisScore(t *testing.T) {
	// rank 1 dominates equal volatility
	if analysisScore(2, 1) <= analysisScore(2, 50) {
		t.Error("rank 1 should outrank rank 50 at equal volatility")
	}

	// missing rank must stay finite and contribute nothing
	got := analysisScore(3, 0)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("score with rank 0 must be finite, got %v", got)
	}
	if got != 6 {
		t.Errorf("score with rank 0 = %v, want 6", got)
	}
}
