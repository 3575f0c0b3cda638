package indicators

import (
	"errors"
	"math"
	"testing"
)

// generateCloses builds a deterministic noisy series around a base price
func generateCloses(n int, base float64) []float64 {
	closes := make([]float64, n)
	price := base
	for i := 0; i < n; i++ {
		// Alternate gains and losses with a mild upward drift
		if i%3 == 0 {
			price *= 0.995
		} else {
			price *= 1.004
		}
		closes[i] = price
	}
	return closes
}

func TestCalculator_Snapshot(t *testing.T) {
	calc := NewCalculator()
	closes := generateCloses(50, 40000)

	snapshot, err := calc.Snapshot(closes)
	if err != nil {
		t.Fatalf("Failed to compute snapshot: %v", err)
	}

	if snapshot.RSI < 0 || snapshot.RSI > 100 {
		t.Errorf("RSI should be between 0-100, got %.2f", snapshot.RSI)
	}

	wantHist := snapshot.MACD.MACD - snapshot.MACD.Signal
	if math.Abs(snapshot.MACD.Histogram-wantHist) > 1e-12 {
		t.Errorf("Histogram should equal MACD-signal, got %v want %v", snapshot.MACD.Histogram, wantHist)
	}
}

func TestCalculator_Deterministic(t *testing.T) {
	calc := NewCalculator()
	closes := generateCloses(80, 43000)

	first, err := calc.Snapshot(closes)
	if err != nil {
		t.Fatalf("First snapshot failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := calc.Snapshot(closes)
		if err != nil {
			t.Fatalf("Repeated snapshot failed: %v", err)
		}
		if *again != *first {
			t.Fatalf("Snapshot not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestCalculator_InsufficientData(t *testing.T) {
	calc := NewCalculator()

	t.Run("short series for RSI", func(t *testing.T) {
		_, err := calc.RSI(generateCloses(10, 40000))
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("short series for MACD", func(t *testing.T) {
		_, err := calc.MACD(generateCloses(30, 40000))
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("snapshot propagates", func(t *testing.T) {
		_, err := calc.Snapshot(generateCloses(10, 40000))
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("minimum lengths succeed", func(t *testing.T) {
		if _, err := calc.RSI(generateCloses(15, 40000)); err != nil {
			t.Errorf("RSI at minimum length failed: %v", err)
		}
		if _, err := calc.MACD(generateCloses(35, 40000)); err != nil {
			t.Errorf("MACD at minimum length failed: %v", err)
		}
	})
}

func TestCalculator_RSIExtremes(t *testing.T) {
	calc := NewCalculator()

	rising := make([]float64, 40)
	falling := make([]float64, 40)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 200 - float64(i)
	}

	up, err := calc.RSI(rising)
	if err != nil {
		t.Fatalf("RSI on rising series failed: %v", err)
	}
	down, err := calc.RSI(falling)
	if err != nil {
		t.Fatalf("RSI on falling series failed: %v", err)
	}

	if up <= down {
		t.Errorf("RSI of rising series (%.2f) should exceed falling series (%.2f)", up, down)
	}
	if up < 70 {
		t.Errorf("RSI of strictly rising series should be high, got %.2f", up)
	}
	if down > 30 {
		t.Errorf("RSI of strictly falling series should be low, got %.2f", down)
	}
}
