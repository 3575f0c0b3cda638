package indicators

import (
	"errors"
	"fmt"
	"math"

	"github.com/cinar/indicator"

	"github.com/vkryukov/pulsar/pkg/models"
)

const (
	rsiPeriod  = 14
	macdSlow   = 26
	macdSignal = 9

	minRsiLen  = rsiPeriod + 1
	minMacdLen = macdSlow + macdSignal
)

// ErrInsufficientData means the input series is shorter than the lookback
// window of the requested indicator. Not retryable.
var ErrInsufficientData = errors.New("insufficient data for technical analysis")

// ErrInvalidIndicator means an indicator produced a non-finite value.
// Treated as fatal for the analysis, never silently defaulted.
var ErrInvalidIndicator = errors.New("indicator produced an invalid value")

// Calculator computes technical indicators from closing prices
type Calculator struct{}

// NewCalculator creates new indicator calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Snapshot computes the current RSI(14) and MACD(12,26,9) readings from a
// chronological closing-price series. The last value of each computed series
// is the current reading. Same input always yields the same output: all
// series are computed strictly left to right.
func (c *Calculator) Snapshot(closes []float64) (*models.IndicatorSnapshot, error) {
	rsi, err := c.RSI(closes)
	if err != nil {
		return nil, err
	}

	macd, err := c.MACD(closes)
	if err != nil {
		return nil, err
	}

	return &models.IndicatorSnapshot{RSI: rsi, MACD: *macd}, nil
}

// RSI returns the current RSI(14) reading
func (c *Calculator) RSI(closes []float64) (float64, error) {
	if len(closes) < minRsiLen {
		return 0, fmt.Errorf("%w: RSI needs at least %d closes, got %d", ErrInsufficientData, minRsiLen, len(closes))
	}

	_, rsi := indicator.Rsi(closes)
	current := rsi[len(rsi)-1]

	if !isFinite(current) {
		return 0, fmt.Errorf("%w: rsi=%v", ErrInvalidIndicator, current)
	}
	return current, nil
}

// MACD returns the current MACD(12,26,9) reading with signal line and histogram
func (c *Calculator) MACD(closes []float64) (*models.MACDValue, error) {
	if len(closes) < minMacdLen {
		return nil, fmt.Errorf("%w: MACD needs at least %d closes, got %d", ErrInsufficientData, minMacdLen, len(closes))
	}

	macdLine, signalLine := indicator.Macd(closes)

	line := macdLine[len(macdLine)-1]
	signal := signalLine[len(signalLine)-1]
	histogram := line - signal

	if !isFinite(line) || !isFinite(signal) || !isFinite(histogram) {
		return nil, fmt.Errorf("%w: macd=%v signal=%v", ErrInvalidIndicator, line, signal)
	}

	return &models.MACDValue{
		MACD:      line,
		Signal:    signal,
		Histogram: histogram,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
