// Package analyzer produces per-symbol technical analysis records from
// hourly candle data.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/adapters/market"
	"github.com/vkryukov/pulsar/internal/indicators"
	"github.com/vkryukov/pulsar/internal/signals"
	"github.com/vkryukov/pulsar/internal/storage"
	"github.com/vkryukov/pulsar/pkg/logger"
	"github.com/vkryukov/pulsar/pkg/models"
)

const (
	candleTimeframe = "1h"
	candleLimit     = 100
	change24hWindow = 24
)

// Analyzer derives signals and confidence for a single symbol. Every call
// re-fetches source data and re-derives the result; the cache is written on
// success but never consulted before recomputing. The cached value is read
// only as a fallback when the upstream fetch fails.
type Analyzer struct {
	candles market.CandleSource
	calc    *indicators.Calculator
	rules   *signals.Ruleset
	store   storage.Store
}

// New creates an analyzer
func New(candles market.CandleSource, store storage.Store) *Analyzer {
	return &Analyzer{
		candles: candles,
		calc:    indicators.NewCalculator(),
		rules:   signals.NewRuleset(),
		store:   store,
	}
}

// Analyze computes the analysis record for a symbol. The returned flag is
// true when the upstream fetch failed and a previously cached record was
// served instead.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, bool, error) {
	candles, err := a.candles.FetchOHLCV(ctx, symbol, candleTimeframe, candleLimit)
	if err != nil {
		if errors.Is(err, market.ErrUpstream) {
			return a.fallback(ctx, symbol, err)
		}
		return nil, false, fmt.Errorf("failed to fetch candles for %s: %w", symbol, err)
	}

	closes := models.Closes(candles)

	snapshot, err := a.calc.Snapshot(closes)
	if err != nil {
		// Short or broken series is a deterministic failure for this symbol,
		// not an upstream outage: no cache consult, not retried.
		return nil, false, fmt.Errorf("failed to analyze %s: %w", symbol, err)
	}

	currentPrice := closes[len(closes)-1]
	change24h := 0.0
	if len(closes) >= change24hWindow {
		ref := closes[len(closes)-change24hWindow]
		change24h = (currentPrice - ref) / ref * 100
	}

	sigs, delta := a.rules.Evaluate(signals.Inputs{
		Indicators:    snapshot,
		Change24h:     change24h,
		RecentUptrend: signals.RecentUptrend(closes),
	})

	result := &models.AnalysisResult{
		Symbol:     symbol,
		Price:      currentPrice,
		Change24h:  change24h,
		Indicators: *snapshot,
		Signals:    sigs,
		Confidence: signals.Confidence(delta),
		Timestamp:  time.Now().UnixMilli(),
	}

	// Always overwrite: the analyzer re-derives every call and the cache only
	// exists to serve the last good value during outages.
	if err := a.store.Set(ctx, storage.AnalysisKey(symbol), result); err != nil {
		logger.Warn("failed to cache analysis result",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
	}

	logger.Info("symbol analyzed",
		zap.String("symbol", symbol),
		zap.Float64("rsi", snapshot.RSI),
		zap.Int("confidence", result.Confidence),
		zap.Int("signals", len(sigs)),
	)

	return result, false, nil
}

func (a *Analyzer) fallback(ctx context.Context, symbol string, cause error) (*models.AnalysisResult, bool, error) {
	var cached models.AnalysisResult
	if _, err := a.store.Get(ctx, storage.AnalysisKey(symbol), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to analyze %s: %w", symbol, cause)
	}

	logger.Warn("serving cached analysis after upstream failure",
		zap.String("symbol", symbol),
		zap.Error(cause),
	)

	return &cached, true, nil
}
