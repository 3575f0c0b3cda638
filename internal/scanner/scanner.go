// Package scanner runs aggregate market scans: ranked listings of trending,
// gaining, losing and volume-surging assets, plus derived market analyses and
// signal scores. Every scan reads through the cache and falls back to the
// last cached value when the upstream source fails.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/adapters/config"
	"github.com/vkryukov/pulsar/internal/adapters/market"
	"github.com/vkryukov/pulsar/internal/signals"
	"github.com/vkryukov/pulsar/internal/storage"
	"github.com/vkryukov/pulsar/pkg/logger"
	"github.com/vkryukov/pulsar/pkg/models"
)

// Kind selects a market scan
type Kind string

const (
	KindTrending       Kind = "trending"
	KindGainers        Kind = "gainers"
	KindLosers         Kind = "losers"
	KindVolumeSurge    Kind = "volumeSurge"
	KindMarketAnalysis Kind = "marketAnalysis"
	KindSignals        Kind = "signals"
)

const (
	trendingFetch    = 15
	trendingTop      = 10
	moversTop        = 10
	volumeSurgeFetch = 20
	volumeSurgeTop   = 10
	snapshotFetch    = 50
	analysisTop      = 9
)

// Scanner computes ranked market snapshots with read-through caching
type Scanner struct {
	source         market.MarketSource
	rules          *signals.Ruleset
	store          storage.Store
	snapshotWindow time.Duration
	moversWindow   time.Duration
}

// New creates a market scanner
func New(source market.MarketSource, store storage.Store, cfg *config.ScannerConfig) *Scanner {
	return &Scanner{
		source:         source,
		rules:          signals.NewRuleset(),
		store:          store,
		snapshotWindow: cfg.SnapshotWindow,
		moversWindow:   cfg.MoversWindow,
	}
}

// Scan runs the scan for a kind. The returned flag is true when the upstream
// fetch failed and the last cached listing was served instead; fresh cache
// hits are indistinguishable from fresh computations.
func (s *Scanner) Scan(ctx context.Context, kind Kind) ([]models.MarketEntry, bool, error) {
	switch kind {
	case KindTrending:
		return s.cached(ctx, storage.KeyTrendingCoins, s.snapshotWindow, s.trending)
	case KindGainers:
		return s.cached(ctx, storage.KeyTopGainers, s.moversWindow, s.gainers)
	case KindLosers:
		return s.cached(ctx, storage.KeyTopLosers, s.moversWindow, s.losers)
	case KindVolumeSurge:
		return s.cached(ctx, storage.KeyVolumeSurge, s.moversWindow, s.volumeSurge)
	case KindMarketAnalysis:
		return s.cached(ctx, storage.KeyRecentAnalyses, s.snapshotWindow, s.marketAnalysis)
	case KindSignals:
		return s.cached(ctx, storage.KeyMarketSignals, s.snapshotWindow, s.marketSignals)
	default:
		return nil, false, fmt.Errorf("unknown scan kind %q", kind)
	}
}

// MarketData returns the raw top-of-market ticker listing, cached like a scan
func (s *Scanner) MarketData(ctx context.Context) ([]models.MarketTicker, bool, error) {
	key := storage.KeyMarketData

	var cachedData []models.MarketTicker
	writtenAt, cacheErr := s.store.Get(ctx, key, &cachedData)
	hit := cacheErr == nil

	if hit && time.Since(writtenAt) < s.snapshotWindow {
		return cachedData, false, nil
	}

	tickers, err := s.source.Markets(ctx, market.MarketQuery{
		Order:                 market.OrderMarketCapDesc,
		PerPage:               snapshotFetch,
		PriceChangePercentage: "24h",
	})
	if err != nil {
		if hit {
			logger.Warn("serving cached market data after upstream failure", zap.Error(err))
			return cachedData, true, nil
		}
		return nil, false, err
	}

	s.write(ctx, key, tickers)
	return tickers, false, nil
}

// cached implements the read-through policy shared by all scan kinds:
// unexpired cache entries are returned verbatim, expired ones trigger a
// recompute, and a failed recompute serves the expired entry flagged stale.
func (s *Scanner) cached(
	ctx context.Context,
	key string,
	window time.Duration,
	compute func(ctx context.Context) ([]models.MarketEntry, error),
) ([]models.MarketEntry, bool, error) {
	var cachedEntries []models.MarketEntry
	writtenAt, cacheErr := s.store.Get(ctx, key, &cachedEntries)
	hit := cacheErr == nil

	if hit && time.Since(writtenAt) < window {
		return cachedEntries, false, nil
	}

	entries, err := compute(ctx)
	if err != nil {
		if hit {
			logger.Warn("serving cached scan after upstream failure",
				zap.String("key", key),
				zap.Error(err),
			)
			return cachedEntries, true, nil
		}
		return nil, false, err
	}

	s.write(ctx, key, entries)
	return entries, false, nil
}

func (s *Scanner) write(ctx context.Context, key string, value interface{}) {
	if err := s.store.Set(ctx, key, value); err != nil {
		logger.Warn("failed to cache scan result",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// trending ranks high-volume assets by volume-weighted price movement
func (s *Scanner) trending(ctx context.Context) ([]models.MarketEntry, error) {
	tickers, err := s.source.Markets(ctx, market.MarketQuery{
		Order:                 market.OrderVolumeDesc,
		PerPage:               trendingFetch,
		PriceChangePercentage: "24h",
	})
	if err != nil {
		return nil, err
	}

	entries := baseEntries(tickers)
	sort.SliceStable(entries, func(i, j int) bool {
		return trendScore(entries[i]) > trendScore(entries[j])
	})

	return truncate(entries, trendingTop), nil
}

func trendScore(e models.MarketEntry) float64 {
	change := e.Change24h
	if change < 0 {
		change = -change
	}
	return e.Volume24h * change
}

func (s *Scanner) gainers(ctx context.Context) ([]models.MarketEntry, error) {
	return s.movers(ctx, market.OrderChange24hDesc)
}

func (s *Scanner) losers(ctx context.Context) ([]models.MarketEntry, error) {
	return s.movers(ctx, market.OrderChange24hAsc)
}

func (s *Scanner) movers(ctx context.Context, order string) ([]models.MarketEntry, error) {
	tickers, err := s.source.Markets(ctx, market.MarketQuery{
		Order:                 order,
		PerPage:               moversTop,
		PriceChangePercentage: "24h",
	})
	if err != nil {
		return nil, err
	}
	return baseEntries(tickers), nil
}

// volumeSurge keeps assets whose 24h volume exceeds 10% of market cap
func (s *Scanner) volumeSurge(ctx context.Context) ([]models.MarketEntry, error) {
	tickers, err := s.source.Markets(ctx, market.MarketQuery{
		Order:                 market.OrderVolumeDesc,
		PerPage:               volumeSurgeFetch,
		PriceChangePercentage: "24h",
	})
	if err != nil {
		return nil, err
	}

	entries := make([]models.MarketEntry, 0, volumeSurgeTop)
	for _, t := range tickers {
		ratio := volumeToMarketCap(t.TotalVolume, t.MarketCap)
		if ratio <= 0.1 {
			continue
		}

		e := baseEntry(t)
		e.KeyMetrics = &models.EntryKeyMetrics{MarketCapToVolume: round2(ratio)}
		entries = append(entries, e)
	}

	return truncate(entries, volumeSurgeTop), nil
}

// marketAnalysis derives the full metric set for the top of the market and
// keeps the most interesting assets by volatility and rank
func (s *Scanner) marketAnalysis(ctx context.Context) ([]models.MarketEntry, error) {
	totalMarketCap, err := s.source.GlobalMarketCap(ctx)
	if err != nil {
		return nil, err
	}

	tickers, err := s.source.Markets(ctx, market.MarketQuery{
		Order:                 market.OrderMarketCapDesc,
		PerPage:               snapshotFetch,
		Sparkline:             true,
		PriceChangePercentage: "24h,7d,30d",
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	entries := make([]models.MarketEntry, len(tickers))
	for i, t := range tickers {
		ratio := volumeToMarketCap(t.TotalVolume, t.MarketCap)
		vol := volatility(t.Sparkline)
		support, resistance := supportResistance(t.Sparkline)

		shortTerm, mediumTerm := "Bearish", "Bearish"
		if t.Change24h > 0 {
			shortTerm = "Bullish"
		}
		if t.Change7d > 0 {
			mediumTerm = "Bullish"
		}
		volumeTrend := "Decreasing"
		if t.TotalVolume > 0 {
			volumeTrend = "Increasing"
		}

		entries[i] = models.MarketEntry{
			ID:            t.ID,
			Symbol:        strings.ToUpper(t.Symbol),
			Name:          t.Name,
			MarketCapRank: t.MarketCapRank,
			Price:         t.CurrentPrice,
			Change24h:     t.Change24h,
			Change7d:      t.Change7d,
			Volume24h:     t.TotalVolume,
			MarketCap:     t.MarketCap,
			Analysis: &models.EntryAnalysis{
				MarketCap:       formatMarketCap(t.MarketCap),
				Dominance:       round2(dominance(t.MarketCap, totalMarketCap)),
				VolatilityScore: round2(vol),
				VolumeProfile:   volumeProfile(ratio),
				PriceTarget: models.PriceTarget{
					Support:    round2(support),
					Resistance: round2(resistance),
				},
			},
			Trends: &models.EntryTrends{
				ShortTerm:   shortTerm,
				MediumTerm:  mediumTerm,
				VolumeTrend: volumeTrend,
			},
			KeyMetrics: &models.EntryKeyMetrics{
				MarketCapToVolume: round2(ratio),
				Volatility24h:     round2(vol),
				ATHDistance:       round2(athDistance(t.ATH, t.CurrentPrice)),
			},
			Timestamp: now,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a := analysisScore(entries[i].KeyMetrics.Volatility24h, entries[i].MarketCapRank)
		b := analysisScore(entries[j].KeyMetrics.Volatility24h, entries[j].MarketCapRank)
		return a > b
	})

	return truncate(entries, analysisTop), nil
}

// marketSignals scores the top of the market with the signal ruleset and
// ranks every fetched asset by confidence
func (s *Scanner) marketSignals(ctx context.Context) ([]models.MarketEntry, error) {
	tickers, err := s.source.Markets(ctx, market.MarketQuery{
		Order:                 market.OrderMarketCapDesc,
		PerPage:               snapshotFetch,
		Sparkline:             true,
		PriceChangePercentage: "24h,7d",
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	entries := make([]models.MarketEntry, len(tickers))
	for i, t := range tickers {
		weeklyChange := 0.0
		if len(t.Sparkline) > 1 && t.Sparkline[0] != 0 {
			first, last := t.Sparkline[0], t.Sparkline[len(t.Sparkline)-1]
			weeklyChange = (last - first) / first * 100
		}

		sigs, delta := s.rules.Evaluate(signals.Inputs{
			Change24h:         t.Change24h,
			VolumeToMarketCap: volumeToMarketCap(t.TotalVolume, t.MarketCap),
			WeeklyChange:      weeklyChange,
			RecentUptrend:     signals.RecentUptrend(t.Sparkline),
			MarketCapRank:     t.MarketCapRank,
		})

		e := baseEntry(t)
		e.Signals = sigs
		e.Confidence = signals.Confidence(delta)
		e.Sparkline = t.Sparkline
		e.Timestamp = now
		entries[i] = e
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Confidence > entries[j].Confidence
	})

	return entries, nil
}

func baseEntry(t models.MarketTicker) models.MarketEntry {
	return models.MarketEntry{
		ID:            t.ID,
		Symbol:        strings.ToUpper(t.Symbol),
		Name:          t.Name,
		MarketCapRank: t.MarketCapRank,
		Price:         t.CurrentPrice,
		Change24h:     t.Change24h,
		Volume24h:     t.TotalVolume,
		MarketCap:     t.MarketCap,
		Timestamp:     time.Now().UnixMilli(),
	}
}

func baseEntries(tickers []models.MarketTicker) []models.MarketEntry {
	entries := make([]models.MarketEntry, len(tickers))
	for i, t := range tickers {
		entries[i] = baseEntry(t)
	}
	return entries
}

func truncate(entries []models.MarketEntry, n int) []models.MarketEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
