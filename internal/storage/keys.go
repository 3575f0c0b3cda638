package storage

import (
	"fmt"
	"strings"
)

// Cache key namespace shared by the analyzer, scanner, bot and API.
const (
	KeyMarketData     = "market_data"
	KeyTrendingCoins  = "trending_coins"
	KeyTopGainers     = "top_gainers"
	KeyTopLosers      = "top_losers"
	KeyVolumeSurge    = "volume_surge"
	KeyMarketSignals  = "market_signals"
	KeyRecentAnalyses = "recent_analyses"
)

// AnalysisKey returns the cache key for a per-symbol analysis result
func AnalysisKey(symbol string) string {
	return "analysis:" + strings.ToUpper(symbol)
}

// UserHistoryKey returns the interaction history key for a chat
func UserHistoryKey(chatID int64) string {
	return fmt.Sprintf("user:%d:history", chatID)
}

// AlertKey returns the price alert key for a chat and symbol
func AlertKey(chatID int64, symbol string) string {
	return fmt.Sprintf("alert:%d:%s", chatID, strings.ToUpper(symbol))
}
