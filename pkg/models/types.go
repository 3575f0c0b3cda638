package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewDecimal creates decimal from float64
func NewDecimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// Candle represents OHLCV candlestick data
type Candle struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// MarketTicker represents one row of an aggregate market snapshot listing
type MarketTicker struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	CurrentPrice  float64   `json:"current_price"`
	MarketCap     float64   `json:"market_cap"`
	MarketCapRank int       `json:"market_cap_rank"`
	TotalVolume   float64   `json:"total_volume"`
	ATH           float64   `json:"ath"`
	Change24h     float64   `json:"price_change_percentage_24h"`
	Change7d      float64   `json:"price_change_percentage_7d"`
	Sparkline     []float64 `json:"sparkline"`
}

// MACDValue holds the current MACD reading
type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// IndicatorSnapshot holds the current indicator readings for a symbol
type IndicatorSnapshot struct {
	RSI  float64   `json:"rsi"`
	MACD MACDValue `json:"macd"`
}

// AnalysisResult is the per-symbol technical analysis record
type AnalysisResult struct {
	Symbol     string            `json:"symbol"`
	Price      float64           `json:"price"`
	Change24h  float64           `json:"change24h"`
	Indicators IndicatorSnapshot `json:"indicators"`
	Signals    []string          `json:"signals"`
	Confidence int               `json:"confidence"`
	Timestamp  int64             `json:"timestamp"`
}

// PriceTarget holds derived support/resistance levels
type PriceTarget struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// EntryAnalysis holds derived market metrics for a snapshot entry
type EntryAnalysis struct {
	MarketCap       string      `json:"marketCap"`
	Dominance       float64     `json:"dominance"`
	VolatilityScore float64     `json:"volatilityScore"`
	VolumeProfile   string      `json:"volumeProfile"`
	PriceTarget     PriceTarget `json:"priceTarget"`
}

// EntryTrends holds directional trend labels
type EntryTrends struct {
	ShortTerm   string `json:"shortTerm"`
	MediumTerm  string `json:"mediumTerm"`
	VolumeTrend string `json:"volumeTrend"`
}

// EntryKeyMetrics holds raw metric values backing the analysis
type EntryKeyMetrics struct {
	MarketCapToVolume float64 `json:"marketCapToVolume"`
	Volatility24h     float64 `json:"volatility24h"`
	ATHDistance       float64 `json:"athDistance"`
}

// MarketEntry is one ranked row of a market scan. The analysis, trends and
// keyMetrics sections are populated only by scans that derive them.
type MarketEntry struct {
	ID            string           `json:"id,omitempty"`
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	MarketCapRank int              `json:"marketCapRank,omitempty"`
	Price         float64          `json:"price"`
	Change24h     float64          `json:"change24h"`
	Change7d      float64          `json:"change7d,omitempty"`
	Volume24h     float64          `json:"volume24h"`
	MarketCap     float64          `json:"marketCap"`
	Signals       []string         `json:"signals,omitempty"`
	Confidence    int              `json:"confidence,omitempty"`
	Sparkline     []float64        `json:"sparkline,omitempty"`
	Analysis      *EntryAnalysis   `json:"analysis,omitempty"`
	Trends        *EntryTrends     `json:"trends,omitempty"`
	KeyMetrics    *EntryKeyMetrics `json:"keyMetrics,omitempty"`
	Timestamp     int64            `json:"timestamp"`
}

// UserInteraction is one recorded bot command, kept in per-user history
type UserInteraction struct {
	Command   string `json:"command"`
	Timestamp int64  `json:"timestamp"`
}

// PriceAlert is a user-defined price level for a symbol
type PriceAlert struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}
