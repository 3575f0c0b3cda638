package market

import (
	"context"
	"errors"

	"github.com/vkryukov/pulsar/pkg/models"
)

// ErrUpstream marks a failed upstream fetch. Callers holding a cached value
// serve it stale instead of surfacing this error.
var ErrUpstream = errors.New("market: upstream request failed")

// Listing orders supported by the aggregate market source
const (
	OrderMarketCapDesc = "market_cap_desc"
	OrderVolumeDesc    = "volume_desc"
	OrderChange24hDesc = "price_change_percentage_24h_desc"
	OrderChange24hAsc  = "price_change_percentage_24h_asc"
)

// MarketQuery describes one aggregate market listing request
type MarketQuery struct {
	Order                 string
	PerPage               int
	Sparkline             bool
	PriceChangePercentage string
}

// MarketSource provides aggregate market snapshot listings
type MarketSource interface {
	// Markets returns a ticker listing ordered and sized per the query
	Markets(ctx context.Context, q MarketQuery) ([]models.MarketTicker, error)

	// GlobalMarketCap returns the total tracked market capitalization in USD
	GlobalMarketCap(ctx context.Context) (float64, error)
}

// CandleSource provides chronological OHLCV series for a symbol
type CandleSource interface {
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}
