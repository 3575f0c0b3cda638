package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/adapters/config"
	"github.com/vkryukov/pulsar/pkg/logger"
	"github.com/vkryukov/pulsar/pkg/models"
)

// BinanceSource implements CandleSource over the CCXT Binance client
type BinanceSource struct {
	exchange *ccxt.Binance
}

// NewBinanceSource creates a Binance candle source
func NewBinanceSource(cfg *config.BinanceConfig) (*BinanceSource, error) {
	options := map[string]interface{}{
		"apiKey": cfg.APIKey,
		"secret": cfg.Secret,
	}

	if cfg.Testnet {
		options["testnet"] = true
	}

	exchange := ccxt.NewBinance(options)
	exchange.SetOption("defaultType", "spot")
	exchange.SetOption("adjustForTimeDifference", true)

	if err := exchange.LoadMarkets(); err != nil {
		return nil, fmt.Errorf("failed to load Binance markets: %w", err)
	}

	logger.Info("binance candle source initialized",
		zap.Bool("testnet", cfg.Testnet),
		zap.Int("markets_count", len(exchange.Markets)),
	)

	return &BinanceSource{exchange: exchange}, nil
}

// FetchOHLCV returns a chronological candle series for a symbol
func (b *BinanceSource) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	pair := normalizePair(symbol)

	ohlcv, err := b.exchange.FetchOHLCV(
		pair,
		ccxt.WithFetchOHLCVTimeframe(timeframe),
		ccxt.WithFetchOHLCVLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch OHLCV for %s: %v", ErrUpstream, pair, err)
	}

	candles := make([]models.Candle, len(ohlcv))
	for i, bar := range ohlcv {
		candles[i] = models.Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
			Timestamp: time.UnixMilli(int64(bar[0])),
			Open:      models.NewDecimal(bar[1]),
			High:      models.NewDecimal(bar[2]),
			Low:       models.NewDecimal(bar[3]),
			Close:     models.NewDecimal(bar[4]),
			Volume:    models.NewDecimal(bar[5]),
		}
	}

	return candles, nil
}

var quoteCurrencies = []string{"USDT", "USDC", "BUSD", "BTC", "ETH"}

// normalizePair converts compact symbols like BTCUSDT into CCXT pair notation
func normalizePair(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(s, "/") {
		return s
	}

	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)] + "/" + quote
		}
	}

	// Bare base asset, assume USDT quote
	return s + "/USDT"
}
