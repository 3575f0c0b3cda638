package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/adapters/config"
	"github.com/vkryukov/pulsar/pkg/logger"
	"github.com/vkryukov/pulsar/pkg/models"
)

// CoinGeckoClient implements MarketSource using the CoinGecko API (free, no
// API key needed). All requests go through the pacer before hitting the wire.
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
	pacer   *Pacer
}

// NewCoinGeckoClient creates a CoinGecko market data client
func NewCoinGeckoClient(cfg *config.MarketConfig) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		pacer:   NewPacer(cfg.RequestInterval),
	}
}

func (cg *CoinGeckoClient) GetName() string {
	return "CoinGecko"
}

// coinGeckoMarket is the wire shape of one /coins/markets row
type coinGeckoMarket struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapRank int     `json:"market_cap_rank"`
	TotalVolume   float64 `json:"total_volume"`
	ATH           float64 `json:"ath"`
	Change24h     float64 `json:"price_change_percentage_24h"`
	Change7d      float64 `json:"price_change_percentage_7d_in_currency"`
	Sparkline     *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// Markets fetches an aggregate ticker listing
func (cg *CoinGeckoClient) Markets(ctx context.Context, q MarketQuery) ([]models.MarketTicker, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", q.Order)
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("page", "1")
	params.Set("sparkline", strconv.FormatBool(q.Sparkline))
	if q.PriceChangePercentage != "" {
		params.Set("price_change_percentage", q.PriceChangePercentage)
	}

	var rows []coinGeckoMarket
	if err := cg.getJSON(ctx, "/coins/markets?"+params.Encode(), &rows); err != nil {
		return nil, err
	}

	tickers := make([]models.MarketTicker, len(rows))
	for i, row := range rows {
		ticker := models.MarketTicker{
			ID:            row.ID,
			Symbol:        row.Symbol,
			Name:          row.Name,
			CurrentPrice:  row.CurrentPrice,
			MarketCap:     row.MarketCap,
			MarketCapRank: row.MarketCapRank,
			TotalVolume:   row.TotalVolume,
			ATH:           row.ATH,
			Change24h:     row.Change24h,
			Change7d:      row.Change7d,
		}
		if row.Sparkline != nil {
			ticker.Sparkline = row.Sparkline.Price
		}
		tickers[i] = ticker
	}

	logger.Debug("fetched market listing",
		zap.String("order", q.Order),
		zap.Int("count", len(tickers)),
	)

	return tickers, nil
}

// GlobalMarketCap fetches the total tracked market capitalization in USD
func (cg *CoinGeckoClient) GlobalMarketCap(ctx context.Context) (float64, error) {
	var result struct {
		Data struct {
			TotalMarketCap map[string]float64 `json:"total_market_cap"`
		} `json:"data"`
	}

	if err := cg.getJSON(ctx, "/global", &result); err != nil {
		return 0, err
	}

	total, ok := result.Data.TotalMarketCap["usd"]
	if !ok {
		return 0, fmt.Errorf("%w: global market cap missing usd entry", ErrUpstream)
	}

	return total, nil
}

func (cg *CoinGeckoClient) getJSON(ctx context.Context, path string, dest interface{}) error {
	if err := cg.pacer.Acquire(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cg.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cg.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: API error %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}

	return nil
}
