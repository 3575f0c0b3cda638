package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vkryukov/pulsar/internal/adapters/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *CoinGeckoClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewCoinGeckoClient(&config.MarketConfig{
		BaseURL:         server.URL,
		RequestTimeout:  2 * time.Second,
		RequestInterval: time.Millisecond,
	})
}

func TestCoinGeckoClient_Markets(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("vs_currency"); got != "usd" {
			t.Errorf("vs_currency = %q", got)
		}
		if got := r.URL.Query().Get("order"); got != OrderMarketCapDesc {
			t.Errorf("order = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": "bitcoin",
			"symbol": "btc",
			"name": "Bitcoin",
			"current_price": 43000.5,
			"market_cap": 800000000000,
			"market_cap_rank": 1,
			"total_volume": 30000000000,
			"ath": 69000,
			"price_change_percentage_24h": 2.5,
			"price_change_percentage_7d_in_currency": -1.2,
			"sparkline_in_7d": {"price": [42000, 42500, 43000]}
		}]`))
	})

	tickers, err := client.Markets(context.Background(), MarketQuery{
		Order:     OrderMarketCapDesc,
		PerPage:   50,
		Sparkline: true,
	})
	if err != nil {
		t.Fatalf("Markets failed: %v", err)
	}

	if len(tickers) != 1 {
		t.Fatalf("Expected 1 ticker, got %d", len(tickers))
	}

	btc := tickers[0]
	if btc.ID != "bitcoin" || btc.Symbol != "btc" {
		t.Errorf("Unexpected identity: %+v", btc)
	}
	if btc.CurrentPrice != 43000.5 || btc.MarketCapRank != 1 {
		t.Errorf("Unexpected values: %+v", btc)
	}
	if btc.Change7d != -1.2 {
		t.Errorf("Change7d = %v, want -1.2", btc.Change7d)
	}
	if len(btc.Sparkline) != 3 {
		t.Errorf("Sparkline not mapped: %v", btc.Sparkline)
	}
}

func TestCoinGeckoClient_GlobalMarketCap(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/global" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data": {"total_market_cap": {"usd": 2000000000000}}}`))
	})

	total, err := client.GlobalMarketCap(context.Background())
	if err != nil {
		t.Fatalf("GlobalMarketCap failed: %v", err)
	}
	if total != 2e12 {
		t.Errorf("total = %v, want 2e12", total)
	}
}

func TestCoinGeckoClient_UpstreamError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Markets(context.Background(), MarketQuery{Order: OrderVolumeDesc, PerPage: 10})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Expected ErrUpstream, got %v", err)
	}
}

func TestNormalizePair(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "BTC/USDT"},
		{"btcusdt", "BTC/USDT"},
		{"ETH/USDT", "ETH/USDT"},
		{"SOLBTC", "SOL/BTC"},
		{"DOGE", "DOGE/USDT"},
	}

	for _, tc := range cases {
		if got := normalizePair(tc.in); got != tc.want {
			t.Errorf("normalizePair(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
