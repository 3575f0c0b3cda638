package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Storage  StorageConfig  `envconfig:"STORAGE"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Market   MarketConfig   `envconfig:"MARKET"`
	Binance  BinanceConfig  `envconfig:"BINANCE"`
	Scanner  ScannerConfig  `envconfig:"SCANNER"`
	Telegram TelegramConfig `envconfig:"TELEGRAM"`
	Server   ServerConfig   `envconfig:"SERVER"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
}

// StorageConfig selects the cache backend. The backend is resolved once at
// startup and injected; it is never re-detected per call.
type StorageConfig struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"memory"` // memory or redis
}

// RedisConfig represents Redis connection parameters
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// MarketConfig represents the aggregate market data client parameters
type MarketConfig struct {
	BaseURL         string        `envconfig:"MARKET_BASE_URL" default:"https://api.coingecko.com/api/v3"`
	RequestTimeout  time.Duration `envconfig:"MARKET_REQUEST_TIMEOUT" default:"10s"`
	RequestInterval time.Duration `envconfig:"MARKET_REQUEST_INTERVAL" default:"1s"`
}

// BinanceConfig represents the candle source parameters
type BinanceConfig struct {
	APIKey  string `envconfig:"BINANCE_API_KEY" required:"false"`
	Secret  string `envconfig:"BINANCE_SECRET" required:"false"`
	Testnet bool   `envconfig:"BINANCE_TESTNET" default:"false"`
}

// ScannerConfig represents scan freshness windows and refresh cadence
type ScannerConfig struct {
	SnapshotWindow  time.Duration `envconfig:"SCANNER_SNAPSHOT_WINDOW" default:"5m"`
	MoversWindow    time.Duration `envconfig:"SCANNER_MOVERS_WINDOW" default:"60s"`
	RefreshInterval time.Duration `envconfig:"SCANNER_REFRESH_INTERVAL" default:"5m"`
	RefreshEnabled  bool          `envconfig:"SCANNER_REFRESH_ENABLED" default:"true"`
}

// TelegramConfig represents Telegram bot configuration
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q (expected memory or redis)", c.Storage.Backend)
	}

	if c.Market.RequestInterval <= 0 {
		return fmt.Errorf("market request interval must be positive")
	}

	if c.Market.RequestTimeout <= 0 {
		return fmt.Errorf("market request timeout must be positive")
	}

	return nil
}
