package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/adapters/config"
	"github.com/vkryukov/pulsar/internal/adapters/market"
	"github.com/vkryukov/pulsar/internal/adapters/telegram"
	"github.com/vkryukov/pulsar/internal/analyzer"
	"github.com/vkryukov/pulsar/internal/api"
	"github.com/vkryukov/pulsar/internal/scanner"
	"github.com/vkryukov/pulsar/internal/storage"
	"github.com/vkryukov/pulsar/internal/workers"
	"github.com/vkryukov/pulsar/pkg/logger"
	"github.com/vkryukov/pulsar/pkg/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional, real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("crypto signals service starting",
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	candles, err := market.NewBinanceSource(&cfg.Binance)
	if err != nil {
		return fmt.Errorf("failed to initialize candle source: %w", err)
	}

	markets := market.NewCoinGeckoClient(&cfg.Market)

	assetAnalyzer := analyzer.New(candles, store)
	marketScanner := scanner.New(markets, store, &cfg.Scanner)

	// Background cache warming
	var refresh *worker.PeriodicWorker
	if cfg.Scanner.RefreshEnabled {
		refresh = worker.NewPeriodicWorker(
			workers.NewScanRefreshWorker(marketScanner),
			cfg.Scanner.RefreshInterval,
		)
		refresh.Start(ctx)
	}

	// Telegram bot is optional
	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(&cfg.Telegram, assetAnalyzer, marketScanner, store)
		if err != nil {
			logger.Error("failed to create telegram bot", zap.Error(err))
		} else {
			go func() {
				if err := bot.Start(ctx); err != nil && err != context.Canceled {
					logger.Error("telegram bot error", zap.Error(err))
				}
			}()
		}
	}

	server := api.NewServer(cfg.Server.Port, assetAnalyzer, marketScanner)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("api server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", zap.Error(err))
	}

	if refresh != nil {
		refresh.Stop(10 * time.Second)
	}

	return nil
}

func initStorage(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "redis":
		store, err := storage.NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis storage: %w", err)
		}
		return store, nil
	default:
		logger.Info("using in-memory storage")
		return storage.NewMemoryStore(), nil
	}
}
