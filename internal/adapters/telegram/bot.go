package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/adapters/config"
	"github.com/vkryukov/pulsar/internal/analyzer"
	"github.com/vkryukov/pulsar/internal/scanner"
	"github.com/vkryukov/pulsar/internal/storage"
	"github.com/vkryukov/pulsar/pkg/logger"
	"github.com/vkryukov/pulsar/pkg/models"
)

// Bot serves signal commands over Telegram. Every interaction is recorded in
// the per-user history list before the command runs.
type Bot struct {
	api      *tgbotapi.BotAPI
	analyzer *analyzer.Analyzer
	scanner  *scanner.Scanner
	store    storage.Store
}

// NewBot creates the Telegram bot
func NewBot(cfg *config.TelegramConfig, a *analyzer.Analyzer, s *scanner.Scanner, store storage.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("telegram bot initialized",
		zap.String("username", api.Self.UserName),
	)

	return &Bot{api: api, analyzer: a, scanner: s, store: store}, nil
}

// Start starts listening for commands
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	logger.Info("telegram bot started, listening for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if err := b.store.Prepend(ctx, storage.UserHistoryKey(chatID), models.UserInteraction{
		Command:   message.Text,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		logger.Warn("failed to record user interaction",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}

	if !message.IsCommand() {
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	logger.Info("received telegram command",
		zap.String("command", command),
		zap.Int64("from_chat", chatID),
	)

	var response string
	var err error

	switch command {
	case "start", "help":
		response = welcomeMessage
	case "analyze":
		response, err = b.handleAnalyze(ctx, args)
	case "trending":
		response, err = b.handleScan(ctx, scanner.KindTrending, "🔥 Trending Trading Pairs:")
	case "gainers":
		response, err = b.handleScan(ctx, scanner.KindGainers, "📈 Top Gainers (24h):")
	case "volume":
		response, err = b.handleScan(ctx, scanner.KindVolumeSurge, "📊 High Volume Coins:")
	case "alerts":
		response, err = b.handleAlert(ctx, chatID, args)
	default:
		response = fmt.Sprintf("❓ Unknown command: /%s\nUse /help to see available commands", command)
	}

	if err != nil {
		response = fmt.Sprintf("❌ Error: %v", err)
		logger.Error("command handler error", zap.Error(err), zap.String("command", command))
	}

	if err := b.send(chatID, response); err != nil {
		logger.Error("failed to send telegram response", zap.Error(err))
	}
}

func (b *Bot) handleAnalyze(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "⚠️ Please provide a symbol. Example: /analyze BTCUSDT", nil
	}

	symbol := strings.ToUpper(args[0])
	result, stale, err := b.analyzer.Analyze(ctx, symbol)
	if err != nil {
		return "", err
	}

	text := formatAnalysis(result)
	if stale {
		text += "\n\n⏳ Served from cache due to an upstream error"
	}
	return text, nil
}

func (b *Bot) handleScan(ctx context.Context, kind scanner.Kind, header string) (string, error) {
	entries, stale, err := b.scanner.Scan(ctx, kind)
	if err != nil {
		return "", err
	}

	text := formatEntries(header, entries)
	if stale {
		text += "\n⏳ Served from cache due to an upstream error"
	}
	return text, nil
}

func (b *Bot) handleAlert(ctx context.Context, chatID int64, args []string) (string, error) {
	if len(args) < 2 {
		return "⚠️ Please provide symbol and price. Example: /alerts BTCUSDT 50000", nil
	}

	symbol := strings.ToUpper(args[0])
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", fmt.Errorf("invalid price %q", args[1])
	}

	alert := models.PriceAlert{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := b.store.Set(ctx, storage.AlertKey(chatID, symbol), alert); err != nil {
		return "", fmt.Errorf("failed to store alert: %w", err)
	}

	return fmt.Sprintf("✅ Alert set for %s at $%s", symbol, args[1]), nil
}

func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

const welcomeMessage = `🚀 Welcome to Crypto Trading Signals Bot!

Available Commands:
/trending - Get hot trending pairs
/analyze <symbol> - Full analysis of a trading pair
/gainers - Top gaining coins in 24h
/volume - Coins with unusual volume
/alerts <symbol> <price> - Set price alert

Example: /analyze BTCUSDT`
