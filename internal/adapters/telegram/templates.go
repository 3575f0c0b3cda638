package telegram

import (
	"fmt"
	"strings"

	"github.com/vkryukov/pulsar/pkg/models"
)

func formatAnalysis(a *models.AnalysisResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 Analysis for %s\n\n", a.Symbol)
	fmt.Fprintf(&sb, "Current Price: $%.2f\n", a.Price)
	fmt.Fprintf(&sb, "24h Change: %.2f%%\n\n", a.Change24h)
	sb.WriteString("Technical Indicators:\n")
	fmt.Fprintf(&sb, "RSI: %.2f\n", a.Indicators.RSI)
	fmt.Fprintf(&sb, "MACD: %.4f\n\n", a.Indicators.MACD.MACD)
	fmt.Fprintf(&sb, "Signals:\n%s\n\n", strings.Join(a.Signals, "\n"))
	fmt.Fprintf(&sb, "Signal Confidence: %d%%", a.Confidence)

	return sb.String()
}

func formatEntries(header string, entries []models.MarketEntry) string {
	var sb strings.Builder

	sb.WriteString(header)
	sb.WriteString("\n\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "• %s (%s)\n", e.Symbol, e.Name)
		fmt.Fprintf(&sb, "  Price: $%.4f\n", e.Price)
		fmt.Fprintf(&sb, "  24h Change: %+.1f%%\n", e.Change24h)
		fmt.Fprintf(&sb, "  Volume: $%.0f\n", e.Volume24h)
		if e.KeyMetrics != nil && e.KeyMetrics.MarketCapToVolume > 0 {
			fmt.Fprintf(&sb, "  Volume/MCap: %.2f%%\n", e.KeyMetrics.MarketCapToVolume*100)
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
