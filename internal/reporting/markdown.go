package reporting

import (
	"fmt"
	"strings"
	"time"

	"options-spread-backtest/internal/domain"
)

// RenderMarkdown renders the run summary and per-direction breakdown
// as a Markdown report.
func RenderMarkdown(summary *domain.Summary, breakdowns []*domain.DirectionBreakdown, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Spread Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format(time.RFC3339)))

	sb.WriteString("## Overall Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", summary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Winning Trades | %d |\n", summary.Wins))
	sb.WriteString(fmt.Sprintf("| Losing Trades | %d |\n", summary.Losses))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", summary.WinRate))
	sb.WriteString(fmt.Sprintf("| Average Win | %.2f |\n", summary.AvgWin))
	sb.WriteString(fmt.Sprintf("| Average Loss | %.2f |\n", summary.AvgLoss))
	sb.WriteString(fmt.Sprintf("| Largest Win | %.2f |\n", summary.LargestWin))
	sb.WriteString(fmt.Sprintf("| Largest Loss | %.2f |\n", summary.LargestLoss))
	sb.WriteString(fmt.Sprintf("| Total P&L | %.2f |\n", summary.TotalPnL))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f |\n", summary.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Average Drawdown | %.2f |\n", summary.AvgDrawdown))
	sb.WriteString("\n")

	sb.WriteString("## Statistics by Direction\n\n")
	if len(breakdowns) > 0 {
		sb.WriteString("| Direction | Trades | Total P&L | Mean P&L | Min P&L | Max P&L | Mean Points | Mean Premium | Mean Exit (min) |\n")
		sb.WriteString("|-----------|--------|-----------|----------|---------|---------|-------------|--------------|----------------|\n")
		for _, b := range breakdowns {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.1f |\n",
				b.Direction, b.Trades, b.TotalPnL, b.MeanPnL, b.MinPnL, b.MaxPnL,
				b.MeanSpotPoints, b.MeanPremium, b.MeanExitMinutes))
		}
	} else {
		sb.WriteString("No trades.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
