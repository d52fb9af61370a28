// Package reporting renders the per-stage boundary tables and the run
// summary. Each stage's keyed result set has one CSV renderer so any
// intermediate state can be inspected on disk.
package reporting

import (
	"fmt"
	"strings"

	"options-spread-backtest/internal/domain"
)

// RenderSpotMovementCSV renders direction records as CSV, one row per
// trading day in chronological order.
func RenderSpotMovementCSV(records map[domain.TradingDay]*domain.DirectionRecord) string {
	var sb strings.Builder

	sb.WriteString("date,window_open,window_close,change,pct_change,direction\n")

	for _, day := range sortedKeys(records) {
		r := records[day]
		sb.WriteString(fmt.Sprintf("%s,%.2f,%.2f,%.2f,%.2f,%s\n",
			r.Day.String(),
			r.OpenPrice,
			r.ClosePrice,
			r.Change,
			r.PctChange,
			r.Direction,
		))
	}

	return sb.String()
}

// RenderStrikeSelectionCSV renders strike records as CSV.
func RenderStrikeSelectionCSV(records map[domain.TradingDay]*domain.StrikeRecord) string {
	var sb strings.Builder

	sb.WriteString("date,spot_price,atm_strike,hedge_strike,direction\n")

	for _, day := range sortedKeys(records) {
		r := records[day]
		sb.WriteString(fmt.Sprintf("%s,%.2f,%d,%d,%s\n",
			r.Day.String(),
			r.SpotPrice,
			r.ATMStrike,
			r.HedgeStrike,
			r.Direction,
		))
	}

	return sb.String()
}

// RenderOptionPricesCSV renders premium records as CSV.
func RenderOptionPricesCSV(records map[domain.TradingDay]*domain.PremiumRecord) string {
	var sb strings.Builder

	sb.WriteString("date,atm_strike,hedge_strike,atm_price,hedge_price,total_premium,direction\n")

	for _, day := range sortedKeys(records) {
		r := records[day]
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%.2f,%.2f,%.2f,%s\n",
			r.Day.String(),
			r.ATMStrike,
			r.HedgeStrike,
			r.ATMPrice,
			r.HedgePrice,
			r.TotalPremium,
			r.Direction,
		))
	}

	return sb.String()
}

// RenderTrailingExitsCSV renders exit records as CSV.
func RenderTrailingExitsCSV(records map[domain.TradingDay]*domain.ExitRecord) string {
	var sb strings.Builder

	sb.WriteString("date,option_premium,spot_entry,spot_exit,exit_time,spot_points,direction\n")

	for _, day := range sortedKeys(records) {
		r := records[day]
		sb.WriteString(fmt.Sprintf("%s,%.2f,%.2f,%.2f,%s,%.2f,%s\n",
			r.Day.String(),
			r.Premium,
			r.EntryPrice,
			r.ExitPrice,
			r.ExitTime.String(),
			r.SpotPoints,
			r.Direction,
		))
	}

	return sb.String()
}

// RenderPnLAnalysisCSV renders trade results as CSV. Results are
// already in chronological order and carry running state, so they are
// rendered as-is.
func RenderPnLAnalysisCSV(results []*domain.TradeResult) string {
	var sb strings.Builder

	sb.WriteString("date,direction,spot_points,option_premium,pnl,cumulative_pnl,peak,drawdown\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%s,%s,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f\n",
			r.Day.String(),
			r.Direction,
			r.SpotPoints,
			r.Premium,
			r.PnL,
			r.CumulativePnL,
			r.Peak,
			r.Drawdown,
		))
	}

	return sb.String()
}

// sortedKeys returns the map keys in chronological order.
func sortedKeys[V any](m map[domain.TradingDay]V) []domain.TradingDay {
	days := make([]domain.TradingDay, 0, len(m))
	for day := range m {
		days = append(days, day)
	}
	domain.SortTradingDays(days)
	return days
}
