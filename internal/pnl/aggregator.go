// Package pnl folds the per-day exit records into trade results and
// aggregate statistics. All computations run once over the full
// chronologically ordered sequence; nothing is exposed mid-run.
package pnl

import (
	"sort"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
)

// Aggregator computes per-trade P&L and running drawdown state.
type Aggregator struct {
	exitWindowStart domain.TimeOfDay
	log             logrus.FieldLogger
}

// NewAggregator creates an aggregator. exitWindowStart anchors the
// minutes-held calculation in the per-direction breakdown.
func NewAggregator(exitWindowStart domain.TimeOfDay, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{exitWindowStart: exitWindowStart, log: log}
}

// Aggregate folds exit records, in TradingDay order, into TradeResults.
// The premium is a cost on both legs regardless of direction, so
// pnl = spot_points - premium unconditionally. Cumulative P&L, peak and
// drawdown are running values over the ordered sequence; drawdown is
// cumulative minus peak and therefore never positive.
func (a *Aggregator) Aggregate(exits map[domain.TradingDay]*domain.ExitRecord) []*domain.TradeResult {
	days := make([]domain.TradingDay, 0, len(exits))
	for day := range exits {
		days = append(days, day)
	}
	domain.SortTradingDays(days)

	results := make([]*domain.TradeResult, 0, len(days))
	cumulative := 0.0
	peak := 0.0

	for i, day := range days {
		ex := exits[day]
		pnl := ex.SpotPoints - ex.Premium

		cumulative += pnl
		if i == 0 || cumulative > peak {
			peak = cumulative
		}

		results = append(results, &domain.TradeResult{
			Day:           day,
			Direction:     ex.Direction,
			SpotPoints:    ex.SpotPoints,
			Premium:       ex.Premium,
			PnL:           pnl,
			CumulativePnL: cumulative,
			Peak:          peak,
			Drawdown:      cumulative - peak,
		})
	}

	a.log.WithField("trades", len(results)).Info("pnl aggregation complete")

	return results
}

// Summarize computes run-level statistics over the ordered results.
func Summarize(results []*domain.TradeResult) *domain.Summary {
	n := len(results)
	if n == 0 {
		return &domain.Summary{}
	}

	s := &domain.Summary{
		TotalTrades: n,
		LargestWin:  results[0].PnL,
		LargestLoss: results[0].PnL,
		MaxDrawdown: results[0].Drawdown,
	}

	winSum := 0.0
	lossSum := 0.0
	drawdownSum := 0.0

	for _, r := range results {
		s.TotalPnL += r.PnL
		drawdownSum += r.Drawdown

		if r.PnL > 0 {
			s.Wins++
			winSum += r.PnL
		} else if r.PnL < 0 {
			s.Losses++
			lossSum += r.PnL
		}
		if r.PnL > s.LargestWin {
			s.LargestWin = r.PnL
		}
		if r.PnL < s.LargestLoss {
			s.LargestLoss = r.PnL
		}
		if r.Drawdown < s.MaxDrawdown {
			s.MaxDrawdown = r.Drawdown
		}
	}

	s.WinRate = float64(s.Wins) / float64(n) * 100
	if s.Wins > 0 {
		s.AvgWin = winSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = lossSum / float64(s.Losses)
	}
	s.AvgDrawdown = drawdownSum / float64(n)

	return s
}

// BreakdownByDirection groups results by direction and computes
// per-group statistics. Exit durations come from the matching exit
// records; results without one contribute zero held minutes.
func (a *Aggregator) BreakdownByDirection(results []*domain.TradeResult, exits map[domain.TradingDay]*domain.ExitRecord) []*domain.DirectionBreakdown {
	groups := make(map[domain.Direction][]*domain.TradeResult)
	for _, r := range results {
		groups[r.Direction] = append(groups[r.Direction], r)
	}

	breakdowns := make([]*domain.DirectionBreakdown, 0, len(groups))
	for dir, rs := range groups {
		b := &domain.DirectionBreakdown{
			Direction: dir,
			Trades:    len(rs),
			MinPnL:    rs[0].PnL,
			MaxPnL:    rs[0].PnL,
		}

		spotSum := 0.0
		premiumSum := 0.0
		exitMinutes := 0.0

		for _, r := range rs {
			b.TotalPnL += r.PnL
			spotSum += r.SpotPoints
			premiumSum += r.Premium
			if r.PnL < b.MinPnL {
				b.MinPnL = r.PnL
			}
			if r.PnL > b.MaxPnL {
				b.MaxPnL = r.PnL
			}
			if ex, ok := exits[r.Day]; ok {
				exitMinutes += float64(ex.ExitTime.MinutesSince(a.exitWindowStart))
			}
		}

		count := float64(len(rs))
		b.MeanPnL = b.TotalPnL / count
		b.MeanSpotPoints = spotSum / count
		b.MeanPremium = premiumSum / count
		b.MeanExitMinutes = exitMinutes / count

		breakdowns = append(breakdowns, b)
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].Direction < breakdowns[j].Direction
	})

	return breakdowns
}
