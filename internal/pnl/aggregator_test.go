package pnl

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func exitFixture() map[domain.TradingDay]*domain.ExitRecord {
	d1 := domain.NewTradingDay(2023, time.September, 1)
	d2 := domain.NewTradingDay(2023, time.September, 4)
	d3 := domain.NewTradingDay(2023, time.September, 5)
	return map[domain.TradingDay]*domain.ExitRecord{
		d1: {Day: d1, SpotPoints: 30, Premium: 10, Direction: domain.DirectionUp, ExitTime: domain.NewTimeOfDay(9, 30)},
		d2: {Day: d2, SpotPoints: 5, Premium: 25, Direction: domain.DirectionDown, ExitTime: domain.NewTimeOfDay(9, 20)},
		d3: {Day: d3, SpotPoints: 12, Premium: 4, Direction: domain.DirectionUp, ExitTime: domain.NewTimeOfDay(9, 18)},
	}
}

func TestAggregator_PnLIdentityAndRunningState(t *testing.T) {
	agg := NewAggregator(domain.NewTimeOfDay(9, 15), newTestLogger())
	results := agg.Aggregate(exitFixture())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Chronological order.
	for i := 1; i < len(results); i++ {
		if !results[i-1].Day.Before(results[i].Day) {
			t.Errorf("results out of order at %d: %s before %s", i, results[i-1].Day, results[i].Day)
		}
	}

	// pnl = spot_points - premium on every row, regardless of direction.
	wantPnL := []float64{20, -20, 8}
	wantCum := []float64{20, 0, 8}
	wantPeak := []float64{20, 20, 20}
	wantDD := []float64{0, -20, -12}

	cum := 0.0
	for i, r := range results {
		if !approx(r.PnL, r.SpotPoints-r.Premium) {
			t.Errorf("row %d: pnl %f != spot_points - premium %f", i, r.PnL, r.SpotPoints-r.Premium)
		}
		if !approx(r.PnL, wantPnL[i]) {
			t.Errorf("row %d: expected pnl %f, got %f", i, wantPnL[i], r.PnL)
		}
		cum += r.PnL
		if !approx(r.CumulativePnL, cum) || !approx(r.CumulativePnL, wantCum[i]) {
			t.Errorf("row %d: expected cumulative %f, got %f", i, wantCum[i], r.CumulativePnL)
		}
		if !approx(r.Peak, wantPeak[i]) {
			t.Errorf("row %d: expected peak %f, got %f", i, wantPeak[i], r.Peak)
		}
		if !approx(r.Drawdown, wantDD[i]) {
			t.Errorf("row %d: expected drawdown %f, got %f", i, wantDD[i], r.Drawdown)
		}
		if r.Drawdown > 0 {
			t.Errorf("row %d: drawdown must never be positive, got %f", i, r.Drawdown)
		}
	}
}

func TestAggregator_FirstTradeNegative(t *testing.T) {
	d1 := domain.NewTradingDay(2023, time.September, 1)
	agg := NewAggregator(domain.NewTimeOfDay(9, 15), newTestLogger())
	results := agg.Aggregate(map[domain.TradingDay]*domain.ExitRecord{
		d1: {Day: d1, SpotPoints: 2, Premium: 12, Direction: domain.DirectionUp},
	})

	r := results[0]
	if !approx(r.PnL, -10) {
		t.Fatalf("expected pnl -10, got %f", r.PnL)
	}
	// Peak starts at the first cumulative value, so an opening loss
	// carries zero drawdown.
	if !approx(r.Peak, -10) {
		t.Errorf("expected peak -10, got %f", r.Peak)
	}
	if !approx(r.Drawdown, 0) {
		t.Errorf("expected drawdown 0, got %f", r.Drawdown)
	}
}

func TestSummarize(t *testing.T) {
	agg := NewAggregator(domain.NewTimeOfDay(9, 15), newTestLogger())
	results := agg.Aggregate(exitFixture())

	s := Summarize(results)

	if s.TotalTrades != 3 {
		t.Errorf("expected 3 trades, got %d", s.TotalTrades)
	}
	if s.Wins != 2 || s.Losses != 1 {
		t.Errorf("expected 2 wins / 1 loss, got %d / %d", s.Wins, s.Losses)
	}
	if !approx(s.WinRate, 200.0/3) {
		t.Errorf("expected win rate %.4f, got %f", 200.0/3, s.WinRate)
	}
	if !approx(s.AvgWin, 14) {
		t.Errorf("expected avg win 14, got %f", s.AvgWin)
	}
	if !approx(s.AvgLoss, -20) {
		t.Errorf("expected avg loss -20, got %f", s.AvgLoss)
	}
	if !approx(s.LargestWin, 20) || !approx(s.LargestLoss, -20) {
		t.Errorf("expected largest 20/-20, got %f/%f", s.LargestWin, s.LargestLoss)
	}
	if !approx(s.TotalPnL, 8) {
		t.Errorf("expected total pnl 8, got %f", s.TotalPnL)
	}
	if !approx(s.MaxDrawdown, -20) {
		t.Errorf("expected max drawdown -20, got %f", s.MaxDrawdown)
	}
	if !approx(s.AvgDrawdown, (0-20-12)/3.0) {
		t.Errorf("expected avg drawdown %f, got %f", (0-20-12)/3.0, s.AvgDrawdown)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalTrades != 0 || s.TotalPnL != 0 || s.WinRate != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestBreakdownByDirection(t *testing.T) {
	exits := exitFixture()
	agg := NewAggregator(domain.NewTimeOfDay(9, 15), newTestLogger())
	results := agg.Aggregate(exits)

	breakdowns := agg.BreakdownByDirection(results, exits)

	if len(breakdowns) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(breakdowns))
	}
	// Sorted by direction name: DOWN then UP.
	down, up := breakdowns[0], breakdowns[1]
	if down.Direction != domain.DirectionDown || up.Direction != domain.DirectionUp {
		t.Fatalf("unexpected group order: %s, %s", down.Direction, up.Direction)
	}

	if down.Trades != 1 || !approx(down.TotalPnL, -20) {
		t.Errorf("DOWN: expected 1 trade / -20 pnl, got %d / %f", down.Trades, down.TotalPnL)
	}
	if !approx(down.MeanExitMinutes, 5) {
		t.Errorf("DOWN: expected mean exit 5 minutes, got %f", down.MeanExitMinutes)
	}

	if up.Trades != 2 || !approx(up.TotalPnL, 28) {
		t.Errorf("UP: expected 2 trades / 28 pnl, got %d / %f", up.Trades, up.TotalPnL)
	}
	if !approx(up.MeanPnL, 14) {
		t.Errorf("UP: expected mean pnl 14, got %f", up.MeanPnL)
	}
	if !approx(up.MinPnL, 8) || !approx(up.MaxPnL, 20) {
		t.Errorf("UP: expected min/max 8/20, got %f/%f", up.MinPnL, up.MaxPnL)
	}
	if !approx(up.MeanSpotPoints, 21) {
		t.Errorf("UP: expected mean spot points 21, got %f", up.MeanSpotPoints)
	}
	if !approx(up.MeanPremium, 7) {
		t.Errorf("UP: expected mean premium 7, got %f", up.MeanPremium)
	}
	// Exits at 09:30 and 09:18 against a 09:15 window start.
	if !approx(up.MeanExitMinutes, 9) {
		t.Errorf("UP: expected mean exit 9 minutes, got %f", up.MeanExitMinutes)
	}
}
