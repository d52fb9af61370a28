// Package pipeline wires the five stages of the spread backtest into a
// single run: direction detection, strike selection, option pricing,
// trailing-exit simulation and P&L aggregation. Stages hand each other
// TradingDay-keyed maps; a day dropped by any stage is absent from all
// later stages.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/config"
	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/exit"
	"options-spread-backtest/internal/pnl"
	"options-spread-backtest/internal/pricing"
	"options-spread-backtest/internal/reporting"
	"options-spread-backtest/internal/signal"
	"options-spread-backtest/internal/storage"
	"options-spread-backtest/internal/strike"
)

// Result holds every stage's output for one full run.
type Result struct {
	Days       []domain.TradingDay
	Directions map[domain.TradingDay]*domain.DirectionRecord
	Strikes    map[domain.TradingDay]*domain.StrikeRecord
	Premiums   map[domain.TradingDay]*domain.PremiumRecord
	Exits      map[domain.TradingDay]*domain.ExitRecord
	Trades     []*domain.TradeResult
	Summary    *domain.Summary
	Breakdowns []*domain.DirectionBreakdown
}

// Pipeline runs the backtest over a price store.
type Pipeline struct {
	prices      storage.PriceStore
	results     storage.TradeResultStore // optional, nil disables persistence
	settings    *config.Settings
	snapshotDir string // optional, empty disables boundary CSV snapshots
	log         logrus.FieldLogger
	clock       func() time.Time
}

// New creates a pipeline over the given price store and settings.
func New(prices storage.PriceStore, settings *config.Settings, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		prices:   prices,
		settings: settings,
		log:      log,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithResultStore enables persisting the final trade results.
func (p *Pipeline) WithResultStore(store storage.TradeResultStore) *Pipeline {
	p.results = store
	return p
}

// WithSnapshotDir enables writing each stage's boundary table as CSV
// plus a Markdown summary under dir.
func (p *Pipeline) WithSnapshotDir(dir string) *Pipeline {
	p.snapshotDir = dir
	return p
}

// WithClock sets a custom clock for deterministic report output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Run executes all five stages in order. Per-day data gaps drop days
// and never fail the run; store and configuration failures abort it.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	days, err := p.prices.ListTradingDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trading days: %w", err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("price store has no trading days")
	}
	p.log.WithField("days", len(days)).Info("starting backtest run")

	detector := signal.NewDetector(p.prices, p.settings.WindowStart, p.settings.WindowEnd, p.log)
	directions, err := detector.Run(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("direction detection: %w", err)
	}

	selector, err := strike.NewSelector(p.settings.StrikeInterval, p.log)
	if err != nil {
		return nil, err
	}
	strikes, err := selector.Run(directions)
	if err != nil {
		return nil, fmt.Errorf("strike selection: %w", err)
	}

	pricer := pricing.NewPricer(p.prices, p.settings.QuoteTime, p.log)
	premiums, err := pricer.Run(ctx, strikes)
	if err != nil {
		return nil, fmt.Errorf("option pricing: %w", err)
	}

	simulator := exit.NewSimulator(p.prices, p.settings.ExitWindowStart, p.settings.ExitWindowEnd, p.settings.TrailingWindow, p.log)
	exits, err := simulator.Run(ctx, days, premiums)
	if err != nil {
		return nil, fmt.Errorf("trailing-exit simulation: %w", err)
	}

	aggregator := pnl.NewAggregator(p.settings.ExitWindowStart, p.log)
	trades := aggregator.Aggregate(exits)

	result := &Result{
		Days:       days,
		Directions: directions,
		Strikes:    strikes,
		Premiums:   premiums,
		Exits:      exits,
		Trades:     trades,
		Summary:    pnl.Summarize(trades),
		Breakdowns: aggregator.BreakdownByDirection(trades, exits),
	}

	if p.results != nil {
		if err := p.results.InsertBulk(ctx, trades); err != nil {
			return nil, fmt.Errorf("persist trade results: %w", err)
		}
		p.log.WithField("trades", len(trades)).Info("trade results persisted")
	}

	if p.snapshotDir != "" {
		if err := p.writeSnapshots(result); err != nil {
			return nil, fmt.Errorf("write snapshots: %w", err)
		}
	}

	return result, nil
}

// writeSnapshots writes every stage boundary table plus the summary
// report under the snapshot directory.
func (p *Pipeline) writeSnapshots(result *Result) error {
	if err := os.MkdirAll(p.snapshotDir, 0755); err != nil {
		return err
	}

	files := map[string]string{
		"spot_movement.csv":    reporting.RenderSpotMovementCSV(result.Directions),
		"strike_selection.csv": reporting.RenderStrikeSelectionCSV(result.Strikes),
		"option_prices.csv":    reporting.RenderOptionPricesCSV(result.Premiums),
		"trailing_exits.csv":   reporting.RenderTrailingExitsCSV(result.Exits),
		"pnl_analysis.csv":     reporting.RenderPnLAnalysisCSV(result.Trades),
		"REPORT.md":            reporting.RenderMarkdown(result.Summary, result.Breakdowns, p.clock()),
	}

	for name, content := range files {
		path := filepath.Join(p.snapshotDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}

	p.log.WithFields(logrus.Fields{
		"dir":   p.snapshotDir,
		"files": len(files),
	}).Info("boundary snapshots written")

	return nil
}
