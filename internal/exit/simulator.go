// Package exit implements the trailing-stop exit simulator. The strategy
// enters at the prior day's close, so the exit is simulated over the next
// trading day's opening minutes.
package exit

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// trailPolicy holds the direction-dependent pieces of the trailing scan:
// which bar column is trailed, how the rolling extreme of that column is
// taken, and the single comparator used both to tighten the running
// extreme and to test the close against it. Keeping them in one value
// keeps the UP and DOWN scans mirror-equivalent.
type trailPolicy struct {
	ref     func(*domain.PriceSample) float64
	extreme func(a, b float64) float64 // rolling extreme of the trailed column
	crosses func(a, b float64) bool    // tighten-and-breach comparator
	start   float64
}

// policyFor returns the trail policy for a direction. UP trades trail
// below price on the rolling minimum of the bar lows, DOWN trades trail
// above on the rolling maximum of the highs.
func policyFor(dir domain.Direction) trailPolicy {
	if dir == domain.DirectionUp {
		return trailPolicy{
			ref:     func(s *domain.PriceSample) float64 { return s.Low },
			extreme: math.Min,
			crosses: func(a, b float64) bool { return a > b },
			start:   math.Inf(1),
		}
	}
	return trailPolicy{
		ref:     func(s *domain.PriceSample) float64 { return s.High },
		extreme: math.Max,
		crosses: func(a, b float64) bool { return a < b },
		start:   math.Inf(-1),
	}
}

// Simulator replays the trailing-stop exit over next-day opening bars.
type Simulator struct {
	store       storage.PriceStore
	windowStart domain.TimeOfDay
	windowEnd   domain.TimeOfDay
	window      int // trailing window length in samples
	log         logrus.FieldLogger
}

// NewSimulator creates a simulator over the exit clock window
// [windowStart, windowEnd] with the given trailing window size.
func NewSimulator(store storage.PriceStore, windowStart, windowEnd domain.TimeOfDay, window int, log logrus.FieldLogger) *Simulator {
	return &Simulator{
		store:       store,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		window:      window,
		log:         log,
	}
}

// Run produces an ExitRecord for every day with a premium record, a next
// trading day, and enough exit-window samples. Days failing any of those
// preconditions are dropped entirely; there is no partial record.
func (s *Simulator) Run(ctx context.Context, days []domain.TradingDay, premiums map[domain.TradingDay]*domain.PremiumRecord) (map[domain.TradingDay]*domain.ExitRecord, error) {
	next := nextDayIndex(days)
	records := make(map[domain.TradingDay]*domain.ExitRecord, len(premiums))

	for day, pr := range premiums {
		nextDay, ok := next[day]
		if !ok {
			s.log.WithField("day", day.String()).Debug("no next trading day, dropping day")
			continue
		}

		samples, err := s.store.UnderlyingWindow(ctx, nextDay, s.windowStart, s.windowEnd)
		if err != nil {
			return nil, err
		}
		if len(samples) < s.window {
			s.log.WithFields(logrus.Fields{
				"day":     day.String(),
				"samples": len(samples),
				"window":  s.window,
			}).Debug("insufficient exit-window samples, dropping day")
			continue
		}

		entry, exitPrice, exitTime := s.simulate(samples, pr.Direction)

		spotPoints := exitPrice - entry
		if pr.Direction == domain.DirectionDown {
			spotPoints = entry - exitPrice
		}

		records[day] = &domain.ExitRecord{
			Day:        day,
			EntryPrice: entry,
			ExitPrice:  exitPrice,
			ExitTime:   exitTime,
			Premium:    pr.TotalPremium,
			SpotPoints: spotPoints,
			Direction:  pr.Direction,
		}
	}

	s.log.WithFields(logrus.Fields{
		"premiums": len(premiums),
		"exits":    len(records),
	}).Info("trailing-exit simulation complete")

	return records, nil
}

// simulate runs the trailing scan over the ordered exit-window samples.
// len(samples) >= s.window is the caller's responsibility.
//
// The rolling extreme of the trailed column one sample back tightens the
// running extreme, and the exit triggers the first time the close price
// crosses the running extreme. Both steps use the same comparator and the
// running extreme starts unbounded; historical results depend on exactly
// this combination, so keep the two comparators identical. If no sample
// triggers, the last sample is the exit, so a trade always has an exit
// price.
func (s *Simulator) simulate(samples []*domain.PriceSample, dir domain.Direction) (entry, exitPrice float64, exitTime domain.TimeOfDay) {
	p := policyFor(dir)
	entry = samples[0].Close

	// Rolling extreme of the trailed column over the trailing window
	// ending at each index. Values before window-1 are never read.
	rolling := make([]float64, len(samples))
	for i := s.window - 1; i < len(samples); i++ {
		extreme := p.ref(samples[i])
		for j := i - s.window + 1; j < i; j++ {
			extreme = p.extreme(extreme, p.ref(samples[j]))
		}
		rolling[i] = extreme
	}

	current := p.start
	for i := s.window; i < len(samples); i++ {
		if p.crosses(rolling[i-1], current) {
			current = rolling[i-1]
		}
		if p.crosses(samples[i].Close, current) {
			return entry, samples[i].Close, samples[i].Time
		}
	}

	last := samples[len(samples)-1]
	return entry, last.Close, last.Time
}

// nextDayIndex maps each trading day to its chronological successor.
// The last day has no successor and is absent from the map.
func nextDayIndex(days []domain.TradingDay) map[domain.TradingDay]domain.TradingDay {
	sorted := make([]domain.TradingDay, len(days))
	copy(sorted, days)
	domain.SortTradingDays(sorted)

	next := make(map[domain.TradingDay]domain.TradingDay, len(sorted))
	for i := 0; i+1 < len(sorted); i++ {
		next[sorted[i]] = sorted[i+1]
	}
	return next
}
