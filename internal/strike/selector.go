// Package strike implements the strike selector: mapping a reference
// price to the at-the-money strike and the fixed-offset hedge strike.
package strike

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
)

// Selector rounds reference prices onto a fixed strike grid.
type Selector struct {
	interval int
	log      logrus.FieldLogger
}

// NewSelector creates a selector for the given grid interval.
// A non-positive interval is a configuration error.
func NewSelector(interval int, log logrus.FieldLogger) (*Selector, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("strike interval must be positive, got %d", interval)
	}
	return &Selector{interval: interval, log: log}, nil
}

// Strikes returns the ATM and hedge strikes for a reference price.
// The ATM strike is the nearest grid multiple, ties rounded half away
// from zero (math.Round). The hedge strike is always one grid step above
// the ATM strike regardless of direction: the hedge leg's instrument
// type, not its strike placement, encodes direction.
func (s *Selector) Strikes(price float64) (atm, hedge int, err error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, 0, fmt.Errorf("invalid reference price %v", price)
	}
	atm = int(math.Round(price/float64(s.interval))) * s.interval
	return atm, atm + s.interval, nil
}

// Run maps each day's direction record to a strike record, using the
// window-end close as the reference price. FLAT days carry no strategy
// signal and are excluded here from all downstream stages.
func (s *Selector) Run(directions map[domain.TradingDay]*domain.DirectionRecord) (map[domain.TradingDay]*domain.StrikeRecord, error) {
	records := make(map[domain.TradingDay]*domain.StrikeRecord, len(directions))

	for day, dir := range directions {
		if dir.Direction == domain.DirectionFlat {
			s.log.WithField("day", day.String()).Debug("flat day, no signal")
			continue
		}

		atm, hedge, err := s.Strikes(dir.ClosePrice)
		if err != nil {
			return nil, fmt.Errorf("select strikes for %s: %w", day, err)
		}

		records[day] = &domain.StrikeRecord{
			Day:         day,
			SpotPrice:   dir.ClosePrice,
			ATMStrike:   atm,
			HedgeStrike: hedge,
			Direction:   dir.Direction,
		}
	}

	s.log.WithFields(logrus.Fields{
		"signals": len(directions),
		"strikes": len(records),
	}).Info("strike selection complete")

	return records, nil
}
