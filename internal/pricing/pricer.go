// Package pricing implements the option pricer: looking up the two leg
// quotes at the fixed quote time and summing the spread premium.
package pricing

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// Pricer prices the two-leg spread from stored option close quotes.
// The ATM leg is a CALL on UP days and a PUT on DOWN days; the hedge leg
// is the opposite type at the higher strike.
type Pricer struct {
	store     storage.PriceStore
	quoteTime domain.TimeOfDay
	log       logrus.FieldLogger
}

// NewPricer creates a pricer reading quotes at the given clock time.
func NewPricer(store storage.PriceStore, quoteTime domain.TimeOfDay, log logrus.FieldLogger) *Pricer {
	return &Pricer{store: store, quoteTime: quoteTime, log: log}
}

// Run produces a PremiumRecord for every day with both leg quotes
// present. A day missing either quote is dropped outright: premiums are
// never filled or defaulted.
func (p *Pricer) Run(ctx context.Context, strikes map[domain.TradingDay]*domain.StrikeRecord) (map[domain.TradingDay]*domain.PremiumRecord, error) {
	records := make(map[domain.TradingDay]*domain.PremiumRecord, len(strikes))

	for day, sr := range strikes {
		atmPrice, err := p.store.OptionQuote(ctx, day, sr.ATMStrike, sr.Direction.ATMType(), p.quoteTime)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				p.log.WithFields(logrus.Fields{
					"day":    day.String(),
					"strike": sr.ATMStrike,
					"type":   sr.Direction.ATMType(),
				}).Debug("missing atm quote, dropping day")
				continue
			}
			return nil, err
		}

		hedgePrice, err := p.store.OptionQuote(ctx, day, sr.HedgeStrike, sr.Direction.HedgeType(), p.quoteTime)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				p.log.WithFields(logrus.Fields{
					"day":    day.String(),
					"strike": sr.HedgeStrike,
					"type":   sr.Direction.HedgeType(),
				}).Debug("missing hedge quote, dropping day")
				continue
			}
			return nil, err
		}

		records[day] = &domain.PremiumRecord{
			Day:          day,
			ATMStrike:    sr.ATMStrike,
			HedgeStrike:  sr.HedgeStrike,
			ATMPrice:     atmPrice,
			HedgePrice:   hedgePrice,
			TotalPremium: atmPrice + hedgePrice,
			Direction:    sr.Direction,
		}
	}

	p.log.WithFields(logrus.Fields{
		"strikes":  len(strikes),
		"premiums": len(records),
	}).Info("option pricing complete")

	return records, nil
}
