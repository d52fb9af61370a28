// Package signal implements the direction detector: the first pipeline
// stage, classifying each trading day's net move over the signal window.
package signal

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// Detector computes the underlying's move between two fixed clock times
// and classifies it UP, DOWN, or FLAT.
type Detector struct {
	store       storage.PriceStore
	windowStart domain.TimeOfDay
	windowEnd   domain.TimeOfDay
	log         logrus.FieldLogger
}

// NewDetector creates a direction detector over [windowStart, windowEnd].
func NewDetector(store storage.PriceStore, windowStart, windowEnd domain.TimeOfDay, log logrus.FieldLogger) *Detector {
	return &Detector{
		store:       store,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		log:         log,
	}
}

// Run produces a DirectionRecord for every day with both window samples
// present. A day missing either sample carries no signal and is skipped;
// only structural store failures abort the run.
func (d *Detector) Run(ctx context.Context, days []domain.TradingDay) (map[domain.TradingDay]*domain.DirectionRecord, error) {
	records := make(map[domain.TradingDay]*domain.DirectionRecord, len(days))

	for _, day := range days {
		openPrice, err := d.store.UnderlyingClose(ctx, day, d.windowStart)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				d.log.WithField("day", day.String()).Debug("no window-start sample, skipping day")
				continue
			}
			return nil, err
		}

		closePrice, err := d.store.UnderlyingClose(ctx, day, d.windowEnd)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				d.log.WithField("day", day.String()).Debug("no window-end sample, skipping day")
				continue
			}
			return nil, err
		}

		change := closePrice - openPrice
		records[day] = &domain.DirectionRecord{
			Day:        day,
			OpenPrice:  openPrice,
			ClosePrice: closePrice,
			Change:     change,
			PctChange:  round2(change / openPrice * 100),
			Direction:  domain.ClassifyDirection(change),
		}
	}

	d.log.WithFields(logrus.Fields{
		"days":    len(days),
		"signals": len(records),
	}).Info("direction detection complete")

	return records, nil
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
