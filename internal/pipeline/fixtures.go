package pipeline

import (
	"context"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// LoadFixtures populates a price store with a small deterministic
// series for demonstration and tests. The five trading days cover
// every pipeline outcome: an UP trade, a DOWN trade, a FLAT day, a day
// with a missing hedge quote, and a final day with no next session.
func LoadFixtures(ctx context.Context, store storage.PriceWriter) error {
	days := fixtureDays()

	var bars []*domain.PriceSample
	for _, fd := range days {
		bars = append(bars, minuteBars(fd.day, fd.openClose, fd.step)...)
		bars = append(bars, &domain.PriceSample{
			Day:   fd.day,
			Time:  domain.NewTimeOfDay(15, 25),
			Open:  fd.lateClose,
			High:  fd.lateClose + 2,
			Low:   fd.lateClose - 2,
			Close: fd.lateClose,
		})
	}
	if err := store.InsertBars(ctx, bars); err != nil {
		return err
	}

	return store.InsertQuotes(ctx, fixtureQuotes(days))
}

type fixtureDay struct {
	day       domain.TradingDay
	openClose float64 // close of the 09:15 bar
	step      float64 // per-minute close increment through 09:30
	lateClose float64 // close of the 15:25 bar
}

func fixtureDays() []fixtureDay {
	return []fixtureDay{
		{domain.NewTradingDay(2023, 9, 1), 10450, 0.5, 10520},  // UP
		{domain.NewTradingDay(2023, 9, 4), 10540, 1.4, 10480},  // DOWN
		{domain.NewTradingDay(2023, 9, 5), 10480, -1.0, 10480}, // FLAT
		{domain.NewTradingDay(2023, 9, 6), 10470, 0.8, 10530},  // UP, hedge quote missing
		{domain.NewTradingDay(2023, 9, 7), 10530, -0.6, 10490}, // DOWN, last day
	}
}

// minuteBars builds the 09:15-09:30 exit-window bars with linearly
// drifting closes.
func minuteBars(day domain.TradingDay, start, step float64) []*domain.PriceSample {
	bars := make([]*domain.PriceSample, 0, 16)
	for i := 0; i < 16; i++ {
		close := start + float64(i)*step
		bars = append(bars, &domain.PriceSample{
			Day:   day,
			Time:  domain.NewTimeOfDay(9, 15+i),
			Open:  close - step/2,
			High:  close + 1.5,
			Low:   close - 1.5,
			Close: close,
		})
	}
	return bars
}

func fixtureQuotes(days []fixtureDay) []*domain.OptionQuote {
	quoteTime := domain.NewTimeOfDay(15, 25)
	return []*domain.OptionQuote{
		// 2023-09-01 UP: CALL at the money, PUT hedge.
		{Day: days[0].day, Strike: 10500, Type: domain.OptionCall, Time: quoteTime, Close: 9.75},
		{Day: days[0].day, Strike: 10600, Type: domain.OptionPut, Time: quoteTime, Close: 6.10},
		// 2023-09-04 DOWN: PUT at the money, CALL hedge.
		{Day: days[1].day, Strike: 10500, Type: domain.OptionPut, Time: quoteTime, Close: 35.40},
		{Day: days[1].day, Strike: 10600, Type: domain.OptionCall, Time: quoteTime, Close: 2.10},
		// 2023-09-06 UP: at-the-money leg only, the missing hedge
		// PUT drops the day at the pricing stage.
		{Day: days[3].day, Strike: 10500, Type: domain.OptionCall, Time: quoteTime, Close: 18.20},
		// 2023-09-07 DOWN: both legs quoted, but no next session
		// exists so the exit stage drops the day.
		{Day: days[4].day, Strike: 10500, Type: domain.OptionPut, Time: quoteTime, Close: 28.75},
		{Day: days[4].day, Strike: 10600, Type: domain.OptionCall, Time: quoteTime, Close: 1.65},
	}
}
