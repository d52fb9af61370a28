package storage

import (
	"context"

	"options-spread-backtest/internal/domain"
)

// PriceStore provides read-only access to the historical minute data the
// backtest runs over. The pipeline never writes through this interface.
type PriceStore interface {
	// ListTradingDays returns every trading day present in the underlying
	// series, ordered chronologically ASC.
	ListTradingDays(ctx context.Context) ([]domain.TradingDay, error)

	// UnderlyingClose returns the underlying close at an exact clock time.
	// Returns ErrNotFound if no bar exists at that minute.
	UnderlyingClose(ctx context.Context, day domain.TradingDay, at domain.TimeOfDay) (float64, error)

	// UnderlyingWindow returns the underlying bars within [from, to]
	// (inclusive), ordered by time ASC. Missing data yields an empty slice,
	// not an error.
	UnderlyingWindow(ctx context.Context, day domain.TradingDay, from, to domain.TimeOfDay) ([]*domain.PriceSample, error)

	// OptionQuote returns the option close for (strike, type) at an exact
	// clock time. Returns ErrNotFound if the quote is absent.
	OptionQuote(ctx context.Context, day domain.TradingDay, strike int, typ domain.OptionType, at domain.TimeOfDay) (float64, error)
}

// PriceWriter is the ingest-side companion of PriceStore.
type PriceWriter interface {
	// InsertBars adds underlying minute bars. Fails the entire batch on a
	// duplicate (day, time).
	InsertBars(ctx context.Context, bars []*domain.PriceSample) error

	// InsertQuotes adds option quotes. Fails the entire batch on a
	// duplicate (day, strike, type, time).
	InsertQuotes(ctx context.Context, quotes []*domain.OptionQuote) error
}

// TradeResultStore persists settled trade results for later reporting.
type TradeResultStore interface {
	// InsertBulk adds multiple results atomically. Fails entire batch on
	// any duplicate trading day.
	InsertBulk(ctx context.Context, results []*domain.TradeResult) error

	// GetAll retrieves every stored result, ordered by trading day ASC.
	GetAll(ctx context.Context) ([]*domain.TradeResult, error)
}
