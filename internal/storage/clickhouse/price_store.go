package clickhouse

import (
	"context"
	"fmt"
	"time"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// PriceStore implements storage.PriceStore and storage.PriceWriter on
// ClickHouse. Underlying bars live in underlying_bars, option quotes in
// option_quotes; both are keyed per trading day at minute granularity.
type PriceStore struct {
	conn *Conn
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(conn *Conn) *PriceStore {
	return &PriceStore{conn: conn}
}

// Compile-time interface checks.
var (
	_ storage.PriceStore  = (*PriceStore)(nil)
	_ storage.PriceWriter = (*PriceStore)(nil)
)

// InsertBars adds underlying minute bars. Fails the entire batch on a
// duplicate (day, time).
func (s *PriceStore) InsertBars(ctx context.Context, bars []*domain.PriceSample) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		day  domain.TradingDay
		time domain.TimeOfDay
	}
	seen := make(map[key]struct{}, len(bars))
	for _, b := range bars {
		if b == nil || b.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{b.Day, b.Time}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, b := range bars {
		exists, err := s.barExists(ctx, b.Day, b.Time)
		if err != nil {
			return fmt.Errorf("check bar exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO underlying_bars (day, time_min, open, high, low, close)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(b.Day.Time(), uint16(b.Time), b.Open, b.High, b.Low, b.Close)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// InsertQuotes adds option quotes. Fails the entire batch on a duplicate
// (day, strike, type, time).
func (s *PriceStore) InsertQuotes(ctx context.Context, quotes []*domain.OptionQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	type key struct {
		day    domain.TradingDay
		strike int
		typ    domain.OptionType
		time   domain.TimeOfDay
	}
	seen := make(map[key]struct{}, len(quotes))
	for _, q := range quotes {
		if q == nil || q.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{q.Day, q.Strike, q.Type, q.Time}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, q := range quotes {
		exists, err := s.quoteExists(ctx, q.Day, q.Strike, q.Type, q.Time)
		if err != nil {
			return fmt.Errorf("check quote exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO option_quotes (day, strike, instrument_type, time_min, close)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, q := range quotes {
		err = batch.Append(q.Day.Time(), int32(q.Strike), string(q.Type), uint16(q.Time), q.Close)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ListTradingDays returns every day with underlying bars, ordered ASC.
func (s *PriceStore) ListTradingDays(ctx context.Context) ([]domain.TradingDay, error) {
	query := `
		SELECT DISTINCT day FROM underlying_bars ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trading days: %w", err)
	}
	defer rows.Close()

	var days []domain.TradingDay
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan trading day row: %w", err)
		}
		days = append(days, domain.NewTradingDay(t.Year(), t.Month(), t.Day()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trading day rows: %w", err)
	}
	return days, nil
}

// UnderlyingClose returns the underlying close at an exact clock time.
func (s *PriceStore) UnderlyingClose(ctx context.Context, day domain.TradingDay, at domain.TimeOfDay) (float64, error) {
	query := `
		SELECT close FROM underlying_bars
		WHERE day = ? AND time_min = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, day.Time(), uint16(at))
	if err != nil {
		return 0, fmt.Errorf("query underlying close: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("iterate underlying close rows: %w", err)
		}
		return 0, storage.ErrNotFound
	}

	var close float64
	if err := rows.Scan(&close); err != nil {
		return 0, fmt.Errorf("scan underlying close: %w", err)
	}
	return close, nil
}

// UnderlyingWindow returns bars within [from, to] inclusive, ordered by time ASC.
func (s *PriceStore) UnderlyingWindow(ctx context.Context, day domain.TradingDay, from, to domain.TimeOfDay) ([]*domain.PriceSample, error) {
	query := `
		SELECT day, time_min, open, high, low, close
		FROM underlying_bars
		WHERE day = ? AND time_min >= ? AND time_min <= ?
		ORDER BY time_min ASC
	`

	rows, err := s.conn.Query(ctx, query, day.Time(), uint16(from), uint16(to))
	if err != nil {
		return nil, fmt.Errorf("query underlying window: %w", err)
	}
	defer rows.Close()

	return scanPriceSamples(rows)
}

// OptionQuote returns the option close for (strike, type) at an exact time.
func (s *PriceStore) OptionQuote(ctx context.Context, day domain.TradingDay, strike int, typ domain.OptionType, at domain.TimeOfDay) (float64, error) {
	query := `
		SELECT close FROM option_quotes
		WHERE day = ? AND strike = ? AND instrument_type = ? AND time_min = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, day.Time(), int32(strike), string(typ), uint16(at))
	if err != nil {
		return 0, fmt.Errorf("query option quote: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("iterate option quote rows: %w", err)
		}
		return 0, storage.ErrNotFound
	}

	var close float64
	if err := rows.Scan(&close); err != nil {
		return 0, fmt.Errorf("scan option quote: %w", err)
	}
	return close, nil
}

// barExists checks if a bar with the given key exists.
func (s *PriceStore) barExists(ctx context.Context, day domain.TradingDay, at domain.TimeOfDay) (bool, error) {
	query := `
		SELECT count(*) FROM underlying_bars
		WHERE day = ? AND time_min = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, day.Time(), uint16(at)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// quoteExists checks if a quote with the given key exists.
func (s *PriceStore) quoteExists(ctx context.Context, day domain.TradingDay, strike int, typ domain.OptionType, at domain.TimeOfDay) (bool, error) {
	query := `
		SELECT count(*) FROM option_quotes
		WHERE day = ? AND strike = ? AND instrument_type = ? AND time_min = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, day.Time(), int32(strike), string(typ), uint16(at)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanPriceSamples scans multiple bar rows.
func scanPriceSamples(rows chRows) ([]*domain.PriceSample, error) {
	var samples []*domain.PriceSample

	for rows.Next() {
		var p domain.PriceSample
		var day time.Time
		var timeMin uint16

		err := rows.Scan(&day, &timeMin, &p.Open, &p.High, &p.Low, &p.Close)
		if err != nil {
			return nil, fmt.Errorf("scan underlying bar row: %w", err)
		}

		p.Day = domain.NewTradingDay(day.Year(), day.Month(), day.Day())
		p.Time = domain.TimeOfDay(timeMin)
		samples = append(samples, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate underlying bar rows: %w", err)
	}
	return samples, nil
}
