package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// PriceStore is an in-memory implementation of storage.PriceStore and
// storage.PriceWriter, used by fixture mode and tests.
type PriceStore struct {
	mu     sync.RWMutex
	bars   map[string]*domain.PriceSample // keyed by (day, time)
	quotes map[string]*domain.OptionQuote // keyed by (day, strike, type, time)
}

// NewPriceStore creates an empty in-memory price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{
		bars:   make(map[string]*domain.PriceSample),
		quotes: make(map[string]*domain.OptionQuote),
	}
}

func barKey(day domain.TradingDay, at domain.TimeOfDay) string {
	return fmt.Sprintf("%s|%s", day, at)
}

func quoteKey(day domain.TradingDay, strike int, typ domain.OptionType, at domain.TimeOfDay) string {
	return fmt.Sprintf("%s|%d|%s|%s", day, strike, typ, at)
}

// InsertBars adds underlying minute bars. Fails the entire batch on a
// duplicate (day, time).
func (s *PriceStore) InsertBars(_ context.Context, bars []*domain.PriceSample) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(bars))
	for _, b := range bars {
		if b == nil || b.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		key := barKey(b.Day, b.Time)
		if _, exists := s.bars[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, b := range bars {
		barCopy := *b
		s.bars[barKey(b.Day, b.Time)] = &barCopy
	}
	return nil
}

// InsertQuotes adds option quotes. Fails the entire batch on a duplicate
// (day, strike, type, time).
func (s *PriceStore) InsertQuotes(_ context.Context, quotes []*domain.OptionQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if q == nil || q.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		key := quoteKey(q.Day, q.Strike, q.Type, q.Time)
		if _, exists := s.quotes[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, q := range quotes {
		quoteCopy := *q
		s.quotes[quoteKey(q.Day, q.Strike, q.Type, q.Time)] = &quoteCopy
	}
	return nil
}

// ListTradingDays returns every day with underlying bars, ordered ASC.
func (s *PriceStore) ListTradingDays(_ context.Context) ([]domain.TradingDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[domain.TradingDay]struct{})
	for _, b := range s.bars {
		seen[b.Day] = struct{}{}
	}

	days := make([]domain.TradingDay, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	return domain.SortTradingDays(days), nil
}

// UnderlyingClose returns the close at an exact clock time.
func (s *PriceStore) UnderlyingClose(_ context.Context, day domain.TradingDay, at domain.TimeOfDay) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bars[barKey(day, at)]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return b.Close, nil
}

// UnderlyingWindow returns bars within [from, to] inclusive, ordered by time ASC.
func (s *PriceStore) UnderlyingWindow(_ context.Context, day domain.TradingDay, from, to domain.TimeOfDay) ([]*domain.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSample
	for _, b := range s.bars {
		if b.Day == day && b.Time >= from && b.Time <= to {
			barCopy := *b
			result = append(result, &barCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Time < result[j].Time
	})
	return result, nil
}

// OptionQuote returns the option close for (strike, type) at an exact time.
func (s *PriceStore) OptionQuote(_ context.Context, day domain.TradingDay, strike int, typ domain.OptionType, at domain.TimeOfDay) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[quoteKey(day, strike, typ, at)]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return q.Close, nil
}

var (
	_ storage.PriceStore  = (*PriceStore)(nil)
	_ storage.PriceWriter = (*PriceStore)(nil)
)
