package memory

import (
	"context"
	"sort"
	"sync"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// TradeResultStore is an in-memory implementation of storage.TradeResultStore.
type TradeResultStore struct {
	mu   sync.RWMutex
	data map[domain.TradingDay]*domain.TradeResult
}

// NewTradeResultStore creates an empty in-memory trade result store.
func NewTradeResultStore() *TradeResultStore {
	return &TradeResultStore{
		data: make(map[domain.TradingDay]*domain.TradeResult),
	}
}

// InsertBulk adds multiple results atomically. Fails entire batch on any
// duplicate trading day.
func (s *TradeResultStore) InsertBulk(_ context.Context, results []*domain.TradeResult) error {
	if len(results) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[domain.TradingDay]struct{}, len(results))
	for _, r := range results {
		if r == nil || r.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.Day]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.Day]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.Day] = struct{}{}
	}

	for _, r := range results {
		resultCopy := *r
		s.data[r.Day] = &resultCopy
	}
	return nil
}

// GetAll retrieves every stored result, ordered by trading day ASC.
func (s *TradeResultStore) GetAll(_ context.Context) ([]*domain.TradeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TradeResult, 0, len(s.data))
	for _, r := range s.data {
		resultCopy := *r
		result = append(result, &resultCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})
	return result, nil
}

var _ storage.TradeResultStore = (*TradeResultStore)(nil)
