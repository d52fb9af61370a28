package postgres

import (
	"context"
	"fmt"
	"time"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage"
)

// TradeResultStore implements storage.TradeResultStore using PostgreSQL.
type TradeResultStore struct {
	pool *Pool
}

// NewTradeResultStore creates a new TradeResultStore.
func NewTradeResultStore(pool *Pool) *TradeResultStore {
	return &TradeResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeResultStore = (*TradeResultStore)(nil)

const insertTradeResultQuery = `
	INSERT INTO trade_results (
		day, direction, spot_points, premium, pnl,
		cumulative_pnl, peak, drawdown
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8
	)
`

// InsertBulk adds multiple results atomically. Fails entire batch on any
// duplicate trading day.
func (s *TradeResultStore) InsertBulk(ctx context.Context, results []*domain.TradeResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range results {
		if r == nil || r.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertTradeResultQuery,
			r.Day.Time(), string(r.Direction), r.SpotPoints, r.Premium, r.PnL,
			r.CumulativePnL, r.Peak, r.Drawdown,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectTradeResultColumns = `
	day, direction, spot_points, premium, pnl,
	cumulative_pnl, peak, drawdown
`

// GetAll retrieves every stored result, ordered by trading day ASC.
func (s *TradeResultStore) GetAll(ctx context.Context) ([]*domain.TradeResult, error) {
	query := `SELECT ` + selectTradeResultColumns + ` FROM trade_results ORDER BY day ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trade results: %w", err)
	}
	defer rows.Close()

	var results []*domain.TradeResult
	for rows.Next() {
		r, err := scanTradeResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade result rows: %w", err)
	}
	return results, nil
}

// GetByDay retrieves the result for one trading day.
// Returns storage.ErrNotFound if not exists.
func (s *TradeResultStore) GetByDay(ctx context.Context, day domain.TradingDay) (*domain.TradeResult, error) {
	query := `SELECT ` + selectTradeResultColumns + ` FROM trade_results WHERE day = $1`

	row := s.pool.QueryRow(ctx, query, day.Time())
	r, err := scanTradeResult(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query trade result by day: %w", err)
	}
	return r, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for the scan helper.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTradeResult(row rowScanner) (*domain.TradeResult, error) {
	var r domain.TradeResult
	var day time.Time
	var direction string

	err := row.Scan(
		&day, &direction, &r.SpotPoints, &r.Premium, &r.PnL,
		&r.CumulativePnL, &r.Peak, &r.Drawdown,
	)
	if err != nil {
		return nil, err
	}

	r.Day = domain.NewTradingDay(day.Year(), day.Month(), day.Day())
	r.Direction = domain.Direction(direction)
	return &r, nil
}
