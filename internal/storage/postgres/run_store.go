package postgres

import (
	"context"
	"fmt"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new analysis run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.AnalysisRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO analysis_runs (
			run_id, created_at, trader_count, trade_count,
			matched_market_count, ranked_count,
			window_seconds, min_leader_count, top_n
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		run.RunID, run.CreatedAt, run.TraderCount, run.TradeCount,
		run.MatchedMarketCount, run.RankedCount,
		run.WindowSeconds, run.MinLeaderCount, run.TopN,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

// GetByID retrieves a run. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.AnalysisRun, error) {
	query := `
		SELECT
			run_id, created_at, trader_count, trade_count,
			matched_market_count, ranked_count,
			window_seconds, min_leader_count, top_n
		FROM analysis_runs
		WHERE run_id = $1
	`

	var run domain.AnalysisRun
	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&run.RunID, &run.CreatedAt, &run.TraderCount, &run.TradeCount,
		&run.MatchedMarketCount, &run.RankedCount,
		&run.WindowSeconds, &run.MinLeaderCount, &run.TopN,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get analysis run by id: %w", err)
	}
	return &run, nil
}

// GetLatest retrieves the most recently created run. Returns
// ErrNotFound when no runs exist.
func (s *RunStore) GetLatest(ctx context.Context) (*domain.AnalysisRun, error) {
	query := `
		SELECT
			run_id, created_at, trader_count, trade_count,
			matched_market_count, ranked_count,
			window_seconds, min_leader_count, top_n
		FROM analysis_runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1
	`

	var run domain.AnalysisRun
	err := s.pool.QueryRow(ctx, query).Scan(
		&run.RunID, &run.CreatedAt, &run.TraderCount, &run.TradeCount,
		&run.MatchedMarketCount, &run.RankedCount,
		&run.WindowSeconds, &run.MinLeaderCount, &run.TopN,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest analysis run: %w", err)
	}
	return &run, nil
}
