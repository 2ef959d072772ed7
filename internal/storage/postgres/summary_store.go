package postgres

import (
	"context"
	"fmt"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL. The
// rank column records the position each summary held in the inserted
// slice so reads reproduce the original order exactly.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// InsertBulk adds a run's summaries atomically, preserving order.
// Returns ErrDuplicateKey if the run already has summaries.
func (s *SummaryStore) InsertBulk(ctx context.Context, runID string, summaries []*domain.TraderLeadershipSummary) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(summaries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leadership_summaries WHERE run_id = $1)`,
		runID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing summaries: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO leadership_summaries (
			run_id, rank, trader_address,
			total_trades, matched_market_count,
			times_leader, times_in_top_n,
			avg_lead_seconds, avg_follow_seconds, matched_volume_usd
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i, sum := range summaries {
		if sum == nil || sum.TraderAddress == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			runID, i, sum.TraderAddress,
			sum.TotalTrades, sum.MatchedMarketCount,
			sum.TimesLeader, sum.TimesInTopN,
			sum.AvgLeadSeconds, sum.AvgFollowSeconds, sum.MatchedVolumeUSD,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert leadership summary: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRun retrieves a run's summaries in their stored rank order. A
// run with nothing stored yields an empty slice, not an error.
func (s *SummaryStore) GetByRun(ctx context.Context, runID string) ([]*domain.TraderLeadershipSummary, error) {
	query := `
		SELECT
			trader_address,
			total_trades, matched_market_count,
			times_leader, times_in_top_n,
			avg_lead_seconds, avg_follow_seconds, matched_volume_usd
		FROM leadership_summaries
		WHERE run_id = $1
		ORDER BY rank ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get summaries by run: %w", err)
	}
	defer rows.Close()

	summaries := make([]*domain.TraderLeadershipSummary, 0)
	for rows.Next() {
		var sum domain.TraderLeadershipSummary
		err := rows.Scan(
			&sum.TraderAddress,
			&sum.TotalTrades, &sum.MatchedMarketCount,
			&sum.TimesLeader, &sum.TimesInTopN,
			&sum.AvgLeadSeconds, &sum.AvgFollowSeconds, &sum.MatchedVolumeUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("scan leadership summary row: %w", err)
		}
		summaries = append(summaries, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leadership summary rows: %w", err)
	}

	return summaries, nil
}
