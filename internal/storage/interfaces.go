// Package storage defines the persistence interfaces for trades and
// analysis results, with in-memory, PostgreSQL and ClickHouse
// implementations in subpackages.
package storage

import (
	"context"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

// TradeStore archives normalized trades.
type TradeStore interface {
	// InsertBulk adds multiple trades. Returns ErrDuplicateKey if a
	// (trader_address, id) pair already exists.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByTrader retrieves all trades for an address, ordered by
	// timestamp ASC.
	GetByTrader(ctx context.Context, address string) ([]*domain.Trade, error)

	// GetByTraderRange retrieves trades for an address within
	// [start, end] seconds (inclusive), ordered by timestamp ASC.
	GetByTraderRange(ctx context.Context, address string, start, end int64) ([]*domain.Trade, error)
}

// RunStore records analysis run metadata.
type RunStore interface {
	// Insert adds a run. Returns ErrDuplicateKey if the run id exists.
	Insert(ctx context.Context, run *domain.AnalysisRun) error

	// GetByID retrieves a run. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.AnalysisRun, error)

	// GetLatest retrieves the most recently created run. Returns
	// ErrNotFound when no runs exist.
	GetLatest(ctx context.Context) (*domain.AnalysisRun, error)
}

// SummaryStore persists the ranked leadership summaries of a run.
type SummaryStore interface {
	// InsertBulk adds a run's summaries preserving the given order.
	// Returns ErrDuplicateKey if the run already has summaries.
	InsertBulk(ctx context.Context, runID string, summaries []*domain.TraderLeadershipSummary) error

	// GetByRun retrieves a run's summaries in their stored rank order.
	// A run with nothing stored yields an empty slice, not an error.
	GetByRun(ctx context.Context, runID string) ([]*domain.TraderLeadershipSummary, error)
}

// MatchedMarketStore persists the matched markets of a run.
type MatchedMarketStore interface {
	// InsertBulk adds a run's matched markets preserving the given
	// order. Returns ErrDuplicateKey if the run already has markets.
	InsertBulk(ctx context.Context, runID string, markets []*domain.MatchedMarket) error

	// GetByRun retrieves a run's matched markets in stored order.
	// A run with nothing stored yields an empty slice, not an error.
	GetByRun(ctx context.Context, runID string) ([]*domain.MatchedMarket, error)
}
