package clickhouse

import (
	"context"
	"fmt"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// TradeStore implements storage.TradeStore using ClickHouse.
type TradeStore struct {
	conn *Conn
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(conn *Conn) *TradeStore {
	return &TradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk adds multiple trades. Fails the entire batch on any
// duplicate (trader_address, id) pair. MergeTree does not enforce
// uniqueness at insert time, so duplicates are detected by explicit
// lookup before the batch is sent.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	type key struct {
		trader string
		id     string
	}
	seen := make(map[key]struct{})
	for _, t := range trades {
		if t == nil || t.ID == "" || t.TraderAddress == "" {
			return storage.ErrInvalidInput
		}
		k := key{t.TraderAddress, t.ID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, t := range trades {
		exists, err := s.exists(ctx, t.TraderAddress, t.ID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trades (
			id, timestamp, trader_address, market_id,
			side, price, size, usd_value, title, slug
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		err = batch.Append(
			t.ID, uint64(t.Timestamp), t.TraderAddress, t.MarketID,
			t.Side, t.Price, t.Size, t.USDValue, t.Title, t.Slug,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTrader retrieves all trades for an address, ordered by
// timestamp ASC with id as tie-break.
func (s *TradeStore) GetByTrader(ctx context.Context, address string) ([]*domain.Trade, error) {
	query := `
		SELECT id, timestamp, trader_address, market_id,
		       side, price, size, usd_value, title, slug
		FROM trades
		WHERE trader_address = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.conn.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("query by trader: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByTraderRange retrieves trades for an address within [start, end]
// seconds (inclusive), ordered by timestamp ASC.
func (s *TradeStore) GetByTraderRange(ctx context.Context, address string, start, end int64) ([]*domain.Trade, error) {
	query := `
		SELECT id, timestamp, trader_address, market_id,
		       side, price, size, usd_value, title, slug
		FROM trades
		WHERE trader_address = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.conn.Query(ctx, query, address, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by trader range: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// exists checks if a trade with the given key exists.
func (s *TradeStore) exists(ctx context.Context, address, id string) (bool, error) {
	query := `
		SELECT count(*) FROM trades
		WHERE trader_address = ? AND id = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, address, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTrades scans multiple rows into a slice.
func scanTrades(rows chRows) ([]*domain.Trade, error) {
	trades := make([]*domain.Trade, 0)

	for rows.Next() {
		var t domain.Trade
		var timestamp uint64

		err := rows.Scan(
			&t.ID, &timestamp, &t.TraderAddress, &t.MarketID,
			&t.Side, &t.Price, &t.Size, &t.USDValue, &t.Title, &t.Slug,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		t.Timestamp = int64(timestamp)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
