package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// MatchedMarketStore implements storage.MatchedMarketStore using
// PostgreSQL. Participant touches and pairwise gaps are nested,
// variable-length structures tied to a single market row, so they are
// stored as JSONB rather than flattened into join tables.
type MatchedMarketStore struct {
	pool *Pool
}

// NewMatchedMarketStore creates a new MatchedMarketStore.
func NewMatchedMarketStore(pool *Pool) *MatchedMarketStore {
	return &MatchedMarketStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MatchedMarketStore = (*MatchedMarketStore)(nil)

// touchRow is the JSONB shape of a participant's first touch.
type touchRow struct {
	TraderAddress       string  `json:"trader_address"`
	MarketID            string  `json:"market_id"`
	FirstTimestamp      int64   `json:"first_timestamp"`
	FirstSide           string  `json:"first_side"`
	FirstPrice          float64 `json:"first_price"`
	CumulativeUSDVolume float64 `json:"cumulative_usd_volume"`
	TradeCount          int     `json:"trade_count"`
}

// gapRow is the JSONB shape of a pairwise timing record.
type gapRow struct {
	TraderA      string `json:"trader_a"`
	TraderB      string `json:"trader_b"`
	DeltaSeconds int64  `json:"delta_seconds"`
	Leader       string `json:"leader"`
}

// InsertBulk adds a run's matched markets atomically, preserving order.
// Returns ErrDuplicateKey if the run already has markets.
func (s *MatchedMarketStore) InsertBulk(ctx context.Context, runID string, markets []*domain.MatchedMarket) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(markets) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM matched_markets WHERE run_id = $1)`,
		runID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing matched markets: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO matched_markets (
			run_id, pos, market_id, title,
			earliest_timestamp, first_touches, gaps
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, m := range markets {
		if m == nil || m.MarketID == "" {
			return storage.ErrInvalidInput
		}

		touchesJSON, gapsJSON, err := marshalMatchedMarket(m)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, query,
			runID, i, m.MarketID, m.Title,
			m.EarliestTimestamp, touchesJSON, gapsJSON,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert matched market: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRun retrieves a run's matched markets in stored order. A run
// with nothing stored yields an empty slice, not an error.
func (s *MatchedMarketStore) GetByRun(ctx context.Context, runID string) ([]*domain.MatchedMarket, error) {
	query := `
		SELECT market_id, title, earliest_timestamp, first_touches, gaps
		FROM matched_markets
		WHERE run_id = $1
		ORDER BY pos ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get matched markets by run: %w", err)
	}
	defer rows.Close()

	markets := make([]*domain.MatchedMarket, 0)
	for rows.Next() {
		var (
			m           domain.MatchedMarket
			touchesJSON []byte
			gapsJSON    []byte
		)
		err := rows.Scan(&m.MarketID, &m.Title, &m.EarliestTimestamp, &touchesJSON, &gapsJSON)
		if err != nil {
			return nil, fmt.Errorf("scan matched market row: %w", err)
		}
		if err := unmarshalMatchedMarket(&m, touchesJSON, gapsJSON); err != nil {
			return nil, err
		}
		markets = append(markets, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matched market rows: %w", err)
	}

	return markets, nil
}

func marshalMatchedMarket(m *domain.MatchedMarket) ([]byte, []byte, error) {
	touches := make([]touchRow, len(m.FirstTouches))
	for i, t := range m.FirstTouches {
		touches[i] = touchRow{
			TraderAddress:       t.TraderAddress,
			MarketID:            t.MarketID,
			FirstTimestamp:      t.FirstTimestamp,
			FirstSide:           t.FirstSide,
			FirstPrice:          t.FirstPrice,
			CumulativeUSDVolume: t.CumulativeUSDVolume,
			TradeCount:          t.TradeCount,
		}
	}
	touchesJSON, err := json.Marshal(touches)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal first touches: %w", err)
	}

	gaps := make([]gapRow, len(m.Gaps))
	for i, g := range m.Gaps {
		gaps[i] = gapRow{
			TraderA:      g.TraderA,
			TraderB:      g.TraderB,
			DeltaSeconds: g.DeltaSeconds,
			Leader:       g.Leader,
		}
	}
	gapsJSON, err := json.Marshal(gaps)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal gaps: %w", err)
	}

	return touchesJSON, gapsJSON, nil
}

func unmarshalMatchedMarket(m *domain.MatchedMarket, touchesJSON, gapsJSON []byte) error {
	var touches []touchRow
	if err := json.Unmarshal(touchesJSON, &touches); err != nil {
		return fmt.Errorf("unmarshal first touches: %w", err)
	}
	m.FirstTouches = make([]*domain.MarketFirstTouch, len(touches))
	for i, t := range touches {
		m.FirstTouches[i] = &domain.MarketFirstTouch{
			TraderAddress:       t.TraderAddress,
			MarketID:            t.MarketID,
			FirstTimestamp:      t.FirstTimestamp,
			FirstSide:           t.FirstSide,
			FirstPrice:          t.FirstPrice,
			CumulativeUSDVolume: t.CumulativeUSDVolume,
			TradeCount:          t.TradeCount,
		}
	}

	var gaps []gapRow
	if err := json.Unmarshal(gapsJSON, &gaps); err != nil {
		return fmt.Errorf("unmarshal gaps: %w", err)
	}
	m.Gaps = make([]domain.PairGap, len(gaps))
	for i, g := range gaps {
		m.Gaps[i] = domain.PairGap{
			TraderA:      g.TraderA,
			TraderB:      g.TraderB,
			DeltaSeconds: g.DeltaSeconds,
			Leader:       g.Leader,
		}
	}

	return nil
}
