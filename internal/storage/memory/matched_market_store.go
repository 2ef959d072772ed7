package memory

import (
	"context"
	"sync"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// MatchedMarketStore is an in-memory implementation of
// storage.MatchedMarketStore.
type MatchedMarketStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.MatchedMarket // runID -> stored order
}

// NewMatchedMarketStore creates a new in-memory matched market store.
func NewMatchedMarketStore() *MatchedMarketStore {
	return &MatchedMarketStore{
		data: make(map[string][]*domain.MatchedMarket),
	}
}

// Compile-time interface check.
var _ storage.MatchedMarketStore = (*MatchedMarketStore)(nil)

// InsertBulk adds a run's matched markets preserving order. Returns
// ErrDuplicateKey if the run already has markets.
func (s *MatchedMarketStore) InsertBulk(_ context.Context, runID string, markets []*domain.MatchedMarket) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := make([]*domain.MatchedMarket, len(markets))
	for i, m := range markets {
		if m == nil || m.MarketID == "" {
			return storage.ErrInvalidInput
		}
		stored[i] = copyMatchedMarket(m)
	}
	s.data[runID] = stored
	return nil
}

// GetByRun retrieves a run's matched markets in stored order. A run
// with nothing stored yields an empty slice.
func (s *MatchedMarketStore) GetByRun(_ context.Context, runID string) ([]*domain.MatchedMarket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[runID]

	result := make([]*domain.MatchedMarket, len(stored))
	for i, m := range stored {
		result[i] = copyMatchedMarket(m)
	}
	return result, nil
}

// copyMatchedMarket deep-copies so callers cannot mutate stored state.
func copyMatchedMarket(m *domain.MatchedMarket) *domain.MatchedMarket {
	cp := &domain.MatchedMarket{
		MarketID:          m.MarketID,
		Title:             m.Title,
		FirstTouches:      make([]*domain.MarketFirstTouch, len(m.FirstTouches)),
		Gaps:              make([]domain.PairGap, len(m.Gaps)),
		EarliestTimestamp: m.EarliestTimestamp,
	}
	for i, t := range m.FirstTouches {
		tc := *t
		cp.FirstTouches[i] = &tc
	}
	copy(cp.Gaps, m.Gaps)
	return cp
}
