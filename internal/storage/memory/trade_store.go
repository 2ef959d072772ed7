// Package memory provides in-memory store implementations, used for
// single-shot batch runs and as test doubles for the database-backed
// stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by trader|id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

func tradeKey(address, id string) string {
	return fmt.Sprintf("%s|%s", address, id)
}

// InsertBulk adds multiple trades. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.TraderAddress == "" {
			return storage.ErrInvalidInput
		}
		key := tradeKey(t.TraderAddress, t.ID)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, t := range trades {
		cp := *t
		s.data[tradeKey(t.TraderAddress, t.ID)] = &cp
	}
	return nil
}

// GetByTrader retrieves all trades for an address, ordered by
// timestamp ASC.
func (s *TradeStore) GetByTrader(_ context.Context, address string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Trade, 0)
	for _, t := range s.data {
		if t.TraderAddress == address {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortTrades(result)
	return result, nil
}

// GetByTraderRange retrieves trades within [start, end] inclusive.
func (s *TradeStore) GetByTraderRange(_ context.Context, address string, start, end int64) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Trade, 0)
	for _, t := range s.data {
		if t.TraderAddress == address && t.Timestamp >= start && t.Timestamp <= end {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortTrades(result)
	return result, nil
}

func sortTrades(trades []*domain.Trade) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].ID < trades[j].ID
	})
}
