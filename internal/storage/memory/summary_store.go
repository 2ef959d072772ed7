package memory

import (
	"context"
	"sync"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.TraderLeadershipSummary // runID -> rank order
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		data: make(map[string][]*domain.TraderLeadershipSummary),
	}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// InsertBulk adds a run's summaries preserving order. Returns
// ErrDuplicateKey if the run already has summaries.
func (s *SummaryStore) InsertBulk(_ context.Context, runID string, summaries []*domain.TraderLeadershipSummary) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := make([]*domain.TraderLeadershipSummary, len(summaries))
	for i, sum := range summaries {
		if sum == nil || sum.TraderAddress == "" {
			return storage.ErrInvalidInput
		}
		cp := *sum
		stored[i] = &cp
	}
	s.data[runID] = stored
	return nil
}

// GetByRun retrieves a run's summaries in stored rank order. A run
// with nothing stored yields an empty slice.
func (s *SummaryStore) GetByRun(_ context.Context, runID string) ([]*domain.TraderLeadershipSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[runID]

	result := make([]*domain.TraderLeadershipSummary, len(stored))
	for i, sum := range stored {
		cp := *sum
		result[i] = &cp
	}
	return result, nil
}
