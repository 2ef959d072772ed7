package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

func TestSummaryStore_PreservesRankOrder(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	summaries := []*domain.TraderLeadershipSummary{
		{TraderAddress: "0xccc", TimesLeader: 5},
		{TraderAddress: "0xaaa", TimesLeader: 3},
		{TraderAddress: "0xbbb", TimesLeader: 2},
	}

	if err := store.InsertBulk(ctx, "run-1", summaries); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRun failed: %v", err)
	}
	want := []string{"0xccc", "0xaaa", "0xbbb"}
	for i, addr := range want {
		if got[i].TraderAddress != addr {
			t.Errorf("position %d: expected %s, got %s", i, addr, got[i].TraderAddress)
		}
	}
}

func TestSummaryStore_DuplicateRun(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	summaries := []*domain.TraderLeadershipSummary{{TraderAddress: "0xaaa"}}
	if err := store.InsertBulk(ctx, "run-1", summaries); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := store.InsertBulk(ctx, "run-1", summaries); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestSummaryStore_UnknownRun(t *testing.T) {
	store := NewSummaryStore()
	got, err := store.GetByRun(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByRun: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice for unknown run, got %v", got)
	}
}

func TestSummaryStore_EmptyRunIsStorable(t *testing.T) {
	// A run where nobody qualified still records its (empty) result.
	store := NewSummaryStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run-1", nil); err != nil {
		t.Fatalf("InsertBulk of empty result failed: %v", err)
	}
	got, err := store.GetByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRun failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty summaries, got %d", len(got))
	}
}
