package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

func testTrades() []*domain.Trade {
	return []*domain.Trade{
		{
			ID:            "t-2",
			Timestamp:     1700000200,
			TraderAddress: "0xaaa",
			MarketID:      "0xcond1",
			Side:          domain.SideSell,
			Price:         0.55,
			Size:          100,
			USDValue:      55,
			Title:         "Will it rain tomorrow?",
			Slug:          "will-it-rain-tomorrow",
		},
		{
			ID:            "t-1",
			Timestamp:     1700000100,
			TraderAddress: "0xaaa",
			MarketID:      "0xcond1",
			Side:          domain.SideBuy,
			Price:         0.42,
			Size:          200,
			USDValue:      84,
		},
		{
			ID:            "t-3",
			Timestamp:     1700000150,
			TraderAddress: "0xbbb",
			MarketID:      "0xcond2",
			Side:          domain.SideBuy,
			Price:         0.1,
			Size:          500,
			USDValue:      50,
		},
	}
}

func TestTradeStore_InsertBulkAndGetByTrader(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(conn)

	require.NoError(t, store.InsertBulk(ctx, testTrades()))

	got, err := store.GetByTrader(ctx, "0xaaa")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by timestamp ascending.
	assert.Equal(t, "t-1", got[0].ID)
	assert.Equal(t, "t-2", got[1].ID)

	assert.Equal(t, "0xaaa", got[0].TraderAddress)
	assert.Equal(t, "0xcond1", got[0].MarketID)
	assert.Equal(t, domain.SideBuy, got[0].Side)
	assert.InDelta(t, 0.42, got[0].Price, 0.0001)
	assert.InDelta(t, 200.0, got[0].Size, 0.0001)
	assert.InDelta(t, 84.0, got[0].USDValue, 0.0001)
	assert.Equal(t, "Will it rain tomorrow?", got[1].Title)
	assert.Equal(t, "will-it-rain-tomorrow", got[1].Slug)
}

func TestTradeStore_GetByTraderRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(conn)
	require.NoError(t, store.InsertBulk(ctx, testTrades()))

	got, err := store.GetByTraderRange(ctx, "0xaaa", 1700000100, 1700000100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t-1", got[0].ID)
}

func TestTradeStore_InsertDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(conn)
	require.NoError(t, store.InsertBulk(ctx, testTrades()))

	err := store.InsertBulk(ctx, testTrades()[:1])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTradeStore_InsertIntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(conn)

	trades := testTrades()
	trades = append(trades, trades[0])

	err := store.InsertBulk(ctx, trades)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Nothing should be written when the batch is rejected up front.
	got, err := store.GetByTrader(ctx, "0xaaa")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTradeStore_GetByTraderUnknown(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := NewTradeStore(conn).GetByTrader(context.Background(), "0xnobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
