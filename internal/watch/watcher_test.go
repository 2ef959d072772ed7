package watch

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage/memory"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newTestWatcher(t *testing.T, addresses []string) (*Watcher, *memory.TradeStore) {
	t.Helper()
	store := memory.NewTradeStore()
	w, err := NewWatcher(Options{
		URL:       "ws://unused",
		Addresses: addresses,
		Store:     store,
		Logger:    log.New(testWriter{t}, "", 0),
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	return w, store
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func TestDecodeTrades_SingleRecord(t *testing.T) {
	w, _ := newTestWatcher(t, []string{"0xAAA"})

	msg := []byte(`{
		"topic": "activity",
		"type": "trades",
		"payload": {
			"proxyWallet": "0xAAA",
			"transactionHash": "0xdeadbeef",
			"conditionId": "0xcond1",
			"side": "buy",
			"price": "0.42",
			"size": 100,
			"timestamp": 1700000000
		}
	}`)

	trades := w.decodeTrades(msg)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.TraderAddress != "0xaaa" {
		t.Errorf("address not lowercased: %s", tr.TraderAddress)
	}
	if tr.ID != "0xdeadbeef" || tr.MarketID != "0xcond1" {
		t.Errorf("unexpected identifiers: %+v", tr)
	}
	if tr.Side != "BUY" {
		t.Errorf("side not normalized: %s", tr.Side)
	}
	if tr.Price != 0.42 || tr.Size != 100 || tr.Timestamp != 1700000000 {
		t.Errorf("unexpected numerics: %+v", tr)
	}
}

func TestDecodeTrades_ArrayPayload(t *testing.T) {
	w, _ := newTestWatcher(t, nil)

	msg := []byte(`{
		"topic": "activity",
		"type": "trades",
		"payload": [
			{"proxyWallet": "0xaaa", "transactionHash": "t1", "conditionId": "m1", "timestamp": 1},
			{"proxyWallet": "0xbbb", "transactionHash": "t2", "conditionId": "m2", "timestamp": 2}
		]
	}`)

	trades := w.decodeTrades(msg)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
}

func TestDecodeTrades_FiltersUnwatchedAddresses(t *testing.T) {
	w, _ := newTestWatcher(t, []string{"0xaaa"})

	msg := []byte(`{
		"topic": "activity",
		"type": "trades",
		"payload": [
			{"proxyWallet": "0xaaa", "transactionHash": "t1", "timestamp": 1},
			{"proxyWallet": "0xccc", "transactionHash": "t2", "timestamp": 2}
		]
	}`)

	trades := w.decodeTrades(msg)
	if len(trades) != 1 || trades[0].TraderAddress != "0xaaa" {
		t.Fatalf("expected only the watched trade, got %v", trades)
	}
}

func TestDecodeTrades_IgnoresOtherTopics(t *testing.T) {
	w, _ := newTestWatcher(t, nil)

	msg := []byte(`{"topic": "comments", "type": "new", "payload": {"proxyWallet": "0xaaa"}}`)
	if trades := w.decodeTrades(msg); len(trades) != 0 {
		t.Errorf("expected no trades for other topics, got %d", len(trades))
	}
}

func TestDecodeTrades_MalformedJSON(t *testing.T) {
	w, _ := newTestWatcher(t, nil)

	if trades := w.decodeTrades([]byte(`{not json`)); trades != nil {
		t.Errorf("expected nil for malformed message, got %v", trades)
	}
}

func TestDecodeTrades_SkipsRecordsWithoutID(t *testing.T) {
	// A live event with no transaction hash cannot be deduplicated, so
	// it is not archived.
	w, _ := newTestWatcher(t, nil)

	msg := []byte(`{
		"topic": "activity",
		"type": "trades",
		"payload": {"proxyWallet": "0xaaa", "timestamp": 1}
	}`)
	if trades := w.decodeTrades(msg); len(trades) != 0 {
		t.Errorf("expected no trades without an id, got %d", len(trades))
	}
}

func TestWatcher_CapturesAndStores(t *testing.T) {
	received := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Expect the subscribe frame first.
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req subscribeRequest
		if err := json.Unmarshal(msg, &req); err != nil || req.Action != "subscribe" {
			t.Errorf("unexpected subscribe frame: %s", msg)
			return
		}

		event := map[string]any{
			"topic": "activity",
			"type":  "trades",
			"payload": map[string]any{
				"proxyWallet":     "0xAAA",
				"transactionHash": "0xlive1",
				"conditionId":     "0xcond1",
				"side":            "BUY",
				"price":           "0.3",
				"size":            "10",
				"timestamp":       1700000500,
			},
		}
		if err := conn.WriteJSON(event); err != nil {
			return
		}
		// Duplicate delivery must not error or double-store.
		if err := conn.WriteJSON(event); err != nil {
			return
		}
		close(received)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	store := memory.NewTradeStore()
	w, err := NewWatcher(Options{
		URL:       "ws" + strings.TrimPrefix(server.URL, "http"),
		Addresses: []string{"0xaaa"},
		Store:     store,
		Logger:    log.New(testWriter{t}, "", 0),
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("server never delivered the event")
	}

	// Wait for the trade to land in the store.
	deadline := time.Now().Add(5 * time.Second)
	for {
		trades, err := store.GetByTrader(ctx, "0xaaa")
		if err != nil {
			t.Fatalf("GetByTrader: %v", err)
		}
		if len(trades) == 1 {
			if trades[0].ID != "0xlive1" {
				t.Errorf("unexpected trade id: %s", trades[0].ID)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 stored trade, got %d", len(trades))
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestNewWatcher_RequiresURLAndStore(t *testing.T) {
	if _, err := NewWatcher(Options{Store: memory.NewTradeStore()}); err == nil {
		t.Error("expected error without url")
	}
	if _, err := NewWatcher(Options{URL: "ws://x"}); err == nil {
		t.Error("expected error without store")
	}
}
