package polymarket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Trades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trades" {
			t.Errorf("expected /trades, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("user") != "0xaaa" {
			t.Errorf("expected user 0xaaa, got %s", q.Get("user"))
		}
		if q.Get("limit") != "100" || q.Get("offset") != "200" {
			t.Errorf("pagination params wrong: limit=%s offset=%s", q.Get("limit"), q.Get("offset"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"proxyWallet": "0xAAA",
				"conditionId": "0xm1",
				"side":        "BUY",
				"price":       0.42,
				"size":        "100",
				"timestamp":   1700000000,
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithDataURL(server.URL))

	records, err := client.Trades(context.Background(), "0xaaa", 100, 200)
	if err != nil {
		t.Fatalf("Trades: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	// Mixed types survive decoding untouched; coercion is elsewhere.
	if records[0]["size"] != "100" {
		t.Errorf("expected string-encoded size preserved, got %v", records[0]["size"])
	}
	if records[0]["price"] != 0.42 {
		t.Errorf("expected numeric price preserved, got %v", records[0]["price"])
	}
}

func TestClient_RetriesOn500(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(
		WithDataURL(server.URL),
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
	)

	records, err := client.Trades(context.Background(), "0xaaa", 10, 0)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if records == nil {
		t.Fatal("expected empty slice")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestClient_NoRetryOn404(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(
		WithDataURL(server.URL),
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
	)

	_, err := client.Trades(context.Background(), "0xaaa", 10, 0)
	if err == nil {
		t.Fatal("expected error on 404")
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retries on 404, got %d calls", calls.Load())
	}
}

func TestClient_MarketByConditionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("expected /markets, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("condition_ids") != "0xm1" {
			t.Errorf("expected condition_ids=0xm1, got %s", r.URL.Query().Get("condition_ids"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":          "12345",
				"conditionId": "0xm1",
				"question":    "Will it rain tomorrow?",
				"slug":        "will-it-rain-tomorrow",
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithGammaURL(server.URL))

	m, err := client.MarketByConditionID(context.Background(), "0xm1")
	if err != nil {
		t.Fatalf("MarketByConditionID: %v", err)
	}
	if m.Question != "Will it rain tomorrow?" || m.ConditionID != "0xm1" {
		t.Errorf("market metadata wrong: %+v", m)
	}
}

func TestClient_MarketNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(WithGammaURL(server.URL))

	if _, err := client.MarketByConditionID(context.Background(), "0xmissing"); err == nil {
		t.Fatal("expected not-found error")
	}
}
