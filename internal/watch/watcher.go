// Package watch captures live trades from the Polymarket real-time
// data socket and archives them through a TradeStore.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/normalize"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/observability"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// Config configures watcher behavior.
type Config struct {
	// ReconnectBaseDelay is the initial delay before a reconnect attempt.
	ReconnectBaseDelay time.Duration
	// ReconnectMaxDelay caps the exponential backoff.
	ReconnectMaxDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns default watcher configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
		PingInterval:       15 * time.Second,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       10 * time.Second,
	}
}

// Options bundles watcher dependencies.
type Options struct {
	URL       string
	Addresses []string // traders to capture; empty captures everything
	Store     storage.TradeStore
	Logger    *log.Logger
	Config    *Config
}

// Watcher maintains a websocket subscription to the trades topic and
// stores every captured trade for the configured addresses.
type Watcher struct {
	url     string
	watched map[string]struct{}
	store   storage.TradeStore
	logger  *log.Logger
	config  Config

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool
}

// NewWatcher creates a new watcher.
func NewWatcher(opts Options) (*Watcher, error) {
	if opts.URL == "" {
		return nil, errors.New("watch: url is required")
	}
	if opts.Store == nil {
		return nil, errors.New("watch: store is required")
	}

	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	watched := make(map[string]struct{}, len(opts.Addresses))
	for _, addr := range opts.Addresses {
		watched[strings.ToLower(addr)] = struct{}{}
	}

	return &Watcher{
		url:     opts.URL,
		watched: watched,
		store:   opts.Store,
		logger:  logger,
		config:  cfg,
	}, nil
}

// Run connects and consumes trade events until the context is
// cancelled. Connection failures trigger reconnects with exponential
// backoff; Run only returns the context's error.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.closed.Store(true)

	delay := w.config.ReconnectBaseDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := w.runConn(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ctx.Err()
		}

		w.logger.Printf("watch: connection lost: %v, reconnecting in %s", err, delay)
		observability.RecordWatcherReconnect()
		observability.SetWatcherConnected(false)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > w.config.ReconnectMaxDelay {
			delay = w.config.ReconnectMaxDelay
		}
	}
}

// runConn performs one connect/subscribe/read cycle.
func (w *Watcher) runConn(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	w.connMu.Lock()
	w.conn = conn
	w.connMu.Unlock()

	defer func() {
		w.connMu.Lock()
		w.conn = nil
		w.connMu.Unlock()
		conn.Close()
	}()

	if err := w.subscribe(conn); err != nil {
		return err
	}

	observability.SetWatcherConnected(true)
	w.logger.Printf("watch: connected to %s", w.url)

	// Close the connection when the context ends so ReadMessage
	// unblocks.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	pingTicker := time.NewTicker(w.config.PingInterval)
	defer pingTicker.Stop()
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-pingTicker.C:
				w.connMu.Lock()
				c := w.conn
				if c != nil {
					c.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
					c.WriteMessage(websocket.PingMessage, nil)
				}
				w.connMu.Unlock()
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("websocket read: %w", err)
		}

		observability.RecordWatcherMessage()
		w.handleMessage(ctx, message)
	}
}

// subscribeRequest is the real-time data socket subscribe frame.
type subscribeRequest struct {
	Action        string         `json:"action"`
	Subscriptions []subscription `json:"subscriptions"`
}

type subscription struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
}

func (w *Watcher) subscribe(conn *websocket.Conn) error {
	req := subscribeRequest{
		Action: "subscribe",
		Subscriptions: []subscription{
			{Topic: "activity", Type: "trades"},
		},
	}

	conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// envelope is the topic/type wrapper around every socket message.
type envelope struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleMessage decodes a socket message and stores any watched
// trades it carries. Decode failures and duplicate trades are logged
// and skipped; the read loop keeps going.
func (w *Watcher) handleMessage(ctx context.Context, message []byte) {
	trades := w.decodeTrades(message)
	for _, t := range trades {
		err := w.store.InsertBulk(ctx, []*domain.Trade{t})
		switch {
		case err == nil:
			observability.RecordWatcherTrade()
		case errors.Is(err, storage.ErrDuplicateKey):
			// Already captured, the socket replays on resubscribe.
		default:
			w.logger.Printf("watch: store trade %s: %v", t.ID, err)
		}
	}
}

// decodeTrades extracts watched trades from a raw socket message.
func (w *Watcher) decodeTrades(message []byte) []*domain.Trade {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		observability.RecordWatcherDecodeError()
		w.logger.Printf("watch: decode envelope: %v", err)
		return nil
	}
	if env.Topic != "activity" || env.Type != "trades" || len(env.Payload) == 0 {
		return nil
	}

	// The payload is a single record or an array of them.
	var records []domain.RawRecord
	if env.Payload[0] == '[' {
		if err := json.Unmarshal(env.Payload, &records); err != nil {
			observability.RecordWatcherDecodeError()
			w.logger.Printf("watch: decode payload: %v", err)
			return nil
		}
	} else {
		var rec domain.RawRecord
		if err := json.Unmarshal(env.Payload, &rec); err != nil {
			observability.RecordWatcherDecodeError()
			w.logger.Printf("watch: decode payload: %v", err)
			return nil
		}
		records = []domain.RawRecord{rec}
	}

	trades := make([]*domain.Trade, 0, len(records))
	for _, rec := range records {
		t := normalize.Record(rec)
		if t == nil || t.ID == "" {
			continue
		}
		if len(w.watched) > 0 {
			if _, ok := w.watched[t.TraderAddress]; !ok {
				continue
			}
		}
		trades = append(trades, t)
	}
	return trades
}
