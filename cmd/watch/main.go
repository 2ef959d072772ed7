package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/config"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/observability"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
	chstore "github.com/pittdog/polymarket-copy-trading-bot/internal/storage/clickhouse"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage/memory"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage/migrations"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/watch"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	logger := log.New(os.Stdout, "[watch] ", log.LstdFlags)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		// A second signal forces exit without waiting for the socket
		// to close cleanly.
		<-sigCh
		logger.Println("Forcing exit")
		os.Exit(1)
	}()

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			logger.Printf("Starting metrics server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	if err := run(ctx, logger, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}
	logger.Println("Stopped")
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	store, cleanup, err := buildTradeStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	watchCfg := watch.Config{
		ReconnectBaseDelay: cfg.Watch.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Watch.ReconnectMaxDelay,
		PingInterval:       cfg.Watch.PingInterval,
		ReadTimeout:        cfg.Watch.ReadTimeout,
		WriteTimeout:       watch.DefaultConfig().WriteTimeout,
	}

	watcher, err := watch.NewWatcher(watch.Options{
		URL:       cfg.API.WSURL,
		Addresses: cfg.Traders.Addresses,
		Store:     store,
		Logger:    logger,
		Config:    &watchCfg,
	})
	if err != nil {
		return err
	}

	logger.Printf("Watching live trades for %d traders on %s", len(cfg.Traders.Addresses), cfg.API.WSURL)
	return watcher.Run(ctx)
}

// buildTradeStore archives to ClickHouse when configured, otherwise
// captures into memory for ad-hoc inspection.
func buildTradeStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (storage.TradeStore, func(), error) {
	if cfg.Storage.ArchiveTrades {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		logger.Printf("Archiving captured trades to clickhouse")
		return chstore.NewTradeStore(conn), func() { conn.Close() }, nil
	}

	logger.Printf("Capturing trades in memory, they will not survive the process")
	return memory.NewTradeStore(), func() {}, nil
}
