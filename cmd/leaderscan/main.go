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
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/config"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/engine"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/normalize"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/observability"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/polymarket"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/reporting"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
	chstore "github.com/pittdog/polymarket-copy-trading-bot/internal/storage/clickhouse"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage/memory"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage/migrations"
	pgstore "github.com/pittdog/polymarket-copy-trading-bot/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	logger := log.New(os.Stdout, "[leaderscan] ", log.LstdFlags)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if cfg.Metrics.Enabled {
		startMetricsServer(logger, cfg)
	}

	if err := run(ctx, logger, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Println("Cancelled")
			os.Exit(1)
		}
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	client := polymarket.NewClient(
		polymarket.WithDataURL(cfg.API.DataURL),
		polymarket.WithGammaURL(cfg.API.GammaURL),
		polymarket.WithTimeout(cfg.API.Timeout),
		polymarket.WithMaxRetries(cfg.API.MaxRetries),
		polymarket.WithRetryDelay(cfg.API.RetryDelay),
	)

	fetcher := polymarket.NewFetcher(polymarket.FetcherOptions{
		Client:            client,
		PageSize:          cfg.Fetch.PageSize,
		MaxPages:          cfg.Fetch.MaxPages,
		Concurrency:       cfg.Fetch.Concurrency,
		RateLimitInterval: cfg.Fetch.RateLimitInterval,
		Logger:            logger,
	})

	logger.Printf("Fetching trade histories for %d traders", len(cfg.Traders.Addresses))
	fetchStart := time.Now()
	rawByTrader := fetcher.FetchAll(ctx, cfg.Traders.Addresses)
	if err := ctx.Err(); err != nil {
		return err
	}

	var trades []*domain.Trade
	rawCount := 0
	for trader, records := range rawByTrader {
		rawCount += len(records)
		normalized := normalize.Records(records)
		observability.RecordFetch(trader, len(records), time.Since(fetchStart).Seconds(), nil)
		trades = append(trades, normalized...)
	}
	observability.DefaultMetrics.TradesAnalyzed.Add(float64(len(trades)))
	observability.DefaultMetrics.RecordsDropped.Add(float64(rawCount - len(trades)))
	observability.DefaultMetrics.LastSuccessfulFetch.Set(float64(time.Now().Unix()))
	logger.Printf("Fetched %d raw records, %d normalized trades", rawCount, len(trades))

	analysisStart := time.Now()
	histories := engine.BuildHistories(trades)
	result := engine.Analyze(histories, engine.Params{
		WindowSeconds:   cfg.Analysis.WindowSeconds,
		MinParticipants: cfg.Analysis.MinParticipants,
		MinLeaderCount:  cfg.Analysis.MinLeaderCount,
		TopN:            cfg.Analysis.TopN,
	})
	observability.RecordAnalysisRun("ok", time.Since(analysisStart).Seconds(),
		len(result.MatchedMarkets), len(result.Ranked))
	observability.DefaultMetrics.LastSuccessfulRun.Set(float64(time.Now().Unix()))
	logger.Printf("Run %s: %d matched markets, %d ranked traders",
		result.Run.RunID, len(result.MatchedMarkets), len(result.Ranked))

	labelMarkets(ctx, logger, client, trades, result.MatchedMarkets)

	runStore, summaryStore, marketStore, cleanup, err := buildStores(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := persistRun(ctx, result, runStore, summaryStore, marketStore); err != nil {
		return err
	}

	if cfg.Storage.ArchiveTrades {
		if err := archiveTrades(ctx, logger, cfg, trades); err != nil {
			logger.Printf("Archive trades: %v", err)
		}
	}

	if err := writeReports(ctx, logger, cfg, result.Run.RunID, runStore, summaryStore, marketStore); err != nil {
		return err
	}

	logger.Printf("Done")
	return nil
}

// labelMarkets fills matched market titles, first from the trades that
// produced them, then from the gamma API for anything still unnamed.
func labelMarkets(ctx context.Context, logger *log.Logger, client *polymarket.Client, trades []*domain.Trade, markets []*domain.MatchedMarket) {
	titles := make(map[string]string)
	for _, t := range trades {
		if t.Title != "" && titles[t.MarketID] == "" {
			titles[t.MarketID] = t.Title
		}
	}

	for _, m := range markets {
		if m.Title != "" {
			continue
		}
		if title, ok := titles[m.MarketID]; ok {
			m.Title = title
			continue
		}
		market, err := client.MarketByConditionID(ctx, m.MarketID)
		if err != nil {
			logger.Printf("Label market %s: %v", m.MarketID, err)
			continue
		}
		m.Title = market.Question
	}
}

// buildStores constructs the configured persistence backend.
func buildStores(ctx context.Context, logger *log.Logger, cfg *config.Config) (
	storage.RunStore,
	storage.SummaryStore,
	storage.MatchedMarketStore,
	func(),
	error,
) {
	if cfg.Storage.Backend == "postgres" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Printf("Using postgres backend")
		return pgstore.NewRunStore(pool),
			pgstore.NewSummaryStore(pool),
			pgstore.NewMatchedMarketStore(pool),
			pool.Close,
			nil
	}

	logger.Printf("Using in-memory backend, results will not survive the process")
	return memory.NewRunStore(),
		memory.NewSummaryStore(),
		memory.NewMatchedMarketStore(),
		func() {},
		nil
}

// persistRun stores the run metadata, summaries and matched markets.
func persistRun(
	ctx context.Context,
	result *engine.Result,
	runStore storage.RunStore,
	summaryStore storage.SummaryStore,
	marketStore storage.MatchedMarketStore,
) error {
	if err := runStore.Insert(ctx, &result.Run); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	if err := summaryStore.InsertBulk(ctx, result.Run.RunID, result.Ranked); err != nil {
		return fmt.Errorf("persist summaries: %w", err)
	}
	if err := marketStore.InsertBulk(ctx, result.Run.RunID, result.MatchedMarkets); err != nil {
		return fmt.Errorf("persist matched markets: %w", err)
	}
	return nil
}

// archiveTrades writes the normalized trades to ClickHouse. Duplicates
// from earlier runs are expected and skipped per trader.
func archiveTrades(ctx context.Context, logger *log.Logger, cfg *config.Config, trades []*domain.Trade) error {
	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	defer conn.Close()

	store := chstore.NewTradeStore(conn)

	byTrader := make(map[string][]*domain.Trade)
	for _, t := range trades {
		if t.ID == "" {
			continue
		}
		byTrader[t.TraderAddress] = append(byTrader[t.TraderAddress], t)
	}

	archived := 0
	for trader, batch := range byTrader {
		err := store.InsertBulk(ctx, batch)
		switch {
		case err == nil:
			archived += len(batch)
		case errors.Is(err, storage.ErrDuplicateKey):
			logger.Printf("Archive: trades for %s already stored", trader)
		default:
			return fmt.Errorf("archive trades for %s: %w", trader, err)
		}
	}
	logger.Printf("Archived %d trades to clickhouse", archived)
	return nil
}

// writeReports renders the run in every configured format.
func writeReports(
	ctx context.Context,
	logger *log.Logger,
	cfg *config.Config,
	runID string,
	runStore storage.RunStore,
	summaryStore storage.SummaryStore,
	marketStore storage.MatchedMarketStore,
) error {
	gen := reporting.NewGenerator(runStore, summaryStore, marketStore)
	report, err := gen.Generate(ctx, runID)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if err := os.MkdirAll(cfg.Report.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, format := range cfg.Report.Formats {
		var (
			name    string
			content string
		)
		switch format {
		case "markdown":
			name = "leadership_report.md"
			content = reporting.RenderMarkdown(report)
		case "csv":
			name = "leaderboard.csv"
			content = reporting.RenderCSV(report.Leaderboard)
		default:
			continue
		}

		path := filepath.Join(cfg.Report.OutputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Printf("Wrote %s", path)
	}

	observability.DefaultMetrics.ReportsGenerated.Inc()
	return nil
}

func startMetricsServer(logger *log.Logger, cfg *config.Config) {
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
