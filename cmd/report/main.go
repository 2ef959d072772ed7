package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/config"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/reporting"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage/migrations"
	pgstore "github.com/pittdog/polymarket-copy-trading-bot/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	runID := flag.String("run-id", "", "Run to report on (default: most recent)")
	flag.Parse()

	logger := log.New(os.Stdout, "[report] ", log.LstdFlags)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if cfg.Storage.Backend != "postgres" {
		logger.Fatalf("Regenerating reports requires the postgres backend, got %q", cfg.Storage.Backend)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, logger, cfg, *runID); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, runID string) error {
	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	gen := reporting.NewGenerator(
		pgstore.NewRunStore(pool),
		pgstore.NewSummaryStore(pool),
		pgstore.NewMatchedMarketStore(pool),
	)
	report, err := gen.Generate(ctx, runID)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	logger.Printf("Generated report for run %s", report.RunID)

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

	return nil
}
