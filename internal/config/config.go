// Package config handles YAML configuration loading with environment
// variable substitution. Config files support ${VAR} syntax.
package config

import "time"

// Config is the root configuration for the analyzer.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Traders  TradersConfig  `yaml:"traders"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  StorageConfig  `yaml:"storage"`
	Watch    WatchConfig    `yaml:"watch"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Report   ReportConfig   `yaml:"report"`
}

// APIConfig holds Polymarket API settings.
type APIConfig struct {
	DataURL    string        `yaml:"data_url"`
	GammaURL   string        `yaml:"gamma_url"`
	WSURL      string        `yaml:"ws_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// TradersConfig lists the wallet addresses to analyze.
type TradersConfig struct {
	Addresses []string `yaml:"addresses"`
}

// FetchConfig holds trade history retrieval settings.
type FetchConfig struct {
	PageSize          int           `yaml:"page_size"`
	MaxPages          int           `yaml:"max_pages"`
	Concurrency       int           `yaml:"concurrency"`
	RateLimitInterval time.Duration `yaml:"rate_limit_interval"`
}

// AnalysisConfig holds the leadership matching parameters.
type AnalysisConfig struct {
	WindowSeconds   int64 `yaml:"window_seconds"`
	MinParticipants int   `yaml:"min_participants"`
	MinLeaderCount  int   `yaml:"min_leader_count"`
	TopN            int   `yaml:"top_n"`
}

// StorageConfig selects the persistence backend. The memory backend
// needs no DSNs; trades are archived to ClickHouse only when
// archive_trades is set.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // "memory" or "postgres"
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	ArchiveTrades bool   `yaml:"archive_trades"`
}

// WatchConfig holds live trade capture settings.
type WatchConfig struct {
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	OutputDir string   `yaml:"output_dir"`
	Formats   []string `yaml:"formats"` // "markdown", "csv"
}
