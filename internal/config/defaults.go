package config

import (
	"time"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/aggregate"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/matching"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/polymarket"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/ranking"
)

// Default values for optional configuration fields. Domain parameters
// reuse the defaults their packages export so the two never drift.
const (
	DefaultWSURL              = "wss://ws-live-data.polymarket.com"
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryDelay         = 1 * time.Second
	DefaultRateLimitInterval  = 200 * time.Millisecond
	DefaultStorageBackend     = "memory"
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultPingInterval       = 15 * time.Second
	DefaultReadTimeout        = 30 * time.Second
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
	DefaultReportOutputDir    = "reports"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.DataURL == "" {
		c.API.DataURL = polymarket.DefaultDataURL
	}
	if c.API.GammaURL == "" {
		c.API.GammaURL = polymarket.DefaultGammaURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = DefaultRetryDelay
	}

	// Fetch defaults
	if c.Fetch.PageSize == 0 {
		c.Fetch.PageSize = polymarket.DefaultPageSize
	}
	if c.Fetch.MaxPages == 0 {
		c.Fetch.MaxPages = polymarket.DefaultMaxPages
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = polymarket.DefaultConcurrency
	}
	if c.Fetch.RateLimitInterval == 0 {
		c.Fetch.RateLimitInterval = DefaultRateLimitInterval
	}

	// Analysis defaults
	if c.Analysis.WindowSeconds == 0 {
		c.Analysis.WindowSeconds = matching.DefaultWindowSeconds
	}
	if c.Analysis.MinParticipants == 0 {
		c.Analysis.MinParticipants = matching.DefaultMinParticipants
	}
	if c.Analysis.MinLeaderCount == 0 {
		c.Analysis.MinLeaderCount = ranking.DefaultMinLeaderCount
	}
	if c.Analysis.TopN == 0 {
		c.Analysis.TopN = aggregate.DefaultTopN
	}

	// Storage defaults
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultStorageBackend
	}

	// Watch defaults
	if c.Watch.ReconnectBaseDelay == 0 {
		c.Watch.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Watch.ReconnectMaxDelay == 0 {
		c.Watch.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Watch.PingInterval == 0 {
		c.Watch.PingInterval = DefaultPingInterval
	}
	if c.Watch.ReadTimeout == 0 {
		c.Watch.ReadTimeout = DefaultReadTimeout
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Report defaults
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = DefaultReportOutputDir
	}
	if len(c.Report.Formats) == 0 {
		c.Report.Formats = []string{"markdown", "csv"}
	}
}
