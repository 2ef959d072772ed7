package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if len(c.Traders.Addresses) < 2 {
		return errors.New("traders.addresses needs at least 2 entries to compare")
	}
	seen := make(map[string]struct{}, len(c.Traders.Addresses))
	for i, addr := range c.Traders.Addresses {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("traders.addresses[%d] is empty", i)
		}
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("traders.addresses contains duplicate %s", key)
		}
		seen[key] = struct{}{}
	}

	if c.Fetch.PageSize < 1 {
		return errors.New("fetch.page_size must be >= 1")
	}
	if c.Fetch.MaxPages < 1 {
		return errors.New("fetch.max_pages must be >= 1")
	}
	if c.Fetch.Concurrency < 1 {
		return errors.New("fetch.concurrency must be >= 1")
	}
	if c.Fetch.RateLimitInterval < 0 {
		return errors.New("fetch.rate_limit_interval must be >= 0")
	}

	if c.Analysis.WindowSeconds < 1 {
		return errors.New("analysis.window_seconds must be >= 1")
	}
	if c.Analysis.MinParticipants < 2 {
		return errors.New("analysis.min_participants must be >= 2")
	}
	if c.Analysis.MinLeaderCount < 1 {
		return errors.New("analysis.min_leader_count must be >= 1")
	}
	if c.Analysis.TopN < 1 {
		return errors.New("analysis.top_n must be >= 1")
	}

	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be memory or postgres, got %q", c.Storage.Backend)
	}
	if c.Storage.ArchiveTrades && c.Storage.ClickhouseDSN == "" {
		return errors.New("storage.clickhouse_dsn is required when archive_trades is set")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
	}

	for _, format := range c.Report.Formats {
		if format != "markdown" && format != "csv" {
			return fmt.Errorf("report.formats contains unknown format %q", format)
		}
	}

	return nil
}
