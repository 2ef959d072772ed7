package polymarket

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

// Default fetch bounds.
const (
	DefaultPageSize    = 500
	DefaultMaxPages    = 10
	DefaultConcurrency = 4
)

// FetcherOptions contains configuration for creating a Fetcher.
type FetcherOptions struct {
	Client            *Client
	PageSize          int
	MaxPages          int
	Concurrency       int           // fixed fan-out across traders
	RateLimitInterval time.Duration // shared spacing between page requests
	Logger            *log.Logger
}

// Fetcher pulls complete trade histories for a set of traders with a
// bounded fan-out and a shared rate limiter. Degraded fetches are not
// errors: whatever pages arrived before the failure are returned, and
// an empty result simply means no data.
type Fetcher struct {
	client      *Client
	pageSize    int
	maxPages    int
	concurrency int
	limiter     *Limiter
	logger      *log.Logger
}

// NewFetcher creates a new trade history fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Fetcher{
		client:      opts.Client,
		pageSize:    pageSize,
		maxPages:    maxPages,
		concurrency: concurrency,
		limiter:     NewLimiter(opts.RateLimitInterval),
		logger:      logger,
	}
}

// FetchAll retrieves raw trade records for every address, keyed by the
// requested address. Records for traders whose fetch degraded mid-way
// are partial; traders with nothing fetched map to an empty slice.
func (f *Fetcher) FetchAll(ctx context.Context, addresses []string) map[string][]domain.RawRecord {
	results := make(map[string][]domain.RawRecord, len(addresses))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, addr := range addresses {
		g.Go(func() error {
			records := f.fetchTrader(gctx, addr)
			mu.Lock()
			results[addr] = records
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; degraded fetches only shrink their
	// own result.
	_ = g.Wait()

	return results
}

// fetchTrader pages through one trader's fills until a short page, the
// page cap, or a failure.
func (f *Fetcher) fetchTrader(ctx context.Context, address string) []domain.RawRecord {
	var all []domain.RawRecord

	for page := 0; page < f.maxPages; page++ {
		if err := f.limiter.Wait(ctx); err != nil {
			f.logger.Printf("fetch %s: cancelled after %d records", address, len(all))
			return all
		}

		records, err := f.client.Trades(ctx, address, f.pageSize, page*f.pageSize)
		if err != nil {
			f.logger.Printf("fetch %s page %d: %v (returning %d records)", address, page, err, len(all))
			return all
		}

		all = append(all, records...)

		if len(records) < f.pageSize {
			break
		}
	}

	return all
}
