package reporting

import (
	"context"
	"time"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/storage"
)

// Generator produces reports from stored analysis runs.
type Generator struct {
	runStore     storage.RunStore
	summaryStore storage.SummaryStore
	marketStore  storage.MatchedMarketStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	runStore storage.RunStore,
	summaryStore storage.SummaryStore,
	marketStore storage.MatchedMarketStore,
) *Generator {
	return &Generator{
		runStore:     runStore,
		summaryStore: summaryStore,
		marketStore:  marketStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for the given run. An empty runID selects
// the most recent run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	var (
		run *domain.AnalysisRun
		err error
	)
	if runID == "" {
		run, err = g.runStore.GetLatest(ctx)
	} else {
		run, err = g.runStore.GetByID(ctx, runID)
	}
	if err != nil {
		return nil, err
	}

	summaries, err := g.summaryStore.GetByRun(ctx, run.RunID)
	if err != nil {
		return nil, err
	}

	markets, err := g.marketStore.GetByRun(ctx, run.RunID)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: g.now(),
		RunID:       run.RunID,
		RunAt:       run.CreatedAt,
		Params: RunParams{
			WindowSeconds:  run.WindowSeconds,
			MinLeaderCount: run.MinLeaderCount,
			TopN:           run.TopN,
		},
		DataSummary:    buildDataSummary(run, markets),
		Leaderboard:    buildLeaderboard(summaries),
		MatchedMarkets: buildMarketRows(markets),
	}, nil
}

func buildDataSummary(run *domain.AnalysisRun, markets []*domain.MatchedMarket) DataSummary {
	summary := DataSummary{
		TotalTraders:   run.TraderCount,
		TotalTrades:    run.TradeCount,
		MatchedMarkets: run.MatchedMarketCount,
		RankedTraders:  run.RankedCount,
	}

	for _, m := range markets {
		for _, t := range m.FirstTouches {
			if summary.DateRangeStart == 0 || t.FirstTimestamp < summary.DateRangeStart {
				summary.DateRangeStart = t.FirstTimestamp
			}
			if t.FirstTimestamp > summary.DateRangeEnd {
				summary.DateRangeEnd = t.FirstTimestamp
			}
		}
	}

	return summary
}

func buildLeaderboard(summaries []*domain.TraderLeadershipSummary) []LeaderboardRow {
	rows := make([]LeaderboardRow, len(summaries))
	for i, s := range summaries {
		rows[i] = LeaderboardRow{
			Rank:             i + 1,
			TraderAddress:    s.TraderAddress,
			TotalTrades:      s.TotalTrades,
			MatchedMarkets:   s.MatchedMarketCount,
			TimesLeader:      s.TimesLeader,
			TimesInTopN:      s.TimesInTopN,
			AvgLeadSeconds:   s.AvgLeadSeconds,
			AvgFollowSeconds: s.AvgFollowSeconds,
			MatchedVolumeUSD: s.MatchedVolumeUSD,
		}
	}
	return rows
}

func buildMarketRows(markets []*domain.MatchedMarket) []MatchedMarketRow {
	rows := make([]MatchedMarketRow, len(markets))
	for i, m := range markets {
		row := MatchedMarketRow{
			MarketID:          m.MarketID,
			Title:             m.Title,
			Participants:      len(m.FirstTouches),
			EarliestTimestamp: m.EarliestTimestamp,
			GapCount:          len(m.Gaps),
		}
		if len(m.FirstTouches) > 0 {
			row.FirstArrival = m.FirstTouches[0].TraderAddress
		}
		for j, g := range m.Gaps {
			if j == 0 || g.DeltaSeconds < row.MinDeltaSeconds {
				row.MinDeltaSeconds = g.DeltaSeconds
			}
			if g.DeltaSeconds > row.MaxDeltaSeconds {
				row.MaxDeltaSeconds = g.DeltaSeconds
			}
		}
		rows[i] = row
	}
	return rows
}
