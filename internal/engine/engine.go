// Package engine runs the full leadership analysis over a batch of
// fetched trade histories: group, match, aggregate, rank. The run is
// synchronous and deterministic; given well-formed trades there are no
// error paths, and empty inputs produce empty (never nil) outputs.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/aggregate"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/grouping"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/matching"
	"github.com/pittdog/polymarket-copy-trading-bot/internal/ranking"
)

// Params configures one analysis run.
type Params struct {
	WindowSeconds   int64 // max first-touch gap for a meaningful pair
	MinParticipants int   // markets need at least this many traders
	MinLeaderCount  int   // ranker qualification threshold
	TopN            int   // arrival rank counted as the looser signal
}

func (p Params) withDefaults() Params {
	if p.WindowSeconds <= 0 {
		p.WindowSeconds = matching.DefaultWindowSeconds
	}
	if p.MinParticipants < 2 {
		p.MinParticipants = matching.DefaultMinParticipants
	}
	if p.MinLeaderCount < 1 {
		p.MinLeaderCount = ranking.DefaultMinLeaderCount
	}
	if p.TopN < 1 {
		p.TopN = aggregate.DefaultTopN
	}
	return p
}

// Result is the fully-materialized output of one run: plain data, no
// behavior, ready for reporting and persistence.
type Result struct {
	Run            domain.AnalysisRun
	Ranked         []*domain.TraderLeadershipSummary
	Summaries      []*domain.TraderLeadershipSummary // every analyzed trader, address order
	MatchedMarkets []*domain.MatchedMarket
}

// BuildHistories groups a flat normalized trade slice into per-trader
// histories, sorted and frozen for analysis.
func BuildHistories(trades []*domain.Trade) []*domain.TraderHistory {
	byTrader := make(map[string][]*domain.Trade)
	var order []string
	for _, t := range trades {
		if _, ok := byTrader[t.TraderAddress]; !ok {
			order = append(order, t.TraderAddress)
		}
		byTrader[t.TraderAddress] = append(byTrader[t.TraderAddress], t)
	}

	histories := make([]*domain.TraderHistory, 0, len(order))
	for _, addr := range order {
		histories = append(histories, domain.NewTraderHistory(addr, byTrader[addr]))
	}
	return histories
}

// Analyze runs the complete pipeline over the given histories.
func Analyze(histories []*domain.TraderHistory, p Params) *Result {
	p = p.withDefaults()

	touches := grouping.AllFirstTouches(histories)

	matched := matching.Match(touches, matching.Params{
		WindowSeconds:   p.WindowSeconds,
		MinParticipants: p.MinParticipants,
	})

	summaries := aggregate.Summarize(matched, histories, p.TopN)

	ranked := ranking.Rank(summaries, p.MinLeaderCount)

	tradeCount := 0
	for _, h := range histories {
		tradeCount += h.TotalTrades()
	}

	return &Result{
		Run: domain.AnalysisRun{
			RunID:              uuid.NewString(),
			CreatedAt:          time.Now().UnixMilli(),
			TraderCount:        len(histories),
			TradeCount:         tradeCount,
			MatchedMarketCount: len(matched),
			RankedCount:        len(ranked),
			WindowSeconds:      p.WindowSeconds,
			MinLeaderCount:     p.MinLeaderCount,
			TopN:               p.TopN,
		},
		Ranked:         ranked,
		Summaries:      summaries,
		MatchedMarkets: matched,
	}
}
