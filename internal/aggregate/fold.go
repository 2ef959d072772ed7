// Package aggregate folds matched markets into per-trader leadership
// summaries. The fold is explicit state plus an Add step, so tests can
// feed it a literal list of matched markets and nothing else.
package aggregate

import (
	"sort"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

// DefaultTopN is the arrival-rank threshold for the looser leadership
// signal when none is configured.
const DefaultTopN = 3

// Fold accumulates per-trader statistics across matched markets.
type Fold struct {
	topN   int
	states map[string]*traderState
}

type traderState struct {
	matchedMarkets int
	timesLeader    int
	timesInTopN    int
	matchedVolume  float64
	lead           RunningMean
	follow         RunningMean
}

// NewFold creates an empty fold. topN bounds the arrival rank counted
// as "top-N"; values below 1 fall back to DefaultTopN.
func NewFold(topN int) *Fold {
	if topN < 1 {
		topN = DefaultTopN
	}
	return &Fold{
		topN:   topN,
		states: make(map[string]*traderState),
	}
}

// Add folds one matched market into the running statistics. The market
// is only read, never mutated.
func (f *Fold) Add(m *domain.MatchedMarket) {
	for i, t := range m.FirstTouches {
		s := f.state(t.TraderAddress)
		s.matchedMarkets++
		s.matchedVolume += t.CumulativeUSDVolume
		if i+1 <= f.topN {
			s.timesInTopN++
		}
	}

	for _, gap := range m.Gaps {
		delta := gap.DeltaSeconds
		if delta < 0 {
			delta = -delta
		}
		sample := float64(delta)

		for _, addr := range [2]string{gap.TraderA, gap.TraderB} {
			s := f.state(addr)
			if gap.Leader == addr {
				s.timesLeader++
				s.lead.Add(sample)
			} else {
				s.follow.Add(sample)
			}
		}
	}
}

func (f *Fold) state(address string) *traderState {
	s, ok := f.states[address]
	if !ok {
		s = &traderState{}
		f.states[address] = s
	}
	return s
}

// Summaries materializes the folded state into summaries, ordered by
// trader address for deterministic output. Histories supply the total
// trade counts; traders present only in histories (no matched markets)
// still get a zero-valued summary so downstream consumers can iterate
// over every analyzed trader unconditionally.
func (f *Fold) Summaries(histories []*domain.TraderHistory) []*domain.TraderLeadershipSummary {
	totals := make(map[string]int, len(histories))
	for _, h := range histories {
		totals[h.Address] = h.TotalTrades()
	}

	addresses := make([]string, 0, len(f.states))
	seen := make(map[string]struct{}, len(f.states))
	for addr := range f.states {
		addresses = append(addresses, addr)
		seen[addr] = struct{}{}
	}
	for addr := range totals {
		if _, ok := seen[addr]; !ok {
			addresses = append(addresses, addr)
		}
	}
	sort.Strings(addresses)

	summaries := make([]*domain.TraderLeadershipSummary, 0, len(addresses))
	for _, addr := range addresses {
		summary := &domain.TraderLeadershipSummary{
			TraderAddress: addr,
			TotalTrades:   totals[addr],
		}
		if s, ok := f.states[addr]; ok {
			summary.MatchedMarketCount = s.matchedMarkets
			summary.TimesLeader = s.timesLeader
			summary.TimesInTopN = s.timesInTopN
			summary.MatchedVolumeUSD = s.matchedVolume
			summary.AvgLeadSeconds = s.lead.Mean()
			summary.AvgFollowSeconds = s.follow.Mean()
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Summarize is the one-shot form: fold every matched market, then
// materialize against the histories.
func Summarize(matched []*domain.MatchedMarket, histories []*domain.TraderHistory, topN int) []*domain.TraderLeadershipSummary {
	fold := NewFold(topN)
	for _, m := range matched {
		fold.Add(m)
	}
	return fold.Summaries(histories)
}
