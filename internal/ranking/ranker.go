// Package ranking produces the final total order over trader
// leadership summaries.
package ranking

import (
	"sort"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

// DefaultMinLeaderCount is the qualification threshold when none is
// configured.
const DefaultMinLeaderCount = 2

// Rank filters and orders summaries. A trader qualifies when
// times_leader >= minLeaderCount, or via the looser top-N signal when
// times_in_top_n >= 2*minLeaderCount. The sort is stable and
// multi-key, descending: times_leader, then times_in_top_n, then
// matched USD volume; full ties keep input order. The result is always
// a non-nil slice so callers can iterate unconditionally.
func Rank(summaries []*domain.TraderLeadershipSummary, minLeaderCount int) []*domain.TraderLeadershipSummary {
	if minLeaderCount < 1 {
		minLeaderCount = DefaultMinLeaderCount
	}

	ranked := make([]*domain.TraderLeadershipSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.TimesLeader >= minLeaderCount || s.TimesInTopN >= 2*minLeaderCount {
			ranked = append(ranked, s)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TimesLeader != b.TimesLeader {
			return a.TimesLeader > b.TimesLeader
		}
		if a.TimesInTopN != b.TimesInTopN {
			return a.TimesInTopN > b.TimesInTopN
		}
		return a.MatchedVolumeUSD > b.MatchedVolumeUSD
	})

	return ranked
}
