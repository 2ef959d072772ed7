package domain

// TraderLeadershipSummary is the per-trader result of folding over all
// matched markets. Derived data: recomputed fully from the matched set
// and the trader's history on every run.
type TraderLeadershipSummary struct {
	TraderAddress      string
	TotalTrades        int     // all trades in the fetched history
	MatchedMarketCount int     // matched markets the trader participates in
	TimesLeader        int     // pair gaps where this trader leads
	TimesInTopN        int     // matched markets where arrival rank <= top N
	AvgLeadSeconds     float64 // running mean of lead gaps, 0 when none
	AvgFollowSeconds   float64 // running mean of follow gaps, 0 when none
	MatchedVolumeUSD   float64 // cumulative USD volume across matched markets
}
