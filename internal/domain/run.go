package domain

// AnalysisRun records one batch analysis execution and the parameters
// it ran with, so stored summaries and matched markets can be tied back
// to their inputs.
type AnalysisRun struct {
	RunID              string // UUID
	CreatedAt          int64  // Unix timestamp in milliseconds
	TraderCount        int
	TradeCount         int
	MatchedMarketCount int
	RankedCount        int
	WindowSeconds      int64
	MinLeaderCount     int
	TopN               int
}
