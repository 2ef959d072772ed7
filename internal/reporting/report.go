package reporting

import "time"

// Report represents a rendered leadership analysis.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	RunAt       int64 // Unix ms

	// Parameters the run was produced with
	Params RunParams

	// Data Summary
	DataSummary DataSummary

	// Leaderboard (ranked traders in stored order)
	Leaderboard []LeaderboardRow

	// Matched Markets (most recent activity first, as stored)
	MatchedMarkets []MatchedMarketRow
}

// RunParams echoes the analysis parameters.
type RunParams struct {
	WindowSeconds  int64
	MinLeaderCount int
	TopN           int
}

// DataSummary contains data description.
type DataSummary struct {
	TotalTraders   int
	TotalTrades    int
	MatchedMarkets int
	RankedTraders  int
	DateRangeStart int64 // Unix sec, earliest first touch across markets
	DateRangeEnd   int64 // Unix sec, latest first touch across markets
}

// LeaderboardRow represents one ranked trader.
type LeaderboardRow struct {
	Rank             int // 1-indexed
	TraderAddress    string
	TotalTrades      int
	MatchedMarkets   int
	TimesLeader      int
	TimesInTopN      int
	AvgLeadSeconds   float64
	AvgFollowSeconds float64
	MatchedVolumeUSD float64
}

// MatchedMarketRow represents one matched market.
type MatchedMarketRow struct {
	MarketID          string
	Title             string
	Participants      int
	FirstArrival      string // address of the earliest participant
	EarliestTimestamp int64  // Unix sec
	GapCount          int
	MinDeltaSeconds   int64
	MaxDeltaSeconds   int64
}
