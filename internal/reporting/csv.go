package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the leaderboard as CSV string.
func RenderCSV(rows []LeaderboardRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("rank,trader_address,total_trades,matched_market_count,")
	sb.WriteString("times_leader,times_in_top_n,")
	sb.WriteString("avg_lead_seconds,avg_follow_seconds,matched_volume_usd\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%d,%d,%d,%.6f,%.6f,%.6f\n",
			r.Rank,
			r.TraderAddress,
			r.TotalTrades,
			r.MatchedMarkets,
			r.TimesLeader,
			r.TimesInTopN,
			r.AvgLeadSeconds,
			r.AvgFollowSeconds,
			r.MatchedVolumeUSD,
		))
	}

	return sb.String()
}
