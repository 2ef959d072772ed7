package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trade Leadership Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Run Time (ms): %d\n\n", r.RunID, r.RunAt))
	sb.WriteString(fmt.Sprintf("Window: %ds | Min Leader Count: %d | Top N: %d\n\n",
		r.Params.WindowSeconds, r.Params.MinLeaderCount, r.Params.TopN))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Traders | %d |\n", r.DataSummary.TotalTraders))
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.DataSummary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Matched Markets | %d |\n", r.DataSummary.MatchedMarkets))
	sb.WriteString(fmt.Sprintf("| Ranked Traders | %d |\n", r.DataSummary.RankedTraders))
	sb.WriteString(fmt.Sprintf("| Date Range Start (s) | %d |\n", r.DataSummary.DateRangeStart))
	sb.WriteString(fmt.Sprintf("| Date Range End (s) | %d |\n", r.DataSummary.DateRangeEnd))
	sb.WriteString("\n")

	// Leaderboard
	sb.WriteString("## Leaderboard\n\n")
	if len(r.Leaderboard) > 0 {
		sb.WriteString("| Rank | Trader | Trades | Markets | Led | TopN | AvgLead(s) | AvgFollow(s) | Volume(USD) |\n")
		sb.WriteString("|------|--------|--------|---------|-----|------|-----------|--------------|-------------|\n")
		for _, row := range r.Leaderboard {
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %d | %d | %d | %.2f | %.2f | %.2f |\n",
				row.Rank, row.TraderAddress,
				row.TotalTrades, row.MatchedMarkets,
				row.TimesLeader, row.TimesInTopN,
				row.AvgLeadSeconds, row.AvgFollowSeconds, row.MatchedVolumeUSD))
		}
	} else {
		sb.WriteString("No traders qualified for ranking.\n")
	}
	sb.WriteString("\n")

	// Matched Markets
	sb.WriteString("## Matched Markets\n\n")
	if len(r.MatchedMarkets) > 0 {
		sb.WriteString("| Market | Title | Participants | First Arrival | Earliest(s) | Gaps | MinDelta(s) | MaxDelta(s) |\n")
		sb.WriteString("|--------|-------|--------------|---------------|-------------|------|-------------|-------------|\n")
		for _, m := range r.MatchedMarkets {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %d | %d | %d | %d |\n",
				m.MarketID, escapePipes(m.Title), m.Participants, m.FirstArrival,
				m.EarliestTimestamp, m.GapCount, m.MinDeltaSeconds, m.MaxDeltaSeconds))
		}
	} else {
		sb.WriteString("No matched markets found.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// escapePipes keeps free-text market titles from breaking table cells.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
