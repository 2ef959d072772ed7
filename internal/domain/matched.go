package domain

// PairGap is the timing relationship between two traders' first touches
// in a shared market. TraderA is the participant that arrived first;
// DeltaSeconds = b.first - a.first and is therefore never negative.
// Leader is the trader with the earlier first touch; when both share
// the exact timestamp the lexicographically smaller address leads.
type PairGap struct {
	TraderA      string
	TraderB      string
	DeltaSeconds int64
	Leader       string
}

// MatchedMarket is a market touched by at least two traders whose first
// touches fall within the configured window of each other. Immutable
// after construction by the matcher.
type MatchedMarket struct {
	MarketID string
	Title    string // labeling only, taken from the earliest touch

	// FirstTouches holds every participant's first touch ordered by
	// arrival (first timestamp ascending, address as tie-break). The
	// 1-indexed position in this slice is the participant's arrival
	// rank used for the ranker's top-N signal.
	FirstTouches []*MarketFirstTouch

	// Gaps lists the pairwise timing records that survived the window
	// filter.
	Gaps []PairGap

	// EarliestTimestamp is the smallest first-touch timestamp among
	// participants; the matcher orders its output by this, descending.
	EarliestTimestamp int64
}

// ArrivalRank returns the 1-indexed arrival position of the given
// trader, or 0 if the trader did not participate in the market.
func (m *MatchedMarket) ArrivalRank(address string) int {
	for i, t := range m.FirstTouches {
		if t.TraderAddress == address {
			return i + 1
		}
	}
	return 0
}
