package domain

// MarketFirstTouch records a trader's earliest trade within one market
// plus the running totals for that trader in that market. The first
// trade seen fixes timestamp, side and price; later trades in the same
// market only add to the cumulative fields.
type MarketFirstTouch struct {
	TraderAddress       string
	MarketID            string
	FirstTimestamp      int64 // Unix seconds of the trader's first trade in the market
	FirstSide           string
	FirstPrice          float64
	CumulativeUSDVolume float64
	TradeCount          int
}
