package domain

// Trade is a single normalized fill on a Polymarket market.
// Numeric fields are coerced at the normalization boundary; addresses
// are lower-cased so identity comparison is byte equality.
type Trade struct {
	ID            string  // transaction hash or provider record id
	Timestamp     int64   // Unix timestamp in seconds
	TraderAddress string  // proxy wallet address, lower-cased
	MarketID      string  // condition id
	Side          string  // "BUY" | "SELL"
	Price         float64 // execution price (0..1 for outcome shares)
	Size          float64 // outcome shares
	USDValue      float64 // usdcSize when the provider reports it, else price*size
	Title         string  // market question, labeling only
	Slug          string  // market slug, labeling only
}

// Trade side constants
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// RawRecord is a loosely-typed trade or activity payload as decoded from
// the data-api. Field types vary across endpoints (numbers arrive both as
// JSON numbers and as strings), so coercion happens in normalize.
type RawRecord map[string]any
