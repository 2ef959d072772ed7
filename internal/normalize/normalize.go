// Package normalize converts raw data-api payloads into domain trades.
// The contract is best-effort coercion, not rejection: malformed numeric
// fields become 0.0, and only records with no trader identifier at all
// are dropped (they cannot participate in comparison).
package normalize

import (
	"strconv"
	"strings"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

// Key sets tried in order. The data-api names the trader field
// differently across the /trades and /activity endpoints.
var (
	traderKeys    = []string{"proxyWallet", "user", "wallet", "maker"}
	idKeys        = []string{"transactionHash", "id", "txHash"}
	marketKeys    = []string{"conditionId", "market", "condition_id"}
	usdKeys       = []string{"usdcSize", "usdSize", "usdc_size"}
	sizeKeys      = []string{"size", "amount"}
	priceKeys     = []string{"price"}
	timestampKeys = []string{"timestamp", "time"}
)

// Records converts a batch of raw records into trades. Records without
// a trader identifier are skipped silently; everything else is coerced.
func Records(records []domain.RawRecord) []*domain.Trade {
	trades := make([]*domain.Trade, 0, len(records))
	for _, rec := range records {
		if t := Record(rec); t != nil {
			trades = append(trades, t)
		}
	}
	return trades
}

// Record converts a single raw record, or returns nil when the record
// carries no trader identifier.
func Record(rec domain.RawRecord) *domain.Trade {
	trader := firstString(rec, traderKeys)
	if trader == "" {
		return nil
	}

	price := firstFloat(rec, priceKeys)
	size := firstFloat(rec, sizeKeys)
	usd := firstFloat(rec, usdKeys)
	if usd == 0 {
		usd = price * size
	}

	return &domain.Trade{
		ID:            firstString(rec, idKeys),
		Timestamp:     int64(firstFloat(rec, timestampKeys)),
		TraderAddress: strings.ToLower(trader),
		MarketID:      firstString(rec, marketKeys),
		Side:          normalizeSide(firstString(rec, []string{"side"})),
		Price:         price,
		Size:          size,
		USDValue:      usd,
		Title:         firstString(rec, []string{"title"}),
		Slug:          firstString(rec, []string{"slug"}),
	}
}

// normalizeSide maps provider side spellings onto the domain constants.
// Unknown values pass through upper-cased; the matcher never branches
// on side so this only affects labeling.
func normalizeSide(side string) string {
	switch strings.ToUpper(side) {
	case "BUY":
		return domain.SideBuy
	case "SELL":
		return domain.SideSell
	default:
		return strings.ToUpper(side)
	}
}

// firstString returns the first non-empty string value among keys.
func firstString(rec domain.RawRecord, keys []string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// firstFloat returns the first present key coerced to float64.
func firstFloat(rec domain.RawRecord, keys []string) float64 {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return coerceFloat(v)
		}
	}
	return 0
}

// coerceFloat converts a JSON-decoded value to float64. Non-numeric
// values coerce to 0, matching the best-effort contract.
func coerceFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
