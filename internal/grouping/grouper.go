// Package grouping partitions a trader's history by market and derives
// the first-touch record per market.
package grouping

import "github.com/pittdog/polymarket-copy-trading-bot/internal/domain"

// FirstTouches maps each market the trader touched to its first-touch
// record. The history must be sorted ascending by timestamp; the first
// trade seen per market fixes timestamp, side and price, and every
// later trade in that market only adds to the cumulative volume and
// trade count. Out-of-order input would silently corrupt "first"
// semantics, which is why sorted input is a precondition here rather
// than an internal safety net (domain.NewTraderHistory guarantees it).
func FirstTouches(h *domain.TraderHistory) map[string]*domain.MarketFirstTouch {
	touches := make(map[string]*domain.MarketFirstTouch)
	for _, trade := range h.Trades {
		if trade.MarketID == "" {
			continue
		}
		touch, ok := touches[trade.MarketID]
		if !ok {
			touch = &domain.MarketFirstTouch{
				TraderAddress:  h.Address,
				MarketID:       trade.MarketID,
				FirstTimestamp: trade.Timestamp,
				FirstSide:      trade.Side,
				FirstPrice:     trade.Price,
			}
			touches[trade.MarketID] = touch
		}
		touch.CumulativeUSDVolume += trade.USDValue
		touch.TradeCount++
	}
	return touches
}

// AllFirstTouches computes first-touch maps for every history, keyed by
// trader address. Input for the matcher.
func AllFirstTouches(histories []*domain.TraderHistory) map[string]map[string]*domain.MarketFirstTouch {
	all := make(map[string]map[string]*domain.MarketFirstTouch, len(histories))
	for _, h := range histories {
		all[h.Address] = FirstTouches(h)
	}
	return all
}
