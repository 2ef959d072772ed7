package domain

import "sort"

// TraderHistory owns the ordered trade sequence for one address.
// Trades are sorted ascending by timestamp at construction and not
// mutated afterwards; analysis stages rely on that ordering.
type TraderHistory struct {
	Address string
	Trades  []*Trade
}

// NewTraderHistory builds a history from an unordered trade slice.
// Trades are copied and sorted by timestamp ascending with trade ID as
// a deterministic tie-break.
func NewTraderHistory(address string, trades []*Trade) *TraderHistory {
	sorted := make([]*Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp != sorted[j].Timestamp {
			return sorted[i].Timestamp < sorted[j].Timestamp
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &TraderHistory{Address: address, Trades: sorted}
}

// TotalTrades returns the number of trades in the history.
func (h *TraderHistory) TotalTrades() int {
	return len(h.Trades)
}
