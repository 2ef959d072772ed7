// Package matching computes pairwise first-touch leadership across
// markets shared by multiple traders.
package matching

import (
	"sort"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

// Default parameter values.
const (
	DefaultWindowSeconds   = 3600
	DefaultMinParticipants = 2
)

// Params bounds which pairs count as meaningful.
type Params struct {
	// WindowSeconds is the maximum first-touch gap, in seconds, for a
	// pair to be considered reacting to each other rather than to
	// unrelated events.
	WindowSeconds int64

	// MinParticipants is the minimum number of distinct traders a
	// market needs before pairing. Below 2 there is nothing to compare.
	MinParticipants int
}

func (p Params) withDefaults() Params {
	if p.WindowSeconds <= 0 {
		p.WindowSeconds = DefaultWindowSeconds
	}
	if p.MinParticipants < 2 {
		p.MinParticipants = DefaultMinParticipants
	}
	return p
}

// Match inverts the per-trader first-touch maps into per-market
// participant sets and emits a MatchedMarket for every market where at
// least one pair of first touches falls within the window.
//
// Pair participants are ordered by arrival; the earlier trader leads.
// Exact-timestamp ties go to the lexicographically smaller address,
// an explicit policy so results never depend on map iteration order.
// Output is ordered by earliest participant timestamp, most recent
// market first, with market id as the final tie-break.
func Match(touchesByTrader map[string]map[string]*domain.MarketFirstTouch, p Params) []*domain.MatchedMarket {
	p = p.withDefaults()

	byMarket := invert(touchesByTrader)

	matched := make([]*domain.MatchedMarket, 0, len(byMarket))
	for marketID, touches := range byMarket {
		if len(touches) < p.MinParticipants {
			continue
		}
		if m := matchMarket(marketID, touches, p.WindowSeconds); m != nil {
			matched = append(matched, m)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].EarliestTimestamp != matched[j].EarliestTimestamp {
			return matched[i].EarliestTimestamp > matched[j].EarliestTimestamp
		}
		return matched[i].MarketID < matched[j].MarketID
	})

	return matched
}

// invert regroups trader->market->touch into market->touches.
func invert(touchesByTrader map[string]map[string]*domain.MarketFirstTouch) map[string][]*domain.MarketFirstTouch {
	byMarket := make(map[string][]*domain.MarketFirstTouch)
	for _, markets := range touchesByTrader {
		for marketID, touch := range markets {
			byMarket[marketID] = append(byMarket[marketID], touch)
		}
	}
	return byMarket
}

// matchMarket builds the MatchedMarket for one qualifying market, or
// returns nil when no pair survives the window filter.
func matchMarket(marketID string, touches []*domain.MarketFirstTouch, windowSeconds int64) *domain.MatchedMarket {
	// Arrival order: first timestamp ascending, address as tie-break.
	arrivals := make([]*domain.MarketFirstTouch, len(touches))
	copy(arrivals, touches)
	sort.Slice(arrivals, func(i, j int) bool {
		if arrivals[i].FirstTimestamp != arrivals[j].FirstTimestamp {
			return arrivals[i].FirstTimestamp < arrivals[j].FirstTimestamp
		}
		return arrivals[i].TraderAddress < arrivals[j].TraderAddress
	})

	// O(k^2) over participants; k is bounded by the number of traders
	// under comparison, typically a few dozen.
	var gaps []domain.PairGap
	for i := 0; i < len(arrivals); i++ {
		for j := i + 1; j < len(arrivals); j++ {
			a, b := arrivals[i], arrivals[j]
			delta := b.FirstTimestamp - a.FirstTimestamp
			if delta > windowSeconds {
				continue
			}
			leader := a.TraderAddress
			if delta == 0 && b.TraderAddress < a.TraderAddress {
				leader = b.TraderAddress
			}
			gaps = append(gaps, domain.PairGap{
				TraderA:      a.TraderAddress,
				TraderB:      b.TraderAddress,
				DeltaSeconds: delta,
				Leader:       leader,
			})
		}
	}

	if len(gaps) == 0 {
		return nil
	}

	// Title stays empty here; labeling is the reporting layer's job
	// via the market source.
	return &domain.MatchedMarket{
		MarketID:          marketID,
		FirstTouches:      arrivals,
		Gaps:              gaps,
		EarliestTimestamp: arrivals[0].FirstTimestamp,
	}
}
