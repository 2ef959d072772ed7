package aggregate

import (
	"testing"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

func market(id string, touches []*domain.MarketFirstTouch, gaps []domain.PairGap) *domain.MatchedMarket {
	return &domain.MatchedMarket{
		MarketID:          id,
		FirstTouches:      touches,
		Gaps:              gaps,
		EarliestTimestamp: touches[0].FirstTimestamp,
	}
}

func TestFold_LeadAndFollowAverages(t *testing.T) {
	// 0xaaa leads in m1 and m2, follows in m3 twice with gaps 30 and 90.
	m1 := market("m1",
		[]*domain.MarketFirstTouch{
			{TraderAddress: "0xaaa", MarketID: "m1", FirstTimestamp: 100},
			{TraderAddress: "0xbbb", MarketID: "m1", FirstTimestamp: 150},
		},
		[]domain.PairGap{{TraderA: "0xaaa", TraderB: "0xbbb", DeltaSeconds: 50, Leader: "0xaaa"}},
	)
	m2 := market("m2",
		[]*domain.MarketFirstTouch{
			{TraderAddress: "0xaaa", MarketID: "m2", FirstTimestamp: 200},
			{TraderAddress: "0xccc", MarketID: "m2", FirstTimestamp: 300},
		},
		[]domain.PairGap{{TraderA: "0xaaa", TraderB: "0xccc", DeltaSeconds: 100, Leader: "0xaaa"}},
	)
	m3 := market("m3",
		[]*domain.MarketFirstTouch{
			{TraderAddress: "0xbbb", MarketID: "m3", FirstTimestamp: 400},
			{TraderAddress: "0xccc", MarketID: "m3", FirstTimestamp: 430},
			{TraderAddress: "0xaaa", MarketID: "m3", FirstTimestamp: 490},
		},
		[]domain.PairGap{
			{TraderA: "0xbbb", TraderB: "0xccc", DeltaSeconds: 30, Leader: "0xbbb"},
			{TraderA: "0xbbb", TraderB: "0xaaa", DeltaSeconds: 90, Leader: "0xbbb"},
			{TraderA: "0xccc", TraderB: "0xaaa", DeltaSeconds: 30, Leader: "0xccc"},
		},
	)

	histories := []*domain.TraderHistory{
		domain.NewTraderHistory("0xaaa", make([]*domain.Trade, 5)),
	}

	summaries := Summarize([]*domain.MatchedMarket{m1, m2, m3}, histories, 2)

	var aaa *domain.TraderLeadershipSummary
	for _, s := range summaries {
		if s.TraderAddress == "0xaaa" {
			aaa = s
		}
	}
	if aaa == nil {
		t.Fatal("missing summary for 0xaaa")
	}

	if aaa.TimesLeader != 2 {
		t.Errorf("expected times_leader 2, got %d", aaa.TimesLeader)
	}
	// Follow gaps for 0xaaa: 90 (vs 0xbbb) and 30 (vs 0xccc) -> mean 60.
	if aaa.AvgFollowSeconds != 60 {
		t.Errorf("expected avg follow 60, got %v", aaa.AvgFollowSeconds)
	}
	// Lead gaps: 50 and 100 -> mean 75.
	if aaa.AvgLeadSeconds != 75 {
		t.Errorf("expected avg lead 75, got %v", aaa.AvgLeadSeconds)
	}
	if aaa.MatchedMarketCount != 3 {
		t.Errorf("expected 3 matched markets, got %d", aaa.MatchedMarketCount)
	}
	if aaa.TotalTrades != 5 {
		t.Errorf("expected total trades from history, got %d", aaa.TotalTrades)
	}
}

func TestFold_ZeroGapCountsShortCircuit(t *testing.T) {
	// 0xbbb appears in a matched market but every one of its gaps has
	// it as leader: follow average must be 0, never NaN.
	m := market("m1",
		[]*domain.MarketFirstTouch{
			{TraderAddress: "0xbbb", MarketID: "m1", FirstTimestamp: 100},
			{TraderAddress: "0xccc", MarketID: "m1", FirstTimestamp: 160},
		},
		[]domain.PairGap{{TraderA: "0xbbb", TraderB: "0xccc", DeltaSeconds: 60, Leader: "0xbbb"}},
	)

	summaries := Summarize([]*domain.MatchedMarket{m}, nil, 0)

	for _, s := range summaries {
		if s.AvgLeadSeconds != s.AvgLeadSeconds || s.AvgFollowSeconds != s.AvgFollowSeconds {
			t.Fatalf("NaN average for %s", s.TraderAddress)
		}
	}

	if summaries[0].TraderAddress != "0xbbb" {
		t.Fatalf("expected address-ordered output, got %s first", summaries[0].TraderAddress)
	}
	if summaries[0].AvgFollowSeconds != 0 {
		t.Errorf("expected follow average 0 for pure leader, got %v", summaries[0].AvgFollowSeconds)
	}
	if summaries[1].AvgLeadSeconds != 0 {
		t.Errorf("expected lead average 0 for pure follower, got %v", summaries[1].AvgLeadSeconds)
	}
}

func TestFold_TopNCounting(t *testing.T) {
	m := market("m1",
		[]*domain.MarketFirstTouch{
			{TraderAddress: "0xaaa", MarketID: "m1", FirstTimestamp: 100},
			{TraderAddress: "0xbbb", MarketID: "m1", FirstTimestamp: 200},
			{TraderAddress: "0xccc", MarketID: "m1", FirstTimestamp: 300},
		},
		[]domain.PairGap{{TraderA: "0xaaa", TraderB: "0xbbb", DeltaSeconds: 100, Leader: "0xaaa"}},
	)

	summaries := Summarize([]*domain.MatchedMarket{m}, nil, 2)

	byAddr := make(map[string]*domain.TraderLeadershipSummary)
	for _, s := range summaries {
		byAddr[s.TraderAddress] = s
	}

	if byAddr["0xaaa"].TimesInTopN != 1 || byAddr["0xbbb"].TimesInTopN != 1 {
		t.Errorf("expected first two arrivals in top-2")
	}
	if byAddr["0xccc"].TimesInTopN != 0 {
		t.Errorf("expected third arrival outside top-2, got %d", byAddr["0xccc"].TimesInTopN)
	}
}

func TestFold_MatchedVolume(t *testing.T) {
	m1 := market("m1",
		[]*domain.MarketFirstTouch{
			{TraderAddress: "0xaaa", MarketID: "m1", FirstTimestamp: 100, CumulativeUSDVolume: 250},
			{TraderAddress: "0xbbb", MarketID: "m1", FirstTimestamp: 150, CumulativeUSDVolume: 50},
		},
		[]domain.PairGap{{TraderA: "0xaaa", TraderB: "0xbbb", DeltaSeconds: 50, Leader: "0xaaa"}},
	)
	m2 := market("m2",
		[]*domain.MarketFirstTouch{
			{TraderAddress: "0xaaa", MarketID: "m2", FirstTimestamp: 300, CumulativeUSDVolume: 100},
			{TraderAddress: "0xbbb", MarketID: "m2", FirstTimestamp: 350, CumulativeUSDVolume: 75},
		},
		[]domain.PairGap{{TraderA: "0xaaa", TraderB: "0xbbb", DeltaSeconds: 50, Leader: "0xaaa"}},
	)

	summaries := Summarize([]*domain.MatchedMarket{m1, m2}, nil, 0)
	byAddr := make(map[string]*domain.TraderLeadershipSummary)
	for _, s := range summaries {
		byAddr[s.TraderAddress] = s
	}

	if byAddr["0xaaa"].MatchedVolumeUSD != 350 {
		t.Errorf("expected matched volume 350, got %v", byAddr["0xaaa"].MatchedVolumeUSD)
	}
	if byAddr["0xbbb"].MatchedVolumeUSD != 125 {
		t.Errorf("expected matched volume 125, got %v", byAddr["0xbbb"].MatchedVolumeUSD)
	}
}

func TestFold_HistoriesWithoutMatchesGetZeroSummaries(t *testing.T) {
	histories := []*domain.TraderHistory{
		domain.NewTraderHistory("0xddd", make([]*domain.Trade, 3)),
	}

	summaries := Summarize(nil, histories, 0)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	s := summaries[0]
	if s.TraderAddress != "0xddd" || s.TotalTrades != 3 || s.MatchedMarketCount != 0 {
		t.Errorf("unexpected zero summary: %+v", s)
	}
}

func TestSummarize_EmptyInputs(t *testing.T) {
	summaries := Summarize(nil, nil, 0)
	if summaries == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(summaries) != 0 {
		t.Errorf("expected no summaries, got %d", len(summaries))
	}
}
