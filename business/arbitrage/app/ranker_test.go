package app

import (
	"testing"

	"github.com/fd1az/triarb/business/arbitrage/domain"
)

func opp(id, route, venue, spread, net string) domain.Opportunity {
	return domain.Opportunity{
		ID:        id,
		Route:     domain.Route{route, "X", "Y", route},
		Venue:     venue,
		Spread:    d(spread),
		NetProfit: d(net),
	}
}

func TestRank(t *testing.T) {
	in := []domain.Opportunity{
		opp("low-spread", "USDC", "orca", "0.2", "5"),
		opp("b-route", "USDT", "raydium", "0.8", "10"),
		opp("best", "USDC", "raydium", "1.2", "3"),
		opp("a-route", "SOL", "raydium", "0.8", "10"),
		opp("richer", "USDC", "jupiter", "0.8", "12"),
		opp("loss", "USDC", "orca", "2", "-1"),
		opp("zero", "USDC", "orca", "2", "0"),
		opp("at-threshold", "USDC", "orca", "0.3", "1"),
	}

	got := Rank(in, d("0.3"))

	want := []string{"best", "richer", "a-route", "b-route", "at-threshold"}
	if len(got) != len(want) {
		t.Fatalf("got %d opportunities, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("rank %d = %s, want %s", i, got[i].ID, id)
		}
	}
	for _, o := range got {
		if !o.NetProfit.IsPositive() {
			t.Errorf("%s ranked with non-positive net %s", o.ID, o.NetProfit)
		}
	}
	if in[0].ID != "low-spread" || in[2].ID != "best" {
		t.Error("Rank must not reorder its input")
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, d("0")); len(got) != 0 {
		t.Errorf("Rank(nil) = %v", got)
	}
}
