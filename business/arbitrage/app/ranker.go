package app

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/arbitrage/domain"
)

// Rank keeps opportunities with spread >= minSpread and positive net profit,
// ordered by spread desc, net profit desc, then route and venue asc. The
// input slice is not modified.
func Rank(opps []domain.Opportunity, minSpread decimal.Decimal) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		if o.Spread.GreaterThanOrEqual(minSpread) && o.IsProfitable() {
			out = append(out, o)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// better reports whether a ranks ahead of b.
func better(a, b domain.Opportunity) bool {
	if c := a.Spread.Cmp(b.Spread); c != 0 {
		return c > 0
	}
	if c := a.NetProfit.Cmp(b.NetProfit); c != 0 {
		return c > 0
	}
	if ra, rb := a.Route.String(), b.Route.String(); ra != rb {
		return ra < rb
	}
	return a.Venue < b.Venue
}
