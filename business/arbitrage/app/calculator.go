// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	feesDomain "github.com/fd1az/triarb/business/fees/domain"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apperror"
)

// DefaultAnchors are the preferred route start tokens, in priority order.
var DefaultAnchors = []string{"USDC", "USDT", "SOL"}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ProfitCalculator prices cycles and trade sizes against a fee schedule.
type ProfitCalculator struct {
	schedule *feesDomain.Schedule
	anchors  []string
	now      func() time.Time
}

// NewProfitCalculator creates a calculator. Nil anchors use DefaultAnchors.
func NewProfitCalculator(schedule *feesDomain.Schedule, anchors []string) *ProfitCalculator {
	if len(anchors) == 0 {
		anchors = DefaultAnchors
	}
	return &ProfitCalculator{
		schedule: schedule,
		anchors:  anchors,
		now:      time.Now,
	}
}

// Schedule returns the fee schedule in use.
func (c *ProfitCalculator) Schedule() *feesDomain.Schedule {
	return c.schedule
}

// PriceCycle evaluates both directions around the cycle and returns the
// better one as an opportunity, or nil when its net profit is not positive.
// amount is a reference-currency notional; the start token's snapshot price
// is recorded so execution can convert it to start-token units.
func (c *ProfitCalculator) PriceCycle(cycle domain.Cycle, snap *marketDomain.Snapshot, amount decimal.Decimal) (*domain.Opportunity, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validationf(apperror.CodeInvalidTradeSize, "amount %s", amount)
	}
	if !domain.IsClosed(cycle.Pools) {
		return nil, apperror.Validationf(apperror.CodeInvalidCycle, "pools %v", cycle.PoolIDs())
	}

	start, rest := c.orient(cycle.Tokens())
	startToken, ok := snap.Token(start)
	if !ok || !startToken.Price.IsPositive() {
		return nil, apperror.Validationf(apperror.CodePriceCalculation, "no reference price for %s", start)
	}

	forward := domain.Route{start, rest[0], rest[1], start}
	fwdLegs, fwdProduct, err := c.legs(cycle, snap, forward)
	if err != nil {
		return nil, err
	}
	reverse := domain.Route{start, rest[1], rest[0], start}
	revLegs, revProduct, err := c.legs(cycle, snap, reverse)
	if err != nil {
		return nil, err
	}

	route, legs, product, dir := forward, fwdLegs, fwdProduct, domain.DirectionForward
	if revProduct.GreaterThan(fwdProduct) {
		route, legs, product, dir = reverse, revLegs, revProduct, domain.DirectionReverse
	}

	spread := product.Sub(one).Mul(hundred)
	gas, err := c.gasFor(legs)
	if err != nil {
		return nil, err
	}
	opp := domain.Opportunity{
		Route:      route,
		Direction:  dir,
		Venue:      cycle.Venue,
		Pools:      []string{legs[0].PoolID, legs[1].PoolID, legs[2].PoolID},
		Legs:       legs,
		Spread:     spread,
		Amount:     amount,
		StartPrice: startToken.Price,
		GasCost:    gas,
	}
	analysis := opp.At(amount)
	if !analysis.Profitable() {
		return nil, nil
	}

	opp.ID = uuid.NewString()
	opp.GrossProfit = analysis.GrossProfit
	opp.Fees = analysis.Fees
	opp.NetProfit = analysis.NetProfit
	opp.ROI = analysis.ROI
	opp.DiscoveredAt = c.now()
	return &opp, nil
}

// orient picks the route start: the first anchor present, else the
// smallest symbol. tokens must be sorted.
func (c *ProfitCalculator) orient(tokens []string) (string, []string) {
	start := tokens[0]
	for _, a := range c.anchors {
		if contains(tokens, a) {
			start = a
			break
		}
	}
	rest := make([]string, 0, 2)
	for _, t := range tokens {
		if t != start {
			rest = append(rest, t)
		}
	}
	return start, rest
}

func (c *ProfitCalculator) legs(cycle domain.Cycle, snap *marketDomain.Snapshot, route domain.Route) ([3]domain.Leg, decimal.Decimal, error) {
	var legs [3]domain.Leg
	product := one
	for i := 0; i < 3; i++ {
		from, to := route[i], route[i+1]
		pool, ok := cycle.PoolFor(from, to)
		if !ok {
			return legs, decimal.Zero, apperror.Validationf(apperror.CodeInvalidCycle, "no pool for %s-%s", from, to)
		}
		rate, err := snap.Rate(pool, from)
		if err != nil {
			return legs, decimal.Zero, err
		}
		fees, err := c.schedule.Lookup(pool.Venue)
		if err != nil {
			return legs, decimal.Zero, err
		}
		legs[i] = domain.Leg{
			PoolID:  pool.ID,
			Venue:   pool.Venue,
			From:    from,
			To:      to,
			Rate:    rate,
			FeeRate: fees.FeeRate,
		}
		product = product.Mul(rate)
	}
	return legs, product, nil
}

// gasFor charges each distinct venue's gas once.
func (c *ProfitCalculator) gasFor(legs [3]domain.Leg) (decimal.Decimal, error) {
	gas := decimal.Zero
	charged := make(map[string]bool, 3)
	for _, l := range legs {
		if charged[l.Venue] {
			continue
		}
		charged[l.Venue] = true
		fees, err := c.schedule.Lookup(l.Venue)
		if err != nil {
			return decimal.Zero, err
		}
		gas = gas.Add(fees.GasCost)
	}
	return gas, nil
}

// Analyze returns the full profit breakdown for a single-venue trade,
// including unprofitable ones.
func (c *ProfitCalculator) Analyze(amount, spread decimal.Decimal, venue string) (domain.ProfitAnalysis, error) {
	if !amount.IsPositive() {
		return domain.ProfitAnalysis{}, apperror.Validationf(apperror.CodeInvalidTradeSize, "amount %s", amount)
	}
	fees, err := c.schedule.Lookup(venue)
	if err != nil {
		return domain.ProfitAnalysis{}, err
	}
	a := domain.NewProfitAnalysis(amount, spread, threeLegFees(amount, fees.FeeRate), fees.GasCost)
	a.Venue = venue
	return a, nil
}

// BreakevenSpread returns the spread at which amount on venue nets zero.
func (c *ProfitCalculator) BreakevenSpread(amount decimal.Decimal, venue string) (domain.Breakeven, error) {
	if !amount.IsPositive() {
		return domain.Breakeven{}, apperror.Validationf(apperror.CodeInvalidTradeSize, "amount %s", amount)
	}
	fees, err := c.schedule.Lookup(venue)
	if err != nil {
		return domain.Breakeven{}, err
	}
	be, err := domain.NewBreakeven(amount, threeLegFees(amount, fees.FeeRate), fees.GasCost)
	if err != nil {
		return domain.Breakeven{}, err
	}
	be.Venue = venue
	return be, nil
}

// OptimalAmount returns the trade size on venue that nets target at spread.
func (c *ProfitCalculator) OptimalAmount(route domain.Route, spread, target decimal.Decimal, venue string) (domain.OptimalAmount, error) {
	if target.IsNegative() {
		return domain.OptimalAmount{}, apperror.Validationf(apperror.CodeInvalidInput, "target profit %s", target)
	}
	fees, err := c.schedule.Lookup(venue)
	if err != nil {
		return domain.OptimalAmount{}, err
	}
	return domain.SolveOptimalAmount(route, spread, target, fees.FeeRate, fees.GasCost)
}

// ProfitMatrix analyzes every spread at every amount on venue.
func (c *ProfitCalculator) ProfitMatrix(spreads, amounts []decimal.Decimal, venue string) (domain.ProfitMatrix, error) {
	m := domain.ProfitMatrix{
		Venue:   venue,
		Spreads: spreads,
		Amounts: amounts,
		Cells:   make([][]domain.ProfitAnalysis, len(spreads)),
	}
	for i, s := range spreads {
		m.Cells[i] = make([]domain.ProfitAnalysis, len(amounts))
		for j, a := range amounts {
			cell, err := c.Analyze(a, s, venue)
			if err != nil {
				return domain.ProfitMatrix{}, err
			}
			m.Cells[i][j] = cell
		}
	}
	return m, nil
}

func threeLegFees(amount, feeRate decimal.Decimal) decimal.Decimal {
	return domain.LegFees(amount, feeRate, feeRate, feeRate)
}

func contains(sorted []string, s string) bool {
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}
