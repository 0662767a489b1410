package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Leg is one swap of a route.
type Leg struct {
	PoolID  string
	Venue   string
	From    string
	To      string
	Rate    decimal.Decimal // To units per From unit, before fees
	FeeRate decimal.Decimal
}

// Opportunity is a priced, profitable triangular route. Values are only
// built for routes whose net profit is positive.
type Opportunity struct {
	ID           string
	Route        Route
	Direction    Direction
	Venue        string // pool venue, or FederatedVenue
	Pools        []string
	Legs         [3]Leg
	Spread       decimal.Decimal // percent
	Amount       decimal.Decimal // reference-currency notional
	StartPrice   decimal.Decimal // reference price of Route[0] at discovery
	GrossProfit  decimal.Decimal
	Fees         decimal.Decimal
	GasCost      decimal.Decimal
	NetProfit    decimal.Decimal
	ROI          decimal.Decimal // percent
	DiscoveredAt time.Time
}

// IsProfitable returns true if this opportunity has positive net profit.
func (o Opportunity) IsProfitable() bool {
	return o.NetProfit.IsPositive()
}

// FeeRates returns the per-leg fee rates.
func (o Opportunity) FeeRates() []decimal.Decimal {
	return []decimal.Decimal{o.Legs[0].FeeRate, o.Legs[1].FeeRate, o.Legs[2].FeeRate}
}

// At reprices the opportunity's recorded spread for another trade size.
func (o Opportunity) At(amount decimal.Decimal) ProfitAnalysis {
	a := NewProfitAnalysis(amount, o.Spread, LegFees(amount, o.FeeRates()...), o.GasCost)
	a.Venue = o.Venue
	return a
}
