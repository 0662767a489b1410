package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/internal/apperror"
)

var (
	hundred = decimal.NewFromInt(100)

	// LegsPerCycle is the number of swaps in a triangular trade.
	LegsPerCycle = decimal.NewFromInt(3)

	// MinProfitMargin is added to the breakeven spread to suggest a
	// minimum profitable spread, in percentage points.
	MinProfitMargin = decimal.RequireFromString("0.1")
)

// ProfitAnalysis is the profit breakdown for one trade size and spread.
type ProfitAnalysis struct {
	Venue       string
	Amount      decimal.Decimal
	Spread      decimal.Decimal // percent
	GrossProfit decimal.Decimal
	Fees        decimal.Decimal
	GasCost     decimal.Decimal
	NetProfit   decimal.Decimal
	ROI         decimal.Decimal // percent of amount
}

// Profitable reports whether net profit is strictly positive.
func (a ProfitAnalysis) Profitable() bool {
	return a.NetProfit.IsPositive()
}

// LegFees sums amount × rate over the given per-leg fee rates.
func LegFees(amount decimal.Decimal, feeRates ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range feeRates {
		total = total.Add(amount.Mul(r))
	}
	return total
}

// NewProfitAnalysis applies gross = amount × spread / 100 and
// net = gross − fees − gas. ROI is zero for a zero amount.
func NewProfitAnalysis(amount, spread, fees, gas decimal.Decimal) ProfitAnalysis {
	gross := amount.Mul(spread).Div(hundred)
	net := gross.Sub(fees).Sub(gas)

	roi := decimal.Zero
	if !amount.IsZero() {
		roi = net.Div(amount).Mul(hundred)
	}

	return ProfitAnalysis{
		Amount:      amount,
		Spread:      spread,
		GrossProfit: gross,
		Fees:        fees,
		GasCost:     gas,
		NetProfit:   net,
		ROI:         roi,
	}
}

// Breakeven is the spread at which a trade exactly covers fees and gas.
type Breakeven struct {
	Venue               string
	Amount              decimal.Decimal
	Spread              decimal.Decimal // percent
	MinProfitableSpread decimal.Decimal // Spread + MinProfitMargin
	Fees                decimal.Decimal
	GasCost             decimal.Decimal
}

// NewBreakeven computes (fees + gas) / amount × 100. amount must be positive.
func NewBreakeven(amount, fees, gas decimal.Decimal) (Breakeven, error) {
	if !amount.IsPositive() {
		return Breakeven{}, apperror.Validationf(apperror.CodeInvalidTradeSize, "amount %s", amount)
	}
	spread := fees.Add(gas).Div(amount).Mul(hundred)
	return Breakeven{
		Amount:              amount,
		Spread:              spread,
		MinProfitableSpread: spread.Add(MinProfitMargin),
		Fees:                fees,
		GasCost:             gas,
	}, nil
}

// OptimalAmount is the trade size that yields a target net profit.
type OptimalAmount struct {
	Route        Route
	Spread       decimal.Decimal
	TargetProfit decimal.Decimal
	Amount       decimal.Decimal
	ExpectedFees decimal.Decimal // leg fees at Amount, excluding gas
	GasCost      decimal.Decimal
}

// SolveOptimalAmount solves amount × (spread/100 − 3 × feeRate) − gas = target.
// It fails with UNSOLVABLE_TARGET when fees consume the whole spread.
func SolveOptimalAmount(route Route, spread, target, feeRate, gas decimal.Decimal) (OptimalAmount, error) {
	effective := spread.Div(hundred).Sub(LegsPerCycle.Mul(feeRate))
	if !effective.IsPositive() {
		return OptimalAmount{}, apperror.Validationf(apperror.CodeUnsolvableTarget,
			"spread %s%% does not cover %s fee per leg", spread, feeRate)
	}

	amount := target.Add(gas).Div(effective)
	return OptimalAmount{
		Route:        route,
		Spread:       spread,
		TargetProfit: target,
		Amount:       amount,
		ExpectedFees: amount.Mul(feeRate).Mul(LegsPerCycle),
		GasCost:      gas,
	}, nil
}

// ProfitMatrix holds analyses for every spread × amount pair on one venue.
// Cells[i][j] is Spreads[i] at Amounts[j].
type ProfitMatrix struct {
	Venue   string
	Spreads []decimal.Decimal
	Amounts []decimal.Decimal
	Cells   [][]ProfitAnalysis
}
