package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the outcome of one execution attempt.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// ExecutionRequest asks the engine to execute one opportunity. A zero
// Amount executes the opportunity's scanned amount.
type ExecutionRequest struct {
	Opportunity Opportunity
	Amount      decimal.Decimal
	DryRun      bool
}

// LegOrder is a request to quote one leg.
type LegOrder struct {
	Leg          Leg
	AmountIn     decimal.Decimal // From units
	ExpectedOut  decimal.Decimal // To units at the modeled rate
	MinAmountOut decimal.Decimal // slippage floor
	Notional     decimal.Decimal // trade size in the reference currency, used for fees and liquidity
}

// LegFill is a venue's firm quote for one leg, valid until settlement.
type LegFill struct {
	Leg       Leg
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
	Fee       decimal.Decimal // reference currency
}

// EffectiveRate is the realized To units per From unit.
func (f LegFill) EffectiveRate() decimal.Decimal {
	if f.AmountIn.IsZero() {
		return decimal.Zero
	}
	return f.AmountOut.Div(f.AmountIn)
}

// ExecutionResult records one attempt. It is never modified after creation.
type ExecutionResult struct {
	ID            string
	OpportunityID string
	Status        Status
	Success       bool
	DryRun        bool
	Route         Route
	Venue         string
	Amount        decimal.Decimal
	Profit        decimal.Decimal // realized, or modeled for dry runs
	Fees          decimal.Decimal
	GasCost       decimal.Decimal
	Slippage      decimal.Decimal // percent
	ErrorCode     string
	Error         string
	ExecutedAt    time.Time
}

// BatchResult collects the results of a ranked batch, in execution order.
type BatchResult struct {
	Results     []ExecutionResult
	TotalProfit decimal.Decimal // sum over successful results
	Succeeded   int
	Failed      int
}

// Add appends r and updates the totals.
func (b *BatchResult) Add(r ExecutionResult) {
	b.Results = append(b.Results, r)
	if r.Success {
		b.Succeeded++
		b.TotalProfit = b.TotalProfit.Add(r.Profit)
	} else {
		b.Failed++
	}
}

// PerformanceStats aggregates an engine's history.
type PerformanceStats struct {
	Total       int
	Successful  int
	Failed      int
	Simulated   int
	SuccessRate decimal.Decimal // percent, zero when Total is zero
	AvgProfit   decimal.Decimal
	AvgFees     decimal.Decimal
	AvgSlippage decimal.Decimal
}
