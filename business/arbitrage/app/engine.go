package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/logger"
)

const engineMeterName = "github.com/fd1az/triarb/business/arbitrage/app"

// EngineConfig holds execution settings.
type EngineConfig struct {
	// MaxSlippagePct is the per-leg tolerance below the modeled output, in percent.
	MaxSlippagePct decimal.Decimal
}

type engineMetrics struct {
	executions metric.Int64Counter
	profit     metric.Float64Histogram
	slippage   metric.Float64Histogram
}

// Engine executes opportunities and keeps the execution history and counters.
// It is safe for concurrent use; batches run sequentially.
type Engine struct {
	venue   Venue
	journal Journal
	cfg     EngineConfig
	log     logger.LoggerInterface
	metrics *engineMetrics
	now     func() time.Time

	mu                   sync.Mutex
	executionCount       int
	successfulExecutions int
	history              []domain.ExecutionResult
}

// NewEngine creates an Engine. venue is required for live execution only;
// journal may be nil.
func NewEngine(venue Venue, journal Journal, cfg EngineConfig, log logger.LoggerInterface) (*Engine, error) {
	e := &Engine{
		venue:   venue,
		journal: journal,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) initMetrics() error {
	meter := otel.Meter(engineMeterName)
	var err error

	e.metrics = &engineMetrics{}

	e.metrics.executions, err = meter.Int64Counter(
		"triarb_executions_total",
		metric.WithDescription("Execution attempts by status and mode"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return err
	}

	e.metrics.profit, err = meter.Float64Histogram(
		"triarb_realized_profit",
		metric.WithDescription("Realized profit of successful live executions"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return err
	}

	e.metrics.slippage, err = meter.Float64Histogram(
		"triarb_slippage_pct",
		metric.WithDescription("Realized slippage of successful live executions"),
		metric.WithUnit("%"),
	)
	return err
}

// Execute runs one attempt. Dry runs reprice the recorded spread; live runs
// quote all three legs and settle them as one unit. The attempt is recorded
// whatever its outcome and never retried.
func (e *Engine) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	opp := req.Opportunity
	amount := req.Amount
	if amount.IsZero() {
		amount = opp.Amount
	}

	result := domain.ExecutionResult{
		ID:            uuid.NewString(),
		OpportunityID: opp.ID,
		Status:        domain.StatusPending,
		DryRun:        req.DryRun,
		Route:         opp.Route,
		Venue:         opp.Venue,
		Amount:        amount,
		GasCost:       opp.GasCost,
		ExecutedAt:    e.now(),
	}

	var err error
	switch {
	case !amount.IsPositive():
		err = apperror.Validationf(apperror.CodeInvalidTradeSize, "amount %s", amount)
	case req.DryRun:
		a := opp.At(amount)
		result.Profit = a.NetProfit
		result.Fees = a.Fees
	default:
		err = e.executeLive(ctx, opp, amount, &result)
	}

	if err != nil {
		result.Status = domain.StatusFailed
		result.ErrorCode = string(apperror.GetCode(err))
		result.Error = err.Error()
	} else {
		result.Status = domain.StatusSucceeded
		result.Success = true
	}

	e.record(ctx, result)
	return result
}

// executeLive quotes each leg against the modeled rate, then settles all
// quotes at once. Cancellation of ctx does not interrupt an attempt in flight.
func (e *Engine) executeLive(ctx context.Context, opp domain.Opportunity, amount decimal.Decimal, result *domain.ExecutionResult) error {
	if e.venue == nil {
		return apperror.Validation(apperror.CodeVenueRejected, "no venue configured for live execution")
	}
	if !opp.StartPrice.IsPositive() {
		return apperror.Validationf(apperror.CodePriceCalculation, "no start price for route %s", opp.Route)
	}
	ctx = context.WithoutCancel(ctx)

	// Legs trade start-token units; amount, fees and gas are reference currency.
	units := amount.Div(opp.StartPrice)
	tolerance := one.Sub(e.cfg.MaxSlippagePct.Div(hundred))
	in := units
	modeledOut := units
	fills := make([]domain.LegFill, 0, len(opp.Legs))

	for i, leg := range opp.Legs {
		expected := in.Mul(leg.Rate)
		order := domain.LegOrder{
			Leg:          leg,
			AmountIn:     in,
			ExpectedOut:  expected,
			MinAmountOut: expected.Mul(tolerance),
			Notional:     amount,
		}

		fill, err := e.venue.Quote(ctx, order)
		if err != nil {
			e.log.Warn(ctx, "leg quote failed", "leg", i+1, "pool", leg.PoolID, "error", err)
			return legError(err, apperror.CodeVenueRejected)
		}
		if fill.AmountOut.LessThan(order.MinAmountOut) {
			return apperror.Validationf(apperror.CodeSlippageExceeded,
				"leg %d %s→%s: got %s, floor %s", i+1, leg.From, leg.To, fill.AmountOut, order.MinAmountOut)
		}

		fills = append(fills, fill)
		modeledOut = modeledOut.Mul(leg.Rate)
		in = fill.AmountOut
	}

	if err := e.venue.Settle(ctx, fills); err != nil {
		e.log.Warn(ctx, "settlement failed", "opportunity_id", opp.ID, "error", err)
		return legError(err, apperror.CodeSettlementFailed)
	}

	fees := decimal.Zero
	for _, f := range fills {
		fees = fees.Add(f.Fee)
	}
	// The final leg's output is valued back at the start price.
	result.Profit = in.Mul(opp.StartPrice).Sub(amount).Sub(fees).Sub(opp.GasCost)
	result.Fees = fees
	if !modeledOut.IsZero() {
		result.Slippage = modeledOut.Sub(in).Div(modeledOut).Mul(hundred)
	}
	return nil
}

// legError keeps coded venue errors and wraps anything else under code.
func legError(err error, code apperror.Code) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.New(code, apperror.WithCause(err))
}

func (e *Engine) record(ctx context.Context, result domain.ExecutionResult) {
	e.mu.Lock()
	e.executionCount++
	if result.Success && !result.DryRun {
		e.successfulExecutions++
	}
	e.history = append(e.history, result)
	e.mu.Unlock()

	attrs := metric.WithAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Bool("dry_run", result.DryRun),
		attribute.String("venue", result.Venue),
	)
	e.metrics.executions.Add(ctx, 1, attrs)
	if result.Success && !result.DryRun {
		e.metrics.profit.Record(ctx, result.Profit.InexactFloat64(), attrs)
		e.metrics.slippage.Record(ctx, result.Slippage.InexactFloat64(), attrs)
	}

	if result.Success {
		e.log.Info(ctx, "execution succeeded",
			"execution_id", result.ID,
			"route", result.Route.String(),
			"dry_run", result.DryRun,
			"amount", result.Amount.String(),
			"profit", result.Profit.StringFixed(4),
			"slippage_pct", result.Slippage.StringFixed(4),
		)
	} else {
		e.log.Warn(ctx, "execution failed",
			"execution_id", result.ID,
			"route", result.Route.String(),
			"dry_run", result.DryRun,
			"code", result.ErrorCode,
			"error", result.Error,
		)
	}

	if e.journal != nil {
		if err := e.journal.RecordExecution(ctx, result); err != nil {
			e.log.Warn(ctx, "failed to journal execution", "execution_id", result.ID, "error", err)
		}
	}
}

// ExecuteAll executes opps in order, best first. A zero amount uses each
// opportunity's scanned amount. Cancellation is checked between
// opportunities; on cancellation the completed results are returned with
// an EXECUTION_ABORTED error wrapping the context error.
func (e *Engine) ExecuteAll(ctx context.Context, opps []domain.Opportunity, amount decimal.Decimal, dryRun bool) (domain.BatchResult, error) {
	var batch domain.BatchResult
	if len(opps) == 0 {
		return batch, apperror.Validation(apperror.CodeEmptyBatch, "no opportunities to execute")
	}
	if amount.IsNegative() {
		return batch, apperror.Validationf(apperror.CodeInvalidTradeSize, "amount %s", amount)
	}

	for i, opp := range opps {
		if err := ctx.Err(); err != nil {
			e.log.Warn(ctx, "batch cancelled", "completed", i, "remaining", len(opps)-i)
			return batch, apperror.New(apperror.CodeExecutionAborted,
				apperror.WithCause(err),
				apperror.WithContext("batch cancelled"))
		}
		batch.Add(e.Execute(ctx, domain.ExecutionRequest{
			Opportunity: opp,
			Amount:      amount,
			DryRun:      dryRun,
		}))
	}

	e.log.Info(ctx, "batch complete",
		"executed", len(batch.Results),
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"total_profit", batch.TotalProfit.StringFixed(4),
	)
	return batch, nil
}

// Stats aggregates the history. Averages cover successful live executions.
func (e *Engine) Stats() domain.PerformanceStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := domain.PerformanceStats{
		Total:      e.executionCount,
		Successful: e.successfulExecutions,
	}

	var profit, fees, slippage decimal.Decimal
	for _, r := range e.history {
		switch {
		case !r.Success:
			stats.Failed++
		case r.DryRun:
			stats.Simulated++
		default:
			profit = profit.Add(r.Profit)
			fees = fees.Add(r.Fees)
			slippage = slippage.Add(r.Slippage)
		}
	}

	if stats.Total > 0 {
		stats.SuccessRate = decimal.NewFromInt(int64(stats.Successful)).
			Div(decimal.NewFromInt(int64(stats.Total))).
			Mul(hundred)
	}
	if stats.Successful > 0 {
		n := decimal.NewFromInt(int64(stats.Successful))
		stats.AvgProfit = profit.Div(n)
		stats.AvgFees = fees.Div(n)
		stats.AvgSlippage = slippage.Div(n)
	}
	return stats
}

// History returns a copy of all results in execution order.
func (e *Engine) History() []domain.ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.ExecutionResult, len(e.history))
	copy(out, e.history)
	return out
}
