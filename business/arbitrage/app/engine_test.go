package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/logger"
)

// fakeVenue fills legs at the modeled rate less slipPct percent.
type fakeVenue struct {
	mu        sync.Mutex
	slipPct   decimal.Decimal
	failPool  string // quote fails for this pool id
	failCode  apperror.Code
	settleErr error
	onSettle  func()
	quotes    int
	settled   [][]domain.LegFill
}

func (v *fakeVenue) Quote(_ context.Context, order domain.LegOrder) (domain.LegFill, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.quotes++
	if order.Leg.PoolID == v.failPool {
		return domain.LegFill{}, apperror.Validationf(v.failCode, "pool %s", order.Leg.PoolID)
	}
	keep := one.Sub(v.slipPct.Div(hundred))
	return domain.LegFill{
		Leg:       order.Leg,
		AmountIn:  order.AmountIn,
		AmountOut: order.ExpectedOut.Mul(keep),
		Fee:       order.Notional.Mul(order.Leg.FeeRate),
	}, nil
}

func (v *fakeVenue) Settle(_ context.Context, fills []domain.LegFill) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.onSettle != nil {
		v.onSettle()
	}
	if v.settleErr != nil {
		return v.settleErr
	}
	v.settled = append(v.settled, fills)
	return nil
}

type fakeJournal struct {
	mu         sync.Mutex
	scans      []*domain.ScanResult
	executions []domain.ExecutionResult
}

func (j *fakeJournal) RecordScan(_ context.Context, scan *domain.ScanResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.scans = append(j.scans, scan)
	return nil
}

func (j *fakeJournal) RecordExecution(_ context.Context, r domain.ExecutionResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.executions = append(j.executions, r)
	return nil
}

func (j *fakeJournal) RecentExecutions(_ context.Context, limit int) ([]domain.ExecutionResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit > len(j.executions) {
		limit = len(j.executions)
	}
	return j.executions[len(j.executions)-limit:], nil
}

// jupiterOpportunity is USDC→SOL→RAY→USDC at a 1% spread on jupiter, scanned at 10000.
func jupiterOpportunity(prefix string) domain.Opportunity {
	fee := d("0.001")
	return domain.Opportunity{
		ID:    prefix,
		Route: domain.Route{"USDC", "SOL", "RAY", "USDC"},
		Venue: "jupiter",
		Legs: [3]domain.Leg{
			{PoolID: prefix + "-1", Venue: "jupiter", From: "USDC", To: "SOL", Rate: d("0.01"), FeeRate: fee},
			{PoolID: prefix + "-2", Venue: "jupiter", From: "SOL", To: "RAY", Rate: d("50"), FeeRate: fee},
			{PoolID: prefix + "-3", Venue: "jupiter", From: "RAY", To: "USDC", Rate: d("2.02"), FeeRate: fee},
		},
		Spread:     d("1"),
		Amount:     d("10000"),
		StartPrice: d("1"),
		GasCost:    d("0.07"),
		NetProfit:  d("69.93"),
	}
}

func newTestEngine(t *testing.T, venue Venue, journal Journal) *Engine {
	t.Helper()
	e, err := NewEngine(venue, journal, EngineConfig{MaxSlippagePct: d("0.5")}, logger.NewNop())
	require.NoError(t, err)
	return e
}

func TestEngine_DryRun(t *testing.T) {
	venue := &fakeVenue{}
	e := newTestEngine(t, venue, nil)

	r := e.Execute(context.Background(), domain.ExecutionRequest{
		Opportunity: jupiterOpportunity("opp"),
		DryRun:      true,
	})

	assert.True(t, r.Success)
	assert.True(t, r.DryRun)
	assert.Equal(t, domain.StatusSucceeded, r.Status)
	assert.True(t, r.Profit.Equal(d("69.93")), "Profit = %s", r.Profit)
	assert.True(t, r.Fees.Equal(d("30")), "Fees = %s", r.Fees)
	assert.Zero(t, venue.quotes, "dry run must not touch the venue")

	stats := e.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Successful)
	assert.Equal(t, 1, stats.Simulated)
	assert.True(t, stats.SuccessRate.IsZero())
}

func TestEngine_DryRunAtOtherAmount(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	r := e.Execute(context.Background(), domain.ExecutionRequest{
		Opportunity: jupiterOpportunity("opp"),
		Amount:      d("1000"),
		DryRun:      true,
	})
	// 10 gross − 3 fees − 0.07 gas
	assert.True(t, r.Profit.Equal(d("6.93")), "Profit = %s", r.Profit)
	assert.True(t, r.Amount.Equal(d("1000")))
}

func TestEngine_LiveNoSlippage(t *testing.T) {
	venue := &fakeVenue{}
	journal := &fakeJournal{}
	e := newTestEngine(t, venue, journal)

	r := e.Execute(context.Background(), domain.ExecutionRequest{Opportunity: jupiterOpportunity("opp")})

	require.True(t, r.Success, r.Error)
	assert.True(t, r.Profit.Equal(d("69.93")), "Profit = %s", r.Profit)
	assert.True(t, r.Fees.Equal(d("30")), "Fees = %s", r.Fees)
	assert.True(t, r.Slippage.IsZero(), "Slippage = %s", r.Slippage)
	require.Len(t, venue.settled, 1)
	assert.Len(t, venue.settled[0], 3)
	assert.Len(t, journal.executions, 1)

	stats := e.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Successful)
	assert.True(t, stats.SuccessRate.Equal(d("100")))
	assert.True(t, stats.AvgProfit.Equal(d("69.93")))
}

func TestEngine_LiveWithSlippage(t *testing.T) {
	venue := &fakeVenue{slipPct: d("0.1")}
	e := newTestEngine(t, venue, nil)

	r := e.Execute(context.Background(), domain.ExecutionRequest{Opportunity: jupiterOpportunity("opp")})

	require.True(t, r.Success, r.Error)
	// 10100 × 0.999³ = 10069.7302899
	assert.True(t, r.Profit.Equal(d("39.6602899")), "Profit = %s", r.Profit)
	assert.True(t, r.Slippage.Equal(d("0.2997001")), "Slippage = %s", r.Slippage)
	assert.True(t, r.Profit.LessThan(d("69.93")))
}

func TestEngine_LiveNonStablecoinStart(t *testing.T) {
	snap := mustSnapshot(t, memecoinPools("raydium")...)
	cycles := FindCycles(snap, []string{"raydium"})
	require.Len(t, cycles, 1)
	opp, err := newCalculator().PriceCycle(cycles[0], snap, d("1000"))
	require.NoError(t, err)
	require.NotNil(t, opp)

	venue := &fakeVenue{}
	e := newTestEngine(t, venue, nil)
	r := e.Execute(context.Background(), domain.ExecutionRequest{Opportunity: *opp})

	require.True(t, r.Success, r.Error)
	require.Len(t, venue.settled, 1)
	fills := venue.settled[0]
	// 1000 of reference currency at 0.00002 per BONK.
	assert.True(t, fills[0].AmountIn.Equal(d("50000000")), "leg 1 in = %s", fills[0].AmountIn)
	assert.True(t, fills[2].AmountOut.Equal(d("52500000")), "leg 3 out = %s", fills[2].AmountOut)
	// 52.5M BONK is worth 1050: 50 gross − 7.5 fees − 0.04 gas.
	assert.True(t, r.Profit.Equal(d("42.46")), "Profit = %s", r.Profit)
	assert.True(t, r.Profit.Equal(opp.NetProfit), "live profit must match the scanned estimate")
	assert.True(t, r.Slippage.IsZero(), "Slippage = %s", r.Slippage)
}

func TestEngine_LiveWithoutStartPrice(t *testing.T) {
	venue := &fakeVenue{}
	e := newTestEngine(t, venue, nil)

	opp := jupiterOpportunity("opp")
	opp.StartPrice = decimal.Zero
	r := e.Execute(context.Background(), domain.ExecutionRequest{Opportunity: opp})

	assert.Equal(t, string(apperror.CodePriceCalculation), r.ErrorCode)
	assert.Zero(t, venue.quotes)
}

func TestEngine_LiveFailures(t *testing.T) {
	tests := []struct {
		name     string
		venue    *fakeVenue
		wantCode apperror.Code
	}{
		{
			name:     "insufficient_liquidity",
			venue:    &fakeVenue{failPool: "opp-2", failCode: apperror.CodeInsufficientLiquidity},
			wantCode: apperror.CodeInsufficientLiquidity,
		},
		{
			name:     "slippage_beyond_tolerance",
			venue:    &fakeVenue{slipPct: d("0.6")},
			wantCode: apperror.CodeSlippageExceeded,
		},
		{
			name:     "settlement_rejected",
			venue:    &fakeVenue{settleErr: errors.New("block full")},
			wantCode: apperror.CodeSettlementFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.venue, nil)

			r := e.Execute(context.Background(), domain.ExecutionRequest{Opportunity: jupiterOpportunity("opp")})

			assert.False(t, r.Success)
			assert.Equal(t, domain.StatusFailed, r.Status)
			assert.Equal(t, string(tt.wantCode), r.ErrorCode)
			assert.NotEmpty(t, r.Error)
			assert.True(t, r.Profit.IsZero(), "failed attempts credit no profit")
			assert.Empty(t, tt.venue.settled, "nothing may be settled")

			stats := e.Stats()
			assert.Equal(t, 1, stats.Total)
			assert.Equal(t, 0, stats.Successful)
			assert.Equal(t, 1, stats.Failed)
		})
	}
}

func TestEngine_LiveWithoutVenue(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	r := e.Execute(context.Background(), domain.ExecutionRequest{Opportunity: jupiterOpportunity("opp")})
	assert.Equal(t, string(apperror.CodeVenueRejected), r.ErrorCode)
}

func TestEngine_ExecuteAll_LegFailureDoesNotStopBatch(t *testing.T) {
	// Leg 2 of the first opportunity fails; the second still executes.
	venue := &fakeVenue{failPool: "first-2", failCode: apperror.CodeVenueRejected}
	e := newTestEngine(t, venue, nil)

	batch, err := e.ExecuteAll(context.Background(),
		[]domain.Opportunity{jupiterOpportunity("first"), jupiterOpportunity("second")},
		d("10000"), false)
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	first, second := batch.Results[0], batch.Results[1]
	assert.Equal(t, "first", first.OpportunityID)
	assert.False(t, first.Success)
	assert.Equal(t, string(apperror.CodeVenueRejected), first.ErrorCode)
	assert.Equal(t, "second", second.OpportunityID)
	assert.True(t, second.Success, second.Error)

	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	assert.True(t, batch.TotalProfit.Equal(d("69.93")), "TotalProfit = %s", batch.TotalProfit)

	require.Len(t, venue.settled, 1, "only the second opportunity settles")
	assert.Equal(t, "second-1", venue.settled[0][0].Leg.PoolID)

	stats := e.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.True(t, stats.SuccessRate.Equal(d("50")))
}

func TestEngine_ExecuteAll_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	venue := &fakeVenue{onSettle: cancel}
	e := newTestEngine(t, venue, nil)

	batch, err := e.ExecuteAll(ctx,
		[]domain.Opportunity{jupiterOpportunity("first"), jupiterOpportunity("second")},
		decimal.Zero, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, apperror.CodeExecutionAborted, apperror.GetCode(err))
	require.Len(t, batch.Results, 1, "the attempt in flight completes")
	assert.True(t, batch.Results[0].Success)
}

func TestEngine_ExecuteAll_Validation(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	_, err := e.ExecuteAll(context.Background(), nil, d("1000"), true)
	assert.Equal(t, apperror.CodeEmptyBatch, apperror.GetCode(err))

	_, err = e.ExecuteAll(context.Background(), []domain.Opportunity{jupiterOpportunity("x")}, d("-1"), true)
	assert.Equal(t, apperror.CodeInvalidTradeSize, apperror.GetCode(err))

	assert.Zero(t, e.Stats().Total)
}

func TestEngine_StatsEmpty(t *testing.T) {
	stats := newTestEngine(t, nil, nil).Stats()
	assert.Zero(t, stats.Total)
	assert.True(t, stats.SuccessRate.IsZero())
	assert.True(t, stats.AvgProfit.IsZero())
}

func TestEngine_CountersAreMonotonicUnderConcurrency(t *testing.T) {
	e := newTestEngine(t, &fakeVenue{}, nil)

	const workers = 8
	const perWorker = 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(dry bool) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				e.Execute(context.Background(), domain.ExecutionRequest{
					Opportunity: jupiterOpportunity("c"),
					DryRun:      dry,
				})
			}
		}(w%2 == 0)
	}
	wg.Wait()

	stats := e.Stats()
	assert.Equal(t, workers*perWorker, stats.Total)
	assert.Equal(t, workers*perWorker/2, stats.Successful)
	assert.Equal(t, workers*perWorker/2, stats.Simulated)
	assert.Len(t, e.History(), workers*perWorker)
}
