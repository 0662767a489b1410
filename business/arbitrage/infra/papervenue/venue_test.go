package papervenue_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	"github.com/fd1az/triarb/business/arbitrage/infra/papervenue"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/logger"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type lastSnapshot struct {
	snap atomic.Pointer[marketDomain.Snapshot]
}

func (l *lastSnapshot) Last() *marketDomain.Snapshot {
	return l.snap.Load()
}

func newSnapshot(t *testing.T, ts time.Time, solUsdcLiquidity string) *marketDomain.Snapshot {
	t.Helper()
	snap, err := marketDomain.NewSnapshot(ts,
		[]marketDomain.Token{
			{Symbol: "SOL", Price: d("100")},
			{Symbol: "USDC", Price: d("1")},
			{Symbol: "RAY", Price: d("2")},
		},
		[]marketDomain.Pool{
			{ID: "sol-usdc", Venue: "jupiter", Base: "SOL", Quote: "USDC", Liquidity: d(solUsdcLiquidity)},
			{ID: "sol-ray", Venue: "jupiter", Base: "SOL", Quote: "RAY"},
		})
	require.NoError(t, err)
	return snap
}

func order(pool, from, to string, in, expected, notional string) domain.LegOrder {
	return domain.LegOrder{
		Leg:         domain.Leg{PoolID: pool, Venue: "jupiter", From: from, To: to, FeeRate: d("0.001")},
		AmountIn:    d(in),
		ExpectedOut: d(expected),
		Notional:    d(notional),
	}
}

func TestVenue_QuoteWithinBound(t *testing.T) {
	src := &lastSnapshot{}
	src.snap.Store(newSnapshot(t, time.Now(), "0"))
	v := papervenue.NewVenue(src, papervenue.Config{SlippageBoundPct: d("0.5"), Seed: 7}, logger.NewNop())

	floor := d("99.5") // 100 less 0.5%
	for i := 0; i < 50; i++ {
		fill, err := v.Quote(context.Background(), order("sol-usdc", "USDC", "SOL", "10000", "100", "10000"))
		require.NoError(t, err)
		assert.True(t, fill.AmountOut.LessThanOrEqual(d("100")), "AmountOut = %s", fill.AmountOut)
		assert.True(t, fill.AmountOut.GreaterThanOrEqual(floor), "AmountOut = %s", fill.AmountOut)
		assert.True(t, fill.Fee.Equal(d("10")), "Fee = %s", fill.Fee)
	}
}

func TestVenue_ZeroBoundFillsExactly(t *testing.T) {
	src := &lastSnapshot{}
	src.snap.Store(newSnapshot(t, time.Now(), "0"))
	v := papervenue.NewVenue(src, papervenue.Config{Seed: 1}, logger.NewNop())

	fill, err := v.Quote(context.Background(), order("sol-ray", "SOL", "RAY", "100", "5000", "10000"))
	require.NoError(t, err)
	assert.True(t, fill.AmountOut.Equal(d("5000")))
	assert.True(t, fill.EffectiveRate().Equal(d("50")))
}

func TestVenue_QuoteErrors(t *testing.T) {
	tests := []struct {
		name     string
		store    bool
		order    domain.LegOrder
		wantCode apperror.Code
	}{
		{"no_snapshot", false, order("sol-usdc", "USDC", "SOL", "1", "0.01", "1"), apperror.CodeDataUnavailable},
		{"unknown_pool", true, order("missing", "USDC", "SOL", "1", "0.01", "1"), apperror.CodeVenueRejected},
		{"wrong_pair", true, order("sol-usdc", "RAY", "SOL", "1", "0.02", "2"), apperror.CodeVenueRejected},
		{"too_large", true, order("sol-usdc", "USDC", "SOL", "2000", "20", "2000"), apperror.CodeInsufficientLiquidity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &lastSnapshot{}
			if tt.store {
				src.snap.Store(newSnapshot(t, time.Now(), "1000"))
			}
			v := papervenue.NewVenue(src, papervenue.Config{Seed: 3}, logger.NewNop())
			_, err := v.Quote(context.Background(), tt.order)
			assert.Equal(t, tt.wantCode, apperror.GetCode(err), "err = %v", err)
		})
	}
}

func TestVenue_SettleConsumesLiquidityAtomically(t *testing.T) {
	ts := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	src := &lastSnapshot{}
	src.snap.Store(newSnapshot(t, ts, "1000"))
	v := papervenue.NewVenue(src, papervenue.Config{Seed: 5}, logger.NewNop())
	ctx := context.Background()

	fill, err := v.Quote(ctx, order("sol-usdc", "USDC", "SOL", "600", "6", "600"))
	require.NoError(t, err)
	require.NoError(t, v.Settle(ctx, []domain.LegFill{fill}))

	left, ok := v.Remaining("sol-usdc")
	require.True(t, ok)
	assert.True(t, left.Equal(d("400")), "remaining = %s", left)

	// 3 SOL at 100 fits, then 2 more SOL (200) do not; neither is applied.
	a := domain.LegFill{Leg: domain.Leg{PoolID: "sol-usdc", From: "SOL", To: "USDC"}, AmountIn: d("3")}
	b := domain.LegFill{Leg: domain.Leg{PoolID: "sol-usdc", From: "SOL", To: "USDC"}, AmountIn: d("2")}
	err = v.Settle(ctx, []domain.LegFill{a, b})
	assert.Equal(t, apperror.CodeInsufficientLiquidity, apperror.GetCode(err))

	left, _ = v.Remaining("sol-usdc")
	assert.True(t, left.Equal(d("400")), "failed settlement must not consume: %s", left)

	// Unbounded pools never run dry.
	c := domain.LegFill{Leg: domain.Leg{PoolID: "sol-ray", From: "SOL", To: "RAY"}, AmountIn: d("1000000")}
	assert.NoError(t, v.Settle(ctx, []domain.LegFill{c}))

	// A newer snapshot restores liquidity.
	src.snap.Store(newSnapshot(t, ts.Add(time.Minute), "1000"))
	_, err = v.Quote(ctx, order("sol-usdc", "USDC", "SOL", "900", "9", "900"))
	assert.NoError(t, err)
}

func TestVenue_SettleBeforeQuote(t *testing.T) {
	v := papervenue.NewVenue(&lastSnapshot{}, papervenue.Config{}, logger.NewNop())
	err := v.Settle(context.Background(), nil)
	assert.Equal(t, apperror.CodeSettlementFailed, apperror.GetCode(err))
}
