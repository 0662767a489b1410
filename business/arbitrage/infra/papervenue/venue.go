// Package papervenue simulates a venue against the last market snapshot.
// Fills carry a bounded random slippage and consume pool liquidity.
package papervenue

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/logger"
)

var hundred = decimal.NewFromInt(100)

// SnapshotSource returns the most recent snapshot, or nil before the first fetch.
type SnapshotSource interface {
	Last() *marketDomain.Snapshot
}

// Config holds simulation settings.
type Config struct {
	// SlippageBoundPct caps the random shortfall applied to each fill, in percent.
	SlippageBoundPct decimal.Decimal
	// Seed makes fills reproducible. Zero seeds from the clock.
	Seed uint64
}

// Venue implements app.Venue. Zero pool liquidity means unbounded.
type Venue struct {
	source SnapshotSource
	cfg    Config
	log    logger.LoggerInterface

	mu        sync.Mutex
	rng       *rand.Rand
	loadedAt  time.Time
	snap      *marketDomain.Snapshot
	remaining map[string]decimal.Decimal
}

// NewVenue creates a paper venue reading pools from source.
func NewVenue(source SnapshotSource, cfg Config, log logger.LoggerInterface) *Venue {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Venue{
		source:    source,
		cfg:       cfg,
		log:       log,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		remaining: make(map[string]decimal.Decimal),
	}
}

// reload refreshes pool liquidity when a newer snapshot is available. Callers hold mu.
func (v *Venue) reload(ctx context.Context) error {
	snap := v.source.Last()
	if snap == nil {
		return apperror.New(apperror.CodeDataUnavailable, apperror.WithContext("no market snapshot loaded"))
	}
	if v.snap != nil && !snap.Timestamp().After(v.loadedAt) {
		return nil
	}

	v.snap = snap
	v.loadedAt = snap.Timestamp()
	v.remaining = make(map[string]decimal.Decimal)
	for _, venue := range snap.Venues() {
		for _, p := range snap.Pools(venue) {
			v.remaining[p.ID] = p.Liquidity
		}
	}
	v.log.Debug(ctx, "paper venue loaded snapshot", "pools", len(v.remaining), "snapshot_at", v.loadedAt)
	return nil
}

// Quote fills order at its expected output less a random shortfall within
// the configured bound.
func (v *Venue) Quote(ctx context.Context, order domain.LegOrder) (domain.LegFill, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.reload(ctx); err != nil {
		return domain.LegFill{}, err
	}

	leg := order.Leg
	pool, ok := v.snap.Pool(leg.PoolID)
	if !ok {
		return domain.LegFill{}, apperror.Validationf(apperror.CodeVenueRejected, "unknown pool %s", leg.PoolID)
	}
	if !pool.Has(leg.From) || !pool.Has(leg.To) {
		return domain.LegFill{}, apperror.Validationf(apperror.CodeVenueRejected,
			"pool %s does not trade %s→%s", pool.ID, leg.From, leg.To)
	}
	if left := v.remaining[pool.ID]; pool.Liquidity.IsPositive() && order.Notional.GreaterThan(left) {
		return domain.LegFill{}, apperror.Validationf(apperror.CodeInsufficientLiquidity,
			"pool %s: notional %s exceeds available %s", pool.ID, order.Notional, left)
	}

	shortfall := v.cfg.SlippageBoundPct.Mul(decimal.NewFromFloat(v.rng.Float64())).Div(hundred)
	return domain.LegFill{
		Leg:       leg,
		AmountIn:  order.AmountIn,
		AmountOut: order.ExpectedOut.Mul(decimal.NewFromInt(1).Sub(shortfall)),
		Fee:       order.Notional.Mul(leg.FeeRate),
	}, nil
}

// Settle consumes liquidity for every fill, or for none of them. A fill
// consumes its input valued at the From token's snapshot price.
func (v *Venue) Settle(ctx context.Context, fills []domain.LegFill) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.snap == nil {
		return apperror.New(apperror.CodeSettlementFailed, apperror.WithContext("nothing quoted"))
	}

	consumed := make(map[string]decimal.Decimal, len(fills))
	for _, f := range fills {
		pool, ok := v.snap.Pool(f.Leg.PoolID)
		if !ok {
			return apperror.Validationf(apperror.CodeSettlementFailed, "pool %s left the snapshot", f.Leg.PoolID)
		}
		token, ok := v.snap.Token(f.Leg.From)
		if !ok {
			return apperror.Validationf(apperror.CodeSettlementFailed, "no price for %s", f.Leg.From)
		}
		value := f.AmountIn.Mul(token.Price)
		total := consumed[pool.ID].Add(value)
		if pool.Liquidity.IsPositive() && total.GreaterThan(v.remaining[pool.ID]) {
			return apperror.Validationf(apperror.CodeInsufficientLiquidity,
				"pool %s: settlement needs %s, %s left", pool.ID, total, v.remaining[pool.ID])
		}
		consumed[pool.ID] = total
	}

	for id, value := range consumed {
		if pool, _ := v.snap.Pool(id); pool.Liquidity.IsPositive() {
			v.remaining[id] = v.remaining[id].Sub(value)
		}
	}
	v.log.Debug(ctx, "paper settlement", "legs", len(fills), "pools", len(consumed))
	return nil
}

// Remaining returns the unconsumed liquidity of pool id.
func (v *Venue) Remaining(id string) (decimal.Decimal, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	left, ok := v.remaining[id]
	return left, ok
}
