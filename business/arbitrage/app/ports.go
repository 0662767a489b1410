package app

import (
	"context"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	feesApp "github.com/fd1az/triarb/business/fees/app"
	feesDomain "github.com/fd1az/triarb/business/fees/domain"
	marketApp "github.com/fd1az/triarb/business/market/app"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

// Venue quotes and settles swap legs. Quotes hold no position; Settle
// executes all fills or none.
type Venue interface {
	Quote(ctx context.Context, order domain.LegOrder) (domain.LegFill, error)
	Settle(ctx context.Context, fills []domain.LegFill) error
}

// Journal persists scans and execution results.
type Journal interface {
	RecordScan(ctx context.Context, scan *domain.ScanResult) error
	RecordExecution(ctx context.Context, result domain.ExecutionResult) error
	RecentExecutions(ctx context.Context, limit int) ([]domain.ExecutionResult, error)
}

// Reporter renders results for an operator.
type Reporter interface {
	// Opportunities renders a ranked scan.
	Opportunities(scan *domain.ScanResult)

	// Analysis renders a single profit breakdown.
	Analysis(a domain.ProfitAnalysis)

	// Breakeven renders a breakeven spread.
	Breakeven(b domain.Breakeven)

	// Optimal renders an optimal trade size.
	Optimal(o domain.OptimalAmount)

	// Matrix renders a profitability grid.
	Matrix(m domain.ProfitMatrix)

	// Strategies renders strategy recommendations.
	Strategies(s []domain.Strategy)

	// Batch renders the results of an execution batch.
	Batch(b domain.BatchResult)

	// Stats renders engine performance.
	Stats(s domain.PerformanceStats)

	// Pools renders the pools of a snapshot.
	Pools(snap *marketDomain.Snapshot)
}

// SnapshotSource supplies market snapshots.
type SnapshotSource interface {
	Snapshot(ctx context.Context, opts marketApp.FetchOptions) (*marketDomain.Snapshot, error)
}

// ScheduleSource supplies the fee schedule for a scan.
type ScheduleSource interface {
	Base() *feesDomain.Schedule
	Schedule(ctx context.Context, prices feesApp.PriceLookup) *feesDomain.Schedule
}
