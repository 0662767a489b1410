package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	feesApp "github.com/fd1az/triarb/business/fees/app"
	feesDomain "github.com/fd1az/triarb/business/fees/domain"
	marketApp "github.com/fd1az/triarb/business/market/app"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apm"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/logger"
)

const scannerTracerName = "github.com/fd1az/triarb/business/arbitrage/app"

// ScannerConfig holds scanner-wide settings.
type ScannerConfig struct {
	Anchors   []string
	Federated bool
}

// ScanRequest parametrizes one scan. Empty Venues scans every scheduled venue.
type ScanRequest struct {
	Venues     []string
	MinSpread  decimal.Decimal
	Amount     decimal.Decimal
	AllowStale bool
}

// Scanner turns a market snapshot into ranked opportunities.
type Scanner struct {
	market  SnapshotSource
	fees    ScheduleSource
	journal Journal
	cfg     ScannerConfig
	log     logger.LoggerInterface
	tracer  apm.Tracer
	now     func() time.Time
}

// NewScanner creates a Scanner. journal may be nil.
func NewScanner(market SnapshotSource, fees ScheduleSource, journal Journal, cfg ScannerConfig, log logger.LoggerInterface) *Scanner {
	return &Scanner{
		market:  market,
		fees:    fees,
		journal: journal,
		cfg:     cfg,
		log:     log,
		tracer:  apm.NewTracer(scannerTracerName),
		now:     time.Now,
	}
}

// Scan fetches a snapshot, refreshes the fee schedule and ranks every
// profitable cycle. Snapshot failures abort the scan.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*domain.ScanResult, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "arbitrage.Scan")
	defer span.End()

	base := s.fees.Base()
	venues, federated, err := s.selectVenues(base, req.Venues)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	snap, err := s.market.Snapshot(ctx, marketApp.FetchOptions{Venues: venues, AllowStale: req.AllowStale})
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	schedule := s.fees.Schedule(ctx, priceLookup(snap))
	if federated {
		venues = append(venues, domain.FederatedVenue)
	}
	req.Venues = venues

	result, err := s.ScanSnapshot(ctx, snap, schedule, req)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("scan.cycles", result.Cycles),
		attribute.Int("scan.opportunities", len(result.Opportunities)),
	)

	if s.journal != nil {
		if err := s.journal.RecordScan(ctx, result); err != nil {
			s.log.Warn(ctx, "failed to journal scan", "scan_id", result.ID, "error", err)
		}
	}
	return result, nil
}

func (s *Scanner) selectVenues(schedule *feesDomain.Schedule, requested []string) ([]string, bool, error) {
	federated := s.cfg.Federated
	venues := make([]string, 0, len(requested))
	for _, v := range requested {
		if v == domain.FederatedVenue {
			federated = true
			continue
		}
		if _, err := schedule.Lookup(v); err != nil {
			return nil, false, err
		}
		venues = append(venues, v)
	}
	if len(venues) == 0 {
		venues = schedule.Venues()
	}
	return venues, federated, nil
}

// ScanSnapshot enumerates and prices cycles with one worker per venue, then
// ranks the union. Listing domain.FederatedVenue in req.Venues replaces the
// per-venue workers with a single worker over all listed venues. Every
// scanned venue must be in schedule; an empty req.Venues scans every venue
// in snap.
func (s *Scanner) ScanSnapshot(ctx context.Context, snap *marketDomain.Snapshot, schedule *feesDomain.Schedule, req ScanRequest) (*domain.ScanResult, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.Validationf(apperror.CodeInvalidTradeSize, "amount %s", req.Amount)
	}

	started := s.now()
	calc := NewProfitCalculator(schedule, s.cfg.Anchors)

	groups := workerGroups(req.Venues, snap)
	if err := checkCoverage(schedule, groups); err != nil {
		return nil, err
	}
	found := make([][]domain.Opportunity, len(groups))
	cycles := make([]int, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return apperror.New(apperror.CodeScanCancelled, apperror.WithCause(err))
			}
			opps, n, err := s.scanVenue(gctx, calc, snap, group, req.Amount)
			if err != nil {
				return err
			}
			found[i], cycles[i] = opps, n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Opportunity
	total := 0
	for i := range groups {
		all = append(all, found[i]...)
		total += cycles[i]
	}

	result := &domain.ScanResult{
		ID:            uuid.NewString(),
		SnapshotAt:    snap.Timestamp(),
		StartedAt:     started,
		Venues:        req.Venues,
		Cycles:        total,
		MinSpread:     req.MinSpread,
		Amount:        req.Amount,
		Opportunities: Rank(all, req.MinSpread),
	}
	result.Duration = s.now().Sub(started)

	s.log.Info(ctx, "scan complete",
		"scan_id", result.ID,
		"venues", req.Venues,
		"cycles", total,
		"profitable", len(all),
		"ranked", len(result.Opportunities),
		"duration", result.Duration.String(),
	)
	return result, nil
}

func (s *Scanner) scanVenue(ctx context.Context, calc *ProfitCalculator, snap *marketDomain.Snapshot, venues []string, amount decimal.Decimal) ([]domain.Opportunity, int, error) {
	name := venues[0]
	if len(venues) > 1 {
		name = domain.FederatedVenue
	}
	ctx, span := s.tracer.StartSpanFromContext(ctx, "arbitrage.ScanVenue")
	defer span.End()

	cycles := FindCycles(snap, venues)
	var opps []domain.Opportunity
	// Federated cycles repeat token sets across venue mixes; keep the best.
	bestOf := make(map[string]int)
	for _, c := range cycles {
		opp, err := calc.PriceCycle(c, snap, amount)
		if err != nil {
			span.NoticeError(err)
			return nil, 0, err
		}
		if opp == nil {
			continue
		}
		key := c.Key()
		if i, ok := bestOf[key]; ok {
			if better(*opp, opps[i]) {
				opps[i] = *opp
			}
			continue
		}
		bestOf[key] = len(opps)
		opps = append(opps, *opp)
	}

	span.SetAttributes(
		attribute.String("scan.venue", name),
		attribute.Int("scan.cycles", len(cycles)),
		attribute.Int("scan.opportunities", len(opps)),
	)
	s.log.Debug(ctx, "venue scanned", "venue", name, "cycles", len(cycles), "profitable", len(opps))
	return opps, len(cycles), nil
}

// checkCoverage fails with UNKNOWN_VENUE when a venue to be scanned has no
// fee schedule entry, before any worker starts.
func checkCoverage(schedule *feesDomain.Schedule, groups [][]string) error {
	for _, group := range groups {
		for _, v := range group {
			if v == domain.FederatedVenue {
				continue
			}
			if _, err := schedule.Lookup(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// workerGroups returns the venue lists handed to FindCycles, one per worker.
func workerGroups(venues []string, snap *marketDomain.Snapshot) [][]string {
	federated := false
	var selected []string
	for _, v := range venues {
		if v == domain.FederatedVenue {
			federated = true
			continue
		}
		selected = append(selected, v)
	}
	if len(selected) == 0 {
		selected = snap.Venues()
	}

	if federated {
		return [][]string{append(append([]string(nil), selected...), domain.FederatedVenue)}
	}
	groups := make([][]string, len(selected))
	for i, v := range selected {
		groups[i] = []string{v}
	}
	return groups
}

func priceLookup(snap *marketDomain.Snapshot) feesApp.PriceLookup {
	return func(symbol string) (decimal.Decimal, bool) {
		t, ok := snap.Token(symbol)
		if !ok {
			return decimal.Zero, false
		}
		return t.Price, true
	}
}
