package main

import (
	"context"
	"flag"
	"strings"

	"github.com/shopspring/decimal"

	arbitrageApp "github.com/fd1az/triarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/triarb/business/arbitrage/di"
	"github.com/fd1az/triarb/business/arbitrage/domain"
	marketApp "github.com/fd1az/triarb/business/market/app"
	marketDI "github.com/fd1az/triarb/business/market/di"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/config"
	"github.com/fd1az/triarb/internal/di"
	"github.com/fd1az/triarb/internal/logger"
)

var (
	defaultSpreads = mustDecimals("0.1", "0.3", "0.5", "1", "2")
	defaultAmounts = mustDecimals("100", "500", "1000", "5000", "10000")
)

type cli struct {
	cfg      *config.Config
	log      logger.LoggerInterface
	services di.ServiceRegistry
	out      arbitrageApp.Reporter
}

func (c *cli) defaultVenue() string {
	if len(c.cfg.Market.Venues) > 0 {
		return c.cfg.Market.Venues[0]
	}
	return c.cfg.VenueNames()[0]
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// scanFlags are shared by scan and execute.
type scanFlags struct {
	venues     string
	minSpread  decimal.Decimal
	amount     decimal.Decimal
	allowStale bool
	federated  bool
	strategy   string
	capital    decimal.Decimal
}

func (c *cli) bindScanFlags(fs *flag.FlagSet) *scanFlags {
	sf := &scanFlags{
		minSpread: c.cfg.Scan.MinSpreadDecimal(),
		amount:    c.cfg.Scan.AmountDecimal(),
		capital:   decimal.NewFromFloat(c.cfg.Strategy.Capital),
	}
	fs.StringVar(&sf.venues, "venue", "", "Comma separated venues (default: all configured)")
	fs.Var(decimalValue{&sf.minSpread}, "min-spread", "Minimum spread in percent")
	fs.Var(decimalValue{&sf.amount}, "amount", "Trade size in the reference currency")
	fs.BoolVar(&sf.allowStale, "allow-stale", false, "Accept snapshots older than market.max_snapshot_age")
	fs.BoolVar(&sf.federated, "federated", false, "Also search cycles spanning venues")
	fs.StringVar(&sf.strategy, "strategy", "", "Risk tier whose target spread, venue and position size drive the scan")
	fs.Var(decimalValue{&sf.capital}, "capital", "Capital the --strategy position size is drawn from")
	return sf
}

// resolve applies --strategy once flags are parsed. Flags set explicitly on
// fs keep their values. A nil fs treats every flag as unset.
func (sf *scanFlags) resolve(fs *flag.FlagSet) (*domain.Strategy, error) {
	if strings.TrimSpace(sf.strategy) == "" {
		return nil, nil
	}
	tier, err := domain.ParseRiskTier(sf.strategy)
	if err != nil {
		return nil, err
	}
	s, err := arbitrageApp.Recommend(sf.capital, tier)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	if fs != nil {
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	}
	if !set["min-spread"] {
		sf.minSpread = s.TargetSpread
	}
	if !set["amount"] {
		sf.amount = s.MaxPosition
	}
	// A federated search over the tier's single venue would find nothing new.
	if sf.venues == "" && !sf.federated {
		sf.venues = s.Venue
	}
	return &s, nil
}

// parseScan parses args and applies --strategy.
func (c *cli) parseScan(ctx context.Context, fs *flag.FlagSet, sf *scanFlags, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := sf.resolve(fs)
	if err != nil {
		return err
	}
	if s != nil {
		c.log.Info(ctx, "scan parametrized by strategy",
			"tier", string(s.Tier),
			"min_spread", sf.minSpread.String(),
			"amount", sf.amount.String(),
			"venues", sf.venues,
		)
	}
	return nil
}

func (sf *scanFlags) request() arbitrageApp.ScanRequest {
	venues := splitList(sf.venues)
	if sf.federated {
		venues = append(venues, domain.FederatedVenue)
	}
	return arbitrageApp.ScanRequest{
		Venues:     venues,
		MinSpread:  sf.minSpread,
		Amount:     sf.amount,
		AllowStale: sf.allowStale,
	}
}

func (c *cli) scan(ctx context.Context, args []string) error {
	fs := newFlagSet("scan")
	sf := c.bindScanFlags(fs)
	if err := c.parseScan(ctx, fs, sf, args); err != nil {
		return err
	}

	result, err := arbitrageDI.GetScanner(c.services).Scan(ctx, sf.request())
	if err != nil {
		return err
	}
	c.out.Opportunities(result)
	return nil
}

func (c *cli) analyze(args []string) error {
	fs := newFlagSet("analyze")
	amount := c.cfg.Scan.AmountDecimal()
	spread := decimal.NewFromInt(1)
	fs.Var(decimalValue{&amount}, "amount", "Trade size")
	fs.Var(decimalValue{&spread}, "spread", "Spread in percent")
	venue := fs.String("venue", c.defaultVenue(), "Venue whose fees apply")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := arbitrageDI.GetProfitCalculator(c.services).Analyze(amount, spread, *venue)
	if err != nil {
		return err
	}
	c.out.Analysis(a)
	return nil
}

func (c *cli) breakeven(args []string) error {
	fs := newFlagSet("breakeven")
	amount := c.cfg.Scan.AmountDecimal()
	fs.Var(decimalValue{&amount}, "amount", "Trade size")
	venue := fs.String("venue", c.defaultVenue(), "Venue whose fees apply")
	if err := fs.Parse(args); err != nil {
		return err
	}

	be, err := arbitrageDI.GetProfitCalculator(c.services).BreakevenSpread(amount, *venue)
	if err != nil {
		return err
	}
	c.out.Breakeven(be)
	return nil
}

func (c *cli) optimal(args []string) error {
	fs := newFlagSet("optimal")
	spread := decimal.NewFromInt(1)
	target := decimal.NewFromInt(10)
	fs.Var(decimalValue{&spread}, "spread", "Spread in percent")
	fs.Var(decimalValue{&target}, "target", "Target net profit")
	venue := fs.String("venue", c.defaultVenue(), "Venue whose fees apply")
	route := fs.String("route", "", "Optional route label, e.g. USDC,SOL,RAY,USDC")
	if err := fs.Parse(args); err != nil {
		return err
	}

	o, err := arbitrageDI.GetProfitCalculator(c.services).
		OptimalAmount(domain.Route(splitList(*route)), spread, target, *venue)
	if err != nil {
		return err
	}
	c.out.Optimal(o)
	return nil
}

func (c *cli) table(args []string) error {
	fs := newFlagSet("table")
	spreads := append([]decimal.Decimal(nil), defaultSpreads...)
	amounts := append([]decimal.Decimal(nil), defaultAmounts...)
	fs.Var(decimalList{&spreads}, "spreads", "Comma separated spreads in percent")
	fs.Var(decimalList{&amounts}, "amounts", "Comma separated trade sizes")
	venue := fs.String("venue", c.defaultVenue(), "Venue whose fees apply")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := arbitrageDI.GetProfitCalculator(c.services).ProfitMatrix(spreads, amounts, *venue)
	if err != nil {
		return err
	}
	c.out.Matrix(m)
	return nil
}

func (c *cli) strategy(args []string) error {
	fs := newFlagSet("strategy")
	capital := decimal.NewFromFloat(c.cfg.Strategy.Capital)
	fs.Var(decimalValue{&capital}, "capital", "Capital to deploy")
	risk := fs.String("risk", c.cfg.Strategy.RiskTier, "Risk tier: conservative, medium, aggressive or all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.EqualFold(strings.TrimSpace(*risk), "all") {
		all, err := arbitrageApp.RecommendAll(capital)
		if err != nil {
			return err
		}
		c.out.Strategies(all)
		return nil
	}

	tier, err := domain.ParseRiskTier(*risk)
	if err != nil {
		return err
	}
	s, err := arbitrageApp.Recommend(capital, tier)
	if err != nil {
		return err
	}
	c.out.Strategies([]domain.Strategy{s})
	return nil
}

func (c *cli) execute(ctx context.Context, args []string) error {
	fs := newFlagSet("execute")
	sf := c.bindScanFlags(fs)
	live := fs.Bool("live", false, "Execute against the paper venue instead of simulating")
	top := fs.Int("top", 0, "Execute only the N best opportunities (0 = all)")
	if err := c.parseScan(ctx, fs, sf, args); err != nil {
		return err
	}

	result, err := arbitrageDI.GetScanner(c.services).Scan(ctx, sf.request())
	if err != nil {
		return err
	}
	c.out.Opportunities(result)

	opps := result.Opportunities
	if *top > 0 && len(opps) > *top {
		opps = opps[:*top]
	}
	if len(opps) == 0 {
		c.log.Info(ctx, "nothing to execute", "scan_id", result.ID)
		return nil
	}

	engine := arbitrageDI.GetEngine(c.services)
	batch, err := engine.ExecuteAll(ctx, opps, sf.amount, !*live)
	c.out.Batch(batch)
	c.out.Stats(engine.Stats())
	return err
}

func (c *cli) status(ctx context.Context, args []string) error {
	fs := newFlagSet("status")
	venues := fs.String("venue", "", "Comma separated venues (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := marketDI.GetMarketService(c.services).Snapshot(ctx, marketApp.FetchOptions{
		Venues:     splitList(*venues),
		AllowStale: true,
	})
	if err != nil {
		return err
	}
	c.out.Pools(snap)
	return nil
}

func (c *cli) history(ctx context.Context, args []string) error {
	fs := newFlagSet("history")
	limit := fs.Int("limit", 20, "Number of executions to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	journal := arbitrageDI.GetJournal(c.services)
	if journal == nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("storage.sqlite_path is not set"))
	}
	results, err := journal.RecentExecutions(ctx, *limit)
	if err != nil {
		return err
	}

	var batch domain.BatchResult
	for _, r := range results {
		batch.Add(r)
	}
	c.out.Batch(batch)
	return nil
}
