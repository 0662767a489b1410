package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	arbitrageApp "github.com/fd1az/triarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/triarb/business/arbitrage/di"
	marketDI "github.com/fd1az/triarb/business/market/di"
	"github.com/fd1az/triarb/internal/health"
	"github.com/fd1az/triarb/internal/metrics"
)

// runDaemon scans every scan.interval and executes what it finds, until ctx
// is cancelled. Failed scans are logged and retried on the next tick.
func runDaemon(ctx context.Context, c *cli, t *telemetry) error {
	log := c.log

	healthServer := health.NewServer(c.cfg.App.HealthPort, version, log)
	healthServer.RegisterCheck("market", marketDI.GetMarketService(c.services).HealthCheck)
	if journal := arbitrageDI.GetJournal(c.services); journal != nil {
		healthServer.RegisterCheck("journal", func(ctx context.Context) (bool, string) {
			if err := journal.Ping(ctx); err != nil {
				return false, err.Error()
			}
			return true, c.cfg.Storage.SQLitePath
		})
	}
	healthServer.Start(ctx)
	log.Info(ctx, "health server started", "port", c.cfg.App.HealthPort)

	var metricsServer *metrics.Server
	if t.enabled {
		metricsServer = metrics.NewServer(t.port, t.registry, log)
		metricsServer.Start(ctx)
	}

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthServer.Stop(stopCtx); err != nil {
			log.Warn(stopCtx, "health server shutdown failed", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Stop(stopCtx); err != nil {
				log.Warn(stopCtx, "metrics server shutdown failed", "error", err)
			}
		}
	}()

	sf := &scanFlags{
		minSpread: c.cfg.Scan.MinSpreadDecimal(),
		amount:    c.cfg.Scan.AmountDecimal(),
		federated: c.cfg.Market.Federated,
		capital:   decimal.NewFromFloat(c.cfg.Strategy.Capital),
	}
	if c.cfg.Strategy.Apply {
		sf.strategy = c.cfg.Strategy.RiskTier
		s, err := sf.resolve(nil)
		if err != nil {
			return err
		}
		if s != nil {
			log.Info(ctx, "daemon parametrized by strategy",
				"tier", string(s.Tier),
				"min_spread", sf.minSpread.String(),
				"amount", sf.amount.String(),
				"venues", sf.venues,
			)
		}
	}
	req := sf.request()
	dryRun := c.cfg.Execution.DryRun

	interval := c.cfg.Scan.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	log.Info(ctx, "daemon started", "interval", interval.String(), "dry_run", dryRun)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.tick(ctx, req, dryRun)

		select {
		case <-ctx.Done():
			stats := arbitrageDI.GetEngine(c.services).Stats()
			log.Info(context.Background(), "daemon stopped",
				"executions", stats.Total,
				"successful", stats.Successful,
				"failed", stats.Failed,
			)
			return nil
		case <-ticker.C:
		}
	}
}

func (c *cli) tick(ctx context.Context, req arbitrageApp.ScanRequest, dryRun bool) {
	result, err := arbitrageDI.GetScanner(c.services).Scan(ctx, req)
	if err != nil {
		c.log.Warn(ctx, "scan failed", "error", err)
		return
	}
	c.out.Opportunities(result)
	if len(result.Opportunities) == 0 {
		return
	}

	engine := arbitrageDI.GetEngine(c.services)
	batch, err := engine.ExecuteAll(ctx, result.Opportunities, req.Amount, dryRun)
	c.out.Batch(batch)
	if err != nil {
		c.log.Warn(ctx, "batch interrupted", "error", err)
	}
}
