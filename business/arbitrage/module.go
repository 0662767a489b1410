// Package arbitrage implements the arbitrage bounded context: cycle
// discovery, pricing, ranking, execution and strategy recommendations.
package arbitrage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/triarb/business/arbitrage/di"
	"github.com/fd1az/triarb/business/arbitrage/infra/papervenue"
	"github.com/fd1az/triarb/business/arbitrage/infra/sqlite"
	feesDI "github.com/fd1az/triarb/business/fees/di"
	marketDI "github.com/fd1az/triarb/business/market/di"
	"github.com/fd1az/triarb/internal/config"
	"github.com/fd1az/triarb/internal/di"
	"github.com/fd1az/triarb/internal/logger"
	"github.com/fd1az/triarb/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct {
	journal *sqlite.Journal
}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitrageDI.Journal, func(sr di.ServiceRegistry) *sqlite.Journal {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)

		path := cfg.Storage.SQLitePath
		if path == "" {
			return nil
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				panic("failed to create journal directory: " + err.Error())
			}
		}
		journal, err := sqlite.NewJournal(path)
		if err != nil {
			panic("failed to open journal: " + err.Error())
		}
		return journal
	})

	di.RegisterToken(c, arbitrageDI.Venue, func(sr di.ServiceRegistry) *papervenue.Venue {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		return papervenue.NewVenue(marketDI.GetMarketService(sr), papervenue.Config{
			SlippageBoundPct: decimal.NewFromFloat(cfg.Execution.SlippageBoundPct),
			Seed:             cfg.Execution.Seed,
		}, log)
	})

	di.RegisterToken(c, arbitrageDI.ProfitCalculator, func(sr di.ServiceRegistry) *app.ProfitCalculator {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		return app.NewProfitCalculator(feesDI.GetFeeService(sr).Base(), cfg.Market.Anchors)
	})

	di.RegisterToken(c, arbitrageDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		return app.NewScanner(
			marketDI.GetMarketService(sr),
			feesDI.GetFeeService(sr),
			journalPort(sr),
			app.ScannerConfig{
				Anchors:   cfg.Market.Anchors,
				Federated: cfg.Market.Federated,
			},
			log,
		)
	})

	di.RegisterToken(c, arbitrageDI.Engine, func(sr di.ServiceRegistry) *app.Engine {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		engine, err := app.NewEngine(
			arbitrageDI.GetVenue(sr),
			journalPort(sr),
			app.EngineConfig{MaxSlippagePct: decimal.NewFromFloat(cfg.Execution.MaxSlippagePct)},
			log,
		)
		if err != nil {
			panic("failed to create execution engine: " + err.Error())
		}
		return engine
	})

	return nil
}

// journalPort avoids handing a typed nil to consumers when journaling is off.
func journalPort(sr di.ServiceRegistry) app.Journal {
	if j := arbitrageDI.GetJournal(sr); j != nil {
		return j
	}
	return nil
}

// Startup resolves the journal so it can be closed on shutdown.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	m.journal = arbitrageDI.GetJournal(mono.Services())

	mono.Logger().Info(ctx, "arbitrage module started",
		"journal", cfg.Storage.SQLitePath,
		"dry_run", cfg.Execution.DryRun,
		"federated", cfg.Market.Federated,
	)
	return nil
}

// Close closes the journal.
func (m *Module) Close() error {
	if m.journal != nil {
		return m.journal.Close()
	}
	return nil
}
