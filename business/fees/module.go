// Package fees implements the fees bounded context: venue fee schedules and live gas pricing.
package fees

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/fees/app"
	feesDI "github.com/fd1az/triarb/business/fees/di"
	"github.com/fd1az/triarb/business/fees/domain"
	"github.com/fd1az/triarb/business/fees/infra/ethereum"
	"github.com/fd1az/triarb/internal/config"
	"github.com/fd1az/triarb/internal/di"
	"github.com/fd1az/triarb/internal/logger"
	"github.com/fd1az/triarb/internal/monolith"
)

// Module implements the fees bounded context.
type Module struct {
	oracle *ethereum.GasOracle
}

// ScheduleFromConfig builds a validated schedule from the venues config section.
func ScheduleFromConfig(venues map[string]config.VenueConfig) (*domain.Schedule, error) {
	entries := make([]domain.VenueFees, 0, len(venues))
	for name, v := range venues {
		entries = append(entries, domain.VenueFees{
			Venue:        name,
			FeeRate:      decimal.NewFromFloat(v.FeeRate),
			GasCost:      decimal.NewFromFloat(v.GasCost),
			GasUnits:     v.GasUnits,
			NativeSymbol: v.NativeSymbol,
		})
	}
	return domain.NewSchedule(entries)
}

// RegisterServices registers all fees services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, feesDI.GasOracle, func(sr di.ServiceRegistry) *ethereum.GasOracle {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		if !cfg.Ethereum.Enabled {
			return nil
		}
		oracleCfg := ethereum.DefaultGasOracleConfig(cfg.Ethereum.RPCURL)
		if cfg.Ethereum.CacheTTL > 0 {
			oracleCfg.CacheTTL = cfg.Ethereum.CacheTTL
		}
		oracle, err := ethereum.NewGasOracle(oracleCfg, log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	di.RegisterToken(c, feesDI.FeeService, func(sr di.ServiceRegistry) *app.FeeService {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		schedule, err := ScheduleFromConfig(cfg.Venues)
		if err != nil {
			panic("invalid venue fee schedule: " + err.Error())
		}

		var oracle app.GasOracle
		if o := feesDI.GetGasOracle(sr); o != nil {
			oracle = o
		}
		return app.NewFeeService(schedule, oracle, log)
	})

	return nil
}

// Startup connects the gas oracle when enabled. A failed connection keeps
// static gas costs rather than aborting startup.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	m.oracle = feesDI.GetGasOracle(mono.Services())
	if m.oracle != nil {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := m.oracle.Connect(connectCtx); err != nil {
			log.Warn(ctx, "gas oracle connection failed, using static gas costs", "error", err)
		}
	}

	log.Info(ctx, "fees module started",
		"venues", feesDI.GetFeeService(mono.Services()).Base().Venues(),
		"live_gas", m.oracle != nil,
	)
	return nil
}

// Close releases the gas oracle connection.
func (m *Module) Close() error {
	if m.oracle != nil {
		return m.oracle.Close()
	}
	return nil
}
