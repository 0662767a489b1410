// Package market implements the market bounded context: snapshot sources and freshness.
package market

import (
	"context"

	"github.com/fd1az/triarb/business/market/app"
	marketDI "github.com/fd1az/triarb/business/market/di"
	"github.com/fd1az/triarb/business/market/infra/httpfeed"
	"github.com/fd1az/triarb/business/market/infra/static"
	"github.com/fd1az/triarb/internal/config"
	"github.com/fd1az/triarb/internal/di"
	"github.com/fd1az/triarb/internal/logger"
	"github.com/fd1az/triarb/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, marketDI.SnapshotProvider, func(sr di.ServiceRegistry) app.SnapshotProvider {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		if cfg.Market.Source == config.SourceHTTP {
			provider, err := httpfeed.NewProvider(httpfeed.ProviderConfig{
				URL:            cfg.Market.FeedURL,
				Timeout:        cfg.Market.FetchTimeout,
				RequestsPerSec: cfg.Market.RequestsPerSec,
			}, log)
			if err != nil {
				panic("failed to create snapshot feed provider: " + err.Error())
			}
			return provider
		}
		return static.NewProvider(cfg.Market.SnapshotPath)
	})

	di.RegisterToken(c, marketDI.MarketService, func(sr di.ServiceRegistry) *app.MarketService {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		return app.NewMarketService(marketDI.GetSnapshotProvider(sr), app.ServiceConfig{
			FetchTimeout:   cfg.Market.FetchTimeout,
			MaxSnapshotAge: cfg.Market.MaxSnapshotAge,
		}, log)
	})

	return nil
}

// Startup initializes the market module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	provider := marketDI.GetSnapshotProvider(mono.Services())
	mono.Logger().Info(ctx, "market module started", "provider", provider.Name())
	return nil
}
