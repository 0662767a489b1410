// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/triarb/business/market/app"
	"github.com/fd1az/triarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketService = di.NewToken[*app.MarketService]("market.MarketService")
)

// Private dependency tokens - internal to market module
var (
	SnapshotProvider = di.NewToken[app.SnapshotProvider]("market:snapshotProvider")
)

func GetMarketService(c di.ServiceRegistry) *app.MarketService {
	return di.GetToken(c, MarketService)
}

func GetSnapshotProvider(c di.ServiceRegistry) app.SnapshotProvider {
	return di.GetToken(c, SnapshotProvider)
}
