// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/triarb/business/arbitrage/app"
	"github.com/fd1az/triarb/business/arbitrage/infra/papervenue"
	"github.com/fd1az/triarb/business/arbitrage/infra/sqlite"
	"github.com/fd1az/triarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Scanner          = di.NewToken[*app.Scanner]("arbitrage.Scanner")
	Engine           = di.NewToken[*app.Engine]("arbitrage.Engine")
	ProfitCalculator = di.NewToken[*app.ProfitCalculator]("arbitrage.ProfitCalculator")
)

// Private dependency tokens - internal to arbitrage module
var (
	Journal = di.NewToken[*sqlite.Journal]("arbitrage:journal")
	Venue   = di.NewToken[*papervenue.Venue]("arbitrage:venue")
)

func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetEngine(c di.ServiceRegistry) *app.Engine {
	return di.GetToken(c, Engine)
}

func GetProfitCalculator(c di.ServiceRegistry) *app.ProfitCalculator {
	return di.GetToken(c, ProfitCalculator)
}

// GetJournal returns nil when journaling is disabled.
func GetJournal(c di.ServiceRegistry) *sqlite.Journal {
	return di.GetToken(c, Journal)
}

func GetVenue(c di.ServiceRegistry) *papervenue.Venue {
	return di.GetToken(c, Venue)
}
