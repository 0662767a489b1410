// Package di contains dependency injection tokens for the fees context.
package di

import (
	"github.com/fd1az/triarb/business/fees/app"
	"github.com/fd1az/triarb/business/fees/infra/ethereum"
	"github.com/fd1az/triarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	FeeService = di.NewToken[*app.FeeService]("fees.FeeService")
)

// Private dependency tokens - internal to fees module
var (
	GasOracle = di.NewToken[*ethereum.GasOracle]("fees:gasOracle")
)

func GetFeeService(c di.ServiceRegistry) *app.FeeService {
	return di.GetToken(c, FeeService)
}

func GetGasOracle(c di.ServiceRegistry) *ethereum.GasOracle {
	return di.GetToken(c, GasOracle)
}
