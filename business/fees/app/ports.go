// Package app contains application services and port definitions for the fees context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/fees/domain"
)

// GasOracle provides the current network gas price.
type GasOracle interface {
	GasPrice(ctx context.Context) (*domain.GasPrice, error)
}

// PriceLookup resolves a token's reference price, typically from the current snapshot.
type PriceLookup func(symbol string) (decimal.Decimal, bool)
