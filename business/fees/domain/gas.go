package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// weiPerNative is 10^18, the base-unit scale of EVM native tokens.
var weiPerNative = decimal.New(1, 18)

// GasPrice represents a network gas price.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{Wei: new(big.Int).Set(wei), Timestamp: time.Now()}
}

// Gwei returns the price in gwei.
func (g *GasPrice) Gwei() float64 {
	f, _ := decimal.NewFromBigInt(g.Wei, -9).Float64()
	return f
}

// GasCostIn converts gasUnits at this price into the reference currency,
// given the native token's reference price.
func (g *GasPrice) GasCostIn(gasUnits uint64, nativePrice decimal.Decimal) decimal.Decimal {
	totalWei := new(big.Int).Mul(g.Wei, new(big.Int).SetUint64(gasUnits))
	native := decimal.NewFromBigInt(totalWei, 0).Div(weiPerNative)
	return native.Mul(nativePrice)
}
