package httpfeed

import (
	"time"

	"github.com/shopspring/decimal"
)

// snapshotMessage is the JSON body served by a snapshot feed.
type snapshotMessage struct {
	Timestamp time.Time      `json:"timestamp"`
	Tokens    []tokenMessage `json:"tokens"`
	Pools     []poolMessage  `json:"pools"`
}

type tokenMessage struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type poolMessage struct {
	ID        string          `json:"id"`
	Venue     string          `json:"venue"`
	Base      string          `json:"base"`
	Quote     string          `json:"quote"`
	Rate      decimal.Decimal `json:"rate"`
	Liquidity decimal.Decimal `json:"liquidity"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	APY       decimal.Decimal `json:"apy"`
}
