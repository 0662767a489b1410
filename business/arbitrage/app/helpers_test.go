package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var snapshotTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testTokens() []marketDomain.Token {
	return []marketDomain.Token{
		{Symbol: "SOL", Price: d("100")},
		{Symbol: "USDC", Price: d("1")},
		{Symbol: "USDT", Price: d("1")},
		{Symbol: "RAY", Price: d("2")},
		{Symbol: "BONK", Price: d("0.00002")},
		{Symbol: "WIF", Price: d("1.5")},
	}
}

func rated(id, venue, base, quote, rate string) marketDomain.Pool {
	p := marketDomain.Pool{ID: id, Venue: venue, Base: base, Quote: quote, Liquidity: d("1000000")}
	if rate != "" {
		p.Rate = d(rate)
	}
	return p
}

func mustSnapshot(t *testing.T, pools ...marketDomain.Pool) *marketDomain.Snapshot {
	t.Helper()
	snap, err := marketDomain.NewSnapshot(snapshotTime, testTokens(), pools)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

// onePercentPools prices USDC→SOL→RAY→USDC at a 1.01 rate product.
func onePercentPools(venue string) []marketDomain.Pool {
	return []marketDomain.Pool{
		rated(venue+"-1", venue, "SOL", "USDC", "100"),
		rated(venue+"-2", venue, "SOL", "RAY", "50"),
		rated(venue+"-3", venue, "RAY", "USDC", "2.02"),
	}
}

// halfPercentPools prices the same route at a 1.005 rate product.
func halfPercentPools(venue string) []marketDomain.Pool {
	return []marketDomain.Pool{
		rated(venue+"-1", venue, "SOL", "USDC", "100"),
		rated(venue+"-2", venue, "SOL", "RAY", "50"),
		rated(venue+"-3", venue, "RAY", "USDC", "2.01"),
	}
}

// memecoinPools prices BONK→RAY→WIF→BONK at a 1.05 rate product. No
// anchor token is present, so routes start from BONK.
func memecoinPools(venue string) []marketDomain.Pool {
	return []marketDomain.Pool{
		rated(venue+"-bonk-ray", venue, "BONK", "RAY", "0.00001"),
		rated(venue+"-ray-wif", venue, "RAY", "WIF", "1.5"),
		rated(venue+"-wif-bonk", venue, "WIF", "BONK", "70000"),
	}
}

type marketPool = marketDomain.Pool
