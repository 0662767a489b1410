package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/internal/apperror"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTokens() []Token {
	return []Token{
		{Symbol: "SOL", Price: d("85.50")},
		{Symbol: "USDC", Price: d("1")},
		{Symbol: "RAY", Price: d("2.15")},
	}
}

func TestNewSnapshot_Validation(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		tokens   []Token
		pools    []Pool
		wantCode apperror.Code
	}{
		{
			name:   "valid",
			tokens: testTokens(),
			pools: []Pool{
				{ID: "p1", Venue: "raydium", Base: "SOL", Quote: "USDC"},
				{ID: "p2", Venue: "orca", Base: "SOL", Quote: "USDC"},
			},
		},
		{
			name:     "non_positive_price",
			tokens:   []Token{{Symbol: "SOL", Price: d("0")}},
			wantCode: apperror.CodeInvalidSnapshot,
		},
		{
			name:     "duplicate_token",
			tokens:   []Token{{Symbol: "SOL", Price: d("1")}, {Symbol: "SOL", Price: d("2")}},
			wantCode: apperror.CodeInvalidSnapshot,
		},
		{
			name:   "duplicate_venue_pair",
			tokens: testTokens(),
			pools: []Pool{
				{ID: "p1", Venue: "raydium", Base: "SOL", Quote: "USDC"},
				{ID: "p2", Venue: "raydium", Base: "SOL", Quote: "USDC"},
			},
			wantCode: apperror.CodeDuplicatePool,
		},
		{
			name:   "duplicate_id",
			tokens: testTokens(),
			pools: []Pool{
				{ID: "p1", Venue: "raydium", Base: "SOL", Quote: "USDC"},
				{ID: "p1", Venue: "orca", Base: "SOL", Quote: "RAY"},
			},
			wantCode: apperror.CodeDuplicatePool,
		},
		{
			name:     "unknown_token",
			tokens:   testTokens(),
			pools:    []Pool{{ID: "p1", Venue: "raydium", Base: "SOL", Quote: "BONK"}},
			wantCode: apperror.CodeUnknownToken,
		},
		{
			name:     "self_pair",
			tokens:   testTokens(),
			pools:    []Pool{{ID: "p1", Venue: "raydium", Base: "SOL", Quote: "SOL"}},
			wantCode: apperror.CodeInvalidSnapshot,
		},
		{
			name:     "negative_rate",
			tokens:   testTokens(),
			pools:    []Pool{{ID: "p1", Venue: "raydium", Base: "SOL", Quote: "USDC", Rate: d("-1")}},
			wantCode: apperror.CodeInvalidSnapshot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := NewSnapshot(ts, tt.tokens, tt.pools)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !snap.Timestamp().Equal(ts) {
					t.Errorf("Timestamp = %v, want %v", snap.Timestamp(), ts)
				}
				return
			}
			if got := apperror.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err=%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestSnapshot_PoolsOrderedAndCopied(t *testing.T) {
	pools := []Pool{
		{ID: "ray-3", Venue: "raydium", Base: "USDC", Quote: "RAY"},
		{ID: "ray-1", Venue: "raydium", Base: "SOL", Quote: "USDC"},
		{ID: "ray-2", Venue: "raydium", Base: "SOL", Quote: "RAY"},
		{ID: "orca-1", Venue: "orca", Base: "SOL", Quote: "USDC"},
	}
	snap, err := NewSnapshot(time.Now(), testTokens(), pools)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	pools[0].Base = "MUTATED"

	got := snap.Pools("raydium")
	want := []string{"ray-1", "ray-2", "ray-3"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Pools[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if p, _ := snap.Pool("ray-3"); p.Base != "USDC" {
		t.Error("snapshot must not alias caller slices")
	}

	if v := snap.Venues(); len(v) != 2 || v[0] != "orca" || v[1] != "raydium" {
		t.Errorf("Venues = %v", v)
	}

	r := snap.Restrict([]string{"orca", "unknown"})
	if r.PoolCount() != 1 || len(r.Pools("raydium")) != 0 {
		t.Errorf("Restrict kept %d pools", r.PoolCount())
	}
	if snap.PoolCount() != 4 {
		t.Error("Restrict must not modify the receiver")
	}
}

func TestSnapshot_Rate(t *testing.T) {
	snap, err := NewSnapshot(time.Now(), testTokens(), []Pool{
		{ID: "derived", Venue: "raydium", Base: "SOL", Quote: "USDC"},
		{ID: "quoted", Venue: "raydium", Base: "USDC", Quote: "RAY", Rate: d("0.5")},
	})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	derived, _ := snap.Pool("derived")
	quoted, _ := snap.Pool("quoted")

	tests := []struct {
		name string
		pool Pool
		from string
		want string
	}{
		{"derived_base_to_quote", derived, "SOL", "85.5"},
		{"derived_quote_to_base", derived, "USDC", "0.0116959064327485"},
		{"quoted_base_to_quote", quoted, "USDC", "0.5"},
		{"quoted_quote_to_base", quoted, "RAY", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snap.Rate(tt.pool, tt.from)
			if err != nil {
				t.Fatalf("Rate: %v", err)
			}
			if !got.Equal(d(tt.want)) {
				t.Errorf("Rate = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := snap.Rate(derived, "RAY"); apperror.GetCode(err) != apperror.CodeInvalidCycle {
		t.Errorf("expected INVALID_CYCLE for foreign token, got %v", err)
	}
}

func TestPool_Other(t *testing.T) {
	p := Pool{Base: "SOL", Quote: "USDC"}
	if o, ok := p.Other("SOL"); !ok || o != "USDC" {
		t.Errorf("Other(SOL) = %s, %v", o, ok)
	}
	if o, ok := p.Other("USDC"); !ok || o != "SOL" {
		t.Errorf("Other(USDC) = %s, %v", o, ok)
	}
	if _, ok := p.Other("RAY"); ok {
		t.Error("Other(RAY) should be false")
	}
	if p.Pair() != "SOL-USDC" {
		t.Errorf("Pair = %s", p.Pair())
	}
}
