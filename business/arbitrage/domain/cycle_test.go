package domain

import (
	"testing"

	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

func pool(id, base, quote string) marketDomain.Pool {
	return marketDomain.Pool{ID: id, Venue: "raydium", Base: base, Quote: quote}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name  string
		pools [3]marketDomain.Pool
		want  bool
	}{
		{
			name:  "triangle",
			pools: [3]marketDomain.Pool{pool("1", "SOL", "USDC"), pool("2", "SOL", "RAY"), pool("3", "RAY", "USDC")},
			want:  true,
		},
		{
			name:  "triangle_mixed_orientation",
			pools: [3]marketDomain.Pool{pool("1", "USDC", "SOL"), pool("2", "RAY", "SOL"), pool("3", "USDC", "RAY")},
			want:  true,
		},
		{
			name:  "repeated_pair",
			pools: [3]marketDomain.Pool{pool("1", "SOL", "USDC"), pool("2", "USDC", "SOL"), pool("3", "SOL", "RAY")},
			want:  false,
		},
		{
			name:  "four_tokens",
			pools: [3]marketDomain.Pool{pool("1", "SOL", "USDC"), pool("2", "RAY", "ORCA"), pool("3", "RAY", "USDC")},
			want:  false,
		},
		{
			name:  "star",
			pools: [3]marketDomain.Pool{pool("1", "SOL", "USDC"), pool("2", "RAY", "USDC"), pool("3", "ORCA", "USDC")},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosed(tt.pools); got != tt.want {
				t.Errorf("IsClosed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCycle_TokensAndPoolFor(t *testing.T) {
	c := Cycle{Venue: "raydium", Pools: [3]marketDomain.Pool{
		pool("1", "SOL", "USDC"), pool("2", "SOL", "RAY"), pool("3", "RAY", "USDC"),
	}}

	if got := c.Key(); got != "RAY/SOL/USDC" {
		t.Errorf("Key = %s, want RAY/SOL/USDC", got)
	}
	if p, ok := c.PoolFor("USDC", "RAY"); !ok || p.ID != "3" {
		t.Errorf("PoolFor(USDC, RAY) = %s, %v", p.ID, ok)
	}
	if _, ok := c.PoolFor("USDC", "BONK"); ok {
		t.Error("PoolFor with foreign token should fail")
	}
}

func TestRoute_String(t *testing.T) {
	r := Route{"USDC", "SOL", "RAY", "USDC"}
	if r.String() != "USDC → SOL → RAY → USDC" {
		t.Errorf("String = %q", r.String())
	}
	if r.Start() != "USDC" || (Route{}).Start() != "" {
		t.Error("Start mismatch")
	}
}

func TestParseRiskTier(t *testing.T) {
	for _, in := range []string{"conservative", "Medium", " AGGRESSIVE "} {
		if _, err := ParseRiskTier(in); err != nil {
			t.Errorf("ParseRiskTier(%q): %v", in, err)
		}
	}
	if _, err := ParseRiskTier("yolo"); err == nil {
		t.Error("ParseRiskTier(yolo) should fail")
	}
}
