package app

import (
	"testing"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

func TestFindCycles(t *testing.T) {
	snap := mustSnapshot(t,
		// raydium: one triangle, listed twice through a reversed pair
		rated("r1", "raydium", "SOL", "USDC", ""),
		rated("r2", "raydium", "SOL", "RAY", ""),
		rated("r3", "raydium", "RAY", "USDC", ""),
		rated("r4", "raydium", "USDC", "SOL", ""),
		// orca: too few pools
		rated("o1", "orca", "SOL", "USDC", ""),
		rated("o2", "orca", "RAY", "USDC", ""),
		// jupiter: two triangles sharing SOL-USDC
		rated("j1", "jupiter", "SOL", "USDC", ""),
		rated("j2", "jupiter", "RAY", "USDC", ""),
		rated("j3", "jupiter", "SOL", "RAY", ""),
		rated("j4", "jupiter", "BONK", "USDC", ""),
		rated("j5", "jupiter", "BONK", "SOL", ""),
	)

	tests := []struct {
		name     string
		venues   []string
		wantKeys []string
	}{
		{
			name:     "deduplicated_token_set",
			venues:   []string{"raydium"},
			wantKeys: []string{"raydium:RAY/SOL/USDC"},
		},
		{
			name:   "fewer_than_three_pools",
			venues: []string{"orca"},
		},
		{
			name:     "two_triangles",
			venues:   []string{"jupiter"},
			wantKeys: []string{"jupiter:RAY/SOL/USDC", "jupiter:BONK/SOL/USDC"},
		},
		{
			name:   "all_venues_sorted",
			venues: nil,
			wantKeys: []string{
				"jupiter:RAY/SOL/USDC", "jupiter:BONK/SOL/USDC",
				"raydium:RAY/SOL/USDC",
			},
		},
		{
			name:   "unknown_venue",
			venues: []string{"meteora"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCycles(snap, tt.venues)
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("got %d cycles, want %d: %v", len(got), len(tt.wantKeys), keys(got))
			}
			for i, c := range got {
				if !domain.IsClosed(c.Pools) {
					t.Errorf("cycle %d is not closed: %v", i, c.PoolIDs())
				}
				if k := c.Venue + ":" + c.Key(); k != tt.wantKeys[i] {
					t.Errorf("cycle %d = %s, want %s", i, k, tt.wantKeys[i])
				}
			}
		})
	}
}

func TestFindCycles_Federated(t *testing.T) {
	snap := mustSnapshot(t,
		rated("a-orca", "orca", "SOL", "USDC", ""),
		rated("b-orca", "orca", "SOL", "RAY", ""),
		rated("c-ray", "raydium", "RAY", "USDC", ""),
		rated("d-ray", "raydium", "SOL", "USDC", ""),
	)

	if got := FindCycles(snap, []string{"orca", "raydium"}); len(got) != 0 {
		t.Fatalf("single-venue enumeration found %d cycles, want 0", len(got))
	}

	got := FindCycles(snap, []string{"orca", "raydium", domain.FederatedVenue})
	if len(got) != 2 {
		t.Fatalf("federated enumeration found %d cycles, want 2: %v", len(got), keys(got))
	}
	// Both SOL/USDC pools close the same token set; each mix is kept.
	want := [][]string{
		{"a-orca", "b-orca", "c-ray"},
		{"b-orca", "c-ray", "d-ray"},
	}
	for n, c := range got {
		if c.Venue != domain.FederatedVenue {
			t.Errorf("cycle %d Venue = %s, want %s", n, c.Venue, domain.FederatedVenue)
		}
		if c.Key() != got[0].Key() {
			t.Errorf("cycle %d token set = %s, want %s", n, c.Key(), got[0].Key())
		}
		for i, id := range c.PoolIDs() {
			if id != want[n][i] {
				t.Errorf("cycle %d pool %d = %s, want %s", n, i, id, want[n][i])
			}
		}
	}
}

func TestFindCycles_Exhaustive(t *testing.T) {
	// Complete graph on four tokens has exactly four triangles.
	pairs := [][2]string{
		{"SOL", "USDC"}, {"RAY", "USDC"}, {"BONK", "USDC"},
		{"SOL", "RAY"}, {"BONK", "SOL"}, {"BONK", "RAY"},
	}
	var pools []marketDomain.Pool
	for i, p := range pairs {
		pools = append(pools, rated(string(rune('a'+i)), "orca", p[0], p[1], ""))
	}
	snap := mustSnapshot(t, pools...)

	got := FindCycles(snap, []string{"orca"})
	if len(got) != 4 {
		t.Fatalf("got %d cycles, want 4: %v", len(got), keys(got))
	}
	seen := make(map[string]bool)
	for _, c := range got {
		if seen[c.Key()] {
			t.Errorf("token set %s emitted twice", c.Key())
		}
		seen[c.Key()] = true
	}
}

func keys(cycles []domain.Cycle) []string {
	out := make([]string, len(cycles))
	for i, c := range cycles {
		out[i] = c.Venue + ":" + c.Key()
	}
	return out
}
