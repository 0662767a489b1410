package domain

import (
	"sort"
	"strings"

	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

// FederatedVenue labels cycles and opportunities whose pools span venues.
const FederatedVenue = "federated"

// Cycle is an unordered selection of three pools that close a loop over
// exactly three tokens.
type Cycle struct {
	Venue string
	Pools [3]marketDomain.Pool
}

// Tokens returns the cycle's token symbols, sorted.
func (c Cycle) Tokens() []string {
	seen := make(map[string]bool, 3)
	for _, p := range c.Pools {
		seen[p.Base] = true
		seen[p.Quote] = true
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Key identifies the cycle's token set, e.g. "RAY/SOL/USDC".
func (c Cycle) Key() string {
	return strings.Join(c.Tokens(), "/")
}

// PoolFor returns the pool trading a against b.
func (c Cycle) PoolFor(a, b string) (marketDomain.Pool, bool) {
	for _, p := range c.Pools {
		if p.Has(a) && p.Has(b) {
			return p, true
		}
	}
	return marketDomain.Pool{}, false
}

// PoolIDs returns the pool ids in selection order.
func (c Cycle) PoolIDs() []string {
	return []string{c.Pools[0].ID, c.Pools[1].ID, c.Pools[2].ID}
}

// IsClosed reports whether the pools span exactly three tokens, each
// appearing in exactly two pools.
func IsClosed(pools [3]marketDomain.Pool) bool {
	count := make(map[string]int, 4)
	for _, p := range pools {
		if p.Base == p.Quote {
			return false
		}
		count[p.Base]++
		count[p.Quote]++
	}
	if len(count) != 3 {
		return false
	}
	for _, n := range count {
		if n != 2 {
			return false
		}
	}
	return true
}

// Route is an ordered token path that returns to its start, e.g. USDC→SOL→RAY→USDC.
type Route []string

// String renders the route with arrows.
func (r Route) String() string {
	return strings.Join(r, " → ")
}

// Start returns the first token, or "" for an empty route.
func (r Route) Start() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}
